// Package genai wraps the external debate-assistant generation service, a
// JSON-over-HTTP model API invoked synchronously by the assist endpoints.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrServiceUnavailable reports that no model is loaded on the service side.
var ErrServiceUnavailable = errors.New("generation service unavailable")

// GenerationError reports a runtime failure of the generation service.
type GenerationError struct {
	StatusCode int
	Message    string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the generation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
	Detail        string `json:"detail,omitempty"`
}

// Generate returns the completion for a prompt. A 503 from the service maps
// to ErrServiceUnavailable; any other failure is a GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return "", ErrServiceUnavailable
	case resp.StatusCode >= 400:
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: out.Detail}
	case decodeErr != nil:
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: decodeErr.Error()}
	}

	return out.GeneratedText, nil
}
