package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "say hi", req["prompt"])
		require.EqualValues(t, 128, req["max_tokens"])

		json.NewEncoder(w).Encode(map[string]string{"generated_text": "hi"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	text, err := client.Generate(context.Background(), "say hi", 128, 0.7)
	require.NoError(t, err)
	require.Equal(t, "hi", text)
}

func TestGenerateServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Generate(context.Background(), "p", 10, 0.5)
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateRuntimeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "out of memory"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Generate(context.Background(), "p", 10, 0.5)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, http.StatusInternalServerError, genErr.StatusCode)
	require.Equal(t, "out of memory", genErr.Message)
}

func TestGenerateUnreachableService(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	_, err := client.Generate(context.Background(), "p", 10, 0.5)
	require.Error(t, err)
}
