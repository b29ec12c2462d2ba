package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"debate-relay/internal/genai"
	"debate-relay/internal/telemetry"
)

const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.7
)

// Generator is the generation-service surface consumed by the assist endpoints.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// AssistHandler exposes the debate-assistant endpoints backed by the
// external generation service.
type AssistHandler struct {
	gen   Generator
	audit *telemetry.AuditEmitter
}

// NewAssistHandler builds an AssistHandler.
func NewAssistHandler(gen Generator, audit *telemetry.AuditEmitter) *AssistHandler {
	return &AssistHandler{gen: gen, audit: audit}
}

type assistResponse struct {
	GeneratedText string  `json:"generated_text"`
	ResponseTime  float64 `json:"response_time"`
}

// GenerateArgument drafts an argument for a topic from a given stance.
func (h *AssistHandler) GenerateArgument(c *gin.Context) {
	var req struct {
		Topic       string   `json:"topic" binding:"required"`
		Stance      string   `json:"stance" binding:"required"`
		Context     string   `json:"context"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Develop a persuasive debate argument on the topic %q from the %s side.\n", req.Topic, req.Stance)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}
	b.WriteString("Include a claim, supporting evidence, reasoning, and responses to likely rebuttals.")

	h.generate(c, b.String(), req.MaxTokens, req.Temperature)
}

// AnalyzeEvidence evaluates a piece of evidence for debate use.
func (h *AssistHandler) AnalyzeEvidence(c *gin.Context) {
	var req struct {
		Evidence    string   `json:"evidence" binding:"required"`
		Perspective string   `json:"perspective"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following evidence for debate use: %s\n", req.Evidence)
	if req.Perspective != "" {
		fmt.Fprintf(&b, "Perspective: %s\n", req.Perspective)
	}
	b.WriteString("Assess its credibility, relevance, persuasiveness, likely rebuttals, and how to deploy it.")

	h.generate(c, b.String(), req.MaxTokens, req.Temperature)
}

// GenerateCounter produces a rebuttal to an argument.
func (h *AssistHandler) GenerateCounter(c *gin.Context) {
	var req struct {
		Argument    string   `json:"argument" binding:"required"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := fmt.Sprintf("Generate an effective rebuttal to this argument: %s\nPoint out weaknesses, refute the logic, offer alternative interpretations, and conclude.", req.Argument)
	h.generate(c, prompt, req.MaxTokens, req.Temperature)
}

// Chat is the plain request/response bridge to the generation service.
func (h *AssistHandler) Chat(c *gin.Context) {
	var req struct {
		Message     string   `json:"message" binding:"required"`
		MaxTokens   *int     `json:"max_tokens"`
		Temperature *float64 `json:"temperature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.generate(c, req.Message, req.MaxTokens, req.Temperature)
}

func (h *AssistHandler) generate(c *gin.Context, prompt string, maxTokens *int, temperature *float64) {
	tokens := defaultMaxTokens
	if maxTokens != nil && *maxTokens > 0 {
		tokens = *maxTokens
	}
	temp := defaultTemperature
	if temperature != nil && *temperature > 0 {
		temp = *temperature
	}

	start := time.Now()
	text, err := h.gen.Generate(c.Request.Context(), prompt, tokens, temp)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "WARN", "generation failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		if errors.Is(err, genai.ErrServiceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation service unavailable"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
		return
	}

	c.JSON(http.StatusOK, assistResponse{
		GeneratedText: text,
		ResponseTime:  time.Since(start).Seconds(),
	})
}
