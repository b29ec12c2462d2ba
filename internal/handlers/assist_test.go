package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"debate-relay/internal/genai"
	"debate-relay/internal/mocks"
)

func setupAssistRouter(handler *AssistHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/assist/argument", handler.GenerateArgument)
	r.POST("/assist/evidence", handler.AnalyzeEvidence)
	r.POST("/assist/counter", handler.GenerateCounter)
	r.POST("/assist/chat", handler.Chat)
	return r
}

func TestGenerateArgumentSuccess(t *testing.T) {
	gen := new(mocks.GeneratorMock)
	handler := NewAssistHandler(gen, nil)
	router := setupAssistRouter(handler)

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return bytes.Contains([]byte(prompt), []byte("school uniforms"))
	}), 512, 0.7).Return("a solid argument", nil).Once()

	body := bytes.NewBufferString(`{"topic":"school uniforms","stance":"pro"}`)
	req := httptest.NewRequest(http.MethodPost, "/assist/argument", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "a solid argument", resp["generated_text"])
	gen.AssertExpectations(t)
}

func TestGenerateArgumentMissingTopic(t *testing.T) {
	handler := NewAssistHandler(new(mocks.GeneratorMock), nil)
	router := setupAssistRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/assist/argument", bytes.NewBufferString(`{"stance":"pro"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCounterServiceUnavailable(t *testing.T) {
	gen := new(mocks.GeneratorMock)
	handler := NewAssistHandler(gen, nil)
	router := setupAssistRouter(handler)

	gen.On("Generate", mock.Anything, mock.Anything, 512, 0.7).Return("", genai.ErrServiceUnavailable).Once()

	req := httptest.NewRequest(http.MethodPost, "/assist/counter", bytes.NewBufferString(`{"argument":"cats are better"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	gen.AssertExpectations(t)
}

func TestAnalyzeEvidenceGenerationFailure(t *testing.T) {
	gen := new(mocks.GeneratorMock)
	handler := NewAssistHandler(gen, nil)
	router := setupAssistRouter(handler)

	gen.On("Generate", mock.Anything, mock.Anything, 512, 0.7).Return("", assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/assist/evidence", bytes.NewBufferString(`{"evidence":"a study"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	gen.AssertExpectations(t)
}

func TestChatPassesOverrides(t *testing.T) {
	gen := new(mocks.GeneratorMock)
	handler := NewAssistHandler(gen, nil)
	router := setupAssistRouter(handler)

	gen.On("Generate", mock.Anything, "hello", 64, 0.2).Return("hi there", nil).Once()

	body := bytes.NewBufferString(`{"message":"hello","max_tokens":64,"temperature":0.2}`)
	req := httptest.NewRequest(http.MethodPost, "/assist/chat", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	gen.AssertExpectations(t)
}
