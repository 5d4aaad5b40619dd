package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/port"
	"filegate/internal/vision"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func TestAnalyzeImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("X-Org"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-vision", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		parts := req.Messages[0].Content
		require.Len(t, parts, 2)
		assert.Equal(t, "text", parts[0].Type)
		assert.Equal(t, vision.DefaultAnalysisPrompt, parts[0].Text)
		require.NotNil(t, parts[1].ImageURL)
		assert.Equal(t, "https://cdn.example.com/my%20photo.png", parts[1].ImageURL.URL)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-vision-2025",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "A cat on a sofa"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 90, "completion_tokens": 8, "total_tokens": 98}
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&config.ProviderConfig{
		Provider:    domain.ProviderOpenAI,
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "gpt-4o",
		VisionModel: "gpt-vision",
		Headers:     map[string]string{"X-Org": "org-1"},
	}, discard)
	require.NoError(t, err)

	out, err := p.AnalyzeImage(context.Background(), port.VisionInput{
		ImageURL:  "https://cdn.example.com/my photo.png",
		MaxTokens: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "A cat on a sofa", out.Content)
	assert.Equal(t, "gpt-vision-2025", out.Model)
	require.NotNil(t, out.Usage)
	assert.Equal(t, domain.TokenUsage{PromptTokens: 90, CompletionTokens: 8, TotalTokens: 98}, *out.Usage)
}

func TestAnalyzeImage_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&config.ProviderConfig{Provider: domain.ProviderOpenAI, APIKey: "k", BaseURL: srv.URL}, discard)
	require.NoError(t, err)

	_, err = p.AnalyzeImage(context.Background(), port.VisionInput{ImageURL: "https://x/a.png"})
	var rlErr *vision.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestAnalyzeImage_EmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"index": 0, "message": {"role": "assistant", "content": ""}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&config.ProviderConfig{Provider: domain.ProviderCustom, BaseURL: srv.URL, Model: "llava"}, discard)
	require.NoError(t, err)

	_, err = p.AnalyzeImage(context.Background(), port.VisionInput{ImageURL: "https://x/a.png"})
	assert.ErrorIs(t, err, vision.ErrEmptyContent)
}

func TestNewProvider_CustomRequiresBaseURLAndModel(t *testing.T) {
	_, err := NewProvider(&config.ProviderConfig{Provider: domain.ProviderCustom, Model: "m"}, discard)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = NewProvider(&config.ProviderConfig{Provider: domain.ProviderCustom, BaseURL: "http://llm.local/v1"}, discard)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRegisteredForCustom(t *testing.T) {
	p, err := vision.NewProvider(&config.ProviderConfig{
		Provider: domain.ProviderCustom, BaseURL: "http://llm.local/v1", Model: "llava", MaxRetries: 2,
	}, discard)
	require.NoError(t, err)
	assert.IsType(t, &vision.Retrier{}, p)
}

type fileChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
			File *struct {
				Filename string `json:"filename"`
				FileData string `json:"file_data"`
			} `json:"file"`
			ImageURL json.RawMessage `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func TestAnalyzeImage_PDFInlinedAsFilePart(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4\n% scanned\n")
	mux := http.NewServeMux()
	mux.HandleFunc("/files/scan.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBytes)
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("X-Org"))

		var req fileChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-vision", req.Model)
		require.Len(t, req.Messages, 1)
		parts := req.Messages[0].Content
		require.Len(t, parts, 2)
		assert.Equal(t, "file", parts[0].Type)
		assert.Empty(t, parts[0].ImageURL)
		require.NotNil(t, parts[0].File)
		assert.Equal(t, "scan.pdf", parts[0].File.Filename)
		assert.Equal(t, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(pdfBytes), parts[0].File.FileData)
		assert.Equal(t, "text", parts[1].Type)
		assert.Equal(t, "Extract the text", parts[1].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-vision-2025",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Page 1: invoice"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 300, "completion_tokens": 5, "total_tokens": 305}
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewProvider(&config.ProviderConfig{
		Provider:    domain.ProviderOpenAI,
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		VisionModel: "gpt-vision",
		Headers:     map[string]string{"X-Org": "org-1"},
	}, discard)
	require.NoError(t, err)

	out, err := p.AnalyzeImage(context.Background(), port.VisionInput{
		ImageURL: srv.URL + "/files/scan.pdf?X-Amz-Signature=abc",
		Prompt:   "Extract the text",
	})
	require.NoError(t, err)
	assert.Equal(t, "Page 1: invoice", out.Content)
	assert.Equal(t, "gpt-vision-2025", out.Model)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 305, out.Usage.TotalTokens)
}

func TestAnalyzeImage_PDFRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scan.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewProvider(&config.ProviderConfig{Provider: domain.ProviderOpenAI, APIKey: "k", BaseURL: srv.URL}, discard)
	require.NoError(t, err)

	_, err = p.AnalyzeImage(context.Background(), port.VisionInput{ImageURL: srv.URL + "/scan.pdf"})
	var rlErr *vision.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
}
