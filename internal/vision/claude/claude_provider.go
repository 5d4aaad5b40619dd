package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/port"
	"filegate/internal/vision"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
)

func init() {
	vision.RegisterProvider(domain.ProviderAnthropic, func(cfg *config.ProviderConfig, logger *slog.Logger) (port.VisionProvider, error) {
		return NewProvider(cfg, logger), nil
	})
}

// Provider implements port.VisionProvider using the Anthropic Messages API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	headers  map[string]string
	client   *http.Client
	logger   *slog.Logger
}

// NewProvider creates a Claude-based vision provider from a provider config.
func NewProvider(cfg *config.ProviderConfig, logger *slog.Logger) *Provider {
	model := cfg.EffectiveModel()
	if model == "" {
		model = defaultModel
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: base + "/v1/messages",
		headers:  cfg.Headers,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *Provider) AnalyzeImage(ctx context.Context, input port.VisionInput) (*port.VisionOutput, error) {
	img, mimeType, err := vision.FetchImage(ctx, p.client, input.ImageURL)
	if err != nil {
		return nil, err
	}

	reqBody := messagesRequest{
		Model:     p.model,
		MaxTokens: vision.MaxTokens(input.MaxTokens),
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				sourceBlock(mimeType, img),
				{Type: "text", Text: vision.Prompt(input.Prompt)},
			},
		}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	p.logger.Debug("vision.http.response",
		"provider", "anthropic",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := vision.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, vision.NewRateLimitError("anthropic", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

// sourceBlock embeds the fetched file. PDFs go in a document block, anything
// else in an image block.
func sourceBlock(mimeType string, data []byte) contentBlock {
	blockType := "image"
	if mimeType == "application/pdf" {
		blockType = "document"
	}
	return contentBlock{
		Type: blockType,
		Source: &imageSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}
}

func parseResponse(body []byte, model string) (*port.VisionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, vision.ErrEmptyContent
	}

	out := &port.VisionOutput{Content: text, Model: model}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	if u := resp.Usage; u != nil {
		out.Usage = &domain.TokenUsage{
			PromptTokens:     u.InputTokens,
			CompletionTokens: u.OutputTokens,
			TotalTokens:      u.InputTokens + u.OutputTokens,
		}
	}
	return out, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
