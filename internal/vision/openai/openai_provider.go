package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/filetype"
	"filegate/internal/port"
	"filegate/internal/vision"
)

const defaultModel = "gpt-4o"

func init() {
	factory := func(cfg *config.ProviderConfig, logger *slog.Logger) (port.VisionProvider, error) {
		return NewProvider(cfg, logger)
	}
	vision.RegisterProvider(domain.ProviderOpenAI, factory)
	// custom endpoints speak the OpenAI chat-completions wire shape
	vision.RegisterProvider(domain.ProviderCustom, factory)
}

// Provider implements port.VisionProvider using the OpenAI Chat Completions API.
type Provider struct {
	client     *goopenai.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	name       string
	logger     *slog.Logger
}

// NewProvider creates an OpenAI-compatible vision provider. A custom provider
// must carry its own base URL and model.
func NewProvider(cfg *config.ProviderConfig, logger *slog.Logger) (*Provider, error) {
	model := cfg.EffectiveModel()
	if model == "" {
		if cfg.Provider == domain.ProviderCustom {
			return nil, fmt.Errorf("%w: custom provider requires a model", domain.ErrInvalidConfig)
		}
		model = defaultModel
	}
	if cfg.Provider == domain.ProviderCustom && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: custom provider requires base_url", domain.ErrInvalidConfig)
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{headers: cfg.Headers, next: http.DefaultTransport},
	}
	clientCfg.HTTPClient = httpClient

	name := string(cfg.Provider)
	if name == "" {
		name = string(domain.ProviderOpenAI)
	}
	return &Provider{
		client:     goopenai.NewClientWithConfig(clientCfg),
		httpClient: httpClient,
		baseURL:    clientCfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		name:       name,
		logger:     logger,
	}, nil
}

// AnalyzeImage sends images by URL. PDFs are downloaded and inlined as a
// base64 file part.
func (p *Provider) AnalyzeImage(ctx context.Context, input port.VisionInput) (*port.VisionOutput, error) {
	if filetype.Classify(filetype.FileNameFromURL(input.ImageURL)) == domain.CategoryPDF {
		return p.analyzePDF(ctx, input)
	}

	req := goopenai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: vision.MaxTokens(input.MaxTokens),
		Messages: []goopenai.ChatCompletionMessage{{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: vision.Prompt(input.Prompt)},
				{
					Type:     goopenai.ChatMessagePartTypeImageURL,
					ImageURL: &goopenai.ChatMessageImageURL{URL: encodeURL(input.ImageURL), Detail: goopenai.ImageURLDetailAuto},
				},
			},
		}},
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	p.logger.Debug("vision.http.response",
		"provider", p.name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	)
	if err != nil {
		return nil, p.classifyError(err)
	}
	return p.toOutput(resp)
}

// fileData carries an inline document as a data URI.
type fileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type filePart struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *fileData `json:"file,omitempty"`
}

type fileMessage struct {
	Role    string     `json:"role"`
	Content []filePart `json:"content"`
}

type fileRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []fileMessage `json:"messages"`
}

func (p *Provider) analyzePDF(ctx context.Context, input port.VisionInput) (*port.VisionOutput, error) {
	doc, _, err := vision.FetchImage(ctx, p.httpClient, input.ImageURL)
	if err != nil {
		return nil, err
	}

	name := filetype.FileNameFromURL(input.ImageURL)
	reqBody := fileRequest{
		Model:     p.model,
		MaxTokens: vision.MaxTokens(input.MaxTokens),
		Messages: []fileMessage{{
			Role: goopenai.ChatMessageRoleUser,
			Content: []filePart{
				{Type: "file", File: &fileData{
					Filename: name,
					FileData: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(doc),
				}},
				{Type: "text", Text: vision.Prompt(input.Prompt)},
			},
		}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	p.logger.Debug("vision.http.response",
		"provider", p.name,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", p.name, resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := vision.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, vision.NewRateLimitError(p.name, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	var completion goopenai.ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	return p.toOutput(completion)
}

func (p *Provider) toOutput(resp goopenai.ChatCompletionResponse) (*port.VisionOutput, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s chat completion returned no choices", p.name)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, vision.ErrEmptyContent
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	out := &port.VisionOutput{Content: text, Model: model}
	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 {
		out.Usage = &domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

func (p *Provider) classifyError(err error) error {
	baseErr := fmt.Errorf("create %s chat completion: %w", p.name, err)

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return vision.NewRateLimitError(p.name, baseErr, 0)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return vision.NewRateLimitError(p.name, baseErr, 0)
	}
	return baseErr
}

// encodeURL percent-encodes characters that are not valid in a URL, such as
// spaces, while leaving an already valid URL unchanged.
func encodeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}

// headerTransport adds configured headers to every request.
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.next.RoundTrip(req)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
