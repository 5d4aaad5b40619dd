package port

import (
	"context"

	"filegate/internal/domain"
)

// VisionInput carries what a vision provider needs to analyze one file.
type VisionInput struct {
	ImageURL  string
	Prompt    string // empty selects the provider's default analysis prompt
	MaxTokens int    // zero selects the provider default
}

// VisionOutput is the text a vision provider extracted from the file.
type VisionOutput struct {
	Content string
	Model   string
	Usage   *domain.TokenUsage
}

// VisionProvider abstracts AI vision backends.
type VisionProvider interface {
	AnalyzeImage(ctx context.Context, input VisionInput) (*VisionOutput, error)
}
