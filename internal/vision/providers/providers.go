// Package providers links every vendor vision client into the binary and
// builds the configured provider chain.
package providers

import (
	"log/slog"

	"filegate/internal/config"
	"filegate/internal/port"
	"filegate/internal/vision"

	_ "filegate/internal/vision/claude"
	_ "filegate/internal/vision/gemini"
	_ "filegate/internal/vision/openai"
)

// Build returns the vision provider chain for ai, or nil when AI is not configured.
func Build(ai *config.AIConfig, logger *slog.Logger) (port.VisionProvider, error) {
	return vision.NewFromConfig(ai, logger)
}
