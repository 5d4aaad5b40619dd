package decoder

import (
	"context"
	"strings"

	"filegate/internal/port"
)

// MarkdownDecoder passes Markdown through with normalized line endings.
type MarkdownDecoder struct{}

func (MarkdownDecoder) Decode(_ context.Context, data []byte, _ string) (*port.DecodeOutput, error) {
	content := normalizeText(data)
	extra := map[string]any{}
	for _, line := range strings.Split(content, "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			extra["title"] = strings.TrimSpace(title)
			break
		}
	}
	return &port.DecodeOutput{Content: content, Metadata: withExtra(extra)}, nil
}
