package decoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// HTMLDecoder sanitizes markup and converts it to Markdown.
type HTMLDecoder struct {
	policy    *bluemonday.Policy
	converter *converter.Converter
}

// NewHTMLDecoder builds an HTMLDecoder with the UGC sanitization policy.
func NewHTMLDecoder() *HTMLDecoder {
	policy := bluemonday.UGCPolicy()
	policy.SkipElementsContent("title", "script", "style", "noscript")
	return &HTMLDecoder{
		policy: policy,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (d *HTMLDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	src := normalizeText(data)
	title := htmlTitle(src)

	clean := d.policy.Sanitize(src)
	md, err := d.converter.ConvertString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: convert html %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	extra := map[string]any{}
	if title != "" {
		extra["title"] = title
	}
	return &port.DecodeOutput{
		Content:  strings.TrimSpace(md),
		Metadata: withExtra(extra),
	}, nil
}

// htmlTitle returns the text of the first <title> element, if any.
func htmlTitle(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			return strings.TrimSpace(sb.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}
