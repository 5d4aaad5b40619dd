package decoder

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// XMLDecoder checks well-formedness and renders an outline: one
// "path @attr=value" line per element carrying attributes and one
// "path: text" line per non-blank text node.
type XMLDecoder struct{}

func (XMLDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		path     []string
		lines    []string
		root     string
		elements int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed xml in %s: %v", domain.ErrDecodeFailed, filename, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root == "" {
				root = t.Name.Local
			}
			elements++
			path = append(path, t.Name.Local)
			if len(t.Attr) > 0 {
				attrs := make([]string, 0, len(t.Attr))
				for _, a := range t.Attr {
					attrs = append(attrs, "@"+a.Name.Local+"="+a.Value)
				}
				lines = append(lines, strings.Join(path, "/")+" "+strings.Join(attrs, " "))
			}
		case xml.EndElement:
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		case xml.CharData:
			text := strings.Join(strings.Fields(string(t)), " ")
			if text != "" && len(path) > 0 {
				lines = append(lines, strings.Join(path, "/")+": "+text)
			}
		}
	}
	if root == "" {
		return nil, fmt.Errorf("%w: %s has no root element", domain.ErrDecodeFailed, filename)
	}

	return &port.DecodeOutput{
		Content: strings.Join(lines, "\n"),
		Metadata: withExtra(map[string]any{
			"root":     root,
			"elements": elements,
		}),
	}, nil
}
