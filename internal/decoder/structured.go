package decoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// JSONDecoder validates JSON and re-indents it with two spaces.
type JSONDecoder struct{}

func (JSONDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: invalid json in %s: %v", domain.ErrDecodeFailed, filename, err)
	}
	return &port.DecodeOutput{
		Content:  strings.TrimSpace(buf.String()),
		Metadata: withExtra(map[string]any{"kind": jsonKind(buf.Bytes())}),
	}, nil
}

func jsonKind(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "empty"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// YAMLDecoder parses every document in a YAML stream and re-emits it in
// normalized form.
type YAMLDecoder struct{}

func (YAMLDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []*yaml.Node
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid yaml in %s: %v", domain.ErrDecodeFailed, filename, err)
		}
		docs = append(docs, &node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("%w: re-encode yaml %s: %v", domain.ErrDecodeFailed, filename, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: re-encode yaml %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	return &port.DecodeOutput{
		Content:  strings.TrimSpace(buf.String()),
		Metadata: withExtra(map[string]any{"documents": len(docs)}),
	}, nil
}
