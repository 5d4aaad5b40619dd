package decoder

import (
	"archive/zip"
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

var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// WordDecoder extracts paragraph text from .docx archives.
// Heading-styled paragraphs are rendered as Markdown headings.
type WordDecoder struct{}

func (WordDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	if bytes.HasPrefix(data, ole2Magic) {
		return nil, domain.ErrLegacyWordFormat
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found in %s", domain.ErrDecodeFailed, filename)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open document.xml: %v", domain.ErrDecodeFailed, err)
	}
	defer func() { _ = rc.Close() }()

	paragraphs, headings, err := walkDocumentXML(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	return &port.DecodeOutput{
		Content: strings.Join(paragraphs, "\n"),
		Metadata: withExtra(map[string]any{
			"paragraphs": len(paragraphs),
			"headings":   headings,
		}),
	}, nil
}

func walkDocumentXML(r io.Reader) ([]string, int, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		headings   int
		current    strings.Builder
		inPara     bool
		inText     bool
		style      string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
				style = ""
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			case "t":
				inText = true
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inPara = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					continue
				}
				if level := headingLevel(style); level > 0 {
					headings++
					text = strings.Repeat("#", level) + " " + text
				}
				paragraphs = append(paragraphs, text)
			}
		}
	}
	return paragraphs, headings, nil
}

// headingLevel maps paragraph styles like "Heading2" or "Title" to a level.
func headingLevel(style string) int {
	lower := strings.ToLower(style)
	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if rest, ok := strings.CutPrefix(lower, "heading"); ok {
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}
