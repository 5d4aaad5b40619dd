package decoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// PDFDecoder extracts the embedded text layer. A PDF with no extractable
// text (a scan) is reported as a decode failure so callers can fall back to
// vision recognition.
type PDFDecoder struct{}

func (PDFDecoder) Decode(_ context.Context, data []byte, filename string) (out *port.DecodeOutput, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: read pdf %s: %v", domain.ErrDecodeFailed, filename, r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pdf text %s: %v", domain.ErrDecodeFailed, filename, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("%w: read pdf text %s: %v", domain.ErrDecodeFailed, filename, err)
	}

	content := strings.TrimSpace(normalizeText(buf.Bytes()))
	if content == "" {
		return nil, fmt.Errorf("%w: %s has no extractable text", domain.ErrDecodeFailed, filename)
	}

	return &port.DecodeOutput{
		Content: content,
		Metadata: &domain.RecordMetadata{
			PageCount: doc.NumPage(),
		},
	}, nil
}
