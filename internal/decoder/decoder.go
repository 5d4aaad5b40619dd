// Package decoder holds the local format decoders for non-tabular documents
// and the category table that routes files to them.
package decoder

import (
	"strings"
	"unicode/utf8"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/port"
	"filegate/internal/tabular"
)

// Registry maps a file category to the decoder that handles it locally.
type Registry map[domain.FileCategory]port.Decoder

// NewRegistry builds the decoder table. Tabular decoders take their row cap and
// output format from excel and csv.
func NewRegistry(excel, csv tabular.Options) Registry {
	return Registry{
		domain.CategoryExcel:    tabular.ExcelDecoder{Options: excel},
		domain.CategoryCSV:      tabular.CSVDecoder{Options: csv},
		domain.CategoryWord:     WordDecoder{},
		domain.CategoryText:     TextDecoder{},
		domain.CategoryPDF:      PDFDecoder{},
		domain.CategoryJSON:     JSONDecoder{},
		domain.CategoryYAML:     YAMLDecoder{},
		domain.CategoryXML:      XMLDecoder{},
		domain.CategoryHTML:     NewHTMLDecoder(),
		domain.CategoryMarkdown: MarkdownDecoder{},
	}
}

// Lookup returns the decoder registered for c.
func (r Registry) Lookup(c domain.FileCategory) (port.Decoder, bool) {
	d, ok := r[c]
	return d, ok
}

func withExtra(extra map[string]any) *domain.RecordMetadata {
	return &domain.RecordMetadata{Extra: extra}
}

// normalizeText strips a UTF-8 BOM, replaces invalid sequences and
// converts line endings to \n.
func normalizeText(b []byte) string {
	s := string(b)
	s = strings.TrimPrefix(s, "\ufeff")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\ufffd")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// RegistryFromConfig builds the decoder table from the excel and csv settings.
func RegistryFromConfig(cfg *config.Config) Registry {
	return NewRegistry(
		tabular.Options{
			MaxRows:   cfg.Excel.MaxRows,
			AllSheets: cfg.Excel.AllSheets,
			Format:    cfg.Excel.OutputFormat,
		},
		tabular.Options{
			MaxRows:   cfg.CSV.MaxRows,
			Delimiter: cfg.CSV.Delimiter,
			Format:    cfg.CSV.OutputFormat,
		},
	)
}
