package tabular

import (
	"fmt"
	"strings"

	"filegate/internal/domain"
)

// ExtractCSV parses delimited text. The first non-blank line is the header;
// the row cap and totals apply to the data rows after it.
func ExtractCSV(data []byte, filename string, opts Options) (*Result, error) {
	delim := opts.delimiter()
	lines := splitLines(string(data))

	var parsed [][]string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed = append(parsed, ParseLine(line, delim))
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: %s contains no rows", domain.ErrDecodeFailed, filename)
	}

	headers := parsed[0]
	body := parsed[1:]
	total := len(body)
	include := rowsToInclude(total, opts.MaxRows)
	included := body[:include]

	res := &Result{
		RowCount:  include,
		Truncated: isTruncated(total, opts.MaxRows),
	}

	switch opts.format() {
	case domain.OutputRaw:
		res.Table = &domain.StructuredTable{Sheets: []domain.SheetData{{
			Name:      filename,
			Headers:   headers,
			Rows:      included,
			TotalRows: total,
		}}}
		res.Content = fmt.Sprintf("%d columns, %d rows", len(headers), total)
	case domain.OutputJSON:
		out, err := renderJSONRows(headers, included)
		if err != nil {
			return nil, fmt.Errorf("rendering %s as json: %w", filename, err)
		}
		res.Content = out
	case domain.OutputCSV:
		res.Content = renderCSV(append([][]string{headers}, included...), delim)
	case domain.OutputMarkdown:
		res.Content = renderMarkdown(headers, included, total-include)
	default:
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}
	return res, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// ParseLine splits one delimited line. Quotes toggle quoted mode unless
// doubled, the delimiter only splits outside quotes, and fields are trimmed.
func ParseLine(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
