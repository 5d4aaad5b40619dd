package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// renderMarkdown renders a pipe table; omitted > 0 appends a trailing note.
func renderMarkdown(header []string, body [][]string, omitted int) string {
	cols := len(header)
	for _, r := range body {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		cols = 1
	}

	var sb strings.Builder
	writeMarkdownRow(&sb, header, cols)
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteByte('\n')
	for _, r := range body {
		writeMarkdownRow(&sb, r, cols)
	}

	out := strings.TrimSuffix(sb.String(), "\n")
	if omitted > 0 {
		out += fmt.Sprintf("\n\n... %d more rows omitted", omitted)
	}
	return out
}

func writeMarkdownRow(sb *strings.Builder, row []string, cols int) {
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(row) {
			cell = escapeMarkdownCell(row[i])
		}
		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}

var markdownCellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

func escapeMarkdownCell(s string) string {
	return markdownCellReplacer.Replace(s)
}

// renderCSV re-serializes rows, quoting fields that contain the delimiter,
// a quote, or a line break.
func renderCSV(rows [][]string, delim rune) string {
	lines := make([]string, 0, len(rows))
	sep := string(delim)
	for _, r := range rows {
		fields := make([]string, len(r))
		for i, f := range r {
			fields[i] = quoteCSVField(f, delim)
		}
		lines = append(lines, strings.Join(fields, sep))
	}
	return strings.Join(lines, "\n")
}

func quoteCSVField(s string, delim rune) string {
	if strings.ContainsRune(s, delim) || strings.ContainsAny(s, "\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// orderedRow is a JSON object whose keys keep header order.
type orderedRow struct {
	keys   []string
	values map[string]string
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonRows keys each cell by its header, or by col<N> (1-based) when the
// header cell is missing or blank.
func jsonRows(header []string, body [][]string) ([]orderedRow, error) {
	out := make([]orderedRow, 0, len(body))
	for _, r := range body {
		width := len(header)
		if len(r) > width {
			width = len(r)
		}
		row := orderedRow{values: make(map[string]string, width)}
		for i := 0; i < width; i++ {
			key := ""
			if i < len(header) {
				key = strings.TrimSpace(header[i])
			}
			if key == "" {
				key = fmt.Sprintf("col%d", i+1)
			}
			val := ""
			if i < len(r) {
				val = r[i]
			}
			if _, seen := row.values[key]; !seen {
				row.keys = append(row.keys, key)
			}
			row.values[key] = val
		}
		out = append(out, row)
	}
	return out, nil
}

func renderJSONRows(header []string, body [][]string) (string, error) {
	rows, err := jsonRows(header, body)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
