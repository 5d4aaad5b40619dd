package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"filegate/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"File Name",
	"URL",
	"Category",
	"Status",
	"Error",
	"Row Count",
	"Truncated",
	"Content Length",
}

// Writer wraps csv.Writer for exporting batch results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords writes one summary row per record. Nil records are skipped.
func (w *Writer) WriteRecords(recs []*domain.ParsedRecord) error {
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if err := w.csv.Write(recordToRow(rec)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// recordToRow converts a record to a summary row. Row count and truncation
// are blank for records without tabular metadata.
func recordToRow(rec *domain.ParsedRecord) []string {
	row := make([]string, len(columns))
	row[0] = rec.FileName
	row[1] = rec.URL
	row[2] = string(rec.Category)
	row[3] = formatStatus(rec.Success)
	row[4] = rec.Error
	if m := rec.Metadata; m != nil && rec.Category.IsTabular() {
		row[5] = strconv.Itoa(m.RowCount)
		row[6] = formatBool(m.Truncated)
	}
	row[7] = strconv.Itoa(utf8.RuneCountInString(rec.Content))
	return row
}

func formatStatus(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: {sanitized_prefix}_{YYYY-MM-DD}.csv
func BuildFilename(prefix string) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = "batch"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
