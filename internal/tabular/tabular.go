// Package tabular converts spreadsheet and delimited-text bytes into rendered
// text or a raw row matrix, under a row cap and output format policy.
package tabular

import (
	"filegate/internal/domain"
)

// Options controls tabular extraction. MaxRows <= 0 means unlimited.
type Options struct {
	MaxRows   int
	AllSheets bool                // Excel only
	Delimiter string              // CSV only, default ","
	Format    domain.OutputFormat // default markdown
}

func (o Options) format() domain.OutputFormat {
	if o.Format == "" {
		return domain.OutputMarkdown
	}
	return o.Format
}

func (o Options) delimiter() rune {
	for _, r := range o.Delimiter {
		return r
	}
	return ','
}

// Result is the outcome of a tabular extraction.
type Result struct {
	Content    string
	Table      *domain.StructuredTable // set only for raw output
	SheetNames []string
	RowCount   int // rows included across all processed sheets
	Truncated  bool
}

// rowsToInclude applies the row cap to total.
func rowsToInclude(total, maxRows int) int {
	if maxRows > 0 && total > maxRows {
		return maxRows
	}
	return total
}

func isTruncated(total, maxRows int) bool {
	return maxRows > 0 && total > maxRows
}
