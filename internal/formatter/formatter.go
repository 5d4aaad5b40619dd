// Package formatter joins parsed records into one text document.
package formatter

import (
	"fmt"
	"strings"

	"filegate/internal/domain"
)

// Options controls Format. Use DefaultOptions for the standard layout.
type Options struct {
	IncludeTitle bool
	IncludeURL   bool
	Separator    string
	OnError      domain.ErrorPolicy
}

// DefaultOptions returns titles on, URLs off, "---" separators and the skip policy.
func DefaultOptions() Options {
	return Options{
		IncludeTitle: true,
		Separator:    "---",
		OnError:      domain.OnErrorSkip,
	}
}

// RecordError aborts formatting under the error policy. It matches
// domain.ErrFormattingAborted under errors.Is.
type RecordError struct {
	FileName string
	Message  string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %s: %s", domain.ErrFormattingAborted, e.FileName, e.Message)
}

func (e *RecordError) Is(target error) bool {
	return target == domain.ErrFormattingAborted
}

// Format renders records in input order. Blocks are joined by
// "\n<separator>\n". Under OnErrorFail the first failed record aborts with
// a *RecordError.
func Format(records []*domain.ParsedRecord, opts Options) (string, error) {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if !rec.Success {
			switch opts.OnError {
			case domain.OnErrorFail:
				return "", &RecordError{FileName: rec.FileName, Message: rec.Error}
			case domain.OnErrorInclude:
				blocks = append(blocks, fmt.Sprintf("[Error] %s: %s", rec.FileName, rec.Error))
			}
			continue
		}

		var sb strings.Builder
		if opts.IncludeTitle {
			fmt.Fprintf(&sb, "[%s] %s\n", rec.Category.Label(), rec.FileName)
		}
		if opts.IncludeURL {
			fmt.Fprintf(&sb, "URL: %s\n", rec.URL)
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(rec.Content)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n"+opts.Separator+"\n"), nil
}
