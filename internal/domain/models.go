package domain

// ParsedRecord is the normalized result of parsing one URL.
// Success implies Content is set and Error is empty; failure implies the opposite.
type ParsedRecord struct {
	FileName string           `json:"file_name"`
	URL      string           `json:"url"`
	Category FileCategory     `json:"category"`
	Content  string           `json:"content"`
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	Table    *StructuredTable `json:"table,omitempty"`
	Metadata *RecordMetadata  `json:"metadata,omitempty"`
}

// NewSuccessRecord builds a successful record.
func NewSuccessRecord(fileName, url string, category FileCategory, content string) *ParsedRecord {
	return &ParsedRecord{
		FileName: fileName,
		URL:      url,
		Category: category,
		Content:  content,
		Success:  true,
	}
}

// NewFailedRecord builds an unsuccessful record carrying errMsg.
func NewFailedRecord(fileName, url string, category FileCategory, errMsg string) *ParsedRecord {
	if errMsg == "" {
		errMsg = "unknown error"
	}
	return &ParsedRecord{
		FileName: fileName,
		URL:      url,
		Category: category,
		Success:  false,
		Error:    errMsg,
	}
}

// RecordMetadata is the optional metadata bag attached to a record.
type RecordMetadata struct {
	Size       int64          `json:"size,omitempty"`
	MimeType   string         `json:"mime_type,omitempty"`
	SheetNames []string       `json:"sheet_names,omitempty"`
	RowCount   int            `json:"row_count,omitempty"`
	Truncated  bool           `json:"truncated,omitempty"`
	PageCount  int            `json:"page_count,omitempty"`
	Model      string         `json:"model,omitempty"`
	Usage      *TokenUsage    `json:"usage,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// StructuredTable is the raw tabular payload returned for OutputRaw.
type StructuredTable struct {
	Sheets []SheetData `json:"sheets"`
}

// SheetData holds one sheet (or the single CSV table).
// For sheets Rows includes the header row; for CSV it holds data rows only.
// TotalRows counts source rows before truncation.
type SheetData struct {
	Name      string     `json:"name"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// TokenUsage is a normalized (prompt, completion, total) token triple.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// SupportedFormat describes one entry of the classification table.
type SupportedFormat struct {
	Extension string       `json:"extension"`
	Category  FileCategory `json:"category"`
	Method    ParseMethod  `json:"method"`
}

// BatchProgress is delivered to progress callbacks after each batch item settles.
// Record is nil only when the item failed before a record could be built.
type BatchProgress struct {
	Completed int
	Total     int
	Record    *ParsedRecord
}

// BatchOptions controls a batch parse run.
type BatchOptions struct {
	Concurrency     int
	ContinueOnError bool
	// PreserveOrder reorders each chunk into input order. By default records
	// appear in the order they finished within their chunk.
	PreserveOrder bool
	// OnProgress is called once per settled URL from a single goroutine.
	OnProgress func(BatchProgress)
}
