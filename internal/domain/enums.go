package domain

// FileCategory is the semantic kind of a file, derived from its extension.
type FileCategory string

const (
	CategoryExcel    FileCategory = "excel"
	CategoryCSV      FileCategory = "csv"
	CategoryWord     FileCategory = "word"
	CategoryText     FileCategory = "text"
	CategoryPDF      FileCategory = "pdf"
	CategoryJSON     FileCategory = "json"
	CategoryYAML     FileCategory = "yaml"
	CategoryXML      FileCategory = "xml"
	CategoryHTML     FileCategory = "html"
	CategoryMarkdown FileCategory = "markdown"
	CategoryImage    FileCategory = "image"
	CategoryAudio    FileCategory = "audio"
	CategoryVideo    FileCategory = "video"
	CategoryUnknown  FileCategory = "unknown"
)

// IsTabular reports whether the category is handled by the tabular extractor.
func (c FileCategory) IsTabular() bool {
	return c == CategoryExcel || c == CategoryCSV
}

// IsMedia reports whether the category can only be understood by a vision provider.
func (c FileCategory) IsMedia() bool {
	return c == CategoryImage || c == CategoryAudio || c == CategoryVideo
}

// CategoryLabels maps categories to the human-readable label used in titles and placeholders.
var CategoryLabels = map[FileCategory]string{
	CategoryExcel:    "Excel",
	CategoryCSV:      "CSV",
	CategoryWord:     "Word",
	CategoryText:     "Text",
	CategoryPDF:      "PDF",
	CategoryJSON:     "JSON",
	CategoryYAML:     "YAML",
	CategoryXML:      "XML",
	CategoryHTML:     "HTML",
	CategoryMarkdown: "Markdown",
	CategoryImage:    "Image",
	CategoryAudio:    "Audio",
	CategoryVideo:    "Video",
	CategoryUnknown:  "Unknown",
}

// Label returns the display label for the category.
func (c FileCategory) Label() string {
	if l, ok := CategoryLabels[c]; ok {
		return l
	}
	return CategoryLabels[CategoryUnknown]
}

// OutputFormat selects how tabular data is rendered.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputJSON     OutputFormat = "json"
	OutputCSV      OutputFormat = "csv"
	OutputRaw      OutputFormat = "raw"
)

// ValidOutputFormats lists every accepted OutputFormat.
var ValidOutputFormats = map[OutputFormat]bool{
	OutputMarkdown: true,
	OutputJSON:     true,
	OutputCSV:      true,
	OutputRaw:      true,
}

// ErrorPolicy controls how the result formatter treats unsuccessful records.
type ErrorPolicy string

const (
	OnErrorSkip    ErrorPolicy = "skip"
	OnErrorInclude ErrorPolicy = "include"
	OnErrorFail    ErrorPolicy = "error"
)

// Valid reports whether p is a known policy.
func (p ErrorPolicy) Valid() bool {
	switch p {
	case OnErrorSkip, OnErrorInclude, OnErrorFail:
		return true
	}
	return false
}

// ProviderKind identifies a vision provider backend.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderGemini    ProviderKind = "gemini"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderCustom    ProviderKind = "custom"
)

// ParseMethod describes how a category is processed.
type ParseMethod string

const (
	MethodLocal       ParseMethod = "local"
	MethodAI          ParseMethod = "AI"
	MethodLocalThenAI ParseMethod = "local-then-AI"
)
