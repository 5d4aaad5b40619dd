package domain

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrFetchFailed       = errors.New("file download failed")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrDecodeFailed      = errors.New("file content could not be decoded")
	ErrLegacyWordFormat  = errors.New("legacy .doc binary format is not supported, convert to .docx")
	ErrLegacyExcelFormat = errors.New("legacy .xls binary format is not supported, convert to .xlsx")
	ErrVisionFailed      = errors.New("vision recognition failed")
	ErrFormattingAborted = errors.New("formatting aborted on failed record")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
