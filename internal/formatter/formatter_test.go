package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/domain"
)

func sampleRecords() []*domain.ParsedRecord {
	return []*domain.ParsedRecord{
		domain.NewSuccessRecord("a.csv", "https://x.com/a.csv", domain.CategoryCSV, "| h |"),
		domain.NewFailedRecord("b.json", "https://x.com/b.json", domain.CategoryJSON, "invalid json"),
		domain.NewSuccessRecord("c.txt", "https://x.com/c.txt", domain.CategoryText, "hello"),
	}
}

func TestFormat_DefaultSkipsFailures(t *testing.T) {
	out, err := Format(sampleRecords(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "[CSV] a.csv\n\n| h |\n---\n[Text] c.txt\n\nhello", out)
}

func TestFormat_IncludeFailuresAndURLs(t *testing.T) {
	opts := Options{IncludeTitle: true, IncludeURL: true, Separator: "===", OnError: domain.OnErrorInclude}
	out, err := Format(sampleRecords(), opts)
	require.NoError(t, err)

	assert.Equal(t,
		"[CSV] a.csv\nURL: https://x.com/a.csv\n\n| h |"+
			"\n===\n[Error] b.json: invalid json"+
			"\n===\n[Text] c.txt\nURL: https://x.com/c.txt\n\nhello",
		out)
}

func TestFormat_NoTitle(t *testing.T) {
	out, err := Format(sampleRecords()[:1], Options{Separator: "---", OnError: domain.OnErrorSkip})
	require.NoError(t, err)
	assert.Equal(t, "| h |", out)
}

func TestFormat_ErrorPolicyAbortsAtFirstFailure(t *testing.T) {
	_, err := Format(sampleRecords(), Options{OnError: domain.OnErrorFail, Separator: "---"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormattingAborted)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "b.json", recErr.FileName)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestFormat_ErrorPolicyWithoutFailures(t *testing.T) {
	recs := sampleRecords()
	out, err := Format([]*domain.ParsedRecord{recs[0], recs[2]}, Options{IncludeTitle: true, OnError: domain.OnErrorFail, Separator: "---"})
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestFormat_Empty(t *testing.T) {
	out, err := Format(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, out)
}
