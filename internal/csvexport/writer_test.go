package csvexport

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegate/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "File Name", row[0])
	assert.Equal(t, "Content Length", row[7])
}

func TestWriteRecords(t *testing.T) {
	tabular := domain.NewSuccessRecord("sales.csv", "https://x.com/sales.csv", domain.CategoryCSV, "| a |")
	tabular.Metadata = &domain.RecordMetadata{RowCount: 5, Truncated: true}
	failed := domain.NewFailedRecord("bad.json", "https://x.com/bad.json", domain.CategoryJSON, "invalid json, near \"x\"")
	image := domain.NewSuccessRecord("ü.png", "https://x.com/%C3%BC.png", domain.CategoryImage, "größe")

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]*domain.ParsedRecord{tabular, nil, failed, image}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"sales.csv", "https://x.com/sales.csv", "csv", "success", "", "5", "Yes", "5"}, rows[0])
	assert.Equal(t, []string{"bad.json", "https://x.com/bad.json", "json", "failed", "invalid json, near \"x\"", "", "", "0"}, rows[1])
	assert.Equal(t, "5", rows[2][7])
	assert.Equal(t, "", rows[2][5])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q1_sales_report", SanitizeFilename("Q1 sales / report!"))
	assert.Equal(t, "a-b_c", SanitizeFilename("__a-b___c__"))
	assert.Len(t, SanitizeFilename(strings.Repeat("x", 150)), 100)
}

func TestBuildFilename(t *testing.T) {
	date := time.Now().Format("2006-01-02")
	assert.Equal(t, "parse_results_"+date+".csv", BuildFilename("parse results"))
	assert.Equal(t, "batch_"+date+".csv", BuildFilename("!!!"))
}
