package tabular

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"filegate/internal/domain"
)

// buildWorkbook writes sheets in order; each sheet gets a header plus n rows.
func buildWorkbook(t *testing.T, sheets []string, rows []int) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetSheetRow(name, "A1", &[]any{"sku", "qty"}))
		for r := 1; r <= rows[i]; r++ {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &[]any{fmt.Sprintf("%s-%d", name, r), r}))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractExcel_AllSheetsMarkdown(t *testing.T) {
	data := buildWorkbook(t, []string{"Stock", "Returns"}, []int{2, 1})

	res, err := ExtractExcel(data, "book.xlsx", Options{MaxRows: -1, AllSheets: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Stock", "Returns"}, res.SheetNames)
	assert.Contains(t, res.Content, "## Stock")
	assert.Contains(t, res.Content, "## Returns")
	assert.Contains(t, res.Content, "| sku | qty |")
	assert.Contains(t, res.Content, "| Returns-1 | 1 |")
	assert.Equal(t, 5, res.RowCount)
	assert.False(t, res.Truncated)
}

func TestExtractExcel_FirstSheetOnly(t *testing.T) {
	data := buildWorkbook(t, []string{"Stock", "Returns"}, []int{2, 1})

	res, err := ExtractExcel(data, "book.xlsx", Options{AllSheets: false})
	require.NoError(t, err)

	assert.Equal(t, []string{"Stock", "Returns"}, res.SheetNames)
	assert.Contains(t, res.Content, "## Stock")
	assert.NotContains(t, res.Content, "## Returns")
	assert.Equal(t, 3, res.RowCount)
}

func TestExtractExcel_TruncatedIsSticky(t *testing.T) {
	data := buildWorkbook(t, []string{"Big", "Small"}, []int{9, 1})

	res, err := ExtractExcel(data, "book.xlsx", Options{MaxRows: 3, AllSheets: true})
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	// 3 from Big, 2 from Small
	assert.Equal(t, 5, res.RowCount)
	assert.Contains(t, res.Content, "7 more rows omitted")
}

func TestExtractExcel_Raw(t *testing.T) {
	data := buildWorkbook(t, []string{"Big"}, []int{9})

	res, err := ExtractExcel(data, "book.xlsx", Options{MaxRows: 4, AllSheets: true, Format: domain.OutputRaw})
	require.NoError(t, err)
	require.NotNil(t, res.Table)
	require.Len(t, res.Table.Sheets, 1)

	sheet := res.Table.Sheets[0]
	assert.Equal(t, "Big", sheet.Name)
	assert.Equal(t, 10, sheet.TotalRows)
	assert.Len(t, sheet.Rows, 4)
	assert.Equal(t, []string{"sku", "qty"}, sheet.Headers)
	assert.Equal(t, "Big: 10 rows", res.Content)
}

func TestExtractExcel_JSONTagsSheet(t *testing.T) {
	data := buildWorkbook(t, []string{"Stock"}, []int{1})

	res, err := ExtractExcel(data, "book.xlsx", Options{AllSheets: true, Format: domain.OutputJSON})
	require.NoError(t, err)

	assert.Contains(t, res.Content, `"sheet": "Stock"`)
	assert.Contains(t, res.Content, `"sku": "Stock-1"`)
}

func TestExtractExcel_InvalidBytes(t *testing.T) {
	_, err := ExtractExcel([]byte("not a workbook"), "broken.xlsx", Options{})
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestExtractExcel_LegacyBinaryWorkbook(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)

	_, err := ExtractExcel(data, "report.xls", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLegacyExcelFormat)
	assert.NotErrorIs(t, err, domain.ErrDecodeFailed)
	assert.Contains(t, err.Error(), "report.xls")

	_, err = ExcelDecoder{}.Decode(context.Background(), data, "report.xls")
	assert.ErrorIs(t, err, domain.ErrLegacyExcelFormat)
}

func TestExcelDecoder_Metadata(t *testing.T) {
	data := buildWorkbook(t, []string{"Stock"}, []int{6})

	out, err := ExcelDecoder{Options: Options{MaxRows: 2, AllSheets: true}}.Decode(context.Background(), data, "book.xlsx")
	require.NoError(t, err)
	require.NotNil(t, out.Metadata)

	assert.Equal(t, 2, out.Metadata.RowCount)
	assert.True(t, out.Metadata.Truncated)
	assert.Equal(t, []string{"Stock"}, out.Metadata.SheetNames)
}
