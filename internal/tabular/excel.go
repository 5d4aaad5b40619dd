package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"filegate/internal/domain"
)

// ole2Magic opens every BIFF (.xls) workbook. excelize reads OOXML only.
var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ExtractExcel decodes a workbook. The first row of each sheet is its header
// and stays part of the row matrix; the row cap counts it.
func ExtractExcel(data []byte, filename string, opts Options) (*Result, error) {
	if bytes.HasPrefix(data, ole2Magic) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLegacyExcelFormat, filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", domain.ErrDecodeFailed, filename, err)
	}
	defer func() { _ = f.Close() }()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", domain.ErrDecodeFailed, filename)
	}

	toProcess := sheetNames
	if !opts.AllSheets {
		toProcess = sheetNames[:1]
	}

	res := &Result{SheetNames: sheetNames}
	var table *domain.StructuredTable
	if opts.format() == domain.OutputRaw {
		table = &domain.StructuredTable{}
	}

	blocks := make([]string, 0, len(toProcess))
	for _, name := range toProcess {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q of %s: %v", domain.ErrDecodeFailed, name, filename, err)
		}

		total := len(rows)
		include := rowsToInclude(total, opts.MaxRows)
		if isTruncated(total, opts.MaxRows) {
			res.Truncated = true
		}
		res.RowCount += include

		block, err := renderSheet(name, rows, total, include, opts, table)
		if err != nil {
			return nil, fmt.Errorf("rendering sheet %q of %s: %w", name, filename, err)
		}
		blocks = append(blocks, block)
	}

	res.Content = strings.Join(blocks, "\n\n")
	res.Table = table
	return res, nil
}

func renderSheet(name string, rows [][]string, total, include int, opts Options, table *domain.StructuredTable) (string, error) {
	var header []string
	if total > 0 {
		header = rows[0]
	}
	var body [][]string
	if include > 1 {
		body = rows[1:include]
	}

	switch opts.format() {
	case domain.OutputRaw:
		table.Sheets = append(table.Sheets, domain.SheetData{
			Name:      name,
			Headers:   header,
			Rows:      rows[:include],
			TotalRows: total,
		})
		return fmt.Sprintf("%s: %d rows", name, total), nil
	case domain.OutputJSON:
		records, err := jsonRows(header, body)
		if err != nil {
			return "", err
		}
		out, err := json.MarshalIndent(sheetJSON{Sheet: name, Data: records}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case domain.OutputCSV:
		return "# " + name + "\n" + renderCSV(rows[:include], opts.delimiter()), nil
	case domain.OutputMarkdown:
		if total == 0 {
			return "## " + name + "\n\n(empty sheet)", nil
		}
		return "## " + name + "\n\n" + renderMarkdown(header, body, total-include), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

type sheetJSON struct {
	Sheet string       `json:"sheet"`
	Data  []orderedRow `json:"data"`
}
