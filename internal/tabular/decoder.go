package tabular

import (
	"context"

	"filegate/internal/domain"
	"filegate/internal/port"
)

// ExcelDecoder adapts ExtractExcel to port.Decoder.
type ExcelDecoder struct {
	Options Options
}

func (d ExcelDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	res, err := ExtractExcel(data, filename, d.Options)
	if err != nil {
		return nil, err
	}
	return toOutput(res), nil
}

// CSVDecoder adapts ExtractCSV to port.Decoder.
type CSVDecoder struct {
	Options Options
}

func (d CSVDecoder) Decode(_ context.Context, data []byte, filename string) (*port.DecodeOutput, error) {
	res, err := ExtractCSV(data, filename, d.Options)
	if err != nil {
		return nil, err
	}
	return toOutput(res), nil
}

func toOutput(res *Result) *port.DecodeOutput {
	return &port.DecodeOutput{
		Content: res.Content,
		Table:   res.Table,
		Metadata: &domain.RecordMetadata{
			SheetNames: res.SheetNames,
			RowCount:   res.RowCount,
			Truncated:  res.Truncated,
		},
	}
}
