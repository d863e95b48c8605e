package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/xuri/excelize/v2"
)

type spreadsheetParser struct{}

func (spreadsheetParser) Name() string { return "spreadsheet" }

// Parse reads the first sheet of a workbook; its first row is the header.
func (spreadsheetParser) Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return analysis.NewTable(name, nil, nil, opt), nil
	}
	return analysis.NewTable(name, rows[0], rows[1:], opt), nil
}
