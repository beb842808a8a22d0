package parser

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(path string, opt Options) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx %s: %w", path, ErrEmpty)
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return dataframe.DataFrame{}, fmt.Errorf("sheet %q not found (have %s)", opt.Sheet, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	// drop fully empty trailing rows; GetRows already trims trailing empty cells
	for len(rows) > 1 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	if len(rows) > 0 {
		for i, h := range rows[0] {
			rows[0][i] = strings.TrimSpace(h)
		}
	}
	return FromRecords(rows)
}
