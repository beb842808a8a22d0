package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Reader loads a raw listings table from a file on disk.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (dataframe.DataFrame, error)
}

// Options tune how a file is read.
type Options struct {
	// Sheet selects a workbook sheet by name; empty means the first sheet.
	Sheet string
}

// NaNValues are the cell contents loaded as missing.
var NaNValues = []string{"", "NA", "N/A", "NaN", "<nil>"}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadFile selects a reader based on filename and returns the raw table with
// every column typed as string.
func ReadFile(path string, opt Options) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read file: %w", err)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// FromRecords turns header + rows into a string-typed frame. Short rows are
// padded, long rows truncated, and a header-only input yields zero rows.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return dataframe.DataFrame{}, ErrEmpty
	}
	header := records[0]
	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		df := dataframe.New(cols...)
		return df, df.Err
	}
	for i := 1; i < len(records); i++ {
		row := records[i]
		switch {
		case len(row) < len(header):
			padded := make([]string, len(header))
			copy(padded, row)
			records[i] = padded
		case len(row) > len(header):
			records[i] = row[:len(header)]
		}
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNValues),
	)
	if df.Err != nil {
		return df, fmt.Errorf("load records: %w", df.Err)
	}
	return df, nil
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// ErrUnsupported indicates a file format with no registered reader.
var ErrUnsupported = errors.New("unsupported table format")

// ErrEmpty indicates a file without a header row.
var ErrEmpty = errors.New("table has no header row")
