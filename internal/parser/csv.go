package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvReader) Read(path string, _ Options) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	comma := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		comma = '\t'
	}
	records, err := ReadRecords(f, comma)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	return FromRecords(records)
}

// ReadRecords reads delimited records, dropping a UTF-8 byte order mark and
// tolerating ragged rows.
func ReadRecords(r io.Reader, comma rune) ([][]string, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) > 0 {
		for i, h := range records[0] {
			records[0][i] = strings.TrimSpace(h)
		}
	}
	return records, nil
}
