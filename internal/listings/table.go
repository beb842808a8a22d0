package listings

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Table is the cleaned listings table. It is built once by Clean and never
// mutated afterwards; accessors hand out copies.
type Table struct {
	df            dataframe.DataFrame
	rows          []Listing
	style         FlagStyle
	neighborhoods []string
}

func newTable(df dataframe.DataFrame, rows []Listing, style FlagStyle) *Table {
	seen := make(map[string]bool)
	var hoods []string
	for _, r := range rows {
		if r.Neighborhood == "" || seen[r.Neighborhood] {
			continue
		}
		seen[r.Neighborhood] = true
		hoods = append(hoods, r.Neighborhood)
	}
	sort.Strings(hoods)
	return &Table{df: df, rows: rows, style: style, neighborhoods: hoods}
}

// NewTable builds a table from already cleaned rows, without a backing frame
// of pass-through columns.
func NewTable(rows []Listing, style FlagStyle) *Table {
	cp := make([]Listing, len(rows))
	copy(cp, rows)
	return newTable(dataframe.DataFrame{}, cp, style)
}

// Len returns the number of listings.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the cleaned listings.
func (t *Table) Rows() []Listing {
	out := make([]Listing, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every listing without copying the slice.
func (t *Table) Each(fn func(Listing)) {
	for _, r := range t.rows {
		fn(r)
	}
}

// Neighborhoods returns the sorted distinct non-empty neighborhoods.
func (t *Table) Neighborhoods() []string {
	return append([]string(nil), t.neighborhoods...)
}

// FlagStyle returns the style flags were encoded with.
func (t *Table) FlagStyle() FlagStyle { return t.style }

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		rows:          t.Rows(),
		style:         t.style,
		neighborhoods: t.Neighborhoods(),
	}
	if t.df.Ncol() > 0 {
		c.df = t.df.Copy()
	}
	return c
}

// DataFrame returns a copy of the cleaned frame, including pass-through columns.
func (t *Table) DataFrame() dataframe.DataFrame {
	if t.df.Ncol() == 0 {
		return t.df
	}
	return t.df.Copy()
}

// Stats summarizes how many values of each derived field ended up unknown.
type Stats struct {
	Rows    int
	Unknown map[string]int
}

// Stats counts unknown values per derived column.
func (t *Table) Stats() Stats {
	st := Stats{Rows: len(t.rows), Unknown: make(map[string]int)}
	bump := func(col string, known bool) {
		if !known {
			st.Unknown[col]++
		}
	}
	for _, r := range t.rows {
		bump(ColPriceNum, r.Price.Valid)
		bump(ColPricePerPerson, r.PricePerPerson.Valid)
		bump(ColResponseRate, r.HostResponseRate.Valid)
		bump(ColAcceptanceRate, r.HostAcceptanceRate.Valid)
		bump(ColHostType, r.HostType.Known())
		bump(ColHostTenure, r.HostTenure.Valid)
		bump(ColReviewScoresRating, r.ReviewScoresRating.Valid)
		for _, col := range FlagColumns {
			bump(col, r.flag(col).Known())
		}
	}
	return st
}

// WriteCSV writes the cleaned frame as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	if t.df.Ncol() == 0 {
		return fmt.Errorf("table has no backing frame")
	}
	if err := t.df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the cleaned frame to a single-sheet workbook. Unknown
// values are left as blank cells.
func (t *Table) WriteXLSX(w io.Writer, sheet string) error {
	if t.df.Ncol() == 0 {
		return fmt.Errorf("table has no backing frame")
	}
	if sheet == "" {
		sheet = "listings"
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	names := t.df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	nrow, ncol := t.df.Dims()
	for r := 0; r < nrow; r++ {
		row := make([]interface{}, ncol)
		for c := 0; c < ncol; c++ {
			e := t.df.Elem(r, c)
			if e.IsNA() {
				row[c] = nil
				continue
			}
			switch e.Type() {
			case series.Int:
				v, err := e.Int()
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", r+1, names[c], err)
				}
				row[c] = v
			case series.Float:
				row[c] = e.Float()
			default:
				row[c] = e.String()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
