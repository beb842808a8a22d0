package listings

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// rawFrame builds a string-typed raw frame with every required column plus a
// pass-through room_type column. Unset cells are empty.
func rawFrame(t *testing.T, rows ...map[string]string) dataframe.DataFrame {
	t.Helper()
	header := append(RequiredColumns(), "room_type")
	records := [][]string{header}
	for _, r := range rows {
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = r[h]
		}
		records = append(records, rec)
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "N/A", "NaN"}),
	)
	if df.Err != nil {
		t.Fatalf("load records: %v", df.Err)
	}
	return df
}

func listingRow(over map[string]string) map[string]string {
	r := map[string]string{
		"id":                     "101",
		"host_id":                "9001",
		"host_name":              "Jo",
		"listing_url":            "https://www.airbnb.com/rooms/101",
		"latitude":               "42.35",
		"longitude":              "-71.06",
		"neighbourhood":          "Boston, Massachusetts",
		"neighbourhood_cleansed": "Back Bay",
		"price":                  "$200.00",
		"accommodates":           "4",
		"host_response_rate":     "95%",
		"host_acceptance_rate":   "80%",
		"host_is_superhost":      "t",
		"host_has_profile_pic":   "t",
		"host_identity_verified": "f",
		"instant_bookable":       "f",
		"has_availability":       "t",
		"host_listings_count":    "1",
		"host_since":             "2015-04-10",
		"last_scraped":           "2023-09-20",
		"review_scores_rating":   "4.85",
		"room_type":              "Entire home/apt",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func TestCleanDerivesFields(t *testing.T) {
	raw := rawFrame(t,
		listingRow(nil),
		listingRow(map[string]string{
			"host_id": "9002", "price": "$1,250.00", "accommodates": "0",
			"host_is_superhost": "", "host_listings_count": "5",
			"host_response_rate": "N/A", "host_since": "", "neighbourhood_cleansed": "Allston",
		}),
		listingRow(map[string]string{
			"host_id": "9003", "price": "call me", "host_listings_count": "12",
			"host_is_superhost": "f", "review_scores_rating": "",
		}),
	)
	tbl, err := Clean(context.Background(), raw, Options{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}
	rows := tbl.Rows()

	a := rows[0]
	if !a.PricePerPerson.Valid || a.PricePerPerson.Value != 50 {
		t.Fatalf("row0 price_per_person: %+v", a.PricePerPerson)
	}
	if a.HostIsSuperhost != FlagTrue || a.HostIdentityVerified != FlagFalse {
		t.Fatalf("row0 flags: %v %v", a.HostIsSuperhost, a.HostIdentityVerified)
	}
	if a.HostType != HostTypeSingle || a.HostTenure.Value != 8 {
		t.Fatalf("row0 host_type=%q tenure=%+v", a.HostType, a.HostTenure)
	}
	if a.HostResponseRate.Value != 0.95 || a.HostAcceptanceRate.Value != 0.8 {
		t.Fatalf("row0 rates: %+v %+v", a.HostResponseRate, a.HostAcceptanceRate)
	}
	if a.Neighborhood != "Back Bay" || a.HostID != "9001" {
		t.Fatalf("row0 identity fields: %+v", a)
	}

	b := rows[1]
	if !b.Price.Valid || b.Price.Value != 1250 {
		t.Fatalf("row1 price_num: %+v", b.Price)
	}
	if b.PricePerPerson.Valid {
		t.Fatalf("row1 price_per_person should be undefined for zero capacity")
	}
	if b.HostIsSuperhost != FlagUnknown {
		t.Fatalf("row1 empty superhost must stay unknown, got %v", b.HostIsSuperhost)
	}
	if b.HostType != HostTypeSmall || b.HostTenure.Valid || b.HostResponseRate.Valid {
		t.Fatalf("row1 derived: %+v", b)
	}

	c := rows[2]
	if c.Price.Valid || c.PricePerPerson.Valid {
		t.Fatalf("row2 malformed price should be undefined: %+v", c)
	}
	if c.HostType != HostTypeLarge || c.HostIsSuperhost != FlagFalse || c.ReviewScoresRating.Valid {
		t.Fatalf("row2 derived: %+v", c)
	}

	if got := tbl.Neighborhoods(); strings.Join(got, ",") != "Allston,Back Bay" {
		t.Fatalf("neighborhoods: %v", got)
	}
	st := tbl.Stats()
	if st.Unknown[ColPricePerPerson] != 2 || st.Unknown[ColSuperhost] != 1 || st.Unknown[ColHostTenure] != 1 {
		t.Fatalf("stats: %+v", st.Unknown)
	}
}

func TestCleanFrameShape(t *testing.T) {
	tbl, err := Clean(context.Background(), rawFrame(t, listingRow(nil)), Options{FlagStyle: StyleBinary})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	df := tbl.DataFrame()
	names := map[string]bool{}
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, gone := range append(append([]string{}, PIIColumns...), "neighbourhood", "calendar_updated", ColNeighborhoodRaw) {
		if names[gone] {
			t.Fatalf("column %q should have been dropped", gone)
		}
	}
	for _, want := range []string{ColNeighborhood, ColPriceNum, ColPricePerPerson, ColHostType, ColHostTenure, "room_type", ColPrice} {
		if !names[want] {
			t.Fatalf("expected column %q in %v", want, df.Names())
		}
	}
	if got := df.Col(ColSuperhost).Elem(0).String(); got != "1" {
		t.Fatalf("binary style superhost: %q", got)
	}
	if got := df.Col(ColHostType).Elem(0).String(); got != string(HostTypeSingle) {
		t.Fatalf("host_type cell: %q", got)
	}
}

func TestCleanLabelStyleLeavesUnknownAsNA(t *testing.T) {
	tbl, err := Clean(context.Background(), rawFrame(t, listingRow(map[string]string{"host_is_superhost": "x"})), Options{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !tbl.DataFrame().Col(ColSuperhost).Elem(0).IsNA() {
		t.Fatalf("unknown flag should be NA in the cleaned frame")
	}
	if got := tbl.DataFrame().Col(ColHasProfilePic).Elem(0).String(); got != "Has Profile Pic" {
		t.Fatalf("label style: %q", got)
	}
}

func TestCleanMissingColumns(t *testing.T) {
	records := [][]string{
		{"id", "price", "accommodates"},
		{"1", "$10", "2"},
	}
	raw := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	_, err := Clean(context.Background(), raw, Options{})
	if err == nil {
		t.Fatalf("expected missing column error")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	var mce *MissingColumnsError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnsError, got %T", err)
	}
	for _, c := range mce.Columns {
		if c == "price" || c == "id" {
			t.Fatalf("present column %q reported missing", c)
		}
	}
	if len(mce.Columns) != len(RequiredColumns())-3 {
		t.Fatalf("expected %d missing, got %d", len(RequiredColumns())-3, len(mce.Columns))
	}
}

func TestTableImmutableRows(t *testing.T) {
	tbl, err := Clean(context.Background(), rawFrame(t, listingRow(nil)), Options{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	rows := tbl.Rows()
	rows[0].Neighborhood = "Mutated"
	if tbl.Rows()[0].Neighborhood != "Back Bay" {
		t.Fatalf("Rows must return a copy")
	}
	clone := tbl.Clone()
	if clone.Len() != tbl.Len() || clone.Rows()[0].HostID != "9001" {
		t.Fatalf("clone mismatch")
	}
}

func TestTableWriteCSVAndXLSX(t *testing.T) {
	tbl, err := Clean(context.Background(), rawFrame(t,
		listingRow(nil),
		listingRow(map[string]string{"price": "n/a", "host_id": "7"}),
	), Options{})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	head := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(head, "price_per_person") || strings.Contains(head, "host_name") {
		t.Fatalf("unexpected csv header: %s", head)
	}

	buf.Reset()
	if err := tbl.WriteXLSX(&buf, ""); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("listings")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	col := -1
	for i, h := range rows[0] {
		if h == ColPricePerPerson {
			col = i
		}
	}
	if col < 0 {
		t.Fatalf("price_per_person missing from xlsx header")
	}
	if len(rows[2]) > col && rows[2][col] != "" {
		t.Fatalf("unknown price_per_person should be blank, got %q", rows[2][col])
	}
}
