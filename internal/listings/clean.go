package listings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"k8s.io/klog/v2"
)

// Raw and derived column names.
const (
	ColHostID             = "host_id"
	ColNeighborhoodRaw    = "neighbourhood_cleansed"
	ColNeighborhood       = "neighborhood"
	ColPrice              = "price"
	ColPriceNum           = "price_num"
	ColAccommodates       = "accommodates"
	ColPricePerPerson     = "price_per_person"
	ColResponseRate       = "host_response_rate"
	ColAcceptanceRate     = "host_acceptance_rate"
	ColHostListingsCount  = "host_listings_count"
	ColHostType           = "host_type"
	ColHostSince          = "host_since"
	ColLastScraped        = "last_scraped"
	ColHostTenure         = "host_tenure"
	ColReviewScoresRating = "review_scores_rating"
)

// PIIColumns are identifying columns removed before anything else runs.
var PIIColumns = []string{
	"id", "host_name", "listing_url", "picture_url", "host_url",
	"host_thumbnail_url", "host_picture_url", "host_location", "host_about",
	"latitude", "longitude", "neighbourhood_group_cleansed",
}

// sparseColumns are dropped after derivation.
var sparseColumns = []string{"neighbourhood", "calendar_updated"}

// RequiredColumns returns every raw column the pipeline reads or drops.
func RequiredColumns() []string {
	cols := append([]string{}, PIIColumns...)
	cols = append(cols, sparseColumns...)
	cols = append(cols,
		ColHostID, ColNeighborhoodRaw, ColPrice, ColAccommodates,
		ColResponseRate, ColAcceptanceRate,
	)
	cols = append(cols, FlagColumns...)
	return append(cols, ColHostListingsCount, ColHostSince, ColLastScraped, ColReviewScoresRating)
}

// Options configures a pipeline run.
type Options struct {
	FlagStyle FlagStyle
}

// Clean runs the cleaning pipeline over a raw listings frame. The only
// failure is a structural one: a missing column, or a frame already carrying
// an error. Malformed values become unknown.
func Clean(ctx context.Context, raw dataframe.DataFrame, opt Options) (*Table, error) {
	log := klog.FromContext(ctx)
	if raw.Err != nil {
		return nil, fmt.Errorf("raw table: %w", raw.Err)
	}
	if err := checkColumns(raw.Names()); err != nil {
		return nil, err
	}

	n := raw.Nrow()
	rows := make([]Listing, n)

	df := raw.Drop(PIIColumns)

	prices := make([]Float, n)
	capacity := make([]Int, n)
	for i, s := range cells(df, ColPrice) {
		prices[i] = parsePrice(s)
	}
	for i, s := range cells(df, ColAccommodates) {
		capacity[i] = parseCount(s)
	}
	df = df.Mutate(floatSeries(ColPriceNum, prices))

	ppp := make([]Float, n)
	for i := range rows {
		ppp[i] = perPerson(prices[i], capacity[i])
		rows[i].Price = prices[i]
		rows[i].Accommodates = capacity[i]
		rows[i].PricePerPerson = ppp[i]
	}
	df = df.Mutate(intSeries(ColAccommodates, capacity))
	df = df.Mutate(floatSeries(ColPricePerPerson, ppp))

	for _, col := range []string{ColResponseRate, ColAcceptanceRate} {
		rates := make([]Float, n)
		for i, s := range cells(df, col) {
			rates[i] = parsePercent(s)
			if col == ColResponseRate {
				rows[i].HostResponseRate = rates[i]
			} else {
				rows[i].HostAcceptanceRate = rates[i]
			}
		}
		df = df.Mutate(floatSeries(col, rates))
	}

	for _, col := range FlagColumns {
		flags := make([]Flag, n)
		for i, s := range cells(df, col) {
			flags[i] = ParseFlag(s)
			rows[i].setFlag(col, flags[i])
		}
		df = df.Mutate(flagSeries(col, opt.FlagStyle, flags))
	}

	counts := make([]Int, n)
	types := make([]string, n)
	for i, s := range cells(df, ColHostListingsCount) {
		counts[i] = parseCount(s)
		rows[i].HostListingsCount = counts[i]
		rows[i].HostType = ClassifyHost(counts[i])
		types[i] = naString(string(rows[i].HostType))
	}
	df = df.Mutate(intSeries(ColHostListingsCount, counts))
	df = df.Mutate(series.New(types, series.String, ColHostType))

	since := cells(df, ColHostSince)
	scraped := cells(df, ColLastScraped)
	tenures := make([]Int, n)
	for i := range rows {
		tenures[i] = tenure(since[i], scraped[i])
		rows[i].HostTenure = tenures[i]
	}
	df = df.Mutate(intSeries(ColHostTenure, tenures))

	scores := make([]Float, n)
	for i, s := range cells(df, ColReviewScoresRating) {
		scores[i] = parseScore(s)
		rows[i].ReviewScoresRating = scores[i]
	}
	df = df.Mutate(floatSeries(ColReviewScoresRating, scores))

	for i, s := range cells(df, ColHostID) {
		rows[i].HostID = s
	}
	for i, s := range cells(df, ColNeighborhoodRaw) {
		rows[i].Neighborhood = s
	}

	df = df.Drop(sparseColumns)
	df = df.Rename(ColNeighborhood, ColNeighborhoodRaw)
	if df.Err != nil {
		return nil, fmt.Errorf("clean listings: %w", df.Err)
	}

	t := newTable(df, rows, opt.FlagStyle)
	log.Info("cleaned listings", "rows", t.Len(), "neighborhoods", len(t.Neighborhoods()))
	if v := log.V(2); v.Enabled() {
		st := t.Stats()
		v.Info("pipeline unknowns", "price_num", st.Unknown[ColPriceNum], "price_per_person", st.Unknown[ColPricePerPerson],
			"host_type", st.Unknown[ColHostType], "host_tenure", st.Unknown[ColHostTenure], "host_is_superhost", st.Unknown[ColSuperhost])
	}
	return t, nil
}

func checkColumns(names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	var missing []string
	for _, c := range RequiredColumns() {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// cells returns a column as trimmed strings with NA mapped to "".
func cells(df dataframe.DataFrame, name string) []string {
	col := df.Col(name)
	out := make([]string, col.Len())
	for i := range out {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = strings.TrimSpace(e.String())
	}
	return out
}

func naString(s string) string {
	if s == "" {
		return "NaN"
	}
	return s
}

func floatSeries(name string, vals []Float) series.Series {
	raw := make([]string, len(vals))
	for i, v := range vals {
		if v.Valid {
			raw[i] = strconv.FormatFloat(v.Value, 'f', -1, 64)
		} else {
			raw[i] = "NaN"
		}
	}
	return series.New(raw, series.Float, name)
}

func intSeries(name string, vals []Int) series.Series {
	raw := make([]string, len(vals))
	for i, v := range vals {
		if v.Valid {
			raw[i] = strconv.Itoa(v.Value)
		} else {
			raw[i] = "NaN"
		}
	}
	return series.New(raw, series.Int, name)
}

// flagSeries encodes a recoded flag column in the configured style.
func flagSeries(name string, style FlagStyle, vals []Flag) series.Series {
	raw := make([]string, len(vals))
	for i, f := range vals {
		raw[i] = naString(style.Format(name, f))
	}
	switch style {
	case StyleBinary:
		return series.New(raw, series.Int, name)
	case StyleBool:
		return series.New(raw, series.Bool, name)
	default:
		return series.New(raw, series.String, name)
	}
}
