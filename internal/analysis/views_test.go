package analysis

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/KaramelBytes/hostboard/internal/listings"
)

type row struct {
	host  string
	hood  string
	ppp   float64
	noPPP bool
	sh    listings.Flag
	count int
	ten   int
	noTen bool
	score float64
}

func build(rows ...row) *listings.Table {
	out := make([]listings.Listing, len(rows))
	for i, r := range rows {
		l := listings.Listing{
			HostID:          r.host,
			Neighborhood:    r.hood,
			HostIsSuperhost: r.sh,
		}
		if !r.noPPP {
			l.PricePerPerson = listings.SomeFloat(r.ppp)
		}
		if r.count != 0 {
			l.HostListingsCount = listings.SomeInt(r.count)
			l.HostType = listings.ClassifyHost(l.HostListingsCount)
		}
		if !r.noTen {
			l.HostTenure = listings.SomeInt(r.ten)
		}
		if r.score != 0 {
			l.ReviewScoresRating = listings.SomeFloat(r.score)
		}
		out[i] = l
	}
	return listings.NewTable(out, listings.StyleLabel)
}

func sample() *listings.Table {
	T, F, U := listings.FlagTrue, listings.FlagFalse, listings.FlagUnknown
	return build(
		row{host: "h1", hood: "Back Bay", ppp: 50, sh: T, count: 1, ten: 8, score: 4.9},
		row{host: "h1", hood: "Back Bay", ppp: 60, sh: T, count: 1, ten: 8, score: 4.7},
		row{host: "h2", hood: "Allston", ppp: 30, sh: F, count: 3, ten: 2, score: 4.2},
		row{host: "h3", hood: "Allston", ppp: 40, sh: F, count: 12, ten: 2, score: 4.5},
		row{host: "h4", hood: "Back Bay", ppp: 45, sh: U, count: 3, ten: 5, score: 4.0},
		row{host: "h5", hood: "Fenway", noPPP: true, sh: T, count: 1, ten: 1, score: 5},
		row{host: "h6", hood: "Fenway", ppp: 500, sh: F, count: 8, ten: 10, score: 3.9},
	)
}

func TestFilterNeighborhoodAndRange(t *testing.T) {
	tbl := sample()
	got := Filter(tbl.Rows(), Params{Neighborhood: AllNeighborhoods, Range: Range{Lo: 0, Hi: 100}})
	if len(got) != 5 {
		t.Fatalf("expected 5 rows in [0,100], got %d", len(got))
	}
	got = Filter(tbl.Rows(), Params{Neighborhood: "Back Bay", Range: Range{Lo: 45, Hi: 50}})
	if len(got) != 2 {
		t.Fatalf("expected inclusive bounds to keep 45 and 50, got %d", len(got))
	}
	swapped := Filter(tbl.Rows(), Params{Neighborhood: "Back Bay", Range: Range{Lo: 50, Hi: 45}})
	if len(swapped) != len(got) {
		t.Fatalf("inverted range should be swapped: %d vs %d", len(swapped), len(got))
	}
	again := Filter(got, Params{Neighborhood: "Back Bay", Range: Range{Lo: 45, Hi: 50}})
	if len(again) != len(got) {
		t.Fatalf("filter must be idempotent")
	}
	if n := len(Filter(tbl.Rows(), Params{Neighborhood: "Nowhere", Range: Range{Lo: 0, Hi: 1000}})); n != 0 {
		t.Fatalf("unknown neighborhood should yield nothing, got %d", n)
	}
}

func TestDefaultRange(t *testing.T) {
	vals := []float64{50, 60, 30, 40, 45, 500}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / float64(len(vals)-1))

	r := DefaultRange(sample())
	if r.Lo != 30 {
		t.Fatalf("lo should be the observed minimum, got %v", r.Lo)
	}
	if math.Abs(r.Hi-(mean+3*std)) > 1e-9 {
		t.Fatalf("hi=%v want %v", r.Hi, mean+3*std)
	}

	if got := DefaultRange(build()); got != (Range{}) {
		t.Fatalf("empty table should give zero range, got %+v", got)
	}
	if got := DefaultRange(build(row{ppp: 12})); got != (Range{Lo: 12, Hi: 12}) {
		t.Fatalf("single value should have zero spread, got %+v", got)
	}
	b := Bounds(build(row{ppp: 10}, row{ppp: 10}, row{ppp: 10}, row{ppp: 10}, row{ppp: 1000}))
	if b.Hi < 1000 {
		t.Fatalf("bounds should reach the observed max, got %+v", b)
	}
}

func TestHostTypeCountsIgnoresSelection(t *testing.T) {
	tbl := sample()
	p := Params{Neighborhood: AllNeighborhoods, Range: Range{Lo: 0, Hi: 1000}, Superhost: listings.FlagTrue}
	v := Compute(tbl, p)
	total := 0
	for _, c := range v.HostTypeCounts {
		total += c.Count
	}
	// h4 has unknown superhost, h5 has no price per person
	if total != 5 {
		t.Fatalf("expected 5 counted listings, got %d (%+v)", total, v.HostTypeCounts)
	}
	first := v.HostTypeCounts[0]
	if first.HostType != listings.HostTypeSingle || first.Superhost != listings.FlagTrue || first.Count != 2 || first.Label != "Superhost" {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	last := v.HostTypeCounts[len(v.HostTypeCounts)-1]
	if last.HostType != listings.HostTypeLarge || last.Count != 2 || last.Label != "Not Superhost" {
		t.Fatalf("unexpected last segment: %+v", last)
	}
}

func TestTenureHostsDistinctAndSelected(t *testing.T) {
	tbl := sample()
	p := Params{Neighborhood: AllNeighborhoods, Range: Range{Lo: 0, Hi: 1000}}
	v := Compute(tbl, p)
	want := []TenurePoint{
		{Tenure: 2, HostType: listings.HostTypeSmall, Hosts: 1},
		{Tenure: 2, HostType: listings.HostTypeLarge, Hosts: 1},
		{Tenure: 5, HostType: listings.HostTypeSmall, Hosts: 1},
		{Tenure: 8, HostType: listings.HostTypeSingle, Hosts: 1},
		{Tenure: 10, HostType: listings.HostTypeLarge, Hosts: 1},
	}
	if len(v.Tenure) != len(want) {
		t.Fatalf("tenure points: %+v", v.Tenure)
	}
	for i := range want {
		if v.Tenure[i] != want[i] {
			t.Fatalf("point %d: got %+v want %+v", i, v.Tenure[i], want[i])
		}
	}

	p.Superhost = listings.FlagFalse
	v = Compute(tbl, p)
	for _, pt := range v.Tenure {
		if pt.Tenure == 8 || pt.Tenure == 5 {
			t.Fatalf("superhost=false selection should drop tenure %d", pt.Tenure)
		}
	}
	p.Superhost = listings.FlagUnknown
	p.HostType = listings.HostTypeLarge
	v = Compute(tbl, p)
	if len(v.Tenure) != 2 || len(v.Scatter) != 2 {
		t.Fatalf("host type selection should narrow tenure and scatter: %+v %+v", v.Tenure, v.Scatter)
	}
	if len(v.HostTypeCounts) != 3 {
		t.Fatalf("host type selection must not narrow the bar view: %+v", v.HostTypeCounts)
	}
}

func TestScatterSkipsUnknowns(t *testing.T) {
	tbl := build(
		row{host: "a", hood: "X", ppp: 10, count: 1, score: 4.5},
		row{host: "b", hood: "X", ppp: 20, count: 1},
		row{host: "c", hood: "X", ppp: 30, score: 4.1},
	)
	v := Compute(tbl, Params{Neighborhood: AllNeighborhoods, Range: Range{Lo: 0, Hi: 100}})
	if len(v.Scatter) != 1 || v.Scatter[0].PricePerPerson != 10 || v.Scatter[0].ReviewScore != 4.5 {
		t.Fatalf("scatter: %+v", v.Scatter)
	}
	if v.Rows != 3 {
		t.Fatalf("filtered rows: %d", v.Rows)
	}
}

func TestEmptyFilterGivesEmptyViews(t *testing.T) {
	v := Compute(sample(), Params{Neighborhood: "Back Bay", Range: Range{Lo: 1000, Hi: 2000}})
	if v.Rows != 0 || len(v.HostTypeCounts) != 0 || len(v.Tenure) != 0 || len(v.Scatter) != 0 {
		t.Fatalf("expected empty views, got %+v", v)
	}
}

func TestStackAccumulatesLayers(t *testing.T) {
	tenures, layers := Stack([]TenurePoint{
		{Tenure: 1, HostType: listings.HostTypeSingle, Hosts: 2},
		{Tenure: 3, HostType: listings.HostTypeSingle, Hosts: 1},
		{Tenure: 1, HostType: listings.HostTypeLarge, Hosts: 4},
	})
	if len(tenures) != 2 || tenures[0] != 1 || tenures[1] != 3 {
		t.Fatalf("tenures: %v", tenures)
	}
	if got := layers[listings.HostTypeSingle]; got[0] != 2 || got[1] != 1 {
		t.Fatalf("bottom layer: %v", got)
	}
	if got := layers[listings.HostTypeLarge]; got[0] != 6 || got[1] != 1 {
		t.Fatalf("top layer should accumulate: %v", got)
	}
	if _, ok := layers[listings.HostTypeSmall]; ok {
		t.Fatalf("absent host type should have no layer")
	}
}

func TestParseQuery(t *testing.T) {
	def := Params{Neighborhood: AllNeighborhoods, Range: Range{Lo: 1, Hi: 99}}
	p, err := ParseQuery(url.Values{"neighborhood": {"Allston"}, "hi": {"50"}, "superhost": {"true"}, "host_type": {">5"}}, def)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Neighborhood != "Allston" || p.Range != (Range{Lo: 1, Hi: 50}) || p.Superhost != listings.FlagTrue || p.HostType != listings.HostTypeLarge {
		t.Fatalf("unexpected params: %+v", p)
	}
	back, err := ParseQuery(p.Query(), def)
	if err != nil || back != p {
		t.Fatalf("query round trip: %+v %v", back, err)
	}
	if _, err := ParseQuery(url.Values{"lo": {"cheap"}}, def); !errors.Is(err, ErrBadParam) {
		t.Fatalf("expected ErrBadParam, got %v", err)
	}
	if _, err := ParseQuery(url.Values{"superhost": {"maybe"}}, def); !errors.Is(err, ErrBadParam) {
		t.Fatalf("expected ErrBadParam for superhost, got %v", err)
	}
}
