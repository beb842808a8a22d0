package analysis

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/hostboard/internal/listings"
)

// AllNeighborhoods is the selector value that disables the neighborhood filter.
const AllNeighborhoods = "All"

// ErrBadParam is returned for unparseable filter or selection values.
var ErrBadParam = errors.New("bad parameter")

// Range is an inclusive price-per-person interval.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Normalize swaps the bounds when Lo > Hi.
func (r Range) Normalize() Range {
	if r.Lo > r.Hi {
		return Range{Lo: r.Hi, Hi: r.Lo}
	}
	return r
}

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Params holds the two filter controls plus the optional chart selections.
// Zero selections mean everything is selected.
type Params struct {
	Neighborhood string            `json:"neighborhood"`
	Range        Range             `json:"range"`
	Superhost    listings.Flag     `json:"superhost"`
	HostType     listings.HostType `json:"host_type"`
}

// DefaultParams selects all neighborhoods and the default price range.
func DefaultParams(t *listings.Table) Params {
	return Params{Neighborhood: AllNeighborhoods, Range: DefaultRange(t)}
}

// DefaultRange spans from the lowest observed price per person to a soft
// outlier cutoff at mean + 3 sample standard deviations. With no defined
// values it is {0, 0}; a single value has zero spread.
func DefaultRange(t *listings.Table) Range {
	var (
		n        int
		mean, m2 float64
		lo       = math.Inf(1)
	)
	t.Each(func(l listings.Listing) {
		if !l.PricePerPerson.Valid {
			return
		}
		x := l.PricePerPerson.Value
		n++
		// Welford update
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		if x < lo {
			lo = x
		}
	})
	if n == 0 {
		return Range{}
	}
	std := 0.0
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}
	return Range{Lo: lo, Hi: mean + 3*std}
}

// Bounds is the full selectable span for the range control: the default
// range widened to the observed maximum so outliers stay reachable.
func Bounds(t *listings.Table) Range {
	r := DefaultRange(t)
	t.Each(func(l listings.Listing) {
		if l.PricePerPerson.Valid && l.PricePerPerson.Value > r.Hi {
			r.Hi = l.PricePerPerson.Value
		}
	})
	return r
}

// NeighborhoodOptions lists the selector choices, "All" first.
func NeighborhoodOptions(t *listings.Table) []string {
	return append([]string{AllNeighborhoods}, t.Neighborhoods()...)
}

// ParseSuperhost reads a superhost selection. Empty and "all" mean no selection.
func ParseSuperhost(s string) (listings.Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return listings.FlagUnknown, nil
	case "true", "t", "1", "yes", "superhost":
		return listings.FlagTrue, nil
	case "false", "f", "0", "no", "not superhost":
		return listings.FlagFalse, nil
	default:
		return listings.FlagUnknown, fmt.Errorf("%w: superhost %q", ErrBadParam, s)
	}
}

// ParseQuery overlays query-string values onto defaults. Recognized keys:
// neighborhood, lo, hi, superhost, host_type.
func ParseQuery(q url.Values, def Params) (Params, error) {
	p := def
	if v := strings.TrimSpace(q.Get("neighborhood")); v != "" {
		p.Neighborhood = v
	}
	for _, b := range []struct {
		key string
		dst *float64
	}{{"lo", &p.Range.Lo}, {"hi", &p.Range.Hi}} {
		raw := strings.TrimSpace(q.Get(b.key))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return def, fmt.Errorf("%w: %s=%q is not a number", ErrBadParam, b.key, raw)
		}
		*b.dst = f
	}
	sh, err := ParseSuperhost(q.Get("superhost"))
	if err != nil {
		return def, err
	}
	p.Superhost = sh
	ht, err := listings.ParseHostType(q.Get("host_type"))
	if err != nil {
		return def, fmt.Errorf("%w: %v", ErrBadParam, err)
	}
	p.HostType = ht
	return p, nil
}

// Query encodes params back into query-string form.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set("neighborhood", p.Neighborhood)
	q.Set("lo", strconv.FormatFloat(p.Range.Lo, 'f', -1, 64))
	q.Set("hi", strconv.FormatFloat(p.Range.Hi, 'f', -1, 64))
	switch p.Superhost {
	case listings.FlagTrue:
		q.Set("superhost", "true")
	case listings.FlagFalse:
		q.Set("superhost", "false")
	}
	if p.HostType.Known() {
		q.Set("host_type", string(p.HostType))
	}
	return q
}
