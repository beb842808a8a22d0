package analysis

import (
	"sort"

	"github.com/KaramelBytes/hostboard/internal/listings"
)

// HostTypeCount is one bar segment: listings of a host type with a given
// superhost status.
type HostTypeCount struct {
	HostType  listings.HostType `json:"host_type"`
	Superhost listings.Flag     `json:"superhost"`
	Label     string            `json:"label"`
	Count     int               `json:"count"`
}

// TenurePoint counts distinct hosts of a type at a given tenure.
type TenurePoint struct {
	Tenure   int               `json:"host_tenure"`
	HostType listings.HostType `json:"host_type"`
	Hosts    int               `json:"hosts"`
}

// ScatterPoint is one listing in the review score vs price plot.
type ScatterPoint struct {
	ReviewScore    float64           `json:"review_score"`
	PricePerPerson float64           `json:"price_per_person"`
	HostType       listings.HostType `json:"host_type"`
}

// Views is everything one dashboard interaction renders.
type Views struct {
	Params         Params          `json:"params"`
	Default        Range           `json:"default_range"`
	Bounds         Range           `json:"bounds"`
	Rows           int             `json:"rows"`
	HostTypeCounts []HostTypeCount `json:"host_type_counts"`
	Tenure         []TenurePoint   `json:"tenure"`
	Scatter        []ScatterPoint  `json:"scatter"`
}

// Filter keeps listings in the selected neighborhood whose price per person
// is defined and inside the range. Inverted ranges are swapped first.
func Filter(rows []listings.Listing, p Params) []listings.Listing {
	r := p.Range.Normalize()
	out := make([]listings.Listing, 0, len(rows))
	for _, l := range rows {
		if p.Neighborhood != AllNeighborhoods && l.Neighborhood != p.Neighborhood {
			continue
		}
		if !l.PricePerPerson.Valid || !r.Contains(l.PricePerPerson.Value) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Compute filters the table and derives all three views.
func Compute(t *listings.Table, p Params) Views {
	p.Range = p.Range.Normalize()
	rows := Filter(t.Rows(), p)
	return Views{
		Params:         p,
		Default:        DefaultRange(t),
		Bounds:         Bounds(t),
		Rows:           len(rows),
		HostTypeCounts: HostTypeCounts(rows, t.FlagStyle()),
		Tenure:         TenureHosts(rows, p),
		Scatter:        ScatterPoints(rows, p),
	}
}

// selected applies the chart selections. An unset selection matches all.
func selected(l listings.Listing, p Params) bool {
	if p.Superhost.Known() && l.HostIsSuperhost != p.Superhost {
		return false
	}
	if p.HostType.Known() && l.HostType != p.HostType {
		return false
	}
	return true
}

// HostTypeCounts groups listings by host type and superhost status. Rows with
// either field unknown are left out. Selections do not narrow this view.
func HostTypeCounts(rows []listings.Listing, style listings.FlagStyle) []HostTypeCount {
	type key struct {
		ht listings.HostType
		sh listings.Flag
	}
	counts := make(map[key]int)
	for _, l := range rows {
		if !l.HostType.Known() || !l.HostIsSuperhost.Known() {
			continue
		}
		counts[key{l.HostType, l.HostIsSuperhost}]++
	}
	out := make([]HostTypeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, HostTypeCount{
			HostType:  k.ht,
			Superhost: k.sh,
			Label:     style.Format(listings.ColSuperhost, k.sh),
			Count:     n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].HostType.Rank(), out[j].HostType.Rank(); a != b {
			return a < b
		}
		return out[i].Superhost > out[j].Superhost
	})
	return out
}

// TenureHosts counts distinct host ids per (tenure, host type) among selected
// rows with all three fields known.
func TenureHosts(rows []listings.Listing, sel Params) []TenurePoint {
	type key struct {
		tenure int
		ht     listings.HostType
	}
	hosts := make(map[key]map[string]struct{})
	for _, l := range rows {
		if !selected(l, sel) {
			continue
		}
		if !l.HostTenure.Valid || !l.HostType.Known() || l.HostID == "" {
			continue
		}
		k := key{l.HostTenure.Value, l.HostType}
		if hosts[k] == nil {
			hosts[k] = make(map[string]struct{})
		}
		hosts[k][l.HostID] = struct{}{}
	}
	out := make([]TenurePoint, 0, len(hosts))
	for k, ids := range hosts {
		out = append(out, TenurePoint{Tenure: k.tenure, HostType: k.ht, Hosts: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tenure != out[j].Tenure {
			return out[i].Tenure < out[j].Tenure
		}
		return out[i].HostType.Rank() < out[j].HostType.Rank()
	})
	return out
}

// ScatterPoints projects selected rows with a known review score, price per
// person and host type. Points keep the filtered row order.
func ScatterPoints(rows []listings.Listing, sel Params) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(rows))
	for _, l := range rows {
		if !selected(l, sel) {
			continue
		}
		if !l.ReviewScoresRating.Valid || !l.PricePerPerson.Valid || !l.HostType.Known() {
			continue
		}
		out = append(out, ScatterPoint{
			ReviewScore:    l.ReviewScoresRating.Value,
			PricePerPerson: l.PricePerPerson.Value,
			HostType:       l.HostType,
		})
	}
	return out
}

// Stack turns tenure points into cumulative layers per host type, in host
// type order, over the sorted set of tenures. Missing combinations count as
// zero so every layer shares the same x values.
func Stack(points []TenurePoint) (tenures []int, layers map[listings.HostType][]float64) {
	seen := make(map[int]bool)
	for _, p := range points {
		if !seen[p.Tenure] {
			seen[p.Tenure] = true
			tenures = append(tenures, p.Tenure)
		}
	}
	sort.Ints(tenures)
	index := make(map[int]int, len(tenures))
	for i, t := range tenures {
		index[t] = i
	}
	raw := make(map[listings.HostType][]float64)
	for _, p := range points {
		if raw[p.HostType] == nil {
			raw[p.HostType] = make([]float64, len(tenures))
		}
		raw[p.HostType][index[p.Tenure]] += float64(p.Hosts)
	}
	layers = make(map[listings.HostType][]float64)
	running := make([]float64, len(tenures))
	for _, ht := range listings.HostTypes {
		vals, ok := raw[ht]
		if !ok {
			continue
		}
		layer := make([]float64, len(tenures))
		for i := range tenures {
			running[i] += vals[i]
			layer[i] = running[i]
		}
		layers[ht] = layer
	}
	return tenures, layers
}
