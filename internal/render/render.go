package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/hostboard/internal/analysis"
	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart titles and axis names shown on the dashboard.
const (
	TitleHostTypes = "Total Listings by Host Type and Superhost"
	TitleTenure    = "Count of Listings by Host Tenure and Type"
	TitleScatter   = "Review Score vs Price per Person"

	emptyMessage = "No listings match the current filters"
)

var (
	colorSuperhost    = drawing.ColorFromHex("2ca02c")
	colorNotSuperhost = drawing.ColorFromHex("9467bd")

	// tableau10, first entries used for host types
	tableau10 = []drawing.Color{
		drawing.ColorFromHex("4e79a7"),
		drawing.ColorFromHex("f28e2b"),
		drawing.ColorFromHex("e15759"),
		drawing.ColorFromHex("76b7b2"),
	}
)

// Size is the pixel size of a rendered chart.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the dashboard layout.
var DefaultSize = Size{Width: 720, Height: 360}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// HostTypeColor returns the palette color for a host type.
func HostTypeColor(h listings.HostType) drawing.Color {
	r := h.Rank()
	if r >= len(tableau10) {
		r = len(tableau10) - 1
	}
	return tableau10[r]
}

func superhostColor(f listings.Flag) drawing.Color {
	if f == listings.FlagTrue {
		return colorSuperhost
	}
	return colorNotSuperhost
}

// HostTypeBars draws one horizontal bar per host type, split by superhost
// status. Bar lengths are proportional to the largest total and segments are
// labeled with absolute counts. Segments outside an active superhost
// selection are dimmed. The legend renders superhost states in style.
func HostTypeBars(w io.Writer, counts []analysis.HostTypeCount, sel listings.Flag, style listings.FlagStyle, size Size) error {
	size = size.orDefault()
	if len(counts) == 0 {
		return Empty(w, TitleHostTypes, size)
	}

	type bar struct {
		ht    listings.HostType
		segs  []analysis.HostTypeCount
		total int
	}
	var bars []*bar
	index := make(map[listings.HostType]*bar)
	for _, c := range counts {
		b, ok := index[c.HostType]
		if !ok {
			b = &bar{ht: c.HostType}
			index[c.HostType] = b
			bars = append(bars, b)
		}
		b.segs = append(b.segs, c)
		b.total += c.Count
	}
	maxTotal := 0
	for _, b := range bars {
		if b.total > maxTotal {
			maxTotal = b.total
		}
	}

	barWidth := (size.Height - 90) / (len(bars) * 3 / 2)
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 12 {
		barWidth = 12
	}
	sbc := chart.StackedBarChart{
		Title:        TitleHostTypes,
		Width:        size.Width,
		Height:       size.Height,
		IsHorizontal: true,
		BarSpacing:   barWidth / 2,
		Background:   chart.Style{Padding: chart.Box{Top: 60, Left: 130, Right: 20, Bottom: 20}},
		XAxis:        chart.Hidden(),
	}
	for _, b := range bars {
		// drawn from the right edge: the transparent pad goes first so the
		// visible segments start at the axis
		values := []chart.Value{{
			Value: float64(maxTotal - b.total),
			Style: chart.Style{FillColor: chart.ColorTransparent, StrokeColor: chart.ColorTransparent},
		}}
		for i := len(b.segs) - 1; i >= 0; i-- {
			s := b.segs[i]
			col := superhostColor(s.Superhost)
			if sel.Known() && s.Superhost != sel {
				col = col.WithAlpha(77)
			}
			values = append(values, chart.Value{
				Label: strconv.Itoa(s.Count),
				Value: float64(s.Count),
				Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1, FontColor: drawing.ColorWhite},
			})
		}
		sbc.Bars = append(sbc.Bars, chart.StackedBar{Name: string(b.ht), Width: barWidth, Values: values})
	}
	sbc.Elements = []chart.Renderable{swatchLegend([]legendEntry{
		{Label: style.Format(listings.ColSuperhost, listings.FlagTrue), Color: colorSuperhost},
		{Label: style.Format(listings.ColSuperhost, listings.FlagFalse), Color: colorNotSuperhost},
	}, "Number of Listings")}
	if err := sbc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render host type bars: %w", err)
	}
	return nil
}

// TenureArea draws distinct host counts per tenure as areas stacked on a
// zero baseline, one layer per host type.
func TenureArea(w io.Writer, points []analysis.TenurePoint, size Size) error {
	size = size.orDefault()
	if len(points) == 0 {
		return Empty(w, TitleTenure, size)
	}
	tenures, layers := analysis.Stack(points)
	xs := make([]float64, len(tenures))
	for i, t := range tenures {
		xs[i] = float64(t)
	}
	if len(xs) == 1 {
		// a single tenure still needs a visible band
		xs = []float64{xs[0] - 0.4, xs[0] + 0.4}
		for ht, l := range layers {
			layers[ht] = []float64{l[0], l[0]}
		}
	}

	var top float64
	var series []chart.Series
	// topmost layer first so lower layers paint over it
	for i := len(listings.HostTypes) - 1; i >= 0; i-- {
		ht := listings.HostTypes[i]
		ys, ok := layers[ht]
		if !ok {
			continue
		}
		for _, y := range ys {
			top = math.Max(top, y)
		}
		col := HostTypeColor(ht)
		series = append(series, chart.ContinuousSeries{
			Name:    string(ht),
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5, FillColor: col.WithAlpha(200)},
		})
	}

	// the axis range follows the ticks, so a single tenure gets unlabeled
	// edge ticks at the padded bounds
	ticks := make([]chart.Tick, 0, len(tenures)+2)
	if len(tenures) == 1 {
		ticks = append(ticks, chart.Tick{Value: xs[0]})
	}
	for _, t := range tenures {
		ticks = append(ticks, chart.Tick{Value: float64(t), Label: strconv.Itoa(t)})
	}
	if len(tenures) == 1 {
		ticks = append(ticks, chart.Tick{Value: xs[len(xs)-1]})
	}
	ch := chart.Chart{
		Title:      TitleTenure,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Host Tenure",
			Range: &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "# of Listings",
			Range:          &chart.ContinuousRange{Min: 0, Max: niceMax(top)},
			ValueFormatter: intFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render tenure area: %w", err)
	}
	return nil
}

// ReviewScatter plots review score (x) against price per person (y), one dot
// series per host type.
func ReviewScatter(w io.Writer, points []analysis.ScatterPoint, size Size) error {
	size = size.orDefault()
	if len(points) == 0 {
		return Empty(w, TitleScatter, size)
	}
	xsBy := make(map[listings.HostType][]float64)
	ysBy := make(map[listings.HostType][]float64)
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymax := 0.0
	for _, p := range points {
		xsBy[p.HostType] = append(xsBy[p.HostType], p.ReviewScore)
		ysBy[p.HostType] = append(ysBy[p.HostType], p.PricePerPerson)
		xmin = math.Min(xmin, p.ReviewScore)
		xmax = math.Max(xmax, p.ReviewScore)
		ymax = math.Max(ymax, p.PricePerPerson)
	}
	if xmax-xmin < 1e-9 {
		xmin, xmax = xmin-0.5, xmax+0.5
	}

	var series []chart.Series
	for _, ht := range listings.HostTypes {
		xs, ok := xsBy[ht]
		if !ok {
			continue
		}
		col := HostTypeColor(ht)
		series = append(series, chart.ContinuousSeries{
			Name:    string(ht),
			XValues: xs,
			YValues: ysBy[ht],
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: col.WithAlpha(180)},
		})
	}
	ch := chart.Chart{
		Title:      TitleScatter,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Review Score",
			Range:          &chart.ContinuousRange{Min: xmin, Max: xmax},
			ValueFormatter: chart.FloatValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Price per Person ($)",
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(ymax)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// Empty draws a titled placeholder for a view with no data.
func Empty(w io.Writer, title string, size Size) error {
	size = size.orDefault()
	r, err := chart.SVG(size.Width, size.Height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	st := chart.Style{Font: font, FontSize: chart.DefaultTitleFontSize, FontColor: chart.DefaultTextColor}
	tb := chart.Draw.MeasureText(r, title, st)
	chart.Draw.Text(r, title, (size.Width-tb.Width())/2, 30, st)
	st.FontSize = chart.DefaultFontSize
	st.FontColor = chart.ColorAlternateGray
	mb := chart.Draw.MeasureText(r, emptyMessage, st)
	chart.Draw.Text(r, emptyMessage, (size.Width-mb.Width())/2, size.Height/2, st)
	return r.Save(w)
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

// niceMax pads an axis maximum so the tallest value is not flush with the top.
func niceMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return math.Ceil(v * 1.1)
}
