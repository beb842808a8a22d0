package render

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type legendEntry struct {
	Label string
	Color drawing.Color
}

// swatchLegend draws a row of colored swatches above the canvas, followed by
// a caption for the value axis.
func swatchLegend(entries []legendEntry, caption string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		text := chart.Style{
			Font:      defaults.Font,
			FontSize:  chart.DefaultFontSize,
			FontColor: chart.DefaultTextColor,
		}
		const swatch = 10
		x := canvas.Left
		y := canvas.Top - 22
		for _, e := range entries {
			chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + swatch, Bottom: y + swatch},
				chart.Style{FillColor: e.Color, StrokeColor: e.Color, StrokeWidth: 1})
			tb := chart.Draw.MeasureText(r, e.Label, text)
			chart.Draw.Text(r, e.Label, x+swatch+4, y+swatch, text)
			x += swatch + 4 + tb.Width() + 16
		}
		if caption != "" {
			tb := chart.Draw.MeasureText(r, caption, text)
			chart.Draw.Text(r, caption, canvas.Right-tb.Width(), y+swatch, text)
		}
	}
}
