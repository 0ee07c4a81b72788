// Package chart renders dashboard views as static images.
package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
)

// ErrNoBars is returned when a selection produces nothing to draw.
var ErrNoBars = errors.New("no bars to render")

// colorHex maps the dashboard colour names to hex values go-chart understands.
var colorHex = map[string]string{
	"red":    "ff0000",
	"orange": "ffa500",
	"yellow": "ffd700",
	"blue":   "0000ff",
}

const (
	defaultWidth  = 1024
	defaultHeight = 512
)

// RenderBarPNG draws one bar per (severity, speed limit) group, coloured by
// severity and ordered as the traces are.
func RenderBarPNG(w io.Writer, traces []domain.BarTrace) error {
	bars := barValues(traces)
	if len(bars) == 0 {
		return ErrNoBars
	}

	maxValue := 1.0
	for _, b := range bars {
		maxValue = max(maxValue, b.Value)
	}

	c := gochart.BarChart{
		Title:      "Casualties by speed limit",
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarWidth:   barWidth(len(bars)),
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}

	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func barValues(traces []domain.BarTrace) []gochart.Value {
	var bars []gochart.Value
	for _, t := range traces {
		fill := colorFor(t.Color)
		for _, g := range t.Groups {
			bars = append(bars, gochart.Value{
				Label: fmt.Sprintf("%s %dmph", t.Severity, g.SpeedLimit),
				Value: float64(g.TotalCasualties),
				Style: gochart.Style{
					FillColor:   fill,
					StrokeColor: drawing.ColorFromHex("333333"),
					StrokeWidth: 2,
				},
			})
		}
	}
	return bars
}

func colorFor(name string) drawing.Color {
	if hex, ok := colorHex[name]; ok {
		return drawing.ColorFromHex(hex)
	}
	return drawing.ColorFromHex("808080")
}

// barWidth shrinks bars so wide selections still fit the canvas.
func barWidth(n int) int {
	w := (defaultWidth - 100) / (n * 2)
	return min(max(w, 8), 60)
}
