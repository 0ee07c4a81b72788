package dashboard

import (
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
)

// Plotly figure shapes. Field names follow plotly.js so the page can pass
// the payload straight to Plotly.react.

// MarkerLine is the outline drawn around each bar.
type MarkerLine struct {
	Width int    `json:"width"`
	Color string `json:"color"`
}

// Marker styles a trace's markers or bars.
type Marker struct {
	Color string      `json:"color"`
	Size  int         `json:"size,omitempty"`
	Line  *MarkerLine `json:"line,omitempty"`
}

// BarTrace is a plotly "bar" trace.
type BarTrace struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	X         []int    `json:"x"`
	Y         []int    `json:"y"`
	Text      []string `json:"text"`
	HoverInfo string   `json:"hoverinfo"`
	Marker    Marker   `json:"marker"`
}

// MapTrace is a plotly "scattermapbox" trace.
type MapTrace struct {
	Type        string    `json:"type"`
	Mode        string    `json:"mode"`
	Name        string    `json:"name"`
	LegendGroup string    `json:"legendgroup"`
	ShowLegend  bool      `json:"showlegend"`
	Lat         []float64 `json:"lat"`
	Lon         []float64 `json:"lon"`
	Text        []string  `json:"text,omitempty"`
	HoverInfo   string    `json:"hoverinfo,omitempty"`
	Marker      Marker    `json:"marker"`
}

// MapLayout carries the mapbox layout options.
type MapLayout struct {
	AccessToken string  `json:"accesstoken,omitempty"`
	Style       string  `json:"style"`
	Center      LatLon  `json:"center"`
	Zoom        float64 `json:"zoom"`
}

// LatLon is a plotly map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BarFigure is the bar chart payload.
type BarFigure struct {
	Data   []BarTrace     `json:"data"`
	Layout map[string]any `json:"layout"`
}

// MapFigure is the map payload.
type MapFigure struct {
	Data   []MapTrace `json:"data"`
	Layout struct {
		Mapbox     MapLayout `json:"mapbox"`
		ShowLegend bool      `json:"showlegend"`
	} `json:"layout"`
}

// Figures pairs both payloads for one selection.
type Figures struct {
	Bar BarFigure `json:"bar"`
	Map MapFigure `json:"map"`
}

// barOutline is the dark border drawn around every bar.
var barOutline = MarkerLine{Width: 2, Color: "#333"}

// ukCenter frames Great Britain at the initial zoom.
var ukCenter = LatLon{Lat: 54.0, Lon: -2.5}

// NewBarFigure converts bar traces into a plotly figure, one trace per severity.
func NewBarFigure(traces []domain.BarTrace) BarFigure {
	fig := BarFigure{Data: make([]BarTrace, 0, len(traces)), Layout: map[string]any{}}
	for _, t := range traces {
		bt := BarTrace{
			Type:      "bar",
			Name:      string(t.Severity),
			X:         make([]int, len(t.Groups)),
			Y:         make([]int, len(t.Groups)),
			Text:      make([]string, len(t.Groups)),
			HoverInfo: "text",
			Marker: Marker{
				Color: t.Color,
				Line:  &barOutline,
			},
		}
		for i, g := range t.Groups {
			bt.X[i] = g.SpeedLimit
			bt.Y[i] = g.TotalCasualties
			bt.Text[i] = g.HoverText
		}
		fig.Data = append(fig.Data, bt)
	}
	return fig
}

// NewMapFigure converts map layers into a plotly scattermapbox figure.
func NewMapFigure(layers []domain.MapLayer, layout MapLayout) MapFigure {
	if layout.Center == (LatLon{}) {
		layout.Center = ukCenter
	}
	if layout.Zoom == 0 {
		layout.Zoom = 5
	}

	var fig MapFigure
	fig.Data = make([]MapTrace, 0, len(layers))
	fig.Layout.Mapbox = layout
	fig.Layout.ShowLegend = true

	for _, l := range layers {
		mt := MapTrace{
			Type:        "scattermapbox",
			Mode:        "markers",
			Name:        string(l.Severity),
			LegendGroup: string(l.Severity),
			ShowLegend:  l.ShowLegend,
			Lat:         make([]float64, len(l.Points)),
			Lon:         make([]float64, len(l.Points)),
			Marker:      Marker{Color: l.Color, Size: l.MarkerSize},
		}
		for i, p := range l.Points {
			mt.Lat[i] = p.Lat
			mt.Lon[i] = p.Lon
		}
		if l.Kind == domain.LayerPoints {
			mt.HoverInfo = "text"
			mt.Text = make([]string, len(l.Points))
			for i, p := range l.Points {
				mt.Text[i] = p.Label
			}
		}
		fig.Data = append(fig.Data, mt)
	}
	return fig
}

// Figures renders both views as plotly payloads.
func (d *Dashboard) Figures(v Views) Figures {
	return Figures{
		Bar: NewBarFigure(v.Bar),
		Map: NewMapFigure(v.Map, d.layout),
	}
}
