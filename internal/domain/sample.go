package domain

import (
	"math"
	"math/rand/v2"
	"slices"
)

// LayerKind distinguishes real data layers from legend-only layers.
type LayerKind string

const (
	LayerPoints LayerKind = "points"
	LayerLegend LayerKind = "legend"
)

// Marker sizes for the map. Data points are tiny to keep dense areas
// readable, so each severity gets a separate oversized legend marker.
const (
	PointMarkerSize  = 2
	LegendMarkerSize = 10
)

// MapPoint is one marker on the map.
type MapPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// MapLayer is one renderable set of markers for a severity.
type MapLayer struct {
	Severity   Severity   `json:"severity"`
	Kind       LayerKind  `json:"kind"`
	Color      string     `json:"color"`
	MarkerSize int        `json:"marker_size"`
	ShowLegend bool       `json:"show_legend"`
	Points     []MapPoint `json:"points"`
}

// Sampler draws the per-severity map samples. The zero value reseeds from
// the runtime entropy source on every call.
type Sampler struct {
	// NewRand overrides the random source used for one SampleForMap call.
	NewRand func() *rand.Rand
}

// SampleForMap emits a points layer and a legend layer for every selected
// severity, walking severities in reverse sorted order. Each points layer
// holds a uniform sample without replacement of round(fraction * n) of the
// rows of that severity.
func (s *Sampler) SampleForMap(rows []Accident, severities []Severity) []MapLayer {
	rng := s.source()

	order := slices.Clone(dedupe(severities))
	slices.Sort(order)
	slices.Reverse(order)

	layers := make([]MapLayer, 0, 2*len(order))
	for _, sev := range order {
		var matching []Accident
		for _, r := range rows {
			if r.Severity == sev {
				matching = append(matching, r)
			}
		}
		sampled := sampleFraction(rng, matching, SampleFraction(sev))

		points := make([]MapPoint, len(sampled))
		for i, r := range sampled {
			points[i] = MapPoint{Lat: r.Latitude, Lon: r.Longitude, Label: r.District}
		}

		color := ColorFor(sev)
		layers = append(layers,
			MapLayer{
				Severity:   sev,
				Kind:       LayerPoints,
				Color:      color,
				MarkerSize: PointMarkerSize,
				Points:     points,
			},
			MapLayer{
				Severity:   sev,
				Kind:       LayerLegend,
				Color:      color,
				MarkerSize: LegendMarkerSize,
				ShowLegend: true,
				Points:     []MapPoint{{Lat: 0, Lon: 0}},
			},
		)
	}
	return layers
}

func (s *Sampler) source() *rand.Rand {
	if s != nil && s.NewRand != nil {
		return s.NewRand()
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SampleSize is the number of rows kept out of n for a fraction, rounding
// half to even and clamping to [0, n].
func SampleSize(n int, fraction float64) int {
	if n <= 0 || fraction <= 0 {
		return 0
	}
	k := int(math.RoundToEven(fraction * float64(n)))
	return min(max(k, 0), n)
}

// sampleFraction runs a partial Fisher-Yates shuffle over a copy of rows.
func sampleFraction(rng *rand.Rand, rows []Accident, fraction float64) []Accident {
	k := SampleSize(len(rows), fraction)
	if k == 0 {
		return nil
	}
	pool := slices.Clone(rows)
	for i := range k {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
