package domain

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRows(sev Severity, n int) []Accident {
	rows := make([]Accident, n)
	for i := range rows {
		rows[i] = Accident{
			Index:     fmt.Sprintf("%s-%d", sev, i),
			Severity:  sev,
			DayOfWeek: testMonday,
			Latitude:  50 + float64(i)/1000,
			Longitude: -1 - float64(i)/1000,
			District:  fmt.Sprintf("District %d", i),
		}
	}
	return rows
}

func seededSampler(seed uint64) *Sampler {
	return &Sampler{NewRand: func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }}
}

func TestSampleFraction(t *testing.T) {
	assert.InDelta(t, 1.0, SampleFraction(Fatal), 1e-9)
	assert.InDelta(t, 0.5, SampleFraction(Serious), 1e-9)
	assert.InDelta(t, 0.1, SampleFraction(Slight), 1e-9)
	assert.InDelta(t, 1.0, SampleFraction("Unknown"), 1e-9, "unknown severities are drawn in full")
}

func TestSampleSize(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		fraction float64
		expected int
	}{
		{"full", 7, 1.0, 7},
		{"tenth of hundred", 100, 0.1, 10},
		{"half rounds to even down", 5, 0.5, 2},
		{"half rounds to even up", 7, 0.5, 4},
		{"rounds below half to zero", 4, 0.1, 0},
		{"empty", 0, 0.5, 0},
		{"negative fraction", 10, -1, 0},
		{"clamped above n", 10, 2.0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SampleSize(tt.n, tt.fraction))
		})
	}
}

func TestSampleForMap_FatalKeepsEveryRow(t *testing.T) {
	rows := makeRows(Fatal, 37)

	layers := seededSampler(1).SampleForMap(rows, []Severity{Fatal})
	require.Len(t, layers, 2)

	points := layers[0]
	assert.Equal(t, LayerPoints, points.Kind)
	assert.Len(t, points.Points, 37)

	labels := make(map[string]bool)
	for _, p := range points.Points {
		labels[p.Label] = true
	}
	assert.Len(t, labels, 37, "sampling is without replacement")
}

func TestSampleForMap_SlightTenth(t *testing.T) {
	rows := makeRows(Slight, 100)

	layers := seededSampler(7).SampleForMap(rows, []Severity{Slight})
	require.Len(t, layers, 2)
	assert.Len(t, layers[0].Points, 10)
}

func TestSampleForMap_CountBounds(t *testing.T) {
	rows := append(makeRows(Slight, 13), makeRows(Serious, 9)...)

	for seed := uint64(0); seed < 20; seed++ {
		layers := seededSampler(seed).SampleForMap(rows, []Severity{Slight, Serious})
		for _, l := range layers {
			if l.Kind != LayerPoints {
				continue
			}
			assert.GreaterOrEqual(t, len(l.Points), 0)
			switch l.Severity {
			case Slight:
				assert.LessOrEqual(t, len(l.Points), 13)
			case Serious:
				assert.LessOrEqual(t, len(l.Points), 9)
			}
		}
	}
}

func TestSampleForMap_LayerOrderAndShape(t *testing.T) {
	rows := append(append(makeRows(Fatal, 2), makeRows(Serious, 4)...), makeRows(Slight, 10)...)

	layers := seededSampler(3).SampleForMap(rows, []Severity{Fatal, Slight, Serious})
	require.Len(t, layers, 6)

	wantOrder := []Severity{Slight, Slight, Serious, Serious, Fatal, Fatal}
	for i, l := range layers {
		assert.Equal(t, wantOrder[i], l.Severity, "layer %d", i)
		assert.Equal(t, ColorFor(l.Severity), l.Color)

		if i%2 == 0 {
			assert.Equal(t, LayerPoints, l.Kind)
			assert.Equal(t, PointMarkerSize, l.MarkerSize)
			assert.False(t, l.ShowLegend)
			continue
		}
		assert.Equal(t, LayerLegend, l.Kind)
		assert.Equal(t, LegendMarkerSize, l.MarkerSize)
		assert.True(t, l.ShowLegend)
		assert.Equal(t, []MapPoint{{Lat: 0, Lon: 0}}, l.Points)
	}

	assert.Len(t, layers[0].Points, 1, "10 slight rows at 0.1")
	assert.Len(t, layers[2].Points, 2, "4 serious rows at 0.5")
	assert.Len(t, layers[4].Points, 2, "2 fatal rows at 1.0")
}

func TestSampleForMap_PointsComeFromSeverity(t *testing.T) {
	rows := append(makeRows(Fatal, 5), makeRows(Serious, 6)...)
	byLabel := make(map[string]Accident)
	for _, r := range rows {
		if r.Severity == Serious {
			byLabel[r.District] = r
		}
	}

	layers := seededSampler(11).SampleForMap(rows, []Severity{Serious})
	require.Len(t, layers, 2)
	require.Len(t, layers[0].Points, 3)

	for _, p := range layers[0].Points {
		src, ok := byLabel[p.Label]
		require.True(t, ok)
		assert.InDelta(t, src.Latitude, p.Lat, 1e-12)
		assert.InDelta(t, src.Longitude, p.Lon, 1e-12)
	}
}

func TestSampleForMap_Empty(t *testing.T) {
	var s Sampler

	assert.Empty(t, s.SampleForMap(nil, nil))

	layers := s.SampleForMap(nil, []Severity{Fatal})
	require.Len(t, layers, 2)
	assert.NotNil(t, layers[0].Points)
	assert.Empty(t, layers[0].Points)
	assert.Len(t, layers[1].Points, 1)
}

func TestSampleForMap_DoesNotMutateInput(t *testing.T) {
	rows := makeRows(Slight, 50)
	before := makeRows(Slight, 50)

	var s Sampler
	s.SampleForMap(rows, []Severity{Slight})

	assert.Equal(t, before, rows)
}

func TestSampleForMap_ZeroValueReseedsEachCall(t *testing.T) {
	var s Sampler
	rows := makeRows(Slight, 1000)

	first := s.SampleForMap(rows, []Severity{Slight})
	second := s.SampleForMap(rows, []Severity{Slight})

	require.Len(t, first[0].Points, 100)
	require.Len(t, second[0].Points, 100)
	assert.NotEqual(t, first[0].Points, second[0].Points, "two draws of 100 out of 1000 should differ")
}

func TestSampleForMap_NewRandCalledOncePerCall(t *testing.T) {
	calls := 0
	s := &Sampler{NewRand: func() *rand.Rand {
		calls++
		return rand.New(rand.NewPCG(uint64(calls), 0))
	}}
	rows := append(makeRows(Slight, 50), makeRows(Serious, 50)...)

	s.SampleForMap(rows, []Severity{Slight, Serious})
	assert.Equal(t, 1, calls)

	s.SampleForMap(rows, []Severity{Slight, Serious})
	assert.Equal(t, 2, calls)
}
