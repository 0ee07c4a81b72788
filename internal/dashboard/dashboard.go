// Package dashboard holds the loaded datasets and computes the chart views
// for a checklist selection.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
	"github.com/couchcryptid/uk-accident-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Settings tunes a Dashboard. Zero values select defaults.
type Settings struct {
	CacheSize   int
	MapboxToken string
	MapboxStyle string

	// Clock stamps Views.GeneratedAt. Defaults to the real clock.
	Clock clockwork.Clock
	// Sampler draws the map samples. Defaults to a sampler reseeded per call.
	Sampler *domain.Sampler
}

// Views is everything the presentation layer needs to redraw after a
// checklist change.
type Views struct {
	Selection    domain.Selection  `json:"selection"`
	FilteredRows int               `json:"filtered_rows"`
	Bar          []domain.BarTrace `json:"bar"`
	Map          []domain.MapLayer `json:"map"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Option is one checklist entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options describes both checklists and their initial selections.
type Options struct {
	Severities       []Option         `json:"severities"`
	Days             []Option         `json:"days"`
	DefaultSelection domain.Selection `json:"default_selection"`
}

// DatasetSummary reports what was loaded at startup.
type DatasetSummary struct {
	Accidents int `json:"accidents"`
	Vehicles  int `json:"vehicles"`
}

// Dashboard is the immutable context created once at startup. Every method
// is safe for concurrent use.
type Dashboard struct {
	accidents *domain.AccidentTable
	vehicles  *domain.VehicleTable
	sampler   *domain.Sampler
	cache     *barCache
	clock     clockwork.Clock
	layout    MapLayout
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Dashboard over the loaded tables. vehicles may be nil.
func New(accidents *domain.AccidentTable, vehicles *domain.VehicleTable, s Settings, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	if s.CacheSize <= 0 {
		s.CacheSize = 256
	}
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}
	if s.Sampler == nil {
		s.Sampler = &domain.Sampler{}
	}
	if s.MapboxStyle == "" {
		s.MapboxStyle = "open-street-map"
	}

	return &Dashboard{
		accidents: accidents,
		vehicles:  vehicles,
		sampler:   s.Sampler,
		cache:     newBarCache(s.CacheSize),
		clock:     s.Clock,
		layout:    MapLayout{AccessToken: s.MapboxToken, Style: s.MapboxStyle},
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once an accident table is attached.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if d.accidents == nil {
		return errors.New("accident dataset not loaded")
	}
	return nil
}

// ComputeViews filters the accident table by sel and builds both chart views.
// Unknown selection values match nothing; an empty result yields empty views.
func (d *Dashboard) ComputeViews(sel domain.Selection) Views {
	sel = sel.Normalize()
	filtered := d.accidents.Filter(sel)
	d.metrics.FilteredRows.Observe(float64(len(filtered)))

	views := Views{
		Selection:    sel,
		FilteredRows: len(filtered),
		Bar:          d.barView(sel, filtered),
		Map:          d.mapView(sel, filtered),
		GeneratedAt:  d.clock.Now().UTC(),
	}

	d.logger.Debug("views computed",
		"severities", len(sel.Severities),
		"days", len(sel.Days),
		"filtered_rows", len(filtered),
	)
	return views
}

// BarView returns only the bar traces for sel. The result may be shared with
// other callers and must not be modified.
func (d *Dashboard) BarView(sel domain.Selection) []domain.BarTrace {
	sel = sel.Normalize()
	return d.barView(sel, nil)
}

// barView serves from the cache when possible. filtered may be nil, in which
// case it is computed on a miss.
func (d *Dashboard) barView(sel domain.Selection, filtered []domain.Accident) []domain.BarTrace {
	key := sel.Key()
	if traces, ok := d.cache.get(key); ok {
		d.metrics.ViewCache.WithLabelValues("hit").Inc()
		return traces
	}
	d.metrics.ViewCache.WithLabelValues("miss").Inc()

	start := time.Now()
	if filtered == nil {
		filtered = d.accidents.Filter(sel)
	}
	traces := domain.PartitionBySeverity(domain.AggregateForBar(filtered), sel.Severities)
	d.cache.put(key, traces)

	d.metrics.ViewsComputed.WithLabelValues("bar").Inc()
	d.metrics.ViewDuration.WithLabelValues("bar").Observe(time.Since(start).Seconds())
	return traces
}

func (d *Dashboard) mapView(sel domain.Selection, filtered []domain.Accident) []domain.MapLayer {
	start := time.Now()
	layers := d.sampler.SampleForMap(filtered, sel.Severities)

	d.metrics.ViewsComputed.WithLabelValues("map").Inc()
	d.metrics.ViewDuration.WithLabelValues("map").Observe(time.Since(start).Seconds())
	return layers
}

// Options lists the checklist entries: severities in order of first
// appearance, days Monday first with three-letter labels. Everything starts
// selected.
func (d *Dashboard) Options() Options {
	severities := d.accidents.Severities()
	days := d.accidents.Days()

	opts := Options{
		Severities: make([]Option, len(severities)),
		Days:       make([]Option, len(days)),
		DefaultSelection: domain.Selection{
			Severities: severities,
			Days:       days,
		},
	}
	for i, s := range severities {
		opts.Severities[i] = Option{Label: string(s), Value: string(s)}
	}
	for i, day := range days {
		opts.Days[i] = Option{Label: shortDay(day), Value: day}
	}
	return opts
}

// Datasets reports the row counts of the loaded tables.
func (d *Dashboard) Datasets() DatasetSummary {
	return DatasetSummary{
		Accidents: d.accidents.Len(),
		Vehicles:  d.vehicles.Len(),
	}
}

// MapLayout returns the map layout settings used by MapFigure.
func (d *Dashboard) MapLayout() MapLayout {
	return d.layout
}

func shortDay(day string) string {
	r := []rune(day)
	if len(r) <= 3 {
		return day
	}
	return string(r[:3])
}
