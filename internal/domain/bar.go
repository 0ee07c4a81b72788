package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BarGroup is the casualty total for one (severity, speed limit) pair.
type BarGroup struct {
	Severity        Severity `json:"severity"`
	SpeedLimit      int      `json:"speed_limit"`
	TotalCasualties int      `json:"total_casualties"`
	HoverText       string   `json:"hover_text"`
}

// BarTrace holds the groups of one selected severity, in speed limit order.
type BarTrace struct {
	Severity Severity   `json:"severity"`
	Color    string     `json:"color"`
	Groups   []BarGroup `json:"groups"`
}

type barKey struct {
	severity   Severity
	speedLimit int
}

// AggregateForBar groups rows by (severity, speed limit) and sums casualties.
// Groups come back sorted by severity, then speed limit. Pairs with no rows
// are absent rather than zero-filled.
func AggregateForBar(rows []Accident) []BarGroup {
	totals := make(map[barKey]int)
	for _, r := range rows {
		totals[barKey{severity: r.Severity, speedLimit: r.SpeedLimit}] += r.Casualties
	}

	groups := make([]BarGroup, 0, len(totals))
	for k, total := range totals {
		groups = append(groups, BarGroup{
			Severity:        k.severity,
			SpeedLimit:      k.speedLimit,
			TotalCasualties: total,
			HoverText:       BarHoverText(k.speedLimit, total, k.severity),
		})
	}
	slices.SortFunc(groups, func(a, b BarGroup) int {
		if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
			return c
		}
		return cmp.Compare(a.SpeedLimit, b.SpeedLimit)
	})
	return groups
}

// BarHoverText renders the tooltip for one bar, e.g.
// "Speed Limit: 30mph<br>1,234 slight accidents".
func BarHoverText(speedLimit, total int, severity Severity) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Speed Limit: %smph<br>%d %s accidents",
		strconv.Itoa(speedLimit), total, strings.ToLower(string(severity)))
}

// PartitionBySeverity splits aggregated groups into one trace per selected
// severity, in selection order. A selected severity without groups still
// gets a trace, with no groups.
func PartitionBySeverity(groups []BarGroup, severities []Severity) []BarTrace {
	traces := make([]BarTrace, 0, len(severities))
	for _, sev := range severities {
		trace := BarTrace{Severity: sev, Color: ColorFor(sev), Groups: []BarGroup{}}
		for _, g := range groups {
			if g.Severity == sev {
				trace.Groups = append(trace.Groups, g)
			}
		}
		traces = append(traces, trace)
	}
	return traces
}
