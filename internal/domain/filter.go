package domain

import (
	"slices"
	"strings"
)

// Selection is the state of the two dashboard checklists.
type Selection struct {
	Severities []Severity `json:"severities"`
	Days       []string   `json:"days"`
}

// Normalize drops duplicate values while keeping the first occurrence order.
func (s Selection) Normalize() Selection {
	return Selection{
		Severities: dedupe(s.Severities),
		Days:       dedupe(s.Days),
	}
}

// Key returns a canonical form of the selection for use as a cache key.
// Two selections with the same value sets and the same severity order share
// a key; severity order matters because bar traces follow it.
func (s Selection) Key() string {
	n := s.Normalize()
	days := slices.Clone(n.Days)
	slices.Sort(days)

	sev := make([]string, len(n.Severities))
	for i, v := range n.Severities {
		sev[i] = string(v)
	}
	return strings.Join(sev, ",") + "|" + strings.Join(days, ",")
}

// FilterAccidents returns the rows whose severity is in sel.Severities and
// whose day of week is in sel.Days. An empty set in either dimension matches
// nothing. The input is not modified and the result preserves input order.
func FilterAccidents(rows []Accident, sel Selection) []Accident {
	out := []Accident{}
	if len(sel.Severities) == 0 || len(sel.Days) == 0 {
		return out
	}

	severities := make(map[Severity]struct{}, len(sel.Severities))
	for _, s := range sel.Severities {
		severities[s] = struct{}{}
	}
	days := make(map[string]struct{}, len(sel.Days))
	for _, d := range sel.Days {
		days[d] = struct{}{}
	}

	for _, r := range rows {
		if _, ok := severities[r.Severity]; !ok {
			continue
		}
		if _, ok := days[r.DayOfWeek]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func dedupe[T comparable](in []T) []T {
	seen := make(map[T]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
