package domain

import "slices"

// Severity is the Accident_Severity label of a record.
type Severity string

const (
	Fatal   Severity = "Fatal"
	Serious Severity = "Serious"
	Slight  Severity = "Slight"
)

// SeverityColors keeps each severity the same colour across both charts.
var SeverityColors = map[Severity]string{
	Fatal:   "red",
	Serious: "orange",
	Slight:  "yellow",
}

// SexColors maps Sex_of_Driver values from the vehicle table to colours.
var SexColors = map[string]string{
	"Female": "yellow",
	"Male":   "blue",
}

// DaySort orders the day checklist Monday first. It is never used for filtering.
var DaySort = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// Downsample fractions for the map. Severities not listed are drawn in full.
const (
	SlightFraction  = 0.1
	SeriousFraction = 0.5
)

// SampleFraction returns the share of a severity's rows drawn on the map.
func SampleFraction(s Severity) float64 {
	switch s {
	case Slight:
		return SlightFraction
	case Serious:
		return SeriousFraction
	default:
		return 1.0
	}
}

// ColorFor returns the display colour for a severity, or "" when none is defined.
func ColorFor(s Severity) string {
	return SeverityColors[s]
}

// Accident is one row of the accident table.
type Accident struct {
	Index      string   `json:"index"`
	Severity   Severity `json:"severity"`
	DayOfWeek  string   `json:"day_of_week"`
	SpeedLimit int      `json:"speed_limit"`
	Casualties int      `json:"casualties"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	District   string   `json:"district"`
}

// AccidentTable is the loaded accident dataset. It is read-only after
// construction; every derived view works on copies.
type AccidentTable struct {
	rows []Accident
}

// NewAccidentTable takes ownership of a copy of rows.
func NewAccidentTable(rows []Accident) *AccidentTable {
	return &AccidentTable{rows: slices.Clone(rows)}
}

// Len returns the number of rows.
func (t *AccidentTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the table rows in load order.
func (t *AccidentTable) Rows() []Accident {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Filter applies FilterAccidents to the table without exposing its backing slice.
func (t *AccidentTable) Filter(sel Selection) []Accident {
	if t == nil {
		return []Accident{}
	}
	return FilterAccidents(t.rows, sel)
}

// Severities returns the distinct severity labels in order of first appearance.
func (t *AccidentTable) Severities() []Severity {
	seen := make(map[Severity]bool)
	var out []Severity
	for _, r := range t.rowsOrNil() {
		if !seen[r.Severity] {
			seen[r.Severity] = true
			out = append(out, r.Severity)
		}
	}
	return out
}

// Days returns the distinct day labels ordered by DaySort. Labels missing
// from DaySort sort last, alphabetically.
func (t *AccidentTable) Days() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rowsOrNil() {
		if !seen[r.DayOfWeek] {
			seen[r.DayOfWeek] = true
			out = append(out, r.DayOfWeek)
		}
	}
	slices.SortFunc(out, compareDays)
	return out
}

func (t *AccidentTable) rowsOrNil() []Accident {
	if t == nil {
		return nil
	}
	return t.rows
}

func compareDays(a, b string) int {
	ia, okA := DaySort[a]
	ib, okB := DaySort[b]
	switch {
	case okA && okB:
		return ia - ib
	case okA:
		return -1
	case okB:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// VehicleTable holds the vehicle dataset. No view reads it yet; it is kept
// loaded so vehicle-level charts (driver sex, see SexColors) can be added
// without changing the loader.
type VehicleTable struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of rows.
func (t *VehicleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
