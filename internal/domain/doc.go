// Package domain models UK road accident records (STATS19 extracts) and the
// pure transformations behind the dashboard views.
//
// # Data Source
//
// Accident rows come from the Department for Transport STATS19 yearly CSV
// extracts, exported with a leading unnamed index column. The index is kept
// as the record identity and is never used for filtering or aggregation.
//
// # Severity
//
// Accident_Severity is one of "Fatal", "Serious" or "Slight". Each severity
// has a fixed display colour ([SeverityColors]) and a map downsample
// fraction ([SampleFraction]):
//
//	Fatal:   1.0  (every matching accident is drawn)
//	Serious: 0.5
//	Slight:  0.1
//
// Any other label is drawn in full.
//
// # Views
//
// The filter, bar and map functions never mutate their inputs and never
// share intermediate state, so one loaded table can back any number of
// concurrent view computations:
//
//	FilterAccidents  -> rows matching both checklist selections
//	AggregateForBar  -> casualty totals per (severity, speed limit)
//	SampleForMap     -> per-severity point layer + legend marker layer
package domain
