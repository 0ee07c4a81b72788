// Package dataset loads the accident and vehicle CSV extracts into
// in-memory tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
)

var (
	// ErrIO is returned when a dataset file cannot be opened or read.
	ErrIO = errors.New("dataset io error")
	// ErrFormat is returned when a dataset file lacks a required column or
	// holds a value of the wrong type.
	ErrFormat = errors.New("dataset format error")
)

// Accident CSV column names.
const (
	ColSeverity   = "Accident_Severity"
	ColDayOfWeek  = "Day_of_Week"
	ColSpeedLimit = "Speed_limit"
	ColCasualties = "Number_of_Casualties"
	ColLatitude   = "Latitude"
	ColLongitude  = "Longitude"
	ColDistrict   = "Local_Authority_(District)"
)

var requiredAccidentColumns = []string{
	ColSeverity, ColDayOfWeek, ColSpeedLimit, ColCasualties,
	ColLatitude, ColLongitude, ColDistrict,
}

// naTokens are the cell values treated as missing, matching the pandas
// read_csv defaults the extracts were prepared with.
var naTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Stats describes one load.
type Stats struct {
	Kept    int
	Dropped int
}

// LoadAccidents reads the accident CSV at path. Rows with a missing value in
// any column are dropped.
func LoadAccidents(path string) (*domain.AccidentTable, Stats, error) {
	var stats Stats

	header, rows, err := readTable(path, &stats)
	if err != nil {
		return nil, stats, err
	}

	idx, err := columnIndex(header, requiredAccidentColumns)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}

	accidents := make([]domain.Accident, 0, len(rows))
	for _, row := range rows {
		a, err := parseAccident(row.fields, idx)
		if err != nil {
			return nil, stats, fmt.Errorf("%s line %d: %w", path, row.lineNum, err)
		}
		accidents = append(accidents, a)
	}

	return domain.NewAccidentTable(accidents), stats, nil
}

// LoadVehicles reads the vehicle CSV at path with the same missing-value
// handling as LoadAccidents. No columns are required beyond a header.
func LoadVehicles(path string) (*domain.VehicleTable, Stats, error) {
	var stats Stats

	header, rows, err := readTable(path, &stats)
	if err != nil {
		return nil, stats, err
	}

	table := &domain.VehicleTable{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		table.Rows = append(table.Rows, row.fields)
	}
	return table, stats, nil
}

// csvRow is a complete data row with its 1-based line number in the file.
type csvRow struct {
	lineNum int
	fields  []string
}

func readTable(path string, stats *Stats) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w: %w", path, ErrIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: %w: empty file", path, ErrFormat)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", path, classify(err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []csvRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, classify(err))
		}

		line, _ := r.FieldPos(0)
		if len(record) > len(header) {
			return nil, nil, fmt.Errorf("%s line %d: %w: %d fields, header has %d", path, line, ErrFormat, len(record), len(header))
		}
		if !complete(record, len(header)) {
			stats.Dropped++
			continue
		}
		stats.Kept++
		rows = append(rows, csvRow{lineNum: line, fields: record})
	}
	return header, rows, nil
}

// classify maps CSV syntax errors to ErrFormat and everything else to ErrIO.
func classify(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// complete reports whether every data cell is present. Column 0 is the row
// index and is not checked.
func complete(record []string, width int) bool {
	if len(record) < width {
		return false
	}
	for _, v := range record[1:] {
		if naTokens[strings.TrimSpace(v)] {
			return false
		}
	}
	return true
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrFormat, col)
		}
	}
	return idx, nil
}

func parseAccident(fields []string, idx map[string]int) (domain.Accident, error) {
	get := func(col string) string { return strings.TrimSpace(fields[idx[col]]) }

	speed, err := parseInt(get(ColSpeedLimit))
	if err != nil {
		return domain.Accident{}, fmt.Errorf("%w: %s: %w", ErrFormat, ColSpeedLimit, err)
	}
	casualties, err := parseInt(get(ColCasualties))
	if err != nil {
		return domain.Accident{}, fmt.Errorf("%w: %s: %w", ErrFormat, ColCasualties, err)
	}
	lat, err := strconv.ParseFloat(get(ColLatitude), 64)
	if err != nil {
		return domain.Accident{}, fmt.Errorf("%w: %s: %w", ErrFormat, ColLatitude, err)
	}
	lon, err := strconv.ParseFloat(get(ColLongitude), 64)
	if err != nil {
		return domain.Accident{}, fmt.Errorf("%w: %s: %w", ErrFormat, ColLongitude, err)
	}

	return domain.Accident{
		Index:      strings.TrimSpace(fields[0]),
		Severity:   domain.Severity(get(ColSeverity)),
		DayOfWeek:  get(ColDayOfWeek),
		SpeedLimit: speed,
		Casualties: casualties,
		Latitude:   lat,
		Longitude:  lon,
		District:   get(ColDistrict),
	}, nil
}

// parseInt accepts integral floats ("30.0") as written by pandas for
// columns that held NaN before cleaning.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
