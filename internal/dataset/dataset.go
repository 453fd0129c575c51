// Package dataset loads the two era tables of reported cases.
//
// The legacy table (1999-2013) carries one numeric column per offender
// category; the summary table (2015-2020) carries a single reported-case
// count. Both are keyed by (state, year).
package dataset

import (
	"errors"
	"math"
	"sort"
)

// Canonical offender category columns of the legacy table.
var OffenderCategories = []string{
	"Known_To_The_Victims",
	"Parents_Close_Family_Members",
	"Relatives",
	"Neighbours",
	"Other_Known_Persons",
}

// Header names used by the source files. Matching is case-insensitive.
const (
	LegacyStateColumn  = "STATE/UT"
	LegacyYearColumn   = "YEAR"
	SummaryStateColumn = "State/UT"
	SummaryYearColumn  = "Year"
	SummaryCasesColumn = "Cases_Reported"
)

// ErrMissingColumn is returned when a required key column is absent.
var ErrMissingColumn = errors.New("missing required column")

// LegacyRecord is one (state, year) row of the detailed table.
// Values holds one entry per numeric column, in LegacyTable.Columns order.
type LegacyRecord struct {
	State  string
	Year   int
	Values []float64
}

// Total sums every numeric cell of the row.
func (r LegacyRecord) Total() float64 {
	var sum float64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// LegacyTable is the 1999-2013 detailed table.
type LegacyTable struct {
	Columns []string
	Rows    []LegacyRecord
}

// ColumnIndex returns the position of a numeric column, or -1.
func (t LegacyTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the numeric column.
func (t LegacyTable) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// Len returns the number of rows.
func (t LegacyTable) Len() int { return len(t.Rows) }

// SummaryRecord is one (state, year) row of the summary table.
type SummaryRecord struct {
	State string
	Year  int
	Cases float64
}

// SummaryTable is the 2015-2020 summary table.
type SummaryTable struct {
	Rows []SummaryRecord
}

// Len returns the number of rows.
func (t SummaryTable) Len() int { return len(t.Rows) }

// States returns the sorted union of state names across both tables.
func States(legacy LegacyTable, summary SummaryTable) []string {
	seen := map[string]struct{}{}
	for _, r := range legacy.Rows {
		seen[r.State] = struct{}{}
	}
	for _, r := range summary.Rows {
		seen[r.State] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// YearBounds returns the min and max year across both tables.
// ok is false when both tables are empty.
func YearBounds(legacy LegacyTable, summary SummaryTable) (minYear, maxYear int, ok bool) {
	minYear, maxYear = math.MaxInt, math.MinInt
	for _, r := range legacy.Rows {
		minYear = min(minYear, r.Year)
		maxYear = max(maxYear, r.Year)
	}
	for _, r := range summary.Rows {
		minYear = min(minYear, r.Year)
		maxYear = max(maxYear, r.Year)
	}
	if minYear > maxYear {
		return 0, 0, false
	}
	return minYear, maxYear, true
}
