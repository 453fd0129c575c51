package dataset

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeState upper-cases and trims a state name so the two tables and
// the boundary dataset can be joined by exact match.
func NormalizeState(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}

// Normalize returns a copy of the table with normalized state names.
// The receiver is left untouched, so applying it twice is harmless.
func (t LegacyTable) Normalize() LegacyTable {
	out := LegacyTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]LegacyRecord, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = LegacyRecord{
			State:  NormalizeState(r.State),
			Year:   r.Year,
			Values: append([]float64(nil), r.Values...),
		}
	}
	return out
}

// Normalize returns a copy of the table with normalized state names.
func (t SummaryTable) Normalize() SummaryTable {
	out := SummaryTable{Rows: make([]SummaryRecord, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = SummaryRecord{State: NormalizeState(r.State), Year: r.Year, Cases: r.Cases}
	}
	return out
}
