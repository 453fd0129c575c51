// Package filter narrows the two era tables to a year range and a set of
// states, and resolves the offender-category selection.
package filter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/casedash/internal/dataset"
)

// ErrInvalidRange is returned when YearMin > YearMax.
var ErrInvalidRange = errors.New("invalid year range")

// Criteria describes one filter pass.
type Criteria struct {
	YearMin    int
	YearMax    int
	States     Selection
	Categories Selection
}

// DefaultCriteria selects every state and category over the full year span
// of the loaded tables.
func DefaultCriteria(legacy dataset.LegacyTable, summary dataset.SummaryTable) Criteria {
	lo, hi, _ := dataset.YearBounds(legacy, summary)
	return Criteria{YearMin: lo, YearMax: hi, States: All(), Categories: All()}
}

// Validate checks the year range.
func (c Criteria) Validate() error {
	if c.YearMin > c.YearMax {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, c.YearMin, c.YearMax)
	}
	return nil
}

// Span is the inclusive number of years in the range.
func (c Criteria) Span() int { return c.YearMax - c.YearMin + 1 }

// Result holds the filtered views plus the resolved selections. Downstream
// code only ever sees explicit sets.
type Result struct {
	Legacy     dataset.LegacyTable
	Summary    dataset.SummaryTable
	States     []string
	Categories []string
}

// Empty reports whether both filtered tables have no rows.
func (r Result) Empty() bool { return r.Legacy.Len() == 0 && r.Summary.Len() == 0 }

// Apply filters both tables. The state universe is the union of states in
// the (normalized) tables; the category universe is dataset.OffenderCategories.
// Source tables are not modified.
func Apply(legacy dataset.LegacyTable, summary dataset.SummaryTable, c Criteria) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	universe := dataset.States(legacy, summary)
	states := known(c.States.Resolve(universe, dataset.NormalizeState), universe)
	categories := c.Categories.Resolve(dataset.OffenderCategories, nil)

	keep := make(map[string]struct{}, len(states))
	for _, s := range states {
		keep[s] = struct{}{}
	}
	match := func(state string, year int) bool {
		if year < c.YearMin || year > c.YearMax {
			return false
		}
		_, ok := keep[state]
		return ok
	}

	out := Result{
		Legacy:     dataset.LegacyTable{Columns: append([]string(nil), legacy.Columns...)},
		States:     states,
		Categories: orderCategories(categories),
	}
	for _, r := range legacy.Rows {
		if match(r.State, r.Year) {
			out.Legacy.Rows = append(out.Legacy.Rows, r)
		}
	}
	for _, r := range summary.Rows {
		if match(r.State, r.Year) {
			out.Summary.Rows = append(out.Summary.Rows, r)
		}
	}
	return out, nil
}

// known drops explicit names that do not occur in the data, so they never
// count as selected states.
func known(names, universe []string) []string {
	in := make(map[string]struct{}, len(universe))
	for _, u := range universe {
		in[u] = struct{}{}
	}
	out := make([]string, 0, len(names))
	var dropped []string
	for _, n := range names {
		if _, ok := in[n]; ok {
			out = append(out, n)
		} else {
			dropped = append(dropped, n)
		}
	}
	if len(dropped) > 0 {
		slog.Debug("ignoring states not present in the data", "states", dropped)
	}
	return out
}

// orderCategories puts the selected categories back into canonical order.
func orderCategories(selected []string) []string {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, c := range dataset.OffenderCategories {
		if _, ok := set[c]; ok {
			out = append(out, c)
			delete(set, c)
		}
	}
	for _, s := range selected {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
