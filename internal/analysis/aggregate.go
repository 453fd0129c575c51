package analysis

import (
	"sort"

	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/filter"
)

// YearTotal is one point of the nationwide yearly series.
type YearTotal struct {
	Year  int     `json:"year" yaml:"year"`
	Total float64 `json:"total" yaml:"total"`
}

// StateTotal is one state's case count.
type StateTotal struct {
	State string  `json:"state" yaml:"state"`
	Total float64 `json:"total" yaml:"total"`
}

// CategoryTotal is one offender category's case count.
type CategoryTotal struct {
	Category string  `json:"category" yaml:"category"`
	Total    float64 `json:"total" yaml:"total"`
}

// YearCategories holds per-category sums for one year, in the column order
// of the legacy table.
type YearCategories struct {
	Year   int       `json:"year" yaml:"year"`
	Values []float64 `json:"values" yaml:"values"`
}

// YearlyTotalMap sums every numeric legacy column per year and unions it
// with the summary counts per year.
func YearlyTotalMap(res filter.Result) map[int]float64 {
	return UnionEras(legacyBy(res.Legacy, legacyYear), summaryBy(res.Summary, summaryYear))
}

// YearlyTotals returns the unioned yearly series sorted by year.
func YearlyTotals(res filter.Result) []YearTotal {
	m := YearlyTotalMap(res)
	out := make([]YearTotal, 0, len(m))
	for _, y := range sortedKeys(m) {
		out = append(out, YearTotal{Year: y, Total: m[y]})
	}
	return out
}

// StateTotalMap is the per-state counterpart of YearlyTotalMap.
func StateTotalMap(res filter.Result) map[string]float64 {
	return UnionEras(legacyBy(res.Legacy, legacyState), summaryBy(res.Summary, summaryState))
}

// StateTotals returns the unioned per-state series sorted by state name.
func StateTotals(res filter.Result) []StateTotal {
	return stateSeries(StateTotalMap(res))
}

// EraStateTotals returns the per-state series of each era separately.
func EraStateTotals(res filter.Result) (legacy, summary []StateTotal) {
	return stateSeries(legacyBy(res.Legacy, legacyState)), stateSeries(summaryBy(res.Summary, summaryState))
}

// TopStates returns the n largest entries, largest first. Ties are broken
// by state name. n <= 0 returns every entry.
func TopStates(series []StateTotal, n int) []StateTotal {
	out := append([]StateTotal(nil), series...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].State < out[j].State
		}
		return out[i].Total > out[j].Total
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategoryTotals sums each requested category column across all legacy
// rows. Categories the table does not carry are skipped.
func CategoryTotals(legacy dataset.LegacyTable, categories []string) []CategoryTotal {
	cols := AvailableCategories(legacy, categories)
	out := make([]CategoryTotal, len(cols))
	for i, c := range cols {
		idx := legacy.ColumnIndex(c)
		var sum float64
		for _, r := range legacy.Rows {
			sum += r.Values[idx]
		}
		out[i] = CategoryTotal{Category: c, Total: sum}
	}
	return out
}

// AvailableCategories filters the requested categories down to columns
// present in the table, preserving the requested order.
func AvailableCategories(legacy dataset.LegacyTable, categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if legacy.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// CategoryTrends sums every numeric legacy column per year.
func CategoryTrends(legacy dataset.LegacyTable) []YearCategories {
	byYear := map[int][]float64{}
	for _, r := range legacy.Rows {
		acc := byYear[r.Year]
		if acc == nil {
			acc = make([]float64, len(legacy.Columns))
			byYear[r.Year] = acc
		}
		for i, v := range r.Values {
			acc[i] += v
		}
	}
	out := make([]YearCategories, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		out = append(out, YearCategories{Year: y, Values: byYear[y]})
	}
	return out
}

func stateSeries(m map[string]float64) []StateTotal {
	out := make([]StateTotal, 0, len(m))
	for _, s := range sortedKeys(m) {
		out = append(out, StateTotal{State: s, Total: m[s]})
	}
	return out
}
