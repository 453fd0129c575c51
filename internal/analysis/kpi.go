package analysis

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/casedash/internal/filter"
)

// NoData labels extremal KPIs when the filtered series is empty.
const NoData = "No data"

// KPIs are the six scalar dashboard metrics. Raw values are kept alongside
// the display strings so callers can test or re-render them.
type KPIs struct {
	TotalCases  float64 `json:"total_cases" yaml:"total_cases"`
	AvgPerState float64 `json:"avg_per_state" yaml:"avg_per_state"`
	AvgPerYear  float64 `json:"avg_per_year" yaml:"avg_per_year"`
	HighestYear string  `json:"highest_year" yaml:"highest_year"`
	LowestYear  string  `json:"lowest_year" yaml:"lowest_year"`
	TopState    string  `json:"top_state" yaml:"top_state"`
	TopStateAvg float64 `json:"top_state_avg" yaml:"top_state_avg"`
	YearMin     int     `json:"year_min" yaml:"year_min"`
	YearMax     int     `json:"year_max" yaml:"year_max"`
}

// Tile is one labelled KPI ready for display.
type Tile struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// ComputeKPIs derives the scalar metrics from a filter result.
func ComputeKPIs(res filter.Result, c filter.Criteria) KPIs {
	k := KPIs{HighestYear: NoData, LowestYear: NoData, TopState: NoData, YearMin: c.YearMin, YearMax: c.YearMax}

	for _, r := range res.Legacy.Rows {
		k.TotalCases += r.Total()
	}
	for _, r := range res.Summary.Rows {
		k.TotalCases += r.Cases
	}
	if n := len(res.States); n > 0 {
		k.AvgPerState = k.TotalCases / float64(n)
	}
	span := float64(c.Span())
	if span > 0 {
		k.AvgPerYear = k.TotalCases / span
	}

	// argmax/argmin over the yearly series restricted to the range; the
	// earliest year wins a tie.
	var hiY, loY int
	var hiV, loV float64
	found := false
	for _, p := range YearlyTotals(res) {
		if p.Year < c.YearMin || p.Year > c.YearMax {
			continue
		}
		if !found || p.Total > hiV {
			hiY, hiV = p.Year, p.Total
		}
		if !found || p.Total < loV {
			loY, loV = p.Year, p.Total
		}
		found = true
	}
	if found {
		k.HighestYear = strconv.Itoa(hiY)
		k.LowestYear = strconv.Itoa(loY)
	}

	// Highest per-year average by state; alphabetical order breaks ties.
	first := true
	for _, st := range StateTotals(res) {
		if span <= 0 {
			break
		}
		avg := st.Total / span
		if first || avg > k.TopStateAvg {
			k.TopState, k.TopStateAvg = st.State, avg
			first = false
		}
	}
	return k
}

// Tiles renders the KPIs as the six labelled dashboard tiles.
func (k KPIs) Tiles() []Tile {
	return []Tile{
		{Label: fmt.Sprintf("Total Cases (%d-%d)", k.YearMin, k.YearMax), Value: FormatCount(k.TotalCases)},
		{Label: "Avg Cases per State/UT", Value: FormatCount(k.AvgPerState)},
		{Label: "Avg Cases per Year", Value: FormatCount(k.AvgPerYear)},
		{Label: "Year with Highest Cases", Value: k.HighestYear},
		{Label: "Year with Lowest Cases", Value: k.LowestYear},
		{Label: fmt.Sprintf("Highest Avg Cases Per Year (%s)", k.TopState), Value: FormatCount(k.TopStateAvg)},
	}
}
