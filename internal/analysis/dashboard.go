// Package analysis turns filtered era tables into the dashboard's series,
// category breakdowns, correlation matrix and KPIs.
package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/filter"
)

// Placeholder messages shown instead of an empty view.
const (
	MsgNoCases      = "No cases reported for the selected filters."
	MsgNoTrend      = "Yearly trend data not available for the selected year range."
	MsgNoCategories = "Offender category data not available for the selected year range."
	MsgNoCorr       = "Correlation data not available for the selected filters."
)

// Options controls dashboard construction.
type Options struct {
	// CorrelationFallback picks the rows used when the filtered legacy table is empty.
	CorrelationFallback FallbackPolicy
	// TopN limits the per-era state ranking; 0 means unlimited.
	TopN int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{CorrelationFallback: FallbackFullTable, TopN: 10}
}

// Selection echoes the resolved filter.
type Selection struct {
	YearMin    int      `json:"year_min" yaml:"year_min"`
	YearMax    int      `json:"year_max" yaml:"year_max"`
	States     []string `json:"states" yaml:"states"`
	Categories []string `json:"categories" yaml:"categories"`
}

// SeriesView is the nationwide yearly line.
type SeriesView struct {
	Points      []YearTotal `json:"points" yaml:"points"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// TrendView is the per-category stacked area over legacy years.
type TrendView struct {
	Columns     []string         `json:"columns" yaml:"columns"`
	Rows        []YearCategories `json:"rows" yaml:"rows"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// RankingView is the per-era top-N state comparison.
type RankingView struct {
	Legacy      []StateTotal `json:"legacy" yaml:"legacy"`
	Summary     []StateTotal `json:"summary" yaml:"summary"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// CategoryView is the offender-category distribution.
type CategoryView struct {
	Totals      []CategoryTotal `json:"totals" yaml:"totals"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Dashboard is every computed output of one filter pass.
type Dashboard struct {
	Selection   Selection    `json:"selection" yaml:"selection"`
	KPIs        KPIs         `json:"kpis" yaml:"kpis"`
	Tiles       []Tile       `json:"tiles" yaml:"tiles"`
	Yearly      SeriesView   `json:"yearly" yaml:"yearly"`
	Trends      TrendView    `json:"trends" yaml:"trends"`
	Ranking     RankingView  `json:"ranking" yaml:"ranking"`
	Categories  CategoryView `json:"categories" yaml:"categories"`
	Correlation CorrMatrix   `json:"correlation" yaml:"correlation"`
	States      []StateTotal `json:"states" yaml:"states"`

	result filter.Result
}

// Result returns the filter result the dashboard was built from.
func (d *Dashboard) Result() filter.Result { return d.result }

// Build runs filter, aggregation and KPI computation over the full tables.
func Build(legacy dataset.LegacyTable, summary dataset.SummaryTable, c filter.Criteria, opt Options) (*Dashboard, error) {
	res, err := filter.Apply(legacy, summary, c)
	if err != nil {
		return nil, err
	}
	if opt.CorrelationFallback == "" {
		opt.CorrelationFallback = FallbackFullTable
	}
	d := &Dashboard{
		Selection: Selection{YearMin: c.YearMin, YearMax: c.YearMax, States: res.States, Categories: res.Categories},
		KPIs:      ComputeKPIs(res, c),
		States:    StateTotals(res),
		result:    res,
	}
	d.Tiles = d.KPIs.Tiles()

	d.Yearly.Points = YearlyTotals(res)
	if len(d.Yearly.Points) == 0 {
		d.Yearly.Placeholder = MsgNoCases
	}

	d.Trends.Columns = res.Legacy.Columns
	d.Trends.Rows = CategoryTrends(res.Legacy)
	if res.Legacy.Len() == 0 || allZero(d.Trends.Rows) {
		d.Trends.Placeholder = MsgNoTrend
	}

	legacyStates, summaryStates := EraStateTotals(res)
	d.Ranking.Legacy = TopStates(legacyStates, opt.TopN)
	d.Ranking.Summary = TopStates(summaryStates, opt.TopN)
	if len(d.Ranking.Legacy) == 0 && len(d.Ranking.Summary) == 0 {
		d.Ranking.Placeholder = MsgNoCases
	}

	d.Categories.Totals = CategoryTotals(res.Legacy, res.Categories)
	var catSum float64
	for _, ct := range d.Categories.Totals {
		catSum += ct.Total
	}
	if res.Legacy.Len() == 0 || catSum == 0 {
		d.Categories.Placeholder = MsgNoCategories
	}

	d.Correlation = Correlation(res.Legacy, legacy, res.Categories, opt.CorrelationFallback)
	return d, nil
}

func allZero(rows []YearCategories) bool {
	for _, r := range rows {
		for _, v := range r.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Markdown renders a compact report of the dashboard.
func (d *Dashboard) Markdown() string {
	var b strings.Builder
	b.WriteString("[DASHBOARD SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Years: %d-%d\n", d.Selection.YearMin, d.Selection.YearMax))
	b.WriteString(fmt.Sprintf("States: %d selected\n", len(d.Selection.States)))
	b.WriteString(fmt.Sprintf("Categories: %s\n\n", joinOrNone(d.Selection.Categories)))

	b.WriteString("[KEY PERFORMANCE INDICATORS]\n")
	for _, t := range d.Tiles {
		b.WriteString(fmt.Sprintf("- %s: %s\n", t.Label, t.Value))
	}

	b.WriteString("\n[TOTAL REPORTED CASES BY YEAR]\n")
	if d.Yearly.Placeholder != "" {
		b.WriteString(d.Yearly.Placeholder + "\n")
	}
	for _, p := range d.Yearly.Points {
		b.WriteString(fmt.Sprintf("- %d: %s\n", p.Year, FormatCount(p.Total)))
	}

	b.WriteString("\n[YEARLY TRENDS BY OFFENDER CATEGORY]\n")
	if d.Trends.Placeholder != "" {
		b.WriteString(d.Trends.Placeholder + "\n")
	} else {
		b.WriteString("| Year | " + strings.Join(d.Trends.Columns, " | ") + " |\n")
		b.WriteString("|---" + strings.Repeat("|---", len(d.Trends.Columns)) + "|\n")
		for _, r := range d.Trends.Rows {
			b.WriteString(fmt.Sprintf("| %d |", r.Year))
			for _, v := range r.Values {
				b.WriteString(" " + FormatCount(v) + " |")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n[TOP STATES BY TOTAL CASES]\n")
	if d.Ranking.Placeholder != "" {
		b.WriteString(d.Ranking.Placeholder + "\n")
	}
	writeRanking(&b, "1999-2013", d.Ranking.Legacy)
	writeRanking(&b, "2015-2020", d.Ranking.Summary)

	b.WriteString("\n[OFFENDER CATEGORY DISTRIBUTION]\n")
	if d.Categories.Placeholder != "" {
		b.WriteString(d.Categories.Placeholder + "\n")
	} else {
		var sum float64
		for _, c := range d.Categories.Totals {
			sum += c.Total
		}
		for _, c := range d.Categories.Totals {
			b.WriteString(fmt.Sprintf("- %s: %s (%.1f%%)\n", c.Category, FormatCount(c.Total), c.Total*100/sum))
		}
	}

	b.WriteString("\n[CORRELATIONS]\n")
	if len(d.Correlation.Columns) < 2 {
		b.WriteString(MsgNoCorr + "\n")
	} else {
		if d.Correlation.Source == SourceFullTable {
			b.WriteString("(no rows matched; computed over the full 1999-2013 table)\n")
		}
		n := len(d.Correlation.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.2f\n", d.Correlation.Columns[i], d.Correlation.Columns[j], d.Correlation.Values[i][j]))
			}
		}
	}
	return b.String()
}

func writeRanking(b *strings.Builder, era string, rows []StateTotal) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("%s:\n", era))
	for i, r := range rows {
		b.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, r.State, FormatCount(r.Total)))
	}
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}
