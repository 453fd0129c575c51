package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/casedash/internal/dataset"
)

// FallbackPolicy decides which rows feed the correlation view when the
// filtered legacy table is empty.
type FallbackPolicy string

const (
	// FallbackFullTable computes over the unfiltered legacy table, so the
	// view always shows the overall pattern.
	FallbackFullTable FallbackPolicy = "full-table"
	// FallbackNone computes over the (empty) filtered rows and marks the
	// matrix empty.
	FallbackNone FallbackPolicy = "none"
)

// ParseFallbackPolicy validates a policy name from config or flags.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(s) {
	case FallbackFullTable, "":
		return FallbackFullTable, nil
	case FallbackNone:
		return FallbackNone, nil
	}
	return "", fmt.Errorf("unknown correlation fallback %q (use %s|%s)", s, FallbackFullTable, FallbackNone)
}

// Correlation sources.
const (
	SourceFiltered  = "filtered"
	SourceFullTable = "full-table"
)

// CorrMatrix is a symmetric Pearson correlation matrix across offender
// categories, rounded to two decimals, with a unit diagonal.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
	Source  string      `json:"source" yaml:"source"`
	Rows    int         `json:"rows" yaml:"rows"`
	Empty   bool        `json:"empty" yaml:"empty"`
}

// pairAcc accumulates the sums needed for an exact Pearson r.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

// r returns the correlation, or 0 when it is undefined (fewer than two
// rows or a constant column).
func (pa *pairAcc) r() float64 {
	if pa.n < 2 {
		return 0
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	if denom == 0 {
		return 0
	}
	r := (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// Correlation computes the category correlation matrix over the filtered
// legacy rows. When those are empty the policy decides whether the full
// table is used instead. Categories missing from the table are skipped.
func Correlation(filtered, full dataset.LegacyTable, categories []string, policy FallbackPolicy) CorrMatrix {
	src, source := filtered, SourceFiltered
	if filtered.Len() == 0 && policy == FallbackFullTable {
		src, source = full, SourceFullTable
	}
	cols := AvailableCategories(src, categories)
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = src.ColumnIndex(c)
	}

	n := len(cols)
	pairs := make([][]pairAcc, n)
	for i := range pairs {
		pairs[i] = make([]pairAcc, n)
	}
	for _, row := range src.Rows {
		for a := 1; a < n; a++ {
			x := row.Values[idx[a]]
			for b := 0; b < a; b++ {
				pairs[a][b].add(x, row.Values[idx[b]])
			}
		}
	}

	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 1; a < n; a++ {
		for b := 0; b < a; b++ {
			r := round2(pairs[a][b].r())
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return CorrMatrix{Columns: cols, Values: mat, Source: source, Rows: src.Len(), Empty: src.Len() == 0}
}

func round2(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
