package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LoadLegacyCSV reads the detailed 1999-2013 table from disk and normalizes it.
func LoadLegacyCSV(path string) (LegacyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return LegacyTable{}, fmt.Errorf("open legacy csv: %w", err)
	}
	defer f.Close()
	t, err := ReadLegacy(f)
	if err != nil {
		return LegacyTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return t.Normalize(), nil
}

// LoadSummaryCSV reads the 2015-2020 summary table from disk and normalizes it.
func LoadSummaryCSV(path string) (SummaryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return SummaryTable{}, fmt.Errorf("open summary csv: %w", err)
	}
	defer f.Close()
	t, err := ReadSummary(f)
	if err != nil {
		return SummaryTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return t.Normalize(), nil
}

// LoadAll reads both tables concurrently. Either failure aborts the load; a
// cancelled ctx stops a load that has not opened its file yet.
func LoadAll(ctx context.Context, legacyPath, summaryPath string) (LegacyTable, SummaryTable, error) {
	var (
		legacy  LegacyTable
		summary SummaryTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		t, err := LoadLegacyCSV(legacyPath)
		legacy = t
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		t, err := LoadSummaryCSV(summaryPath)
		summary = t
		return err
	})
	if err := g.Wait(); err != nil {
		return LegacyTable{}, SummaryTable{}, err
	}
	return legacy, summary, nil
}

// ReadLegacy parses the detailed table. Every column other than the state
// and year keys whose non-empty cells all parse as numbers becomes a
// numeric column; the rest are ignored.
func ReadLegacy(r io.Reader) (LegacyTable, error) {
	header, records, err := readAll(r)
	if err != nil {
		return LegacyTable{}, err
	}
	idx := headerIndex(header)
	stateIdx, ok := idx[strings.ToLower(LegacyStateColumn)]
	if !ok {
		return LegacyTable{}, fmt.Errorf("%w: %s", ErrMissingColumn, LegacyStateColumn)
	}
	yearIdx, ok := idx[strings.ToLower(LegacyYearColumn)]
	if !ok {
		return LegacyTable{}, fmt.Errorf("%w: %s", ErrMissingColumn, LegacyYearColumn)
	}

	// Type inference pass: a column is numeric when no non-empty cell fails to parse.
	var numCols []int
	for j := range header {
		if j == stateIdx || j == yearIdx {
			continue
		}
		numeric, seen := true, false
		for _, rec := range records {
			v := cell(rec, j)
			if v == "" {
				continue
			}
			seen = true
			if _, ok := parseNumeric(v); !ok {
				numeric = false
				break
			}
		}
		if numeric && (seen || len(records) == 0) {
			numCols = append(numCols, j)
		}
	}

	t := LegacyTable{Columns: make([]string, len(numCols))}
	for i, j := range numCols {
		t.Columns[i] = strings.TrimSpace(header[j])
	}
	for n, rec := range records {
		year, err := parseYear(cell(rec, yearIdx))
		if err != nil {
			return LegacyTable{}, fmt.Errorf("row %d: %w", n+2, err)
		}
		row := LegacyRecord{State: cell(rec, stateIdx), Year: year, Values: make([]float64, len(numCols))}
		for i, j := range numCols {
			if x, ok := parseNumeric(cell(rec, j)); ok {
				row.Values[i] = x
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadSummary parses the summary table.
func ReadSummary(r io.Reader) (SummaryTable, error) {
	header, records, err := readAll(r)
	if err != nil {
		return SummaryTable{}, err
	}
	idx := headerIndex(header)
	var cols [3]int
	for i, name := range []string{SummaryStateColumn, SummaryYearColumn, SummaryCasesColumn} {
		j, ok := idx[strings.ToLower(name)]
		if !ok {
			return SummaryTable{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[i] = j
	}
	var t SummaryTable
	for n, rec := range records {
		year, err := parseYear(cell(rec, cols[1]))
		if err != nil {
			return SummaryTable{}, fmt.Errorf("row %d: %w", n+2, err)
		}
		raw := cell(rec, cols[2])
		cases, ok := parseNumeric(raw)
		if raw != "" && !ok {
			return SummaryTable{}, fmt.Errorf("row %d: invalid %s %q", n+2, SummaryCasesColumn, raw)
		}
		t.Rows = append(t.Rows, SummaryRecord{State: cell(rec, cols[0]), Year: year, Cases: cases})
	}
	return t, nil
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("read header: empty file")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return header, records, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseYear(s string) (int, error) {
	x, ok := parseNumeric(s)
	if !ok || x != math.Trunc(x) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(x), nil
}

// parseNumeric accepts plain numbers with optional ',' or space thousands
// separators ("1,234", "1 234.5"). The decimal separator is always '.'.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, ",", "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
