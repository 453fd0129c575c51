package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyCSV = "\ufeffSTATE/UT,YEAR,Known_To_The_Victims,Relatives,Neighbours,Note\n" +
	" Goa ,2001,5,3,\"1,200\",ok\n" +
	"kerala,2002,2,,1,ok\n"

const summaryCSV = "State/UT,Year,Cases_Reported\n" +
	"Goa,2015,40\n" +
	"  Delhi,2016,100\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestReadLegacy_InfersNumericColumns(t *testing.T) {
	tbl, err := ReadLegacy(strings.NewReader(legacyCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Known_To_The_Victims", "Relatives", "Neighbours"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Goa", tbl.Rows[0].State)
	assert.Equal(t, "kerala", tbl.Rows[1].State, "ReadLegacy must not change case")
	assert.Equal(t, 2001, tbl.Rows[0].Year)
	assert.Equal(t, []float64{5, 3, 1200}, tbl.Rows[0].Values)
	assert.Equal(t, []float64{2, 0, 1}, tbl.Rows[1].Values, "empty cells count as zero")
	assert.Equal(t, 1208.0, tbl.Rows[0].Total())
}

func TestReadLegacy_MissingYear(t *testing.T) {
	_, err := ReadLegacy(strings.NewReader("STATE/UT,Relatives\nGoa,1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadSummary(t *testing.T) {
	tbl, err := ReadSummary(strings.NewReader(summaryCSV))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, SummaryRecord{State: "Goa", Year: 2015, Cases: 40}, tbl.Rows[0])
}

func TestReadSummary_BadCount(t *testing.T) {
	_, err := ReadSummary(strings.NewReader("State/UT,Year,Cases_Reported\nGoa,2015,many\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cases_Reported")
}

func TestReadSummary_EmptyFile(t *testing.T) {
	_, err := ReadSummary(strings.NewReader(""))
	require.Error(t, err)
}

func TestNormalize_PureAndIdempotent(t *testing.T) {
	tbl, err := ReadLegacy(strings.NewReader(legacyCSV))
	require.NoError(t, err)

	once := tbl.Normalize()
	twice := once.Normalize()

	assert.Equal(t, "GOA", once.Rows[0].State)
	assert.Equal(t, "KERALA", once.Rows[1].State)
	assert.Equal(t, once, twice)
	assert.Equal(t, "kerala", tbl.Rows[1].State, "source table must be unchanged")

	once.Rows[0].Values[0] = 99
	assert.Equal(t, 5.0, tbl.Rows[0].Values[0], "normalized copy must not share value slices")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	lp := writeFile(t, dir, "legacy.csv", legacyCSV)
	sp := writeFile(t, dir, "summary.csv", summaryCSV)

	legacy, summary, err := LoadAll(context.Background(), lp, sp)
	require.NoError(t, err)

	assert.Equal(t, []string{"DELHI", "GOA", "KERALA"}, States(legacy, summary))
	lo, hi, ok := YearBounds(legacy, summary)
	require.True(t, ok)
	assert.Equal(t, 2001, lo)
	assert.Equal(t, 2016, hi)
}

func TestLoadAll_MissingFile(t *testing.T) {
	dir := t.TempDir()
	sp := writeFile(t, dir, "summary.csv", summaryCSV)
	_, _, err := LoadAll(context.Background(), filepath.Join(dir, "nope.csv"), sp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadAll_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	lp := writeFile(t, dir, "legacy.csv", legacyCSV)
	sp := writeFile(t, dir, "summary.csv", summaryCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := LoadAll(ctx, lp, sp)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYearBounds_Empty(t *testing.T) {
	_, _, ok := YearBounds(LegacyTable{}, SummaryTable{})
	assert.False(t, ok)
}
