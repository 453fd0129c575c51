package filter

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (dataset.LegacyTable, dataset.SummaryTable) {
	legacy := dataset.LegacyTable{
		Columns: []string{"Known_To_The_Victims", "Relatives"},
		Rows: []dataset.LegacyRecord{
			{State: "GOA", Year: 2000, Values: []float64{5, 3}},
			{State: "GOA", Year: 2001, Values: []float64{2, 1}},
			{State: "KERALA", Year: 2001, Values: []float64{4, 4}},
		},
	}
	summary := dataset.SummaryTable{Rows: []dataset.SummaryRecord{
		{State: "GOA", Year: 2015, Cases: 10},
		{State: "DELHI", Year: 2016, Cases: 20},
	}}
	return legacy, summary
}

func TestSelection_Resolve(t *testing.T) {
	universe := []string{"B", "A"}
	assert.Equal(t, []string{"A", "B"}, All().Resolve(universe, nil))
	assert.Empty(t, Only().Resolve(universe, nil))
	assert.Empty(t, Selection{}.Resolve(universe, nil))
	assert.Equal(t, []string{"GOA", "ZZZ"}, Only(" goa", "Goa", "zzz").Resolve(universe, dataset.NormalizeState))
}

func TestApply_YearAndState(t *testing.T) {
	legacy, summary := fixture()
	res, err := Apply(legacy, summary, Criteria{YearMin: 2001, YearMax: 2015, States: Only("goa"), Categories: All()})
	require.NoError(t, err)

	require.Len(t, res.Legacy.Rows, 1)
	assert.Equal(t, 2001, res.Legacy.Rows[0].Year)
	require.Len(t, res.Summary.Rows, 1)
	assert.Equal(t, "GOA", res.Summary.Rows[0].State)
	assert.Equal(t, []string{"GOA"}, res.States)
	assert.Equal(t, dataset.OffenderCategories, res.Categories)
	assert.Len(t, legacy.Rows, 3, "source table must be unchanged")
}

func TestApply_AllEqualsExplicitEveryState(t *testing.T) {
	legacy, summary := fixture()
	all, err := Apply(legacy, summary, Criteria{YearMin: 1999, YearMax: 2020, States: All(), Categories: All()})
	require.NoError(t, err)
	explicit, err := Apply(legacy, summary, Criteria{YearMin: 1999, YearMax: 2020,
		States: Only(dataset.States(legacy, summary)...), Categories: Only(dataset.OffenderCategories...)})
	require.NoError(t, err)
	assert.Equal(t, all, explicit)
}

func TestApply_EmptyStateSelectionMatchesNothing(t *testing.T) {
	legacy, summary := fixture()
	res, err := Apply(legacy, summary, Criteria{YearMin: 1999, YearMax: 2020, States: Only(), Categories: All()})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.States)
}

func TestApply_OutOfRangeYears(t *testing.T) {
	legacy, summary := fixture()
	res, err := Apply(legacy, summary, Criteria{YearMin: 1900, YearMax: 1950, States: All(), Categories: All()})
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestApply_InvalidRange(t *testing.T) {
	legacy, summary := fixture()
	_, err := Apply(legacy, summary, Criteria{YearMin: 2010, YearMax: 2000, States: All()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestApply_CategoryOrderIsCanonical(t *testing.T) {
	legacy, summary := fixture()
	res, err := Apply(legacy, summary, Criteria{YearMin: 2000, YearMax: 2000, States: All(),
		Categories: Only("Relatives", "Known_To_The_Victims")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Known_To_The_Victims", "Relatives"}, res.Categories)
}

func TestDefaultCriteria(t *testing.T) {
	legacy, summary := fixture()
	c := DefaultCriteria(legacy, summary)
	assert.Equal(t, 2000, c.YearMin)
	assert.Equal(t, 2016, c.YearMax)
	assert.True(t, c.States.IsAll())
	assert.Equal(t, 17, c.Span())
}

func TestParseSelection(t *testing.T) {
	assert.True(t, ParseSelection(nil).IsAll())
	assert.True(t, ParseSelection([]string{"goa", "All"}).IsAll())

	s := ParseSelection([]string{" goa ", ""})
	assert.False(t, s.IsAll())
	assert.Equal(t, []string{"GOA"}, s.Resolve([]string{"DELHI", "GOA"}, dataset.NormalizeState))

	empty := ParseSelection([]string{""})
	assert.False(t, empty.IsAll())
	assert.Empty(t, empty.Resolve([]string{"DELHI"}, nil))
}

func TestApply_UnknownStatesAreDropped(t *testing.T) {
	legacy, summary := fixture()
	res, err := Apply(legacy, summary, Criteria{YearMin: 2000, YearMax: 2016, States: Only("goa", "Nowhere"), Categories: All()})
	require.NoError(t, err)
	assert.Equal(t, []string{"GOA"}, res.States)
	assert.Len(t, res.Legacy.Rows, 2)
	assert.Len(t, res.Summary.Rows, 1)
}
