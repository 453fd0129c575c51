package cmd

import (
	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/filter"
	"github.com/spf13/pflag"
)

// filterFlags are the selection flags shared by report, kpis and geojoin.
type filterFlags struct {
	from       int
	to         int
	states     []string
	categories []string
	noStates   bool
}

func (f *filterFlags) bind(fs *pflag.FlagSet) {
	fs.IntVar(&f.from, "from", 0, "first year of the range (default: earliest year in the data)")
	fs.IntVar(&f.to, "to", 0, "last year of the range (default: latest year in the data)")
	fs.StringArrayVar(&f.states, "state", nil, "state/UT to include (repeatable; default all)")
	fs.StringArrayVar(&f.categories, "category", nil, "offender category to include (repeatable; default all)")
	fs.BoolVar(&f.noStates, "no-states", false, "select no states at all")
}

// criteria builds filter criteria over the loaded tables. Years left unset
// fall back to the data bounds.
func (f *filterFlags) criteria(fs *pflag.FlagSet, legacy dataset.LegacyTable, summary dataset.SummaryTable) (filter.Criteria, error) {
	c := filter.DefaultCriteria(legacy, summary)
	if fs.Changed("from") {
		c.YearMin = f.from
	}
	if fs.Changed("to") {
		c.YearMax = f.to
	}
	switch {
	case f.noStates:
		c.States = filter.Only()
	case len(f.states) > 0:
		c.States = filter.ParseSelection(f.states)
	}
	if len(f.categories) > 0 {
		c.Categories = filter.ParseSelection(f.categories)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
