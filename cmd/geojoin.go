package cmd

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/filter"
	"github.com/KaramelBytes/casedash/internal/geo"
	"github.com/KaramelBytes/casedash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	geoFilters   filterFlags
	geoSource    string
	geoNameField string
	geoOutput    string
)

var geojoinCmd = &cobra.Command{
	Use:   "geojoin",
	Short: "Annotate state boundaries with filtered case totals (GeoJSON)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		legacy, summary, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		crit, err := geoFilters.criteria(cmd.Flags(), legacy, summary)
		if err != nil {
			return err
		}
		res, err := filter.Apply(legacy, summary, crit)
		if err != nil {
			return err
		}

		loc := c.BoundarySource
		if geoSource != "" {
			loc = geoSource
		}
		field := c.BoundaryNameField
		if geoNameField != "" {
			field = geoNameField
		}
		fc, err := geo.NewSource(loc, c.HTTPTimeout()).Fetch(cmd.Context())
		if err != nil {
			return err
		}
		totals := analysis.StateTotalMap(res)
		out, rows := geo.Join(fc, totals, field)
		if missing := geo.Unmatched(rows, totals); len(missing) > 0 {
			slog.Warn("states without a boundary feature", "states", missing)
		}
		b, err := out.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode geojson: %w", err)
		}

		if geoOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := utils.SafeWriteFile(geoOutput, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		matched := 0
		for _, r := range rows {
			if r.Matched {
				matched++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d features (%d with case data) to %s\n", len(rows), matched, geoOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geojoinCmd)
	geoFilters.bind(geojoinCmd.Flags())
	geojoinCmd.Flags().StringVar(&geoSource, "source", "", "boundary GeoJSON URL or file (overrides config)")
	geojoinCmd.Flags().StringVar(&geoNameField, "name-field", "", "feature property holding the state name (overrides config)")
	geojoinCmd.Flags().StringVarP(&geoOutput, "output", "o", "", "write GeoJSON to this path instead of stdout")
}
