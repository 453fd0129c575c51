package cmd

import (
	"fmt"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/filter"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var kpiFilters filterFlags

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Print the six KPI tiles for a filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		legacy, summary, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		c, err := kpiFilters.criteria(cmd.Flags(), legacy, summary)
		if err != nil {
			return err
		}
		res, err := filter.Apply(legacy, summary, c)
		if err != nil {
			return err
		}
		k := analysis.ComputeKPIs(res, c)

		w := cmd.OutOrStdout()
		heading := color.New(color.FgHiYellow, color.Bold)
		label := color.New(color.FgCyan)
		value := color.New(color.Bold)

		heading.Fprintln(w, "Key Performance Indicators")
		for _, t := range k.Tiles() {
			label.Fprintf(w, "  %-40s", t.Label)
			value.Fprintln(w, t.Value)
		}
		if res.Empty() {
			fmt.Fprintln(w, color.RedString(analysis.MsgNoCases))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kpisCmd)
	kpiFilters.bind(kpisCmd.Flags())
}
