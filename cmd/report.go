package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	reportFilters filterFlags
	reportFormat  string
	reportOutput  string
	reportTopN    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the dashboard as a Markdown, JSON or YAML report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		legacy, summary, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		c, err := reportFilters.criteria(cmd.Flags(), legacy, summary)
		if err != nil {
			return err
		}
		opt, err := dashboardOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("top") {
			opt.TopN = reportTopN
		}
		d, err := analysis.Build(legacy, summary, c, opt)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(reportFormat) {
		case "", "md", "markdown":
			out = []byte(d.Markdown())
		default:
			out, err = utils.Encode(d, reportFormat)
			if err != nil {
				return err
			}
		}

		if reportOutput != "" {
			if err := utils.SafeWriteFile(reportOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			slog.Debug("report written", "path", reportOutput, "bytes", len(out))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", reportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportFilters.bind(reportCmd.Flags())
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "markdown", "output format: markdown | json | yaml")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to this path instead of stdout")
	reportCmd.Flags().IntVar(&reportTopN, "top", 10, "states per era in the ranking (0 = all)")
}
