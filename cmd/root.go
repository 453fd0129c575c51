package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/casedash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/casedash/internal/config"
	"github.com/KaramelBytes/casedash/internal/dataset"
	logpkg "github.com/KaramelBytes/casedash/internal/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	// Global flags
	cfgFile string
	debug   bool
	quiet   bool
	noColor bool
	// Data file flags (override config if set)
	flagLegacyPath  string
	flagSummaryPath string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "casedash",
	Short: "casedash: state-wise sexual assault and rape case analytics for India",
	Long: `casedash loads the 1999-2013 category table and the 2015-2020 summary table,
filters them by year, state and offender category, and renders KPIs, trend
series, rankings, correlations and a state choropleth join, either as a
report on the command line or as a dashboard over HTTP.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.casedash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().StringVar(&flagLegacyPath, "legacy", "", "1999-2013 category CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSummaryPath, "summary", "", "2015-2020 summary CSV (overrides config)")
}

func loadConfig() {
	logpkg.Setup(debug, quiet)
	if noColor {
		color.NoColor = true
	}
	if err := cfgpkg.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config show/set can still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("legacy") {
		cfg.LegacyPath = flagLegacyPath
	}
	if f.Changed("summary") {
		cfg.SummaryPath = flagSummaryPath
	}
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// loadTables reads both CSVs named by the configuration.
func loadTables(ctx context.Context) (dataset.LegacyTable, dataset.SummaryTable, error) {
	c, err := currentConfig()
	if err != nil {
		return dataset.LegacyTable{}, dataset.SummaryTable{}, err
	}
	slog.Debug("loading tables", "legacy", c.LegacyPath, "summary", c.SummaryPath)
	legacy, summary, err := dataset.LoadAll(ctx, c.LegacyPath, c.SummaryPath)
	if err != nil {
		return legacy, summary, err
	}
	slog.Debug("tables loaded", "legacy_rows", legacy.Len(), "summary_rows", summary.Len(), "columns", legacy.Columns)
	return legacy, summary, nil
}

// dashboardOptions derives analysis options from the configuration.
func dashboardOptions() (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	c, err := currentConfig()
	if err != nil {
		return opt, err
	}
	policy, err := analysis.ParseFallbackPolicy(c.CorrelationFallback)
	if err != nil {
		return opt, err
	}
	opt.CorrelationFallback = policy
	if c.TopN >= 0 {
		opt.TopN = c.TopN
	}
	return opt, nil
}
