package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/casedash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/casedash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set casedash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "legacy_path: %s\n", cfg.LegacyPath)
		fmt.Fprintf(w, "summary_path: %s\n", cfg.SummaryPath)
		fmt.Fprintf(w, "boundary_source: %s\n", cfg.BoundarySource)
		fmt.Fprintf(w, "boundary_name_field: %s\n", cfg.BoundaryNameField)
		fmt.Fprintf(w, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(w, "listen_addr: %s\n", cfg.ListenAddr)
		if cfg.FormAction != "" {
			fmt.Fprintf(w, "form_action: %s\n", cfg.FormAction)
		}
		fmt.Fprintf(w, "correlation_fallback: %s\n", cfg.CorrelationFallback)
		fmt.Fprintf(w, "top_n: %d\n", cfg.TopN)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		switch key {
		case "legacy_path":
			c.LegacyPath = val
		case "summary_path":
			c.SummaryPath = val
		case "boundary_source":
			c.BoundarySource = val
		case "boundary_name_field":
			if val == "" {
				return fmt.Errorf("boundary_name_field cannot be empty")
			}
			c.BoundaryNameField = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "listen_addr":
			c.ListenAddr = val
		case "form_action":
			c.FormAction = val
		case "correlation_fallback":
			p, err := analysis.ParseFallbackPolicy(val)
			if err != nil {
				return err
			}
			c.CorrelationFallback = string(p)
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			c.TopN = i
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
