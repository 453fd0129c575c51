package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Keys accepted by `casedash config set`.
var Keys = []string{
	"legacy_path",
	"summary_path",
	"boundary_source",
	"boundary_name_field",
	"http_timeout_sec",
	"listen_addr",
	"form_action",
	"correlation_fallback",
	"top_n",
}

// Global configuration structure.
type Global struct {
	LegacyPath  string `mapstructure:"legacy_path" yaml:"legacy_path"`
	SummaryPath string `mapstructure:"summary_path" yaml:"summary_path"`

	// Boundary dataset: URL or local GeoJSON path
	BoundarySource    string `mapstructure:"boundary_source" yaml:"boundary_source"`
	BoundaryNameField string `mapstructure:"boundary_name_field" yaml:"boundary_name_field"`
	HTTPTimeoutSec    int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	FormAction string `mapstructure:"form_action" yaml:"form_action"`

	CorrelationFallback string `mapstructure:"correlation_fallback" yaml:"correlation_fallback"`
	TopN                int    `mapstructure:"top_n" yaml:"top_n"`
}

// HTTPTimeout returns the boundary fetch timeout; zero means none.
func (c *Global) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// DefaultDir returns ~/.casedash.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".casedash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.casedash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads ./.env into the process environment if present.
// Variables already set are not overridden.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CASEDASH")
	v.AutomaticEnv()

	v.SetDefault("legacy_path", "Cleaned State wise Sexual Assault (Detailed) 1999 - 2013.csv")
	v.SetDefault("summary_path", "Cleaned Summary of cases (rape) 2015-2020.csv")
	v.SetDefault("boundary_source", "https://gist.githubusercontent.com/jbrobst/56c13bbbf9d97d187fea01ca62ea5112/raw/e388c4cae20aa53cb5090210a42ebb9b765c0a36/india_states.geojson")
	v.SetDefault("boundary_name_field", "ST_NM")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("form_action", "https://formsubmit.co/feedback@example.org")
	v.SetDefault("correlation_fallback", "full-table")
	v.SetDefault("top_n", 10)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
