// Package config loads the gst settings from an optional YAML file and the
// GESTOR_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvFile names the environment variable holding the configuration file path.
const EnvFile = "GESTOR_CONFIG"

type Config struct {
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Quote     QuoteConfig     `mapstructure:"quote"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Log       LogConfig       `mapstructure:"log"`
}

type LedgerConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Currency string `mapstructure:"currency"`
}

type QuoteConfig struct {
	// Provider is yahoo or eodhd.
	Provider string `mapstructure:"provider"`
	// APIKey authenticates eodhd requests.
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides the provider endpoint.
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Rate        int           `mapstructure:"rate"`
	Concurrency int           `mapstructure:"concurrency"`
	// Cache keeps provider responses on disk for the day, so quotes go stale.
	Cache    bool   `mapstructure:"cache"`
	CacheDir string `mapstructure:"cache_dir"`
}

type ValuationConfig struct {
	InvestedBasis string `mapstructure:"invested_basis"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// Load reads the configuration. The file at path is optional: when path is
// empty the GESTOR_CONFIG variable is used, and when both are empty only the
// defaults and the environment apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvFile)
	}

	v := viper.New()
	v.SetEnvPrefix("GESTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("ledger.driver", "file")
	v.SetDefault("ledger.path", "operations.csv")
	v.SetDefault("ledger.currency", "USD")
	v.SetDefault("quote.provider", "yahoo")
	v.SetDefault("quote.api_key", "")
	v.SetDefault("quote.base_url", "")
	v.SetDefault("quote.timeout", "10s")
	v.SetDefault("quote.rate", 5)
	v.SetDefault("quote.concurrency", 4)
	v.SetDefault("quote.cache", false)
	v.SetDefault("quote.cache_dir", "")
	v.SetDefault("valuation.invested_basis", "net")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("could not read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
