package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	errs "github.com/jalsoochak/go-admin-console/internal/errors"
)

// Config holds the console's runtime settings. Values come from (in order of
// precedence) JALSOOCHAK_* environment variables, an optional config file at
// ~/.config/jalsoochak/config.yaml or ./config.yaml, and built-in defaults.
type Config struct {
	AuthBaseURL    string        `mapstructure:"auth_base_url"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	TokenCachePath string        `mapstructure:"token_cache_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("auth_base_url", "http://localhost:8080")
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("token_cache_path", "")
	v.SetDefault("request_timeout", 20*time.Second)
	v.SetDefault("log_level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "jalsoochak"))
	}

	v.SetEnvPrefix("JALSOOCHAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errs.Wrapf(err, "[config.Load] failed to read config file")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errs.Wrapf(err, "[config.Load] failed to unmarshal config")
	}
	return &c, nil
}
