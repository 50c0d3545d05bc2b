package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ICON"

type Config struct {
	URL           string         `mapstructure:"url"`
	Nid           string         `mapstructure:"nid"`
	DataDir       string         `mapstructure:"data-dir"`
	SecretsConfig string         `mapstructure:"secrets-config"`
	Password      string         `mapstructure:"password"`
	MetricsFile   string         `mapstructure:"metrics-file"`
	Journal       JournalConfig  `mapstructure:"journal"`
	Log           LogConfig      `mapstructure:"log"`
	Provider      ProviderConfig `mapstructure:"provider"`
}

type JournalConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Dir    string `mapstructure:"dir"`
	JSON   bool   `mapstructure:"json"`
	Rotate bool   `mapstructure:"rotate"`
}

type ProviderConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry-count"`
	RetryWait    time.Duration `mapstructure:"retry-wait"`
	RetryBackoff float64       `mapstructure:"retry-backoff"`
	RetryMaxWait time.Duration `mapstructure:"retry-max-wait"`
	RateLimit    float64       `mapstructure:"rate-limit"`
	RateBurst    int           `mapstructure:"rate-burst"`
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "configuration file (json, yaml or toml)")
	flags.String("url", "http://localhost:9080/api/v3", "ICON node JSON-RPC endpoint")
	flags.String("nid", "0x1", "network id")
	flags.String("data-dir", "icon-data", "directory for local secrets and the transaction journal")
	flags.String("secrets-config", "", "secrets manager configuration file, local secrets in data-dir are used if empty")
	flags.String("password", "", "keystore password")
	flags.String("metrics-file", "", "write provider metrics in text format to this file on exit")
	flags.String("journal.type", "bbolt", "transaction journal database (bbolt or leveldb)")
	flags.String("journal.path", "", "transaction journal path, defaults to <data-dir>/journal.db")
	flags.String("log.level", "info", "log level")
	flags.String("log.dir", "", "directory for component log files, stderr is used if empty")
	flags.Bool("log.json", false, "json log format")
	flags.Bool("log.rotate", false, "rotate log files")
	flags.Duration("provider.timeout", 30*time.Second, "request timeout")
	flags.Int("provider.retry-count", 0, "number of attempts for failed requests, zero disables retry")
	flags.Duration("provider.retry-wait", 2*time.Second, "wait time between attempts")
	flags.Float64("provider.retry-backoff", 1, "wait time multiplier applied after every failed attempt")
	flags.Duration("provider.retry-max-wait", 30*time.Second, "upper bound of the wait time between attempts")
	flags.Float64("provider.rate-limit", 0, "max requests per second, zero disables rate limiting")
	flags.Int("provider.rate-burst", 1, "rate limiter burst")
}

func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var config Config

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if config.Journal.Path == "" {
		config.Journal.Path = filepath.Join(config.DataDir, "journal.db")
	}

	return &config, config.validate()
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}

	if c.logLevel() == hclog.NoLevel {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

func (c *Config) logLevel() hclog.Level {
	return hclog.LevelFromString(c.Log.Level)
}
