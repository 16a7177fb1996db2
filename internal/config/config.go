package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/sink"
	"codeberg.org/mutker/telemetryd/internal/source"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configEnvVar      = "TELEMETRYD_CONFIG"
	defaultAppName    = "telemetryd"
	defaultBufferSize = 128
	defaultPoolSize   = 4
	defaultRateMs     = 500
)

// SourceConfig describes one telemetry source to sample.
type SourceConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Type         string `mapstructure:"type"`
	Path         string `mapstructure:"path"`
	SampleRateMs int    `mapstructure:"sample_rate_ms"`
}

// Config is the application configuration, loaded from a JSON file with flag
// overrides. The environment only selects which file is read.
type Config struct {
	AppName    string                  `mapstructure:"app_name"`
	BufferSize int                     `mapstructure:"buffer_size"`
	UsePool    bool                    `mapstructure:"use_pool"`
	PoolSize   int                     `mapstructure:"pool_size"`
	Debug      bool                    `mapstructure:"debug"`
	Verbose    bool                    `mapstructure:"verbose"`
	Sinks      []sink.Descriptor       `mapstructure:"sinks"`
	Sources    map[string]SourceConfig `mapstructure:"sources"`
}

// Load reads configuration from flags, the environment and the config file.
// The file is located through --config, then TELEMETRYD_CONFIG, then the
// default search paths; a missing file falls back to defaults.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("telemetryd", pflag.ContinueOnError)
	configPath := flags.String("config", "", "Path to JSON configuration file")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("app-name", defaultAppName, "Application name stamped on records")
	flags.Int("buffer-size", defaultBufferSize, "Record queue capacity")
	flags.Bool("use-pool", false, "Dispatch sink writes through a worker pool")
	flags.Int("pool-size", defaultPoolSize, "Worker pool size")

	if err := flags.Parse(args); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("app_name", defaultAppName)
	v.SetDefault("buffer_size", defaultBufferSize)
	v.SetDefault("use_pool", false)
	v.SetDefault("pool_size", defaultPoolSize)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	for key, flagName := range map[string]string{
		"app_name":    "app-name",
		"buffer_size": "buffer-size",
		"use_pool":    "use-pool",
		"pool_size":   "pool-size",
		"debug":       "debug",
		"verbose":     "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			return nil, errors.Wrap(errors.ErrBindFlags, err)
		}
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(configEnvVar)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("telemetryd")
		v.SetConfigType("json")
		v.AddConfigPath("/etc/telemetryd")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills in the pieces a sparse config file leaves out: a
// console sink and the two procfs sources. Source names are normalized to
// upper case because viper lowercases map keys.
func applyDefaults(cfg *Config) {
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []sink.Descriptor{{Type: sink.TypeConsole}}
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = map[string]SourceConfig{
			"CPU": {Enabled: true, Type: source.TypeCPU},
			"RAM": {Enabled: true, Type: source.TypeRAM},
		}
	}

	normalized := make(map[string]SourceConfig, len(cfg.Sources))
	for name, src := range cfg.Sources {
		if src.SampleRateMs <= 0 {
			src.SampleRateMs = defaultRateMs
		}
		normalized[strings.ToUpper(name)] = src
	}
	cfg.Sources = normalized
}

// Validate checks the loaded configuration for internal consistency. Type
// names are matched case-insensitively, the same way the factories do.
func (c *Config) Validate() error {
	if c.AppName == "" {
		return errors.WithMessage(errors.ErrInvalidConfig, "app_name must not be empty")
	}
	if c.BufferSize < 1 {
		return errors.WithMessage(errors.ErrInvalidConfig, "buffer_size must be at least 1")
	}
	if c.UsePool && c.PoolSize < 1 {
		return errors.WithMessage(errors.ErrInvalidConfig, "pool_size must be at least 1 when use_pool is set")
	}

	for _, desc := range c.Sinks {
		switch strings.ToLower(desc.Type) {
		case sink.TypeConsole:
		case sink.TypeFile, sink.TypeSQLite:
			if desc.Path == "" {
				return errors.WithData(errors.ErrInvalidConfig, struct {
					Sink   string
					Reason string
				}{
					Sink:   desc.Type,
					Reason: "path required",
				})
			}
		default:
			return errors.WithData(errors.ErrUnknownSink, desc.Type)
		}
	}

	for name, src := range c.Sources {
		switch strings.ToLower(src.Type) {
		case source.TypeCPU, source.TypeRAM, source.TypeGPU:
		case source.TypeFile:
			if src.Path == "" {
				return errors.WithData(errors.ErrInvalidConfig, struct {
					Source string
					Reason string
				}{
					Source: name,
					Reason: "file source requires a path",
				})
			}
		default:
			return errors.WithData(errors.ErrUnknownSource, src.Type)
		}
	}

	return nil
}
