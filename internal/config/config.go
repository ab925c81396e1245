// Package config loads nursery settings from an optional file and NURSERY_*
// environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"nurserycore/internal/blob"
	"nurserycore/internal/core"
	"nurserycore/pkg/domain"
)

// EnvPrefix namespaces every environment override, e.g. NURSERY_STORAGE_DRIVER.
const EnvPrefix = "NURSERY"

// Metrics backends.
const (
	MetricsNone       = "none"
	MetricsExpvar     = "expvar"
	MetricsPrometheus = "prometheus"
)

type (
	// Config is the complete runtime configuration.
	Config struct {
		Storage    StorageConfig    `mapstructure:"storage"`
		Blob       BlobConfig       `mapstructure:"blob"`
		Log        LogConfig        `mapstructure:"log"`
		Metrics    MetricsConfig    `mapstructure:"metrics"`
		Simulation SimulationConfig `mapstructure:"simulation"`
	}

	StorageConfig struct {
		Driver      string `mapstructure:"driver"`
		SQLitePath  string `mapstructure:"sqlite_path"`
		PostgresDSN string `mapstructure:"postgres_dsn"`
	}

	BlobConfig struct {
		Driver string   `mapstructure:"driver"`
		FSRoot string   `mapstructure:"fs_root"`
		S3     S3Config `mapstructure:"s3"`
	}

	S3Config struct {
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		PathStyle bool   `mapstructure:"path_style"`
	}

	LogConfig struct {
		Level string `mapstructure:"level"`
	}

	MetricsConfig struct {
		Backend string `mapstructure:"backend"`
	}

	SimulationConfig struct {
		Season string `mapstructure:"season"`
	}

	// LoadOptions controls where Load looks for settings.
	LoadOptions struct {
		// File is an optional YAML, TOML or JSON file. Environment variables
		// take precedence over it.
		File string
	}
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Storage:    StorageConfig{Driver: string(core.StorageMemory), SQLitePath: "nursery.db"},
		Blob:       BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: "./savedata", S3: S3Config{Region: "us-east-1"}},
		Log:        LogConfig{Level: "info"},
		Metrics:    MetricsConfig{Backend: MetricsNone},
		Simulation: SimulationConfig{Season: string(domain.SeasonSpring)},
	}
}

// Load resolves the configuration: defaults, then opts.File, then the
// environment.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.sqlite_path", defaults.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", defaults.Storage.PostgresDSN)
	v.SetDefault("blob.driver", defaults.Blob.Driver)
	v.SetDefault("blob.fs_root", defaults.Blob.FSRoot)
	v.SetDefault("blob.s3.bucket", defaults.Blob.S3.Bucket)
	v.SetDefault("blob.s3.region", defaults.Blob.S3.Region)
	v.SetDefault("blob.s3.endpoint", defaults.Blob.S3.Endpoint)
	v.SetDefault("blob.s3.path_style", defaults.Blob.S3.PathStyle)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("metrics.backend", defaults.Metrics.Backend)
	v.SetDefault("simulation.season", defaults.Simulation.Season)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Blob.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Metrics.Backend = strings.ToLower(strings.TrimSpace(c.Metrics.Backend))
	c.Simulation.Season = strings.ToLower(strings.TrimSpace(c.Simulation.Season))
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(key, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %s", key, value, strings.Join(allowed, ", ")))
		}
	}
	check("storage.driver", c.Storage.Driver, string(core.StorageMemory), string(core.StorageSQLite), string(core.StoragePostgres))
	check("blob.driver", c.Blob.Driver, string(blob.DriverFilesystem), string(blob.DriverMemory), string(blob.DriverS3))
	check("log.level", c.Log.Level, "debug", "info", "warn", "error")
	check("metrics.backend", c.Metrics.Backend, MetricsNone, MetricsExpvar, MetricsPrometheus)
	check("simulation.season", c.Simulation.Season,
		string(domain.SeasonSpring), string(domain.SeasonSummer), string(domain.SeasonFall), string(domain.SeasonWinter))
	if c.Blob.Driver == string(blob.DriverS3) && c.Blob.S3.Bucket == "" {
		errs = append(errs, errors.New("blob.s3.bucket is required when blob.driver is s3"))
	}
	return errors.Join(errs...)
}

// SnapshotStorage converts the storage section for core.OpenSnapshotStore.
func (c Config) SnapshotStorage() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobStorage converts the blob section for blob.Open.
func (c Config) BlobStorage() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    c.Blob.S3.Bucket,
			Region:    c.Blob.S3.Region,
			Endpoint:  c.Blob.S3.Endpoint,
			PathStyle: c.Blob.S3.PathStyle,
		},
	}
}

// Season returns the configured simulation season.
func (c Config) Season() domain.Season {
	return domain.Season(c.Simulation.Season)
}
