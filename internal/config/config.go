package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory, the storage namespace and the session lock.
const AppName = "focuspulse"

// Config is the complete runtime configuration.
type Config struct {
	// DataDir holds persisted state. Empty means <user config dir>/focuspulse/data.
	DataDir        string        `mapstructure:"data_dir"`
	TickIntervalMs int           `mapstructure:"tick_interval_ms"`
	Log            LoggingConfig `mapstructure:"log"`
	Idle           IdleConfig    `mapstructure:"idle"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// IdleConfig controls auto-pause on user inactivity during focus.
type IdleConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	PauseAfterSeconds    int  `mapstructure:"pause_after_seconds"`
	CheckIntervalSeconds int  `mapstructure:"check_interval_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TickIntervalMs: 1000,
		Log: LoggingConfig{
			Level: "info",
		},
		Idle: IdleConfig{
			Enabled:              true,
			PauseAfterSeconds:    300,
			CheckIntervalSeconds: 5,
		},
	}
}

// TickInterval returns the scheduler tick interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// PauseAfter returns the inactivity threshold.
func (c *IdleConfig) PauseAfter() time.Duration {
	return time.Duration(c.PauseAfterSeconds) * time.Second
}

// CheckInterval returns how often idle time is polled.
func (c *IdleConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// ResolveDataDir returns DataDir or the default location.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return expandHome(c.DataDir), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("tick_interval_ms", defaults.TickIntervalMs)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.development", defaults.Log.Development)
	v.SetDefault("idle.enabled", defaults.Idle.Enabled)
	v.SetDefault("idle.pause_after_seconds", defaults.Idle.PauseAfterSeconds)
	v.SetDefault("idle.check_interval_seconds", defaults.Idle.CheckIntervalSeconds)
}

// NewViper returns a viper instance with defaults, FOCUSPULSE_ environment
// overrides and the config file (explicit path, or config.yaml in ConfigDir).
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err == nil && dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", fmt.Errorf("resolve config dir: %w", errors.Join(err, homeErr))
	}
	return filepath.Join(home, ".config", AppName), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
