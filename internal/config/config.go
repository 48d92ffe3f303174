// Package config loads chorebot settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/chorebot/internal/recurrence"
)

const (
	EnvPath             = "CHOREBOT_CONFIG"
	DefaultPath         = "chorebot.yaml"
	envPrefix           = "CHOREBOT_"
	defaultTickInterval = time.Minute
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Addr      string `yaml:"addr"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Timezone  string `yaml:"timezone"`

	// Morning and Night bound the working hours in which chores are handed
	// out. The nightly reminder goes out at Night.
	Morning recurrence.Clock `yaml:"morning"`
	Night   recurrence.Clock `yaml:"night"`

	TickInterval   time.Duration `yaml:"tick_interval"`
	UpcomingWindow time.Duration `yaml:"upcoming_window"`

	// APITokenHash is a bcrypt hash of the bearer token for /api. Empty
	// leaves the API open.
	APITokenHash string `yaml:"api_token_hash"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "chorebot.db",
		LogLevel:       "info",
		LogFormat:      "text",
		Timezone:       "Local",
		Morning:        recurrence.Clock{Hour: 9},
		Night:          recurrence.Clock{Hour: 21},
		TickInterval:   defaultTickInterval,
		UpcomingWindow: 72 * time.Hour,
	}
}

// Path returns the config file location from CHOREBOT_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"ADDR":           &c.Addr,
		"DB_PATH":        &c.DBPath,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"TIMEZONE":       &c.Timezone,
		"API_TOKEN_HASH": &c.APITokenHash,
	}
	for key, dst := range strs {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	clocks := map[string]*recurrence.Clock{
		"MORNING": &c.Morning,
		"NIGHT":   &c.Night,
	}
	for key, dst := range clocks {
		v := getenv(envPrefix + key)
		if v == "" {
			continue
		}
		clock, err := recurrence.ParseClock(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, envPrefix, key, err)
		}
		*dst = clock
	}

	durations := map[string]*time.Duration{
		"TICK_INTERVAL":   &c.TickInterval,
		"UPCOMING_WINDOW": &c.UpcomingWindow,
	}
	for key, dst := range durations {
		v := getenv(envPrefix + key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, envPrefix, key, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks fields that the YAML decoder cannot.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not text or json", c.LogFormat))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %v", c.Timezone, err))
	}
	if c.Morning == c.Night {
		errs = append(errs, fmt.Errorf("morning and night are both %s", c.Morning))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval %s is not positive", c.TickInterval))
	}
	if c.UpcomingWindow <= 0 {
		errs = append(errs, fmt.Errorf("upcoming_window %s is not positive", c.UpcomingWindow))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Location resolves Timezone. Call after Validate.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
