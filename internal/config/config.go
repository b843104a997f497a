// Package config loads chorewheel settings. Later sources override earlier
// ones: built-in defaults, an optional YAML file, an optional .env file, then
// CHOREWHEEL_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	yaml "go.yaml.in/yaml/v3"
)

const envPrefix = "CHOREWHEEL_"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
	Digest   DigestConfig   `yaml:"digest"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RatePerSec     float64       `yaml:"rate_per_sec"`
	RateBurst      int           `yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DigestConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RequestTimeout: 10 * time.Second,
			RatePerSec:     10,
			RateBurst:      20,
		},
		Database: DatabaseConfig{Path: "chorewheel.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Timezone: "Local",
		Digest:   DigestConfig{Enabled: false, Schedule: "0 7 * * *"},
	}
}

// Load builds a Config. yamlPath and envPath may be empty; a missing .env is
// ignored, a missing YAML file named explicitly is an error.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", yamlPath, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", yamlPath, err)
		}
	}

	if envPath != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

type envSetter func(value string) error

// applyEnv overrides cfg from CHOREWHEEL_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	setters := map[string]envSetter{
		"HTTP_ADDR":       func(v string) error { cfg.HTTP.Addr = v; return nil },
		"REQUEST_TIMEOUT": durationSetter(&cfg.HTTP.RequestTimeout),
		"RATE_PER_SEC":    floatSetter(&cfg.HTTP.RatePerSec),
		"RATE_BURST":      intSetter(&cfg.HTTP.RateBurst),
		"DB_PATH":         func(v string) error { cfg.Database.Path = v; return nil },
		"LOG_LEVEL":       func(v string) error { cfg.Log.Level = v; return nil },
		"LOG_FORMAT":      func(v string) error { cfg.Log.Format = v; return nil },
		"TIMEZONE":        func(v string) error { cfg.Timezone = v; return nil },
		"DIGEST_ENABLED":  boolSetter(&cfg.Digest.Enabled),
		"DIGEST_SCHEDULE": func(v string) error { cfg.Digest.Schedule = v; return nil },
	}
	for suffix, set := range setters {
		v, ok := lookup(envPrefix + suffix)
		if !ok {
			continue
		}
		if err := set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, suffix, err)
		}
	}
	return nil
}

func durationSetter(dst *time.Duration) envSetter {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func floatSetter(dst *float64) envSetter {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func intSetter(dst *int) envSetter {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func boolSetter(dst *bool) envSetter {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.RequestTimeout < 0 {
		errs = append(errs, errors.New("http.request_timeout must be >= 0"))
	}
	if c.HTTP.RatePerSec <= 0 {
		errs = append(errs, errors.New("http.rate_per_sec must be > 0"))
	}
	if c.HTTP.RateBurst < 1 {
		errs = append(errs, errors.New("http.rate_burst must be >= 1"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Digest.Enabled {
		if _, err := cron.ParseStandard(c.Digest.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("digest.schedule %q: %w", c.Digest.Schedule, err))
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. "" and "Local" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
