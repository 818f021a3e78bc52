// Package config loads storefront settings from a .storefront file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/storefront/pkg/logger"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

const (
	// EnvPrefix prefixes every environment override, e.g. STOREFRONT_REMOTE_TOKEN.
	EnvPrefix = "STOREFRONT"
	// PathEnv names a directory searched first for the config file.
	PathEnv = "STOREFRONT_CONFIG_PATH"

	DefaultPath    = "~/.storefront"
	DefaultLogFile = "~/.storefront.log"
	DefaultTimeout = 30 * time.Second
)

var envReplacer = strings.NewReplacer(".", "_")

// Remote locates the host's REST endpoints.
type Remote struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Format carries the display locale settings.
type Format struct {
	CurrencyLocale string
	CurrencyCode   string
	DateLocale     string
	TimeZone       string
}

// Log carries logger settings.
type Log struct {
	File   string
	Level  string
	Format string
}

// Config is the resolved storefront configuration.
type Config struct {
	Path   string
	Remote Remote
	Format Format
	Log    Log

	// File is the config file that was read, if any.
	File string
}

// BasePath is the mirror directory.
func (c *Config) BasePath() string {
	return c.Path
}

// Load reads .storefront (yaml) from $STOREFRONT_CONFIG_PATH, the working
// directory or $HOME, then applies STOREFRONT_* environment overrides. A
// missing file is not an error.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("path", DefaultPath)
	v.SetDefault("remote.timeout", DefaultTimeout)
	v.SetDefault("format.currency_locale", viewmodel.DefaultCurrencyLocale)
	v.SetDefault("format.currency_code", viewmodel.DefaultCurrencyCode)
	v.SetDefault("format.date_locale", viewmodel.DefaultDateLocale)
	v.SetDefault("format.time_zone", "Local")
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetConfigName(".storefront") // .yaml is implicit
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if override := os.Getenv(PathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	logFile := v.GetString("log.file")
	if logFile != "" && logFile != "stdout" && logFile != "stderr" && logFile != "discard" {
		if logFile, err = homedir.Expand(logFile); err != nil {
			return nil, fmt.Errorf("config: expand log file: %w", err)
		}
	}

	return &Config{
		Path: filepath.Clean(path),
		Remote: Remote{
			URL:     v.GetString("remote.url"),
			Token:   v.GetString("remote.token"),
			Timeout: v.GetDuration("remote.timeout"),
		},
		Format: Format{
			CurrencyLocale: v.GetString("format.currency_locale"),
			CurrencyCode:   v.GetString("format.currency_code"),
			DateLocale:     v.GetString("format.date_locale"),
			TimeZone:       v.GetString("format.time_zone"),
		},
		Log: Log{
			File:   logFile,
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		File: v.ConfigFileUsed(),
	}, nil
}

// Formatter builds the display formatter for the configured locale.
func (c *Config) Formatter() (*viewmodel.Formatter, error) {
	loc := time.Local
	if c.Format.TimeZone != "" && c.Format.TimeZone != "Local" {
		l, err := time.LoadLocation(c.Format.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("config: time zone %q: %w", c.Format.TimeZone, err)
		}
		loc = l
	}
	return viewmodel.NewFormatter(viewmodel.FormatConfig{
		CurrencyLocale: c.Format.CurrencyLocale,
		CurrencyCode:   c.Format.CurrencyCode,
		DateLocale:     c.Format.DateLocale,
		Location:       loc,
	})
}

// Logger returns the logger configuration.
func (c *Config) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Output = c.Log.File
	cfg.Level = c.Log.Level
	cfg.Format = c.Log.Format
	return cfg
}
