// Package config provides configuration management for VitaShop.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	API          APIConfig          `toml:"api"`
	Provisioning ProvisioningConfig `toml:"provisioning"`
	Display      DisplayConfig      `toml:"display"`
	Logging      LoggingConfig      `toml:"logging"`
	Database     DatabaseConfig     `toml:"database"`
}

// APIConfig points the client at the VitaShop backend.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ProvisioningConfig bounds how long a freshly registered user waits for the
// backend to create their profile.
type ProvisioningConfig struct {
	MaxAttempts      int `toml:"max_attempts"`
	InitialBackoffMS int `toml:"initial_backoff_ms"`
	MaxBackoffMS     int `toml:"max_backoff_ms"`
}

// InitialBackoff returns the first retry delay.
func (p *ProvisioningConfig) InitialBackoff() time.Duration {
	return time.Duration(p.InitialBackoffMS) * time.Millisecond
}

// MaxBackoff returns the retry delay ceiling.
func (p *ProvisioningConfig) MaxBackoff() time.Duration {
	return time.Duration(p.MaxBackoffMS) * time.Millisecond
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls the local SQLite store that holds session tokens.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("api: %w", err))
	}

	if err := c.Provisioning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("provisioning: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the API configuration is valid.
func (a *APIConfig) Validate() error {
	var errs []error

	if a.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if u, err := url.Parse(a.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid base_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("base_url must use http or https: %s", a.BaseURL))
	}

	if a.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("timeout_seconds must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the provisioning configuration is valid.
func (p *ProvisioningConfig) Validate() error {
	var errs []error

	if p.MaxAttempts < 1 {
		errs = append(errs, errors.New("max_attempts must be at least 1"))
	}

	if p.InitialBackoffMS < 0 {
		errs = append(errs, errors.New("initial_backoff_ms must be non-negative"))
	}

	if p.MaxBackoffMS < p.InitialBackoffMS {
		errs = append(errs, errors.New("max_backoff_ms must not be below initial_backoff_ms"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	var errs []error

	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		errs = append(errs, fmt.Errorf("invalid color_scheme: %s", d.ColorScheme))
	}

	if d.DateFormat != "" {
		probe := time.Date(2001, time.March, 4, 0, 0, 0, 0, time.UTC)
		if probe.Format(d.DateFormat) == d.DateFormat {
			errs = append(errs, fmt.Errorf("date_format has no layout elements: %s", d.DateFormat))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			TimeoutSeconds: 15,
		},
		Provisioning: ProvisioningConfig{
			MaxAttempts:      4,
			InitialBackoffMS: 500,
			MaxBackoffMS:     4000,
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeGreenPhosphor,
			DateFormat:  "2006-01-02",
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/vitashop.log",
		},
		Database: DatabaseConfig{
			Path: "vitashop.db",
		},
	}
}
