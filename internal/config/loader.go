package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultConfigFileName is the standard configuration file name.
	DefaultConfigFileName = "vitashop.toml"

	// XDGConfigSubdir is the subdirectory under XDG_CONFIG_HOME and
	// XDG_DATA_HOME for vitashop.
	XDGConfigSubdir = "vitashop"

	// EnvAPIBaseURL overrides [api] base_url when set.
	EnvAPIBaseURL = "VITASHOP_API_URL"
)

const fileHeader = `# VitaShop Configuration File
#
# This file was auto-generated. Edit as needed.
# [api] points at the backend; [provisioning] bounds the wait for a new
# profile; [database] holds the local session token store.

`

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading config from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the first configuration file found, in order: the explicit
// path, the XDG config path (~/.config/vitashop/vitashop.toml), then
// ./vitashop.toml. An explicit path is never skipped. With createDefault
// and no file, the defaults are written to the XDG path (or the working
// directory) and returned.
//
// Returns the loaded configuration and the path it was loaded from.
func Load(explicitPath string, createDefault bool) (*Config, string, error) {
	if explicitPath != "" {
		return loadAt(explicitPath)
	}

	xdgPath := xdgConfigPath()
	cwdPath := filepath.Join(".", DefaultConfigFileName)
	for _, p := range []string{xdgPath, cwdPath} {
		if p != "" && fileExists(p) {
			return loadAt(p)
		}
	}

	if !createDefault {
		return nil, "", fmt.Errorf("no configuration file found; searched: %s", strings.Join([]string{xdgPath, cwdPath}, ", "))
	}

	cfg := Default()
	applyEnv(cfg)

	target := cwdPath
	if xdgPath != "" {
		target = xdgPath
	}
	if err := Save(Default(), target); err != nil {
		slog.Warn("could not write default configuration", "path", target, "error", err)
		return cfg, "", nil
	}
	return cfg, target, nil
}

func loadAt(path string) (*Config, string, error) {
	cfg, err := loadFromFile(path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Err: err}
	}
	return cfg, path, nil
}

// loadFromFile decodes path over the defaults, applies environment
// overrides and validates the result. Unknown keys are logged.
func loadFromFile(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("parsing TOML: %s", perr.ErrorWithPosition())
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown configuration key", "path", path, "key", key.String())
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.API.BaseURL = v
	}
}

// Save writes a configuration to a TOML file, creating its directory.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(fileHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding TOML: %w", err)
	}
	return nil
}

// xdgDir returns $envVar/vitashop, falling back to ~/<fallback>/vitashop.
// It returns "" when neither is available.
func xdgDir(envVar string, fallback ...string) string {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, XDGConfigSubdir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), XDGConfigSubdir)...)
}

func xdgConfigPath() string {
	dir := xdgDir("XDG_CONFIG_HOME", ".config")
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, DefaultConfigFileName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDataDir returns the token database path, creating its directory.
// Relative paths live under the XDG data directory when it can be
// created, and in the working directory otherwise.
func EnsureDataDir(cfg *Config) (string, error) {
	dbPath := cfg.Database.Path

	if filepath.IsAbs(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
		return dbPath, nil
	}

	dataDir := xdgDir("XDG_DATA_HOME", ".local", "share")
	if dataDir == "" || os.MkdirAll(dataDir, 0750) != nil {
		return dbPath, nil
	}
	return filepath.Join(dataDir, dbPath), nil
}

// EnsureLogDir returns the log file path, creating its directory. An empty
// path disables file logging.
func EnsureLogDir(cfg *Config) (string, error) {
	logPath := cfg.Logging.File
	if logPath == "" {
		return "", nil
	}

	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("creating log directory: %w", err)
		}
	}
	return logPath, nil
}
