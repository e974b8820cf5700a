// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Reading ReadingConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	// File enables size-rotated file output in addition to stdout when set.
	File string
}

// StorageConfig holds on-disk storage configuration.
type StorageConfig struct {
	// DataPath holds the SQLite database, the search index and the auth key.
	DataPath string
}

// DatabasePath returns the SQLite database file location.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "booklens.db")
}

// SearchIndexPath returns the bleve index directory.
func (s StorageConfig) SearchIndexPath() string {
	return filepath.Join(s.DataPath, "search.bleve")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	FrontendURL  string        // Extra CORS origin (optional)
}

// AllowedOrigins returns the CORS origins the API accepts.
func (s ServerConfig) AllowedOrigins() []string {
	origins := []string{"http://localhost:5173"}
	if s.FrontendURL != "" {
		origins = append(origins, s.FrontendURL)
	}
	return origins
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration // e.g., 24h
	// RatePerMinute caps login/register attempts per client IP.
	RatePerMinute int
}

// ReadingConfig holds reading-session aggregation configuration.
type ReadingConfig struct {
	// Timezone is the IANA name used for calendar day and month windows.
	Timezone string
}

// Location resolves the configured timezone.
func (r ReadingConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || r.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

// LoadConfig loads configuration from the process flags and environment.
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// setting is one configuration key: a flag, its environment variable and
// the value used when neither is set.
type setting struct {
	flag  string
	env   string
	def   string
	usage string
	value *string
}

// resolve applies flag > environment > default.
func (s setting) resolve() string {
	return getConfigValue(*s.value, s.env, s.def)
}

// Load reads configuration with precedence flag > environment > .env file > default.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	settings := map[string]*setting{}
	for _, s := range []setting{
		{flag: "env", env: "ENV", def: "development", usage: "Environment (development, staging, production)"},
		{flag: "log-level", env: "LOG_LEVEL", def: "info", usage: "Log level (debug, info, warn, error)"},
		{flag: "log-file", env: "LOG_FILE", usage: "Rotated log file path (default: stdout only)"},
		{flag: "data-path", env: "DATA_PATH", usage: "Base path for the database and search index (default: ~/BookLens/data)"},
		{flag: "port", env: "SERVER_PORT", def: "8080", usage: "Server port"},
		{flag: "read-timeout", env: "SERVER_READ_TIMEOUT", def: "15s", usage: "HTTP read timeout"},
		{flag: "write-timeout", env: "SERVER_WRITE_TIMEOUT", def: "15s", usage: "HTTP write timeout"},
		{flag: "idle-timeout", env: "SERVER_IDLE_TIMEOUT", def: "60s", usage: "HTTP idle timeout"},
		{flag: "frontend-url", env: "FRONTEND_URL", usage: "Frontend origin allowed by CORS"},
		{flag: "access-token-duration", env: "ACCESS_TOKEN_DURATION", def: "24h", usage: "Access token lifetime"},
		{flag: "auth-rate", env: "AUTH_RATE_PER_MINUTE", def: "20", usage: "Login/signup attempts per minute per IP"},
		{flag: "reading-timezone", env: "READING_TIMEZONE", def: "Local", usage: "Timezone for calendar aggregation"},
	} {
		s.value = fs.String(s.flag, "", s.usage)
		settings[s.flag] = &s
	}
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine.
	_ = loadEnvFile(*envFile)

	get := func(name string) string { return settings[name].resolve() }

	cfg := &Config{
		App:     AppConfig{Environment: get("env")},
		Logger:  LoggerConfig{Level: get("log-level"), File: get("log-file")},
		Storage: StorageConfig{DataPath: get("data-path")},
		Server:  ServerConfig{Port: get("port"), FrontendURL: get("frontend-url")},
		Reading: ReadingConfig{Timezone: get("reading-timezone")},
	}

	rate, err := strconv.Atoi(get("auth-rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid auth rate %q: %w", get("auth-rate"), err)
	}
	cfg.Auth.RatePerMinute = rate

	for name, dst := range map[string]*time.Duration{
		"access-token-duration": &cfg.Auth.AccessTokenDuration,
		"read-timeout":          &cfg.Server.ReadTimeout,
		"write-timeout":         &cfg.Server.WriteTimeout,
		"idle-timeout":          &cfg.Server.IdleTimeout,
	} {
		d, err := time.ParseDuration(get(name))
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, get(name), err)
		}
		*dst = d
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var (
	validEnvironments = []string{"development", "staging", "production"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if !slices.Contains(validEnvironments, c.App.Environment) {
		return fmt.Errorf("invalid environment %q (must be one of %s)", c.App.Environment, strings.Join(validEnvironments, ", "))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level %q (must be one of %s)", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}
	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if _, err := c.Reading.Location(); err != nil {
		return fmt.Errorf("invalid reading timezone %q: %w", c.Reading.Timezone, err)
	}
	if c.Auth.RatePerMinute <= 0 {
		return fmt.Errorf("invalid auth rate %d (must be positive)", c.Auth.RatePerMinute)
	}
	return nil
}

// expandPaths resolves ~ and relative paths. The data path defaults to ~/BookLens/data.
func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("get home directory: %w", err)
	}

	if c.Storage.DataPath == "" {
		c.Storage.DataPath = filepath.Join(home, "BookLens", "data")
	}
	if c.Storage.DataPath, err = expandPath(c.Storage.DataPath, home); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}

	if c.Logger.File != "" {
		if c.Logger.File, err = expandPath(c.Logger.File, home); err != nil {
			return fmt.Errorf("invalid log file: %w", err)
		}
	}
	return nil
}

func expandPath(path, home string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// loadEnvFile sets variables from a KEY=value file without overriding the
// real environment. Blank lines and # comments are skipped.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", i+1, line)
		}
		key = strings.TrimSpace(key)
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, strings.Trim(strings.TrimSpace(value), `"'`)); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
