// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/storage"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	History HistoryConfig
	Server  ServerConfig
	Parse   ParseConfig
	Log     LogConfig
	// Location defines calendar days for history filters.
	Location *time.Location
}

// HistoryConfig selects where upload history is persisted.
type HistoryConfig struct {
	Backend string
	Dir     string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string
	AuthToken   string
	MaxUploadMB int
	// SessionTTL is how long an idle browser session is kept.
	SessionTTL  time.Duration
	// MaxSessions caps the number of live browser sessions.
	MaxSessions int
}

// ParseConfig configures spreadsheet parsing.
type ParseConfig struct {
	RejectDuplicateHeaders bool
}

// LogConfig configures the leveled logger and its output file.
type LogConfig struct {
	Level string
	File  string
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	loc, err := loadLocation(getEnvOrDefault("SHEETCHART_TIMEZONE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		History: HistoryConfig{
			Backend: strings.ToLower(getEnvOrDefault("SHEETCHART_HISTORY_BACKEND", storage.BackendFile)),
			Dir:     getEnvOrDefault("SHEETCHART_HISTORY_DIR", defaultHistoryDir()),
		},
		Server: ServerConfig{
			Addr:        getEnvOrDefault("SHEETCHART_ADDR", ":8080"),
			AuthToken:   os.Getenv("SHEETCHART_AUTH_TOKEN"),
			MaxUploadMB: getEnvIntOrDefault("SHEETCHART_MAX_UPLOAD_MB", 20),
			SessionTTL:  getEnvDurationOrDefault("SHEETCHART_SESSION_TTL", 30*time.Minute),
			MaxSessions: getEnvIntOrDefault("SHEETCHART_MAX_SESSIONS", 1000),
		},
		Parse: ParseConfig{
			RejectDuplicateHeaders: getEnvBoolOrDefault("SHEETCHART_REJECT_DUPLICATE_HEADERS", false),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
			File:  os.Getenv("LOG_FILE"),
		},
		Location: loc,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that Load cannot default.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendPebble:
	default:
		return fmt.Errorf("%w: unknown history backend %q", ErrInvalid, c.History.Backend)
	}
	if c.History.Backend != storage.BackendMemory && c.History.Dir == "" {
		return fmt.Errorf("%w: history directory is required for the %s backend", ErrInvalid, c.History.Backend)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", ErrInvalid)
	}
	if c.Server.SessionTTL <= 0 || c.Server.MaxSessions <= 0 {
		return fmt.Errorf("%w: session TTL and session limit must be positive", ErrInvalid)
	}
	return nil
}

// ParseOptions converts the parse settings to library options.
func (c *Config) ParseOptions() sheetchart.Options {
	opts := sheetchart.DefaultOptions()
	opts.RejectDuplicateHeaders = c.Parse.RejectDuplicateHeaders
	return opts
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: SHEETCHART_TIMEZONE: %v", ErrInvalid, err)
	}
	return loc, nil
}

func defaultHistoryDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sheetchart")
	}
	return ".sheetchart"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
