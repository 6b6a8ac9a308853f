// Package config handles jandi configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blogjandi/jandi/internal/models"
)

// SourceKind selects where activity data comes from.
type SourceKind string

const (
	// SourceHTTP reads from the jandi backend REST API.
	SourceHTTP SourceKind = "http"
	// SourceSQLite reads from a local post archive.
	SourceSQLite SourceKind = "sqlite"
)

// Config is the root configuration structure for jandi.
type Config struct {
	// API settings for the backend.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Source selects and configures the data source.
	Source SourceConfig `yaml:"source" mapstructure:"source"`

	// Calendar settings.
	Calendar CalendarConfig `yaml:"calendar" mapstructure:"calendar"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Token is the bearer access token.
	Token string `yaml:"token" mapstructure:"token"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SourceConfig contains data source settings.
type SourceConfig struct {
	// Kind is http or sqlite.
	Kind SourceKind `yaml:"kind" mapstructure:"kind"`

	// DBPath is the archive database path (sqlite only).
	DBPath string `yaml:"db_path" mapstructure:"db_path"`

	// UserID selects the archive owner (sqlite only).
	UserID string `yaml:"user_id" mapstructure:"user_id"`
}

// CalendarConfig contains grid settings.
type CalendarConfig struct {
	// Locale is a BCP-47 tag for labels (ko, en).
	Locale string `yaml:"locale" mapstructure:"locale"`

	// Months is how many months back the grid reaches.
	Months int `yaml:"months" mapstructure:"months"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI discards logs when unset.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// StateFile keeps the last view, cursor and category between runs.
	// Empty disables persistence.
	StateFile string `yaml:"state_file" mapstructure:"state_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Kind:   SourceHTTP,
			DBPath: filepath.Join(homeDir, ".local", "share", "jandi", "posts.db"),
		},
		Calendar: CalendarConfig{
			Locale: "ko",
			Months: 12,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		TUI: TUIConfig{
			Theme:     "default",
			StateFile: filepath.Join(homeDir, ".local", "state", "jandi", "tui-state.json"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validation := &models.ValidationErrors{}

	switch c.Source.Kind {
	case SourceHTTP:
		if strings.TrimSpace(c.API.BaseURL) == "" {
			validation.AddMessage("api.base_url", "is required for the http source")
		}
		if c.API.Timeout <= 0 {
			validation.AddMessage("api.timeout", "must be positive")
		}
	case SourceSQLite:
		if strings.TrimSpace(c.Source.DBPath) == "" {
			validation.AddMessage("source.db_path", "is required for the sqlite source")
		}
		if _, err := uuid.Parse(c.Source.UserID); err != nil {
			validation.Add("source.user_id", fmt.Errorf("must be a UUID: %w", err))
		}
	default:
		validation.AddMessage("source.kind", "must be one of http, sqlite")
	}

	if c.Calendar.Months < 1 || c.Calendar.Months > 24 {
		validation.AddMessage("calendar.months", "must be between 1 and 24")
	}

	switch c.TUI.Theme {
	case "default", "high-contrast":
	default:
		validation.AddMessage("tui.theme", "must be one of default, high-contrast")
	}

	return validation.Err()
}

// UserUUID returns the parsed archive owner.
func (c *Config) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.Source.UserID)
}
