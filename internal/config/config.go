// Package config handles loading and validation of notion-editor configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Token store kinds.
const (
	StoreFile    = "file"
	StoreKeyring = "keyring"
)

// NotionConfig controls how the API is reached.
type NotionConfig struct {
	BaseURL string `yaml:"base_url"`
	Version string `yaml:"version"`

	// Timeout applies to each request. Zero leaves the HTTP transport default.
	Timeout time.Duration `yaml:"timeout"`
}

// Validate checks the Notion section.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Version, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// CredentialsConfig selects where the token is persisted.
type CredentialsConfig struct {
	Store string `yaml:"store"`

	// File is the token file for the "file" store. A leading ~ is expanded.
	File string `yaml:"file"`
}

// Validate checks the credentials section.
func (c *CredentialsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Store, validation.Required, validation.In(StoreFile, StoreKeyring)),
		validation.Field(&c.File, validation.When(c.Store == StoreFile, validation.Required)),
	)
}

// SyncConfig contains page update behavior settings.
type SyncConfig struct {
	// FailFastArchive stops a page update at the first block that cannot be
	// archived. By default such blocks are logged and skipped.
	FailFastArchive bool `yaml:"fail_fast_archive"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`

	// File receives logs while the full-screen editor owns the terminal.
	// Empty discards them.
	File string `yaml:"file"`
}

// Validate checks the logging section.
func (c *LoggingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Config is the top-level configuration structure.
type Config struct {
	Notion      NotionConfig      `yaml:"notion"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Sync        SyncConfig        `yaml:"sync"`
	Logging     LoggingConfig     `yaml:"logging"`

	// Path is the file the configuration was read from, or "" for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com/v1",
			Version: "2022-06-28",
		},
		Credentials: CredentialsConfig{
			Store: StoreFile,
			File:  "~/.notion_token",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/notion-editor/config.yaml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(dir, "notion-editor", "config.yaml"), nil
}

// Load reads configuration from a YAML file layered over Default.
// If a .env file exists in the current directory, it is loaded first so
// that NOTION_TOKEN can live there.
//
// An empty path means DefaultPath; a missing file at the default path is
// not an error, while a missing explicit path is.
func Load(path string) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.Credentials.File, err = expandHome(cfg.Credentials.File)
	if err != nil {
		return nil, err
	}
	cfg.Logging.File, err = expandHome(cfg.Logging.File)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Notion.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notion: %w", err))
	}
	if err := c.Credentials.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("credentials: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
