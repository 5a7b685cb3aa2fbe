// Package config loads and exposes parceltrack configuration. Defaults are
// compiled in; a YAML file at ~/.parceltrack/config.yaml overlays them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/parceltrack/internal/logging"
)

// Compiled-in defaults for the Czech Post B2C ParcelHistory endpoint.
const (
	DefaultEndpoint           = "https://b2c.cpost.cz/services/ParcelHistory/getDataAsJson"
	DefaultLanguage           = "en"
	DefaultTimeoutSeconds     = 10
	DefaultCheckpointInterval = 10
)

// Config is the root configuration structure.
type Config struct {
	Lookup  LookupConfig  `yaml:"lookup"`
	Sync    SyncConfig    `yaml:"sync"`
	Logging LoggingConfig `yaml:"logging"`
}

// LookupConfig configures the parcel status lookup client.
type LookupConfig struct {
	// Endpoint is the base URL of the parcel history service.
	Endpoint string `yaml:"endpoint"`

	// Language is sent as the "language" query parameter.
	Language string `yaml:"language"`

	// TimeoutSeconds bounds every lookup round trip.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the lookup timeout as a duration.
func (lc LookupConfig) Timeout() time.Duration {
	if lc.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(lc.TimeoutSeconds) * time.Second
}

// SyncConfig configures the batch synchronization run.
type SyncConfig struct {
	// CheckpointInterval is the number of attempted rows between
	// intermediate saves of the output table.
	CheckpointInterval int `yaml:"checkpoint_interval"`

	// TrackingAliases is the ordered list of accepted header names for the
	// tracking-number column. New locales are added here, not in code.
	TrackingAliases []string `yaml:"tracking_aliases"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ToLoggingConfig bridges the YAML logging section to the logging package.
// A configured file switches output to that file; otherwise stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// DefaultTrackingAliases returns the accepted tracking-number column headers,
// including the Czech locale variants.
func DefaultTrackingAliases() []string {
	return []string{
		"Tracking Number",
		"TrackingNumber",
		"Tracking_Number",
		"tracking_number",
		"tracking number",
		"Číslo zásilky",
		"Cislo zasilky",
	}
}

// New returns the configuration with defaults applied and, when present,
// the user's config file merged on top. A missing or unreadable config file
// is not an error.
func New() *Config {
	cfg := defaults()

	path, err := ConfigFilePath()
	if err != nil {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if err := loadFile(cfg, path); err != nil {
		// Broken config files fall back to defaults rather than aborting.
		return defaults()
	}
	return cfg
}

// LoadFrom returns the configuration with defaults applied and the named
// file merged on top. Unlike New, a bad file is an error.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Lookup: LookupConfig{
			Endpoint:       DefaultEndpoint,
			Language:       DefaultLanguage,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Sync: SyncConfig{
			CheckpointInterval: DefaultCheckpointInterval,
			TrackingAliases:    DefaultTrackingAliases(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %q: %w", path, err)
	}
	cfg.normalize()
	return nil
}

// normalize re-applies defaults to fields the overlay blanked out.
func (c *Config) normalize() {
	if c.Lookup.Endpoint == "" {
		c.Lookup.Endpoint = DefaultEndpoint
	}
	if c.Lookup.Language == "" {
		c.Lookup.Language = DefaultLanguage
	}
	if c.Lookup.TimeoutSeconds <= 0 {
		c.Lookup.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Sync.CheckpointInterval <= 0 {
		c.Sync.CheckpointInterval = DefaultCheckpointInterval
	}
	if len(c.Sync.TrackingAliases) == 0 {
		c.Sync.TrackingAliases = DefaultTrackingAliases()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = logging.FormatConsole
	}
}

// ConfigFilePath returns the path of the user's config file.
func ConfigFilePath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetConfigDir returns the parceltrack configuration directory. The
// PARCELTRACK_HOME environment variable overrides the default under the
// user's home directory.
func GetConfigDir() (string, error) {
	if home := os.Getenv("PARCELTRACK_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".parceltrack"), nil
}

// EnsureConfigDir ensures the configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// EnsureLogDir ensures the parent directory of the configured log file
// exists. It does nothing when no log file is configured.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// WriteDefaultConfig writes a commented default config file to path,
// refusing to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const defaultConfigYAML = `# parceltrack configuration
lookup:
  # Base URL of the Czech Post B2C ParcelHistory service.
  endpoint: ` + DefaultEndpoint + `
  # Language for provider status texts.
  language: en
  # Per-lookup timeout in seconds.
  timeout_seconds: 10

sync:
  # Rows between intermediate saves of the output spreadsheet.
  checkpoint_interval: 10
  # Accepted headers for the tracking-number column.
  tracking_aliases:
    - Tracking Number
    - TrackingNumber
    - Tracking_Number
    - tracking_number
    - tracking number
    - Číslo zásilky
    - Cislo zasilky

logging:
  level: info
  format: console
  # Uncomment to log to a file instead of stderr.
  # file: /tmp/parceltrack.log
`
