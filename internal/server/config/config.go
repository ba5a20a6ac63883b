package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// EnvPrefix prefixes every environment variable read by ParseEnv.
const EnvPrefix = "MCATTR_"

// Config holds the server configuration.
type Config struct {
	Port           int    `json:"port" yaml:"port" env:"PORT"`
	DataDir        string `json:"data_dir" yaml:"data_dir" env:"DATA_DIR"`
	Storage        string `json:"storage" yaml:"storage" env:"STORAGE"` // "file" or "sqlite"
	TickRate       int    `json:"tick_rate" yaml:"tick_rate" env:"TICK_RATE"`
	SyncInterval   int    `json:"sync_interval" yaml:"sync_interval" env:"SYNC_INTERVAL"` // ticks between sync passes
	SaveInterval   int    `json:"save_interval" yaml:"save_interval" env:"SAVE_INTERVAL"` // ticks between saves (0 = only on shutdown)
	AttributesFile string `json:"attributes_file" yaml:"attributes_file" env:"ATTRIBUTES_FILE"`
	GameDataFile   string `json:"game_data_file" yaml:"game_data_file" env:"GAME_DATA_FILE"`
	LogLevel       string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	Ocelots        int    `json:"ocelots" yaml:"ocelots" env:"OCELOTS"` // spawned when storage is empty
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:         25575,
		DataDir:      "data",
		Storage:      StorageFile,
		TickRate:     20,
		SyncInterval: 1,
		SaveInterval: 6000,
		LogLevel:     "info",
		Ocelots:      1,
	}
}

// Validate checks that the configuration can be used to start a server.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %d", c.SyncInterval)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("save interval must not be negative, got %d", c.SaveInterval)
	}
	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return l, nil
}

// LoadFile reads a YAML config file into cfg. If the file does not exist,
// cfg is unchanged.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ParseEnv overlays MCATTR_* environment variables onto cfg.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["port"] {
		cfg.Port = fromFile.Port
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["storage"] {
		cfg.Storage = fromFile.Storage
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["sync-interval"] {
		cfg.SyncInterval = fromFile.SyncInterval
	}
	if !explicitFlags["save-interval"] {
		cfg.SaveInterval = fromFile.SaveInterval
	}
	if !explicitFlags["attributes"] {
		cfg.AttributesFile = fromFile.AttributesFile
	}
	if !explicitFlags["game-data"] {
		cfg.GameDataFile = fromFile.GameDataFile
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["ocelots"] {
		cfg.Ocelots = fromFile.Ocelots
	}
}

type attributeFile struct {
	Attributes []attribute.Definition `yaml:"attributes"`
}

// LoadAttributeOverrides reads extra attribute definitions from a YAML file:
//
//	attributes:
//	  - id: 11
//	    name: minecraft:luck
//	    min: -1024
//	    max: 1024
//	    default: 0
func LoadAttributeOverrides(path string) ([]attribute.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attribute overrides: %w", err)
	}
	var f attributeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse attribute overrides: %w", err)
	}
	for i, d := range f.Attributes {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("parse attribute overrides: entry %d has no name", i)
		}
	}
	return f.Attributes, nil
}
