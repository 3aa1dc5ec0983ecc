// Package config loads the preset server configuration from TOML or YAML,
// then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"reply-presets/preset"
)

// Backend names accepted in store.backend.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Presets PresetsConfig `toml:"presets" yaml:"presets"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

type ServerConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

type StoreConfig struct {
	// Backend is one of: file | bolt | memory.
	Backend string `toml:"backend" yaml:"backend"`
	// Path is the JSON document (file) or database (bolt). Unused for memory.
	Path string `toml:"path" yaml:"path"`
	// Key is the backend key holding the preset set.
	Key string `toml:"key" yaml:"key"`
}

type PresetsConfig struct {
	SettleDelay time.Duration `toml:"settle_delay" yaml:"settle_delay"`
	// Fields replaces the built-in list of quick replies when non-empty.
	Fields []preset.Field `toml:"fields" yaml:"fields"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":8080"},
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    DefaultPath(BackendFile),
			Key:     preset.DefaultKey,
		},
		Presets: PresetsConfig{SettleDelay: preset.DefaultSettleDelay},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config file at path, picking the decoder from its extension
// (.toml, .yaml, .yml). An empty path yields the defaults. PORT and
// PRESET_FILE from the environment override the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	// Filled in after decoding, once the backend is known.
	cfg.Store.Path = ""

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(cfg)
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultPath(cfg.Store.Backend)
	}
	cfg.Store.Path = ExpandHome(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultPath is the store path used when none is configured.
func DefaultPath(backend string) string {
	switch backend {
	case BackendFile:
		return "/data/presets.json"
	case BackendBolt:
		return "/data/presets.db"
	}
	return ""
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q: want .toml, .yaml or .yml", ext)
	}
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Listen = ":" + port
	}
	if file := os.Getenv("PRESET_FILE"); file != "" {
		cfg.Store.Path = file
	}
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("server.listen %q: %w", c.Server.Listen, err)
	}

	switch c.Store.Backend {
	case BackendFile, BackendBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend %q unknown: want file|bolt|memory", c.Store.Backend)
	}
	if c.Store.Key == "" {
		return errors.New("store.key must not be empty")
	}

	if c.Presets.SettleDelay <= 0 {
		return fmt.Errorf("presets.settle_delay must be positive, got %s", c.Presets.SettleDelay)
	}
	seen := make(map[string]bool, len(c.Presets.Fields))
	for i, f := range c.Presets.Fields {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("presets.fields[%d]: id must not be empty", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("presets.fields[%d]: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// Fields returns the configured field list, or the built-in one.
func (c *Config) Fields() []preset.Field {
	if len(c.Presets.Fields) > 0 {
		return c.Presets.Fields
	}
	return preset.DefaultFields
}

// StoreOptions builds preset.Options from the configuration.
func (c *Config) StoreOptions() preset.Options {
	return preset.Options{
		Key:         c.Store.Key,
		Fields:      c.Fields(),
		SettleDelay: c.Presets.SettleDelay,
	}
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
