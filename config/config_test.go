package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reply-presets/preset"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRESET_FILE", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Server.Listen)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.Path != "/data/presets.json" {
		t.Errorf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Presets.SettleDelay != time.Second {
		t.Errorf("expected 1s settle delay, got %v", cfg.Presets.SettleDelay)
	}
	if len(cfg.Fields()) != 8 {
		t.Errorf("expected 8 default fields, got %d", len(cfg.Fields()))
	}
}

func TestLoadTOML(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRESET_FILE", "")

	path := writeConfig(t, "presets.toml", `
[server]
listen = "127.0.0.1:9090"

[store]
backend = "bolt"
path = "/tmp/presets.db"

[presets]
settle_delay = "250ms"

[[presets.fields]]
id = "Yes"
placeholder = "Yes"

[[presets.fields]]
id = "No"
placeholder = "No"

[log]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:9090" {
		t.Errorf("listen: got %q", cfg.Server.Listen)
	}
	if cfg.Store.Backend != BackendBolt || cfg.Store.Path != "/tmp/presets.db" {
		t.Errorf("store: got %+v", cfg.Store)
	}
	if cfg.Store.Key != "watchPresetSettings" {
		t.Errorf("key default should survive, got %q", cfg.Store.Key)
	}
	if cfg.Presets.SettleDelay != 250*time.Millisecond {
		t.Errorf("settle_delay: got %v", cfg.Presets.SettleDelay)
	}
	if f := cfg.Fields(); len(f) != 2 || f[0].ID != "Yes" || f[1].Placeholder != "No" {
		t.Errorf("fields: got %+v", f)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRESET_FILE", "")

	path := writeConfig(t, "presets.yaml", `
store:
  backend: memory
  key: replies
presets:
  settle_delay: 2s
  fields:
    - id: OK
      placeholder: Okay
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendMemory || cfg.Store.Key != "replies" {
		t.Errorf("store: got %+v", cfg.Store)
	}
	if cfg.Presets.SettleDelay != 2*time.Second {
		t.Errorf("settle_delay: got %v", cfg.Presets.SettleDelay)
	}
	opts := cfg.StoreOptions()
	if opts.Key != "replies" || len(opts.Fields) != 1 || opts.Fields[0].Placeholder != "Okay" {
		t.Errorf("store options: got %+v", opts)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("PRESET_FILE", "/srv/presets.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":9999" {
		t.Errorf("expected :9999, got %q", cfg.Server.Listen)
	}
	if cfg.Store.Path != "/srv/presets.json" {
		t.Errorf("expected PRESET_FILE path, got %q", cfg.Store.Path)
	}
}

func TestDefaultPathFollowsBackend(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRESET_FILE", "")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bolt", "[store]\nbackend = \"bolt\"\n", "/data/presets.db"},
		{"file", "[store]\nbackend = \"file\"\n", "/data/presets.json"},
		{"unset", "[server]\nlisten = \":9000\"\n", "/data/presets.json"},
		{"memory", "[store]\nbackend = \"memory\"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "presets.toml", tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Store.Path != tt.want {
				t.Fatalf("path = %q, want %q", cfg.Store.Path, tt.want)
			}
		})
	}
}

func TestEnvPathOverridesBackendDefault(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRESET_FILE", "/srv/presets.db")

	cfg, err := Load(writeConfig(t, "presets.toml", "[store]\nbackend = \"bolt\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != "/srv/presets.db" {
		t.Fatalf("path = %q", cfg.Store.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	path := writeConfig(t, "presets.ini", "listen=1")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, "presets.toml", "[server\nlisten=")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad listen", func(c *Config) { c.Server.Listen = "8080" }, "server.listen"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"missing path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"empty key", func(c *Config) { c.Store.Key = "" }, "store.key"},
		{"zero delay", func(c *Config) { c.Presets.SettleDelay = 0 }, "settle_delay"},
		{"empty field id", func(c *Config) {
			c.Presets.Fields = []preset.Field{{ID: " ", Placeholder: "x"}}
		}, "id must not be empty"},
		{"duplicate field id", func(c *Config) {
			c.Presets.Fields = []preset.Field{{ID: "OK"}, {ID: "OK"}}
		}, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = BackendMemory
	cfg.Store.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory backend should not need a path: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/presets.json"); got != filepath.Join(home, "presets.json") {
		t.Errorf("got %q", got)
	}
	if got := ExpandHome("/abs/presets.json"); got != "/abs/presets.json" {
		t.Errorf("absolute path changed: %q", got)
	}
}
