package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mindmap/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Database.Path != "./mindmap.db" {
		t.Errorf("Database.Path = %s, want ./mindmap.db", cfg.Database.Path)
	}
	if cfg.Editor.HistoryDepth != 100 {
		t.Errorf("Editor.HistoryDepth = %d, want 100", cfg.Editor.HistoryDepth)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("Server.WriteTimeout = %s, want 0", cfg.Server.WriteTimeout.Duration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestCommandOptions(t *testing.T) {
	opts := DefaultConfig().Editor.CommandOptions()

	if opts.ChildOffset != (domain.Position{X: 250, Y: 100}) {
		t.Errorf("ChildOffset = %+v, want {250 100}", opts.ChildOffset)
	}
	if opts.SiblingOffsetY != 100 {
		t.Errorf("SiblingOffsetY = %v, want 100", opts.SiblingOffsetY)
	}
	if opts.ParentOffsetX != 200 {
		t.Errorf("ParentOffsetX = %v, want 200", opts.ParentOffsetX)
	}
	if opts.PasteOffset != (domain.Position{X: 50, Y: 50}) {
		t.Errorf("PasteOffset = %+v, want {50 50}", opts.PasteOffset)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"json format", func(c *Config) { c.Log.Format = "json" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"negative depth", func(c *Config) { c.Editor.HistoryDepth = -1 }, true},
		{"threshold above one", func(c *Config) { c.Client.Breaker.FailureThreshold = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":8080"
	cfg.Server.SessionTTL = Duration(5 * time.Minute)
	cfg.Log.Level = "debug"
	cfg.Editor.PasteOffset = Offset{X: 20, Y: 30}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", loaded.Server.Addr)
	}
	if loaded.Server.SessionTTL.Duration() != 5*time.Minute {
		t.Errorf("Server.SessionTTL = %s, want 5m", loaded.Server.SessionTTL.Duration())
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", loaded.Log.Level)
	}
	if loaded.Editor.PasteOffset != (Offset{X: 20, Y: 30}) {
		t.Errorf("Editor.PasteOffset = %+v, want {20 30}", loaded.Editor.PasteOffset)
	}
}

func TestLoadPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := "log:\n  level: warn\ndatabase:\n  path: /var/lib/mindmap.db\n"
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != LogFormatConsole {
		t.Errorf("Log.Format = %s, want console", cfg.Log.Format)
	}
	if cfg.Database.Path != "/var/lib/mindmap.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.Client.Breaker.MinRequests != 5 {
		t.Errorf("Client.Breaker.MinRequests = %d, want 5", cfg.Client.Breaker.MinRequests)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("log:\n  level: shouting\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should reject an unknown log level")
	}

	if err := os.WriteFile(configPath, []byte("server: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should reject malformed YAML")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// An explicit path that does not exist falls through
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
