package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("server.port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Store.Backend != "memory" || !cfg.Store.Seed {
		t.Errorf("store = %+v, want memory backend with seed", cfg.Store)
	}
	if cfg.Session.TTLMinutes != 24*60 {
		t.Errorf("session.ttl_minutes = %d, want 1440", cfg.Session.TTLMinutes)
	}
	if cfg.Notifications.SubjectPrefix != "helpdesk" {
		t.Errorf("notifications.subject_prefix = %q", cfg.Notifications.SubjectPrefix)
	}
}

func TestReadConfigFileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 8080
  environment: production
store:
  backend: sql
database:
  driver: sqlite3
  path: /tmp/helpdesk.db
`)
	t.Setenv("HELPDESK_SERVER_PORT", "9090")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("env override not applied: port = %d", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Database.Path != "/tmp/helpdesk.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
}

func TestReadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HELPDESK_LOGGING_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HELPDESK_LOGGING_LEVEL") })

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 5000},
			Store:   StoreConfig{Backend: "memory"},
			Session: SessionConfig{Backend: "memory", TTLMinutes: 60},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "mongo" }, true},
		{"sql needs known driver", func(c *Config) { c.Store.Backend = "sql"; c.Database.Driver = "oracle" }, true},
		{"sql with sqlite", func(c *Config) { c.Store.Backend = "sql"; c.Database.Driver = "sqlite3" }, false},
		{"bad session backend", func(c *Config) { c.Session.Backend = "cookie" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTLMinutes = 0 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"notifications without url", func(c *Config) { c.Notifications.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
