package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[store]
backend = "redis"
redis_addr = "localhost:6379"

[cache]
ttl = "90m"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "localhost:6379" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Dir != "." {
		t.Errorf("Store.Dir = %q, unset keys should keep defaults", cfg.Store.Dir)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 15*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if opts := cfg.StoreOptions(); opts.Backend != "redis" || opts.RedisAddr != "localhost:6379" {
		t.Errorf("StoreOptions() = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"bad toml", "[log\nlevel=", errs.ErrCodeInvalidFormat},
		{"bad duration", "[cache]\nttl = \"soon\"", errs.ErrCodeInvalidFormat},
		{"bad level", "[log]\nlevel = \"loud\"", errs.ErrCodeInvalidInput},
		{"bad backend", "[store]\nbackend = \"tape\"", errs.ErrCodeInvalidInput},
		{"redis without addr", "[store]\nbackend = \"redis\"", errs.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errs.ErrCodeInvalidInput},
		{"negative ttl", "[cache]\nttl = \"-1h\"", errs.ErrCodeInvalidInput},
		{"empty addr", "[server]\naddr = \"\"", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if path != "/tmp/xdg/graphbridge/config.toml" {
		t.Errorf("DefaultPath() = %q", path)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	path, _ = DefaultPath()
	if !strings.HasSuffix(path, filepath.Join(".config", "graphbridge", "config.toml")) {
		t.Errorf("DefaultPath() = %q", path)
	}
}
