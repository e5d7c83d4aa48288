package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reader.WPM != nil || cfg.Reader.Rates != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[reader]
wpm = 450
rates = [300, 450, 600]
countdown-ms = 500
immersive = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reader.WPM == nil || *cfg.Reader.WPM != 450 {
		t.Fatalf("unexpected wpm: %v", cfg.Reader.WPM)
	}
	if len(cfg.Reader.Rates) != 3 || cfg.Reader.Rates[2] != 600 {
		t.Fatalf("unexpected rates: %v", cfg.Reader.Rates)
	}
	if cfg.Reader.CountdownMs == nil || *cfg.Reader.CountdownMs != 500 {
		t.Fatalf("unexpected countdown: %v", cfg.Reader.CountdownMs)
	}
	if cfg.Reader.Immersive == nil || !*cfg.Reader.Immersive {
		t.Fatalf("expected immersive")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[reader]\nspeed = 300\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "reader.speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "tuirsvp", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "tuirsvp", "tuirsvp.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/tmp/state", "tuirsvp", "tuirsvp.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	wpm := 250
	level := "warn"
	fileCfg := FileConfig{
		Reader: ReaderConfig{WPM: &wpm, Rates: []int{100, 200}},
		Log:    LogConfig{Level: &level},
	}
	t.Setenv("TUIRSVP_WPM", "420")
	t.Setenv("TUIRSVP_RATES", "300,420,600")
	t.Setenv("TUIRSVP_IMMERSIVE", "true")

	cfg, err := ApplyEnv(fileCfg)
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Reader.WPM == nil || *cfg.Reader.WPM != 420 {
		t.Fatalf("unexpected wpm: %v", cfg.Reader.WPM)
	}
	if len(cfg.Reader.Rates) != 3 || cfg.Reader.Rates[2] != 600 {
		t.Fatalf("unexpected rates: %v", cfg.Reader.Rates)
	}
	if cfg.Reader.Immersive == nil || !*cfg.Reader.Immersive {
		t.Fatalf("expected immersive from env")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "warn" {
		t.Fatalf("expected file log level to survive, got %v", cfg.Log.Level)
	}
	if cfg.Reader.CountdownMs != nil {
		t.Fatalf("expected unset countdown to stay nil")
	}
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	t.Setenv("TUIRSVP_WPM", "fast")
	if _, err := ApplyEnv(FileConfig{}); err == nil {
		t.Fatalf("expected parse error")
	}
}
