package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultDays != 7 {
		t.Errorf("DefaultDays = %d, want 7", cfg.General.DefaultDays)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("Theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
	if Exists() {
		t.Error("Exists() = true with no file on disk")
	}
}

func TestLoadFrom_ParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[general]
claude_dirs = ["/data/claude"]
default_days = 14

[appearance]
theme = "tokyo-night"

[pricing.overrides."claude-opus-4-6"]
input_per_mtok = 4.5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if len(cfg.General.ClaudeDirs) != 1 || cfg.General.ClaudeDirs[0] != "/data/claude" {
		t.Errorf("ClaudeDirs = %v", cfg.General.ClaudeDirs)
	}
	if cfg.General.DefaultDays != 14 {
		t.Errorf("DefaultDays = %d, want 14", cfg.General.DefaultDays)
	}
	if cfg.General.SessionLimit != 10 {
		t.Errorf("SessionLimit = %d, want default 10", cfg.General.SessionLimit)
	}

	p, ok := cfg.PricingTable().LookupPricing("claude-opus-4-6-20260101")
	if !ok || p.InputPerMTok != 4.5 {
		t.Errorf("override not applied: %+v ok=%v", p, ok)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.ClaudeDirs = []string{"/a", "/b"}
	cfg.Appearance.Theme = "terminal"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config file not written")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Appearance.Theme != "terminal" || len(got.General.ClaudeDirs) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
