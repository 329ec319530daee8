package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MinSupport != 0.2 || c.MinConfidence != 0.5 || c.MinLift != 1.0 {
		t.Fatalf("thresholds = %v/%v/%v", c.MinSupport, c.MinConfidence, c.MinLift)
	}
	if !c.UseEncoder || c.StrictBinary {
		t.Fatalf("encoding defaults: use_encoder=%v strict_binary=%v", c.UseEncoder, c.StrictBinary)
	}
	if c.OutputFormat != "md" || c.TopN != 10 || c.ItemSeparator != "," {
		t.Fatalf("output defaults: %+v", c)
	}
	if c.MaxRows != 0 {
		t.Fatalf("max_rows default = %d, want 0 (every row)", c.MaxRows)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.MinSupport = 0.05
	c.StrictBinary = true
	c.OutputFormat = "json"
	if err := Save(c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".basketloom", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.MinSupport != 0.05 || !got.StrictBinary || got.OutputFormat != "json" {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("min_support: 0.3\ntop_n: 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BASKETLOOM_MIN_SUPPORT", "0.1")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MinSupport != 0.1 {
		t.Fatalf("min_support = %v, want env value 0.1", c.MinSupport)
	}
	if c.TopN != 5 {
		t.Fatalf("top_n = %d, want file value 5", c.TopN)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("min_support: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
