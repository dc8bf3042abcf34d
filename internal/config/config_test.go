package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 2323 {
		t.Fatalf("Port = %d, want default 2323", cfg.Port)
	}
	if cfg.MaxConnections != 64 {
		t.Fatalf("MaxConnections = %d, want default 64", cfg.MaxConnections)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultServerConfig()
	cfg.BBSName = "Test Board"
	cfg.Port = 2424

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BBSName != "Test Board" || got.Port != 2424 {
		t.Fatalf("round trip = %+v, want BBSName=Test Board Port=2424", got)
	}
	if _, err := filepath.Abs(dir); err != nil {
		t.Fatalf("sanity check on tempdir path: %v", err)
	}
}

func TestLoadTimezoneFallsBackToLocal(t *testing.T) {
	loc := LoadTimezone("not/a/real/zone")
	if loc == nil {
		t.Fatal("expected a non-nil location even for an invalid zone")
	}
}
