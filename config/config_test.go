package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.PPQ = 480
	cfg.LastProject = "demo"
	cfg.Debug = true
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
}

func TestLoadNormalizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "go-automate")
	os.MkdirAll(dir, 0755)
	data := `{"ppq": 0, "midiChannel": 17, "defaultController": 74, "laneHeight": 1}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PPQ != 96 || cfg.MIDIChannel != 1 || cfg.LaneHeight != 8 {
		t.Errorf("not normalized: %+v", cfg)
	}
	if cfg.Controller() != 74 || cfg.Channel() != 1 {
		t.Errorf("Controller() = %d, Channel() = %d", cfg.Controller(), cfg.Channel())
	}
	if cfg.TicksPerColumn != 12 {
		t.Errorf("missing field lost its default: %d", cfg.TicksPerColumn)
	}
}

func TestLoadBadJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "go-automate")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644)
	if _, err := Load(); err == nil {
		t.Error("bad json accepted")
	}
}
