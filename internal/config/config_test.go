package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.WebSocket.Port != 4480 {
		t.Errorf("default port = %d", cfg.WebSocket.Port)
	}
	if cfg.Map.Width < 1 || cfg.Map.Height < 1 {
		t.Errorf("default map = %dx%d", cfg.Map.Width, cfg.Map.Height)
	}
	if cfg.Solver.StepsPerCycle != 1000 {
		t.Errorf("default steps per cycle = %d", cfg.Solver.StepsPerCycle)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if cfg.WebSocket.Port != DefaultConfig().WebSocket.Port {
		t.Errorf("missing file did not fall back to defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	data := []byte(`
websocket:
  port: 9001
  tick_millis: 100
map:
  width: 20
  height: 15
solver:
  seed: 1234
  steps_per_cycle: 500
  max_restarts: 3
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.WebSocket.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.WebSocket.Port)
	}
	if cfg.Map.Width != 20 || cfg.Map.Height != 15 {
		t.Errorf("map = %dx%d", cfg.Map.Width, cfg.Map.Height)
	}
	if cfg.Solver.Seed != 1234 {
		t.Errorf("seed = %d", cfg.Solver.Seed)
	}
	if cfg.Solver.StepsPerCycle != 500 {
		t.Errorf("steps per cycle = %d", cfg.Solver.StepsPerCycle)
	}
}

func TestLoadConfigInvalidFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("map:\n  width: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("invalid config should return an error")
	}
	if cfg.Map.Width != DefaultConfig().Map.Width {
		t.Errorf("invalid config did not fall back to defaults")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebSocket.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port out of range should fail")
	}

	cfg = DefaultConfig()
	cfg.Solver.StepsPerCycle = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero steps per cycle should fail")
	}

	cfg = DefaultConfig()
	cfg.WebSocket.TickMillis = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero tick should fail")
	}
}
