package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitializeConsoleOnly(t *testing.T) {
	err := Initialize(Config{Level: "DEBUG", ConsoleEnabled: true, ConsoleFormat: "text"})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	// Logging must not panic once initialised.
	Debug("debug message", "k", "v")
	Info("info message")
	Warn("warn message")
	Error("error message")
	Infof("formatted %d", 42)
}

func TestInitializeWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	err := Initialize(Config{
		Level:          "INFO",
		ConsoleEnabled: false,
		FileEnabled:    true,
		FilePath:       path,
		FileFormat:     "json",
		FileMaxSizeMB:  1,
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Info("written to file")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Level != "INFO" || !cfg.ConsoleEnabled {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	data := []byte(`
logging:
  level: DEBUG
  console_enabled: true
  console_format: json
  file_enabled: false
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Level != "DEBUG" || cfg.ConsoleFormat != "json" {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Level != "ERROR" {
		t.Errorf("env override ignored: %+v", cfg)
	}
}
