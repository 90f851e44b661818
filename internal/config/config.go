// Package config loads application configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig holds application-wide configuration settings.
type AppConfig struct {
	WebSocket WebSocketConfig `yaml:"websocket"`
	Paths     PathsConfig     `yaml:"paths"`
	Map       MapConfig       `yaml:"map"`
	Solver    SolverConfig    `yaml:"solver"`
}

// WebSocketConfig holds editor server settings.
type WebSocketConfig struct {
	// Port the editor server listens on.
	Port int `yaml:"port"`

	// AllowedOrigins is a list of origins allowed to connect. Empty list
	// enforces same-origin policy; "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// TickMillis is the simulation tick interval driving tile lifecycle
	// updates.
	TickMillis int `yaml:"tick_millis"`
}

// PathsConfig holds file paths for application data.
type PathsConfig struct {
	// Catalog is an optional YAML tile catalogue; empty uses the built-in
	// one.
	Catalog string `yaml:"catalog"`

	// Journal is the SQLite edit journal; empty disables journalling.
	Journal string `yaml:"journal"`

	// Logging is the logging config YAML.
	Logging string `yaml:"logging"`
}

// MapConfig holds tilemap dimensions.
type MapConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SolverConfig holds WFC tuning.
type SolverConfig struct {
	// Seed drives all random picks; 0 means derive one from the clock.
	Seed int64 `yaml:"seed"`

	// StepsPerCycle bounds solver work per reconciliation call.
	StepsPerCycle int `yaml:"steps_per_cycle"`

	// MaxRestarts bounds decorative pass restarts after failures.
	MaxRestarts int `yaml:"max_restarts"`

	// LotInventory caps how many lot instances a decorative pass may
	// place; 0 means unlimited.
	LotInventory int `yaml:"lot_inventory"`
}

// DefaultConfig returns an AppConfig with usable defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		WebSocket: WebSocketConfig{
			Port:           4480,
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
			TickMillis:     50,
		},
		Paths: PathsConfig{
			Catalog: "",
			Journal: "data/journal.db",
			Logging: "data/logging.yaml",
		},
		Map: MapConfig{
			Width:  16,
			Height: 12,
		},
		Solver: SolverConfig{
			Seed:          0,
			StepsPerCycle: 1000,
			MaxRestarts:   5,
			LotInventory:  6,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults.
func LoadConfig(path string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// Validate checks the configuration for values the application cannot run
// with.
func (c *AppConfig) Validate() error {
	if c.Map.Width < 1 || c.Map.Height < 1 {
		return fmt.Errorf("config: map dimensions %dx%d invalid", c.Map.Width, c.Map.Height)
	}
	if c.WebSocket.Port < 1 || c.WebSocket.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.WebSocket.Port)
	}
	if c.WebSocket.TickMillis < 1 {
		return fmt.Errorf("config: tick interval %dms invalid", c.WebSocket.TickMillis)
	}
	if c.Solver.StepsPerCycle < 1 {
		return fmt.Errorf("config: steps per cycle %d invalid", c.Solver.StepsPerCycle)
	}
	return nil
}
