// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Watchdog WatchdogConfig `yaml:"watchdog"`
	Units    []UnitConfig   `yaml:"units"`
}

// ---- WATCHDOG ----

type WatchdogConfig struct {
	// Disabled keeps heartbeats registered but never swept.
	Disabled bool `yaml:"disabled"`

	// Pause between sweeps. 0 => default.
	SleepIntervalMs int `yaml:"sleep_interval_ms"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID        string          `yaml:"id"`
	Source    SourceConfig    `yaml:"source"`
	Reads     []ReadConfig    `yaml:"reads"`
	Poll      PollConfig      `yaml:"poll"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"` // 0 => default
}

// ---- READ GEOMETRY ----

type ReadConfig struct {
	FC       uint8  `yaml:"fc"`
	Address  uint16 `yaml:"address"`
	Quantity uint16 `yaml:"quantity"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- HEARTBEAT ----

type HeartbeatConfig struct {
	// How long the unit's poll loop may go without a heartbeat
	// before the watchdog terminates the process. 0 => derived default.
	TimeoutMs int `yaml:"timeout_ms"`
}

// Load reads and decodes a YAML config file.
// Unknown fields are rejected. Load does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
