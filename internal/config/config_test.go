// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "watchdogd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
watchdog:
  sleep_interval_ms: 250
units:
  - id: plc-1
    source:
      endpoint: "127.0.0.1:5020"
      unit_id: 7
    reads:
      - { fc: 3, address: 100, quantity: 4 }
      - { fc: 1, address: 0, quantity: 16 }
    poll:
      interval_ms: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	require.Equal(t, 250, cfg.Watchdog.SleepIntervalMs)
	require.False(t, cfg.Watchdog.Disabled)
	require.Len(t, cfg.Units, 1)

	u := cfg.Units[0]
	require.Equal(t, "plc-1", u.ID)
	require.Equal(t, uint8(7), u.Source.UnitID)
	require.Equal(t, []ReadConfig{
		{FC: 3, Address: 100, Quantity: 4},
		{FC: 1, Address: 0, Quantity: 16},
	}, u.Reads)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, `
watchdog:
  sleep_interval: 250
units: []
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sleep_interval")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := cfgOf(unit("u1", "ep1:502", 3, 0, 10))
	cfg.Units[0].Source.TimeoutMs = 0
	require.NoError(t, Validate(cfg))

	Normalize(cfg)

	require.Equal(t, DefaultSleepIntervalMs, cfg.Watchdog.SleepIntervalMs)
	require.Equal(t, time.Second, cfg.Watchdog.SleepInterval())

	u := cfg.Units[0]
	require.Equal(t, DefaultSourceTimeoutMs, u.Source.TimeoutMs)
	require.Equal(t, 3*1000+1000, u.Heartbeat.TimeoutMs)
	require.Equal(t, 4*time.Second, u.HeartbeatTimeout())

	// The derived values still satisfy Validate.
	require.NoError(t, Validate(cfg))
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := cfgOf(unit("u1", "ep1:502", 3, 0, 10))
	cfg.Watchdog.SleepIntervalMs = 100
	cfg.Units[0].Heartbeat.TimeoutMs = 9000

	Normalize(cfg)

	require.Equal(t, 100, cfg.Watchdog.SleepIntervalMs)
	require.Equal(t, 500, cfg.Units[0].Source.TimeoutMs)
	require.Equal(t, 9000, cfg.Units[0].Heartbeat.TimeoutMs)

	Normalize(nil)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "example.yaml"))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	Normalize(cfg)
	require.Len(t, cfg.Units, 2)
	require.Equal(t, 5*time.Second, cfg.Units[0].HeartbeatTimeout())
	require.Equal(t, 4*time.Second, cfg.Units[1].HeartbeatTimeout())
}
