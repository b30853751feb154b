// cmd/watchdogd/main_test.go
package main

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tamzrod/modbus-watchdog/internal/wtest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "watchdogd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var level slog.LevelVar
	root := NewRootCmd(wtest.NewLogger(t), &level)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	path := writeConfig(t, `
units:
  - id: plc-1
    source: { endpoint: "127.0.0.1:5020", unit_id: 3 }
    reads:
      - { fc: 4, address: 0, quantity: 2 }
    poll: { interval_ms: 100 }
`)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	require.Contains(t, out, "sleep_interval=1s")
	require.Contains(t, out, "unit plc-1: endpoint=127.0.0.1:5020 unit_id=3 reads=1 poll=100ms heartbeat=1.3s")
}

func TestValidateCmd_Invalid(t *testing.T) {
	path := writeConfig(t, `
units:
  - id: plc-1
    source: { endpoint: "127.0.0.1:5020" }
    reads:
      - { fc: 9, address: 0, quantity: 2 }
    poll: { interval_ms: 100 }
`)

	_, err := execute(t, "validate", path)
	require.ErrorContains(t, err, "unsupported fc 9")
}

func TestRunCmd_UnreachableDeviceFailsFast(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	path := writeConfig(t, `
watchdog:
  sleep_interval_ms: 10
units:
  - id: plc-1
    source: { endpoint: "`+addr+`", timeout_ms: 200 }
    reads:
      - { fc: 3, address: 0, quantity: 2 }
    poll: { interval_ms: 100 }
`)

	_, err = execute(t, "run", path)
	require.ErrorContains(t, err, "poller build failed (unit=plc-1)")
}

func TestRootCmd_BadLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "validate", "unused.yaml")
	require.ErrorContains(t, err, "invalid log level")
}

func TestParseLevel(t *testing.T) {
	l, err := parseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, l)

	l, err = parseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, l)
}
