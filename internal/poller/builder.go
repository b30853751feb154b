// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/modbus-watchdog/internal/config"
	pmodbus "github.com/tamzrod/modbus-watchdog/internal/poller/modbus"
	"github.com/tamzrod/modbus-watchdog/internal/watchdog"
)

// EntryName returns the watchdog entry name used for a unit's poller.
func EntryName(unitID string) string {
	return "poller/" + unitID
}

// Build constructs a Poller and wires Modbus client lifecycle.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
// Assumes u has been validated and normalized.
func Build(u cfg.UnitConfig, w *watchdog.Watchdog) (*Poller, func() error, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		return pmodbus.New(pmodbus.Config{
			Endpoint: u.Source.Endpoint,
			UnitID:   u.Source.UnitID,
			Timeout:  time.Duration(u.Source.TimeoutMs) * time.Millisecond,
		})
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, nil, err
	}

	reads := make([]ReadBlock, 0, len(u.Reads))
	for _, r := range u.Reads {
		reads = append(reads, ReadBlock{
			FC:       r.FC,
			Address:  r.Address,
			Quantity: r.Quantity,
		})
	}

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			Reads:    reads,
		},
		client,
		factory,
		w.NewEntry(EntryName(u.ID), u.HeartbeatTimeout()),
	)
	if err != nil {
		if c, ok := client.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, nil, err
	}

	return p, p.Close, nil
}
