// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
)

// Modbus per-request quantity limits.
const (
	maxReadBits      = 2000 // FC 1,2
	maxReadRegisters = 125  // FC 3,4
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// WATCHDOG
	// ------------------------------------------------------------

	if cfg.Watchdog.SleepIntervalMs < 0 {
		return fmt.Errorf(
			"watchdog: sleep_interval_ms must not be negative (got %d)",
			cfg.Watchdog.SleepIntervalMs,
		)
	}

	// ------------------------------------------------------------
	// UNITS
	// ------------------------------------------------------------

	if len(cfg.Units) == 0 {
		return errors.New("config: at least one unit is required")
	}

	seen := make(map[string]struct{}, len(cfg.Units))

	for i, u := range cfg.Units {
		if u.ID == "" {
			return fmt.Errorf("unit #%d: id is required", i)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("unit %q: duplicate id", u.ID)
		}
		seen[u.ID] = struct{}{}

		if u.Source.Endpoint == "" {
			return fmt.Errorf("unit %q: source.endpoint is required", u.ID)
		}
		if u.Source.TimeoutMs < 0 {
			return fmt.Errorf("unit %q: source.timeout_ms must not be negative", u.ID)
		}

		if u.Poll.IntervalMs <= 0 {
			return fmt.Errorf("unit %q: poll.interval_ms must be > 0", u.ID)
		}

		if err := validateReads(u); err != nil {
			return err
		}

		// ---- heartbeat ----

		hb := u.Heartbeat.TimeoutMs
		if hb < 0 {
			return fmt.Errorf("unit %q: heartbeat.timeout_ms must not be negative", u.ID)
		}

		// A timeout that cannot cover one full cycle would abort a healthy process.
		// The read timeout is the one Normalize will apply.
		srcTimeout := u.Source.TimeoutMs
		if srcTimeout == 0 {
			srcTimeout = DefaultSourceTimeoutMs
		}
		if cycle := u.Poll.IntervalMs + srcTimeout; hb != 0 && hb <= cycle {
			return fmt.Errorf(
				"unit %q: heartbeat.timeout_ms (%d) must exceed poll.interval_ms + source.timeout_ms (%d)",
				u.ID,
				hb,
				cycle,
			)
		}
	}

	return nil
}

func validateReads(u UnitConfig) error {
	if len(u.Reads) == 0 {
		return fmt.Errorf("unit %q: at least one read block is required", u.ID)
	}

	for _, r := range u.Reads {
		var limit uint16

		switch r.FC {
		case 1, 2:
			limit = maxReadBits
		case 3, 4:
			limit = maxReadRegisters
		default:
			return fmt.Errorf("unit %q: unsupported fc %d", u.ID, r.FC)
		}

		if r.Quantity == 0 || r.Quantity > limit {
			return fmt.Errorf(
				"unit %q: fc=%d quantity must be 1-%d (got %d)",
				u.ID,
				r.FC,
				limit,
				r.Quantity,
			)
		}

		if uint32(r.Address)+uint32(r.Quantity) > 0x10000 {
			return fmt.Errorf(
				"unit %q: fc=%d range %d+%d exceeds the 16-bit address space",
				u.ID,
				r.FC,
				r.Address,
				r.Quantity,
			)
		}
	}

	return nil
}
