// internal/config/normalize.go
package config

import "time"

// Defaults applied by Normalize.
const (
	DefaultSleepIntervalMs = 1000
	DefaultSourceTimeoutMs = 1000

	// A unit's heartbeat timeout defaults to this many poll intervals
	// plus one source timeout.
	DefaultHeartbeatIntervals = 3
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Watchdog.SleepIntervalMs == 0 {
		cfg.Watchdog.SleepIntervalMs = DefaultSleepIntervalMs
	}

	for ui := range cfg.Units {
		u := &cfg.Units[ui]

		if u.Source.TimeoutMs == 0 {
			u.Source.TimeoutMs = DefaultSourceTimeoutMs
		}

		if u.Heartbeat.TimeoutMs == 0 {
			u.Heartbeat.TimeoutMs = DefaultHeartbeatIntervals*u.Poll.IntervalMs + u.Source.TimeoutMs
		}
	}
}

// SleepInterval returns the sweep interval as a duration.
func (c WatchdogConfig) SleepInterval() time.Duration {
	return time.Duration(c.SleepIntervalMs) * time.Millisecond
}

// HeartbeatTimeout returns the unit's heartbeat timeout as a duration.
func (u UnitConfig) HeartbeatTimeout() time.Duration {
	return time.Duration(u.Heartbeat.TimeoutMs) * time.Millisecond
}
