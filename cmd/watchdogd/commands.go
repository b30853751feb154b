// cmd/watchdogd/commands.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tamzrod/modbus-watchdog/internal/config"
	"github.com/tamzrod/modbus-watchdog/internal/poller"
	"github.com/tamzrod/modbus-watchdog/internal/status"
	"github.com/tamzrod/modbus-watchdog/internal/watchdog"
)

func NewRootCmd(log *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use: "watchdogd SUBCOMMAND",

		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},

		SilenceUsage:  true,
		SilenceErrors: true,

		Long: `watchdogd polls Modbus TCP devices under a liveness watchdog.

Every unit's poll loop sends a heartbeat on each cycle.
If a loop stops sending heartbeats for longer than its configured timeout,
for example because a read or a downstream consumer is stuck,
watchdogd logs the stall and terminates with a goroutine dump
instead of hanging silently.
`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			level.Set(l)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		NewRunCmd(log),
		NewValidateCmd(log),
	)

	return rootCmd
}

func NewRunCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use: "run CONFIG.yaml",

		Short: "Poll every configured unit until interrupted",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			return runUnits(cmd.Context(), log, cfg, newWatchdog(log, cfg))
		},
	}
}

func NewValidateCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use: "validate CONFIG.yaml",

		Short: "Check a config file and print the effective settings",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watchdog: disabled=%t sleep_interval=%s\n",
				cfg.Watchdog.Disabled, cfg.Watchdog.SleepInterval())
			for _, u := range cfg.Units {
				fmt.Fprintf(out, "unit %s: endpoint=%s unit_id=%d reads=%d poll=%dms heartbeat=%s\n",
					u.ID, u.Source.Endpoint, u.Source.UnitID, len(u.Reads),
					u.Poll.IntervalMs, u.HeartbeatTimeout())
			}
			return nil
		},
	}
}

// loadConfig loads, validates and normalizes the config at path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// newWatchdog returns the watchdog described by cfg, not yet initialized.
func newWatchdog(log *slog.Logger, cfg *config.Config, opts ...watchdog.Option) *watchdog.Watchdog {
	opts = append([]watchdog.Option{
		watchdog.WithSleepInterval(cfg.Watchdog.SleepInterval()),
	}, opts...)
	return watchdog.New(log.With("sys", "watchdog"), opts...)
}

// runUnits starts one poller per unit under w
// and blocks until ctx is canceled.
// w is initialized unless the config disables it, and cleaned up on return.
func runUnits(ctx context.Context, log *slog.Logger, cfg *config.Config, w *watchdog.Watchdog) error {
	if cfg.Watchdog.Disabled {
		log.Warn("Watchdog disabled by config; heartbeats will not be checked")
	} else {
		w.Init()
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	// Pollers deregister their entries on the way out,
	// so the watchdog is cleaned up only after they have all returned.
	defer func() {
		cancel()
		wg.Wait()
		w.Cleanup()
	}()

	for _, unit := range cfg.Units {
		p, closePoller, err := poller.Build(unit, w)
		if err != nil {
			return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
		}

		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			defer closePoller()
			p.Run(ctx, out)
		}()
		go func(unitLog *slog.Logger) {
			defer wg.Done()
			sink(ctx, unitLog, out)
		}(log.With("unit", unit.ID))

		log.Info(
			"Unit started",
			"unit", unit.ID,
			"endpoint", unit.Source.Endpoint,
			"heartbeat_timeout", unit.HeartbeatTimeout(),
		)
	}

	<-ctx.Done()
	log.Info("Shutting down", "cause", context.Cause(ctx))

	// Entries still registered at this point belong to pollers that have not yet returned.
	for _, s := range w.Status() {
		log.Info(
			"Heartbeat at shutdown",
			"entry", s.Name,
			"state", s.State,
			"health", status.HealthString(s.Health),
			"remaining", s.Remaining,
		)
	}

	return nil
}

// sink consumes poll results until ctx is canceled.
// Consuming promptly matters: a poller blocked on delivery stops sending heartbeats.
func sink(ctx context.Context, log *slog.Logger, in <-chan poller.PollResult) {
	var failing bool
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-in:
			switch {
			case res.Err != nil && !failing:
				failing = true
				log.Warn("Poll failed", "err", res.Err)
			case res.Err != nil:
				log.Debug("Poll still failing", "err", res.Err)
			case failing:
				failing = false
				log.Info("Poll recovered", "blocks", len(res.Blocks))
			default:
				log.Debug("Poll ok", "blocks", len(res.Blocks), "at", res.At)
			}
		}
	}
}
