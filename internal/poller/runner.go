// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run starts the ticker loop and emits PollResult on the provided channel.
// One goroutine per unit. No overlap. No retries.
//
// The poller's watchdog entry is started on entry and stopped on return.
// A read or a delivery that blocks past the heartbeat timeout
// is reported by the watchdog as a stall.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	p.entry.Start(StateStarting)
	defer p.entry.Stop()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p.entry.Ping(StatePolling)
		res := p.PollOnce()

		p.entry.Ping(StateDelivering)
		select {
		case <-ctx.Done():
			return
		case out <- res:
		}

		p.entry.Ping(StateIdle)
	}
}
