package watchdog

import (
	"sync"
	"time"
)

// poller runs sweep on a fixed interval until stopped,
// or until sweep reports a stall.
type poller struct {
	interval time.Duration
	sweep    func() bool

	quit     chan struct{}
	quitOnce sync.Once

	done chan struct{}
}

func newPoller(interval time.Duration, sweep func() bool) *poller {
	return &poller{
		interval: interval,
		sweep:    sweep,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Run is the poller goroutine's main loop.
// It sweeps immediately and then once per interval.
func (p *poller) Run() {
	defer close(p.done)

	for {
		select {
		case <-p.quit:
			return
		default:
		}

		if !p.sweep() {
			return
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-p.quit:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RequestStop signals the loop to exit without waiting for it.
// It is safe to call from within sweep.
func (p *poller) RequestStop() {
	p.quitOnce.Do(func() {
		close(p.quit)
	})
}

// Stop signals the loop to exit and waits until it has.
// Stop must not be called from within sweep.
func (p *poller) Stop() {
	p.RequestStop()
	<-p.done
}
