package tracker

import (
	"sync"
	"time"
)

// Clock is the single source of forward progress: a repeating
// one-second tick. Start and Stop are idempotent, and a tick in flight
// when Stop is called is discarded rather than delivered late.
type Clock struct {
	mu       sync.Mutex
	interval time.Duration
	out      chan time.Time
	done     chan struct{}
	running  bool
}

func NewClock() *Clock {
	return newClock(time.Second)
}

func newClock(interval time.Duration) *Clock {
	return &Clock{
		interval: interval,
		out:      make(chan time.Time, 1),
	}
}

// C returns the tick channel. Ticks are dropped, not queued, if the
// consumer falls behind.
func (c *Clock) C() <-chan time.Time {
	return c.out
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.done = make(chan struct{})

	go c.run(c.done)
}

func (c *Clock) run(done chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case t := <-ticker.C:
			// Re-check under the lock so a tick racing Stop is
			// never forwarded after the clock halts.
			c.mu.Lock()
			stopped := !c.running
			c.mu.Unlock()
			if stopped {
				return
			}
			select {
			case c.out <- t:
			default:
			}
		}
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.done)
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
