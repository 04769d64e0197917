package ezo

import (
	"context"
	"time"
)

// Reading is one polled sensor value.
type Reading struct {
	Value string    `json:"value"`
	At    time.Time `json:"timestamp"`
	Err   error     `json:"-"`
}

// Poller issues the read command on a fixed period. It is clock-driven and
// never overlaps cycles: each tick runs one full write, delay, read exchange
// on the goroutine calling Run.
type Poller struct {
	bus    *Bus
	period time.Duration
}

// NewPoller creates a poller with immutable config. A period shorter than the
// bus's long processing delay is clamped up to it: the circuit cannot answer
// faster than it computes a reading.
func NewPoller(bus *Bus, period time.Duration) *Poller {
	if floor := bus.longDelay; period < floor {
		period = floor
	}
	return &Poller{bus: bus, period: period}
}

// Period returns the effective, possibly clamped, polling period.
func (p *Poller) Period() time.Duration {
	return p.period
}

// PollOnce performs exactly one read cycle.
func (p *Poller) PollOnce(ctx context.Context) Reading {
	r := Reading{At: time.Now()}
	r.Value, r.Err = p.bus.Query(ctx, "R")
	return r
}

// Run emits one Reading per period on out until ctx is cancelled.
// Cancellation is observed between cycles, never inside one, so an in-flight
// exchange always completes and the circuit is left with no pending response.
func (p *Poller) Run(ctx context.Context, out chan<- Reading) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := p.PollOnce(context.Background())
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}
}
