// Package allocator runs the periodic control loop that drains the fleet's
// job queue: each tick it asks the fleet store to garbage-collect stale
// reservations and assign as many queued jobs as currently possible.
package allocator

import (
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"fleetplanner/fleet"
)

// DefaultPeriod is the allocator's tick cadence absent an override.
const DefaultPeriod = 500 * time.Millisecond

// Clock supplies the current discrete time for a tick, in integer seconds.
// Abstracted so tests can drive deterministic ticks.
type Clock func() int64

// Run starts the allocator loop and blocks until done is closed. Each tick
// calls store.Tick(clock()). Intended to be launched in its own goroutine.
func Run(done <-chan struct{}, store *fleet.Store, clock Clock, period time.Duration) {
	if period <= 0 {
		period = DefaultPeriod
	}
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}

	for range channerics.NewTicker(done, period) {
		store.Tick(clock())
	}
}
