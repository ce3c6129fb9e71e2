// Package metrics holds lock-free gauges the fleet store updates at the end
// of every allocator tick, for a diagnostics endpoint to read without
// contending with the fleet's coarse mutex.
package metrics

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// gauge encapsulates a float64 for non-locking atomic operations. The
// caller, not the gauge, decides what to do if a concurrent writer wins a
// compare-and-swap race — Set retries until it succeeds, since a gauge
// assignment has no meaningful "old value" to preserve.
type gauge struct {
	val float64
}

func (g *gauge) Read() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&g.val)))
	return math.Float64frombits(bits)
}

func (g *gauge) Set(newVal float64) {
	for {
		old := g.Read()
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&g.val)),
			math.Float64bits(old),
			math.Float64bits(newVal)) {
			return
		}
	}
}

func (g *gauge) Add(delta float64) (newVal float64, succeeded bool) {
	old := g.Read()
	newVal = old + delta
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&g.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// Stats holds the fleet planner's live operational gauges. The zero value
// is ready to use.
type Stats struct {
	allocatorTickMicros gauge
	queueDepth          gauge
	busyRobots          gauge
	idleRobots          gauge
}

// RecordAllocatorTick sets the duration of the most recently completed
// allocator tick, in microseconds.
func (s *Stats) RecordAllocatorTick(micros float64) {
	s.allocatorTickMicros.Set(micros)
}

// AllocatorTickMicros returns the most recently recorded tick duration.
func (s *Stats) AllocatorTickMicros() float64 {
	return s.allocatorTickMicros.Read()
}

// SetFleetCounts records the current queue depth and busy/idle robot
// counts, taken together from one fleet snapshot so the three stay
// consistent with each other even though each gauge is set independently.
func (s *Stats) SetFleetCounts(queueDepth, busy, idle int) {
	s.queueDepth.Set(float64(queueDepth))
	s.busyRobots.Set(float64(busy))
	s.idleRobots.Set(float64(idle))
}

func (s *Stats) QueueDepth() int { return int(s.queueDepth.Read()) }
func (s *Stats) BusyRobots() int { return int(s.busyRobots.Read()) }
func (s *Stats) IdleRobots() int { return int(s.idleRobots.Read()) }
