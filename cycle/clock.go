// Package cycle owns the global cycle counter and one-shot cycle timers,
// the simulator's primary scheduling mechanism. Every other core
// component (bus, async, senseless-poll) reads Clock.Now/FirstExpiry or
// arms a Timer; nothing in this package blocks or sleeps.
//
// The rate is expressed as a periph.io/x/periph/conn/physic.Frequency
// rather than a bare int64, so callers converting between bus clocks and
// cycle counts get the unit arithmetic for free.
package cycle

import (
	"container/heap"

	"periph.io/x/periph/conn/physic"
)

// Clock owns now_cycles and the active timer set for one simulation.
// Nothing in Clock is safe for concurrent use: the whole simulation is
// single-threaded cooperative.
type Clock struct {
	now  int64
	rate physic.Frequency
	h    timerHeap
	seq  uint64
}

// NewClock returns a Clock starting at now_cycles=0 ticking at rate.
func NewClock(rate physic.Frequency) *Clock {
	return &Clock{rate: rate}
}

// Now returns now_cycles.
func (c *Clock) Now() int64 { return c.now }

// Rate returns the fixed cycles_per_second rate.
func (c *Clock) Rate() physic.Frequency { return c.rate }

// UsToCycles converts a microsecond duration to a cycle count at the clock's
// fixed rate.
func (c *Clock) UsToCycles(us int64) int64 {
	return us * int64(c.rate/physic.Hertz) / 1000000
}

// MsToCycles converts a millisecond duration to a cycle count.
func (c *Clock) MsToCycles(ms int64) int64 {
	return ms * int64(c.rate/physic.Hertz) / 1000
}

// NsToCycles converts a nanosecond duration to a cycle count.
func (c *Clock) NsToCycles(ns int64) int64 {
	return ns * int64(c.rate/physic.Hertz) / 1000000000
}

// CyclesToNs converts a cycle count to nanoseconds at the clock's rate.
func (c *Clock) CyclesToNs(cycles int64) int64 {
	hz := int64(c.rate / physic.Hertz)
	if hz == 0 {
		return 0
	}
	return cycles * 1000000000 / hz
}

// FirstExpiry returns the minimum expiry of all active timers, or
// math.MaxInt64 if none are active. External drivers (the CPU loop, memory
// accesses) use this to bound how far Advance may jump.
func (c *Clock) FirstExpiry() int64 {
	if len(c.h) == 0 {
		return NoExpiry
	}
	return c.h[0].expiry
}

// NoExpiry is the sentinel "+infinity" FirstExpiry value when no timer is
// active.
const NoExpiry = 1<<63 - 1

// noExpiry is kept as an internal alias for brevity within this package.
const noExpiry = NoExpiry

// Advance moves now_cycles forward by delta (delta must be >= 0: now_cycles
// never decreases) and fires every timer whose expiry is now <= now_cycles,
// in ascending expiry order, FIFO among timers sharing an expiry. A timer's
// callback may re-arm itself or any other timer; newly armed timers that
// also fall at-or-before the new now fire within the same Advance call.
func (c *Clock) Advance(delta int64) {
	if delta < 0 {
		panic("cycle: Advance called with negative delta; now_cycles must never decrease")
	}
	c.now += delta
	c.dispatch()
}

func (c *Clock) dispatch() {
	for len(c.h) > 0 && c.h[0].expiry <= c.now {
		t := heap.Pop(&c.h).(*Timer)
		t.active = false
		t.index = -1
		if t.cb != nil {
			t.cb(t.clientData)
		}
	}
}
