// Package senseless implements the senseless-poll detector: it
// recognizes a guest tight-polling an I/O register, skips simulated
// cycles forward (bounded by the next timer expiry) and sleeps real wall
// time, so the host doesn't spin doing no useful work while the guest is
// busy-waiting. The guest still sees time pass at the normal rate; only
// the host's use of real CPU time is reduced.
package senseless

import (
	"time"

	"leigun-emu/cycle"
)

// Once 11ms of skipped guest time has accumulated, sleep ~10ms of real
// time, crediting slightly more than was slept to compensate for
// scheduler overshoot.
const (
	nsAccountThreshold = 11 * time.Millisecond
	sleepDuration      = 10 * time.Millisecond
	sleepCredit        = 11 * time.Millisecond
)

// Detector tracks the senseless-poll state for one simulation.
type Detector struct {
	clock *cycle.Clock

	lastReportCycle int64
	savedCycles     int64
	thresholdCycles int64
	jumpWidthCycles int64
	nsAccount       time.Duration
	sensitivity     int64

	// sleep is overridable for tests; defaults to time.Sleep.
	sleep func(time.Duration)
}

// New returns a Detector bound to clock, with the given tunables:
// sensitivity is a multiplier applied to each report's weight,
// thresholdCycles and jumpWidthCycles are in cycles. These map to the
// [poll_detector] sensivity/threshold/jump_width configuration keys.
func New(clock *cycle.Clock, sensitivity, thresholdCycles, jumpWidthCycles int64) *Detector {
	return &Detector{
		clock:           clock,
		lastReportCycle: clock.Now(),
		thresholdCycles: thresholdCycles,
		jumpWidthCycles: jumpWidthCycles,
		sensitivity:     sensitivity,
		sleep:           time.Sleep,
	}
}

// Reconfigure updates the tunables at runtime, so [poll_detector]
// settings can be re-read without a restart.
func (d *Detector) Reconfigure(sensitivity, thresholdCycles, jumpWidthCycles int64) {
	d.sensitivity = sensitivity
	d.thresholdCycles = thresholdCycles
	d.jumpWidthCycles = jumpWidthCycles
}

// Report is called from a peripheral I/O read path believed to be a likely
// poll target (e.g. a UART RX-ready status bit), weighted by how strong a
// signal that particular read is. Callers must never call Report from a
// path that meaningfully advances simulated state, only from read paths
// safe to accelerate.
func (d *Detector) Report(weight int64) {
	now := d.clock.Now()

	credit := d.clock.NsToCycles(int64(d.sensitivity) * weight)
	d.savedCycles += credit

	debit := 2 * (now - d.lastReportCycle)
	d.savedCycles -= debit
	d.lastReportCycle = now
	if d.savedCycles < 0 {
		d.savedCycles = 0
	}

	if d.savedCycles <= d.thresholdCycles {
		return
	}

	jump := d.jumpWidthCycles
	if first := d.clock.FirstExpiry(); first != cycle.NoExpiry {
		if bound := first - d.clock.Now(); bound < jump {
			jump = bound
		}
	}
	if jump <= 0 {
		return
	}

	d.savedCycles = 0
	d.nsAccount += time.Duration(d.clock.CyclesToNs(jump))
	d.clock.Advance(jump)
	d.lastReportCycle = d.clock.Now()

	if d.nsAccount > nsAccountThreshold {
		d.sleep(sleepDuration)
		d.nsAccount -= sleepCredit
	}
}
