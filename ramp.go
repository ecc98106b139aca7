// ramp.go - Critically-damped parameter ramping for audible parameters

package main

import "time"

// rampToward moves current toward target by the fraction of the time
// constant covered by elapsedSec. First-order exponential smoothing: the
// approach is monotonic and never overshoots. A non-positive time constant
// degenerates to an instant snap.
func rampToward(current, target, elapsedSec, timeConstantMS float64) float64 {
	if timeConstantMS <= 0 {
		return target
	}
	if elapsedSec <= 0 {
		return current
	}
	alpha := elapsedSec / (timeConstantMS / 1000.0)
	if alpha > 1 {
		alpha = 1
	}
	return current + (target-current)*alpha
}

// RampedParam holds one audible parameter that converges toward its target
// with a fixed time constant. Every parameter an engine exposes to the
// render path goes through one of these so value changes never step.
type RampedParam struct {
	current        float64
	target         float64
	min            float64
	max            float64
	timeConstantMS float64
	lastTick       time.Time
}

func NewRampedParam(initial, min, max, timeConstantMS float64) *RampedParam {
	v := clamp(initial, min, max)
	return &RampedParam{
		current:        v,
		target:         v,
		min:            min,
		max:            max,
		timeConstantMS: timeConstantMS,
	}
}

// SetTarget sets the value the parameter converges toward, clamped into the
// parameter's declared bounds.
func (rp *RampedParam) SetTarget(v float64) {
	rp.target = clamp(v, rp.min, rp.max)
}

// Advance steps the current value toward the target using the elapsed time
// since the previous advance. The first advance after construction or Reset
// only seeds the timing context and returns the value unchanged.
func (rp *RampedParam) Advance(now time.Time) float64 {
	if rp.lastTick.IsZero() {
		rp.lastTick = now
		return rp.current
	}
	elapsed := now.Sub(rp.lastTick).Seconds()
	rp.lastTick = now
	if elapsed <= 0 {
		return rp.current
	}
	rp.current = rampToward(rp.current, rp.target, elapsed, rp.timeConstantMS)
	return rp.current
}

// Reset clears the ramp timing context so the next Advance does not inherit
// a stale elapsed-time base. The current value is kept.
func (rp *RampedParam) Reset() {
	rp.lastTick = time.Time{}
}

// ResetTo forces the parameter to v immediately and clears timing context.
func (rp *RampedParam) ResetTo(v float64) {
	v = clamp(v, rp.min, rp.max)
	rp.current = v
	rp.target = v
	rp.lastTick = time.Time{}
}

func (rp *RampedParam) Current() float64 { return rp.current }
func (rp *RampedParam) Target() float64  { return rp.target }
