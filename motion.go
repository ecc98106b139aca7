// motion.go - Online motion estimation from raw hinge angle samples

package main

import (
	"math"
	"time"
)

// Elapsed time above this between two samples is treated as a clock glitch
// (suspend/resume, clock jump) and skipped rather than estimated over.
const MAX_SAMPLE_GAP_SEC = 1.0

// MotionConfig carries the estimator tuning for one engine. The two engines
// were tuned independently for their sound character; their constants stay
// separate rather than being unified.
type MotionConfig struct {
	// AngleSmoothing is the exponential smoothing factor applied to the
	// raw angle (smaller = heavier smoothing).
	AngleSmoothing float64
	// MovementThreshold is the minimum smoothed-angle delta in degrees
	// that counts as movement. Deltas below it are sensor jitter.
	MovementThreshold float64
	// VelocitySmoothing blends instantaneous velocity into the smoothed
	// estimate when movement is observed.
	VelocitySmoothing float64
	// VelocityDecay is the primary multiplicative decay applied on every
	// tick without observed movement.
	VelocityDecay float64
	// TimeoutDecay is applied on top of VelocityDecay once MovementTimeout
	// has elapsed since the last observed movement. Two-stage decay:
	// a single noisy zero-delta sample does not zero the estimate, but the
	// velocity settles quickly once the lid actually stops.
	TimeoutDecay float64
	// MovementTimeout is the stillness duration after which TimeoutDecay
	// kicks in.
	MovementTimeout time.Duration
}

// MotionTracker converts one raw angle sample at a time into a smoothed
// angle and a smoothed, always non-negative angular velocity estimate.
// The first sample after construction or Reset only seeds the state.
type MotionTracker struct {
	cfg MotionConfig

	seeded        bool
	smoothedAngle float64
	refAngle      float64 // last smoothed angle that counted as movement
	velocity      float64
	lastSample    time.Time
	lastMovement  time.Time
}

func NewMotionTracker(cfg MotionConfig) *MotionTracker {
	return &MotionTracker{cfg: cfg}
}

// Reset returns the tracker to the unseeded state. The next sample seeds
// fresh state instead of producing a velocity spike against stale history.
func (mt *MotionTracker) Reset() {
	mt.seeded = false
	mt.velocity = 0
}

// Observe consumes one angle sample taken at now and returns the updated
// smoothed angle and smoothed velocity (degrees/second, >= 0).
func (mt *MotionTracker) Observe(angle float64, now time.Time) (float64, float64) {
	if !mt.seeded {
		mt.seeded = true
		mt.smoothedAngle = angle
		mt.refAngle = angle
		mt.velocity = 0
		mt.lastSample = now
		mt.lastMovement = now
		return mt.smoothedAngle, 0
	}

	dt := now.Sub(mt.lastSample).Seconds()
	if dt <= 0 || dt > MAX_SAMPLE_GAP_SEC {
		// Clock glitch: keep the timestamp moving, skip estimation.
		mt.lastSample = now
		return mt.smoothedAngle, mt.velocity
	}
	mt.lastSample = now

	mt.smoothedAngle += (angle - mt.smoothedAngle) * mt.cfg.AngleSmoothing

	delta := mt.smoothedAngle - mt.refAngle
	instantaneous := 0.0
	if math.Abs(delta) >= mt.cfg.MovementThreshold {
		instantaneous = math.Abs(delta) / dt
		mt.refAngle = mt.smoothedAngle
	}
	// Below threshold the reference angle is deliberately not advanced,
	// so jitter cannot drift the baseline into fake movement.

	if instantaneous > 0 {
		mt.velocity += (instantaneous - mt.velocity) * mt.cfg.VelocitySmoothing
		mt.lastMovement = now
	} else {
		mt.velocity *= mt.cfg.VelocityDecay
	}
	if now.Sub(mt.lastMovement) > mt.cfg.MovementTimeout {
		mt.velocity *= mt.cfg.TimeoutDecay
	}

	return mt.smoothedAngle, mt.velocity
}

// Seeded reports whether the tracker has consumed at least one sample
// since construction or Reset.
func (mt *MotionTracker) Seeded() bool { return mt.seeded }

// Velocity returns the current smoothed velocity estimate.
func (mt *MotionTracker) Velocity() float64 { return mt.velocity }

// SmoothedAngle returns the current smoothed angle in degrees.
func (mt *MotionTracker) SmoothedAngle() float64 { return mt.smoothedAngle }
