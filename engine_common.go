// engine_common.go - Common interfaces and helpers shared by the synthesis engines

package main

import (
	"math"
	"sync/atomic"
)

const (
	SAMPLE_RATE = 44100

	// Control path target interval in milliseconds (~60 Hz sensor polling).
	CONTROL_TICK_MS = 16

	// Fixed attenuation applied to oscillator output to avoid clipping.
	OSC_HEADROOM = 0.25

	MAX_SAMPLE = 1.0
	MIN_SAMPLE = -1.0
)

// SynthEngine is implemented by all synthesis engines.
// Provides a common surface for lifecycle and per-tick motion updates.
type SynthEngine interface {
	// Start activates audio output. Returns false if the audio backend
	// failed to activate; the engine remains stopped in that case.
	Start() bool
	// Stop halts audio output. Safe to call repeatedly.
	Stop()
	// Update feeds one angle sample (degrees) for one control tick.
	Update(angle float64)
	// IsRunning returns true while the engine is rendering audio.
	IsRunning() bool
	// CurrentVelocity returns the smoothed angular velocity in degrees/second.
	CurrentVelocity() float64
	// StatusDescription returns a formatted snapshot of the audible
	// parameters, or the empty string when the engine is stopped.
	StatusDescription() string
	// Name returns the engine's short identifier ("creak", "theremin").
	Name() string
}

// atomicFloat64 is a wait-free scalar slot for handing ramped parameter
// values from the control tick to the audio render callback. Frequency and
// volume cross the boundary as independent scalars; reading them slightly
// out of phase with each other is acceptable.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// smoothstep is the cubic Hermite ease t*t*(3-2t) over [edge0, edge1].
func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
