// engine_theremin.go - Oscillator synthesis engine (hinge theremin)
//
// A live sine oscillator with a slow vibrato. Frequency follows the hinge
// angle through a sub-linear power curve; volume follows velocity through
// the same inverted relationship as the creak engine, so stillness is the
// most present state and motion attenuates it.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ThereminConfig carries the theremin engine's independently tuned constants.
type ThereminConfig struct {
	Motion MotionConfig

	MinAngle float64
	MaxAngle float64

	MinFrequency float64
	MaxFrequency float64
	// FrequencyCurve is the power-curve exponent applied to the normalized
	// angle. Below 1 it biases low angles toward faster frequency increase
	// and compresses the high end.
	FrequencyCurve float64

	BaseVolume    float64
	VelocityBoost float64
	// VelocityQuiet is the velocity at which the boost has fully faded.
	VelocityQuiet float64

	VibratoHz    float64
	VibratoDepth float64

	FreqRampMS float64
	VolRampMS  float64
}

func DefaultThereminConfig() ThereminConfig {
	return ThereminConfig{
		Motion: MotionConfig{
			AngleSmoothing:    0.05,
			MovementThreshold: 0.5,
			VelocitySmoothing: 0.25,
			VelocityDecay:     0.9,
			TimeoutDecay:      0.75,
			MovementTimeout:   60 * time.Millisecond,
		},
		MinAngle:       5,
		MaxAngle:       175,
		MinFrequency:   110,
		MaxFrequency:   880,
		FrequencyCurve: 0.7,
		BaseVolume:     0.35,
		VelocityBoost:  0.5,
		VelocityQuiet:  60,
		VibratoHz:      5,
		VibratoDepth:   0.01,
		FreqRampMS:     40,
		VolRampMS:      150,
	}
}

// ThereminEngine owns the per-sample render loop and vibrato LFO. The
// control tick ramps frequency and volume once per tick and publishes the
// ramped values through atomic slots; the render path consumes them as-is
// every audio frame without re-ramping.
type ThereminEngine struct {
	cfg        ThereminConfig
	out        AudioOutput
	sampleRate float64

	mu      sync.Mutex
	tracker *MotionTracker
	freq    *RampedParam
	vol     *RampedParam
	running bool

	active  atomic.Bool
	curFreq atomicFloat64
	curVol  atomicFloat64

	// Render context only. Both accumulators wrap modulo 2*pi every frame
	// to stay numerically stable over long runs.
	phase    float64
	vibPhase float64
}

func NewThereminEngine(cfg ThereminConfig, out AudioOutput) (*ThereminEngine, error) {
	if out == nil {
		return nil, errors.New("theremin engine: no audio output")
	}
	if cfg.MaxAngle <= cfg.MinAngle || cfg.MaxFrequency <= cfg.MinFrequency {
		return nil, fmt.Errorf("theremin engine: degenerate mapping ranges [%g,%g] -> [%g,%g]",
			cfg.MinAngle, cfg.MaxAngle, cfg.MinFrequency, cfg.MaxFrequency)
	}
	e := &ThereminEngine{
		cfg:        cfg,
		out:        out,
		sampleRate: float64(out.SampleRate()),
		tracker:    NewMotionTracker(cfg.Motion),
		freq:       NewRampedParam(cfg.MinFrequency, cfg.MinFrequency, cfg.MaxFrequency, cfg.FreqRampMS),
		vol:        NewRampedParam(0, 0, 1, cfg.VolRampMS),
	}
	return e, nil
}

func (e *ThereminEngine) Name() string { return "theremin" }

func (e *ThereminEngine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return true
	}

	e.tracker.Reset()
	e.freq.ResetTo(e.cfg.MinFrequency)
	e.vol.ResetTo(0)
	e.curFreq.Store(e.freq.Current())
	e.curVol.Store(0)
	// The phase accumulators are render-owned; writing them is legal only
	// here, while active is false. The Store(true) below publishes the
	// reset to the render callback.
	e.phase = 0
	e.vibPhase = 0

	e.out.SetSource(e)
	if err := e.out.Start(); err != nil {
		slog.Warn("theremin engine: audio backend failed to start", "error", err)
		return false
	}
	e.active.Store(true)
	e.running = true
	slog.Info("theremin engine started")
	return true
}

func (e *ThereminEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.active.Store(false)
	e.out.Stop()
	e.freq.Reset()
	e.vol.Reset()
	e.running = false
	slog.Info("theremin engine stopped")
}

func (e *ThereminEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *ThereminEngine) Update(angle float64) {
	e.updateAt(angle, time.Now())
}

func (e *ThereminEngine) updateAt(angle float64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasSeeded := e.tracker.Seeded()
	smoothed, vel := e.tracker.Observe(angle, now)

	// The seeding sample only establishes reference state; no velocity
	// exists yet, so the ramp targets must not move.
	if wasSeeded {
		e.freq.SetTarget(e.frequencyTarget(smoothed))
		e.vol.SetTarget(e.volumeTarget(vel))
	}

	e.curFreq.Store(e.freq.Advance(now))
	e.curVol.Store(e.vol.Advance(now))
}

// frequencyTarget maps angle into the frequency window through the
// sub-linear power curve. Monotonic non-decreasing in angle.
func (e *ThereminEngine) frequencyTarget(angle float64) float64 {
	a := clamp(angle, e.cfg.MinAngle, e.cfg.MaxAngle)
	norm := (a - e.cfg.MinAngle) / (e.cfg.MaxAngle - e.cfg.MinAngle)
	norm = math.Pow(norm, e.cfg.FrequencyCurve)
	return e.cfg.MinFrequency + norm*(e.cfg.MaxFrequency-e.cfg.MinFrequency)
}

// volumeTarget is base volume plus a boost that fades with velocity.
func (e *ThereminEngine) volumeTarget(v float64) float64 {
	boost := e.cfg.VelocityBoost * (1 - smoothstep(0, e.cfg.VelocityQuiet, v))
	return clamp(e.cfg.BaseVolume+boost, 0, 1)
}

func (e *ThereminEngine) CurrentVelocity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Velocity()
}

func (e *ThereminEngine) StatusDescription() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ""
	}
	return fmt.Sprintf("theremin: freq %.1f Hz vol %.2f vel %.1f deg/s",
		e.freq.Current(), e.vol.Current(), e.tracker.Velocity())
}

// RenderSample produces one audio frame on the render goroutine: the
// vibrato LFO modulates the carrier frequency, the carrier phase advances
// by the instantaneous frequency, and the output is attenuated by a fixed
// headroom scale.
func (e *ThereminEngine) RenderSample() float32 {
	if !e.active.Load() {
		return 0
	}
	freq := e.curFreq.Load()
	vol := e.curVol.Load()

	e.vibPhase += 2 * math.Pi * e.cfg.VibratoHz / e.sampleRate
	if e.vibPhase >= 2*math.Pi {
		e.vibPhase -= 2 * math.Pi
	}

	instantaneous := freq * (1 + e.cfg.VibratoDepth*math.Sin(e.vibPhase))
	e.phase += 2 * math.Pi * instantaneous / e.sampleRate
	if e.phase >= 2*math.Pi {
		e.phase -= 2 * math.Pi
	}

	return float32(math.Sin(e.phase) * vol * OSC_HEADROOM)
}
