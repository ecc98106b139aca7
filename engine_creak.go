// engine_creak.go - Loop-playback synthesis engine (hinge creak)
//
// Plays a continuously looping creak sample whose gain and playback rate
// follow the hinge's angular velocity. The relationship is deliberately
// inverted: slow, effortful movement is loud, free fast movement is nearly
// silent.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/interp"
)

// CreakConfig carries the creak engine's independently tuned constants.
type CreakConfig struct {
	Motion MotionConfig

	// VelocityDeadzone is the velocity in deg/s below which the engine
	// is silent.
	VelocityDeadzone float64
	// VelocityFull is the velocity at which the creak reaches full gain.
	VelocityFull float64
	// VelocityQuiet is the velocity at which the creak fades to silence.
	VelocityQuiet float64

	MinRate float64
	MaxRate float64

	GainRampMS float64
	RateRampMS float64
}

func DefaultCreakConfig() CreakConfig {
	return CreakConfig{
		Motion: MotionConfig{
			AngleSmoothing:    0.1,
			MovementThreshold: 0.3,
			VelocitySmoothing: 0.3,
			VelocityDecay:     0.85,
			TimeoutDecay:      0.7,
			MovementTimeout:   80 * time.Millisecond,
		},
		VelocityDeadzone: 1.0,
		VelocityFull:     2.0,
		VelocityQuiet:    30.0,
		MinRate:          0.75,
		MaxRate:          1.5,
		GainRampMS:       60,
		RateRampMS:       120,
	}
}

// CreakEngine drives varispeed loop playback of a pre-decoded sample buffer.
// The control tick owns the motion tracker and the ramps; the render
// callback owns the playback position and only ever sees the ramped gain
// and rate through wait-free atomic slots.
type CreakEngine struct {
	cfg  CreakConfig
	out  AudioOutput
	buf  []float32
	step float64 // native-rate/output-rate position increment at rate 1.0

	mu      sync.Mutex
	tracker *MotionTracker
	gain    *RampedParam
	rate    *RampedParam
	running bool

	active  atomic.Bool
	curGain atomicFloat64
	curRate atomicFloat64

	pos float64 // render context only
}

// NewCreakEngine wires the engine to its loop buffer and audio backend.
// samples is the pre-decoded mono buffer at its native sample rate;
// construction fails without a usable buffer.
func NewCreakEngine(cfg CreakConfig, samples []float32, nativeRate int, out AudioOutput) (*CreakEngine, error) {
	if len(samples) < 4 {
		return nil, errors.New("creak engine: sample buffer missing or too short")
	}
	if nativeRate <= 0 {
		return nil, fmt.Errorf("creak engine: invalid native sample rate %d", nativeRate)
	}
	if out == nil {
		return nil, errors.New("creak engine: no audio output")
	}
	e := &CreakEngine{
		cfg:     cfg,
		out:     out,
		buf:     samples,
		step:    float64(nativeRate) / float64(out.SampleRate()),
		tracker: NewMotionTracker(cfg.Motion),
		gain:    NewRampedParam(0, 0, 1, cfg.GainRampMS),
		rate:    NewRampedParam(1, cfg.MinRate, cfg.MaxRate, cfg.RateRampMS),
	}
	return e, nil
}

func (e *CreakEngine) Name() string { return "creak" }

// Start begins loop playback, muted until motion arrives. Returns false if
// the audio backend failed to activate; the engine stays stopped.
func (e *CreakEngine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return true
	}

	e.tracker.Reset()
	e.gain.ResetTo(0)
	e.rate.ResetTo(1)
	e.curGain.Store(0)
	e.curRate.Store(e.rate.Current())
	// pos is render-owned; writing it is legal only here, while active is
	// false. The Store(true) below publishes the reset to the render
	// callback.
	e.pos = 0 // the loop restarts on (re)start, never on parameter changes

	e.out.SetSource(e)
	if err := e.out.Start(); err != nil {
		slog.Warn("creak engine: audio backend failed to start", "error", err)
		return false
	}
	e.active.Store(true)
	e.running = true
	slog.Info("creak engine started")
	return true
}

// Stop halts playback and clears the ramp timing context so the next start
// does not inherit a stale elapsed-time base. Idempotent, and safe to call
// while the render callback is mid-flight.
func (e *CreakEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.active.Store(false)
	e.out.Stop()
	e.gain.Reset()
	e.rate.Reset()
	e.running = false
	slog.Info("creak engine stopped")
}

func (e *CreakEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Update feeds one angle sample for one control tick.
func (e *CreakEngine) Update(angle float64) {
	e.updateAt(angle, time.Now())
}

func (e *CreakEngine) updateAt(angle float64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasSeeded := e.tracker.Seeded()
	_, vel := e.tracker.Observe(angle, now)

	// The seeding sample only establishes reference state; no velocity
	// exists yet, so the ramp targets must not move.
	if wasSeeded {
		e.gain.SetTarget(e.gainTarget(vel))
		e.rate.SetTarget(e.rateTarget(vel))
	}

	e.curGain.Store(e.gain.Advance(now))
	e.curRate.Store(e.rate.Advance(now))
}

// gainTarget maps velocity to gain. Fast motion is quiet, slow effortful
// motion is loud; below the deadzone the hinge is considered at rest.
func (e *CreakEngine) gainTarget(v float64) float64 {
	if v < e.cfg.VelocityDeadzone {
		return 0
	}
	t := smoothstep(e.cfg.VelocityFull-0.5, e.cfg.VelocityQuiet+0.5, v)
	return clamp(1-t, 0, 1)
}

// rateTarget maps velocity linearly into the playback-rate window.
func (e *CreakEngine) rateTarget(v float64) float64 {
	n := v / e.cfg.VelocityQuiet
	return clamp(e.cfg.MinRate+n*(e.cfg.MaxRate-e.cfg.MinRate), e.cfg.MinRate, e.cfg.MaxRate)
}

func (e *CreakEngine) CurrentVelocity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Velocity()
}

func (e *CreakEngine) StatusDescription() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ""
	}
	return fmt.Sprintf("creak: gain %.2f rate %.2fx vel %.1f deg/s",
		e.gain.Current(), e.rate.Current(), e.tracker.Velocity())
}

// RenderSample produces one output sample. Runs on the audio render
// goroutine: no locks, no allocation. The buffer is read at a fractional
// position with 4-point Hermite interpolation and wraps as a loop.
func (e *CreakEngine) RenderSample() float32 {
	if !e.active.Load() {
		return 0
	}
	gain := e.curGain.Load()
	rate := e.curRate.Load()

	n := len(e.buf)
	i := int(e.pos)
	frac := e.pos - float64(i)

	xm1 := float64(e.buf[(i-1+n)%n])
	x0 := float64(e.buf[i%n])
	x1 := float64(e.buf[(i+1)%n])
	x2 := float64(e.buf[(i+2)%n])
	s := interp.Hermite4(frac, xm1, x0, x1, x2) * gain

	e.pos += rate * e.step
	for e.pos >= float64(n) {
		e.pos -= float64(n)
	}

	return float32(clamp(s, MIN_SAMPLE, MAX_SAMPLE))
}
