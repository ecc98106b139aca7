// engine_creak_test.go - Tests for the loop-playback synthesis engine.

package main

import (
	"math"
	"strings"
	"testing"
	"time"
)

func testLoopBuffer(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(0.5 * math.Sin(2*math.Pi*float64(i)/64))
	}
	return buf
}

func newTestCreakEngine(t *testing.T, out *testOutput) *CreakEngine {
	t.Helper()
	e, err := NewCreakEngine(DefaultCreakConfig(), testLoopBuffer(512), SAMPLE_RATE, out)
	if err != nil {
		t.Fatalf("NewCreakEngine failed: %v", err)
	}
	return e
}

func TestCreakEngineConstructionRequiresBuffer(t *testing.T) {
	if _, err := NewCreakEngine(DefaultCreakConfig(), nil, SAMPLE_RATE, &testOutput{}); err == nil {
		t.Fatalf("expected construction failure without a sample buffer")
	}
	if _, err := NewCreakEngine(DefaultCreakConfig(), testLoopBuffer(512), 0, &testOutput{}); err == nil {
		t.Fatalf("expected construction failure with invalid sample rate")
	}
}

func TestCreakGainMappingBounds(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	cfg := e.cfg

	if got := e.gainTarget(0); got != 0 {
		t.Fatalf("gain at rest should be 0, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityDeadzone - 0.01); got != 0 {
		t.Fatalf("gain below deadzone should be 0, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityFull - 0.5); got != 1 {
		t.Fatalf("gain at lower smoothstep edge should saturate at 1, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityFull); got < 0.99 {
		t.Fatalf("gain at velocity_full should be near 1, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityQuiet); got > 0.01 {
		t.Fatalf("gain at velocity_quiet should be near 0, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityQuiet + 0.5); got != 0 {
		t.Fatalf("gain at upper smoothstep edge should saturate at 0, got %v", got)
	}
	if got := e.gainTarget(cfg.VelocityQuiet * 3); got != 0 {
		t.Fatalf("gain far above velocity_quiet should be 0, got %v", got)
	}
}

func TestCreakGainMappingMonotonicInverse(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	prev := 2.0
	for v := e.cfg.VelocityDeadzone; v <= e.cfg.VelocityQuiet+1; v += 0.25 {
		got := e.gainTarget(v)
		if got > prev {
			t.Fatalf("gain increased with velocity at %v: %v > %v", v, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("gain %v outside [0,1] at velocity %v", got, v)
		}
		prev = got
	}
}

func TestCreakRateMappingClamped(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	cfg := e.cfg

	if got := e.rateTarget(0); got != cfg.MinRate {
		t.Fatalf("rate at rest should be min rate %v, got %v", cfg.MinRate, got)
	}
	if got := e.rateTarget(cfg.VelocityQuiet); got != cfg.MaxRate {
		t.Fatalf("rate at velocity_quiet should be max rate %v, got %v", cfg.MaxRate, got)
	}
	if got := e.rateTarget(cfg.VelocityQuiet * 10); got != cfg.MaxRate {
		t.Fatalf("rate should clamp at max rate, got %v", got)
	}
	mid := e.rateTarget(cfg.VelocityQuiet / 2)
	want := cfg.MinRate + (cfg.MaxRate-cfg.MinRate)/2
	if diff := mid - want; diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("rate at half velocity_quiet: got %v, want %v", mid, want)
	}
}

func TestCreakStartStopIdempotent(t *testing.T) {
	out := &testOutput{}
	e := newTestCreakEngine(t, out)

	if !e.Start() {
		t.Fatalf("start failed")
	}
	if !e.Start() {
		t.Fatalf("second start should remain true")
	}
	if out.startCalls != 1 {
		t.Fatalf("expected 1 backend start, got %d", out.startCalls)
	}
	if !e.IsRunning() || !out.started {
		t.Fatalf("engine should be running after start")
	}
	if status := e.StatusDescription(); !strings.Contains(status, "creak") {
		t.Fatalf("unexpected status while running: %q", status)
	}

	e.Stop()
	e.Stop()
	if out.stopCalls != 1 {
		t.Fatalf("expected 1 backend stop, got %d", out.stopCalls)
	}
	if e.IsRunning() || out.started {
		t.Fatalf("engine should be stopped")
	}
	if status := e.StatusDescription(); status != "" {
		t.Fatalf("expected empty status when stopped, got %q", status)
	}
}

func TestCreakStartFailureLeavesEngineStopped(t *testing.T) {
	out := &testOutput{failStart: true}
	e := newTestCreakEngine(t, out)

	if e.Start() {
		t.Fatalf("start should report backend activation failure")
	}
	if e.IsRunning() {
		t.Fatalf("engine must stay stopped after activation failure")
	}
	// Recoverable: a later start with a working backend succeeds.
	out.failStart = false
	if !e.Start() {
		t.Fatalf("retry after activation failure should succeed")
	}
}

func TestCreakUpdateRampsTowardMappedTargets(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	now := time.Now()

	// Seed, then a slow 5-degree swing: inside the audible window.
	e.updateAt(0, now)
	e.updateAt(5, now.Add(tick))

	vel := e.CurrentVelocity()
	if vel <= e.cfg.VelocityDeadzone {
		t.Fatalf("setup failed: velocity %v below deadzone", vel)
	}
	target := e.gainTarget(vel)
	got := e.curGain.Load()
	if got <= 0 || got >= target {
		t.Fatalf("ramped gain %v should be strictly between 0 and target %v", got, target)
	}
	if rate := e.curRate.Load(); rate < e.cfg.MinRate || rate > e.cfg.MaxRate {
		t.Fatalf("ramped rate %v outside [%v, %v]", rate, e.cfg.MinRate, e.cfg.MaxRate)
	}
}

func TestCreakFirstSampleDoesNotMoveRampTargets(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	e.updateAt(135, time.Now())
	if got := e.gain.Target(); got != 0 {
		t.Fatalf("seeding sample moved gain target to %v", got)
	}
	if got := e.rate.Target(); got != 1 {
		t.Fatalf("seeding sample moved rate target to %v", got)
	}
	if got := e.curGain.Load(); got != 0 {
		t.Fatalf("seeding sample produced audible gain %v", got)
	}
	if got := e.curRate.Load(); got != 1 {
		t.Fatalf("seeding sample moved published rate to %v", got)
	}
}

func TestCreakRenderLoopsAndAppliesGain(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	e.active.Store(true)
	e.curGain.Store(1)
	e.curRate.Store(1)

	n := len(e.buf)
	var nonZero bool
	for i := 0; i < n*2; i++ {
		s := float64(e.RenderSample())
		if s < MIN_SAMPLE || s > MAX_SAMPLE {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("expected audible output at gain 1")
	}
	if e.pos >= float64(n) {
		t.Fatalf("playback position did not wrap: %v", e.pos)
	}

	e.curGain.Store(0)
	for i := 0; i < 64; i++ {
		if s := e.RenderSample(); s != 0 {
			t.Fatalf("expected silence at gain 0, got %v", s)
		}
	}
}

func TestCreakRenderSilentWhenInactive(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	e.curGain.Store(1)
	for i := 0; i < 16; i++ {
		if s := e.RenderSample(); s != 0 {
			t.Fatalf("inactive engine rendered %v", s)
		}
	}
}

func TestCreakRestartReseedsEstimator(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	now := time.Now()

	e.Start()
	e.updateAt(0, now)
	e.updateAt(20, now.Add(tick))
	if e.CurrentVelocity() <= 0 {
		t.Fatalf("setup failed, no velocity")
	}
	e.Stop()
	e.Start()

	// First sample after restart seeds fresh state.
	e.updateAt(170, now.Add(2*tick))
	if vel := e.CurrentVelocity(); vel != 0 {
		t.Fatalf("restart carried stale motion state, velocity %v", vel)
	}
}
