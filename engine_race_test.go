// engine_race_test.go - Concurrent control-tick / render-path handoff tests.
//
// Run with -race: the ramped parameters cross to the render goroutine
// through atomic slots, and Stop must be safe while a render is mid-flight.

package main

import (
	"sync"
	"testing"
	"time"
)

func TestCreakParamHandoffUnderConcurrentRender(t *testing.T) {
	e := newTestCreakEngine(t, &testOutput{})
	if !e.Start() {
		t.Fatalf("start failed")
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			s := float64(e.RenderSample())
			if s < MIN_SAMPLE || s > MAX_SAMPLE {
				t.Errorf("render sample out of range: %v", s)
				return
			}
		}
	}()

	now := time.Now()
	angle := 10.0
	for i := 0; i < 500; i++ {
		angle += 0.8
		if angle > 170 {
			angle = 10
		}
		e.updateAt(angle, now)
		now = now.Add(tick)
	}
	close(done)
	wg.Wait()

	e.Stop()
	if vel := e.CurrentVelocity(); vel < 0 {
		t.Fatalf("negative velocity after concurrent run: %v", vel)
	}
}

func TestThereminStopWhileRendering(t *testing.T) {
	e := newTestThereminEngine(t, &testOutput{})
	if !e.Start() {
		t.Fatalf("start failed")
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			e.RenderSample()
		}
	}()

	now := time.Now()
	for i := 0; i < 200; i++ {
		e.updateAt(float64(20+i%120), now)
		now = now.Add(tick)
	}
	// Stop from the control thread while the render goroutine keeps
	// pulling samples; it must only ever observe silence or last-good
	// parameters, never torn state.
	e.Stop()
	for i := 0; i < 200; i++ {
		e.updateAt(90, now)
		now = now.Add(tick)
	}
	close(done)
	wg.Wait()

	if e.IsRunning() {
		t.Fatalf("engine should be stopped")
	}
}
