// selector.go - Active-engine ownership and switch-over

package main

import (
	"log/slog"
	"sync"
)

// EngineSelector owns at most one active engine and routes control-tick
// angle samples to it. A switch fully stops the previous engine before the
// next one starts, so no two engines ever render concurrently.
type EngineSelector struct {
	mu     sync.Mutex
	active SynthEngine
}

func NewEngineSelector() *EngineSelector {
	return &EngineSelector{}
}

// SwitchTo stops the currently active engine (if any) and starts next.
// Passing nil just stops the active engine. Returns false if next failed to
// activate; in that case no engine is running afterward.
func (s *EngineSelector) SwitchTo(next SynthEngine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == next {
		if next == nil {
			return true
		}
		return next.IsRunning() || next.Start()
	}

	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}
	if next == nil {
		return true
	}
	if !next.Start() {
		slog.Warn("engine switch failed", "engine", next.Name())
		return false
	}
	s.active = next
	slog.Info("engine switched", "engine", next.Name())
	return true
}

// Update routes one angle sample to the active engine.
func (s *EngineSelector) Update(angle float64) {
	s.mu.Lock()
	engine := s.active
	s.mu.Unlock()
	if engine != nil {
		engine.Update(angle)
	}
}

// Active returns the currently active engine, or nil.
func (s *EngineSelector) Active() SynthEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop stops the active engine and clears it.
func (s *EngineSelector) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}
}

// Status returns the active engine's status line, or the empty string.
func (s *EngineSelector) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.StatusDescription()
}
