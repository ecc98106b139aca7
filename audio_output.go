// audio_output.go - Audio backend interface shared by all synthesis engines

package main

// SampleSource produces one mono float32 sample per call. Implementations
// must be safe to call from the audio render goroutine without blocking,
// allocating, or taking any lock the control path could hold unboundedly.
type SampleSource interface {
	RenderSample() float32
}

// AudioOutput abstracts the audio subsystem. The real implementation wraps
// oto; the headless build carries a stub with identical semantics so the
// engine logic runs in environments without an audio device.
type AudioOutput interface {
	// SetSource registers the sample source the render callback pulls from.
	SetSource(src SampleSource)
	// Start begins issuing render callbacks. Idempotent.
	Start() error
	// Stop halts render callbacks without releasing the device. Safe to
	// call while a render callback is mid-flight; the callback completes
	// against the last-good source snapshot. Idempotent.
	Stop()
	// Close releases the device.
	Close()
	// IsStarted reports whether callbacks are being issued.
	IsStarted() bool
	// SampleRate returns the output sample rate in Hz.
	SampleRate() int
}
