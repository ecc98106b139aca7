//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

package main

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

type OtoPlayer struct {
	ctx        *oto.Context
	player     *oto.Player
	src        atomic.Value // SampleSource, atomic for lock-free Read()
	sampleBuf  []float32    // Pre-allocated sample buffer
	sampleRate int
	started    bool
	mutex      sync.Mutex // Only for setup/control operations
}

func NewAudioOutput(sampleRate int) (AudioOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{
		ctx:        ctx,
		sampleRate: sampleRate,
		// Pre-allocate for typical oto buffer sizes (4096 bytes = 1024 float32 samples)
		sampleBuf: make([]float32, 4096),
	}, nil
}

func (op *OtoPlayer) SetSource(src SampleSource) {
	op.src.Store(&src)
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	// Load the source atomically - no lock needed for the hot path.
	srcPtr, _ := op.src.Load().(*SampleSource)
	if srcPtr == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	src := *srcPtr

	numSamples := len(p) / 4

	// This should rarely happen after construction.
	if len(op.sampleBuf) < numSamples {
		op.sampleBuf = make([]float32, numSamples)
	}
	samples := op.sampleBuf[:numSamples]

	for i := 0; i < numSamples; i++ {
		samples[i] = src.RenderSample()
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (op *OtoPlayer) Start() error {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started {
		return nil
	}
	if op.player == nil {
		op.player = op.ctx.NewPlayer(op)
	}
	op.player.Play()
	op.started = true
	return nil
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}

func (op *OtoPlayer) SampleRate() int {
	return op.sampleRate
}
