//go:build headless

// audio_backend_headless.go - Stub audio output for device-less environments

package main

import "sync"

type OtoPlayer struct {
	src        SampleSource
	sampleRate int
	started    bool
	mutex      sync.Mutex
}

func NewAudioOutput(sampleRate int) (AudioOutput, error) {
	return &OtoPlayer{sampleRate: sampleRate}, nil
}

func (op *OtoPlayer) SetSource(src SampleSource) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.src = src
}

func (op *OtoPlayer) Start() error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.started = true
	return nil
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.Stop()
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}

func (op *OtoPlayer) SampleRate() int {
	return op.sampleRate
}
