//go:build headless

package main

import (
	"sync/atomic"
	"time"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:headless")
}

// OtoPlayer without a device: a goroutine pulls blocks at the engine's
// sample rate so envelopes still advance in real time.
type OtoPlayer struct {
	started   bool
	engine    atomic.Pointer[Engine]
	stop      chan struct{}
	done      chan struct{}
	sampleBuf []float32
}

func NewOtoPlayer(sampleRate, channels int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(engine *Engine) {
	op.engine.Store(engine)
	op.sampleBuf = make([]float32, engine.BlockLen())
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	engine := op.engine.Load()
	if engine == nil {
		clear(p)
		return len(p), nil
	}
	samples := make([]float32, len(p)/4)
	engine.Fill(samples, true)
	return writeFloat32LE(p, samples), nil
}

func (op *OtoPlayer) Start() {
	engine := op.engine.Load()
	if op.started || engine == nil {
		return
	}
	op.started = true
	op.stop = make(chan struct{})
	op.done = make(chan struct{})
	period := time.Duration(float64(time.Second) * float64(engine.BlockDuration()))
	go func() {
		defer close(op.done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-op.stop:
				return
			case <-ticker.C:
				engine.Fill(op.sampleBuf, true)
			}
		}
	}()
}

func (op *OtoPlayer) Stop() {
	if !op.started {
		return
	}
	close(op.stop)
	<-op.done
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.Stop()
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
