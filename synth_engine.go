// synth_engine.go - Block-based additive synthesis engine

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

const (
	DEFAULT_BLOCK_LEN       = 256
	DEFAULT_RATE_MULTIPLIER = 16 // sample rate = block length * multiplier
	ENGINE_CHANNELS         = 1
)

var ErrRateMultiplier = errors.New("rate multiplier must be positive")

type EngineConfig struct {
	BlockLen       int
	RateMultiplier int
	ADSR           ADSRParams
	Mode           WaveformMode
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BlockLen:       DEFAULT_BLOCK_LEN,
		RateMultiplier: DEFAULT_RATE_MULTIPLIER,
		ADSR:           DefaultADSRParams(),
		Mode:           WaveSine,
	}
}

func (c EngineConfig) Validate() error {
	if !isPowerOfTwo(c.BlockLen) || c.BlockLen < 8 {
		// N/2-2 voices must leave at least one slot.
		return fmt.Errorf("block length %d: %w", c.BlockLen, ErrBlockLength)
	}
	if c.RateMultiplier <= 0 {
		return fmt.Errorf("rate multiplier %d: %w", c.RateMultiplier, ErrRateMultiplier)
	}
	if c.Mode >= waveModeCount {
		return fmt.Errorf("mode %d: %w", c.Mode, ErrUnknownMode)
	}
	if err := c.ADSR.Validate(); err != nil {
		return err
	}
	return nil
}

// Engine renders blocks of N samples by inverse transforming a spectrum built
// from the shared voice table. Buffers are private to the Engine; the
// ControlSurface is shared with clones and input collaborators. One Engine
// must be driven from a single goroutine.
type Engine struct {
	// Hot path
	wp       int
	dt       float32
	window   []complex64 // rendered block, real part is the sample
	spectrum []complex64
	amps     []float32
	fft      *Transformer

	control        *ControlSurface
	rateMultiplier int
	failures       *atomic.Uint64 // shared with clones
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	fft, err := NewTransformer(cfg.BlockLen)
	if err != nil {
		return nil, err
	}

	control := newControlSurface(cfg.BlockLen/2-2, cfg.ADSR, cfg.Mode)
	return newEngine(control, fft, cfg.RateMultiplier, &atomic.Uint64{}), nil
}

func newEngine(control *ControlSurface, fft *Transformer, mul int, failures *atomic.Uint64) *Engine {
	n := fft.Len()
	return &Engine{
		wp:             n, // first call renders
		dt:             1 / float32(mul),
		window:         make([]complex64, n),
		spectrum:       make([]complex64, n),
		amps:           make([]float32, len(control.voices)),
		fft:            fft,
		control:        control,
		rateMultiplier: mul,
		failures:       failures,
	}
}

// Clone returns an Engine with its own buffers and read pointer that shares
// this Engine's ControlSurface. Typically one instance feeds the audio device
// and a clone feeds a visualizer with NextSample(false).
func (e *Engine) Clone() *Engine {
	return newEngine(e.control, e.fft.clone(), e.rateMultiplier, e.failures)
}

func (e *Engine) Control() *ControlSurface {
	return e.control
}

func (e *Engine) BlockLen() int {
	return len(e.window)
}

func (e *Engine) SampleRate() int {
	return len(e.window) * e.rateMultiplier
}

func (e *Engine) Channels() int {
	return ENGINE_CHANNELS
}

// BlockDuration is the envelope tick in seconds.
func (e *Engine) BlockDuration() float32 {
	return e.dt
}

// Failures counts blocks replaced by silence after an internal fault.
func (e *Engine) Failures() uint64 {
	return e.failures.Load()
}

// NextSample returns the next sample of the stream. advance selects whether
// block regeneration moves envelope time forward (the audio role) or only
// peeks at it (inspection clones).
func (e *Engine) NextSample(advance bool) float32 {
	if e.wp >= len(e.window) {
		e.renderBlock(advance)
	}
	v := real(e.window[e.wp])
	e.wp++
	return v
}

// Fill writes len(out) consecutive samples.
func (e *Engine) Fill(out []float32, advance bool) {
	for i := range out {
		out[i] = e.NextSample(advance)
	}
}

// Block re-renders a full block from the current state and returns it as
// real samples in out. The read pointer is left at the end so the next
// NextSample renders fresh. Intended for peek clones.
func (e *Engine) Block(out []float32, advance bool) {
	e.wp = len(e.window)
	e.Fill(out[:min(len(out), len(e.window))], advance)
	e.wp = len(e.window)
}

func (e *Engine) renderBlock(advance bool) {
	defer func() {
		if r := recover(); r != nil {
			e.silence()
		}
		e.wp = 0
	}()

	cs := e.control
	mode := cs.Mode()
	held := cs.Sustain()
	dt := max(e.dt, 0)

	for i := range e.amps {
		if advance {
			e.amps[i] = cs.advanceVoice(i, dt, held)
		} else {
			e.amps[i] = cs.voices[i].load().Peek(&cs.adsr)
		}
	}

	BuildSpectrum(mode, e.amps, e.spectrum)
	copy(e.window, e.spectrum)
	e.fft.Transform(false, e.window)

	for _, c := range e.window {
		if r := float64(real(c)); math.IsNaN(r) || math.IsInf(r, 0) {
			e.silence()
			return
		}
	}
}

func (e *Engine) silence() {
	clear(e.window)
	e.failures.Add(1)
}
