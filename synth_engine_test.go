package main

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, blockLen int) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig()
	cfg.BlockLen = blockLen
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EngineConfig)
		want   error
	}{
		{"not power of two", func(c *EngineConfig) { c.BlockLen = 100 }, ErrBlockLength},
		{"too short", func(c *EngineConfig) { c.BlockLen = 4 }, ErrBlockLength},
		{"zero multiplier", func(c *EngineConfig) { c.RateMultiplier = 0 }, ErrRateMultiplier},
		{"bad mode", func(c *EngineConfig) { c.Mode = waveModeCount }, ErrUnknownMode},
		{"bad adsr", func(c *EngineConfig) { c.ADSR.AttackLevel = 0 }, ErrADSRParams},
	}
	for _, tc := range cases {
		cfg := DefaultEngineConfig()
		tc.mutate(&cfg)
		if _, err := NewEngine(cfg); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestEngine_Geometry(t *testing.T) {
	e := newTestEngine(t, 256)
	if got := e.Control().VoiceCount(); got != 126 {
		t.Fatalf("voices %d, want 126", got)
	}
	if got := e.SampleRate(); got != 256*DEFAULT_RATE_MULTIPLIER {
		t.Fatalf("sample rate %d", got)
	}
	if got := e.BlockDuration(); got != 1.0/DEFAULT_RATE_MULTIPLIER {
		t.Fatalf("block duration %v", got)
	}
	if e.Channels() != 1 {
		t.Fatalf("channels %d", e.Channels())
	}
	if got := e.Control().MaxNote(); got != 37 {
		t.Fatalf("max note %d, want 37", got)
	}
}

func TestEngine_SilentWithoutHits(t *testing.T) {
	e := newTestEngine(t, 64)
	buf := make([]float32, 64*3)
	e.Fill(buf, true)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestEngine_HitSoundsOnFollowingBlock(t *testing.T) {
	const n = 64
	e := newTestEngine(t, n)
	cs := e.Control()
	cs.HitIndex(3)

	first := make([]float32, n)
	e.Fill(first, true)
	// Attack starts from zero amplitude.
	for i, v := range first {
		if v != 0 {
			t.Fatalf("first block sample %d = %v", i, v)
		}
	}

	p := cs.Params()
	amp := cs.Voice(3).Peek(&p)
	if amp <= 0 {
		t.Fatalf("voice not sounding after one block: %+v", cs.Voice(3))
	}
	second := make([]float32, n)
	e.Fill(second, true)
	for i, v := range second {
		want := float64(amp) * math.Sin(2*math.Pi*4*float64(i)/n)
		if math.Abs(float64(v)-want) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestEngine_VoiceDecaysToSilence(t *testing.T) {
	e := newTestEngine(t, 64)
	cs := e.Control()
	cs.SetSustain(true)
	cs.HitIndex(10)

	buf := make([]float32, 64)
	for block := 0; block < 20; block++ {
		e.Fill(buf, true)
	}
	if s := cs.Voice(10); s.Phase != NoteSilent {
		t.Fatalf("voice still %v after 20 blocks", s.Phase)
	}
	e.Fill(buf, true)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v after release", i, v)
		}
	}
}

func TestEngine_PeekCloneDoesNotAdvance(t *testing.T) {
	e := newTestEngine(t, 64)
	cs := e.Control()
	cs.HitIndex(5)
	e.Fill(make([]float32, 64), true)

	before := cs.Voice(5)
	peek := e.Clone()
	a := make([]float32, 64)
	b := make([]float32, 64)
	peek.Block(a, false)
	peek.Block(b, false)

	if after := cs.Voice(5); after != before {
		t.Fatalf("peek moved voice from %+v to %+v", before, after)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("peek blocks differ at %d", i)
		}
	}
	if peek.Control() != cs {
		t.Fatal("clone does not share control surface")
	}
}

func TestEngine_ModeChangeAtBlockBoundary(t *testing.T) {
	const n = 64
	e := newTestEngine(t, n)
	cs := e.Control()
	cs.HitIndex(0)
	e.Fill(make([]float32, n), true)

	// Switch mode halfway through a rendered block; the rest of that block
	// is already fixed.
	half := make([]float32, n/2)
	e.Fill(half, true)
	cs.SetMode(WaveSquare)
	rest := make([]float32, n/2)
	e.Fill(rest, true)

	amp := float64(half[n/4]) // sin(pi/2) on bin 1
	if amp <= 0 {
		t.Fatalf("voice not sounding: %v", amp)
	}
	for i, v := range rest {
		want := amp * math.Sin(2*math.Pi*float64(n/2+i)/n)
		if math.Abs(float64(v)-want) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", n/2+i, v, want)
		}
	}

	next := make([]float32, n)
	e.Fill(next, true)
	buf := make([]complex64, n)
	for i, v := range next {
		buf[i] = complex(v, 0)
	}
	tr, _ := NewTransformer(n)
	tr.Transform(true, buf)
	if math.Abs(float64(imag(buf[3]))) < 1e-6 {
		t.Fatal("next block has no third harmonic after switching to square")
	}
}

func TestEngine_FaultYieldsSilentBlock(t *testing.T) {
	fft, err := NewTransformer(16)
	if err != nil {
		t.Fatal(err)
	}
	// More voices than the spectrum has bins: rendering the top voice
	// indexes out of range.
	cs := newControlSurface(20, DefaultADSRParams(), WaveSine)
	cs.voices[19].word.Store(NoteState{Phase: NoteSustain, Remaining: 1}.pack())
	e := newEngine(cs, fft, DEFAULT_RATE_MULTIPLIER, &atomic.Uint64{})

	buf := make([]float32, 16)
	e.Fill(buf, false)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, want silence", i, v)
		}
	}
	if got := e.Failures(); got != 1 {
		t.Fatalf("failures %d, want 1", got)
	}

	// The stream keeps going.
	e.Fill(buf, false)
	if got := e.Failures(); got != 2 {
		t.Fatalf("failures %d, want 2", got)
	}
	if e.Clone().Failures() != 2 {
		t.Fatal("clone does not share the failure counter")
	}
}

func TestEngine_NegativeBlockDurationFreezesTime(t *testing.T) {
	e := newTestEngine(t, 64)
	e.dt = -1
	cs := e.Control()
	cs.HitIndex(2)
	before := cs.Voice(2)
	e.Fill(make([]float32, 128), true)
	if after := cs.Voice(2); after != before {
		t.Fatalf("negative dt moved voice from %+v to %+v", before, after)
	}
}

// TestEngine_ConcurrentControl stresses hits, pedal and mode changes from
// input goroutines while the audio role renders. The race detector is the
// oracle; the output must also stay finite and within unit peak.
// Run with: go test -race -run TestEngine_ConcurrentControl -count=1
func TestEngine_ConcurrentControl(t *testing.T) {
	e := newTestEngine(t, 256)
	cs := e.Control()
	peek := e.Clone()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var bad atomic.Value

	wg.Go(func() {
		note := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			cs.Hit(note % (cs.MaxNote() + 1))
			note++
		}
	})

	wg.Go(func() {
		i := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			cs.SetSustain(i%2 == 0)
			cs.SetMode(WaveformMode(i % int(waveModeCount)))
			if i%50 == 0 {
				cs.Release()
			}
			i++
		}
	})

	wg.Go(func() {
		buf := make([]float32, 512)
		for {
			select {
			case <-stop:
				return
			default:
			}
			e.Fill(buf, true)
			for _, v := range buf {
				if math.IsNaN(float64(v)) || math.Abs(float64(v)) > 1+1e-3 {
					bad.Store(v)
				}
			}
		}
	})

	wg.Go(func() {
		buf := make([]float32, 256)
		for {
			select {
			case <-stop:
				return
			default:
			}
			peek.Block(buf, false)
		}
	})

	time.Sleep(100 * time.Millisecond)
	close(stop)
	wg.Wait()

	if v := bad.Load(); v != nil {
		t.Fatalf("out of range sample %v", v)
	}
	if e.Failures() != 0 {
		t.Fatalf("failures %d", e.Failures())
	}
}
