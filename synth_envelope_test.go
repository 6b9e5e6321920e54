package main

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func approxEq(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

func TestADSRParams_Validate(t *testing.T) {
	if err := DefaultADSRParams().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}

	bad := []ADSRParams{
		{AttackLevel: 0, SustainLevel: 0.3, AttackDur: 0.1},
		{AttackLevel: 0.4, SustainLevel: -0.1},
		{AttackLevel: 0.4, AttackDur: float32(math.NaN())},
		{AttackLevel: 0.4, ReleaseDur: float32(math.Inf(1))},
		{AttackLevel: 0.4, SustainDur: -1},
	}
	for i, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrADSRParams) {
			t.Fatalf("case %d: expected ErrADSRParams, got %v", i, err)
		}
	}
}

func TestNoteState_SilentStaysSilent(t *testing.T) {
	p := DefaultADSRParams()
	s, amp := NoteState{}.Advance(&p, 0.1, true)
	if s.Phase != NoteSilent || amp != 0 {
		t.Fatalf("silent advanced to %v amp %v", s, amp)
	}
	if got := (NoteState{}).Peek(&p); got != 0 {
		t.Fatalf("silent peek %v", got)
	}
}

func TestNoteState_FullEnvelopeLength(t *testing.T) {
	p := DefaultADSRParams()
	const dt = 1.0 / 16
	total := p.AttackDur + p.DecayDur + p.SustainDur + p.ReleaseDur

	s, ok := NoteState{}.Hit(&p, true)
	if !ok || s.Phase != NoteAttack || s.Remaining != p.AttackDur {
		t.Fatalf("hit from silent gave %+v ok=%v", s, ok)
	}

	steps := 0
	for s.Phase != NoteSilent {
		s, _ = s.Advance(&p, dt, true)
		steps++
		if steps > 1000 {
			t.Fatal("envelope never finished")
		}
	}
	want := int(math.Ceil(float64(total / dt)))
	if steps != want {
		t.Fatalf("envelope took %d steps, want %d", steps, want)
	}
}

func TestNoteState_PhaseSequence(t *testing.T) {
	p := ADSRParams{AttackLevel: 0.5, SustainLevel: 0.25, AttackDur: 0.1, DecayDur: 0.1, SustainDur: 0.1, ReleaseDur: 0.1}
	s, _ := NoteState{}.Hit(&p, true)

	var seen []NotePhase
	for s.Phase != NoteSilent {
		if len(seen) == 0 || seen[len(seen)-1] != s.Phase {
			seen = append(seen, s.Phase)
		}
		s, _ = s.Advance(&p, 0.01, true)
	}
	want := []NotePhase{NoteAttack, NoteDecay, NoteSustain, NoteRelease}
	if len(seen) != len(want) {
		t.Fatalf("phases %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("phases %v, want %v", seen, want)
		}
	}
}

func TestNoteState_AttackRisesToPeak(t *testing.T) {
	p := DefaultADSRParams()
	s, _ := NoteState{}.Hit(&p, true)
	prev := float32(-1)
	for s.Phase == NoteAttack {
		var amp float32
		s, amp = s.Advance(&p, 0.01, true)
		if amp < prev {
			t.Fatalf("attack amplitude fell from %v to %v", prev, amp)
		}
		if amp > p.AttackLevel+1e-6 {
			t.Fatalf("attack amplitude %v above peak %v", amp, p.AttackLevel)
		}
		prev = amp
	}
	if got := s.Peek(&p); !approxEq(got, p.AttackLevel, 0.03) {
		t.Fatalf("decay entry level %v, want about %v", got, p.AttackLevel)
	}
}

func TestNoteState_OvershootCarries(t *testing.T) {
	p := DefaultADSRParams()
	s := NoteState{Phase: NoteAttack, Remaining: 0.01}
	s, _ = s.Advance(&p, 0.03, true)
	if s.Phase != NoteDecay {
		t.Fatalf("phase %v, want decay", s.Phase)
	}
	if !approxEq(s.Remaining, p.DecayDur-0.02, 1e-6) {
		t.Fatalf("decay remaining %v, want %v", s.Remaining, p.DecayDur-0.02)
	}
}

func TestNoteState_ZeroLengthPhasesSkipped(t *testing.T) {
	p := ADSRParams{AttackLevel: 0.5, SustainLevel: 0.3, AttackDur: 0.1, DecayDur: 0, SustainDur: 0.2, ReleaseDur: 0.1}
	s := NoteState{Phase: NoteAttack, Remaining: 0.05}
	s, _ = s.Advance(&p, 0.05, true)
	if s.Phase != NoteSustain {
		t.Fatalf("phase %v, want sustain", s.Phase)
	}
}

func TestNoteState_SustainShortenedWithoutPedal(t *testing.T) {
	p := DefaultADSRParams()
	s := NoteState{Phase: NoteSustain, Remaining: p.SustainDur}

	held, _ := s.Advance(&p, 0.06, true)
	if held.Phase != NoteSustain {
		t.Fatalf("held sustain ended early: %+v", held)
	}

	free, _ := s.Advance(&p, 0.06, false)
	if free.Phase != NoteRelease {
		t.Fatalf("unheld sustain phase %v, want release", free.Phase)
	}
	want := p.ReleaseDur - (0.06 - p.SustainDur/4)
	if !approxEq(free.Remaining, want, 1e-6) {
		t.Fatalf("release remaining %v, want %v", free.Remaining, want)
	}
}

func TestNoteState_DecayIntoSustainUsesPedal(t *testing.T) {
	p := DefaultADSRParams()
	s := NoteState{Phase: NoteDecay, Remaining: 0.01}

	held, _ := s.Advance(&p, 0.01, true)
	if held.Phase != NoteSustain || !approxEq(held.Remaining, p.SustainDur, 1e-6) {
		t.Fatalf("held: %+v", held)
	}
	free, _ := s.Advance(&p, 0.01, false)
	if free.Phase != NoteSustain || !approxEq(free.Remaining, p.SustainDur/4, 1e-6) {
		t.Fatalf("free: %+v", free)
	}
}

func TestNoteState_HitIgnoredWhileSounding(t *testing.T) {
	p := DefaultADSRParams()
	for _, s := range []NoteState{
		{Phase: NoteAttack, Remaining: 0.1},
		{Phase: NoteDecay, Remaining: 0.02},
		{Phase: NoteSustain, Remaining: 0.1},
	} {
		got, ok := s.Hit(&p, true)
		if ok || got != s {
			t.Fatalf("hit changed %+v to %+v", s, got)
		}
	}
}

func TestNoteState_RetriggerFromReleaseIsContinuous(t *testing.T) {
	p := DefaultADSRParams()
	for _, rem := range []float32{0.15, 0.1, 0.05, 0.01} {
		s := NoteState{Phase: NoteRelease, Remaining: rem}
		before := s.Peek(&p)
		hit, ok := s.Hit(&p, true)
		if !ok || hit.Phase != NoteAttack {
			t.Fatalf("rem=%v: retrigger gave %+v", rem, hit)
		}
		if after := hit.Peek(&p); !approxEq(before, after, 1e-5) {
			t.Fatalf("rem=%v: level jumped %v -> %v", rem, before, after)
		}
	}
}

func TestNoteState_RetriggerAtSustainLevelSustains(t *testing.T) {
	p := ADSRParams{AttackLevel: 0.3, SustainLevel: 0.5, AttackDur: 0.1, DecayDur: 0.1, SustainDur: 0.2, ReleaseDur: 0.2}
	s := NoteState{Phase: NoteRelease, Remaining: p.ReleaseDur}
	before := s.Peek(&p)
	hit, ok := s.Hit(&p, false)
	if !ok || hit.Phase != NoteSustain {
		t.Fatalf("got %+v, want sustain", hit)
	}
	if !approxEq(hit.Remaining, p.SustainDur/4, 1e-6) {
		t.Fatalf("sustain remaining %v", hit.Remaining)
	}
	if after := hit.Peek(&p); !approxEq(before, after, 1e-6) {
		t.Fatalf("level jumped %v -> %v", before, after)
	}
}

func TestNoteState_RetriggerAboveAttackPeakResumesDecay(t *testing.T) {
	p := ADSRParams{AttackLevel: 0.2, SustainLevel: 0.6, AttackDur: 0.1, DecayDur: 0.08, SustainDur: 0.2, ReleaseDur: 0.2}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	s := NoteState{Phase: NoteRelease, Remaining: 0.1}
	before := s.Peek(&p)
	if !approxEq(before, 0.3, 1e-6) {
		t.Fatalf("release level %v, want 0.3", before)
	}
	hit, ok := s.Hit(&p, true)
	if !ok || hit.Phase != NoteDecay {
		t.Fatalf("got %+v, want decay", hit)
	}
	if after := hit.Peek(&p); !approxEq(before, after, 1e-6) {
		t.Fatalf("level jumped %v -> %v", before, after)
	}
	// The resumed decay keeps rising toward sustain.
	next, _ := hit.Advance(&p, 0.01, true)
	if next.Peek(&p) <= before {
		t.Fatalf("decay did not rise from %v: %+v", before, next)
	}
}

func TestNoteState_RetriggerContinuousForValidParams(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	level := func() float32 { return 0.01 + rng.Float32()*0.99 }
	dur := func() float32 { return 0.001 + rng.Float32() }

	for i := 0; i < 5000; i++ {
		p := ADSRParams{
			AttackLevel:  level(),
			SustainLevel: level(),
			AttackDur:    dur(),
			DecayDur:     dur(),
			SustainDur:   dur(),
			ReleaseDur:   dur(),
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		s := NoteState{Phase: NoteRelease, Remaining: rng.Float32() * p.ReleaseDur}
		before := s.Peek(&p)
		hit, ok := s.Hit(&p, i%2 == 0)
		if !ok {
			t.Fatalf("case %d: retrigger ignored", i)
		}
		if after := hit.Peek(&p); !approxEq(before, after, 1e-4) {
			t.Fatalf("case %d %+v: level jumped %v -> %v (%+v)", i, p, before, after, hit)
		}
	}
}

func TestNoteState_PackRoundTrip(t *testing.T) {
	s := NoteState{Phase: NoteRelease, Remaining: 0.125}
	if got := unpackNoteState(s.pack()); got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestNoteToIndex(t *testing.T) {
	cases := []struct{ note, idx int }{
		{0, 0},
		{12, 17},
		{24, 49},
		{-12, -8},
	}
	for _, c := range cases {
		if got := noteToIndex(c.note); got != c.idx {
			t.Fatalf("noteToIndex(%d) = %d, want %d", c.note, got, c.idx)
		}
	}
}

func TestMaxNoteFor(t *testing.T) {
	if got := maxNoteFor(126); got != 37 {
		t.Fatalf("maxNoteFor(126) = %d, want 37", got)
	}
	for _, n := range []int{2, 6, 14, 30, 62, 126, 254, 510, 1022, 2046} {
		m := maxNoteFor(n)
		if noteToIndex(m) >= n {
			t.Fatalf("n=%d: max note %d maps to %d", n, m, noteToIndex(m))
		}
		if noteToIndex(m+1) < n {
			t.Fatalf("n=%d: note %d also fits", n, m+1)
		}
	}
	if got := maxNoteFor(0); got != -1 {
		t.Fatalf("maxNoteFor(0) = %d, want -1", got)
	}
}

func TestNoteState_EnvelopeLengthWithoutPedal(t *testing.T) {
	p := DefaultADSRParams()
	const dt = 1.0 / 16
	total := p.AttackDur + p.DecayDur + p.SustainDur/4 + p.ReleaseDur

	s, _ := NoteState{}.Hit(&p, false)
	steps := 0
	for s.Phase != NoteSilent && steps < 1000 {
		s, _ = s.Advance(&p, dt, false)
		steps++
	}
	want := int(math.Ceil(float64(total / dt)))
	if steps != want {
		t.Fatalf("envelope took %d steps, want %d", steps, want)
	}
}

func TestNoteState_AttackCurve(t *testing.T) {
	p := ADSRParams{AttackLevel: 0.5, SustainLevel: 0.3, AttackDur: 0.1, DecayDur: 0.04, SustainDur: 0.2, ReleaseDur: 0.15}
	s, _ := NoteState{}.Hit(&p, false)
	for k := 0; k <= 10; k++ {
		var amp float32
		s, amp = s.Advance(&p, 0.01, false)
		x := float32(k) / 10
		if want := 0.5 * x * x; !approxEq(amp, want, 1e-4) {
			t.Fatalf("tick %d: amplitude %v, want %v", k, amp, want)
		}
	}
}
