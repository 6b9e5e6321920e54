// synth_envelope.go - Per-voice ADSR state machine

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

	"github.com/chewxy/math32"
)

var ErrADSRParams = errors.New("invalid ADSR parameters")

type NotePhase uint32

const (
	NoteSilent NotePhase = iota
	NoteAttack
	NoteDecay
	NoteSustain
	NoteRelease
)

func (p NotePhase) String() string {
	switch p {
	case NoteSilent:
		return "silent"
	case NoteAttack:
		return "attack"
	case NoteDecay:
		return "decay"
	case NoteSustain:
		return "sustain"
	case NoteRelease:
		return "release"
	}
	return fmt.Sprintf("phase(%d)", uint32(p))
}

// ADSRParams holds levels (linear amplitude) and durations (seconds).
type ADSRParams struct {
	AttackLevel  float32
	SustainLevel float32
	AttackDur    float32
	DecayDur     float32
	ReleaseDur   float32
	SustainDur   float32
}

// DefaultADSRParams returns the stock patch.
func DefaultADSRParams() ADSRParams {
	return ADSRParams{
		AttackLevel:  0.4,
		SustainLevel: 0.3,
		AttackDur:    0.2,
		DecayDur:     0.04,
		ReleaseDur:   0.15,
		SustainDur:   0.2,
	}
}

func (p ADSRParams) Validate() error {
	fields := []struct {
		name  string
		value float32
	}{
		{"attack level", p.AttackLevel},
		{"sustain level", p.SustainLevel},
		{"attack duration", p.AttackDur},
		{"decay duration", p.DecayDur},
		{"release duration", p.ReleaseDur},
		{"sustain duration", p.SustainDur},
	}
	for _, f := range fields {
		v := float64(f.value)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s %v: %w", f.name, f.value, ErrADSRParams)
		}
	}
	if p.AttackLevel == 0 {
		return fmt.Errorf("attack level must be positive: %w", ErrADSRParams)
	}
	return nil
}

// sustainFor is the sustain-phase length for the current pedal state.
// Releasing the pedal shortens sustain to a quarter.
func (p *ADSRParams) sustainFor(held bool) float32 {
	if held {
		return p.SustainDur
	}
	return p.SustainDur / 4
}

// NoteState is one voice: a phase tag plus the time left in that phase.
type NoteState struct {
	Phase     NotePhase
	Remaining float32
}

func (s NoteState) pack() uint64 {
	return uint64(s.Phase)<<32 | uint64(math.Float32bits(s.Remaining))
}

func unpackNoteState(w uint64) NoteState {
	return NoteState{
		Phase:     NotePhase(w >> 32),
		Remaining: math.Float32frombits(uint32(w)),
	}
}

func lerp(t, lo, hi float32) float32 {
	return t*(hi-lo) + lo
}

func invLerp(v, lo, hi float32) float32 {
	return (v - lo) / (hi - lo)
}

// progress is how far through a phase of length dur we are, 0 at entry and 1
// at exit. Zero-length phases count as finished.
func progress(remaining, dur float32) float32 {
	if dur <= 0 {
		return 1
	}
	t := invLerp(remaining, dur, 0)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Peek returns the amplitude of the state without moving time.
func (s NoteState) Peek(p *ADSRParams) float32 {
	switch s.Phase {
	case NoteAttack:
		t := progress(s.Remaining, p.AttackDur)
		return lerp(t*t, 0, p.AttackLevel)
	case NoteDecay:
		return lerp(progress(s.Remaining, p.DecayDur), p.AttackLevel, p.SustainLevel)
	case NoteSustain:
		return p.SustainLevel
	case NoteRelease:
		return lerp(progress(s.Remaining, p.ReleaseDur), p.SustainLevel, 0)
	}
	return 0
}

// next arms the phase that follows s.Phase.
func (s NoteState) next(p *ADSRParams, held bool) NoteState {
	switch s.Phase {
	case NoteAttack:
		return NoteState{Phase: NoteDecay, Remaining: p.DecayDur}
	case NoteDecay:
		return NoteState{Phase: NoteSustain, Remaining: p.sustainFor(held)}
	case NoteSustain:
		return NoteState{Phase: NoteRelease, Remaining: p.ReleaseDur}
	}
	return NoteState{Phase: NoteSilent}
}

// Advance returns the amplitude of s and the state dt seconds later.
// Time overshooting a phase boundary carries into the following phase, so a
// full envelope lasts exactly the sum of its phase lengths.
func (s NoteState) Advance(p *ADSRParams, dt float32, held bool) (NoteState, float32) {
	if s.Phase == NoteSilent {
		return s, 0
	}
	amp := s.Peek(p)

	if s.Phase == NoteSustain && !held {
		s.Remaining = min(s.Remaining, p.sustainFor(false))
	}
	s.Remaining -= dt
	for s.Phase != NoteSilent && s.Remaining <= 0 {
		over := -s.Remaining
		s = s.next(p, held)
		s.Remaining -= over
	}
	if s.Phase == NoteSilent {
		s.Remaining = 0
	}
	return s, amp
}

// Hit applies a note-on. A silent voice starts its attack; a releasing voice
// re-enters the attack (or the decay, when sustain is above the attack peak)
// at the point whose amplitude matches its current one.
// Voices already sounding ignore the trigger. ok reports whether s changed.
func (s NoteState) Hit(p *ADSRParams, held bool) (NoteState, bool) {
	switch s.Phase {
	case NoteSilent:
		return NoteState{Phase: NoteAttack, Remaining: p.AttackDur}, true
	case NoteRelease:
		amp := s.Peek(p)
		if amp < p.AttackLevel {
			level := max(invLerp(amp, 0, p.AttackLevel), 0)
			// Attack is eased quadratically, so undo the easing before mapping
			// the level back onto attack time.
			resumed := lerp(math32.Sqrt(level), p.AttackDur, 0)
			return NoteState{Phase: NoteAttack, Remaining: resumed}, true
		}
		if amp >= p.SustainLevel || p.DecayDur <= 0 {
			return NoteState{Phase: NoteSustain, Remaining: p.sustainFor(held)}, true
		}
		// Sustain sits above the attack peak, so decay rises through amp.
		t := invLerp(amp, p.AttackLevel, p.SustainLevel)
		return NoteState{Phase: NoteDecay, Remaining: lerp(t, p.DecayDur, 0)}, true
	}
	return s, false
}

// Semitone to voice index: round(16.3516 * 2^(note/12)) - 16. Voice i
// sounds at spectrum bin i+1.
const (
	pitchBase   = 16.3516
	pitchOffset = 16
)

func noteToIndex(note int) int {
	f := pitchBase * math32.Pow(2, float32(note)/12)
	return int(math32.Floor(f+0.5)) - pitchOffset
}

// maxNoteFor is the highest semitone whose index fits a table of n voices.
func maxNoteFor(n int) int {
	if n <= 0 {
		return -1
	}
	note := int(12 * math.Log2(float64(n+pitchOffset)/pitchBase))
	for note >= 0 && noteToIndex(note) >= n {
		note--
	}
	for noteToIndex(note+1) < n {
		note++
	}
	return note
}
