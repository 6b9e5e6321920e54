// synth_control.go - Shared control surface between input and render roles

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
	"sync/atomic"
)

// voiceSlot holds a packed NoteState so that the render role and the control
// roles can both update it with single-word compare-and-swap.
type voiceSlot struct {
	word atomic.Uint64
}

func (v *voiceSlot) load() NoteState {
	return unpackNoteState(v.word.Load())
}

// update applies fn until the swap lands. fn must be pure; it may run more
// than once when a concurrent writer got in first.
func (v *voiceSlot) update(fn func(NoteState) NoteState) {
	for {
		old := v.word.Load()
		next := fn(unpackNoteState(old)).pack()
		if next == old || v.word.CompareAndSwap(old, next) {
			return
		}
	}
}

// ControlSurface is the state shared by every Engine cloned from the same
// root and by the input collaborators. All methods are non-blocking and safe
// for concurrent use.
type ControlSurface struct {
	voices  []voiceSlot
	sustain atomic.Bool
	mode    atomic.Uint32
	adsr    ADSRParams
}

func newControlSurface(voices int, adsr ADSRParams, mode WaveformMode) *ControlSurface {
	cs := &ControlSurface{
		voices: make([]voiceSlot, voices),
		adsr:   adsr,
	}
	cs.mode.Store(uint32(mode))
	return cs
}

func (cs *ControlSurface) VoiceCount() int {
	return len(cs.voices)
}

func (cs *ControlSurface) Params() ADSRParams {
	return cs.adsr
}

// NoteIndex maps a semitone to its voice slot.
func (cs *ControlSurface) NoteIndex(note int) (int, bool) {
	idx := noteToIndex(note)
	if idx < 0 || idx >= len(cs.voices) {
		return 0, false
	}
	return idx, true
}

// Hit triggers the voice for a semitone. Out-of-range notes are ignored.
func (cs *ControlSurface) Hit(note int) {
	if idx, ok := cs.NoteIndex(note); ok {
		cs.HitIndex(idx)
	}
}

func (cs *ControlSurface) HitIndex(idx int) {
	if idx < 0 || idx >= len(cs.voices) {
		return
	}
	held := cs.sustain.Load()
	cs.voices[idx].update(func(s NoteState) NoteState {
		s, _ = s.Hit(&cs.adsr, held)
		return s
	})
}

// Release moves every sounding voice straight into its release phase.
// Voices below the sustain level fade from their current level; louder
// voices are cut to the sustain level, where the release curve starts.
func (cs *ControlSurface) Release() {
	for i := range cs.voices {
		cs.voices[i].update(func(s NoteState) NoteState {
			switch s.Phase {
			case NoteSilent, NoteRelease:
				return s
			}
			level := s.Peek(&cs.adsr)
			rem := cs.adsr.ReleaseDur
			if cs.adsr.SustainLevel > 0 && level < cs.adsr.SustainLevel {
				rem = lerp(1-level/cs.adsr.SustainLevel, cs.adsr.ReleaseDur, 0)
			}
			return NoteState{Phase: NoteRelease, Remaining: rem}
		})
	}
}

func (cs *ControlSurface) SetSustain(held bool) {
	cs.sustain.Store(held)
}

func (cs *ControlSurface) Sustain() bool {
	return cs.sustain.Load()
}

// SetMode switches the harmonic profile; engines pick it up at their next
// block boundary.
func (cs *ControlSurface) SetMode(m WaveformMode) {
	if m >= waveModeCount {
		return
	}
	cs.mode.Store(uint32(m))
}

func (cs *ControlSurface) Mode() WaveformMode {
	return WaveformMode(cs.mode.Load())
}

// Voice returns the current state of one slot.
func (cs *ControlSurface) Voice(idx int) NoteState {
	if idx < 0 || idx >= len(cs.voices) {
		return NoteState{}
	}
	return cs.voices[idx].load()
}

// SnapshotAmplitudes peeks every voice into out and returns the count
// written.
func (cs *ControlSurface) SnapshotAmplitudes(out []float32) int {
	n := min(len(out), len(cs.voices))
	for i := 0; i < n; i++ {
		out[i] = cs.voices[i].load().Peek(&cs.adsr)
	}
	return n
}

func (cs *ControlSurface) MaxNote() int {
	return maxNoteFor(len(cs.voices))
}

// advanceVoice moves one slot forward by dt and returns the amplitude it had.
// Written out rather than via update to keep the render path allocation-free.
func (cs *ControlSurface) advanceVoice(idx int, dt float32, held bool) float32 {
	slot := &cs.voices[idx]
	for {
		old := slot.word.Load()
		next, amp := unpackNoteState(old).Advance(&cs.adsr, dt, held)
		w := next.pack()
		if w == old || slot.word.CompareAndSwap(old, w) {
			return amp
		}
	}
}
