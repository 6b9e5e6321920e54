// input_events.go - Control events, key map and note names shared by the input hosts

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
	"fmt"
	"strconv"
	"strings"
)

type ControlEventKind int

const (
	EventNote ControlEventKind = iota
	EventSustain
	EventMode
	EventPanic
)

// ControlEvent is one already-translated input: a semitone hit, a sustain
// edge, a waveform selection or a panic release.
type ControlEvent struct {
	Kind    ControlEventKind
	Note    int
	Pressed bool
	Mode    WaveformMode
}

func applyControlEvent(cs *ControlSurface, ev ControlEvent) {
	switch ev.Kind {
	case EventNote:
		cs.Hit(ev.Note)
	case EventSustain:
		cs.SetSustain(ev.Pressed)
	case EventMode:
		cs.SetMode(ev.Mode)
	case EventPanic:
		cs.Release()
	}
}

// Two QWERTY rows play consecutive semitones from the current octave.
const noteKeys = "qwertyuiop[]asdfghjkl"

const (
	KEY_OCTAVE_DOWN = 'z'
	KEY_OCTAVE_UP   = 'x'
	KEY_SUSTAIN     = ' '
	KEY_PANIC       = 0x08
	MAX_OCTAVE      = 8
)

// KeyMapper turns key bytes into control events and tracks the octave
// offset. Not safe for concurrent use; each host owns one.
type KeyMapper struct {
	octave int
}

func NewKeyMapper(octave int) *KeyMapper {
	return &KeyMapper{octave: max(0, min(octave, MAX_OCTAVE))}
}

func (km *KeyMapper) Octave() int {
	return km.octave
}

// Translate maps a key byte. Sustain is reported as pressed; hosts with key
// release information emit the release edge themselves.
func (km *KeyMapper) Translate(b byte) (ControlEvent, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	if i := strings.IndexByte(noteKeys, b); i >= 0 {
		return ControlEvent{Kind: EventNote, Note: km.octave*12 + i}, true
	}
	switch b {
	case KEY_SUSTAIN:
		return ControlEvent{Kind: EventSustain, Pressed: true}, true
	case '1', '2', '3', '4':
		return ControlEvent{Kind: EventMode, Mode: WaveformMode(b - '1')}, true
	case KEY_PANIC, 0x7F:
		return ControlEvent{Kind: EventPanic}, true
	case KEY_OCTAVE_DOWN:
		km.octave = max(0, km.octave-1)
	case KEY_OCTAVE_UP:
		km.octave = min(MAX_OCTAVE, km.octave+1)
	}
	return ControlEvent{}, false
}

var noteOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// parseNoteName converts "C4", "A#3" or "Eb2" to a semitone counted from A0.
// The octave defaults to 4. Semitone 0 sounds at 16.35 Hz (the C0 pitch), so
// names play a minor third below concert pitch: "A4" is about 262 Hz.
func parseNoteName(s string) (int, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if up == "" {
		return 0, fmt.Errorf("empty note name")
	}
	base, ok := noteOffsets[up[0]]
	if !ok {
		return 0, fmt.Errorf("note %q: unknown pitch class", s)
	}
	rest := up[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		base++
		rest = rest[1:]
	case strings.HasPrefix(rest, "B"):
		base--
		rest = rest[1:]
	}
	octave := 4
	if rest != "" {
		o, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("note %q: bad octave: %w", s, err)
		}
		octave = o
	}
	midi := base + (octave+1)*12
	note := midi - 21
	if note < 0 {
		return 0, fmt.Errorf("note %q is below A0", s)
	}
	return note, nil
}

// parseNoteList splits a whitespace or comma separated list of note names.
func parseNoteList(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	notes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := parseNoteName(f)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// hitNoteList parses a pasted note list and hits every note in order.
// Nothing is hit when any name fails to parse.
func hitNoteList(cs *ControlSurface, s string) (int, error) {
	notes, err := parseNoteList(s)
	if err != nil {
		return 0, err
	}
	for _, n := range notes {
		cs.Hit(n)
	}
	return len(notes), nil
}
