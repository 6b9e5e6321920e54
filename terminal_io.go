// terminal_io.go - Raw key routing for the terminal frontend

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
	"sync"
)

const (
	KEY_CTRL_C = 0x03
	KEY_ESCAPE = 0x1B
)

// TerminalInput is the state machine behind the terminal frontend. The host
// adapter (TerminalHost) feeds stdin bytes through RouteHostKey; tests call
// it directly.
type TerminalInput struct {
	mu      sync.Mutex
	control *ControlSurface
	keys    *KeyMapper

	// A terminal never reports key releases, so space toggles the pedal.
	sustain bool

	// onQuit is called (if non-nil) on Ctrl+C or Escape.
	onQuit func()
}

func NewTerminalInput(cs *ControlSurface, octave int) *TerminalInput {
	return &TerminalInput{
		control: cs,
		keys:    NewKeyMapper(octave),
	}
}

func (ti *TerminalInput) OnQuit(fn func()) {
	ti.mu.Lock()
	ti.onQuit = fn
	ti.mu.Unlock()
}

func (ti *TerminalInput) Octave() int {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return ti.keys.Octave()
}

// RouteHostKey applies one raw byte from the terminal.
func (ti *TerminalInput) RouteHostKey(b byte) {
	ti.mu.Lock()
	switch b {
	case KEY_CTRL_C, KEY_ESCAPE:
		quit := ti.onQuit
		ti.mu.Unlock()
		if quit != nil {
			quit()
		}
		return
	case KEY_SUSTAIN:
		ti.sustain = !ti.sustain
		ti.control.SetSustain(ti.sustain)
		ti.mu.Unlock()
		return
	}
	ev, ok := ti.keys.Translate(b)
	ti.mu.Unlock()
	if ok {
		applyControlEvent(ti.control, ev)
	}
}
