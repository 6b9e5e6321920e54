// terminal_output.go - Rate limited status meter for the terminal frontend

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
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	METER_WIDTH    = 24
	METER_INTERVAL = 100 * time.Millisecond
)

// TerminalMeter redraws a one-line summary of the control surface in place.
type TerminalMeter struct {
	mutex   sync.Mutex
	out     io.Writer
	limiter *rate.Limiter
	control *ControlSurface
	amps    []float32
	line    strings.Builder
}

func NewTerminalMeter(out io.Writer, cs *ControlSurface) *TerminalMeter {
	return &TerminalMeter{
		out:     out,
		limiter: rate.NewLimiter(rate.Every(METER_INTERVAL), 1),
		control: cs,
		amps:    make([]float32, cs.VoiceCount()),
	}
}

// Refresh redraws the meter unless it was drawn within the last interval.
// Reports whether anything was written.
func (tm *TerminalMeter) Refresh(octave int) bool {
	if !tm.limiter.Allow() {
		return false
	}
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	if _, err := io.WriteString(tm.out, tm.formatLocked(octave)); err != nil {
		logDebug("meter write: %v", err)
		return false
	}
	return true
}

func (tm *TerminalMeter) formatLocked(octave int) string {
	n := tm.control.SnapshotAmplitudes(tm.amps)
	var level float32
	voices := 0
	for _, a := range tm.amps[:n] {
		if a > 0 {
			level += a
			voices++
		}
	}
	// Output is renormalized once the amplitude sum passes 1.
	level = min(level, 1)
	filled := int(level*METER_WIDTH + 0.5)

	sustain := "off"
	if tm.control.Sustain() {
		sustain = "on "
	}

	tm.line.Reset()
	fmt.Fprintf(&tm.line, "\r%-8s sus %s oct %d voices %3d [", tm.control.Mode(), sustain, octave, voices)
	tm.line.WriteString(strings.Repeat("#", filled))
	tm.line.WriteString(strings.Repeat(".", METER_WIDTH-filled))
	fmt.Fprintf(&tm.line, "] %.2f", level)
	return tm.line.String()
}

// Finish moves the cursor off the meter line.
func (tm *TerminalMeter) Finish() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	_, _ = io.WriteString(tm.out, "\r\n")
}
