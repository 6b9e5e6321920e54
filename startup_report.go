// startup_report.go - Startup summary printed after the audio device opens

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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func secondsToDuration(s float32) time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

func formatSeconds(s float32) string {
	d := secondsToDuration(s)
	if d <= 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// envelopeTail is how long a single hit with the pedal held stays audible.
func envelopeTail(p ADSRParams) time.Duration {
	return secondsToDuration(p.AttackDur + p.DecayDur + p.SustainDur + p.ReleaseDur)
}

// engineFootprint estimates per-engine buffer memory: window, spectrum,
// scratch and twiddles in complex64 plus the float32 amplitude table.
func engineFootprint(e *Engine) uint64 {
	n := uint64(e.BlockLen())
	return 4*n*8 + uint64(e.Control().VoiceCount())*4
}

func printStartupReport(w io.Writer, e *Engine, cfg SynthConfig) {
	cs := e.Control()
	p := cs.Params()
	fmt.Fprintf(w, "Sample rate: %s Hz, block %d samples (%s per block)\n",
		humanize.Comma(int64(e.SampleRate())), e.BlockLen(), formatSeconds(e.BlockDuration()))
	fmt.Fprintf(w, "Voices: %d, max note: %d, mode: %s\n", cs.VoiceCount(), cs.MaxNote(), cs.Mode())
	fmt.Fprintf(w, "Envelope: attack %s to %.2f, decay %s to %.2f, sustain %s, release %s\n",
		formatSeconds(p.AttackDur), p.AttackLevel, formatSeconds(p.DecayDur), p.SustainLevel,
		formatSeconds(p.SustainDur), formatSeconds(p.ReleaseDur))
	fmt.Fprintf(w, "Engine buffers: %s\n", humanize.Bytes(engineFootprint(e)))
	if cfg.Duration > 0 {
		fmt.Fprintf(w, "Stopping after %s\n", durafmt.Parse(cfg.Duration).LimitFirstN(2).Format(shortUnits))
	}
	if cfg.Script != "" {
		fmt.Fprintf(w, "Script: %s\n", cfg.Script)
	}
}
