package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPrintStartupReport(t *testing.T) {
	e := newTestEngine(t, 256)
	cfg := DefaultSynthConfig()
	cfg.Duration = 90 * time.Second
	cfg.Script = "tune.lua"

	var out bytes.Buffer
	printStartupReport(&out, e, cfg)
	report := out.String()
	for _, want := range []string{"4,096 Hz", "Voices: 126", "max note: 37", "mode: sine", "Script: tune.lua", "Stopping after 1"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestEnvelopeTail(t *testing.T) {
	p := DefaultADSRParams()
	got := envelopeTail(p)
	if got < 589*time.Millisecond || got > 591*time.Millisecond {
		t.Fatalf("tail %v, want about 590ms", got)
	}
	if formatSeconds(0) != "0s" {
		t.Fatalf("formatSeconds(0) = %q", formatSeconds(0))
	}
}
