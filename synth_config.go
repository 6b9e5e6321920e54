// synth_config.go - Command line configuration

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
	"flag"
	"fmt"
	"io"
	"time"
)

const (
	FRONTEND_WINDOW   = "window"
	FRONTEND_TERMINAL = "terminal"
	FRONTEND_NONE     = "none"
)

var ErrFrontend = errors.New("unknown frontend")

type SynthConfig struct {
	Engine   EngineConfig
	Frontend string
	Script   string
	Octave   int
	Duration time.Duration // 0 runs until the frontend or script finishes
	Debug    bool
	Features bool
}

func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Engine:   DefaultEngineConfig(),
		Frontend: FRONTEND_WINDOW,
		Octave:   2,
	}
}

func (c SynthConfig) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	switch c.Frontend {
	case FRONTEND_WINDOW, FRONTEND_TERMINAL, FRONTEND_NONE:
	default:
		return fmt.Errorf("%q: %w", c.Frontend, ErrFrontend)
	}
	if c.Frontend == FRONTEND_NONE && c.Script == "" && c.Duration == 0 {
		return fmt.Errorf("frontend %q needs -script or -duration", FRONTEND_NONE)
	}
	if c.Duration < 0 {
		return fmt.Errorf("negative duration %v", c.Duration)
	}
	return nil
}

// float32Flag adapts a float32 field to flag.Value.
type float32Flag struct{ p *float32 }

func (f float32Flag) String() string {
	if f.p == nil {
		return "0"
	}
	return fmt.Sprint(*f.p)
}

func (f float32Flag) Set(s string) error {
	var v float64
	if _, err := fmt.Sscan(s, &v); err != nil {
		return err
	}
	*f.p = float32(v)
	return nil
}

type modeFlag struct{ p *WaveformMode }

func (m modeFlag) String() string {
	if m.p == nil {
		return WaveSine.String()
	}
	return m.p.String()
}

func (m modeFlag) Set(s string) error {
	mode, err := ParseWaveformMode(s)
	if err != nil {
		return err
	}
	*m.p = mode
	return nil
}

// parseSynthFlags parses args (without the program name). flag.ErrHelp is
// returned unchanged after usage has been written to usage.
func parseSynthFlags(args []string, usage io.Writer) (SynthConfig, error) {
	cfg := DefaultSynthConfig()
	adsr := &cfg.Engine.ADSR

	flagSet := flag.NewFlagSet("intuition_synth", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.IntVar(&cfg.Engine.BlockLen, "block", cfg.Engine.BlockLen, "Block length in samples (power of two)")
	flagSet.IntVar(&cfg.Engine.RateMultiplier, "rate-mul", cfg.Engine.RateMultiplier, "Sample rate = block length * rate-mul")
	flagSet.Var(modeFlag{&cfg.Engine.Mode}, "mode", "Initial waveform: sine, saw, square, triangle")
	flagSet.Var(float32Flag{&adsr.AttackLevel}, "attack-level", "Attack peak level")
	flagSet.Var(float32Flag{&adsr.SustainLevel}, "sustain-level", "Sustain level")
	flagSet.Var(float32Flag{&adsr.AttackDur}, "attack", "Attack time in seconds")
	flagSet.Var(float32Flag{&adsr.DecayDur}, "decay", "Decay time in seconds")
	flagSet.Var(float32Flag{&adsr.SustainDur}, "sustain", "Sustain time in seconds while the pedal is held")
	flagSet.Var(float32Flag{&adsr.ReleaseDur}, "release", "Release time in seconds")
	flagSet.StringVar(&cfg.Frontend, "frontend", cfg.Frontend, "Input/display frontend: window, terminal, none")
	flagSet.StringVar(&cfg.Script, "script", "", "Lua script driving the control surface")
	flagSet.IntVar(&cfg.Octave, "octave", cfg.Octave, "Starting keyboard octave (0-8)")
	flagSet.DurationVar(&cfg.Duration, "duration", 0, "Stop after this long (0 = run until closed)")
	flagSet.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flagSet.BoolVar(&cfg.Features, "features", false, "Print compiled features and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(usage)
		fmt.Fprintln(usage, "Usage: ./intuition_synth [-frontend window|terminal|none] [-mode sine] [-script file.lua] [-block 256]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cfg, err
		}
		return cfg, fmt.Errorf("flags: %w", err)
	}
	if flagSet.NArg() > 0 && cfg.Script == "" {
		cfg.Script = flagSet.Arg(0)
	}
	return cfg, nil
}
