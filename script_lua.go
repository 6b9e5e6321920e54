// script_lua.go - Lua scripts driving the control surface

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
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func init() {
	compiledFeatures = append(compiledFeatures, "script:lua")
}

var ErrScript = errors.New("script failed")

// ScriptRunner exposes the control surface to Lua:
//
//	hit(semitone)        hit_name("C#4")     hit_list("C4 E4 G4")
//	sustain(bool)        mode("saw")         release()
//	sleep(seconds)       max_note()          voices()
//
// Scripts run on their own goroutine; every call is a non-blocking control
// surface operation except sleep.
type ScriptRunner struct {
	control *ControlSurface
	sleep   func(ctx context.Context, d time.Duration)
}

func NewScriptRunner(cs *ControlSurface) *ScriptRunner {
	return &ScriptRunner{control: cs, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (sr *ScriptRunner) RunFile(ctx context.Context, path string) error {
	return sr.run(ctx, path, func(L *lua.LState) error { return L.DoFile(path) })
}

func (sr *ScriptRunner) RunString(ctx context.Context, name, src string) error {
	return sr.run(ctx, name, func(L *lua.LState) error { return L.DoString(src) })
}

func (sr *ScriptRunner) run(ctx context.Context, name string, do func(*lua.LState) error) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	sr.register(ctx, L)

	logDebug("script %s: start", name)
	if err := do(L); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	logDebug("script %s: done", name)
	return nil
}

func (sr *ScriptRunner) register(ctx context.Context, L *lua.LState) {
	cs := sr.control
	fns := map[string]lua.LGFunction{
		"hit": func(L *lua.LState) int {
			cs.Hit(L.CheckInt(1))
			return 0
		},
		"hit_name": func(L *lua.LState) int {
			note, err := parseNoteName(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			cs.Hit(note)
			L.Push(lua.LNumber(note))
			return 1
		},
		"hit_list": func(L *lua.LState) int {
			n, err := hitNoteList(cs, L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			L.Push(lua.LNumber(n))
			return 1
		},
		"sustain": func(L *lua.LState) int {
			cs.SetSustain(L.CheckBool(1))
			return 0
		},
		"mode": func(L *lua.LState) int {
			m, err := ParseWaveformMode(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			cs.SetMode(m)
			return 0
		},
		"release": func(L *lua.LState) int {
			cs.Release()
			return 0
		},
		"sleep": func(L *lua.LState) int {
			secs := float64(L.CheckNumber(1))
			if secs > 0 {
				sr.sleep(ctx, time.Duration(secs*float64(time.Second)))
			}
			return 0
		},
		"max_note": func(L *lua.LState) int {
			L.Push(lua.LNumber(cs.MaxNote()))
			return 1
		},
		"voices": func(L *lua.LState) int {
			L.Push(lua.LNumber(cs.VoiceCount()))
			return 1
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}
