// synth_spectrum.go - Harmonic spectrum construction per waveform mode

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
	"strings"
)

var ErrUnknownMode = errors.New("unknown waveform mode")

type WaveformMode uint32

const (
	WaveSine WaveformMode = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	waveModeCount
)

var waveModeNames = [waveModeCount]string{"sine", "saw", "square", "triangle"}

func (m WaveformMode) String() string {
	if m < waveModeCount {
		return waveModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint32(m))
}

func ParseWaveformMode(s string) (WaveformMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveModeNames {
		if n == name {
			return WaveformMode(i), nil
		}
	}
	return WaveSine, fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// Peak gains keep a single voice of amplitude a within [-a, a] once inverse
// transformed. Partial sums of sin(jx)/j peak at Si(pi); odd-only partial sums
// at Si(pi)/2; the odd 1/j^2 series sums to pi^2/8.
const (
	sawPeakGain      = 1 / 1.8519370
	squarePeakGain   = 1
	trianglePeakGain = 8 / (3.14159265358979 * 3.14159265358979)
)

func (m WaveformMode) peakGain() float32 {
	switch m {
	case WaveSaw:
		return sawPeakGain
	case WaveSquare:
		return squarePeakGain
	case WaveTriangle:
		return trianglePeakGain
	}
	return 1
}

// addVoice accumulates one voice into spectrum. voice is the table index, so
// the fundamental lands on bin voice+1. Every write is mirrored to keep the
// spectrum Hermitian; bins 0 and N/2 are never touched.
func (m WaveformMode) addVoice(voice int, amp float32, spectrum []complex64) {
	n := len(spectrum)
	half := n / 2
	f := voice + 1
	v := complex(0, amp*m.peakGain()/2)

	switch m {
	case WaveSine:
		spectrum[f] -= v
		spectrum[n-f] += v
	case WaveSaw:
		for j := 1; j*f < half; j++ {
			h := v / complex(float32(j), 0)
			spectrum[j*f] -= h
			spectrum[n-j*f] += h
		}
	case WaveSquare:
		for j := 1; j*f < half; j += 2 {
			h := v / complex(float32(j), 0)
			spectrum[j*f] -= h
			spectrum[n-j*f] += h
		}
	case WaveTriangle:
		for j := 1; j*f < half; j += 2 {
			sign := float32(1)
			if (j/2)%2 == 1 {
				sign = -1
			}
			h := v * complex(sign/float32(j*j), 0)
			spectrum[j*f] -= h
			spectrum[n-j*f] += h
		}
	}
}

// BuildSpectrum clears spectrum and fills it from per-voice amplitudes.
// When the amplitudes sum past 1 the whole buffer is divided by the sum so
// that stacked voices cannot clip. Returns the raw amplitude sum.
func BuildSpectrum(mode WaveformMode, amps []float32, spectrum []complex64) float32 {
	clear(spectrum)

	var fsum float32
	for i, a := range amps {
		if a == 0 {
			continue
		}
		fsum += a
		mode.addVoice(i, a, spectrum)
	}

	if fsum > 1 {
		scale := complex(1/fsum, 0)
		for i := range spectrum {
			spectrum[i] *= scale
		}
	}
	return fsum
}
