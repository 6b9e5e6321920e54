// synth_fft.go - Radix-2 transform engine for the additive synthesizer

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
)

var ErrBlockLength = errors.New("block length must be a power of two >= 2")

// Transformer runs forward and inverse DFTs over complex64 buffers of a fixed
// power-of-two length. Forward output is scaled by 1/N, inverse is unscaled.
// A Transformer is not safe for concurrent use; clones get their own scratch.
type Transformer struct {
	n       int
	twiddle []complex64 // e^{-i*pi*k/n}, k in [0,n); shared read-only between clones
	scratch []complex64
}

func NewTransformer(n int) (*Transformer, error) {
	if !isPowerOfTwo(n) || n < 2 {
		return nil, fmt.Errorf("transform length %d: %w", n, ErrBlockLength)
	}

	twiddle := make([]complex64, n)
	for k := range twiddle {
		s, c := math.Sincos(-math.Pi * float64(k) / float64(n))
		twiddle[k] = complex(float32(c), float32(s))
	}

	return &Transformer{
		n:       n,
		twiddle: twiddle,
		scratch: make([]complex64, n),
	}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (t *Transformer) Len() int {
	return t.n
}

func (t *Transformer) clone() *Transformer {
	return &Transformer{
		n:       t.n,
		twiddle: t.twiddle,
		scratch: make([]complex64, t.n),
	}
}

// Transform replaces buf with its forward (forward=true) or inverse DFT.
// len(buf) must equal Len(); the length was validated at construction.
func (t *Transformer) Transform(forward bool, buf []complex64) {
	buf = buf[:t.n]
	copy(t.scratch, buf)
	t.butterflies(buf, t.scratch, forward, 1)

	if forward {
		scale := complex(1/float32(t.n), 0)
		for i := range buf {
			buf[i] *= scale
		}
	}
}

// butterflies is the ping-pong decimation-in-time recursion. out and in both
// start as copies of the input; each level reads the sub-results the level
// below wrote into the other buffer, so no temporaries are allocated.
func (t *Transformer) butterflies(out, in []complex64, forward bool, step int) {
	n := t.n
	if step >= n {
		return
	}

	t.butterflies(in, out, forward, step*2)
	t.butterflies(in[step:], out[step:], forward, step*2)

	half := n / 2
	for i := 0; i < n; i += 2 * step {
		w := t.twiddle[i]
		if !forward {
			w = complex(real(w), -imag(w))
		}
		odd := w * in[i+step]
		out[i/2] = in[i] + odd
		out[i/2+half] = in[i] - odd
	}
}
