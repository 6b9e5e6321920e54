package main

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

func randomBlock(rng *rand.Rand, n int) []complex64 {
	buf := make([]complex64, n)
	for i := range buf {
		buf[i] = complex(rng.Float32()*2-1, rng.Float32()*2-1)
	}
	return buf
}

func maxAbsDiff(a, b []complex64) float64 {
	var worst float64
	for i := range a {
		d := cmplx.Abs(complex128(a[i] - b[i]))
		worst = max(worst, d)
	}
	return worst
}

func TestNewTransformer_RejectsBadLength(t *testing.T) {
	for _, n := range []int{-4, 0, 1, 3, 6, 12, 100} {
		if _, err := NewTransformer(n); !errors.Is(err, ErrBlockLength) {
			t.Fatalf("n=%d: expected ErrBlockLength, got %v", n, err)
		}
	}
}

func TestTransformer_RoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 2; n <= 4096; n *= 2 {
		tr, err := NewTransformer(n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		orig := randomBlock(rng, n)
		buf := append([]complex64(nil), orig...)

		tr.Transform(true, buf)
		tr.Transform(false, buf)

		if d := maxAbsDiff(orig, buf); d > 1e-4 {
			t.Fatalf("n=%d: round trip error %g", n, d)
		}
	}
}

func TestTransformer_RoundTripSinusoid(t *testing.T) {
	for n := 8; n <= 4096; n *= 2 {
		tr, _ := NewTransformer(n)
		orig := make([]complex64, n)
		for i := range orig {
			orig[i] = complex(float32(0.7*math.Sin(2*math.Pi*3*float64(i)/float64(n))), 0)
		}
		buf := append([]complex64(nil), orig...)
		tr.Transform(true, buf)
		tr.Transform(false, buf)
		if d := maxAbsDiff(orig, buf); d > 1e-4 {
			t.Fatalf("n=%d: round trip error %g", n, d)
		}
	}
}

func TestTransformer_ForwardScaling(t *testing.T) {
	const n = 64
	const k = 5
	tr, _ := NewTransformer(n)
	buf := make([]complex64, n)
	for i := range buf {
		buf[i] = complex(float32(math.Cos(2*math.Pi*k*float64(i)/n)), 0)
	}
	tr.Transform(true, buf)

	for i, c := range buf {
		want := complex64(0)
		if i == k || i == n-k {
			want = 0.5
		}
		if cmplx.Abs(complex128(c-want)) > 1e-5 {
			t.Fatalf("bin %d: got %v, want %v", i, c, want)
		}
	}
}

func TestTransformer_InverseUnscaled(t *testing.T) {
	const n = 32
	tr, _ := NewTransformer(n)
	buf := make([]complex64, n)
	buf[0] = 1
	tr.Transform(false, buf)
	for i, c := range buf {
		if cmplx.Abs(complex128(c-1)) > 1e-6 {
			t.Fatalf("sample %d: got %v, want 1", i, c)
		}
	}
}

func TestTransformer_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, n := range []int{16, 128, 1024} {
		tr, _ := NewTransformer(n)
		buf := randomBlock(rng, n)

		seq := make([]complex128, n)
		for i, c := range buf {
			seq[i] = complex128(c)
		}
		ref := fourier.NewCmplxFFT(n).Coefficients(nil, seq)

		tr.Transform(true, buf)
		for i := range buf {
			// gonum leaves the forward transform unnormalized.
			got := complex128(buf[i]) * complex(float64(n), 0)
			if cmplx.Abs(got-ref[i]) > 1e-3 {
				t.Fatalf("n=%d bin %d: got %v, gonum %v", n, i, got, ref[i])
			}
		}
	}
}

func TestTransformer_CloneHasOwnScratch(t *testing.T) {
	tr, _ := NewTransformer(16)
	cl := tr.clone()
	if &cl.scratch[0] == &tr.scratch[0] {
		t.Fatal("clone shares scratch buffer")
	}
	if &cl.twiddle[0] != &tr.twiddle[0] {
		t.Fatal("clone should share twiddle table")
	}
	if cl.Len() != 16 {
		t.Fatalf("clone length %d, want 16", cl.Len())
	}
}
