package main

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestWriteFloat32LE(t *testing.T) {
	samples := []float32{0, 0.5, -1, 0.25}
	p := make([]byte, 18)
	for i := range p {
		p[i] = 0xAA
	}
	if n := writeFloat32LE(p, samples); n != len(p) {
		t.Fatalf("wrote %d, want %d", n, len(p))
	}
	for i, want := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
	if p[16] != 0 || p[17] != 0 {
		t.Fatalf("tail not cleared: %v", p[16:])
	}
}

func TestOtoPlayer_ReadPullsFromEngine(t *testing.T) {
	e := newTestEngine(t, 64)
	e.Control().HitIndex(2)
	op := &OtoPlayer{}
	p := make([]byte, 64*4*3)

	// No engine attached: silence.
	if n, err := op.Read(p); err != nil || n != len(p) {
		t.Fatalf("Read: %d, %v", n, err)
	}

	op.engine.Store(e)
	if _, err := op.Read(p); err != nil {
		t.Fatal(err)
	}
	if e.Control().Voice(2).Phase != NoteAttack {
		t.Fatalf("voice 2: %+v", e.Control().Voice(2))
	}
	nonZero := false
	for i := 64 * 4; i < len(p); i += 4 {
		if binary.LittleEndian.Uint32(p[i:]) != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("audio stream silent after hit")
	}
}
