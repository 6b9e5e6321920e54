//go:build headless

package main

import (
	"context"
	"errors"
)

var ErrNoWindow = errors.New("window frontend not compiled in headless build")

type EbitenOutput struct {
	peek *Engine
	keys *KeyMapper
}

func NewEbitenOutput(engine *Engine, octave int) *EbitenOutput {
	return &EbitenOutput{peek: engine.Clone(), keys: NewKeyMapper(octave)}
}

func (eo *EbitenOutput) Run(ctx context.Context) error {
	return ErrNoWindow
}
