//go:build windows

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// TerminalHost reads raw stdin and feeds bytes into a TerminalInput.
// Only instantiated in main.go for interactive use - never in tests.
type TerminalHost struct {
	input        *TerminalInput
	meter        *TerminalMeter
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	oldTermState *term.State
}

func NewTerminalHost(input *TerminalInput, meter *TerminalMeter) *TerminalHost {
	return &TerminalHost{
		input:  input,
		meter:  meter,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (h *TerminalHost) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	defer h.Stop()
	select {
	case <-ctx.Done():
	case <-h.done:
	}
	return nil
}

// Start sets stdin to raw mode and begins reading in a goroutine. Reads
// block, so the meter is refreshed from its own ticker.
func (h *TerminalHost) Start() error {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return fmt.Errorf("terminal_host: failed to set raw mode: %w", err)
	}
	h.oldTermState = oldState

	go func() {
		ticker := time.NewTicker(METER_INTERVAL)
		defer ticker.Stop()
		for {
			select {
			case <-h.stopCh:
				return
			case <-h.done:
				return
			case <-ticker.C:
				h.meter.Refresh(h.input.Octave())
			}
		}
	}()

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if n > 0 {
				h.input.RouteHostKey(buf[0])
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	return nil
}

// Stop restores terminal state. A read blocked in os.Stdin.Read is left to
// finish on the next key press.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
	h.meter.Finish()
}
