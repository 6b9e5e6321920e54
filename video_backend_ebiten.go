//go:build !headless

// video_backend_ebiten.go - Ebiten visualizer and keyboard for the synthesizer

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
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:ebiten")
}

const (
	WINDOW_WIDTH      = 640
	WINDOW_HEIGHT     = 480
	STATUS_BAR_HEIGHT = 20
	MAX_PASTE_BYTES   = 4096
)

var (
	waveColor     = color.RGBA{0, 220, 90, 255}
	barColor      = color.RGBA{60, 120, 220, 255}
	axisColor     = color.RGBA{80, 80, 80, 255}
	labelColor    = color.RGBA{190, 190, 190, 255}
	warningColor  = color.RGBA{230, 80, 60, 255}
	statusBgColor = color.RGBA{0, 0, 0, 180}
)

// EbitenOutput draws the current block and voice amplitudes from a peek
// clone and turns key presses into control events.
type EbitenOutput struct {
	ctx     context.Context
	peek    *Engine
	control *ControlSurface
	keys    *KeyMapper
	width   int
	height  int
	samples []float32
	amps    []float32

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
	pasteErr      string
}

func NewEbitenOutput(engine *Engine, octave int) *EbitenOutput {
	peek := engine.Clone()
	return &EbitenOutput{
		peek:          peek,
		control:       peek.Control(),
		keys:          NewKeyMapper(octave),
		width:         WINDOW_WIDTH,
		height:        WINDOW_HEIGHT,
		samples:       make([]float32, peek.BlockLen()),
		amps:          make([]float32, peek.Control().VoiceCount()),
		showStatusBar: true,
	}
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// Must be called from the main goroutine.
func (eo *EbitenOutput) Run(ctx context.Context) error {
	eo.ctx = ctx
	ebiten.SetWindowSize(eo.width, eo.height)
	ebiten.SetWindowTitle("Intuition Synth (c) 2024 - 2026 Zayn Otley")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(eo); err != nil {
		return fmt.Errorf("ebiten: %w", err)
	}
	return nil
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if eo.ctx != nil && eo.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.showStatusBar = !eo.showStatusBar
	}
	eo.handleKeyboardInput()
	return nil
}

func (eo *EbitenOutput) handleKeyboardInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Clipboard paste: Ctrl+Shift+V hits every note name on the clipboard.
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste()
		return
	}

	// The window sees key releases, so sustain follows the space bar.
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		applyControlEvent(eo.control, ControlEvent{Kind: EventSustain, Pressed: true})
	}
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		applyControlEvent(eo.control, ControlEvent{Kind: EventSustain, Pressed: false})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		applyControlEvent(eo.control, ControlEvent{Kind: EventPanic})
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r == KEY_SUSTAIN || r <= 0 || r > 0x7F {
			continue
		}
		if ev, ok := eo.keys.Translate(byte(r)); ok {
			applyControlEvent(eo.control, ev)
		}
	}
}

func (eo *EbitenOutput) handleClipboardPaste() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
		if !eo.clipboardOK {
			logError("clipboard unavailable, paste disabled")
		}
	})
	if !eo.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	if len(data) > MAX_PASTE_BYTES {
		data = data[:MAX_PASTE_BYTES]
	}
	n, err := hitNoteList(eo.control, string(data))
	if err != nil {
		eo.pasteErr = err.Error()
		logDebug("paste: %v", err)
		return
	}
	eo.pasteErr = ""
	logDebug("paste: hit %d notes", n)
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	eo.peek.Block(eo.samples, false)
	n := eo.control.SnapshotAmplitudes(eo.amps)

	plotH := eo.height - STATUS_BAR_HEIGHT
	mid := float32(plotH) / 4
	drawWaveform(screen, eo.samples, 0, mid, float32(eo.width), mid*0.9)
	drawAmplitudes(screen, eo.amps[:n], float32(plotH), float32(eo.width), float32(plotH)/2-4)

	if eo.showStatusBar {
		eo.drawStatusBar(screen)
	}
}

// drawWaveform plots samples across width around the horizontal line y=mid,
// with unit amplitude mapped to scale pixels.
func drawWaveform(screen *ebiten.Image, samples []float32, x0, mid, width, scale float32) {
	vector.StrokeLine(screen, x0, mid, x0+width, mid, 1, axisColor, false)
	if len(samples) < 2 {
		return
	}
	step := width / float32(len(samples)-1)
	for i := 1; i < len(samples); i++ {
		xa := x0 + float32(i-1)*step
		xb := x0 + float32(i)*step
		ya := mid - clampUnit(samples[i-1])*scale
		yb := mid - clampUnit(samples[i])*scale
		vector.StrokeLine(screen, xa, ya, xb, yb, 1, waveColor, true)
	}
}

// drawAmplitudes draws one bar per voice upward from baseline.
func drawAmplitudes(screen *ebiten.Image, amps []float32, baseline, width, height float32) {
	if len(amps) == 0 {
		return
	}
	w := width / float32(len(amps))
	for i, a := range amps {
		if a <= 0 {
			continue
		}
		h := clampUnit(a) * height
		vector.DrawFilledRect(screen, float32(i)*w, baseline-h, max(w-1, 1), h, barColor, false)
	}
}

func clampUnit(v float32) float32 {
	return max(-1, min(v, 1))
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image) {
	y := eo.height - STATUS_BAR_HEIGHT
	ebitenutil.DrawRect(screen, 0, float64(y), float64(eo.width), STATUS_BAR_HEIGHT, statusBgColor)

	face := basicfont.Face7x13
	sustain := "off"
	if eo.control.Sustain() {
		sustain = "on"
	}
	line := fmt.Sprintf("mode %s  sustain %s  octave %d  max note %d",
		eo.control.Mode(), sustain, eo.keys.Octave(), eo.control.MaxNote())
	text.Draw(screen, line, face, 6, y+14, labelColor)

	status := ""
	if f := eo.peek.Failures(); f > 0 {
		status = fmt.Sprintf("silent blocks %d", f)
	}
	if eo.pasteErr != "" {
		status = eo.pasteErr
	}
	if status != "" {
		x := eo.width - text.BoundString(face, status).Dx() - 6
		text.Draw(screen, status, face, x, y+14, warningColor)
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}
