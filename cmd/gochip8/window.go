// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/runner"
)

const STATUS_HEIGHT = 16

var statusColor = color.RGBA{0xc0, 0xc0, 0xc0, 0xff}

// Debug controls of the window front end
var debugKeys = map[ebiten.Key]debugger.Signal{
	ebiten.KeyEnter:  debugger.SIGNAL_STEP,
	ebiten.KeyDelete: debugger.SIGNAL_CONTINUE,
	ebiten.KeyEscape: debugger.SIGNAL_QUIT,
}

type window struct {
	runner   *runner.Runner
	debugger *debugger.Debugger
	tint     color.RGBA
	scale    int

	display *ebiten.Image
	pixels  []byte
}

func newWindow(
	rn *runner.Runner,
	dbg *debugger.Debugger,
	tint color.RGBA,
	scale int,
) *window {
	return &window{
		runner:   rn,
		debugger: dbg,
		tint:     tint,
		scale:    scale,
		pixels:   make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*4),
	}
}

func (win *window) statusHeight() int {
	if win.debugger == nil {
		return 0
	}

	return STATUS_HEIGHT
}

func (win *window) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	if win.debugger != nil {
		for key, signal := range debugKeys {
			if inpututil.IsKeyJustPressed(key) {
				win.debugger.Send(signal)
			}
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	keypad := &win.runner.Machine.State.Keypad

	for _, entry := range keymap {
		keypad.Set(entry.Value, ebiten.IsKeyPressed(entry.Key))
	}

	if err := win.runner.Frame(); errors.Is(err, machine.ErrQuit) {
		return ebiten.Termination
	} else if err != nil {
		return err
	}

	return nil
}

// fillPixels converts the display into RGBA bytes with lit pixels in tint
func fillPixels(pixels []byte, display *machine.Display, tint color.RGBA) {
	for y := 0; y < machine.DISPLAY_HEIGHT; y++ {
		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			i := (y*machine.DISPLAY_WIDTH + x) * 4

			if display.Pixels[y][x] {
				pixels[i] = tint.R
				pixels[i+1] = tint.G
				pixels[i+2] = tint.B
			} else {
				pixels[i] = 0
				pixels[i+1] = 0
				pixels[i+2] = 0
			}

			pixels[i+3] = 0xff
		}
	}
}

func statusText(mc *machine.MachineState, dbg *debugger.Debugger) string {
	status := fmt.Sprintf("PC %#03x  I %#03x  %s", mc.Program, mc.Index, mc.Status)

	if dbg != nil && dbg.Break && mc.Status == machine.STATUS_RUNNING {
		status += " (break)"
	}

	return status
}

func (win *window) Draw(screen *ebiten.Image) {
	state := &win.runner.Machine.State

	if win.display == nil {
		win.display = ebiten.NewImage(
			machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT,
		)
		state.Display.Dirty = true
	}

	if state.Display.Dirty {
		fillPixels(win.pixels, &state.Display, win.tint)
		win.display.WritePixels(win.pixels)
		state.Display.Dirty = false
	}

	options := &ebiten.DrawImageOptions{}
	options.GeoM.Scale(float64(win.scale), float64(win.scale))
	screen.DrawImage(win.display, options)

	if win.debugger != nil {
		text.Draw(
			screen,
			statusText(state, win.debugger),
			basicfont.Face7x13,
			4,
			machine.DISPLAY_HEIGHT*win.scale+12,
			statusColor,
		)
	}
}

func (win *window) Layout(_, _ int) (int, int) {
	return machine.DISPLAY_WIDTH * win.scale,
		machine.DISPLAY_HEIGHT*win.scale + win.statusHeight()
}

func runWindow(win *window) error {
	width, height := win.Layout(0, 0)

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("gochip8")
	ebiten.SetTPS(win.runner.Config.TimerHz)
	ebiten.SetWindowClosingHandled(true)

	return ebiten.RunGame(win)
}
