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
	"image/color"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
)

func TestDebugKeys(t *testing.T) {
	tests := []struct {
		Key    ebiten.Key
		Signal debugger.Signal
	}{
		{ebiten.KeyEnter, debugger.SIGNAL_STEP},
		{ebiten.KeyDelete, debugger.SIGNAL_CONTINUE},
		{ebiten.KeyEscape, debugger.SIGNAL_QUIT},
	}

	for _, test := range tests {
		signal, ok := debugKeys[test.Key]

		if !ok || signal != test.Signal {
			t.Errorf("%v\nwant:%v\nhave:%v", test.Key, test.Signal, signal)
		}

		if _, ok := translateKey(test.Key); ok {
			t.Errorf("%v is also a keypad key", test.Key)
		}
	}
}

func TestFillPixels(t *testing.T) {
	var display machine.Display
	display.Pixels[1][2] = true

	tint := color.RGBA{0x10, 0x20, 0x30, 0xff}
	pixels := make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*4)
	fillPixels(pixels, &display, tint)

	lit := (1*machine.DISPLAY_WIDTH + 2) * 4

	if have := pixels[lit : lit+4]; have[0] != 0x10 || have[1] != 0x20 ||
		have[2] != 0x30 || have[3] != 0xff {
		t.Errorf("Lit pixel\nwant:%v\nhave:%v", tint, have)
	}

	if have := pixels[0:4]; have[0] != 0 || have[1] != 0 || have[2] != 0 ||
		have[3] != 0xff {
		t.Errorf("Unlit pixel\nwant:[0 0 0 255]\nhave:%v", have)
	}
}

func TestStatusText(t *testing.T) {
	var state machine.MachineState
	state.Reset()
	state.Index = 0x123

	dbg := debugger.New()
	status := statusText(&state, dbg)

	for _, want := range []string{"PC 0x200  I 0x123  running", "(break)"} {
		if !strings.Contains(status, want) {
			t.Errorf("want:%q in status\nhave:%q", want, status)
		}
	}

	dbg.Break = false

	if status := statusText(&state, dbg); strings.Contains(status, "(break)") {
		t.Errorf("unexpected break marker in %q", status)
	}
}

func TestLayout(t *testing.T) {
	win := newWindow(nil, nil, color.RGBA{}, 4)

	if w, h := win.Layout(0, 0); w != 256 || h != 128 {
		t.Errorf("want:256x128\nhave:%dx%d", w, h)
	}

	win.debugger = debugger.New()

	if _, h := win.Layout(0, 0); h != 128+STATUS_HEIGHT {
		t.Errorf("want:%d\nhave:%d", 128+STATUS_HEIGHT, h)
	}
}
