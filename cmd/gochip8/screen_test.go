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
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

func TestRenderDisplay(t *testing.T) {
	var display machine.Display

	display.Pixels[0][0] = true
	display.Pixels[1][0] = true
	display.Pixels[0][1] = true
	display.Pixels[3][2] = true

	var out bytes.Buffer
	renderDisplay(&out, &display, color.RGBA{1, 2, 3, 0xff})

	if !strings.HasPrefix(out.String(), "\033[H\033[38;2;1;2;3m") {
		t.Fatalf("expected home and tint prefix, got %q", out.String()[:20])
	}

	body := strings.TrimPrefix(out.String(), "\033[H\033[38;2;1;2;3m")
	body = strings.TrimSuffix(body, "\033[0m")
	rows := strings.Split(strings.TrimSuffix(body, "\r\n"), "\r\n")

	if len(rows) != machine.DISPLAY_HEIGHT/2 {
		t.Fatalf("Rows\nwant:%d\nhave:%d", machine.DISPLAY_HEIGHT/2, len(rows))
	}

	for i, row := range rows {
		if n := len([]rune(row)); n != machine.DISPLAY_WIDTH {
			t.Fatalf("Row %d width\nwant:%d\nhave:%d", i, machine.DISPLAY_WIDTH, n)
		}
	}

	first := []rune(rows[0])
	second := []rune(rows[1])

	if first[0] != '█' || first[1] != '▀' || first[2] != ' ' {
		t.Errorf("Row 0\nwant:\"█▀ \"\nhave:%q", string(first[:3]))
	}

	if second[2] != '▄' {
		t.Errorf("Row 1\nwant:'▄'\nhave:%q", second[2])
	}
}

func TestRenderStatus(t *testing.T) {
	var state machine.MachineState
	state.Reset()
	state.Index = 0x123

	var out bytes.Buffer
	renderStatus(&out, &state)

	want := "\033[1mPC\033[0m 0x200  \033[1mI\033[0m 0x123  running"

	if !strings.HasSuffix(out.String(), want) {
		t.Errorf("want:%q\nhave:%q", want, out.String())
	}
}

func TestTermKeysHold(t *testing.T) {
	var keys termKeys
	var kp machine.Keypad

	keys.Press(0xA)

	for frame := 0; frame < KEY_HOLD_FRAMES; frame++ {
		keys.Update(&kp)

		if !kp.IsPressed(0xA) {
			t.Fatalf("Key released early at frame %d", frame)
		}
	}

	keys.Update(&kp)

	if kp.IsPressed(0xA) {
		t.Errorf("Key still pressed after %d frames", KEY_HOLD_FRAMES)
	}
}

func TestTermInput(t *testing.T) {
	input := newTermInput(strings.NewReader("next\r\nreg\npartial"))

	want := []string{"next", "reg", "partial"}

	for _, line := range want {
		have, ok := input.ReadLine()

		if !ok || have != line {
			t.Fatalf("want:%q\nhave:%q (%v)", line, have, ok)
		}
	}

	if _, ok := input.ReadLine(); ok {
		t.Errorf("expected end of stream")
	}

	if _, open := input.Poll(); open {
		t.Errorf("expected closed stream")
	}
}
