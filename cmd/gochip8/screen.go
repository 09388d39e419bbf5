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
	"fmt"
	"image/color"
	"io"

	"github.com/lassandro/gochip8/pkg/machine"
)

// Frames a terminal key stays pressed, terminals report no releases
const KEY_HOLD_FRAMES = 6

// Terminal rows needed for the display plus the status line
const SCREEN_ROWS = machine.DISPLAY_HEIGHT/2 + 1

// renderDisplay draws two display rows per terminal row with half blocks
func renderDisplay(out io.Writer, display *machine.Display, tint color.RGBA) {
	fmt.Fprintf(out, "\033[H\033[38;2;%d;%d;%dm", tint.R, tint.G, tint.B)

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			top := display.Pixels[y][x]
			bottom := display.Pixels[y+1][x]

			switch {
			case top && bottom:
				fmt.Fprint(out, "█")
			case top:
				fmt.Fprint(out, "▀")
			case bottom:
				fmt.Fprint(out, "▄")
			default:
				fmt.Fprint(out, " ")
			}
		}

		fmt.Fprint(out, "\r\n")
	}

	fmt.Fprint(out, "\033[0m")
}

func renderStatus(out io.Writer, mc *machine.MachineState) {
	fmt.Fprintf(
		out,
		"\033[%d;1H\033[2K\033[1mPC\033[0m %#03x  \033[1mI\033[0m %#03x  %s",
		SCREEN_ROWS,
		mc.Program,
		mc.Index,
		mc.Status,
	)
}

// Hex keypad fed by single bytes. Each press is held for a few frames.
type termKeys struct {
	hold [machine.KEY_COUNT]int
}

func (keys *termKeys) Press(key uint8) {
	keys.hold[key] = KEY_HOLD_FRAMES
}

// Update ages every held key by one frame and mirrors the result into kp
func (keys *termKeys) Update(kp *machine.Keypad) {
	for key := range keys.hold {
		kp.Set(uint8(key), keys.hold[key] > 0)

		if keys.hold[key] > 0 {
			keys.hold[key]--
		}
	}
}
