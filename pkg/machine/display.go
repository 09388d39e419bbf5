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

package machine

type Display struct {
	Pixels [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool

	// Set on every mutation, cleared by whoever presents the frame
	Dirty bool
}

func (disp *Display) Clear() {
	disp.Pixels = [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool{}
	disp.Dirty = true
}

func (disp *Display) Pixel(x, y int) bool {
	return disp.Pixels[y%DISPLAY_HEIGHT][x%DISPLAY_WIDTH]
}

// Draw XORs sprite onto the display with its top-left corner at (x, y), one
// byte per 8-pixel row, most significant bit leftmost. Both axes wrap.
// Reports whether any lit pixel was switched off.
func (disp *Display) Draw(x, y uint8, sprite []byte) bool {
	collision := false

	for row, bits := range sprite {
		py := (int(y) + row) % DISPLAY_HEIGHT

		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			px := (int(x) + col) % DISPLAY_WIDTH

			if disp.Pixels[py][px] {
				collision = true
			}

			disp.Pixels[py][px] = !disp.Pixels[py][px]
		}
	}

	disp.Dirty = true

	return collision
}
