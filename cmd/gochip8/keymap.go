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
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

// Keyboard layout, left hand block onto the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keymap = [16]struct {
	Rune  rune
	Key   ebiten.Key
	Value uint8
}{
	{'1', ebiten.Key1, 0x1}, {'2', ebiten.Key2, 0x2},
	{'3', ebiten.Key3, 0x3}, {'4', ebiten.Key4, 0xC},
	{'q', ebiten.KeyQ, 0x4}, {'w', ebiten.KeyW, 0x5},
	{'e', ebiten.KeyE, 0x6}, {'r', ebiten.KeyR, 0xD},
	{'a', ebiten.KeyA, 0x7}, {'s', ebiten.KeyS, 0x8},
	{'d', ebiten.KeyD, 0x9}, {'f', ebiten.KeyF, 0xE},
	{'z', ebiten.KeyZ, 0xA}, {'x', ebiten.KeyX, 0x0},
	{'c', ebiten.KeyC, 0xB}, {'v', ebiten.KeyV, 0xF},
}

func translateRune(r rune) (uint8, bool) {
	r = unicode.ToLower(r)

	for _, entry := range keymap {
		if entry.Rune == r {
			return entry.Value, true
		}
	}

	return 0, false
}

func translateKey(key ebiten.Key) (uint8, bool) {
	for _, entry := range keymap {
		if entry.Key == key {
			return entry.Value, true
		}
	}

	return 0, false
}
