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
	"testing"
)

func TestParseTint(t *testing.T) {
	tests := []struct {
		Name   string
		Output color.RGBA
	}{
		{"purple", color.RGBA{0xaf, 0x12, 0xe8, 0xff}},
		{"Green", color.RGBA{0x00, 0x80, 0x00, 0xff}},
		{"RED", color.RGBA{0xff, 0x00, 0x00, 0xff}},
		{"blue", color.RGBA{0x00, 0x00, 0xff, 0xff}},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			tint, err := parseTint(test.Name)

			if err != nil {
				t.Fatal(err)
			}

			if tint != test.Output {
				t.Errorf("want:%v\nhave:%v", test.Output, tint)
			}
		})
	}

	if _, err := parseTint("orange"); err == nil {
		t.Errorf("expected error for unknown tint")
	}

	if _, err := parseTint(DEFAULT_TINT); err != nil {
		t.Errorf("default tint rejected: %v", err)
	}
}
