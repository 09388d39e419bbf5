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
	"sort"
	"strings"
)

const DEFAULT_TINT = "purple"

var tints = map[string]color.RGBA{
	"purple": {0xaf, 0x12, 0xe8, 0xff},
	"green":  {0x00, 0x80, 0x00, 0xff},
	"red":    {0xff, 0x00, 0x00, 0xff},
	"blue":   {0x00, 0x00, 0xff, 0xff},
}

func tintNames() string {
	names := make([]string, 0, len(tints))
	for name := range tints {
		names = append(names, name)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}

func parseTint(name string) (color.RGBA, error) {
	tint, exists := tints[strings.ToLower(name)]

	if !exists {
		return color.RGBA{}, fmt.Errorf(
			"Invalid tint '%s'\n\twant:%s", name, tintNames(),
		)
	}

	return tint, nil
}
