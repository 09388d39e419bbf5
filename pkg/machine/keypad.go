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

// Pressed state of the 16 hexadecimal keys, written by the input front end
type Keypad struct {
	keys [KEY_COUNT]bool
}

func (kp *Keypad) Set(key uint8, pressed bool) error {
	if int(key) >= KEY_COUNT {
		return &OutOfBoundsError{Target: int(key), Limit: KEY_COUNT}
	}

	kp.keys[key] = pressed
	return nil
}

func (kp *Keypad) IsPressed(key uint8) bool {
	return int(key) < KEY_COUNT && kp.keys[key]
}

// FirstPressed returns the lowest pressed key index
func (kp *Keypad) FirstPressed() (uint8, bool) {
	for i, pressed := range kp.keys {
		if pressed {
			return uint8(i), true
		}
	}

	return 0, false
}

func (kp *Keypad) Reset() {
	kp.keys = [KEY_COUNT]bool{}
}
