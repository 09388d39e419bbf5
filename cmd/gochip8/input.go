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
	"io"
	"strings"
)

// Reads stdin on its own goroutine so the frame loop can poll it and the
// debugger can still read whole lines from the same stream.
type termInput struct {
	bytes chan byte
}

func newTermInput(reader io.Reader) *termInput {
	input := &termInput{bytes: make(chan byte, 64)}

	go func() {
		defer close(input.bytes)

		buffer := make([]byte, 64)

		for {
			n, err := reader.Read(buffer)

			for _, b := range buffer[:n] {
				input.bytes <- b
			}

			if err != nil {
				return
			}
		}
	}()

	return input
}

// Poll returns the bytes received so far without blocking. The second
// result is false once the stream has ended.
func (input *termInput) Poll() ([]byte, bool) {
	var received []byte

	for {
		select {
		case b, ok := <-input.bytes:
			if !ok {
				return received, false
			}

			received = append(received, b)
		default:
			return received, true
		}
	}
}

// ReadLine blocks until a full line arrives. It reports false at the end of
// the stream.
func (input *termInput) ReadLine() (string, bool) {
	var line strings.Builder

	for b := range input.bytes {
		switch b {
		case '\n':
			return strings.TrimSuffix(line.String(), "\r"), true
		default:
			line.WriteByte(b)
		}
	}

	return line.String(), line.Len() > 0
}
