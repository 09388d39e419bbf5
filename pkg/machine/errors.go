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

import (
	"errors"
	"fmt"
)

var (
	ErrHalted = errors.New("Machine halted")
	ErrQuit   = errors.New("Execution aborted")
)

// Returned by a CALL with all 16 stack slots in use
type StackOverflowError struct {
	Addr   uint16
	Opcode uint16
}

func (err *StackOverflowError) Error() string {
	return fmt.Sprintf(
		"[%#03x] %04X: Stack overflow (limit %d)",
		err.Addr,
		err.Opcode,
		STACK_SIZE,
	)
}

// Returned by a RET with no active call
type StackUnderflowError struct {
	Addr   uint16
	Opcode uint16
}

func (err *StackUnderflowError) Error() string {
	return fmt.Sprintf(
		"[%#03x] %04X: Stack underflow", err.Addr, err.Opcode,
	)
}

type InvalidOpcodeError struct {
	Addr   uint16
	Opcode uint16
}

func (err *InvalidOpcodeError) Error() string {
	return fmt.Sprintf(
		"[%#03x] %04X: Invalid opcode", err.Addr, err.Opcode,
	)
}

// Returned when a computed memory address or key index falls outside its
// valid range. Target is the offending value, Limit the exclusive bound.
type OutOfBoundsError struct {
	Addr   uint16
	Opcode uint16
	Target int
	Limit  int
}

func (err *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"[%#03x] %04X: Access out of bounds\n\twant:<%#x\n\thave:%#x",
		err.Addr,
		err.Opcode,
		err.Limit,
		err.Target,
	)
}

// Returned by LoadBin when the image does not fit behind the load origin.
// The first PROGRAM_MAX_SIZE bytes are still loaded.
type TruncatedProgramError struct {
	Size int64
}

func (err *TruncatedProgramError) Error() string {
	return fmt.Sprintf(
		"Program truncated\n\twant:<=%d bytes\n\thave:%d bytes",
		PROGRAM_MAX_SIZE,
		err.Size,
	)
}
