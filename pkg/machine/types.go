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

type Status uint8

const (
	STATUS_RUNNING Status = iota
	STATUS_WAITING
	STATUS_HALTED
)

func (status Status) String() string {
	switch status {
	case STATUS_RUNNING:
		return "running"
	case STATUS_WAITING:
		return "waiting for key"
	case STATUS_HALTED:
		return "halted"
	}

	return "<invalid>"
}

// The complete machine as a single value. Copying it yields a snapshot.
type MachineState struct {
	Registers    [REGISTER_SIZE]uint8
	Index        uint16
	Program      uint16
	Stack        [STACK_SIZE]uint16
	StackPointer uint8
	Memory       [MEMORY_SIZE]byte

	Timers  Timers
	Display Display
	Keypad  Keypad

	Status Status

	// Destination of a pending key wait
	WaitRegister uint8

	// Fatal error that halted the machine, if any
	Fault error
}

type MachineDebugger interface {
	// Called before every fetch. Returning false suspends the step.
	Step(mc *Machine) (bool, error)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Debugger MachineDebugger

	// Source for CXNN, math/rand when nil
	Random func() uint8

	// Address and word of the instruction being executed
	addr   uint16
	opcode uint16

	// Set when the debugger held back the last step
	suspended bool
}
