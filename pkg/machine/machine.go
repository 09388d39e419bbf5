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
	"bytes"
	"io"
	"math/rand"
)

func (mc *MachineState) Reset() {
	*mc = MachineState{}

	copy(mc.Memory[MEMSPACE_FONT:], FontTable[:])

	// Programs begin at the load origin, directly above the interpreter area
	mc.Program = MEMSPACE_PROGRAM
	mc.Status = STATUS_RUNNING
	mc.Display.Dirty = true
}

// LoadBin resets the machine and copies a raw program image to the load
// origin. Images larger than the program space are truncated and reported
// with a *TruncatedProgramError; the truncated program is still loaded.
func (mc *Machine) LoadBin(reader io.Reader) error {
	mc.State.Reset()

	n, err := io.ReadFull(reader, mc.State.Memory[MEMSPACE_PROGRAM:])

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil
	} else if err != nil {
		return err
	}

	extra, err := io.Copy(io.Discard, reader)

	if err != nil {
		return err
	} else if extra > 0 {
		return &TruncatedProgramError{Size: int64(n) + extra}
	}

	return nil
}

func (mc *Machine) Load(program []byte) error {
	return mc.LoadBin(bytes.NewReader(program))
}

func (mc *Machine) Halted() bool {
	return mc.State.Status == STATUS_HALTED
}

// Suspended reports whether the last Step was held back by the debugger
func (mc *Machine) Suspended() bool {
	return mc.suspended
}

func (mc *Machine) fault(err error) error {
	mc.State.Status = STATUS_HALTED
	mc.State.Fault = err
	return err
}

func (mc *Machine) checkRange(start, count int) error {
	if start < 0 || start+count > MEMORY_SIZE {
		return &OutOfBoundsError{
			Addr:   mc.addr,
			Opcode: mc.opcode,
			Target: start + count - 1,
			Limit:  MEMORY_SIZE,
		}
	}

	return nil
}

func (mc *Machine) push(value uint16) error {
	if int(mc.State.StackPointer) >= STACK_SIZE {
		return &StackOverflowError{mc.addr, mc.opcode}
	}

	mc.State.Stack[mc.State.StackPointer] = value
	mc.State.StackPointer++
	return nil
}

func (mc *Machine) pop() (uint16, error) {
	if mc.State.StackPointer == 0 {
		return 0, &StackUnderflowError{mc.addr, mc.opcode}
	}

	mc.State.StackPointer--
	return mc.State.Stack[mc.State.StackPointer], nil
}

// Callers range-check addr first
func (mc *Machine) read(addr uint16) byte {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) random() uint8 {
	if mc.Random != nil {
		return mc.Random()
	}

	return uint8(rand.Intn(256))
}

func (mc *Machine) setFlag(set bool) {
	if set {
		mc.State.Registers[REG_FLAG] = 1
	} else {
		mc.State.Registers[REG_FLAG] = 0
	}
}

// Step advances the machine by one transition: resolve a pending key wait,
// or fetch, decode and execute one instruction. Fatal errors halt the
// machine and are returned; ErrHalted is returned once halted.
func (mc *Machine) Step() error {
	state := &mc.State
	mc.suspended = false

	switch state.Status {
	case STATUS_HALTED:
		return ErrHalted

	case STATUS_WAITING:
		if key, ok := state.Keypad.FirstPressed(); ok {
			state.Registers[state.WaitRegister] = key
			state.Status = STATUS_RUNNING
		}
		return nil
	}

	if mc.Debugger != nil {
		proceed, err := mc.Debugger.Step(mc)

		if err != nil {
			return err
		} else if !proceed {
			mc.suspended = true
			return nil
		}
	}

	mc.addr = state.Program
	mc.opcode = 0

	if err := mc.checkRange(int(mc.addr), 2); err != nil {
		return mc.fault(err)
	}

	mc.opcode = uint16(state.Memory[mc.addr])<<8 | uint16(state.Memory[mc.addr+1])
	state.Program += 2

	instruction, err := Decode(mc.opcode)

	if err != nil {
		return mc.fault(&InvalidOpcodeError{mc.addr, mc.opcode})
	}

	if err := mc.execute(instruction); err != nil {
		return mc.fault(err)
	}

	return nil
}

func (mc *Machine) execute(inst Instruction) error {
	state := &mc.State
	vx := state.Registers[inst.X]
	vy := state.Registers[inst.Y]

	switch inst.Op {
	// HALT |0000|0000|0000|0000| Stop execution
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_HALT:
		state.Status = STATUS_HALTED

	// CLS  |0000|0000|1110|0000| Clear display
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_CLEAR:
		state.Display.Clear()

	// RET  |0000|0000|1110|1110| Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_RETURN:
		addr, err := mc.pop()

		if err != nil {
			return err
		}

		state.Program = addr

	// JP   |0001|NNN           | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_JUMP:
		state.Program = inst.NNN

	// CALL |0010|NNN           | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_CALL:
		if err := mc.push(state.Program); err != nil {
			return err
		}

		state.Program = inst.NNN

	// SE   |0011|X   |NN       | Skip if Vx == NN
	// SNE  |0100|X   |NN       | Skip if Vx != NN
	// SE   |0101|X   |Y   |0000| Skip if Vx == Vy
	// SNE  |1001|X   |Y   |0000| Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_SKIP_EQ_IMM:
		if vx == inst.NN {
			state.Program += 2
		}

	case INST_SKIP_NE_IMM:
		if vx != inst.NN {
			state.Program += 2
		}

	case INST_SKIP_EQ_REG:
		if vx == vy {
			state.Program += 2
		}

	case INST_SKIP_NE_REG:
		if vx != vy {
			state.Program += 2
		}

	// LD   |0110|X   |NN       | Vx = NN
	// ADD  |0111|X   |NN       | Vx += NN, wrapping, VF untouched
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_SET_IMM:
		state.Registers[inst.X] = inst.NN

	case INST_ADD_IMM:
		state.Registers[inst.X] = vx + inst.NN

	// LD   |1000|X   |Y   |0000| Vx = Vy
	// OR   |1000|X   |Y   |0001| Vx |= Vy
	// AND  |1000|X   |Y   |0010| Vx &= Vy
	// XOR  |1000|X   |Y   |0011| Vx ^= Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_MOVE:
		state.Registers[inst.X] = vy

	case INST_OR:
		state.Registers[inst.X] = vx | vy

	case INST_AND:
		state.Registers[inst.X] = vx & vy

	case INST_XOR:
		state.Registers[inst.X] = vx ^ vy

	// ADD  |1000|X   |Y   |0100| Vx += Vy, VF = carry
	// SUB  |1000|X   |Y   |0101| Vx -= Vy, VF = Vx > Vy
	// SHR  |1000|X   |Y   |0110| Vx >>= 1, VF = bit shifted out
	// SUBN |1000|X   |Y   |0111| Vx = Vy - Vx, VF = Vy > Vx
	// SHL  |1000|X   |Y   |1110| Vx <<= 1, VF = bit shifted out
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	// The flag is written after the result so it survives X == F.
	case INST_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		state.Registers[inst.X] = uint8(sum)
		mc.setFlag(sum > 0xFF)

	case INST_SUB:
		state.Registers[inst.X] = vx - vy
		mc.setFlag(vx > vy)

	case INST_SHIFT_RIGHT:
		state.Registers[inst.X] = vx >> 1
		mc.setFlag(vx&0x01 != 0)

	case INST_SUB_REVERSE:
		state.Registers[inst.X] = vy - vx
		mc.setFlag(vy > vx)

	case INST_SHIFT_LEFT:
		state.Registers[inst.X] = vx << 1
		mc.setFlag(vx&0x80 != 0)

	// LD   |1010|NNN           | I = NNN
	// JP   |1011|NNN           | Jump to NNN + V0
	// RND  |1100|X   |NN       | Vx = random & NN
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_SET_INDEX:
		state.Index = inst.NNN

	case INST_JUMP_OFFSET:
		state.Program = inst.NNN + uint16(state.Registers[0])

	case INST_RANDOM:
		state.Registers[inst.X] = mc.random() & inst.NN

	// DRW  |1101|X   |Y   |N   | Draw N-byte sprite at I to (Vx, Vy)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_DRAW:
		if err := mc.checkRange(int(state.Index), int(inst.N)); err != nil {
			return err
		}

		sprite := make([]byte, inst.N)
		for i := range sprite {
			sprite[i] = mc.read(state.Index + uint16(i))
		}

		mc.setFlag(state.Display.Draw(vx, vy, sprite))

	// SKP  |1110|X   |1001|1110| Skip if key Vx is pressed
	// SKNP |1110|X   |1010|0001| Skip if key Vx is not pressed
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_SKIP_KEY, INST_SKIP_NOT_KEY:
		if int(vx) >= KEY_COUNT {
			return &OutOfBoundsError{
				Addr:   mc.addr,
				Opcode: mc.opcode,
				Target: int(vx),
				Limit:  KEY_COUNT,
			}
		}

		if state.Keypad.IsPressed(vx) == (inst.Op == INST_SKIP_KEY) {
			state.Program += 2
		}

	// LD   |1111|X   |0000|0111| Vx = DT
	// LD   |1111|X   |0000|1010| Vx = next key, suspends
	// LD   |1111|X   |0001|0101| DT = Vx
	// LD   |1111|X   |0001|1000| ST = Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_GET_DELAY:
		state.Registers[inst.X] = state.Timers.Delay

	case INST_WAIT_KEY:
		state.WaitRegister = inst.X
		state.Status = STATUS_WAITING

	case INST_SET_DELAY:
		state.Timers.Delay = vx

	case INST_SET_SOUND:
		state.Timers.Sound = vx

	// ADD  |1111|X   |0001|1110| I += Vx, 16-bit wrap
	// LD   |1111|X   |0010|1001| I = glyph address of digit Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INST_ADD_INDEX:
		state.Index += uint16(vx)

	case INST_FONT:
		state.Index = MEMSPACE_FONT + FONT_GLYPH_SIZE*uint16(vx&0xF)

	// LD   |1111|X   |0011|0011| Store BCD of Vx at I, I+1, I+2
	// LD   |1111|X   |0101|0101| Store V0..Vx at I
	// LD   |1111|X   |0110|0101| Load V0..Vx from I
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	// I is left unchanged.
	case INST_BCD:
		if err := mc.checkRange(int(state.Index), 3); err != nil {
			return err
		}

		mc.write(state.Index, vx/100)
		mc.write(state.Index+1, (vx/10)%10)
		mc.write(state.Index+2, vx%10)

	case INST_STORE_REGS:
		if err := mc.checkRange(int(state.Index), int(inst.X)+1); err != nil {
			return err
		}

		for i := uint16(0); i <= uint16(inst.X); i++ {
			mc.write(state.Index+i, state.Registers[i])
		}

	case INST_LOAD_REGS:
		if err := mc.checkRange(int(state.Index), int(inst.X)+1); err != nil {
			return err
		}

		for i := uint16(0); i <= uint16(inst.X); i++ {
			state.Registers[i] = mc.read(state.Index + i)
		}

	default:
		return &InvalidOpcodeError{mc.addr, mc.opcode}
	}

	return nil
}
