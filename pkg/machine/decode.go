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
	"fmt"

	"github.com/lassandro/gochip8/pkg/encoding"
)

type Operation uint8

const (
	INST_INVALID Operation = iota
	INST_HALT         // 0000
	INST_CLEAR        // 00E0
	INST_RETURN       // 00EE
	INST_JUMP         // 1NNN
	INST_CALL         // 2NNN
	INST_SKIP_EQ_IMM  // 3XNN
	INST_SKIP_NE_IMM  // 4XNN
	INST_SKIP_EQ_REG  // 5XY0
	INST_SET_IMM      // 6XNN
	INST_ADD_IMM      // 7XNN
	INST_MOVE         // 8XY0
	INST_OR           // 8XY1
	INST_AND          // 8XY2
	INST_XOR          // 8XY3
	INST_ADD_REG      // 8XY4
	INST_SUB          // 8XY5
	INST_SHIFT_RIGHT  // 8XY6
	INST_SUB_REVERSE  // 8XY7
	INST_SHIFT_LEFT   // 8XYE
	INST_SKIP_NE_REG  // 9XY0
	INST_SET_INDEX    // ANNN
	INST_JUMP_OFFSET  // BNNN
	INST_RANDOM       // CXNN
	INST_DRAW         // DXYN
	INST_SKIP_KEY     // EX9E
	INST_SKIP_NOT_KEY // EXA1
	INST_GET_DELAY    // FX07
	INST_WAIT_KEY     // FX0A
	INST_SET_DELAY    // FX15
	INST_SET_SOUND    // FX18
	INST_ADD_INDEX    // FX1E
	INST_FONT         // FX29
	INST_BCD          // FX33
	INST_STORE_REGS   // FX55
	INST_LOAD_REGS    // FX65
)

// A decoded instruction word. Every field is extracted regardless of which
// ones the operation uses.
type Instruction struct {
	Op   Operation
	Word uint16
	X    uint8
	Y    uint8
	N    uint8
	NN   uint8
	NNN  uint16
}

// Decode splits a big-endian instruction word into its operation and
// operand fields. It never touches machine state.
func Decode(word uint16) (Instruction, error) {
	inst := Instruction{
		Word: word,
		X:    encoding.Nibble(word, 2),
		Y:    encoding.Nibble(word, 1),
		N:    encoding.Nibble(word, 0),
		NN:   uint8(word & 0xFF),
		NNN:  word & 0xFFF,
	}

	switch word >> 12 {
	case OP_SYS:
		switch word {
		case WORD_HALT:
			inst.Op = INST_HALT
		case WORD_CLS:
			inst.Op = INST_CLEAR
		case WORD_RET:
			inst.Op = INST_RETURN
		}

	case OP_JP:
		inst.Op = INST_JUMP

	case OP_CALL:
		inst.Op = INST_CALL

	case OP_SEI:
		inst.Op = INST_SKIP_EQ_IMM

	case OP_SNEI:
		inst.Op = INST_SKIP_NE_IMM

	case OP_SE:
		if inst.N == 0 {
			inst.Op = INST_SKIP_EQ_REG
		}

	case OP_LDI:
		inst.Op = INST_SET_IMM

	case OP_ADDI:
		inst.Op = INST_ADD_IMM

	case OP_ALU:
		switch inst.N {
		case ALU_LD:
			inst.Op = INST_MOVE
		case ALU_OR:
			inst.Op = INST_OR
		case ALU_AND:
			inst.Op = INST_AND
		case ALU_XOR:
			inst.Op = INST_XOR
		case ALU_ADD:
			inst.Op = INST_ADD_REG
		case ALU_SUB:
			inst.Op = INST_SUB
		case ALU_SHR:
			inst.Op = INST_SHIFT_RIGHT
		case ALU_SUBN:
			inst.Op = INST_SUB_REVERSE
		case ALU_SHL:
			inst.Op = INST_SHIFT_LEFT
		}

	case OP_SNE:
		if inst.N == 0 {
			inst.Op = INST_SKIP_NE_REG
		}

	case OP_LDIX:
		inst.Op = INST_SET_INDEX

	case OP_JPV0:
		inst.Op = INST_JUMP_OFFSET

	case OP_RND:
		inst.Op = INST_RANDOM

	case OP_DRW:
		inst.Op = INST_DRAW

	case OP_KEY:
		switch inst.NN {
		case KEY_SKP:
			inst.Op = INST_SKIP_KEY
		case KEY_SKNP:
			inst.Op = INST_SKIP_NOT_KEY
		}

	case OP_MISC:
		switch inst.NN {
		case MISC_LD_VX_DT:
			inst.Op = INST_GET_DELAY
		case MISC_LD_VX_K:
			inst.Op = INST_WAIT_KEY
		case MISC_LD_DT_VX:
			inst.Op = INST_SET_DELAY
		case MISC_LD_ST_VX:
			inst.Op = INST_SET_SOUND
		case MISC_ADD_I_VX:
			inst.Op = INST_ADD_INDEX
		case MISC_LD_F_VX:
			inst.Op = INST_FONT
		case MISC_LD_B_VX:
			inst.Op = INST_BCD
		case MISC_LD_MEM:
			inst.Op = INST_STORE_REGS
		case MISC_LD_REG:
			inst.Op = INST_LOAD_REGS
		}
	}

	if inst.Op == INST_INVALID {
		return inst, &InvalidOpcodeError{Opcode: word}
	}

	return inst, nil
}

// String renders the instruction in the conventional mnemonic syntax
func (inst Instruction) String() string {
	switch inst.Op {
	case INST_HALT:
		return "HALT"
	case INST_CLEAR:
		return "CLS"
	case INST_RETURN:
		return "RET"
	case INST_JUMP:
		return fmt.Sprintf("JP %#03x", inst.NNN)
	case INST_CALL:
		return fmt.Sprintf("CALL %#03x", inst.NNN)
	case INST_SKIP_EQ_IMM:
		return fmt.Sprintf("SE V%X, %#02x", inst.X, inst.NN)
	case INST_SKIP_NE_IMM:
		return fmt.Sprintf("SNE V%X, %#02x", inst.X, inst.NN)
	case INST_SKIP_EQ_REG:
		return fmt.Sprintf("SE V%X, V%X", inst.X, inst.Y)
	case INST_SET_IMM:
		return fmt.Sprintf("LD V%X, %#02x", inst.X, inst.NN)
	case INST_ADD_IMM:
		return fmt.Sprintf("ADD V%X, %#02x", inst.X, inst.NN)
	case INST_MOVE:
		return fmt.Sprintf("LD V%X, V%X", inst.X, inst.Y)
	case INST_OR:
		return fmt.Sprintf("OR V%X, V%X", inst.X, inst.Y)
	case INST_AND:
		return fmt.Sprintf("AND V%X, V%X", inst.X, inst.Y)
	case INST_XOR:
		return fmt.Sprintf("XOR V%X, V%X", inst.X, inst.Y)
	case INST_ADD_REG:
		return fmt.Sprintf("ADD V%X, V%X", inst.X, inst.Y)
	case INST_SUB:
		return fmt.Sprintf("SUB V%X, V%X", inst.X, inst.Y)
	case INST_SHIFT_RIGHT:
		return fmt.Sprintf("SHR V%X", inst.X)
	case INST_SUB_REVERSE:
		return fmt.Sprintf("SUBN V%X, V%X", inst.X, inst.Y)
	case INST_SHIFT_LEFT:
		return fmt.Sprintf("SHL V%X", inst.X)
	case INST_SKIP_NE_REG:
		return fmt.Sprintf("SNE V%X, V%X", inst.X, inst.Y)
	case INST_SET_INDEX:
		return fmt.Sprintf("LD I, %#03x", inst.NNN)
	case INST_JUMP_OFFSET:
		return fmt.Sprintf("JP V0, %#03x", inst.NNN)
	case INST_RANDOM:
		return fmt.Sprintf("RND V%X, %#02x", inst.X, inst.NN)
	case INST_DRAW:
		return fmt.Sprintf("DRW V%X, V%X, %d", inst.X, inst.Y, inst.N)
	case INST_SKIP_KEY:
		return fmt.Sprintf("SKP V%X", inst.X)
	case INST_SKIP_NOT_KEY:
		return fmt.Sprintf("SKNP V%X", inst.X)
	case INST_GET_DELAY:
		return fmt.Sprintf("LD V%X, DT", inst.X)
	case INST_WAIT_KEY:
		return fmt.Sprintf("LD V%X, K", inst.X)
	case INST_SET_DELAY:
		return fmt.Sprintf("LD DT, V%X", inst.X)
	case INST_SET_SOUND:
		return fmt.Sprintf("LD ST, V%X", inst.X)
	case INST_ADD_INDEX:
		return fmt.Sprintf("ADD I, V%X", inst.X)
	case INST_FONT:
		return fmt.Sprintf("LD F, V%X", inst.X)
	case INST_BCD:
		return fmt.Sprintf("LD B, V%X", inst.X)
	case INST_STORE_REGS:
		return fmt.Sprintf("LD [I], V%X", inst.X)
	case INST_LOAD_REGS:
		return fmt.Sprintf("LD V%X, [I]", inst.X)
	}

	return fmt.Sprintf("??? %04X", inst.Word)
}
