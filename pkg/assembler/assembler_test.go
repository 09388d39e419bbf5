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

package assembler_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/machine"
)

type testCase struct {
	Name     string
	Input    string
	Output   map[uint16]uint16
	Bytes    map[uint16]byte
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable = nil

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, errs := assembler.AssembleSource(
		strings.NewReader(test.Input), symtarget,
	)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	expected := make(map[uint16]byte)
	end := int(machine.MEMSPACE_PROGRAM)

	for addr, word := range test.Output {
		expected[addr] = byte(word >> 8)
		expected[addr+1] = byte(word)
	}

	for addr, value := range test.Bytes {
		expected[addr] = value
	}

	for addr := range expected {
		if int(addr)+1 > end {
			end = int(addr) + 1
		}
	}

	if size := len(result); size != end-int(machine.MEMSPACE_PROGRAM) {
		t.Fatalf(
			"Invalid buffer length\n"+
				"want:%d\n"+
				"have:%d",
			end-int(machine.MEMSPACE_PROGRAM),
			size,
		)
	}

	for i, have := range result {
		addr := machine.MEMSPACE_PROGRAM + uint16(i)
		want, exists := expected[addr]

		if exists && have != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#02x ([%#03x])\n"+
					"have:%#02x",
				want,
				addr,
				have,
			)
		} else if !exists && have != 0 {
			t.Fatalf(
				"Unexpected instruction byte\n"+
					"want:0x00\n"+
					"have:%#02x (result [%#03x])",
				have,
				addr,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(symtarget.Symbols, test.SymTable.Symbols) {
			t.Fatalf(
				"Symtable encoding mismatch\n"+
					"want:%v (test.SymTable.Symbols)\n"+
					"have:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(symtarget.Labels, test.SymTable.Labels) {
			t.Fatalf(
				"Symtable encoding mismatch\n"+
					"want:%v (test.SymTable.Labels)\n"+
					"have:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	_, errs := assembler.AssembleSource(strings.NewReader(test.Input), nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T (%v)",
			t.Name(),
			test.Error,
			errs[0],
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

// CLS  |0000|0000|1110|0000| Clear display
// RET  |0000|0000|1110|1110| Return from subroutine
// HALT |0000|0000|0000|0000| Stop execution
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestSystem(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "CLS",
			Input:  `CLS`,
			Output: map[uint16]uint16{0x200: 0x00E0},
		},
		{
			Name:   "RET",
			Input:  `ret`,
			Output: map[uint16]uint16{0x200: 0x00EE},
		},
		{
			Name:   "HALT",
			Input:  "CLS\nHALT",
			Output: map[uint16]uint16{0x200: 0x00E0, 0x202: 0x0000},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "CLS Operand",
			Input: `CLS V0`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "RET Operand",
			Input: `RET 0x200`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// JP   |0001|NNN           | Jump
// JP   |1011|NNN           | Jump to NNN + V0
// CALL |0010|NNN           | Call subroutine
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestJump(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "JP",
			Input:  `JP 0x300`,
			Output: map[uint16]uint16{0x200: 0x1300},
		},
		{
			Name:   "JP Label",
			Input:  "JP end\nCLS\nend HALT",
			Output: map[uint16]uint16{0x200: 0x1204, 0x202: 0x00E0, 0x204: 0x0000},
		},
		{
			Name:   "JP V0",
			Input:  `JP V0, $300`,
			Output: map[uint16]uint16{0x200: 0xB300},
		},
		{
			Name:   "CALL",
			Input:  `CALL #768`,
			Output: map[uint16]uint16{0x200: 0x2300},
		},
		{
			Name:   "CALL Label",
			Input:  "loop: CALL loop",
			Output: map[uint16]uint16{0x200: 0x2200},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "JP Oversized",
			Input: `JP 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "JP Unknown label",
			Input: `JP nowhere`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "JP Register",
			Input: `JP DT`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "JP V1",
			Input: `JP V1, 0x300`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "CALL Arguments",
			Input: `CALL`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// SE   |0011|X   |NN       | Skip if Vx == NN
// SE   |0101|X   |Y   |0000| Skip if Vx == Vy
// SNE  |0100|X   |NN       | Skip if Vx != NN
// SNE  |1001|X   |Y   |0000| Skip if Vx != Vy
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "SE NN",
			Input:  `SE V1, 0x42`,
			Output: map[uint16]uint16{0x200: 0x3142},
		},
		{
			Name:   "SE Vy",
			Input:  `se v1, v2`,
			Output: map[uint16]uint16{0x200: 0x5120},
		},
		{
			Name:   "SNE NN",
			Input:  `SNE V1, #66`,
			Output: map[uint16]uint16{0x200: 0x4142},
		},
		{
			Name:   "SNE Vy",
			Input:  `SNE VA, VF`,
			Output: map[uint16]uint16{0x200: 0x9AF0},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "SE Arguments",
			Input: `SE V1`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "SE Literal Vx",
			Input: `SE 0x1, V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SE Bad Vx",
			Input: `SE VG, V1`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "SE Oversized NN",
			Input: `SE V1, 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "SE Label NN",
			Input: `SE V1, value`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SNE Bad literal",
			Input: `SNE V1, 0xZZ`,
			Error: &assembler.InvalidLiteralError{},
		},
	})
}

// LD   |0110|X   |NN       | Vx = NN
// LD   |1000|X   |Y   |0000| Vx = Vy
// LD   |1010|NNN           | I = NNN
// LD   |1111|X   |NN       | Timer, key, font, BCD and block transfers
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestLoad(t *testing.T) {
	tests := []struct {
		Input string
		Word  uint16
	}{
		{`LD V1, 0x2A`, 0x612A},
		{`LD V1, #-1`, 0x61FF},
		{`LD V1, V2`, 0x8120},
		{`LD I, 0x123`, 0xA123},
		{`LD V3, DT`, 0xF307},
		{`LD V3, K`, 0xF30A},
		{`LD DT, V3`, 0xF315},
		{`LD ST, V3`, 0xF318},
		{`LD F, V3`, 0xF329},
		{`LD B, V3`, 0xF333},
		{`LD [I], V3`, 0xF355},
		{`LD V3, [I]`, 0xF365},
	}

	cases := make([]testCase, 0, len(tests))
	for _, test := range tests {
		cases = append(cases, testCase{
			Name:   test.Input,
			Input:  test.Input,
			Output: map[uint16]uint16{0x200: test.Word},
		})
	}

	testSuccess(t, cases)

	testFail(t, []failCase{
		{
			Name:  "LD Arguments",
			Input: `LD V1, V2, V3`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "LD Literal destination",
			Input: `LD 0x10, V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD DT Literal",
			Input: `LD DT, 0x10`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD K destination",
			Input: `LD K, V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD I Oversized",
			Input: `LD I, 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LD Undersized",
			Input: `LD V1, #-129`,
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

// ADD  |0111|X   |NN       | Vx += NN
// ADD  |1000|X   |Y   |0100| Vx += Vy
// ADD  |1111|X   |0001|1110| I += Vx
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestAdd(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ADD NN",
			Input:  `ADD V1, 5`,
			Output: map[uint16]uint16{0x200: 0x7105},
		},
		{
			Name:   "ADD Vy",
			Input:  `ADD V1, V2`,
			Output: map[uint16]uint16{0x200: 0x8124},
		},
		{
			Name:   "ADD I",
			Input:  `ADD I, V3`,
			Output: map[uint16]uint16{0x200: 0xF31E},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ADD DT",
			Input: `ADD DT, V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "ADD I Literal",
			Input: `ADD I, 1`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

// OR   |1000|X   |Y   |0001| Vx |= Vy
// AND  |1000|X   |Y   |0010| Vx &= Vy
// XOR  |1000|X   |Y   |0011| Vx ^= Vy
// SUB  |1000|X   |Y   |0101| Vx -= Vy
// SHR  |1000|X   |Y   |0110| Vx >>= 1
// SUBN |1000|X   |Y   |0111| Vx = Vy - Vx
// SHL  |1000|X   |Y   |1110| Vx <<= 1
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestALU(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Register operations",
			Input: `
				OR   V1, V2
				AND  V1, V2
				XOR  V1, V2
				SUB  V1, V2
				SHR  V1
				SUBN V1, V2
				SHL  V1, V2
			`,
			Output: map[uint16]uint16{
				0x200: 0x8121,
				0x202: 0x8122,
				0x204: 0x8123,
				0x206: 0x8125,
				0x208: 0x8106,
				0x20A: 0x8127,
				0x20C: 0x812E,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "OR Literal",
			Input: `OR V1, 0x01`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SHR Arguments",
			Input: `SHR`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// RND  |1100|X   |NN       | Vx = random & NN
// DRW  |1101|X   |Y   |N   | Draw N-byte sprite at I to (Vx, Vy)
// SKP  |1110|X   |1001|1110| Skip if key Vx is pressed
// SKNP |1110|X   |1010|0001| Skip if key Vx is not pressed
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestMisc(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "RND",
			Input:  `RND V5, 0x0F`,
			Output: map[uint16]uint16{0x200: 0xC50F},
		},
		{
			Name:   "DRW",
			Input:  `DRW V1, V2, 15`,
			Output: map[uint16]uint16{0x200: 0xD12F},
		},
		{
			Name:   "SKP",
			Input:  `SKP VE`,
			Output: map[uint16]uint16{0x200: 0xEE9E},
		},
		{
			Name:   "SKNP",
			Input:  `SKNP V0`,
			Output: map[uint16]uint16{0x200: 0xE0A1},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "DRW Oversized",
			Input: `DRW V1, V2, 16`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "RND Register",
			Input: `RND V1, V2`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SKP Literal",
			Input: `SKP 1`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

func TestOrg(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ORG",
			Input:  ".ORG 0x204\nCLS",
			Output: map[uint16]uint16{0x204: 0x00E0},
		},
		{
			Name:   "ORG Backwards",
			Input:  "CLS\n.ORG 0x210\nRET\n.ORG 0x202\nHALT",
			Output: map[uint16]uint16{0x200: 0x00E0, 0x210: 0x00EE},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ORG Interpreter space",
			Input: `.ORG 0x100`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  "ORG Label",
			Input: `.ORG start`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "ORG Arguments",
			Input: `.ORG`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestData(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "BYTE",
			Input: ".BYTE 0xF0, 0x90, #144",
			Bytes: map[uint16]byte{0x200: 0xF0, 0x201: 0x90, 0x202: 0x90},
		},
		{
			Name:   "WORD",
			Input:  ".WORD 0x1234 $5678",
			Output: map[uint16]uint16{0x200: 0x1234, 0x202: 0x5678},
		},
		{
			Name:   "WORD Label",
			Input:  "here: .WORD here",
			Output: map[uint16]uint16{0x200: 0x0200},
		},
		{
			Name:  "Sprite",
			Input: "LD I, sprite\nHALT\nsprite: .BYTE 0x80",
			Output: map[uint16]uint16{
				0x200: 0xA204,
				0x202: 0x0000,
			},
			Bytes: map[uint16]byte{0x204: 0x80},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "BYTE Oversized",
			Input: `.BYTE 0x100`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "BYTE Label",
			Input: `.BYTE sprite`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "WORD Arguments",
			Input: `.WORD`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Unknown directive",
			Input: `.FILL 0x1`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestEnd(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "END",
			Input:  "CLS\n.END\nRET",
			Output: map[uint16]uint16{0x200: 0x00E0},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "END Arguments",
			Input: `.END 0x200`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Comment",
			Input:  "; Header\nCLS ; clear\n;RET",
			Output: map[uint16]uint16{0x200: 0x00E0},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unexpected character",
			Input: `CLS @`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non ASCII",
			Input: `CLS é`,
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Label line",
			Input:  "CLS\nloop\nJP loop",
			Output: map[uint16]uint16{0x200: 0x00E0, 0x202: 0x1202},
		},
		{
			Name:   "Label colon",
			Input:  "loop: JP loop",
			Output: map[uint16]uint16{0x200: 0x1200},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Redeclared",
			Input: "loop CLS\nloop RET",
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Unknown instruction",
			Input: `loop BEEP`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Register name",
			Input: `V0 CLS`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testFail(t, []failCase{
		{
			Name:  "Oversized binary",
			Input: ".ORG 0xFFE\nCLS\nCLS",
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	lines := []string{
		"; Doubles V0 twice",
		"start:  LD V0, 5",
		"        CALL double",
		"        HALT",
		"",
		"double: ADD V0, V0",
		"        RET",
	}

	offsets := make([]int64, len(lines))
	for i := 1; i < len(lines); i++ {
		offsets[i] = offsets[i-1] + int64(len(lines[i-1])+1)
	}

	testSuccess(t, []testCase{
		{
			Name:  "Symtable",
			Input: strings.Join(lines, "\n"),
			Output: map[uint16]uint16{
				0x200: 0x6005,
				0x202: 0x2206,
				0x204: 0x0000,
				0x206: 0x8004,
				0x208: 0x00EE,
			},
			SymTable: &assembler.SymTable{
				Symbols: map[uint16]int64{
					0x200: offsets[1],
					0x202: offsets[2],
					0x204: offsets[3],
					0x206: offsets[5],
					0x208: offsets[6],
				},
				Labels: map[uint16]string{
					0x200: "start",
					0x206: "double",
				},
			},
		},
	})
}

func TestSymtableEncoding(t *testing.T) {
	symtable := assembler.NewSymTable("/tmp/game.c8s")
	symtable.Symbols[0x200] = 12
	symtable.Labels[0x200] = "start"

	var buffer bytes.Buffer

	if err := symtable.Encode(&buffer); err != nil {
		t.Fatal(err)
	}

	decoded, err := assembler.DecodeSymTable(&buffer)

	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(decoded, symtable) {
		t.Errorf("Decoded symtable mismatch\nwant:%+v\nhave:%+v", symtable, decoded)
	}

	if have := assembler.SymTablePath("roms/game.ch8"); have != "roms/game.c8db" {
		t.Errorf("Symtable path\nwant:roms/game.c8db\nhave:%s", have)
	}
}

func TestAssembledProgram(t *testing.T) {
	source := `
		      LD   V0, 5
		      LD   V1, 10
		      CALL twice
		      CALL twice
		      HALT

		      .ORG 0x300
		twice ADD  V0, V1
		      ADD  V0, V1
		      RET
	`

	image, errs := assembler.AssembleSource(strings.NewReader(source), nil)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	var mc machine.Machine

	if err := mc.Load(image); err != nil {
		t.Fatal(err)
	}

	for !mc.Halted() {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if mc.State.Registers[0] != 45 || mc.State.Registers[1] != 10 {
		t.Errorf(
			"Register mismatch\nwant:V0=45 V1=10\nhave:V0=%d V1=%d",
			mc.State.Registers[0],
			mc.State.Registers[1],
		)
	}
}
