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

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

var directives = map[string]DirectiveType{
	".ORG":  DIRECTIVE_ORG,
	".BYTE": DIRECTIVE_BYTE,
	".WORD": DIRECTIVE_WORD,
	".END":  DIRECTIVE_END,
}

var instructions = map[string]InstructionType{
	"CLS":  INSTRUCTION_CLS,
	"RET":  INSTRUCTION_RET,
	"JP":   INSTRUCTION_JP,
	"CALL": INSTRUCTION_CALL,
	"SE":   INSTRUCTION_SE,
	"SNE":  INSTRUCTION_SNE,
	"LD":   INSTRUCTION_LD,
	"ADD":  INSTRUCTION_ADD,
	"OR":   INSTRUCTION_OR,
	"AND":  INSTRUCTION_AND,
	"XOR":  INSTRUCTION_XOR,
	"SUB":  INSTRUCTION_SUB,
	"SHR":  INSTRUCTION_SHR,
	"SUBN": INSTRUCTION_SUBN,
	"SHL":  INSTRUCTION_SHL,
	"RND":  INSTRUCTION_RND,
	"DRW":  INSTRUCTION_DRW,
	"SKP":  INSTRUCTION_SKP,
	"SKNP": INSTRUCTION_SKNP,
	"HALT": INSTRUCTION_HALT,
}

var keywords = map[string]OperandType{
	"I":   OPERAND_INDEX,
	"[I]": OPERAND_INDIRECT,
	"DT":  OPERAND_DELAY,
	"ST":  OPERAND_SOUND,
	"K":   OPERAND_KEY,
	"F":   OPERAND_FONT,
	"B":   OPERAND_BCD,
}

type operand struct {
	Kind  OperandType
	Token *Token
	Reg   uint8
}

func parseDirective(ident string) DirectiveType {
	return directives[strings.ToUpper(ident)]
}

func parseInstruction(ident string) InstructionType {
	return instructions[strings.ToUpper(ident)]
}

// Parses V0-VF, case insensitive
func parseRegister(token *Token) (uint8, bool) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	value, err := strconv.ParseUint(ident[1:], 16, 4)

	if err != nil {
		return 0, false
	}

	return uint8(value), true
}

// Negative decimals are accepted down to the signed minimum of the field and
// stored in two's complement.
func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	value, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	limit := int32(1) << bits

	if value < -(limit/2) || value >= limit {
		return 0, &OversizedLiteralError{token.Position, limit - 1, value}
	}

	return uint16(value) & uint16(limit-1), nil
}

func classifyOperand(token *Token) operand {
	op := operand{Token: token}

	switch token.Type {
	case TOKEN_LITERAL:
		op.Kind = OPERAND_LITERAL

	case TOKEN_IDENT:
		if reg, ok := parseRegister(token); ok {
			op.Kind = OPERAND_REGISTER
			op.Reg = reg
		} else if kind, ok := keywords[strings.ToUpper(token.Value)]; ok {
			op.Kind = kind
		} else {
			op.Kind = OPERAND_LABEL
		}
	}

	return op
}

// Splits a source line into tokens. Operands are separated by whitespace or
// commas and ';' starts a comment.
func tokenize(line string, cursor Cursor) ([]Token, []error) {
	var tokens []Token
	var errs []error

	var builder strings.Builder
	var tokenType TokenType = TOKEN_NONE
	var tokenStart int

	flush := func() {
		if builder.Len() > 0 {
			tokens = append(tokens, Token{
				Type:  tokenType,
				Value: builder.String(),
				Position: Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.LineByte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.LineByte,
				},
			})
			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

	for column, char := range line {
		cursor.Column = column + 1

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		switch {
		// Separators
		case unicode.IsSpace(char) || char == ',':
			flush()
			continue

		// Comments
		case char == ';':
			flush()
			return tokens, errs

		case char > unicode.MaxASCII:
			errs = append(errs, &OversizedCharacterError{cursor})
			continue

		// Assembler Directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_DIRECTIVE

		// Literal prefixes (i.e. #42, $2A)
		case char == '#' || char == '$':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_LITERAL

		// Numeric Sign (i.e. -1, #-1)
		case char == '-':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else if tokenType != TOKEN_LITERAL || builder.String() != "#" {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		// Numeric Literal (i.e. 42, 0x2A)
		case unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			}

		// Identifier
		case unicode.IsLetter(char) || char == '_':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		// Indirect index operand [I]
		case char == '[':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_IDENT

		case char == ']':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		// Label declaration suffix
		case char == ':':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		default:
			errs = append(errs, &UnexpectedCharacterError{cursor, char})
			continue
		}

		builder.WriteRune(char)
	}

	flush()

	return tokens, errs
}

// Encodes one instruction word. A returned label token means the low 12 bits
// still have to be filled with that label's address.
func encodeInstruction(
	instruction InstructionType,
	keyword *Token,
	tokens []Token,
) (uint16, *Token, error) {
	operands := make([]operand, len(tokens))

	for i := range tokens {
		operands[i] = classifyOperand(&tokens[i])
	}

	count := func(allowed ...int) error {
		for _, n := range allowed {
			if len(operands) == n {
				return nil
			}
		}

		return &InvalidNumArgumentsError{
			keyword.Position, allowed[len(allowed)-1], len(operands),
		}
	}

	invalid := func(i int, required ...OperandType) error {
		return &InvalidOperandError{
			operands[i].Token.Position, required, operands[i].Kind,
		}
	}

	register := func(i int) (uint16, error) {
		switch operands[i].Kind {
		case OPERAND_REGISTER:
			return uint16(operands[i].Reg), nil
		case OPERAND_LITERAL, OPERAND_NONE:
			return 0, invalid(i, OPERAND_REGISTER)
		}

		return 0, &InvalidRegisterError{operands[i].Token.Position}
	}

	literal := func(i int, bits LiteralType) (uint16, error) {
		if operands[i].Kind != OPERAND_LITERAL {
			return 0, invalid(i, OPERAND_LITERAL)
		}

		return parseLiteral(operands[i].Token, bits)
	}

	address := func(i int) (uint16, *Token, error) {
		switch operands[i].Kind {
		case OPERAND_LITERAL:
			value, err := parseLiteral(operands[i].Token, LITERAL_ADDR)
			return value, nil, err
		case OPERAND_LABEL:
			return 0, operands[i].Token, nil
		}

		return 0, nil, invalid(i, OPERAND_LITERAL, OPERAND_LABEL)
	}

	// Register or byte literal, as taken by SE, SNE, LD and ADD
	source := func(i int) (uint16, bool, error) {
		switch operands[i].Kind {
		case OPERAND_REGISTER:
			return uint16(operands[i].Reg), true, nil
		case OPERAND_LITERAL:
			value, err := parseLiteral(operands[i].Token, LITERAL_BYTE)
			return value, false, err
		}

		return 0, false, invalid(i, OPERAND_REGISTER, OPERAND_LITERAL)
	}

	encode := func(family, x, y, n uint16) uint16 {
		return family<<12 | (x&0xF)<<8 | (y&0xF)<<4 | (n & 0xF)
	}

	misc := func(family uint16, x uint16, nn uint8) uint16 {
		return family<<12 | (x&0xF)<<8 | uint16(nn)
	}

	alu := func(n uint8) (uint16, *Token, error) {
		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		y, err := register(1)

		if err != nil {
			return 0, nil, err
		}

		return encode(machine.OP_ALU, x, y, uint16(n)), nil, nil
	}

	switch instruction {
	// CLS  |0000|0000|1110|0000| Clear display
	// RET  |0000|0000|1110|1110| Return from subroutine
	// HALT |0000|0000|0000|0000| Stop execution
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CLS, INSTRUCTION_RET, INSTRUCTION_HALT:
		if err := count(0); err != nil {
			return 0, nil, err
		}

		switch instruction {
		case INSTRUCTION_CLS:
			return machine.WORD_CLS, nil, nil
		case INSTRUCTION_RET:
			return machine.WORD_RET, nil, nil
		}

		return machine.WORD_HALT, nil, nil

	// JP   |0001|NNN           | Jump
	// JP   |1011|NNN           | Jump to NNN + V0
	// CALL |0010|NNN           | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_JP:
		if err := count(1, 2); err != nil {
			return 0, nil, err
		}

		if len(operands) == 2 {
			if reg, err := register(0); err != nil {
				return 0, nil, err
			} else if reg != 0 {
				return 0, nil, &InvalidRegisterError{operands[0].Token.Position}
			}

			nnn, label, err := address(1)
			return machine.OP_JPV0<<12 | nnn, label, err
		}

		nnn, label, err := address(0)
		return machine.OP_JP<<12 | nnn, label, err

	case INSTRUCTION_CALL:
		if err := count(1); err != nil {
			return 0, nil, err
		}

		nnn, label, err := address(0)
		return machine.OP_CALL<<12 | nnn, label, err

	// SE   |0011|X   |NN       | Skip if Vx == NN
	// SE   |0101|X   |Y   |0000| Skip if Vx == Vy
	// SNE  |0100|X   |NN       | Skip if Vx != NN
	// SNE  |1001|X   |Y   |0000| Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SE, INSTRUCTION_SNE:
		if err := count(2); err != nil {
			return 0, nil, err
		}

		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		value, isRegister, err := source(1)

		if err != nil {
			return 0, nil, err
		}

		var family uint16

		if instruction == INSTRUCTION_SE {
			family = machine.OP_SEI
			if isRegister {
				family = machine.OP_SE
			}
		} else {
			family = machine.OP_SNEI
			if isRegister {
				family = machine.OP_SNE
			}
		}

		if isRegister {
			return encode(family, x, value, 0), nil, nil
		}

		return misc(family, x, uint8(value)), nil, nil

	// LD   |0110|X   |NN       | Vx = NN
	// LD   |1000|X   |Y   |0000| Vx = Vy
	// LD   |1010|NNN           | I = NNN
	// LD   |1111|X   |NN       | Timer, key, font, BCD and block transfers
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD:
		if err := count(2); err != nil {
			return 0, nil, err
		}

		switch operands[0].Kind {
		case OPERAND_REGISTER:
			x := uint16(operands[0].Reg)

			switch operands[1].Kind {
			case OPERAND_DELAY:
				return misc(machine.OP_MISC, x, machine.MISC_LD_VX_DT), nil, nil
			case OPERAND_KEY:
				return misc(machine.OP_MISC, x, machine.MISC_LD_VX_K), nil, nil
			case OPERAND_INDIRECT:
				return misc(machine.OP_MISC, x, machine.MISC_LD_REG), nil, nil
			}

			value, isRegister, err := source(1)

			if err != nil {
				return 0, nil, err
			} else if isRegister {
				return encode(machine.OP_ALU, x, value, uint16(machine.ALU_LD)), nil, nil
			}

			return misc(machine.OP_LDI, x, uint8(value)), nil, nil

		case OPERAND_INDEX:
			nnn, label, err := address(1)
			return machine.OP_LDIX<<12 | nnn, label, err

		case OPERAND_DELAY, OPERAND_SOUND, OPERAND_FONT, OPERAND_BCD,
			OPERAND_INDIRECT:
			x, err := register(1)

			if err != nil {
				return 0, nil, err
			}

			nn := map[OperandType]uint8{
				OPERAND_DELAY:    machine.MISC_LD_DT_VX,
				OPERAND_SOUND:    machine.MISC_LD_ST_VX,
				OPERAND_FONT:     machine.MISC_LD_F_VX,
				OPERAND_BCD:      machine.MISC_LD_B_VX,
				OPERAND_INDIRECT: machine.MISC_LD_MEM,
			}[operands[0].Kind]

			return misc(machine.OP_MISC, x, nn), nil, nil
		}

		return 0, nil, invalid(
			0,
			OPERAND_REGISTER,
			OPERAND_INDEX,
			OPERAND_INDIRECT,
			OPERAND_DELAY,
			OPERAND_SOUND,
			OPERAND_FONT,
			OPERAND_BCD,
		)

	// ADD  |0111|X   |NN       | Vx += NN
	// ADD  |1000|X   |Y   |0100| Vx += Vy
	// ADD  |1111|X   |0001|1110| I += Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_ADD:
		if err := count(2); err != nil {
			return 0, nil, err
		}

		switch operands[0].Kind {
		case OPERAND_INDEX:
			x, err := register(1)

			if err != nil {
				return 0, nil, err
			}

			return misc(machine.OP_MISC, x, machine.MISC_ADD_I_VX), nil, nil

		case OPERAND_REGISTER:
			x := uint16(operands[0].Reg)
			value, isRegister, err := source(1)

			if err != nil {
				return 0, nil, err
			} else if isRegister {
				return encode(machine.OP_ALU, x, value, uint16(machine.ALU_ADD)), nil, nil
			}

			return misc(machine.OP_ADDI, x, uint8(value)), nil, nil
		}

		return 0, nil, invalid(0, OPERAND_REGISTER, OPERAND_INDEX)

	// OR   |1000|X   |Y   |0001| Vx |= Vy
	// AND  |1000|X   |Y   |0010| Vx &= Vy
	// XOR  |1000|X   |Y   |0011| Vx ^= Vy
	// SUB  |1000|X   |Y   |0101| Vx -= Vy
	// SUBN |1000|X   |Y   |0111| Vx = Vy - Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_OR, INSTRUCTION_AND, INSTRUCTION_XOR, INSTRUCTION_SUB,
		INSTRUCTION_SUBN:
		if err := count(2); err != nil {
			return 0, nil, err
		}

		return alu(map[InstructionType]uint8{
			INSTRUCTION_OR:   machine.ALU_OR,
			INSTRUCTION_AND:  machine.ALU_AND,
			INSTRUCTION_XOR:  machine.ALU_XOR,
			INSTRUCTION_SUB:  machine.ALU_SUB,
			INSTRUCTION_SUBN: machine.ALU_SUBN,
		}[instruction])

	// SHR  |1000|X   |Y   |0110| Vx >>= 1
	// SHL  |1000|X   |Y   |1110| Vx <<= 1
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	// Vy is optional and only kept in the encoding.
	case INSTRUCTION_SHR, INSTRUCTION_SHL:
		if err := count(1, 2); err != nil {
			return 0, nil, err
		}

		n := machine.ALU_SHR
		if instruction == INSTRUCTION_SHL {
			n = machine.ALU_SHL
		}

		if len(operands) == 2 {
			return alu(n)
		}

		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		return encode(machine.OP_ALU, x, 0, uint16(n)), nil, nil

	// RND  |1100|X   |NN       | Vx = random & NN
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_RND:
		if err := count(2); err != nil {
			return 0, nil, err
		}

		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		nn, err := literal(1, LITERAL_BYTE)

		if err != nil {
			return 0, nil, err
		}

		return misc(machine.OP_RND, x, uint8(nn)), nil, nil

	// DRW  |1101|X   |Y   |N   | Draw N-byte sprite at I to (Vx, Vy)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_DRW:
		if err := count(3); err != nil {
			return 0, nil, err
		}

		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		y, err := register(1)

		if err != nil {
			return 0, nil, err
		}

		n, err := literal(2, LITERAL_NIBBLE)

		if err != nil {
			return 0, nil, err
		}

		return encode(machine.OP_DRW, x, y, n), nil, nil

	// SKP  |1110|X   |1001|1110| Skip if key Vx is pressed
	// SKNP |1110|X   |1010|0001| Skip if key Vx is not pressed
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SKP, INSTRUCTION_SKNP:
		if err := count(1); err != nil {
			return 0, nil, err
		}

		x, err := register(0)

		if err != nil {
			return 0, nil, err
		}

		nn := machine.KEY_SKP
		if instruction == INSTRUCTION_SKNP {
			nn = machine.KEY_SKNP
		}

		return misc(machine.OP_KEY, x, nn), nil, nil
	}

	return 0, nil, &UnknownIdentifierError{keyword.Position, keyword.Value}
}

// AssembleSource assembles CHIP-8 source into a program image that starts at
// the load origin. With a non-nil symtable, source offsets and labels are
// recorded for every assembled address.
func AssembleSource(input io.ReadSeeker, symtable *SymTable) (result []byte, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     uint16
		Size     LiteralType
		Position Cursor
	}

	var memory [machine.MEMORY_SIZE]byte
	var labels = make(map[string]uint16)
	var labelRefs []LabelRef

	var program = int(machine.MEMSPACE_PROGRAM)
	var end = program

	var cursor = Cursor{Line: 1}

	errs = make([]error, 0)

	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return nil, append(errs, err)
	}

	emit := func(position Cursor, values ...byte) bool {
		if program+len(values) > machine.MEMORY_SIZE {
			errs = append(
				errs, &OversizedBinaryError{position, machine.MEMORY_SIZE},
			)
			return false
		}

		if symtable != nil {
			symtable.Symbols[uint16(program)] = position.LineByte
		}

		copy(memory[program:], values)
		program += len(values)

		if program > end {
			end = program
		}

		return true
	}

	scanner := bufio.NewScanner(input)

	// Process:
	// - Tokenize line
	// - Declare label, if any
	// - Assemble directive or instruction
lines:
	for scanner.Scan() {
		line := scanner.Text()
		lineCursor := cursor

		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte = cursor.Byte

		tokens, lineErrs := tokenize(line, lineCursor)

		// Pass on assembling the line if it could not be parsed
		if len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			continue
		}

		if len(tokens) == 0 {
			continue
		}

		first := &tokens[0]

		if first.Type == TOKEN_IDENT &&
			parseInstruction(first.Value) == INSTRUCTION_INVALID {
			name := strings.TrimSuffix(first.Value, ":")

			if kind := classifyOperand(&Token{Type: TOKEN_IDENT, Value: name}).Kind; kind != OPERAND_LABEL {
				errs = append(
					errs, &UnknownIdentifierError{first.Position, first.Value},
				)
				continue
			}

			if _, exists := labels[name]; exists {
				errs = append(
					errs, &RedeclaredLabelError{first.Position, name},
				)
			} else {
				labels[name] = uint16(program)
			}

			// No need to assemble label-only statements
			if tokens = tokens[1:]; len(tokens) == 0 {
				continue
			}
		}

		keyword := &tokens[0]
		operands := tokens[1:]

		var directive DirectiveType
		var instruction InstructionType

		switch keyword.Type {
		case TOKEN_DIRECTIVE:
			directive = parseDirective(keyword.Value)
		case TOKEN_IDENT:
			instruction = parseInstruction(keyword.Value)
		}

		if directive == DIRECTIVE_INVALID && instruction == INSTRUCTION_INVALID {
			errs = append(
				errs, &UnknownIdentifierError{keyword.Position, keyword.Value},
			)
			continue
		}

		switch directive {
		// .END
		case DIRECTIVE_END:
			if count := len(operands); count != 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 0, count},
				)
			}

			break lines

		// .ORG addr
		case DIRECTIVE_ORG:
			if count := len(operands); count != 1 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
				)
				continue
			}

			if operands[0].Type != TOKEN_LITERAL {
				errs = append(errs, &InvalidOperandError{
					operands[0].Position,
					[]OperandType{OPERAND_LITERAL},
					classifyOperand(&operands[0]).Kind,
				})
				continue
			}

			origin, err := parseLiteral(&operands[0], LITERAL_ADDR)

			if err != nil {
				errs = append(errs, err)
				continue
			}

			if origin < machine.MEMSPACE_PROGRAM {
				errs = append(
					errs, &InvalidOriginError{operands[0].Position, origin},
				)
				continue
			}

			program = int(origin)
			continue

		// .BYTE b [, b...]
		// .WORD w|label [, w|label...]
		case DIRECTIVE_BYTE, DIRECTIVE_WORD:
			if len(operands) == 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
				)
				continue
			}

			values := make([]byte, 0, len(operands)*2)
			failed := false

			for i := range operands {
				op := classifyOperand(&operands[i])

				if directive == DIRECTIVE_WORD && op.Kind == OPERAND_LABEL {
					labelRefs = append(labelRefs, LabelRef{
						op.Token.Value,
						uint16(program + len(values)),
						LITERAL_WORD,
						op.Token.Position,
					})
					values = append(values, 0, 0)
					continue
				}

				if op.Kind != OPERAND_LITERAL {
					required := []OperandType{OPERAND_LITERAL}

					if directive == DIRECTIVE_WORD {
						required = append(required, OPERAND_LABEL)
					}

					errs = append(errs, &InvalidOperandError{
						op.Token.Position, required, op.Kind,
					})
					failed = true
					continue
				}

				if directive == DIRECTIVE_BYTE {
					value, err := parseLiteral(op.Token, LITERAL_BYTE)

					if err != nil {
						errs = append(errs, err)
						failed = true
					}

					values = append(values, byte(value))
				} else {
					value, err := parseLiteral(op.Token, LITERAL_WORD)

					if err != nil {
						errs = append(errs, err)
						failed = true
					}

					values = append(values, byte(value>>8), byte(value))
				}
			}

			if !failed && !emit(keyword.Position, values...) {
				return nil, errs
			}

			continue
		}

		word, label, err := encodeInstruction(instruction, keyword, operands)

		if err != nil {
			errs = append(errs, err)
			continue
		}

		if label != nil {
			labelRefs = append(labelRefs, LabelRef{
				label.Value, uint16(program), LITERAL_ADDR, label.Position,
			})
		}

		if !emit(keyword.Position, byte(word>>8), byte(word)) {
			return nil, errs
		}
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if ref.Size == LITERAL_ADDR {
			memory[ref.Addr] |= byte(addr>>8) & 0x0F
		} else {
			memory[ref.Addr] = byte(addr >> 8)
		}

		memory[ref.Addr+1] = byte(addr)
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	result = make([]byte, end-int(machine.MEMSPACE_PROGRAM))
	copy(result, memory[machine.MEMSPACE_PROGRAM:end])

	return result, errs
}
