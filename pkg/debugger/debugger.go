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

package debugger

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lassandro/gochip8/pkg/machine"
)

func New() *Debugger {
	return &Debugger{
		Break:   true,
		Signals: make(chan Signal, 16),
	}
}

func (dbg *Debugger) atBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if addr == breakpoint.Addr {
			return true
		}
	}

	return false
}

// Interrupt requests break mode before the next fetch. Unlike setting Break
// it may be called from any goroutine.
func (dbg *Debugger) Interrupt() {
	dbg.interrupted.Store(true)
}

func (dbg *Debugger) Step(mc *machine.Machine) (bool, error) {
	if dbg.interrupted.Swap(false) {
		dbg.Break = true
	}

	if !dbg.Break && !dbg.atBreakpoint(mc.State.Program) {
		return true, nil
	}

	if dbg.HandleBreak != nil {
		if err := dbg.HandleBreak(dbg, mc); err != nil {
			return false, err
		}

		return true, nil
	}

	if dbg.Signals == nil {
		return true, nil
	}

	dbg.Break = true

	select {
	case signal := <-dbg.Signals:
		switch signal {
		case SIGNAL_STEP:
			return true, nil
		case SIGNAL_CONTINUE:
			dbg.Break = false
			return true, nil
		case SIGNAL_QUIT:
			return false, machine.ErrQuit
		}
	default:
	}

	return false, nil
}

// Send queues a signal without blocking; it reports false if the queue is
// full.
func (dbg *Debugger) Send(signal Signal) bool {
	select {
	case dbg.Signals <- signal:
		return true
	default:
		return false
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Label(addr uint16) (string, bool) {
	if dbg.SymTable == nil {
		return "", false
	}

	label, exists := dbg.SymTable.Labels[addr]
	return label, exists
}

func (dbg *Debugger) PrintSource(out io.Writer, addr uint16, count uint16) {
	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(out, "No instruction found at %#03x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		if current, exists := lines[linebyte]; !exists || lineaddr < current {
			lines[linebyte] = lineaddr
		}
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, exists := lines[offset]; exists {
			fmt.Fprintf(out, "\033[1m[%#03x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(out, "\033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (dbg *Debugger) PrintMem(
	out io.Writer,
	mc *machine.MachineState,
	addr, count uint16,
) {
	for i := 0; i < int(count); i++ {
		cell := int(addr) + i

		if cell >= machine.MEMORY_SIZE {
			break
		}

		if i == 0 {
			fmt.Fprintf(out, "\033[1m[%#03x]\033[0m ", cell)
		} else if i%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#03x]\033[0m ", cell)
		}

		result := mc.Memory[cell]

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%02x ", result)
		}
	}

	fmt.Fprintln(out)
}

func (dbg *Debugger) PrintRegs(out io.Writer, mc *machine.MachineState) {
	for i, value := range mc.Registers {
		fmt.Fprintf(out, "\033[1mV%X\033[0m %02x  ", i, value)

		if i%8 == 7 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintf(
		out,
		"\033[1mPC\033[0m %#03x  \033[1mI\033[0m %#03x  "+
			"\033[1mSP\033[0m %d  \033[1mDT\033[0m %d  \033[1mST\033[0m %d\n",
		mc.Program,
		mc.Index,
		mc.StackPointer,
		mc.Timers.Delay,
		mc.Timers.Sound,
	)

	fmt.Fprintf(out, "\033[1mState\033[0m %s", mc.Status)

	if mc.Fault != nil {
		fmt.Fprintf(out, " (%v)", mc.Fault)
	}

	fmt.Fprintln(out)
}

// PrintInstruction writes the mnemonic of the word at addr
func (dbg *Debugger) PrintInstruction(
	out io.Writer,
	mc *machine.MachineState,
	addr uint16,
) {
	if int(addr)+1 >= machine.MEMORY_SIZE {
		fmt.Fprintf(out, "[%#03x] <out of bounds>\n", addr)
		return
	}

	word := uint16(mc.Memory[addr])<<8 | uint16(mc.Memory[addr+1])
	inst, _ := machine.Decode(word)

	if label, exists := dbg.Label(addr); exists {
		fmt.Fprintf(out, "%s:\n", label)
	}

	fmt.Fprintf(out, "\033[1m[%#03x]\033[0m %04X  %s\n", addr, word, inst)
}
