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

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Interactive break handler for the terminal front end
type repl struct {
	screen  *terminal
	image   []byte
	lastcmd []string

	// Watchpoint hit waiting to be reported by the next break
	watched   bool
	watchAddr uint16
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Addr == addr {
				return
			}
		}

		dbg.Breakpoints = append(dbg.Breakpoints, debugger.Breakpoint{Addr: addr})
		fmt.Printf("Breakpoint added [%#03x]\n", addr)

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		fmtstring := indexFormat(len(dbg.Breakpoints), "%#03x\n")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, ok := parseIndex(args[0], len(dbg.Breakpoints))

		if !ok {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

func watchName(wtype debugger.WatchpointType) string {
	switch wtype {
	case debugger.ReadWatch:
		return "read"
	case debugger.WriteWatch:
		return "write"
	case debugger.ReadWriteWatch:
		return "readwrite"
	}

	return "<invalid>"
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Addr == addr && watchpoint.Type == wtype {
				return
			}
		}

		dbg.Watchpoints = append(
			dbg.Watchpoints,
			debugger.Watchpoint{Addr: addr, Type: wtype},
		)

		fmt.Printf("Watchpoint added [%#03x] (%s)\n", addr, watchName(wtype))

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		fmtstring := indexFormat(len(dbg.Watchpoints), "%#03x %s\n")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchName(watchpoint.Type))
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, ok := parseIndex(args[0], len(dbg.Watchpoints))

		if !ok {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

// Zero padded list numbering wide enough for count entries
func indexFormat(count int, suffix string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: ", int64(digits)+1) + suffix
}

func parseIndex(s string, count int) (int, bool) {
	i, err := strconv.ParseInt(s, 10, 64)

	if err != nil || i < 0 || i >= int64(count) {
		return 0, false
	}

	return int(i), true
}

// setRegister writes value into the register named by name (V0-VF, I, PC,
// DT, ST). It returns false for unknown names and oversized values.
func setRegister(mc *machine.MachineState, name string, value uint16) bool {
	name = strings.ToUpper(name)

	switch name {
	case "I":
		mc.Index = value
		return true
	case "PC":
		mc.Program = value
		return true
	}

	if value > math.MaxUint8 {
		return false
	}

	switch name {
	case "DT":
		mc.Timers.Delay = uint8(value)
		return true
	case "ST":
		mc.Timers.Sound = uint8(value)
		return true
	}

	if len(name) == 2 && name[0] == 'V' {
		index, err := strconv.ParseUint(name[1:], 16, 4)

		if err == nil {
			mc.Registers[index] = uint8(value)
			return true
		}
	}

	return false
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [V#|I|PC|DT|ST] [0x##]"

	if len(args) == 0 {
		dbg.PrintRegs(os.Stdout, mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if !setRegister(mc, args[0], value) {
		log.Println("Invalid register or value")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#02x\n", strings.ToUpper(args[0]), value)
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var addr uint16 = mc.Program
	var size uint16 = 3

	if len(args) > 0 {
		if labelAddr, exists := findLabel(dbg, args[0]); exists {
			addr = labelAddr
		} else if value, err := encoding.DecodeHex(args[0]); err == nil {
			addr = value
		} else if value, err := strconv.ParseUint(args[0], 10, 16); err == nil {
			size = uint16(value)
		} else {
			log.Println(err)
			return
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintSource(os.Stdout, addr, size)
}

func findLabel(dbg *debugger.Debugger, name string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	const usage = "labels"

	if len(args) > 0 {
		log.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%#03x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	if addr, err := encoding.DecodeHex(args[0]); err == nil {
		mc.Program = addr
		fmt.Printf("\033[1mPC:\033[0m %#03x\n", addr)
	} else if addr, exists := findLabel(dbg, args[0]); exists {
		mc.Program = addr
		fmt.Printf(
			"\033[1mPC:\033[0m %#03x \033[1;30m(%s)\033[0m\n", addr, args[0],
		)
	} else {
		fmt.Printf("Unable to find '%s'\n", args[0])
	}
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var size uint16 = 8
	var addr uint16 = mc.Index

	if len(args) > 0 {
		if value, err := encoding.DecodeHex(args[0]); err == nil {
			addr = value
		} else if value, err := strconv.ParseUint(args[0], 10, 16); err == nil {
			size = uint16(value)
		} else {
			log.Println(err)
			return
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintMem(os.Stdout, mc, addr, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if int(addr) >= machine.MEMORY_SIZE || value > math.MaxUint8 {
		log.Println("Invalid address or value")
		return
	}

	mc.Memory[addr] = uint8(value)
	dbg.PrintMem(os.Stdout, mc, addr, 1)
}

func debugKey(mc *machine.MachineState, args []string) {
	const usage = "key [0x#] [down|up]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeLiteral(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	var pressed bool

	switch args[1] {
	case "d", "down":
		pressed = true
	case "u", "up":
		pressed = false
	default:
		log.Println(usage)
		return
	}

	if value < 0 || value >= machine.KEY_COUNT {
		log.Println("Invalid key")
		return
	}

	mc.Keypad.Set(uint8(value), pressed)
	fmt.Printf("\033[1mKey %X:\033[0m %s\n", value, args[1])
}

func (session *repl) run(dbg *debugger.Debugger, mc *machine.Machine) error {
	if err := exitRawTerm(); err != nil {
		return err
	}

	defer func() {
		enterRawTerm()
		session.screen.redraw = true
	}()

	dbg.PrintInstruction(os.Stdout, &mc.State, mc.State.Program)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		line, ok := session.screen.input.ReadLine()

		if !ok {
			fmt.Println()
			return machine.ErrQuit
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(session.lastcmd) == 0 {
				continue
			}
			args = session.lastcmd
		} else {
			session.lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "k", "key":
			debugKey(&mc.State, args)

		case "i", "inst", "instruction":
			dbg.PrintInstruction(os.Stdout, &mc.State, mc.State.Program)

		case "c", "continue":
			dbg.Break = false
			return nil

		case "n", "next":
			dbg.Break = true
			return nil

		case "q", "quit", "exit":
			return machine.ErrQuit

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			if err := mc.Load(session.image); err != nil {
				log.Println(err)
			}
			fmt.Println("Machine reset")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func (session *repl) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) error {
	fmt.Printf("\033[?25h\033[%d;1H\033[J", SCREEN_ROWS+1)

	if session.watched {
		fmt.Println("Program stopped")
		dbg.PrintMem(os.Stdout, &mc.State, session.watchAddr, 1)
		session.watched = false
	} else if !dbg.Break {
		fmt.Println("Program stopped")
		dbg.PrintSource(os.Stdout, mc.State.Program, 8)
	}

	return session.run(dbg, mc)
}

func (session *repl) handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	session.stopAt(addr, dbg, mc)
}

func (session *repl) handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	session.stopAt(addr, dbg, mc)
}

// The REPL opens before the next fetch
func (session *repl) stopAt(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	session.watched = true
	session.watchAddr = addr
	dbg.Break = true
}
