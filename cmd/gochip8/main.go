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
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/runner"
)

var helpvar bool
var debugvar bool
var termvar bool
var mutevar bool
var scalevar int
var speedvar int
var tintvar string

const usage = "gochip8 [-debug] [-term] [-scale #] [-speed #] [-tint name] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Starts the machine in break mode. The window steps with Enter, "+
			"continues with Delete and quits with Escape; the terminal "+
			"opens a debug CLI",
	)
	flag.BoolVar(
		&termvar, "term", false,
		"Renders to the terminal instead of opening a window",
	)
	flag.BoolVar(&mutevar, "mute", false, "Disables the beeper")
	flag.IntVar(&scalevar, "scale", 10, "Window pixels per display pixel")
	flag.IntVar(
		&speedvar, "speed", runner.DEFAULT_INSTRUCTIONS_PER_SECOND,
		"Instructions executed per second",
	)
	flag.StringVar(
		&tintvar, "tint", DEFAULT_TINT,
		fmt.Sprintf("Colour of lit pixels (%s)", tintNames()),
	)
	flag.Parse()
}

// Attaches the symbol table written by gochip8-asm -debug, and its source
func loadSymbols(dbg *debugger.Debugger, path string) []*os.File {
	var opened []*os.File

	file, err := os.Open(assembler.SymTablePath(path))

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return opened
	}

	symtable, err := assembler.DecodeSymTable(file)
	file.Close()

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return opened
	}

	dbg.SymTable = symtable

	if symtable.Source != "" {
		if file, err := os.Open(symtable.Source); err == nil {
			dbg.Source = file
			opened = append(opened, file)
		} else {
			log.Println("Error loading source file")
			log.Println(err)
		}
	}

	return opened
}

func gochip8() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	image, err := os.ReadFile(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	var mc machine.Machine

	if err := mc.LoadBin(bytes.NewReader(image)); err != nil {
		var truncated *machine.TruncatedProgramError

		if !errors.As(err, &truncated) {
			log.Println(err)
			return 1
		}

		log.Println("Warning:", err)
	}

	tint, err := parseTint(tintvar)

	if err != nil {
		log.Println(err)
		return 1
	}

	if scalevar <= 0 {
		log.Printf("Invalid scale\n\twant:>0\n\thave:%d", scalevar)
		return 1
	}

	cfg := runner.DefaultConfig()
	cfg.InstructionsPerSecond = speedvar

	rn, err := runner.New(&mc, cfg)

	if err != nil {
		log.Println(err)
		return 1
	}

	rn.Logger = log.Default()

	if !mutevar {
		if bp, err := newBeeper(); err == nil {
			rn.Beeper = bp
			defer bp.Close()
		} else {
			log.Println("Error opening audio device, sound disabled")
			log.Println(err)
		}
	}

	var dbg *debugger.Debugger

	if debugvar {
		dbg = debugger.New()
		mc.Debugger = dbg

		for _, file := range loadSymbols(dbg, args[0]) {
			defer file.Close()
		}
	}

	if termvar {
		return runTerminal(rn, dbg, tint, image)
	}

	if dbg != nil {
		dbg.HandleRead = stopOnWatch
		dbg.HandleWrite = stopOnWatch
	}

	if err := runWindow(newWindow(rn, dbg, tint, scalevar)); err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

// Window watchpoints fall back into break mode; Enter resumes stepping
func stopOnWatch(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	log.Printf(
		"Program stopped at %#03x, watched %#03x = %02x",
		mc.State.Program-2,
		addr,
		mc.State.Memory[addr],
	)
	dbg.Break = true
}

func main() {
	os.Exit(gochip8())
}
