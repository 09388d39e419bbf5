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
	"testing"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
)

func TestSetRegister(t *testing.T) {
	tests := []struct {
		Name  string
		Value uint16
		Valid bool
		Check func(*machine.MachineState) bool
	}{
		{"v0", 0x12, true, func(mc *machine.MachineState) bool {
			return mc.Registers[0] == 0x12
		}},
		{"VF", 0xFF, true, func(mc *machine.MachineState) bool {
			return mc.Registers[0xF] == 0xFF
		}},
		{"I", 0xFFF, true, func(mc *machine.MachineState) bool {
			return mc.Index == 0xFFF
		}},
		{"pc", 0x300, true, func(mc *machine.MachineState) bool {
			return mc.Program == 0x300
		}},
		{"DT", 0x3C, true, func(mc *machine.MachineState) bool {
			return mc.Timers.Delay == 0x3C
		}},
		{"ST", 0x02, true, func(mc *machine.MachineState) bool {
			return mc.Timers.Sound == 0x02
		}},
		{"V1", 0x100, false, nil},
		{"VG", 0x01, false, nil},
		{"R0", 0x01, false, nil},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var mc machine.MachineState

			if have := setRegister(&mc, test.Name, test.Value); have != test.Valid {
				t.Fatalf("want:%v\nhave:%v", test.Valid, have)
			}

			if test.Check != nil && !test.Check(&mc) {
				t.Errorf("Register not written")
			}
		})
	}
}

func TestBreakCommands(t *testing.T) {
	dbg := debugger.New()

	debugBreak(dbg, []string{"add", "0x204"})
	debugBreak(dbg, []string{"add", "0x204"})
	debugBreak(dbg, []string{"add", "0x208"})

	if len(dbg.Breakpoints) != 2 {
		t.Fatalf("Breakpoints\nwant:2\nhave:%d", len(dbg.Breakpoints))
	}

	debugBreak(dbg, []string{"rm", "0"})

	if len(dbg.Breakpoints) != 1 || dbg.Breakpoints[0].Addr != 0x208 {
		t.Errorf("Remove\nwant:[0x208]\nhave:%v", dbg.Breakpoints)
	}

	debugWatch(dbg, []string{"add", "0x300", "rw"})
	debugWatch(dbg, []string{"add", "0x300", "bogus"})

	if len(dbg.Watchpoints) != 1 || dbg.Watchpoints[0].Type != debugger.ReadWriteWatch {
		t.Errorf("Watchpoints\nhave:%v", dbg.Watchpoints)
	}
}

func TestStopAt(t *testing.T) {
	var session repl
	dbg := debugger.New()
	dbg.Break = false

	session.stopAt(0x300, dbg, nil)

	if !dbg.Break || !session.watched || session.watchAddr != 0x300 {
		t.Errorf("Watchpoint hit not recorded")
	}
}
