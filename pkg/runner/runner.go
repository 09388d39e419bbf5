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

package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	DEFAULT_INSTRUCTIONS_PER_SECOND = 700
	DEFAULT_TIMER_HZ                = 60
)

type Config struct {
	InstructionsPerSecond int
	TimerHz               int
}

// Receives the state of the sound timer once per frame
type Beeper interface {
	SetActive(active bool)
}

// Polled before and presented after every frame driven by Run
type Frontend interface {
	Poll(mc *machine.Machine) error
	Present(mc *machine.Machine)
}

type Runner struct {
	Machine  *machine.Machine
	Config   Config
	Beeper   Beeper
	Frontend Frontend

	// Optional, lifecycle messages are dropped when nil
	Logger *log.Logger

	waiting bool
	halted  bool
}

func DefaultConfig() Config {
	return Config{
		InstructionsPerSecond: DEFAULT_INSTRUCTIONS_PER_SECOND,
		TimerHz:               DEFAULT_TIMER_HZ,
	}
}

func (cfg Config) Validate() error {
	if cfg.TimerHz <= 0 {
		return fmt.Errorf("Invalid timer rate\n\twant:>0\n\thave:%d", cfg.TimerHz)
	}

	if cfg.InstructionsPerSecond < cfg.TimerHz {
		return fmt.Errorf(
			"Invalid speed\n\twant:>=%d\n\thave:%d",
			cfg.TimerHz,
			cfg.InstructionsPerSecond,
		)
	}

	return nil
}

// Number of instructions executed between two timer ticks
func (cfg Config) StepsPerFrame() int {
	return cfg.InstructionsPerSecond / cfg.TimerHz
}

func New(mc *machine.Machine, cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Runner{Machine: mc, Config: cfg}, nil
}

func (rn *Runner) logf(format string, args ...interface{}) {
	if rn.Logger != nil {
		rn.Logger.Printf(format, args...)
	}
}

// Frame executes one timer period worth of instructions, then ticks the
// timers once. Execution stops early when the machine halts, waits for a key
// or is held back by its debugger. Timers stand still while the debugger
// holds the machine.
func (rn *Runner) Frame() error {
	mc := rn.Machine
	steps := rn.Config.StepsPerFrame()

	for i := 0; i < steps && !mc.Halted(); i++ {
		if err := mc.Step(); err != nil {
			rn.setBeeper(false)
			return err
		}

		if mc.State.Status == machine.STATUS_WAITING {
			if !rn.waiting {
				rn.logf("Waiting for key into V%X", mc.State.WaitRegister)
			}

			rn.waiting = true
			break
		}

		rn.waiting = false

		if mc.Suspended() {
			return nil
		}
	}

	if mc.Halted() {
		if !rn.halted {
			rn.logf("Machine halted at %#03x", mc.State.Program-2)
			rn.setBeeper(false)
		}

		rn.halted = true
		return nil
	}

	mc.State.Timers.Tick()
	rn.setBeeper(mc.State.Timers.Sound > 0)

	return nil
}

func (rn *Runner) poll() error {
	if rn.Frontend == nil {
		return nil
	}

	return rn.Frontend.Poll(rn.Machine)
}

func (rn *Runner) setBeeper(active bool) {
	if rn.Beeper != nil {
		rn.Beeper.SetActive(active)
	}
}

// Run calls Frame at the timer rate until the machine halts, a fatal error
// occurs or ctx ends. A quit from the debugger ends the run without error.
func (rn *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(rn.Config.TimerHz))
	defer ticker.Stop()

	for {
		err := rn.poll()

		if err == nil {
			err = rn.Frame()
		}

		if rn.Frontend != nil {
			rn.Frontend.Present(rn.Machine)
		}

		if errors.Is(err, machine.ErrQuit) {
			rn.logf("Execution aborted at %#03x", rn.Machine.State.Program)
			return nil
		} else if err != nil {
			return err
		}

		if rn.Machine.Halted() {
			return nil
		}

		select {
		case <-ctx.Done():
			rn.setBeeper(false)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
