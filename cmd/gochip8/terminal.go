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
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/runner"
)

const KEY_ESCAPE = 0x1b

type terminal struct {
	out   *bufio.Writer
	input *termInput
	keys  termKeys
	tint  color.RGBA

	// Forces a full repaint on the next frame
	redraw bool
}

func (tm *terminal) Poll(mc *machine.Machine) error {
	received, open := tm.input.Poll()

	for _, b := range received {
		if b == KEY_ESCAPE {
			return machine.ErrQuit
		}

		if key, ok := translateRune(rune(b)); ok {
			tm.keys.Press(key)
		}
	}

	tm.keys.Update(&mc.State.Keypad)

	if !open {
		return machine.ErrQuit
	}

	return nil
}

func (tm *terminal) Present(mc *machine.Machine) {
	state := &mc.State

	if tm.redraw {
		fmt.Fprint(tm.out, "\033[?25l\033[2J")
	}

	if state.Display.Dirty || tm.redraw {
		renderDisplay(tm.out, &state.Display, tm.tint)
		state.Display.Dirty = false
		tm.redraw = false
	}

	renderStatus(tm.out, state)
	tm.out.Flush()
}

func runTerminal(
	rn *runner.Runner,
	dbg *debugger.Debugger,
	tint color.RGBA,
	image []byte,
) int {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Println("Terminal mode requires an interactive terminal")
		return 1
	}

	width, height, err := term.GetSize(int(os.Stdout.Fd()))

	if err != nil {
		log.Println(err)
		return 1
	}

	if width < machine.DISPLAY_WIDTH || height < SCREEN_ROWS {
		log.Printf(
			"Terminal too small\n\twant:%dx%d\n\thave:%dx%d",
			machine.DISPLAY_WIDTH,
			SCREEN_ROWS,
			width,
			height,
		)
		return 1
	}

	if err := enterRawTerm(); err != nil {
		log.Println(err)
		return 1
	}

	// The reader must start in raw mode
	tm := &terminal{
		out:    bufio.NewWriter(os.Stdout),
		input:  newTermInput(os.Stdin),
		tint:   tint,
		redraw: true,
	}

	rn.Frontend = tm

	ctx := context.Background()

	if dbg != nil {
		session := &repl{screen: tm, image: image}
		dbg.HandleBreak = session.handleBreak
		dbg.HandleRead = session.handleRead
		dbg.HandleWrite = session.handleWrite

		c := make(chan os.Signal, 1)
		defer signal.Stop(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				dbg.Interrupt()
			}
		}()
	} else {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	err = rn.Run(ctx)

	if err := exitRawTerm(); err != nil {
		log.Println(err)
	}

	fmt.Printf("\033[?25h\033[%d;1H\n", SCREEN_ROWS+1)

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
		return 1
	}

	return 0
}
