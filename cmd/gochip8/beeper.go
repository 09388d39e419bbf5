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
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	BEEPER_SAMPLE_RATE = 44100
	BEEPER_FREQUENCY   = 440
	BEEPER_VOLUME      = 0.15
)

// Square wave generator pulled by oto. Silent unless the sound timer runs.
type beeper struct {
	ctx    *oto.Context
	player *oto.Player

	active atomic.Bool
	phase  int
}

func newBeeper() (*beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   BEEPER_SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})

	if err != nil {
		return nil, err
	}

	<-ready

	bp := &beeper{ctx: ctx}
	bp.player = ctx.NewPlayer(bp)
	bp.player.Play()

	return bp, nil
}

func (bp *beeper) SetActive(active bool) {
	bp.active.Store(active)
}

func (bp *beeper) Read(p []byte) (int, error) {
	const period = BEEPER_SAMPLE_RATE / BEEPER_FREQUENCY

	n := len(p) &^ 3
	active := bp.active.Load()

	for i := 0; i < n; i += 4 {
		var sample float32

		if active {
			if bp.phase < period/2 {
				sample = BEEPER_VOLUME
			} else {
				sample = -BEEPER_VOLUME
			}
		}

		bp.phase = (bp.phase + 1) % period

		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
	}

	return n, nil
}

func (bp *beeper) Close() {
	if bp.player != nil {
		bp.player.Pause()
		bp.player.Close()
	}
}
