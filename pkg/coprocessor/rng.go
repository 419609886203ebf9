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

// Package coprocessor holds devices for the machine coprocessor bus.
package coprocessor

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/lassandro/vm8051/pkg/machine"
)

const (
	RNG_INDEX    = 0
	RNG_CTRL     = 0xC0
	RNG_RND      = 0xC1
	RNG_RUN      = 0x01
	RNG_DURATION = 10
)

// RNG is a random number generator mapped at RNG_CTRL/RNG_RND. Setting the
// run bit of RNG_CTRL starts a draw; RNG_DURATION cycles later a new byte is
// in RNG_RND and the run bit clears. The run bit cannot be cleared early.
type RNG struct {
	rand    *rand.Rand
	started bool
	start   uint64
}

func NewRNG(seed uint64) *RNG {
	return &RNG{rand: rand.New(rand.NewPCG(seed, seed^0x8051))}
}

func (rng *RNG) Step(mc *machine.Machine) {
	st := &mc.State
	ctrl := st.SFRByte(RNG_CTRL)

	if !rng.started {
		if ctrl&RNG_RUN == 0 {
			return
		}

		rng.started = true
		rng.start = st.Cycles
	}

	if st.Cycles-rng.start < RNG_DURATION {
		st.SetSFRByte(RNG_CTRL, ctrl|RNG_RUN)
		return
	}

	rng.started = false
	st.SetSFRByte(RNG_CTRL, ctrl&^RNG_RUN)
	st.SetSFRByte(RNG_RND, uint8(rng.rand.UintN(256)))
}

func (rng *RNG) Describe(w io.Writer, mc *machine.Machine) {
	fmt.Fprintf(
		w,
		"RNG  : CTRL 0x%02X  RND 0x%02X",
		mc.State.SFRByte(RNG_CTRL),
		mc.State.SFRByte(RNG_RND),
	)

	if rng.started {
		fmt.Fprintf(w, "  (busy, %d)", mc.State.Cycles-rng.start)
	}

	fmt.Fprintln(w)
}
