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

package machine

import (
	"github.com/sirupsen/logrus"
)

// countTimer advances a TLx/THx pair by the pre-loaded count in timer and
// reports whether it overflowed. Mode 3 is handled by the caller.
func countTimer(mode uint8, timer uint32, tl *uint8, th *uint8) bool {
	switch mode {
	// 13-bit
	case 0x00:
		timer += uint32(*th) << 5
		*tl = uint8(timer & 0x1F)
		*th = uint8((timer & 0x1FE0) >> 5)
		return timer&0x2000 != 0

	// 16-bit
	case 0x01:
		timer += uint32(*th) << 8
		*tl = uint8(timer & 0xFF)
		*th = uint8((timer & 0xFF00) >> 8)
		return timer&0x10000 != 0

	// 8-bit auto-reload
	case 0x02:
		*tl = uint8(timer & 0xFF)
		if timer&0x100 != 0 {
			*tl += *th
			return true
		}
	}

	return false
}

// updateTimers advances timer 0 and timer 1 by the cycles the last
// instruction took. Counter mode (C/T set) counts external events, of which
// there are none.
func (mc *Machine) updateTimers(delta uint32) {
	st := &mc.State
	tmod := st.TMOD()
	mode0 := tmod & TMOD_T0_MODE
	mode1 := (tmod & TMOD_T1_MODE) >> 4

	tl0 := &st.SFR[SFR_TL0&0x7F]
	th0 := &st.SFR[SFR_TH0&0x7F]
	tl1 := &st.SFR[SFR_TL1&0x7F]
	th1 := &st.SFR[SFR_TH1&0x7F]

	if st.TR0() {
		timer := uint32(*tl0)
		if tmod&TMOD_T0_CT == 0 {
			timer += delta
		}

		var overflow bool
		if mode0 == 0x03 {
			*tl0 = uint8(timer & 0xFF)
			overflow = timer&0x100 != 0
		} else {
			overflow = countTimer(mode0, timer, tl0, th0)
		}

		if overflow {
			st.setSFRFlag(SFR_TCON, TCON_TF0, true)
		}
	}

	// In split mode TH0 runs as an 8-bit timer gated by TR1 and owns TF1
	if mode0 == 0x03 && st.TR1() {
		timer := uint32(*th0)
		if tmod&TMOD_T1_CT == 0 {
			timer += delta
		}

		*th0 = uint8(timer & 0xFF)
		if timer&0x100 != 0 {
			st.setSFRFlag(SFR_TCON, TCON_TF1, true)
		}
	}

	// Timer 1 keeps counting in split mode regardless of TR1 and its C/T bit
	if mode0 == 0x03 || st.TR1() {
		timer := uint32(*tl1)
		if mode0 == 0x03 || tmod&TMOD_T1_CT == 0 {
			timer += delta
		}

		if countTimer(mode1, timer, tl1, th1) {
			st.setSFRFlag(SFR_TCON, TCON_TF1, true)
		}
	}
}

type interruptSource struct {
	Name     string
	Vector   uint16
	Enable   uint8
	Priority uint8

	// Sources of the same priority that take precedence
	Masked uint8

	Pending     func(st *MachineState) bool
	Acknowledge func(st *MachineState)
}

// Interrupt sources in polling order. The bit of each source in the pending
// mask is its position in this table.
var interruptSources = [...]interruptSource{
	{
		Name:     "EXT0",
		Vector:   VECTOR_EXT0,
		Enable:   IE_EX0,
		Priority: IP_PX0,
		Masked:   0x1E,
		Pending:  (*MachineState).IE0,
		Acknowledge: func(st *MachineState) {
			if st.IT0() {
				st.setSFRFlag(SFR_TCON, TCON_IE0, false)
			}
		},
	},
	{
		Name:     "TIMER0",
		Vector:   VECTOR_TIMER0,
		Enable:   IE_ET0,
		Priority: IP_PT0,
		Masked:   0x1D,
		Pending:  (*MachineState).TF0,
		Acknowledge: func(st *MachineState) {
			st.setSFRFlag(SFR_TCON, TCON_TF0, false)
		},
	},
	{
		Name:     "EXT1",
		Vector:   VECTOR_EXT1,
		Enable:   IE_EX1,
		Priority: IP_PX1,
		Masked:   0x1B,
		Pending:  (*MachineState).IE1,
		Acknowledge: func(st *MachineState) {
			if st.IT1() {
				st.setSFRFlag(SFR_TCON, TCON_IE1, false)
			}
		},
	},
	{
		Name:     "TIMER1",
		Vector:   VECTOR_TIMER1,
		Enable:   IE_ET1,
		Priority: IP_PT1,
		Masked:   0x17,
		Pending:  (*MachineState).TF1,
		Acknowledge: func(st *MachineState) {
			st.setSFRFlag(SFR_TCON, TCON_TF1, false)
		},
	},
	{
		Name:     "SERIAL",
		Vector:   VECTOR_SERIAL,
		Enable:   IE_ES,
		Priority: IP_PS,
		Masked:   0x0F,
		Pending: func(st *MachineState) bool {
			return st.RI() || st.TI()
		},
		Acknowledge: func(st *MachineState) {},
	},
}

// updateInterrupts vectors to the first pending interrupt source that is
// allowed to preempt the current state. Entering a handler costs the
// cycles of an LCALL.
func (mc *Machine) updateInterrupts() {
	st := &mc.State

	if !st.EA() || st.Interrupted&INT_HIGH != 0 || st.InterruptsBlocked {
		return
	}

	var pending uint8
	for i, src := range interruptSources {
		if src.Pending(st) {
			pending |= 1 << i
		}
	}

	prioritary := st.IE() & st.IP() & pending

	for i, src := range interruptSources {
		high := st.IP()&src.Priority != 0

		if pending&(1<<i) == 0 || st.IE()&src.Enable == 0 {
			continue
		}

		if st.Interrupted != 0 && !high {
			continue
		}

		if prioritary&src.Masked != 0 {
			continue
		}

		src.Acknowledge(st)

		if high {
			st.Interrupted |= INT_HIGH
		} else {
			st.Interrupted |= INT_LOW
		}

		if mc.Logger != nil && mc.Logger.IsLevelEnabled(logrus.TraceLevel) {
			mc.Logger.WithFields(logrus.Fields{
				"source":  src.Name,
				"vector":  src.Vector,
				"high":    high,
				"program": st.Program,
			}).Trace("Interrupt")
		}

		mc.pushProgram()
		st.Program = src.Vector
		st.Cycles += 2

		return
	}
}
