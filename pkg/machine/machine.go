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
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/vm8051/pkg/encoding"
)

// Reset puts the machine in its power-on state. Code memory is kept.
func (st *MachineState) Reset() {
	st.Data = [MEMSPACE_DATA]uint8{}
	st.SFR = [MEMSPACE_SFR]uint8{}
	st.XData = [MEMSPACE_XDATA]uint8{}

	st.SetSFRByte(SFR_SP, SP_RESET)
	st.SetSFRByte(SFR_P0, PORT_RESET)
	st.SetSFRByte(SFR_P1, PORT_RESET)
	st.SetSFRByte(SFR_P2, PORT_RESET)
	st.SetSFRByte(SFR_P3, PORT_RESET)

	st.IR = Instruction{}
	st.Program = 0x0000
	st.Cycles = 0

	st.Interrupted = 0
	st.InterruptsBlocked = false
}

// LoadHex replaces code memory with an Intel-HEX image and resets the
// machine. It returns the number of bytes loaded.
func (mc *Machine) LoadHex(reader io.Reader) (int, error) {
	n, err := encoding.ReadHex(&mc.State.Code, reader)
	mc.State.Reset()

	return n, err
}

// LoadBin replaces code memory with a raw binary image and resets the
// machine. It returns the number of bytes loaded.
func (mc *Machine) LoadBin(reader io.Reader) (int, error) {
	n, err := encoding.ReadBin(&mc.State.Code, reader)
	mc.State.Reset()

	return n, err
}

// Fetch decodes the instruction at PC into IR and moves PC past it.
func (mc *Machine) Fetch() {
	mc.State.IR = Decode(&mc.State.Code, mc.State.Program)
	mc.State.Program += uint16(mc.State.IR.Len)
}

// Operate executes the instruction held in IR, then runs the coprocessors,
// the timers and the interrupt controller, in that order.
func (mc *Machine) Operate() {
	st := &mc.State
	start := st.Cycles

	// Level triggered external interrupts follow the active low pins
	if !st.IT0() {
		st.setSFRFlag(SFR_TCON, TCON_IE0, st.SFRByte(SFR_P3)&0x04 == 0)
	}

	if !st.IT1() {
		st.setSFRFlag(SFR_TCON, TCON_IE1, st.SFRByte(SFR_P3)&0x08 == 0)
	}

	mc.receiveSerial()
	wasTI := st.TI()

	st.Cycles += mc.execute()

	mc.updateCoprocessors()
	mc.updateTimers(uint32(st.Cycles - start))
	mc.updateInterrupts()

	// IE/IP writes only hold off interrupts for one instruction
	st.InterruptsBlocked = false

	mc.transmitSerial(wasTI)
}

func (mc *Machine) Step() {
	mc.Fetch()

	if mc.Logger != nil && mc.Logger.IsLevelEnabled(logrus.TraceLevel) {
		mc.Logger.WithFields(logrus.Fields{
			"program": mc.State.Program - uint16(mc.State.IR.Len),
			"opcode":  mc.State.IR.Bytes[:mc.State.IR.Len],
			"cycles":  mc.State.Cycles,
		}).Trace("Step")
	}

	mc.Operate()

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}
}

// Inject executes inst as if it had just been fetched. PC is left alone.
func (mc *Machine) Inject(inst Instruction) {
	mc.State.IR = inst
	mc.Operate()

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}
}

// RunUntil steps at least once and stops when PC reaches addr or the cycle
// counter reaches cycles. There is no other exit.
func (mc *Machine) RunUntil(addr uint16, cycles uint64) {
	for {
		mc.Step()

		if mc.State.Program == addr || mc.State.Cycles >= cycles {
			return
		}
	}
}
