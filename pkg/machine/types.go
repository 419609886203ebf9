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
)

// Instruction holds the raw bytes of one fetched instruction. Bytes past Len
// are left untouched by the decoder and are ignored by the executor.
type Instruction struct {
	Bytes [3]uint8
	Len   uint8
}

// DeviceHandler couples the serial port to the host. SerialIn is polled
// whenever the receiver is enabled and idle; every rising edge of TI sends
// SBUF to SerialOut.
type DeviceHandler struct {
	SerialIn  io.ByteReader
	SerialOut io.ByteWriter
}

type MachineState struct {
	Data  [MEMSPACE_DATA]uint8
	SFR   [MEMSPACE_SFR]uint8
	XData [MEMSPACE_XDATA]uint8
	Code  [MEMSPACE_CODE]uint8

	IR      Instruction
	Program uint16
	Cycles  uint64

	Interrupted       uint8
	InterruptsBlocked bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint8, mc *Machine)
	Write(addr uint8, mc *Machine)
}

// Coprocessor is a device attached to the machine bus. Step runs once per
// machine step, after the instruction and before the timers.
type Coprocessor interface {
	Step(mc *Machine)
}

// Describer is implemented by coprocessors that can print their state in
// the debugger status display.
type Describer interface {
	Describe(w io.Writer, mc *Machine)
}

type coprocessorEntry struct {
	index  uint
	device Coprocessor
}

type ValidationLevel uint

const (
	VALIDATE_NONE ValidationLevel = iota
	VALIDATE_STRICT
	VALIDATE_PURE
)

type Machine struct {
	Devices    *DeviceHandler
	State      MachineState
	Debugger   MachineDebugger
	Validation ValidationLevel
	Logger     *logrus.Logger

	coprocessors []coprocessorEntry
}
