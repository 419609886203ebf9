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

package debugger

import (
	"bytes"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/vm8051/pkg/machine"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = iota
	WriteWatch
	ReadWriteWatch
)

// Watchpoint traps accesses to a direct address.
type Watchpoint struct {
	Addr uint8
	Type WatchpointType
}

type Breakpoint struct {
	Addr uint16
}

// StopReason tells why a run loop returned.
type StopReason uint

const (
	StopNone StopReason = iota
	StopTarget
	StopBreakpoint
	StopWatchpoint
	StopInterrupt
)

type Debugger struct {
	// Break interrupts the current run loop. It may be set from another
	// goroutine, such as a signal handler.
	Break atomic.Bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	// Serial port buffers. Input feeds the receiver, Output collects every
	// transmitted byte.
	Input  bytes.Buffer
	Output bytes.Buffer

	Logger *logrus.Logger

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(uint8, *Debugger, *machine.Machine)
	HandleWrite func(uint8, *Debugger, *machine.Machine)

	stop     StopReason
	lastHit  uint8
	lastType WatchpointType
}
