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
	"golang.org/x/exp/slices"

	"github.com/lassandro/vm8051/pkg/machine"
)

// Attach installs dbg as the debugger of mc and routes the serial port
// through the debugger buffers.
func (dbg *Debugger) Attach(mc *machine.Machine) {
	mc.Debugger = dbg
	mc.Devices = &machine.DeviceHandler{
		SerialIn:  &dbg.Input,
		SerialOut: &dbg.Output,
	}
}

// Reset clears the serial buffers and puts mc in its power-on state.
func (dbg *Debugger) Reset(mc *machine.Machine) {
	dbg.Input.Reset()
	dbg.Output.Reset()
	mc.State.Reset()
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	bp := Breakpoint{Addr: mc.State.Program}

	if slices.Contains(dbg.Breakpoints, bp) {
		dbg.stop = StopBreakpoint

		if dbg.HandleBreak != nil {
			dbg.HandleBreak(dbg, mc)
		}
	}
}

func (dbg *Debugger) Read(addr uint8, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.stop = StopWatchpoint
			dbg.lastHit = addr
			dbg.lastType = ReadWatch

			if dbg.HandleRead != nil {
				dbg.HandleRead(addr, dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint8, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.stop = StopWatchpoint
			dbg.lastHit = addr
			dbg.lastType = WriteWatch

			if dbg.HandleWrite != nil {
				dbg.HandleWrite(addr, dbg, mc)
			}
			break
		}
	}
}

// LastWatch returns the address and access type of the most recent
// watchpoint hit.
func (dbg *Debugger) LastWatch() (uint8, WatchpointType) {
	return dbg.lastHit, dbg.lastType
}

// AddBreakpoint reports whether addr was not already a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	bp := Breakpoint{Addr: addr}

	if slices.Contains(dbg.Breakpoints, bp) {
		return false
	}

	dbg.Breakpoints = append(dbg.Breakpoints, bp)
	slices.SortFunc(dbg.Breakpoints, func(a, b Breakpoint) int {
		return int(a.Addr) - int(b.Addr)
	})

	return true
}

// RemoveBreakpoint reports whether addr was a breakpoint.
func (dbg *Debugger) RemoveBreakpoint(addr uint16) bool {
	i := slices.Index(dbg.Breakpoints, Breakpoint{Addr: addr})
	if i < 0 {
		return false
	}

	dbg.Breakpoints = slices.Delete(dbg.Breakpoints, i, i+1)
	return true
}

// AddWatchpoint traps accesses of the given type to a direct address. A
// second watchpoint on the same address replaces the first.
func (dbg *Debugger) AddWatchpoint(addr uint8, kind WatchpointType) {
	i := slices.IndexFunc(dbg.Watchpoints, func(wp Watchpoint) bool {
		return wp.Addr == addr
	})

	if i >= 0 {
		dbg.Watchpoints[i].Type = kind
		return
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{Addr: addr, Type: kind})
}

func (dbg *Debugger) RemoveWatchpoint(addr uint8) bool {
	i := slices.IndexFunc(dbg.Watchpoints, func(wp Watchpoint) bool {
		return wp.Addr == addr
	})

	if i < 0 {
		return false
	}

	dbg.Watchpoints = slices.Delete(dbg.Watchpoints, i, i+1)
	return true
}

// run steps mc at least once, until done reports true or a breakpoint,
// watchpoint or Break request stops it.
func (dbg *Debugger) run(mc *machine.Machine, done func() bool) StopReason {
	dbg.stop = StopNone

	for {
		mc.Step()

		if done() {
			dbg.stop = StopNone
			return StopTarget
		}

		if dbg.Break.Swap(false) {
			dbg.stop = StopNone
			return StopInterrupt
		}

		if reason := dbg.stop; reason != StopNone {
			dbg.stop = StopNone
			return reason
		}
	}
}

// StepOver runs until the instruction following the one at PC, so calls
// execute as a single step.
func (dbg *Debugger) StepOver(mc *machine.Machine) StopReason {
	st := &mc.State
	target := st.Program + uint16(machine.InstructionLength(st.Code[st.Program]))

	return dbg.run(mc, func() bool {
		return st.Program == target
	})
}

func (dbg *Debugger) RunTo(mc *machine.Machine, addr uint16) StopReason {
	return dbg.run(mc, func() bool {
		return mc.State.Program == addr
	})
}

// Continue runs until something stops the machine.
func (dbg *Debugger) Continue(mc *machine.Machine) StopReason {
	return dbg.run(mc, func() bool {
		return false
	})
}

// Wait runs for at least cycles machine cycles.
func (dbg *Debugger) Wait(mc *machine.Machine, cycles uint64) StopReason {
	end := mc.State.Cycles + cycles

	return dbg.run(mc, func() bool {
		return mc.State.Cycles >= end
	})
}
