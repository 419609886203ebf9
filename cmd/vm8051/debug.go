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
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/vm8051/pkg/debugger"
	"github.com/lassandro/vm8051/pkg/disasm"
	"github.com/lassandro/vm8051/pkg/encoding"
	"github.com/lassandro/vm8051/pkg/machine"
)

type session struct {
	dbg *debugger.Debugger
	mc  *machine.Machine
	out io.Writer

	info    string
	command byte
	end     bool
}

func (s *session) fail(format string, err error, args ...any) {
	s.info = fmt.Sprintf(format, args...)

	if s.dbg.Logger != nil && err != nil {
		s.dbg.Logger.WithError(err).Debugf("Command '%c' rejected", s.command)
	}
}

func (s *session) addr(arg string) (uint16, bool) {
	addr, err := parseAddr(arg)

	if err != nil {
		s.fail("%c: hexadecimal address required", err, s.command)
		return 0, false
	}

	return addr, true
}

func (s *session) count(arg string) (uint64, bool) {
	value, err := encoding.DecodeInt(arg)

	if err != nil {
		s.fail("%c: unsigned decimal value required", err, s.command)
		return 0, false
	}

	return value, true
}

// stopped describes why a run loop returned. done is used when the loop
// reached its own target.
func (s *session) stopped(reason debugger.StopReason, done string) {
	st := &s.mc.State

	switch reason {
	case debugger.StopBreakpoint:
		s.info = fmt.Sprintf("breakpoint reached: 0x%04X", st.Program)

	case debugger.StopWatchpoint:
		addr, kind := s.dbg.LastWatch()
		access := "read"
		if kind == debugger.WriteWatch {
			access = "write"
		}

		s.info = fmt.Sprintf(
			"watchpoint reached: 0x%02X (%s) at 0x%04X", addr, access, st.Program,
		)

	case debugger.StopInterrupt:
		s.info = fmt.Sprintf("interrupted: 0x%04X", st.Program)

	default:
		s.info = done
	}
}

func (s *session) run(arg string) {
	dbg, mc := s.dbg, s.mc
	st := &mc.State

	// A break requested at the prompt must not cut the next run short
	dbg.Break.Store(false)

	switch s.command {
	case 'n':
		s.stopped(dbg.StepOver(mc), "next line")

	case 'g':
		addr, ok := s.addr(arg)

		if !ok {
			return
		}

		s.stopped(dbg.RunTo(mc, addr), fmt.Sprintf("run to 0x%04X", addr))

	case 'c':
		s.stopped(dbg.Continue(mc), "")

	case 'w':
		cycles, ok := s.count(arg)

		if !ok {
			return
		}

		s.stopped(dbg.Wait(mc, cycles), fmt.Sprintf("%d cycles ellapsed", cycles))
	}

	if s.dbg.Logger != nil {
		s.dbg.Logger.WithField("cycles", st.Cycles).Debugf("Stopped at 0x%04X", st.Program)
	}
}

func (s *session) inject(arg string) {
	opcode := strings.Fields(arg)

	if len(opcode) == 0 || len(opcode[0]) > 6 {
		s.fail("%c: valid opcode required", nil, s.command)
		return
	}

	raw, err := hex.DecodeString(opcode[0])

	if err != nil || len(raw) == 0 {
		s.fail("%c: valid opcode required", err, s.command)
		return
	}

	var inst machine.Instruction
	inst.Len = uint8(copy(inst.Bytes[:], raw))

	pc := s.mc.State.Program - uint16(inst.Len)
	s.info = "instruction injected: " + disasm.Op(inst, int(pc))

	s.mc.Inject(inst)
}

func (s *session) port(args []string) {
	if len(args) != 2 {
		s.fail("%c: invalid arguments", nil, s.command)
		return
	}

	n, err := strconv.ParseUint(args[0], 10, 32)

	if err != nil {
		s.fail("%c: invalid arguments", err, s.command)
		return
	}

	value, err := strconv.ParseInt(args[1], 0, 64)

	if err != nil {
		s.fail("%c: invalid arguments", err, s.command)
		return
	}

	if n >= 4 {
		s.fail("%c: invalid port number %d", nil, s.command, n)
		return
	}

	port := machine.SFR_P0 + uint8(n)<<4
	s.mc.State.SetSFRByte(port, uint8(value))
	s.info = fmt.Sprintf("Port P%d affected to 0x%02X", n, s.mc.State.SFRByte(port))
}

func (s *session) saveXData(arg string) {
	if arg == "" {
		s.fail("%c: file name required", nil, s.command)
		return
	}

	file, err := os.Create(arg)

	if err != nil {
		s.fail("%c: %v", err, s.command, err)
		return
	}

	defer file.Close()

	if err := debugger.SaveXData(file, s.mc); err != nil {
		s.fail("%c: %v", err, s.command, err)
		return
	}

	s.info = fmt.Sprintf("xdata saved to %s", arg)
}

func (s *session) execute(line string) {
	dbg, mc := s.dbg, s.mc
	st := &mc.State

	rest := line[1:]
	args := strings.Fields(rest)
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch s.command {
	case 's', '\n':
		mc.Step()

	case 'q':
		s.end = true

	case 'p':

	case 'r':
		dbg.Reset(mc)
		s.info = "vm reset"

	case 'z':
		st.Cycles = 0

	case 'b':
		if addr, ok := s.addr(arg); ok && dbg.AddBreakpoint(addr) {
			s.info = fmt.Sprintf("new breakpoint: 0x%04X", addr)
		}

	case 'd':
		if addr, ok := s.addr(arg); ok && dbg.RemoveBreakpoint(addr) {
			s.info = fmt.Sprintf("breakpoint removed: 0x%04X", addr)
		}

	case 'W':
		addr, err := parseAddr(arg)

		if err != nil || addr > 0xFF {
			s.fail("%c: hexadecimal address required", err, s.command)
			break
		}

		dbg.AddWatchpoint(uint8(addr), debugger.WriteWatch)
		s.info = fmt.Sprintf("new watchpoint: 0x%02X", addr)

	case 'j':
		if addr, ok := s.addr(arg); ok {
			st.Program = addr
			s.info = fmt.Sprintf("PC set to 0x%04X", addr)
		}

	case 'k':
		mc.Fetch()
		s.info = "instruction skipped"

	case 'n', 'g', 'c', 'w':
		s.run(arg)

	case 'e':
		s.inject(rest)

	case '?':
		dbg.Input.WriteString(strings.TrimPrefix(rest, " "))
		s.info = "string bufferized"

	case '!':
		dbg.Output.Reset()
		s.info = "received data cleared"

	case 'P':
		s.port(args)

	case 'i':
		debugger.PrintData(s.out, mc)

	case 'f':
		debugger.PrintSFR(s.out, mc)

	case 'x':
		page, ok := s.count(arg)

		if !ok {
			s.command = 'p'
			break
		}

		if err := debugger.PrintXData(s.out, mc, uint(min(page, debugger.XDATA_PAGES))); err != nil {
			s.fail("%c: page out of bounds", err, s.command)
			s.command = 'p'
		}

	case 'X':
		s.saveXData(strings.TrimSpace(rest))

	default:
		s.info = "invalid command"
	}
}

// debugREPL reads one command per line from in until q or the end of the
// input. The state is printed before every prompt, except after the memory
// dumps.
func debugREPL(dbg *debugger.Debugger, mc *machine.Machine, in *bufio.Reader, out io.Writer, minimal bool) {
	s := &session{dbg: dbg, mc: mc, out: out}

	for !s.end {
		if s.command != 'i' && s.command != 'x' && s.command != 'f' {
			dbg.PrintState(out, mc, minimal)
		}

		fmt.Fprintf(out, "%s\n> ", s.info)
		s.info = ""

		line, err := in.ReadString('\n')

		if err != nil && line == "" {
			fmt.Fprintln(out)
			break
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			line = "\n"
		}

		s.command = line[0]
		s.execute(line)
	}

	dbg.PrintState(out, mc, minimal)
}
