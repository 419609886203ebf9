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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/vm8051/pkg/disasm"
	"github.com/lassandro/vm8051/pkg/encoding"
	"github.com/lassandro/vm8051/pkg/machine"
)

const (
	XDATA_PAGE  = 512
	XDATA_PAGES = machine.MEMSPACE_XDATA / XDATA_PAGE
)

var ErrPageRange = errors.New("page out of bounds")

var separator = strings.Repeat("-", 80)

func printable(value uint8) bool {
	return value >= 0x20 && value < 0x7F
}

// byteCell formats a register as hex, binary and, when printable, as a
// character. The second result is the width of the character column.
func byteCell(name string, value uint8) (string, bool) {
	cell := fmt.Sprintf("%-5s: 0x%02X    %08bb", name, value, value)

	if printable(value) {
		return cell + fmt.Sprintf("    '%c'", value), true
	}

	return cell, false
}

func flag(on bool, name string) string {
	if on {
		return name
	}

	return strings.Repeat(" ", len(name))
}

func reserved(value uint8, mask uint8) string {
	return flag(value&mask != 0, " # ")
}

func timerMode(mode uint8) string {
	switch mode {
	case 0:
		return "13-bit"
	case 1:
		return "16-bit"
	case 2:
		return " 8-bit auto-reload"
	default:
		return "stopped"
	}
}

func timerSource(counter bool) string {
	if counter {
		return "counter"
	}

	return "timer"
}

func running(on bool) string {
	if on {
		return "(on) "
	}

	return "(off)"
}

func overflow(on bool) byte {
	if on {
		return '*'
	}

	return ' '
}

// PrintState writes the status display of mc. A minimal display leaves out
// the ports and the peripheral registers.
func (dbg *Debugger) PrintState(w io.Writer, mc *machine.Machine, minimal bool) {
	st := &mc.State

	if minimal {
		fmt.Fprintln(w, "Regs")
	} else {
		fmt.Fprintln(w, "Regs"+strings.Repeat(" ", 40)+"Ports")
	}

	ports := []uint8{machine.SFR_P0, machine.SFR_P1, machine.SFR_P2, machine.SFR_P3}

	for n := uint8(0); n < 8; n++ {
		cell, char := byteCell(fmt.Sprintf("R%d", n), st.Reg(n))
		fmt.Fprint(w, cell)

		if !minimal && n < 4 {
			if !char {
				fmt.Fprint(w, strings.Repeat(" ", 7))
			}

			port, _ := byteCell(fmt.Sprintf("P%d", n), st.SFRByte(ports[n]))
			fmt.Fprint(w, strings.Repeat(" ", 13)+port)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, "Sys")

	if st.Interrupted != 0 {
		high := 0
		if st.Interrupted&machine.INT_HIGH != 0 {
			high = 1
		}

		fmt.Fprintf(w, " (interrupted, %d)", high)
	}

	fmt.Fprintln(w)

	cell, _ := byteCell("A", st.ACC())
	fmt.Fprintln(w, cell)
	cell, _ = byteCell("B", st.B())
	fmt.Fprintln(w, cell)

	fmt.Fprintf(w, "SP   : 0x%02X\n", st.SP())
	fmt.Fprintf(w, "DPTR : 0x%04X\n", st.DPTR())

	next := machine.Decode(&st.Code, st.Program)
	fmt.Fprintf(
		w, "PC   : 0x%04X  (%s ; %s)\n",
		st.Program, disasm.Op(next, int(st.Program)), disasm.Opcode(next),
	)

	fmt.Fprintf(
		w, "PSW  : 0x%02X    %s %s %s  RS = %d %s    %s\n",
		st.PSW(), flag(st.CY(), " CY"), flag(st.AC(), " AC"),
		flag(st.F0(), " F0"), st.RS(), flag(st.OV(), " OV"),
		flag(st.P(), " P "),
	)

	fmt.Fprintf(w, "states: %d\n", st.Cycles)
	fmt.Fprintln(w)

	if !minimal {
		dbg.printPeripherals(w, mc)
	}

	mc.DescribeCoprocessors(w)

	fmt.Fprintln(w, separator)
	w.Write(dbg.Output.Bytes())
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
}

func (dbg *Debugger) printPeripherals(w io.Writer, mc *machine.Machine) {
	st := &mc.State

	ie := st.IE()
	fmt.Fprintf(
		w, "IE   : 0x%02X    %s %s %s %s %s %s %s %s\n", ie,
		flag(st.EA(), " EA"), reserved(ie, 0x40), reserved(ie, 0x20),
		flag(st.ES(), " ES"), flag(st.ET1(), "ET1"), flag(st.EX1(), "EX1"),
		flag(st.ET0(), "ET0"), flag(st.EX0(), "EX0"),
	)

	ip := st.IP()
	fmt.Fprintf(
		w, "IP   : 0x%02X    %s %s %s %s %s %s %s %s\n", ip,
		reserved(ip, 0x80), reserved(ip, 0x40), reserved(ip, 0x20),
		flag(st.PS(), " PS"), flag(st.PT1(), "PT1"), flag(st.PX1(), "PX1"),
		flag(st.PT0(), "PT0"), flag(st.PX0(), "PX0"),
	)

	pcon := st.SFRByte(machine.SFR_PCON)
	fmt.Fprintf(w, "PCON : 0x%02X   %s", pcon, flag(pcon&0x80 != 0, "SMOD"))
	for mask := uint8(0x40); mask != 0; mask >>= 1 {
		fmt.Fprint(w, " "+reserved(pcon, mask))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(
		w, "TCON : 0x%02X    %s %s %s %s %s %s %s %s\n", st.TCON(),
		flag(st.TF1(), "TF1"), flag(st.TR1(), "TR1"),
		flag(st.TF0(), "TF0"), flag(st.TR0(), "TR0"),
		flag(st.IE1(), "IE1"), flag(st.IT1(), "IT1"),
		flag(st.IE0(), "IE0"), flag(st.IT0(), "IT0"),
	)
	fmt.Fprintln(w)

	fmt.Fprintf(
		w, "SCON : 0x%02X    %s %s %s %s %s %s %s %s\n", st.SCON(),
		flag(st.SM0(), "SM0"), flag(st.SM1(), "SM1"), flag(st.SM2(), "SM2"),
		flag(st.REN(), "REN"), flag(st.TB8(), "TB8"), flag(st.RB8(), "RB8"),
		flag(st.TI(), " TI"), flag(st.RI(), " RI"),
	)

	cell, _ := byteCell("SBUF", st.SFRByte(machine.SFR_SBUF))
	fmt.Fprintln(w, cell)
	fmt.Fprintln(w)

	tmod := st.TMOD()
	tl0 := st.SFRByte(machine.SFR_TL0)
	th0 := st.SFRByte(machine.SFR_TH0)
	tl1 := st.SFRByte(machine.SFR_TL1)
	th1 := st.SFRByte(machine.SFR_TH1)
	mode1 := (tmod & machine.TMOD_T1_MODE) >> 4

	fmt.Fprintf(w, "TMOD : 0x%02X\n", tmod)

	if tmod&machine.TMOD_T0_MODE == 0x03 {
		// Split mode: TH0 runs from TR1 and timer 1 only counts while its
		// own mode is not 3
		fmt.Fprintf(
			w, "TL0  : 0x%02X    Timer0a %s: % 6d%c     8-bit %s\n",
			tl0, running(st.TR0()), tl0, overflow(st.TF0()),
			timerSource(tmod&machine.TMOD_T0_CT != 0),
		)
		fmt.Fprintf(
			w, "TH0  : 0x%02X    Timer0b %s: % 6d%c     8-bit %s\n",
			th0, running(st.TR1()), th0, overflow(st.TF1()), "timer",
		)
		fmt.Fprintf(
			w, "TL1  : 0x%02X    Timer1  %s: % 6d%c    %s %s\n",
			tl1, running(mode1 != 3), st.Timer1(), ' ',
			timerMode(mode1), "timer",
		)
	} else {
		fmt.Fprintf(
			w, "TL0  : 0x%02X    Timer0  %s: % 6d%c    %s %s\n",
			tl0, running(st.TR0()), st.Timer0(), overflow(st.TF0()),
			timerMode(tmod&machine.TMOD_T0_MODE),
			timerSource(tmod&machine.TMOD_T0_CT != 0),
		)
		fmt.Fprintf(w, "TH0  : 0x%02X%s\n", th0, strings.Repeat(" ", 22))
		fmt.Fprintf(
			w, "TL1  : 0x%02X    Timer1  %s: % 6d%c    %s %s\n",
			tl1, running(st.TR1()), st.Timer1(), overflow(st.TF1()),
			timerMode(mode1), timerSource(tmod&machine.TMOD_T1_CT != 0),
		)
	}

	fmt.Fprintf(w, "TH1  : 0x%02X%s\n", th1, strings.Repeat(" ", 22))
	fmt.Fprintln(w)
}

func hexDump(w io.Writer, base int, width int, mem []uint8) {
	for i, value := range mem {
		if i&0x0F == 0x00 {
			fmt.Fprintf(w, "%0*X: ", width, base+i)
		}

		fmt.Fprintf(w, "%02X ", value)

		if i&0x0F == 0x0F {
			fmt.Fprintln(w)
		}
	}
}

// PrintData dumps the internal RAM.
func PrintData(w io.Writer, mc *machine.Machine) {
	fmt.Fprint(w, "\nIDATA:\n")
	dumpIndented(w, 0x00, mc.State.Data[:])
}

// PrintSFR dumps the special function registers, including the unmapped
// addresses.
func PrintSFR(w io.Writer, mc *machine.Machine) {
	fmt.Fprint(w, "\nSFR:\n")
	dumpIndented(w, 0x80, mc.State.SFR[:])
}

func dumpIndented(w io.Writer, base int, mem []uint8) {
	for row := 0; row < len(mem); row += 16 {
		fmt.Fprint(w, "  0x")
		hexDump(w, base+row, 2, mem[row:row+16])
	}
}

// PrintXData dumps one 512-byte page of external RAM.
func PrintXData(w io.Writer, mc *machine.Machine, page uint) error {
	if page >= XDATA_PAGES {
		return fmt.Errorf("%w: %d", ErrPageRange, page)
	}

	start := int(page) * XDATA_PAGE
	end := start + XDATA_PAGE

	fmt.Fprintf(w, "XDATA page %d (0x%04X - 0x%04X):\n", page, start, end-1)

	for row := start; row < end; row += 16 {
		fmt.Fprint(w, "0x")
		hexDump(w, row, 4, mc.State.XData[row:row+16])
	}

	return nil
}

// SaveXData writes the external RAM as an Intel-HEX image.
func SaveXData(w io.Writer, mc *machine.Machine) error {
	return encoding.WriteHex(w, &mc.State.XData)
}
