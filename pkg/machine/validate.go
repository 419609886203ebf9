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
	"fmt"
)

// AssertionError is the panic value raised when an enabled validation check
// fails. Validation failures are programming errors in the guest image (or a
// coprocessor driver), not recoverable conditions.
type AssertionError struct {
	Program uint16
	Opcode  uint8
	Message string
	Value   uint8
}

func (err *AssertionError) Error() string {
	return fmt.Sprintf(
		"assertion failed at %#04x (opcode %#02x): %s (%#02x)",
		err.Program,
		err.Opcode,
		err.Message,
		err.Value,
	)
}

func (mc *Machine) assert(level ValidationLevel, ok bool, msg string, value uint8) {
	if ok || mc.Validation < level {
		return
	}

	panic(&AssertionError{
		Program: mc.State.Program,
		Opcode:  mc.State.IR.Bytes[0],
		Message: msg,
		Value:   value,
	})
}

func (mc *Machine) assertDirect(direct uint8) {
	mc.assert(VALIDATE_PURE, isValidDirect(direct), "invalid direct address", direct)
}

func (mc *Machine) assertBit(bit uint8) {
	mc.assert(VALIDATE_PURE, isValidBit(bit), "invalid bit address", bit)
}

// Only the SFRs of the base 8051 are legal direct targets above 0x7F.
func isValidDirect(direct uint8) bool {
	if direct&0x80 == 0 {
		return true
	}

	switch direct {
	case SFR_SP, SFR_DPL, SFR_DPH, SFR_PCON,
		SFR_TCON, SFR_TMOD, SFR_TL0, SFR_TL1, SFR_TH0, SFR_TH1,
		SFR_SCON, SFR_SBUF,
		SFR_IE, SFR_IP,
		SFR_P0, SFR_P1, SFR_P2, SFR_P3,
		SFR_PSW, SFR_ACC, SFR_B:
		return true
	}

	return false
}

func isValidBit(bit uint8) bool {
	if bit&0x80 == 0 {
		return true
	}

	switch bit & 0xF8 {
	case SFR_TCON, SFR_SCON,
		SFR_P0, SFR_P1, SFR_P2, SFR_P3,
		SFR_PSW, SFR_ACC, SFR_B:
		return true

	case SFR_IE:
		pos := bit & 0x07
		return pos != 5 && pos != 6

	case SFR_IP:
		return bit&0x07 <= 4
	}

	return false
}

// Indirect addressing past 0x7F reaches memory a base 8051 does not
// have.
func (mc *Machine) assertIndirect(addr uint8) {
	mc.assert(VALIDATE_STRICT, addr&0x80 == 0, "indirect address out of range", addr)
}
