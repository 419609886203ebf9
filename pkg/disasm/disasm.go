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

// Package disasm renders decoded 8051 instructions as fixed-width assembly
// text for the debugger status display and the offline disassembler.
package disasm

import (
	"fmt"
	"strings"

	"github.com/lassandro/vm8051/pkg/machine"
)

// NO_PC marks an instruction whose address is unknown. Branch targets are
// then shown relative to $, the address of the instruction.
const NO_PC = -1

const OP_WIDTH = 32

// Operand family mnemonics for the Rn and @Ri opcode rows, indexed by the
// high nibble. %[1]s is the register operand.
var operandFormats = [16]string{
	0x0: "INC   %[1]s",
	0x1: "DEC   %[1]s",
	0x2: "ADD   A, %[1]s",
	0x3: "ADDC  A, %[1]s",
	0x4: "ORL   A, %[1]s",
	0x5: "ANL   A, %[1]s",
	0x6: "XRL   A, %[1]s",
	0x7: "MOV   %[1]s, #%[2]s",
	0x8: "MOV   %[2]s, %[1]s",
	0x9: "SUBB  A, %[1]s",
	0xA: "MOV   %[1]s, %[2]s",
	0xB: "CJNE  %[1]s, #%[2]s, %[3]s",
	0xC: "XCH   A, %[1]s",
	0xD: "DJNZ  %[1]s, %[3]s",
	0xE: "MOV   A, %[1]s",
	0xF: "MOV   %[1]s, A",
}

// Op renders inst as a mnemonic line padded to OP_WIDTH columns. pc is the
// address inst was fetched from, or NO_PC.
func Op(inst machine.Instruction, pc int) string {
	return fmt.Sprintf("%-*s", OP_WIDTH, op(inst, pc))
}

// Opcode renders the raw bytes of inst as one hex string.
func Opcode(inst machine.Instruction) string {
	var sb strings.Builder

	for i := uint8(0); i < inst.Len && i < uint8(len(inst.Bytes)); i++ {
		fmt.Fprintf(&sb, "%02X", inst.Bytes[i])
	}

	return sb.String()
}

func byteArg(value uint8) string {
	return fmt.Sprintf("0x%02X", value)
}

func wordArg(value uint16) string {
	return fmt.Sprintf("0x%04X", value)
}

// SFR bits print as byte.bit, RAM bits by their bit address.
func bitArg(bit uint8) string {
	if bit&0x80 != 0 {
		return fmt.Sprintf("0x%02X.%X", bit&0xF8, bit&0x07)
	}

	return byteArg(bit)
}

func bitByteArg(bit uint8) string {
	addr := machine.BIT_ADDRESSABLE + bit>>3
	if bit&0x80 != 0 {
		addr = bit & 0xF8
	}

	return fmt.Sprintf("0x%02X.%X", addr, bit&0x07)
}

func relArg(pc int, length uint8, rel uint8) string {
	if pc == NO_PC {
		return fmt.Sprintf("($ + %d) + % 4d", length, int8(rel))
	}

	return wordArg(uint16(pc) + uint16(length) + uint16(int8(rel)))
}

func absArg(pc int, opcode uint8, low uint8) string {
	target := uint16(opcode&0xE0)<<3 | uint16(low)

	if pc == NO_PC {
		return fmt.Sprintf("($ & 0xF800) | %s", wordArg(target))
	}

	return wordArg((uint16(pc)+2)&0xF800 | target)
}

func op(inst machine.Instruction, pc int) string {
	ir := inst.Bytes

	switch {
	case ir[0]&0x08 != 0:
		return operand(fmt.Sprintf("R%X", ir[0]&0x07), inst, pc)

	case ir[0]&0x06 == 0x06:
		if ir[0]&0xF0 == 0xD0 {
			return fmt.Sprintf("XCHD  A, @R%X", ir[0]&0x01)
		}
		return operand(fmt.Sprintf("@R%X", ir[0]&0x01), inst, pc)

	case ir[0]&0x0F == 0x01:
		if ir[0]&0x10 != 0 {
			return "ACALL " + absArg(pc, ir[0], ir[1])
		}
		return "AJMP  " + absArg(pc, ir[0], ir[1])
	}

	return implied(inst, pc)
}

func operand(reg string, inst machine.Instruction, pc int) string {
	ir := inst.Bytes
	format := operandFormats[ir[0]>>4]

	switch ir[0] & 0xF0 {
	case 0x70, 0x80, 0xA0:
		return fmt.Sprintf(format, reg, byteArg(ir[1]))
	case 0xB0:
		return fmt.Sprintf(format, reg, byteArg(ir[1]), relArg(pc, 3, ir[2]))
	case 0xD0:
		return fmt.Sprintf(format, reg, "", relArg(pc, 2, ir[1]))
	}

	return fmt.Sprintf(format, reg)
}

func implied(inst machine.Instruction, pc int) string {
	ir := inst.Bytes

	switch ir[0] {
	case machine.OP_NOP:
		return "NOP"

	// Relative jumps
	case 0x10:
		return "JBC   " + bitByteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])
	case 0x20:
		return "JB    " + bitByteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])
	case 0x30:
		return "JNB   " + bitByteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])
	case 0x40:
		return "JC    " + relArg(pc, 2, ir[1])
	case 0x50:
		return "JNC   " + relArg(pc, 2, ir[1])
	case 0x60:
		return "JZ    " + relArg(pc, 2, ir[1])
	case 0x70:
		return "JNZ   " + relArg(pc, 2, ir[1])
	case machine.OP_SJMP:
		return "SJMP  " + relArg(pc, 2, ir[1])

	// Calls and long jumps
	case machine.OP_LJMP:
		return "LJMP  " + wordArg(uint16(ir[1])<<8|uint16(ir[2]))
	case machine.OP_LCALL:
		return "LCALL " + wordArg(uint16(ir[1])<<8|uint16(ir[2]))
	case machine.OP_RET:
		return "RET"
	case machine.OP_RETI:
		return "RETI"
	case 0x73:
		return "JMP   @A+DPTR"

	case 0x90:
		return "MOV   DPTR, #" + wordArg(uint16(ir[1])<<8|uint16(ir[2]))

	// Carry logic
	case 0x72:
		return "ORL   C, " + bitArg(ir[1])
	case 0x82:
		return "ANL   C, " + bitArg(ir[1])
	case 0xA0:
		return "ORL   C, /" + bitArg(ir[1])
	case 0xB0:
		return "ANL   C, /" + bitArg(ir[1])
	case 0x92:
		return "MOV   " + bitArg(ir[1]) + ", C"
	case 0xA2:
		return "MOV   C, " + bitArg(ir[1])
	case 0xB2:
		return "CPL   " + bitArg(ir[1])
	case 0xC2:
		return "CLR   " + bitArg(ir[1])
	case 0xD2:
		return "SETB  " + bitArg(ir[1])
	case 0xB3:
		return "CPL   C"
	case 0xC3:
		return "CLR   C"
	case 0xD3:
		return "SETB  C"

	case 0xC0:
		return "PUSH  " + byteArg(ir[1])
	case 0xD0:
		return "POP   " + byteArg(ir[1])

	case 0xE0:
		return "MOVX  A, @DPTR"
	case 0xF0:
		return "MOVX  @DPTR, A"
	case 0xE2, 0xE3:
		return fmt.Sprintf("MOVX  A, @R%X", ir[0]&0x01)
	case 0xF2, 0xF3:
		return fmt.Sprintf("MOVX  @R%X, A", ir[0]&0x01)

	// Direct destination logic
	case 0x42:
		return "ORL   " + byteArg(ir[1]) + ", A"
	case 0x52:
		return "ANL   " + byteArg(ir[1]) + ", A"
	case 0x62:
		return "XRL   " + byteArg(ir[1]) + ", A"
	case 0x43:
		return "ORL   " + byteArg(ir[1]) + ", #" + byteArg(ir[2])
	case 0x53:
		return "ANL   " + byteArg(ir[1]) + ", #" + byteArg(ir[2])
	case 0x63:
		return "XRL   " + byteArg(ir[1]) + ", #" + byteArg(ir[2])

	// Accumulator
	case 0x03:
		return "RR    A"
	case 0x13:
		return "RRC   A"
	case 0x23:
		return "RL    A"
	case 0x33:
		return "RLC   A"
	case 0x04:
		return "INC   A"
	case 0x14:
		return "DEC   A"
	case 0xC4:
		return "SWAP  A"
	case 0xD4:
		return "DA    A"
	case 0xE4:
		return "CLR   A"
	case 0xF4:
		return "CPL   A"
	case machine.OP_MUL:
		return "MUL   AB"
	case machine.OP_DIV:
		return "DIV   AB"

	case 0x83:
		return "MOVC  A, @A+PC"
	case 0x93:
		return "MOVC  A, @A+DPTR"
	case 0xA3:
		return "INC   DPTR"

	// Immediate operand
	case 0x24:
		return "ADD   A, #" + byteArg(ir[1])
	case 0x34:
		return "ADDC  A, #" + byteArg(ir[1])
	case 0x44:
		return "ORL   A, #" + byteArg(ir[1])
	case 0x54:
		return "ANL   A, #" + byteArg(ir[1])
	case 0x64:
		return "XRL   A, #" + byteArg(ir[1])
	case 0x74:
		return "MOV   A, #" + byteArg(ir[1])
	case 0x94:
		return "SUBB  A, #" + byteArg(ir[1])
	case 0xB4:
		return "CJNE  A, #" + byteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])

	// Direct operand
	case 0x05:
		return "INC   " + byteArg(ir[1])
	case 0x15:
		return "DEC   " + byteArg(ir[1])
	case 0x25:
		return "ADD   A, " + byteArg(ir[1])
	case 0x35:
		return "ADDC  A, " + byteArg(ir[1])
	case 0x45:
		return "ORL   A, " + byteArg(ir[1])
	case 0x55:
		return "ANL   A, " + byteArg(ir[1])
	case 0x65:
		return "XRL   A, " + byteArg(ir[1])
	case 0x75:
		return "MOV   " + byteArg(ir[1]) + ", #" + byteArg(ir[2])
	case 0x85:
		return "MOV   " + byteArg(ir[2]) + ", " + byteArg(ir[1])
	case 0x95:
		return "SUBB  A, " + byteArg(ir[1])
	case 0xB5:
		return "CJNE  A, " + byteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])
	case 0xC5:
		return "XCH   A, " + byteArg(ir[1])
	case 0xD5:
		return "DJNZ  " + byteArg(ir[1]) + ", " + relArg(pc, 3, ir[2])
	case 0xE5:
		return "MOV   A, " + byteArg(ir[1])
	case 0xF5:
		return "MOV   " + byteArg(ir[1]) + ", A"
	}

	return "DB    " + byteArg(ir[0])
}
