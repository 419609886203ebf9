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

// InstructionLength returns the encoded size of an opcode in bytes.
func InstructionLength(opcode uint8) uint8 {
	switch {
	// Rn operand family, x8-xF
	case opcode&0x08 != 0:
		switch opcode & 0xF0 {
		case 0x70, 0x80, 0xA0, 0xD0:
			return 2
		case 0xB0:
			return 3
		}
		return 1

	// @Ri operand family, x6-x7
	case opcode&0x06 == 0x06:
		switch opcode & 0xF0 {
		case 0x70, 0x80, 0xA0:
			return 2
		case 0xB0:
			return 3
		}
		return 1

	// AJMP / ACALL
	case opcode&0x0F == 0x01:
		return 2
	}

	switch opcode {
	case 0x10, 0x20, 0x30, 0x90, 0x02, 0x12, 0x43, 0x53, 0x63,
		0xB4, 0x75, 0x85, 0xB5, 0xD5:
		return 3

	case 0x40, 0x50, 0x60, 0x70, 0x80, 0xA0, 0xB0, 0xC0, 0xD0,
		0x42, 0x52, 0x62, 0x72, 0x82, 0x92, 0xA2, 0xB2, 0xC2, 0xD2,
		0x24, 0x34, 0x44, 0x54, 0x64, 0x74, 0x94,
		0x05, 0x15, 0x25, 0x35, 0x45, 0x55, 0x65, 0x95, 0xC5, 0xE5, 0xF5:
		return 2
	}

	return 1
}

// Decode reads the instruction at addr. Operand bytes past the top of the
// code space wrap around to 0x0000.
func Decode(code *[MEMSPACE_CODE]uint8, addr uint16) Instruction {
	inst := Instruction{Len: InstructionLength(code[addr])}

	for i := uint8(0); i < inst.Len; i++ {
		inst.Bytes[i] = code[addr+uint16(i)]
	}

	return inst
}
