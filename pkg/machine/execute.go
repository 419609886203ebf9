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
	"github.com/lassandro/vm8051/pkg/encoding"
)

// execute runs the instruction in IR and returns the machine cycles it took.
// Program already points past the instruction.
func (mc *Machine) execute() uint64 {
	op := mc.State.IR.Bytes[0]

	switch {
	// INC/DEC/ADD/.../MOV  Rn
	case op&0x08 != 0:
		return mc.executeOperand(mc.regAddr(op&0x07), false)

	// INC/DEC/ADD/.../MOV  @Ri
	case op&0x06 == 0x06:
		return mc.executeOperand(mc.indirectAddr(op&0x01), true)

	// AJMP/ACALL  |aaa|x|0001|  |addr11 low|
	case op&0x0F == 0x01:
		return mc.executeAbsolute()

	// MOVX  A,@Ri / @Ri,A
	case op&0xEE == 0xE2:
		addr := uint16(mc.State.SFRByte(SFR_P2))<<8 |
			uint16(mc.readData(mc.regAddr(op&0x01)))

		mc.moveExternal(addr, op&0x10 != 0)
		return 2
	}

	return mc.executeImplied()
}

// executeOperand runs the two register operand families. Both share the
// high-nibble table, except that 0xD_ is DJNZ for Rn and XCHD for @Ri.
func (mc *Machine) executeOperand(addr uint8, indirect bool) uint64 {
	ir := &mc.State.IR.Bytes

	switch ir[0] & 0xF0 {
	case 0x00:
		mc.writeData(addr, mc.readData(addr)+1)

	case 0x10:
		mc.writeData(addr, mc.readData(addr)-1)

	case 0x20:
		mc.add(mc.readData(addr), false)

	case 0x30:
		mc.add(mc.readData(addr), true)

	case 0x40:
		mc.setAcc(mc.State.ACC() | mc.readData(addr))

	case 0x50:
		mc.setAcc(mc.State.ACC() & mc.readData(addr))

	case 0x60:
		mc.setAcc(mc.State.ACC() ^ mc.readData(addr))

	// MOV  Rn,#data
	case 0x70:
		mc.writeData(addr, ir[1])

	// MOV  direct,Rn
	case 0x80:
		mc.WriteDirect(ir[1], mc.readData(addr))
		return 2

	case 0x90:
		mc.subb(mc.readData(addr))

	// MOV  Rn,direct
	case 0xA0:
		mc.writeData(addr, mc.ReadDirect(ir[1]))
		return 2

	// CJNE  Rn,#data,rel
	case 0xB0:
		mc.compareJump(mc.readData(addr), ir[1], ir[2])
		return 2

	case 0xC0:
		acc := mc.State.ACC()
		mc.setAcc(mc.readData(addr))
		mc.writeData(addr, acc)

	case 0xD0:
		if indirect {
			acc := mc.State.ACC()
			val := mc.readData(addr)
			mc.writeData(addr, val&0xF0|acc&0x0F)
			mc.setAcc(acc&0xF0 | val&0x0F)
			break
		}

		val := mc.readData(addr) - 1
		mc.writeData(addr, val)
		if val != 0 {
			mc.jump(ir[1])
		}
		return 2

	case 0xE0:
		mc.setAcc(mc.readData(addr))

	case 0xF0:
		mc.writeData(addr, mc.State.ACC())
	}

	return 1
}

func (mc *Machine) executeAbsolute() uint64 {
	ir := &mc.State.IR.Bytes

	if ir[0]&0x10 != 0 {
		mc.pushProgram()
	}

	prefix := uint16(ir[0]&0xE0) >> 5
	mc.State.Program = mc.State.Program&0xF800 | prefix<<8 | uint16(ir[1])

	return 2
}

func (mc *Machine) executeImplied() uint64 {
	ir := &mc.State.IR.Bytes
	acc := mc.State.ACC()

	switch ir[0] {
	case OP_NOP:
		return 1

	// Relative jumps
	case 0x10:
		if mc.ReadBit(ir[1]) {
			mc.WriteBit(ir[1], false)
			mc.jump(ir[2])
		}
		return 2

	case 0x20:
		if mc.ReadBit(ir[1]) {
			mc.jump(ir[2])
		}
		return 2

	case 0x30:
		if !mc.ReadBit(ir[1]) {
			mc.jump(ir[2])
		}
		return 2

	case 0x40:
		if mc.State.CY() {
			mc.jump(ir[1])
		}
		return 2

	case 0x50:
		if !mc.State.CY() {
			mc.jump(ir[1])
		}
		return 2

	case 0x60:
		if acc == 0 {
			mc.jump(ir[1])
		}
		return 2

	case 0x70:
		if acc != 0 {
			mc.jump(ir[1])
		}
		return 2

	case OP_SJMP:
		mc.jump(ir[1])
		return 2

	// MOV  DPTR,#data16
	case 0x90:
		mc.State.SetSFRByte(SFR_DPH, ir[1])
		mc.State.SetSFRByte(SFR_DPL, ir[2])
		return 2

	// Carry logic
	case 0x72:
		mc.setCarry(mc.State.CY() || mc.ReadBit(ir[1]))
		return 2

	case 0x82:
		mc.setCarry(mc.State.CY() && mc.ReadBit(ir[1]))
		return 2

	case 0xA0:
		mc.setCarry(mc.State.CY() || !mc.ReadBit(ir[1]))
		return 2

	case 0xB0:
		mc.setCarry(mc.State.CY() && !mc.ReadBit(ir[1]))
		return 2

	case 0x92:
		mc.WriteBit(ir[1], mc.State.CY())
		return 2

	case 0xA2:
		mc.setCarry(mc.ReadBit(ir[1]))

	case 0xB2:
		mc.WriteBit(ir[1], !mc.ReadBit(ir[1]))

	case 0xC2:
		mc.WriteBit(ir[1], false)

	case 0xD2:
		mc.WriteBit(ir[1], true)

	case 0xB3:
		mc.setCarry(!mc.State.CY())

	case 0xC3:
		mc.setCarry(false)

	case 0xD3:
		mc.setCarry(true)

	// Stack
	case 0xC0:
		mc.push(mc.ReadDirect(ir[1]))
		return 2

	case 0xD0:
		mc.WriteDirect(ir[1], mc.pop())
		return 2

	// MOVX  A,@DPTR / @DPTR,A
	case 0xE0:
		mc.moveExternal(mc.State.DPTR(), false)
		return 2

	case 0xF0:
		mc.moveExternal(mc.State.DPTR(), true)
		return 2

	// Calls and long jumps
	case OP_LJMP:
		mc.State.Program = uint16(ir[1])<<8 | uint16(ir[2])
		return 2

	case OP_LCALL:
		mc.pushProgram()
		mc.State.Program = uint16(ir[1])<<8 | uint16(ir[2])
		return 2

	case OP_RET:
		mc.popProgram()
		return 2

	case OP_RETI:
		if mc.State.Interrupted&INT_HIGH != 0 {
			mc.State.Interrupted &^= INT_HIGH
		} else {
			mc.State.Interrupted = 0
		}

		mc.State.InterruptsBlocked = true
		mc.popProgram()
		return 2

	case 0x73:
		mc.State.Program = uint16(acc) + mc.State.DPTR()
		return 2

	// Direct destination logic
	case 0x42:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])|acc)

	case 0x52:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])&acc)

	case 0x62:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])^acc)

	case 0x43:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])|ir[2])
		return 2

	case 0x53:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])&ir[2])
		return 2

	case 0x63:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])^ir[2])
		return 2

	// Accumulator
	case 0x03:
		mc.rotateRight(false)

	case 0x13:
		mc.rotateRight(true)

	case 0x23:
		mc.rotateLeft(false)

	case 0x33:
		mc.rotateLeft(true)

	case 0x04:
		mc.setAcc(acc + 1)

	case 0x14:
		mc.setAcc(acc - 1)

	case 0xC4:
		mc.setAcc(acc<<4 | acc>>4)

	case 0xD4:
		mc.decimalAdjust()

	case 0xE4:
		mc.setAcc(0)

	case 0xF4:
		mc.setAcc(^acc)

	case OP_MUL:
		mc.multiply()
		return 4

	case OP_DIV:
		mc.divide()
		return 4

	// MOVC
	case 0x83:
		mc.setAcc(mc.State.Code[uint16(acc)+mc.State.Program])
		return 2

	case 0x93:
		mc.setAcc(mc.State.Code[uint16(acc)+mc.State.DPTR()])
		return 2

	case 0xA3:
		dptr := mc.State.DPTR() + 1
		mc.State.SetSFRByte(SFR_DPH, uint8(dptr>>8))
		mc.State.SetSFRByte(SFR_DPL, uint8(dptr))
		return 2

	// Immediate operand
	case 0x24:
		mc.add(ir[1], false)

	case 0x34:
		mc.add(ir[1], true)

	case 0x44:
		mc.setAcc(acc | ir[1])

	case 0x54:
		mc.setAcc(acc & ir[1])

	case 0x64:
		mc.setAcc(acc ^ ir[1])

	case 0x74:
		mc.setAcc(ir[1])

	case 0x94:
		mc.subb(ir[1])

	case 0xB4:
		mc.compareJump(acc, ir[1], ir[2])
		return 2

	// Direct operand
	case 0x05:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])+1)

	case 0x15:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])-1)

	case 0x25:
		mc.add(mc.ReadDirect(ir[1]), false)

	case 0x35:
		mc.add(mc.ReadDirect(ir[1]), true)

	case 0x45:
		mc.setAcc(acc | mc.ReadDirect(ir[1]))

	case 0x55:
		mc.setAcc(acc & mc.ReadDirect(ir[1]))

	case 0x65:
		mc.setAcc(acc ^ mc.ReadDirect(ir[1]))

	case 0x75:
		mc.WriteDirect(ir[1], ir[2])
		return 2

	// MOV  dest,src is encoded as |0x85|src|dest|
	case 0x85:
		mc.WriteDirect(ir[2], mc.ReadDirect(ir[1]))
		return 2

	case 0x95:
		mc.subb(mc.ReadDirect(ir[1]))

	case 0xB5:
		mc.compareJump(acc, mc.ReadDirect(ir[1]), ir[2])
		return 2

	case 0xC5:
		mc.setAcc(mc.ReadDirect(ir[1]))
		mc.WriteDirect(ir[1], acc)

	case 0xD5:
		mc.WriteDirect(ir[1], mc.ReadDirect(ir[1])-1)
		if mc.ReadDirect(ir[1]) != 0 {
			mc.jump(ir[2])
		}
		return 2

	case 0xE5:
		mc.setAcc(mc.ReadDirect(ir[1]))

	case 0xF5:
		mc.WriteDirect(ir[1], acc)

	// RES  0xA5, reserved
	default:
		mc.assert(VALIDATE_STRICT, ir[0] == OP_RES, "unhandled opcode", ir[0])
		return 0
	}

	return 1
}

func (mc *Machine) jump(rel uint8) {
	mc.State.Program = encoding.Rel8(mc.State.Program, rel)
}

func (mc *Machine) compareJump(lhs uint8, rhs uint8, rel uint8) {
	mc.setCarry(lhs < rhs)

	if lhs != rhs {
		mc.jump(rel)
	}
}

// External memory cycles leave P0 floating high.
func (mc *Machine) moveExternal(addr uint16, store bool) {
	if store {
		mc.State.XData[addr] = mc.State.ACC()
	} else {
		mc.setAcc(mc.State.XData[addr])
	}

	mc.State.SetSFRByte(SFR_P0, PORT_RESET)
}
