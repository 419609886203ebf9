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

// Side effects run after a direct write lands in an SFR. A hook sees the
// value already stored and may rewrite it.
var sfrWriteHooks = map[uint8]func(mc *Machine){
	SFR_ACC: func(mc *Machine) {
		mc.updateParity()
	},
	SFR_IE: func(mc *Machine) {
		mc.State.SFR[SFR_IE&0x7F] &= IE_WRITE_MASK
		mc.State.InterruptsBlocked = true
	},
	SFR_IP: func(mc *Machine) {
		mc.State.SFR[SFR_IP&0x7F] &= IP_WRITE_MASK
		mc.State.InterruptsBlocked = true
	},
	SFR_PCON: func(mc *Machine) {
		mc.State.SFR[SFR_PCON&0x7F] &= PCON_WRITE_MASK
	},
	SFR_SBUF: func(mc *Machine) {
		mc.State.SFR[SFR_SCON&0x7F] |= SCON_TI
	},
}

// ReadDirect reads a direct address: internal RAM below 0x80, the SFR
// space above.
func (mc *Machine) ReadDirect(direct uint8) uint8 {
	mc.assertDirect(direct)

	if mc.Debugger != nil {
		mc.Debugger.Read(direct, mc)
	}

	if direct&0x80 != 0 {
		return mc.State.SFR[direct&0x7F]
	}

	return mc.State.Data[direct]
}

// WriteDirect stores a value at a direct address and applies the SFR side
// effects of the target register.
func (mc *Machine) WriteDirect(direct uint8, value uint8) {
	mc.assertDirect(direct)

	if direct&0x80 != 0 {
		mc.State.SFR[direct&0x7F] = value

		if hook, ok := sfrWriteHooks[direct]; ok {
			hook(mc)
		}
	} else {
		mc.State.Data[direct] = value
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(direct, mc)
	}
}

// Internal RAM access for register and indirect operands. The upper half of
// the RAM shares its addresses with the SFRs, so the debugger only sees
// accesses to the lower half.
func (mc *Machine) readData(addr uint8) uint8 {
	if mc.Debugger != nil && addr&0x80 == 0 {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Data[addr]
}

func (mc *Machine) writeData(addr uint8, value uint8) {
	mc.State.Data[addr] = value

	if mc.Debugger != nil && addr&0x80 == 0 {
		mc.Debugger.Write(addr, mc)
	}
}

// Address of Rn in the active bank
func (mc *Machine) regAddr(n uint8) uint8 {
	return mc.State.RS()<<3 | n&0x07
}

// Address held in R0 or R1, for @Ri operands
func (mc *Machine) indirectAddr(i uint8) uint8 {
	addr := mc.readData(mc.regAddr(i & 0x01))
	mc.assertIndirect(addr)
	return addr
}

// bitAddr splits a bit address into the direct address of its byte and the
// mask of the bit within it.
func bitAddr(bit uint8) (uint8, uint8) {
	mask := uint8(1) << (bit & 0x07)

	if bit&0x80 != 0 {
		return bit & 0xF8, mask
	}

	return BIT_ADDRESSABLE + bit>>3, mask
}

func (mc *Machine) ReadBit(bit uint8) bool {
	mc.assertBit(bit)

	addr, mask := bitAddr(bit)
	return mc.ReadDirect(addr)&mask != 0
}

func (mc *Machine) WriteBit(bit uint8, on bool) {
	mc.assertBit(bit)

	addr, mask := bitAddr(bit)
	value := mc.ReadDirect(addr)

	if on {
		value |= mask
	} else {
		value &^= mask
	}

	mc.WriteDirect(addr, value)
}

func (mc *Machine) push(value uint8) {
	sp := mc.State.SP() + 1
	mc.State.SetSFRByte(SFR_SP, sp)
	mc.writeData(sp, value)
}

func (mc *Machine) pop() uint8 {
	sp := mc.State.SP()
	mc.State.SetSFRByte(SFR_SP, sp-1)
	return mc.readData(sp)
}

// Return addresses go on the stack low byte first.
func (mc *Machine) pushProgram() {
	mc.push(uint8(mc.State.Program))
	mc.push(uint8(mc.State.Program >> 8))
}

func (mc *Machine) popProgram() {
	hi := uint16(mc.pop())
	lo := uint16(mc.pop())
	mc.State.Program = hi<<8 | lo
}
