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

func (mc *Machine) setAcc(value uint8) {
	mc.State.SFR[SFR_ACC&0x7F] = value
	mc.updateParity()
}

// P always holds the even parity of the accumulator.
func (mc *Machine) updateParity() {
	acc := mc.State.ACC()
	acc ^= acc >> 4
	acc ^= acc >> 2
	acc ^= acc >> 1

	mc.State.setSFRFlag(SFR_PSW, PSW_P, acc&0x01 != 0)
}

func (mc *Machine) setCarry(on bool) {
	mc.State.setSFRFlag(SFR_PSW, PSW_CY, on)
}

// add computes A + data (+ CY) into A, updating CY, AC and OV.
func (mc *Machine) add(data uint8, withCarry bool) {
	acc := uint16(mc.State.ACC())
	val := uint16(data)

	res := acc&0x0F + val&0x0F
	if withCarry && mc.State.CY() {
		res++
	}

	halfCarry := res&0x10 != 0

	res += acc&0xF0 + val&0xF0
	carry := res&0x100 != 0

	// Carry into bit 7 differs from carry out of it
	overflow := (acc^val^res^(res&0x100)>>1)&0x80 != 0

	mc.State.setSFRFlag(SFR_PSW, PSW_CY, carry)
	mc.State.setSFRFlag(SFR_PSW, PSW_AC, halfCarry)
	mc.State.setSFRFlag(SFR_PSW, PSW_OV, overflow)

	mc.setAcc(uint8(res))
}

// subb computes A - data - CY as A + ~data + !CY. CY ends up as the borrow.
// AC keeps the half carry of the addition.
func (mc *Machine) subb(data uint8) {
	mc.State.SFR[SFR_PSW&0x7F] ^= PSW_CY
	mc.add(^data, true)
	mc.State.SFR[SFR_PSW&0x7F] ^= PSW_CY
}

func (mc *Machine) decimalAdjust() {
	res := uint16(mc.State.ACC())

	if res&0x0F > 0x09 || mc.State.AC() {
		res += 0x06
	}

	if res&0xF0 > 0x90 || mc.State.CY() {
		res += 0x60
	}

	// DA never clears a carry
	if res&0x100 != 0 {
		mc.setCarry(true)
	}

	mc.setAcc(uint8(res))
}

func (mc *Machine) multiply() {
	res := uint16(mc.State.ACC()) * uint16(mc.State.B())

	mc.setCarry(false)
	mc.State.setSFRFlag(SFR_PSW, PSW_OV, res > 0xFF)

	mc.State.SetSFRByte(SFR_B, uint8(res>>8))
	mc.setAcc(uint8(res))
}

func (mc *Machine) divide() {
	mc.setCarry(false)

	divisor := mc.State.B()
	if divisor == 0 {
		mc.State.setSFRFlag(SFR_PSW, PSW_OV, true)
		mc.updateParity()
		return
	}

	mc.State.setSFRFlag(SFR_PSW, PSW_OV, false)

	acc := mc.State.ACC()
	mc.State.SetSFRByte(SFR_B, acc%divisor)
	mc.setAcc(acc / divisor)
}

func (mc *Machine) rotateLeft(throughCarry bool) {
	acc := mc.State.ACC()
	in := acc >> 7

	if throughCarry {
		in = 0
		if mc.State.CY() {
			in = 0x01
		}

		mc.setCarry(acc&0x80 != 0)
	}

	mc.setAcc(acc<<1 | in)
}

func (mc *Machine) rotateRight(throughCarry bool) {
	acc := mc.State.ACC()
	in := acc << 7

	if throughCarry {
		in = 0
		if mc.State.CY() {
			in = 0x80
		}

		mc.setCarry(acc&0x01 != 0)
	}

	mc.setAcc(acc>>1 | in)
}
