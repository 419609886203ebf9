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

// Raw SFR access. These never trigger write side effects; the executor goes
// through WriteDirect instead.
func (st *MachineState) SFRByte(addr uint8) uint8 {
	return st.SFR[addr&0x7F]
}

func (st *MachineState) SetSFRByte(addr uint8, value uint8) {
	st.SFR[addr&0x7F] = value
}

func (st *MachineState) sfrFlag(addr uint8, mask uint8) bool {
	return st.SFR[addr&0x7F]&mask != 0
}

func (st *MachineState) setSFRFlag(addr uint8, mask uint8, on bool) {
	if on {
		st.SFR[addr&0x7F] |= mask
	} else {
		st.SFR[addr&0x7F] &^= mask
	}
}

func (st *MachineState) ACC() uint8  { return st.SFRByte(SFR_ACC) }
func (st *MachineState) B() uint8    { return st.SFRByte(SFR_B) }
func (st *MachineState) PSW() uint8  { return st.SFRByte(SFR_PSW) }
func (st *MachineState) SP() uint8   { return st.SFRByte(SFR_SP) }
func (st *MachineState) DPL() uint8  { return st.SFRByte(SFR_DPL) }
func (st *MachineState) DPH() uint8  { return st.SFRByte(SFR_DPH) }
func (st *MachineState) IE() uint8   { return st.SFRByte(SFR_IE) }
func (st *MachineState) IP() uint8   { return st.SFRByte(SFR_IP) }
func (st *MachineState) TCON() uint8 { return st.SFRByte(SFR_TCON) }
func (st *MachineState) TMOD() uint8 { return st.SFRByte(SFR_TMOD) }
func (st *MachineState) SCON() uint8 { return st.SFRByte(SFR_SCON) }

func (st *MachineState) DPTR() uint16 {
	return uint16(st.DPL()) | uint16(st.DPH())<<8
}

// PSW
func (st *MachineState) CY() bool  { return st.sfrFlag(SFR_PSW, PSW_CY) }
func (st *MachineState) AC() bool  { return st.sfrFlag(SFR_PSW, PSW_AC) }
func (st *MachineState) F0() bool  { return st.sfrFlag(SFR_PSW, PSW_F0) }
func (st *MachineState) RS1() bool { return st.sfrFlag(SFR_PSW, PSW_RS1) }
func (st *MachineState) RS0() bool { return st.sfrFlag(SFR_PSW, PSW_RS0) }
func (st *MachineState) OV() bool  { return st.sfrFlag(SFR_PSW, PSW_OV) }
func (st *MachineState) P() bool   { return st.sfrFlag(SFR_PSW, PSW_P) }

// RS returns the active register bank, 0 to 3.
func (st *MachineState) RS() uint8 {
	return (st.PSW() & (PSW_RS1 | PSW_RS0)) >> 3
}

// TCON
func (st *MachineState) TF1() bool { return st.sfrFlag(SFR_TCON, TCON_TF1) }
func (st *MachineState) TR1() bool { return st.sfrFlag(SFR_TCON, TCON_TR1) }
func (st *MachineState) TF0() bool { return st.sfrFlag(SFR_TCON, TCON_TF0) }
func (st *MachineState) TR0() bool { return st.sfrFlag(SFR_TCON, TCON_TR0) }
func (st *MachineState) IE1() bool { return st.sfrFlag(SFR_TCON, TCON_IE1) }
func (st *MachineState) IT1() bool { return st.sfrFlag(SFR_TCON, TCON_IT1) }
func (st *MachineState) IE0() bool { return st.sfrFlag(SFR_TCON, TCON_IE0) }
func (st *MachineState) IT0() bool { return st.sfrFlag(SFR_TCON, TCON_IT0) }

// SCON
func (st *MachineState) SM0() bool { return st.sfrFlag(SFR_SCON, SCON_SM0) }
func (st *MachineState) SM1() bool { return st.sfrFlag(SFR_SCON, SCON_SM1) }
func (st *MachineState) SM2() bool { return st.sfrFlag(SFR_SCON, SCON_SM2) }
func (st *MachineState) REN() bool { return st.sfrFlag(SFR_SCON, SCON_REN) }
func (st *MachineState) TB8() bool { return st.sfrFlag(SFR_SCON, SCON_TB8) }
func (st *MachineState) RB8() bool { return st.sfrFlag(SFR_SCON, SCON_RB8) }
func (st *MachineState) TI() bool  { return st.sfrFlag(SFR_SCON, SCON_TI) }
func (st *MachineState) RI() bool  { return st.sfrFlag(SFR_SCON, SCON_RI) }

// IE
func (st *MachineState) EA() bool  { return st.sfrFlag(SFR_IE, IE_EA) }
func (st *MachineState) ES() bool  { return st.sfrFlag(SFR_IE, IE_ES) }
func (st *MachineState) ET1() bool { return st.sfrFlag(SFR_IE, IE_ET1) }
func (st *MachineState) EX1() bool { return st.sfrFlag(SFR_IE, IE_EX1) }
func (st *MachineState) ET0() bool { return st.sfrFlag(SFR_IE, IE_ET0) }
func (st *MachineState) EX0() bool { return st.sfrFlag(SFR_IE, IE_EX0) }

// IP
func (st *MachineState) PS() bool  { return st.sfrFlag(SFR_IP, IP_PS) }
func (st *MachineState) PT1() bool { return st.sfrFlag(SFR_IP, IP_PT1) }
func (st *MachineState) PX1() bool { return st.sfrFlag(SFR_IP, IP_PX1) }
func (st *MachineState) PT0() bool { return st.sfrFlag(SFR_IP, IP_PT0) }
func (st *MachineState) PX0() bool { return st.sfrFlag(SFR_IP, IP_PX0) }

// Reg reads R0-R7 of the bank selected by PSW.RS1:RS0.
func (st *MachineState) Reg(n uint8) uint8 {
	return st.Data[st.RS()<<3|n&0x07]
}

func (st *MachineState) SetReg(n uint8, value uint8) {
	st.Data[st.RS()<<3|n&0x07] = value
}

// Timer0 returns the counter value of timer 0 as the current TMOD mode
// interprets it. Mode 3 reports both halves as one 16-bit value.
func (st *MachineState) Timer0() int32 {
	tl := int32(st.SFRByte(SFR_TL0))
	th := int32(st.SFRByte(SFR_TH0))

	switch st.TMOD() & TMOD_T0_MODE {
	case 0x00:
		return th<<5 + tl
	case 0x01:
		return th<<8 + tl
	case 0x02:
		return tl
	default:
		return th<<8 + tl
	}
}

func (st *MachineState) Timer1() int32 {
	tl := int32(st.SFRByte(SFR_TL1))
	th := int32(st.SFRByte(SFR_TH1))

	switch st.TMOD() & TMOD_T1_MODE {
	case 0x00:
		return th<<5 + tl
	case 0x10:
		return th<<8 + tl
	case 0x20:
		return tl
	default:
		return th<<8 + tl
	}
}
