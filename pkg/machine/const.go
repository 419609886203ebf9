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

const (
	MEMSPACE_DATA  = 256
	MEMSPACE_SFR   = 128
	MEMSPACE_XDATA = 1 << 16
	MEMSPACE_CODE  = 1 << 16
)

// Direct addresses of the special function registers
const (
	SFR_P0   uint8 = 0x80
	SFR_SP   uint8 = 0x81
	SFR_DPL  uint8 = 0x82
	SFR_DPH  uint8 = 0x83
	SFR_PCON uint8 = 0x87
	SFR_TCON uint8 = 0x88
	SFR_TMOD uint8 = 0x89
	SFR_TL0  uint8 = 0x8A
	SFR_TL1  uint8 = 0x8B
	SFR_TH0  uint8 = 0x8C
	SFR_TH1  uint8 = 0x8D
	SFR_P1   uint8 = 0x90
	SFR_SCON uint8 = 0x98
	SFR_SBUF uint8 = 0x99
	SFR_P2   uint8 = 0xA0
	SFR_IE   uint8 = 0xA8
	SFR_P3   uint8 = 0xB0
	SFR_IP   uint8 = 0xB8
	SFR_PSW  uint8 = 0xD0
	SFR_ACC  uint8 = 0xE0
	SFR_B    uint8 = 0xF0
)

// PSW bits
const (
	PSW_CY  uint8 = 1 << 7
	PSW_AC  uint8 = 1 << 6
	PSW_F0  uint8 = 1 << 5
	PSW_RS1 uint8 = 1 << 4
	PSW_RS0 uint8 = 1 << 3
	PSW_OV  uint8 = 1 << 2
	PSW_P   uint8 = 1 << 0
)

// TCON bits
const (
	TCON_TF1 uint8 = 1 << 7
	TCON_TR1 uint8 = 1 << 6
	TCON_TF0 uint8 = 1 << 5
	TCON_TR0 uint8 = 1 << 4
	TCON_IE1 uint8 = 1 << 3
	TCON_IT1 uint8 = 1 << 2
	TCON_IE0 uint8 = 1 << 1
	TCON_IT0 uint8 = 1 << 0
)

// SCON bits
const (
	SCON_SM0 uint8 = 1 << 7
	SCON_SM1 uint8 = 1 << 6
	SCON_SM2 uint8 = 1 << 5
	SCON_REN uint8 = 1 << 4
	SCON_TB8 uint8 = 1 << 3
	SCON_RB8 uint8 = 1 << 2
	SCON_TI  uint8 = 1 << 1
	SCON_RI  uint8 = 1 << 0
)

// IE bits
const (
	IE_EA  uint8 = 1 << 7
	IE_ES  uint8 = 1 << 4
	IE_ET1 uint8 = 1 << 3
	IE_EX1 uint8 = 1 << 2
	IE_ET0 uint8 = 1 << 1
	IE_EX0 uint8 = 1 << 0
)

// IP bits
const (
	IP_PS  uint8 = 1 << 4
	IP_PT1 uint8 = 1 << 3
	IP_PX1 uint8 = 1 << 2
	IP_PT0 uint8 = 1 << 1
	IP_PX0 uint8 = 1 << 0
)

// TMOD fields
const (
	TMOD_T0_MODE uint8 = 0x03
	TMOD_T0_CT   uint8 = 0x04
	TMOD_T1_MODE uint8 = 0x30
	TMOD_T1_CT   uint8 = 0x40
)

// Masks applied when the unimplemented bits of a register are written
const (
	IE_WRITE_MASK   uint8 = 0x9F
	IP_WRITE_MASK   uint8 = 0x1F
	PCON_WRITE_MASK uint8 = 0x8F
)

// Interrupt vectors
const (
	VECTOR_EXT0   uint16 = 0x0003
	VECTOR_TIMER0 uint16 = 0x000B
	VECTOR_EXT1   uint16 = 0x0013
	VECTOR_TIMER1 uint16 = 0x001B
	VECTOR_SERIAL uint16 = 0x0023
)

// Interrupt nesting levels stored in MachineState.Interrupted
const (
	INT_LOW  uint8 = 1 << 0
	INT_HIGH uint8 = 1 << 1
)

const (
	BIT_ADDRESSABLE uint8 = 0x20
	SP_RESET        uint8 = 0x07
	PORT_RESET      uint8 = 0xFF
	MAX_COPROCESSOR       = 8
)

const (
	OP_NOP   uint8 = 0x00
	OP_AJMP  uint8 = 0x01
	OP_LJMP  uint8 = 0x02
	OP_LCALL uint8 = 0x12
	OP_RET   uint8 = 0x22
	OP_RETI  uint8 = 0x32
	OP_SJMP  uint8 = 0x80
	OP_DIV   uint8 = 0x84
	OP_MUL   uint8 = 0xA4

	// Reserved
	OP_RES uint8 = 0xA5
)
