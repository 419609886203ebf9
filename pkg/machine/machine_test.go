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

package machine_test

import (
	"bytes"
	"testing"

	"github.com/lassandro/vm8051/pkg/machine"
)

type testMachineState struct {
	Program     uint16
	Cycles      uint64
	Interrupted uint8
	Code        map[uint16]uint8
	Data        map[uint8]uint8
	SFR         map[uint8]uint8
	XData       map[uint16]uint8
}

type testCase struct {
	Name      string
	Steps     uint
	SerialIn  string
	SerialOut string
	Input     testMachineState
	Output    testMachineState
}

// code lays bytes out in code memory starting at base.
func code(base uint16, values ...uint8) map[uint16]uint8 {
	result := make(map[uint16]uint8, len(values))

	for i, b := range values {
		result[base+uint16(i)] = b
	}

	return result
}

func testMachineSuccess(t *testing.T, test *testCase) {
	if test.Input.Code == nil {
		panic("No code provided")
	}

	var mc machine.Machine
	var devices machine.DeviceHandler
	var serialOut bytes.Buffer

	if len(test.SerialIn) > 0 {
		devices.SerialIn = bytes.NewBufferString(test.SerialIn)
	}

	if len(test.SerialOut) > 0 {
		devices.SerialOut = &serialOut
	}

	if devices.SerialIn != nil || devices.SerialOut != nil {
		mc.Devices = &devices
	}

	mc.State.Reset()
	mc.State.Program = test.Input.Program
	mc.State.Cycles = test.Input.Cycles
	mc.State.Interrupted = test.Input.Interrupted

	for addr, value := range test.Input.Code {
		mc.State.Code[addr] = value
	}

	for addr, value := range test.Input.Data {
		mc.State.Data[addr] = value
	}

	for addr, value := range test.Input.SFR {
		mc.State.SetSFRByte(addr, value)
	}

	for addr, value := range test.Input.XData {
		mc.State.XData[addr] = value
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	for i := uint(0); i < test.Steps; i++ {
		mc.Step()
	}

	if mc.State.Program != test.Output.Program {
		t.Errorf(
			"Program register mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			mc.State.Program,
		)
	}

	if mc.State.Cycles != test.Output.Cycles {
		t.Errorf(
			"Cycle count mismatch"+
				"\nwant:%d (test.Output.Cycles)\nhave:%d",
			test.Output.Cycles,
			mc.State.Cycles,
		)
	}

	if mc.State.Interrupted != test.Output.Interrupted {
		t.Errorf(
			"Interrupt level mismatch"+
				"\nwant:%#02x (test.Output.Interrupted)\nhave:%#02x",
			test.Output.Interrupted,
			mc.State.Interrupted,
		)
	}

	for addr, want := range test.Output.Data {
		if have := mc.State.Data[addr]; have != want {
			t.Errorf(
				"Data mismatch"+
					"\nwant:%#02x (test.Output.Data[%#02x])\nhave:%#02x",
				want,
				addr,
				have,
			)
		}
	}

	for addr, want := range test.Output.SFR {
		if have := mc.State.SFRByte(addr); have != want {
			t.Errorf(
				"SFR mismatch"+
					"\nwant:%#02x (test.Output.SFR[%#02x])\nhave:%#02x",
				want,
				addr,
				have,
			)
		}
	}

	for addr, want := range test.Output.XData {
		if have := mc.State.XData[addr]; have != want {
			t.Errorf(
				"XData mismatch"+
					"\nwant:%#02x (test.Output.XData[%#04x])\nhave:%#02x",
				want,
				addr,
				have,
			)
		}
	}

	if have := serialOut.String(); len(test.SerialOut) > 0 && have != test.SerialOut {
		t.Errorf(
			"Serial output mismatch"+
				"\nwant:%q (test.SerialOut)\nhave:%q",
			test.SerialOut,
			have,
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	for i := range tests {
		test := &tests[i]
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, test)
		})
	}
}

const (
	ACC  = machine.SFR_ACC
	B    = machine.SFR_B
	PSW  = machine.SFR_PSW
	SP   = machine.SFR_SP
	DPH  = machine.SFR_DPH
	DPL  = machine.SFR_DPL
	P0   = machine.SFR_P0
	P1   = machine.SFR_P1
	P2   = machine.SFR_P2
	P3   = machine.SFR_P3
	IE   = machine.SFR_IE
	IP   = machine.SFR_IP
	TCON = machine.SFR_TCON
	TMOD = machine.SFR_TMOD
	TL0  = machine.SFR_TL0
	TH0  = machine.SFR_TH0
	TL1  = machine.SFR_TL1
	TH1  = machine.SFR_TH1
	SCON = machine.SFR_SCON
	SBUF = machine.SFR_SBUF
)

func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "NOP",
			Input:  testMachineState{Code: code(0, 0x00)},
			Output: testMachineState{Program: 1, Cycles: 1},
		},
		{
			Name:  "MOV A,#data",
			Input: testMachineState{Code: code(0, 0x74, 0x05)},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x05, PSW: 0x00},
			},
		},
		{
			Name:  "MOV A,#data (odd parity)",
			Input: testMachineState{Code: code(0, 0x74, 0x07)},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x07, PSW: 0x01},
			},
		},
		{
			Name: "ADD A,#data (carry)",
			Input: testMachineState{
				Code: code(0, 0x24, 0x01),
				SFR:  map[uint8]uint8{ACC: 0xFF},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x00, PSW: 0xC0},
			},
		},
		{
			Name: "ADD A,#data (overflow)",
			Input: testMachineState{
				Code: code(0, 0x24, 0x01),
				SFR:  map[uint8]uint8{ACC: 0x7F},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x80, PSW: 0x45},
			},
		},
		{
			Name: "ADDC A,#data",
			Input: testMachineState{
				Code: code(0, 0x34, 0x20),
				SFR:  map[uint8]uint8{ACC: 0x10, PSW: 0x80},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x31, PSW: 0x01},
			},
		},
		{
			Name:  "SUBB A,#data (borrow)",
			Input: testMachineState{Code: code(0, 0x94, 0x01)},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0xFF, PSW: 0x80},
			},
		},
		{
			// AC keeps the half carry of the complement addition
			Name: "SUBB A,direct",
			Input: testMachineState{
				Code: code(0, 0x95, 0x30),
				Data: map[uint8]uint8{0x30: 0x20},
				SFR:  map[uint8]uint8{ACC: 0x50},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x30, PSW: 0x40},
			},
		},
		{
			Name: "INC Rn",
			Input: testMachineState{
				Code: code(0, 0x0B),
				Data: map[uint8]uint8{0x03: 0x41},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				Data:    map[uint8]uint8{0x03: 0x42},
			},
		},
		{
			Name: "INC Rn (bank 1)",
			Input: testMachineState{
				Code: code(0, 0x0B),
				Data: map[uint8]uint8{0x03: 0x10, 0x0B: 0xFF},
				SFR:  map[uint8]uint8{PSW: 0x08},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				Data:    map[uint8]uint8{0x03: 0x10, 0x0B: 0x00},
				SFR:     map[uint8]uint8{PSW: 0x08},
			},
		},
		{
			Name: "INC direct",
			Input: testMachineState{
				Code: code(0, 0x05, 0x30),
				Data: map[uint8]uint8{0x30: 0xFF},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				Data:    map[uint8]uint8{0x30: 0x00},
			},
		},
		{
			Name:  "DEC A",
			Input: testMachineState{Code: code(0, 0x14)},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0xFF, PSW: 0x00},
			},
		},
		{
			Name: "MUL AB",
			Input: testMachineState{
				Code: code(0, 0xA4),
				SFR:  map[uint8]uint8{ACC: 0x50, B: 0xA0, PSW: 0x80},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  4,
				SFR:     map[uint8]uint8{ACC: 0x00, B: 0x32, PSW: 0x04},
			},
		},
		{
			Name: "DIV AB",
			Input: testMachineState{
				Code: code(0, 0x74, 0x05, 0x75, 0xF0, 0x03, 0x84),
			},
			Steps: 3,
			Output: testMachineState{
				Program: 6,
				Cycles:  7,
				SFR:     map[uint8]uint8{ACC: 0x01, B: 0x02, PSW: 0x01},
			},
		},
		{
			Name: "DIV AB (by zero)",
			Input: testMachineState{
				Code: code(0, 0x84),
				SFR:  map[uint8]uint8{ACC: 0x10, PSW: 0x80},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  4,
				SFR:     map[uint8]uint8{ACC: 0x10, B: 0x00, PSW: 0x05},
			},
		},
		{
			Name: "DA A",
			Input: testMachineState{
				Code: code(0, 0x24, 0x27, 0xD4),
				SFR:  map[uint8]uint8{ACC: 0x15},
			},
			Steps: 2,
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x42, PSW: 0x00},
			},
		},
		{
			Name: "DA A (carry)",
			Input: testMachineState{
				Code: code(0, 0x24, 0x01, 0xD4),
				SFR:  map[uint8]uint8{ACC: 0x99},
			},
			Steps: 2,
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x00, PSW: 0x80},
			},
		},
		{
			Name: "RLC A",
			Input: testMachineState{
				Code: code(0, 0x33),
				SFR:  map[uint8]uint8{ACC: 0x80},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x00, PSW: 0x80},
			},
		},
		{
			Name: "RRC A",
			Input: testMachineState{
				Code: code(0, 0x13),
				SFR:  map[uint8]uint8{ACC: 0x01, PSW: 0x80},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x80, PSW: 0x81},
			},
		},
		{
			Name: "RR A",
			Input: testMachineState{
				Code: code(0, 0x03),
				SFR:  map[uint8]uint8{ACC: 0x01},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x80, PSW: 0x01},
			},
		},
		{
			Name: "SWAP A",
			Input: testMachineState{
				Code: code(0, 0xC4),
				SFR:  map[uint8]uint8{ACC: 0x12},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0x21, PSW: 0x00},
			},
		},
		{
			Name: "CPL A",
			Input: testMachineState{
				Code: code(0, 0xF4),
				SFR:  map[uint8]uint8{ACC: 0x0F},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0xF0, PSW: 0x00},
			},
		},
		{
			Name: "XRL A,Rn",
			Input: testMachineState{
				Code: code(0, 0x6D),
				Data: map[uint8]uint8{0x05: 0x0F},
				SFR:  map[uint8]uint8{ACC: 0xFF},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{ACC: 0xF0, PSW: 0x00},
			},
		},
		{
			Name: "ORL direct,#data",
			Input: testMachineState{
				Code: code(0, 0x43, 0x30, 0xF0),
				Data: map[uint8]uint8{0x30: 0x0F},
			},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0xFF},
			},
		},
		{
			Name: "ANL direct,A",
			Input: testMachineState{
				Code: code(0, 0x52, 0x30),
				Data: map[uint8]uint8{0x30: 0x3C},
				SFR:  map[uint8]uint8{ACC: 0x0F},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				Data:    map[uint8]uint8{0x30: 0x0C},
			},
		},
		{
			Name:   "Reserved opcode",
			Input:  testMachineState{Code: code(0, 0xA5)},
			Output: testMachineState{Program: 1, Cycles: 0},
		},
	})
}

func TestDataTransfer(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "MOV @Ri,#data",
			Input: testMachineState{
				Code: code(0, 0x77, 0x99),
				Data: map[uint8]uint8{0x01: 0x40},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				Data:    map[uint8]uint8{0x40: 0x99},
			},
		},
		{
			Name: "MOV Rn,direct",
			Input: testMachineState{
				Code: code(0, 0xAF, 0x30),
				Data: map[uint8]uint8{0x30: 0x99},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				Data:    map[uint8]uint8{0x07: 0x99},
			},
		},
		{
			Name: "MOV direct,Rn",
			Input: testMachineState{
				Code: code(0, 0x8F, 0x30),
				Data: map[uint8]uint8{0x07: 0x66},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0x66},
			},
		},
		{
			Name: "MOV direct,direct",
			Input: testMachineState{
				Code: code(0, 0x85, 0x30, 0x40),
				Data: map[uint8]uint8{0x30: 0xAB},
			},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0xAB, 0x40: 0xAB},
			},
		},
		{
			Name:  "MOV direct,#data (ACC parity)",
			Input: testMachineState{Code: code(0, 0x75, 0xE0, 0x01)},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x01, PSW: 0x01},
			},
		},
		{
			Name:  "MOV direct,#data (IE mask)",
			Input: testMachineState{Code: code(0, 0x75, 0xA8, 0xFF)},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{IE: 0x9F},
			},
		},
		{
			Name:  "MOV direct,#data (IP mask)",
			Input: testMachineState{Code: code(0, 0x75, 0xB8, 0xFF)},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{IP: 0x1F},
			},
		},
		{
			Name: "XCH A,direct",
			Input: testMachineState{
				Code: code(0, 0xC5, 0x30),
				Data: map[uint8]uint8{0x30: 0x22},
				SFR:  map[uint8]uint8{ACC: 0x11},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				Data:    map[uint8]uint8{0x30: 0x11},
				SFR:     map[uint8]uint8{ACC: 0x22, PSW: 0x00},
			},
		},
		{
			Name: "XCH A,@Ri (parity)",
			Input: testMachineState{
				Code: code(0, 0xC6),
				Data: map[uint8]uint8{0x00: 0x50, 0x50: 0x01},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				Data:    map[uint8]uint8{0x50: 0x00},
				SFR:     map[uint8]uint8{ACC: 0x01, PSW: 0x01},
			},
		},
		{
			Name: "XCHD A,@Ri",
			Input: testMachineState{
				Code: code(0, 0xD6),
				Data: map[uint8]uint8{0x00: 0x50, 0x50: 0x34},
				SFR:  map[uint8]uint8{ACC: 0x12},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				Data:    map[uint8]uint8{0x50: 0x32},
				SFR:     map[uint8]uint8{ACC: 0x14, PSW: 0x00},
			},
		},
		{
			Name:  "MOV DPTR,#data16",
			Input: testMachineState{Code: code(0, 0x90, 0x12, 0x34)},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{DPH: 0x12, DPL: 0x34},
			},
		},
		{
			Name: "INC DPTR (wrap)",
			Input: testMachineState{
				Code: code(0, 0xA3),
				SFR:  map[uint8]uint8{DPH: 0xFF, DPL: 0xFF},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  2,
				SFR:     map[uint8]uint8{DPH: 0x00, DPL: 0x00},
			},
		},
		{
			Name: "MOVX @DPTR,A",
			Input: testMachineState{
				Code: code(0, 0xF0),
				SFR:  map[uint8]uint8{ACC: 0x55, DPH: 0x12, DPL: 0x34, P0: 0x00},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  2,
				SFR:     map[uint8]uint8{P0: 0xFF},
				XData:   map[uint16]uint8{0x1234: 0x55},
			},
		},
		{
			Name: "MOVX A,@Ri",
			Input: testMachineState{
				Code:  code(0, 0xE3),
				Data:  map[uint8]uint8{0x01: 0x34},
				SFR:   map[uint8]uint8{P2: 0x12},
				XData: map[uint16]uint8{0x1234: 0x81},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x81, PSW: 0x00},
			},
		},
		{
			Name: "MOVC A,@A+PC",
			Input: testMachineState{
				Code: code(0, 0x83, 0x00, 0xAB),
				SFR:  map[uint8]uint8{ACC: 0x01},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0xAB, PSW: 0x01},
			},
		},
		{
			Name: "MOVC A,@A+DPTR",
			Input: testMachineState{
				Code: map[uint16]uint8{0x0000: 0x93, 0x0102: 0x3C},
				SFR:  map[uint8]uint8{ACC: 0x02, DPH: 0x01, DPL: 0x00},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x3C, PSW: 0x00},
			},
		},
		{
			Name: "PUSH direct",
			Input: testMachineState{
				Code: code(0, 0xC0, 0x30),
				Data: map[uint8]uint8{0x30: 0x5A},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				Data:    map[uint8]uint8{0x08: 0x5A},
				SFR:     map[uint8]uint8{SP: 0x08},
			},
		},
		{
			Name: "POP direct",
			Input: testMachineState{
				Code: code(0, 0xD0, 0x30),
				Data: map[uint8]uint8{0x08: 0x77},
				SFR:  map[uint8]uint8{SP: 0x08},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0x77},
				SFR:     map[uint8]uint8{SP: 0x07},
			},
		},
		{
			Name: "PUSH ACC, POP B",
			Input: testMachineState{
				Code: code(0, 0xC0, 0xE0, 0xD0, 0xF0),
				SFR:  map[uint8]uint8{ACC: 0x42},
			},
			Steps: 2,
			Output: testMachineState{
				Program: 4,
				Cycles:  4,
				SFR:     map[uint8]uint8{B: 0x42, SP: 0x07},
			},
		},
	})
}

func TestBranch(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "SJMP (backward)",
			Input:  testMachineState{Code: code(0, 0x80, 0xFE)},
			Output: testMachineState{Program: 0x0000, Cycles: 2},
		},
		{
			Name:   "SJMP (forward)",
			Input:  testMachineState{Code: code(0, 0x80, 0x05)},
			Output: testMachineState{Program: 0x0007, Cycles: 2},
		},
		{
			Name:   "JZ (taken)",
			Input:  testMachineState{Code: code(0, 0x60, 0x10)},
			Output: testMachineState{Program: 0x0012, Cycles: 2},
		},
		{
			Name:   "JNZ (not taken)",
			Input:  testMachineState{Code: code(0, 0x70, 0x10)},
			Output: testMachineState{Program: 0x0002, Cycles: 2},
		},
		{
			Name:   "LJMP",
			Input:  testMachineState{Code: code(0, 0x02, 0x12, 0x34)},
			Output: testMachineState{Program: 0x1234, Cycles: 2},
		},
		{
			Name: "AJMP",
			Input: testMachineState{
				Program: 0x0800,
				Code:    code(0x0800, 0x21, 0x23),
			},
			Output: testMachineState{Program: 0x0923, Cycles: 2},
		},
		{
			Name: "ACALL",
			Input: testMachineState{
				Program: 0x0100,
				Code:    code(0x0100, 0x51, 0x00),
			},
			Output: testMachineState{
				Program: 0x0200,
				Cycles:  2,
				Data:    map[uint8]uint8{0x08: 0x02, 0x09: 0x01},
				SFR:     map[uint8]uint8{SP: 0x09},
			},
		},
		{
			Name:  "LCALL",
			Input: testMachineState{Code: code(0, 0x12, 0x30, 0x00)},
			Output: testMachineState{
				Program: 0x3000,
				Cycles:  2,
				Data:    map[uint8]uint8{0x08: 0x03, 0x09: 0x00},
				SFR:     map[uint8]uint8{SP: 0x09},
			},
		},
		{
			Name: "RET",
			Input: testMachineState{
				Code: code(0, 0x22),
				Data: map[uint8]uint8{0x08: 0x34, 0x09: 0x12},
				SFR:  map[uint8]uint8{SP: 0x09},
			},
			Output: testMachineState{
				Program: 0x1234,
				Cycles:  2,
				SFR:     map[uint8]uint8{SP: 0x07},
			},
		},
		{
			Name: "JMP @A+DPTR",
			Input: testMachineState{
				Code: code(0, 0x73),
				SFR:  map[uint8]uint8{ACC: 0x04, DPH: 0x10},
			},
			Output: testMachineState{Program: 0x1004, Cycles: 2},
		},
		{
			Name: "CJNE A,#data,rel (less)",
			Input: testMachineState{
				Code: code(0, 0xB4, 0x20, 0x05),
				SFR:  map[uint8]uint8{ACC: 0x10},
			},
			Output: testMachineState{
				Program: 0x0008,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x80},
			},
		},
		{
			Name: "CJNE A,#data,rel (equal)",
			Input: testMachineState{
				Code: code(0, 0xB4, 0x20, 0x05),
				SFR:  map[uint8]uint8{ACC: 0x20, PSW: 0x80},
			},
			Output: testMachineState{
				Program: 0x0003,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x00},
			},
		},
		{
			Name: "CJNE Rn,#data,rel",
			Input: testMachineState{
				Code: code(0, 0xB8, 0x30, 0x05),
				Data: map[uint8]uint8{0x00: 0x40},
			},
			Output: testMachineState{
				Program: 0x0008,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x00},
			},
		},
		{
			Name: "CJNE @Ri,#data,rel",
			Input: testMachineState{
				Code: code(0, 0xB7, 0x30, 0x05),
				Data: map[uint8]uint8{0x01: 0x40, 0x40: 0x30},
			},
			Output: testMachineState{Program: 0x0003, Cycles: 2},
		},
		{
			Name: "DJNZ Rn,rel (reaches zero)",
			Input: testMachineState{
				Code: code(0, 0xDA, 0xFE),
				Data: map[uint8]uint8{0x02: 0x01},
			},
			Output: testMachineState{
				Program: 0x0002,
				Cycles:  2,
				Data:    map[uint8]uint8{0x02: 0x00},
			},
		},
		{
			Name:  "DJNZ Rn,rel (wraps)",
			Input: testMachineState{Code: code(0, 0xDA, 0xFE)},
			Output: testMachineState{
				Program: 0x0000,
				Cycles:  2,
				Data:    map[uint8]uint8{0x02: 0xFF},
			},
		},
		{
			Name: "DJNZ direct,rel (reaches zero)",
			Input: testMachineState{
				Code: code(0, 0xD5, 0x30, 0xFD),
				Data: map[uint8]uint8{0x30: 0x01},
			},
			Output: testMachineState{
				Program: 0x0003,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0x00},
			},
		},
		{
			Name:  "DJNZ direct,rel (wraps)",
			Input: testMachineState{Code: code(0, 0xD5, 0x30, 0xFD)},
			Output: testMachineState{
				Program: 0x0000,
				Cycles:  2,
				Data:    map[uint8]uint8{0x30: 0xFF},
			},
		},
		{
			Name: "JBC bit,rel",
			Input: testMachineState{
				Code: code(0, 0x10, 0x00, 0x05),
				Data: map[uint8]uint8{0x20: 0x01},
			},
			Output: testMachineState{
				Program: 0x0008,
				Cycles:  2,
				Data:    map[uint8]uint8{0x20: 0x00},
			},
		},
		{
			Name: "JB bit,rel (SFR)",
			Input: testMachineState{
				Code: code(0, 0x20, 0xE7, 0x03),
				SFR:  map[uint8]uint8{ACC: 0x80},
			},
			Output: testMachineState{Program: 0x0006, Cycles: 2},
		},
		{
			Name:   "JNB bit,rel (SFR)",
			Input:  testMachineState{Code: code(0, 0x30, 0xE7, 0x03)},
			Output: testMachineState{Program: 0x0006, Cycles: 2},
		},
	})
}

func TestBoolean(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "SETB bit, MOV C,bit, MOV A,direct",
			Input: testMachineState{Code: code(0, 0xD2, 0x23, 0xA2, 0x23, 0xE5, 0x24)},
			Steps: 3,
			Output: testMachineState{
				Program: 6,
				Cycles:  3,
				Data:    map[uint8]uint8{0x24: 0x08},
				SFR:     map[uint8]uint8{ACC: 0x08, PSW: 0x81},
			},
		},
		{
			Name:  "CLR bit (SFR)",
			Input: testMachineState{Code: code(0, 0xC2, 0x90)},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{P1: 0xFE},
			},
		},
		{
			Name:  "CPL bit (SFR)",
			Input: testMachineState{Code: code(0, 0xB2, 0x97)},
			Output: testMachineState{
				Program: 2,
				Cycles:  1,
				SFR:     map[uint8]uint8{P1: 0x7F},
			},
		},
		{
			Name: "MOV bit,C",
			Input: testMachineState{
				Code: code(0, 0x92, 0x00),
				SFR:  map[uint8]uint8{PSW: 0x80},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				Data:    map[uint8]uint8{0x20: 0x01},
			},
		},
		{
			Name: "MOV bit,C (ACC parity)",
			Input: testMachineState{
				Code: code(0, 0x92, 0xE0),
				SFR:  map[uint8]uint8{PSW: 0x80},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				SFR:     map[uint8]uint8{ACC: 0x01, PSW: 0x81},
			},
		},
		{
			Name: "ANL C,bit",
			Input: testMachineState{
				Code: code(0, 0x82, 0x00),
				SFR:  map[uint8]uint8{PSW: 0x80},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x00},
			},
		},
		{
			Name: "ANL C,/bit",
			Input: testMachineState{
				Code: code(0, 0xB0, 0x00),
				SFR:  map[uint8]uint8{PSW: 0x80},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x80},
			},
		},
		{
			Name: "ORL C,bit",
			Input: testMachineState{
				Code: code(0, 0x72, 0xE0),
				SFR:  map[uint8]uint8{ACC: 0x01},
			},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x80},
			},
		},
		{
			Name:  "ORL C,/bit",
			Input: testMachineState{Code: code(0, 0xA0, 0x00)},
			Output: testMachineState{
				Program: 2,
				Cycles:  2,
				SFR:     map[uint8]uint8{PSW: 0x80},
			},
		},
		{
			Name:  "CPL C",
			Input: testMachineState{Code: code(0, 0xB3)},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{PSW: 0x80},
			},
		},
		{
			Name: "CLR C",
			Input: testMachineState{
				Code: code(0, 0xC3),
				SFR:  map[uint8]uint8{PSW: 0x80},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{PSW: 0x00},
			},
		},
	})
}

func TestTimers(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Timer 0 mode 1 (overflow)",
			Input: testMachineState{
				Code: code(0, 0x00, 0x00, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x01, TCON: 0x10, TH0: 0xFF, TL0: 0xFE,
				},
			},
			Steps: 3,
			Output: testMachineState{
				Program: 3,
				Cycles:  3,
				SFR:     map[uint8]uint8{TCON: 0x30, TH0: 0x00, TL0: 0x01},
			},
		},
		{
			Name: "Timer 0 mode 0 (overflow)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x00, TCON: 0x10, TH0: 0xFF, TL0: 0x1F,
				},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x30, TH0: 0x00, TL0: 0x00},
			},
		},
		{
			Name: "Timer 0 mode 2 (reload)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x02, TCON: 0x10, TH0: 0x80, TL0: 0xFF,
				},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x30, TH0: 0x80, TL0: 0x80},
			},
		},
		{
			Name: "Timer 0 (counter mode holds)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x05, TCON: 0x10, TL0: 0x10,
				},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x10, TH0: 0x00, TL0: 0x10},
			},
		},
		{
			Name: "Timer 0 (stopped)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{TMOD: 0x01, TL0: 0x10},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TL0: 0x10},
			},
		},
		{
			Name: "Timer 1 mode 1",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x10, TCON: 0x40, TL1: 0xFF,
				},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x40, TH1: 0x01, TL1: 0x00},
			},
		},
		{
			// TH0 counts under TR1 and raises TF1; timer 1 keeps running
			Name: "Timer 0 mode 3 (split)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					TMOD: 0x03, TCON: 0x50, TL0: 0xFF, TH0: 0xFF,
				},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR: map[uint8]uint8{
					TCON: 0xF0, TL0: 0x00, TH0: 0x00, TL1: 0x01, TH1: 0x00,
				},
			},
		},
		{
			Name: "Timer 0 mode 3 (timer 1 ignores TR1)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{TMOD: 0x13, TL1: 0xFF},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x00, TL1: 0x00, TH1: 0x01},
			},
		},
	})
}

func TestInterrupts(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "External 0 (edge)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x81, TCON: 0x03},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_EXT0,
				Cycles:      3,
				Interrupted: machine.INT_LOW,
				Data:        map[uint8]uint8{0x08: 0x01, 0x09: 0x00},
				SFR:         map[uint8]uint8{SP: 0x09, TCON: 0x01},
			},
		},
		{
			Name: "External 0 (level)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x81, P3: 0xFB},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_EXT0,
				Cycles:      3,
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{SP: 0x09, TCON: 0x02},
			},
		},
		{
			Name: "External 0 (level released)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x81, TCON: 0x02},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{SP: 0x07, TCON: 0x00},
			},
		},
		{
			Name: "Timer 0 overflow",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR: map[uint8]uint8{
					IE: 0x82, TMOD: 0x01, TCON: 0x10, TH0: 0xFF, TL0: 0xFF,
				},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_TIMER0,
				Cycles:      3,
				Interrupted: machine.INT_LOW,
				Data:        map[uint8]uint8{0x08: 0x01, 0x09: 0x00},
				SFR:         map[uint8]uint8{TCON: 0x10, TH0: 0x00, TL0: 0x00},
			},
		},
		{
			Name: "Timer 1 and serial",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x98, TCON: 0x80, SCON: 0x01},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_TIMER1,
				Cycles:      3,
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{TCON: 0x00, SCON: 0x01},
			},
		},
		{
			Name: "Serial (flags left set)",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x90, SCON: 0x02},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_SERIAL,
				Cycles:      3,
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{SCON: 0x02},
			},
		},
		{
			Name: "High priority goes first",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x83, IP: 0x02, TCON: 0x23},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_TIMER0,
				Cycles:      3,
				Interrupted: machine.INT_HIGH,
				SFR:         map[uint8]uint8{TCON: 0x03},
			},
		},
		{
			Name: "Disabled globally",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{IE: 0x01, TCON: 0x03},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{TCON: 0x03},
			},
		},
		{
			Name: "Blocked after IE write",
			Input: testMachineState{
				Code: code(0, 0x75, 0xA8, 0x81),
				SFR:  map[uint8]uint8{TCON: 0x03},
			},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{IE: 0x81, TCON: 0x03},
			},
		},
		{
			Name: "Taken one instruction after IE write",
			Input: testMachineState{
				Code: code(0, 0x75, 0xA8, 0x81, 0x00),
				SFR:  map[uint8]uint8{TCON: 0x03},
			},
			Steps: 2,
			Output: testMachineState{
				Program:     machine.VECTOR_EXT0,
				Cycles:      5,
				Interrupted: machine.INT_LOW,
				Data:        map[uint8]uint8{0x08: 0x04, 0x09: 0x00},
				SFR:         map[uint8]uint8{TCON: 0x01},
			},
		},
		{
			Name: "Low priority nesting held off",
			Input: testMachineState{
				Code:        code(0, 0x00),
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{IE: 0x81, TCON: 0x03},
			},
			Output: testMachineState{
				Program:     1,
				Cycles:      1,
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{TCON: 0x03},
			},
		},
		{
			Name: "High priority nests in low",
			Input: testMachineState{
				Code:        code(0, 0x00),
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{IE: 0x81, IP: 0x01, TCON: 0x03},
			},
			Output: testMachineState{
				Program:     machine.VECTOR_EXT0,
				Cycles:      3,
				Interrupted: machine.INT_LOW | machine.INT_HIGH,
				SFR:         map[uint8]uint8{TCON: 0x01},
			},
		},
		{
			Name: "RETI (high)",
			Input: testMachineState{
				Code:        code(0, 0x32),
				Interrupted: machine.INT_LOW | machine.INT_HIGH,
				Data:        map[uint8]uint8{0x08: 0x34, 0x09: 0x12},
				SFR:         map[uint8]uint8{SP: 0x09},
			},
			Output: testMachineState{
				Program:     0x1234,
				Cycles:      2,
				Interrupted: machine.INT_LOW,
				SFR:         map[uint8]uint8{SP: 0x07},
			},
		},
		{
			Name: "RETI (blocks pending)",
			Input: testMachineState{
				Code:        code(0, 0x32),
				Interrupted: machine.INT_LOW,
				Data:        map[uint8]uint8{0x08: 0x34, 0x09: 0x12},
				SFR:         map[uint8]uint8{SP: 0x09, IE: 0x81, TCON: 0x03},
			},
			Output: testMachineState{
				Program: 0x1234,
				Cycles:  2,
				SFR:     map[uint8]uint8{SP: 0x07, TCON: 0x03},
			},
		},
	})
}

func TestSerial(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:      "Transmit",
			SerialOut: "A",
			Input:     testMachineState{Code: code(0, 0x75, 0x99, 0x41)},
			Output: testMachineState{
				Program: 3,
				Cycles:  2,
				SFR:     map[uint8]uint8{SCON: 0x02, SBUF: 0x41},
			},
		},
		{
			Name:     "Receive",
			SerialIn: "Z",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{SCON: 0x10},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{SCON: 0x11, SBUF: 0x5A},
			},
		},
		{
			Name:     "Receive (RI pending)",
			SerialIn: "Z",
			Input: testMachineState{
				Code: code(0, 0x00),
				SFR:  map[uint8]uint8{SCON: 0x11},
			},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{SCON: 0x11, SBUF: 0x00},
			},
		},
		{
			Name:     "Receive (disabled)",
			SerialIn: "Z",
			Input:    testMachineState{Code: code(0, 0x00)},
			Output: testMachineState{
				Program: 1,
				Cycles:  1,
				SFR:     map[uint8]uint8{SCON: 0x00, SBUF: 0x00},
			},
		},
	})
}
