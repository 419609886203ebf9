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
	"io"
)

// receiveSerial latches the next host byte into SBUF once the receiver is
// enabled and the program has consumed the previous byte.
func (mc *Machine) receiveSerial() {
	if mc.Devices == nil || mc.Devices.SerialIn == nil {
		return
	}

	if !mc.State.REN() || mc.State.RI() {
		return
	}

	value, err := mc.Devices.SerialIn.ReadByte()

	if err == io.EOF {
		return
	} else if err != nil {
		panic(err)
	}

	mc.State.SetSFRByte(SFR_SBUF, value)
	mc.State.setSFRFlag(SFR_SCON, SCON_RI, true)
}

// transmitSerial sends SBUF to the host when TI rose during the last
// operation.
func (mc *Machine) transmitSerial(wasTI bool) {
	if wasTI || !mc.State.TI() {
		return
	}

	if mc.Devices == nil || mc.Devices.SerialOut == nil {
		return
	}

	if err := mc.Devices.SerialOut.WriteByte(mc.State.SFRByte(SFR_SBUF)); err != nil {
		panic(err)
	}

	if flusher, ok := mc.Devices.SerialOut.(interface{ Flush() error }); ok {
		if err := flusher.Flush(); err != nil {
			panic(err)
		}
	}
}
