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
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// AddCoprocessor attaches device to the bus at index. The first device
// registered at an index keeps it and later registrations are ignored; the
// return value reports whether device was attached.
func (mc *Machine) AddCoprocessor(index uint, device Coprocessor) bool {
	mc.assert(VALIDATE_NONE, index < MAX_COPROCESSOR, "coprocessor index out of range", uint8(index))

	for _, entry := range mc.coprocessors {
		if entry.index == index {
			return false
		}
	}

	mc.coprocessors = append(mc.coprocessors, coprocessorEntry{
		index:  index,
		device: device,
	})

	if mc.Logger != nil && mc.Logger.IsLevelEnabled(logrus.TraceLevel) {
		mc.Logger.WithFields(logrus.Fields{
			"index":  index,
			"device": fmt.Sprintf("%T", device),
		}).Trace("Coprocessor attached")
	}

	return true
}

// Coprocessors returns the attached devices in dispatch order.
func (mc *Machine) Coprocessors() []Coprocessor {
	devices := make([]Coprocessor, 0, len(mc.coprocessors))

	for _, entry := range mc.coprocessors {
		devices = append(devices, entry.device)
	}

	return devices
}

func (mc *Machine) updateCoprocessors() {
	for _, entry := range mc.coprocessors {
		mc.assert(VALIDATE_NONE, entry.device != nil, "coprocessor has no handler", uint8(entry.index))
		entry.device.Step(mc)
	}
}

// DescribeCoprocessors prints the state of every attached device.
func (mc *Machine) DescribeCoprocessors(w io.Writer) {
	for _, entry := range mc.coprocessors {
		describer, ok := entry.device.(Describer)
		mc.assert(VALIDATE_NONE, ok, "coprocessor cannot describe itself", uint8(entry.index))
		describer.Describe(w, mc)
	}
}

// CloseCoprocessors detaches every device, closing the ones that hold
// resources.
func (mc *Machine) CloseCoprocessors() error {
	var errs []error

	for _, entry := range mc.coprocessors {
		if closer, ok := entry.device.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}

	mc.coprocessors = nil

	return errors.Join(errs...)
}
