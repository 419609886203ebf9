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

package encoding

import (
	"io"
)

// ReadBin clears image and copies raw bytes from reader into it, up to the
// size of the code space. It returns the number of bytes loaded.
func ReadBin(image *[1 << 16]uint8, reader io.Reader) (int, error) {
	*image = [1 << 16]uint8{}

	n, err := io.ReadFull(reader, image[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}

	return n, err
}

// WriteBin writes image up to and including its last non-zero byte.
func WriteBin(writer io.Writer, image *[1 << 16]uint8) error {
	last := lastNonZero(image)
	if last < 0 {
		return nil
	}

	_, err := writer.Write(image[:last+1])
	return err
}
