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
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	RECORD_DATA  = 0x00
	RECORD_EOF   = 0x01
	RECORD_WIDTH = 16
)

var (
	ErrInvalidRecord = errors.New("invalid hex record")
	ErrChecksum      = errors.New("hex record checksum mismatch")
	ErrRecordType    = errors.New("unsupported hex record type")
)

// ReadHex clears image and loads the Intel-HEX records read from reader into
// it. It returns the number of data bytes loaded. Reading stops at the first
// end-of-file record.
func ReadHex(image *[1 << 16]uint8, reader io.Reader) (int, error) {
	*image = [1 << 16]uint8{}

	scanner := bufio.NewScanner(reader)
	count := 0
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}

		if text[0] != ':' {
			return count, fmt.Errorf("line %d: %w", line, ErrInvalidRecord)
		}

		record, err := hex.DecodeString(text[1:])
		if err != nil || len(record) < 5 || len(record) != int(record[0])+5 {
			return count, fmt.Errorf("line %d: %w", line, ErrInvalidRecord)
		}

		var sum uint8
		for _, b := range record {
			sum += b
		}

		if sum != 0 {
			return count, fmt.Errorf("line %d: %w", line, ErrChecksum)
		}

		addr := uint16(record[1])<<8 | uint16(record[2])
		data := record[4 : len(record)-1]

		switch record[3] {
		case RECORD_DATA:
			for i, b := range data {
				image[addr+uint16(i)] = b
			}
			count += len(data)

		case RECORD_EOF:
			return count, nil

		default:
			return count, fmt.Errorf("line %d: %w", line, ErrRecordType)
		}
	}

	return count, scanner.Err()
}

// WriteHex writes image as 16-byte Intel-HEX data records followed by an
// end-of-file record. Output ends at the last non-zero byte and records that
// hold only zeroes are left out.
func WriteHex(writer io.Writer, image *[1 << 16]uint8) error {
	out := bufio.NewWriter(writer)
	last := lastNonZero(image)

	for base := 0; base <= last; base += RECORD_WIDTH {
		end := min(base+RECORD_WIDTH, last+1)
		data := image[base:end]

		if isZero(data) {
			continue
		}

		if err := writeRecord(out, uint16(base), RECORD_DATA, data); err != nil {
			return err
		}
	}

	if err := writeRecord(out, 0x0000, RECORD_EOF, nil); err != nil {
		return err
	}

	return out.Flush()
}

func writeRecord(out *bufio.Writer, addr uint16, kind uint8, data []uint8) error {
	record := make([]uint8, 0, len(data)+5)
	record = append(record, uint8(len(data)), uint8(addr>>8), uint8(addr), kind)
	record = append(record, data...)

	var sum uint8
	for _, b := range record {
		sum += b
	}

	record = append(record, -sum)

	_, err := fmt.Fprintf(out, ":%s\n", strings.ToUpper(hex.EncodeToString(record)))
	return err
}

func lastNonZero(image *[1 << 16]uint8) int {
	for i := len(image) - 1; i >= 0; i-- {
		if image[i] != 0 {
			return i
		}
	}

	return -1
}

func isZero(data []uint8) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}

	return true
}
