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
	"errors"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a hexidecimal string that must fit in a single byte
func DecodeByte(s string) (uint8, error) {
	result, err := DecodeHex(s)

	if err != nil {
		return 0, err
	}

	if result > 0xFF {
		return 0, errors.New("Hex value out of byte range")
	}

	return uint8(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (uint64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	return strconv.ParseUint(s, 10, 64)
}

// Rel8 applies a signed 8-bit displacement to base, wrapping at 16 bits.
func Rel8(base uint16, rel uint8) uint16 {
	return base + uint16(int8(rel))
}
