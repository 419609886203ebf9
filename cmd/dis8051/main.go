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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/vm8051/pkg/disasm"
	"github.com/lassandro/vm8051/pkg/encoding"
	"github.com/lassandro/vm8051/pkg/machine"
)

var helpvar bool
var binvar bool
var disasmvar bool
var outvar string

const usage = "dis8051 [-bin] [-d] [-o out.hex|out.bin] filename"

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&binvar, "bin", false, "Reads the input as a raw binary image")
	flag.BoolVar(&disasmvar, "d", false, "Disassembles the image to stdout")
	flag.StringVar(
		&outvar, "o", "",
		"Converts the image, the output format follows the extension "+
			"(.hex or .bin)",
	)
}

// disassemble lists code[start:end] one instruction per line.
func disassemble(w io.Writer, code *[machine.MEMSPACE_CODE]uint8, start int, end int) error {
	out := bufio.NewWriter(w)

	for addr := start; addr < end; {
		inst := machine.Decode(code, uint16(addr))

		if _, err := fmt.Fprintf(
			out, "%04X:  %-8s%s\n",
			addr, disasm.Opcode(inst), strings.TrimRight(disasm.Op(inst, addr), " "),
		); err != nil {
			return err
		}

		addr += int(inst.Len)
	}

	return out.Flush()
}

// extent returns the address following the last non-zero byte of code.
func extent(code *[machine.MEMSPACE_CODE]uint8) int {
	for i := len(code) - 1; i >= 0; i-- {
		if code[i] != 0 {
			return i + 1
		}
	}

	return 0
}

func convert(code *[machine.MEMSPACE_CODE]uint8, path string) error {
	file, err := os.Create(path)

	if err != nil {
		return err
	}

	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihx":
		err = encoding.WriteHex(file, code)
	case ".bin":
		err = encoding.WriteBin(file, code)
	default:
		err = fmt.Errorf("%s: unknown output format", path)
	}

	if err != nil {
		return err
	}

	return file.Close()
}

func dis8051() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 || (!disasmvar && outvar == "") {
		log.Error(usage)
		return 1
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Error(err)
		return 1
	}

	defer file.Close()

	var code [machine.MEMSPACE_CODE]uint8

	if binvar {
		_, err = encoding.ReadBin(&code, file)
	} else {
		_, err = encoding.ReadHex(&code, file)
	}

	if err != nil {
		log.WithField("file", args[0]).Error(err)
		return 1
	}

	if disasmvar {
		if err := disassemble(os.Stdout, &code, 0, extent(&code)); err != nil {
			log.Error(err)
			return 1
		}
	}

	if outvar != "" {
		if err := convert(&code, outvar); err != nil {
			log.WithField("file", outvar).Error("Error writing output file")
			log.Error(err)
			return 1
		}
	}

	return 0
}

func main() {
	flag.Parse()
	os.Exit(dis8051())
}
