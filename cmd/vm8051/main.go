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
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/vm8051/pkg/coprocessor"
	"github.com/lassandro/vm8051/pkg/debugger"
	"github.com/lassandro/vm8051/pkg/encoding"
	"github.com/lassandro/vm8051/pkg/machine"
)

// coproFlag collects the -copro N=script.lua arguments.
type coproFlag []coproSpec

type coproSpec struct {
	Index uint
	Path  string
}

func (f *coproFlag) String() string {
	specs := make([]string, 0, len(*f))

	for _, spec := range *f {
		specs = append(specs, fmt.Sprintf("%d=%s", spec.Index, spec.Path))
	}

	return strings.Join(specs, ",")
}

func (f *coproFlag) Set(value string) error {
	index, path, ok := strings.Cut(value, "=")

	if !ok || path == "" {
		return errors.New("expected N=script.lua")
	}

	n, err := strconv.ParseUint(index, 10, 8)

	if err != nil || n >= machine.MAX_COPROCESSOR {
		return fmt.Errorf("invalid coprocessor index '%s'", index)
	}

	*f = append(*f, coproSpec{Index: uint(n), Path: path})
	return nil
}

var minimalvar bool
var binvar bool
var strictvar bool
var purevar bool
var runvar bool
var untilvar string
var cyclesvar uint64
var coprovar coproFlag
var norngvar bool
var levelvar string

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

func init() {
	flag.BoolVar(&minimalvar, "m", false, "Minimal status display")
	flag.BoolVar(&binvar, "bin", false, "Load the image as raw binary")
	flag.BoolVar(&strictvar, "strict", false, "Check register and indirect operands")
	flag.BoolVar(&purevar, "pure", false, "Also check direct and bit addresses")
	flag.BoolVar(&runvar, "run", false, "Run without the debugger, serial port on stdin/stdout")
	flag.StringVar(&untilvar, "until", "", "Stop -run when PC reaches this address")
	flag.Uint64Var(&cyclesvar, "cycles", 0, "Stop -run after this many cycles")
	flag.Var(&coprovar, "copro", "Attach a Lua coprocessor, N=script.lua")
	flag.BoolVar(&norngvar, "norng", false, "Do not attach the RNG coprocessor")
	flag.StringVar(&levelvar, "v", "info", "Log level")
	flag.Usage = func() {
		exe := filepath.Base(os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-m] input\n", exe)
		flag.PrintDefaults()
	}
}

func loadImage(mc *machine.Machine, path string) (int, error) {
	file, err := os.Open(path)

	if err != nil {
		return 0, err
	}

	defer file.Close()

	if binvar {
		return mc.LoadBin(file)
	}

	return mc.LoadHex(file)
}

func attachCoprocessors(mc *machine.Machine) error {
	if !norngvar {
		seed := uint64(time.Now().UnixNano())
		mc.AddCoprocessor(coprocessor.RNG_INDEX, coprocessor.NewRNG(seed))
	}

	for _, spec := range coprovar {
		co, err := coprocessor.LoadLua(spec.Path)

		if err != nil {
			return err
		}

		if !mc.AddCoprocessor(spec.Index, co) {
			co.Close()
			return fmt.Errorf("%s: coprocessor slot %d already in use", spec.Path, spec.Index)
		}
	}

	return nil
}

func vm8051() (status int) {
	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		return -1
	}

	level, err := logrus.ParseLevel(levelvar)

	if err != nil {
		log.Error(err)
		return 1
	}

	log.SetLevel(level)

	var mc machine.Machine
	mc.Logger = log

	switch {
	case purevar:
		mc.Validation = machine.VALIDATE_PURE
	case strictvar:
		mc.Validation = machine.VALIDATE_STRICT
	}

	if n, err := loadImage(&mc, args[0]); err != nil || n == 0 {
		if err != nil {
			log.WithError(err).Debug("Image load failed")
		}

		log.Errorf("%s: empty program", args[0])
		return 1
	}

	if err := attachCoprocessors(&mc); err != nil {
		log.Error(err)
		mc.CloseCoprocessors()
		return 1
	}

	defer func() {
		if err := mc.CloseCoprocessors(); err != nil {
			log.WithError(err).Warn("Coprocessor shutdown failed")
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			failure, ok := r.(*machine.AssertionError)

			if !ok {
				panic(r)
			}

			log.WithFields(logrus.Fields{
				"program": fmt.Sprintf("0x%04X", failure.Program),
				"opcode":  fmt.Sprintf("0x%02X", failure.Opcode),
			}).Error(failure.Message)

			status = 2
		}
	}()

	var dbg debugger.Debugger
	dbg.Logger = log

	c := make(chan os.Signal, 1)
	defer close(c)

	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			dbg.Break.Store(true)
		}
	}()

	if runvar {
		return runMachine(&dbg, &mc)
	}

	dbg.Attach(&mc)
	debugREPL(&dbg, &mc, bufio.NewReader(os.Stdin), os.Stdout, minimalvar)

	return 0
}

// runMachine runs mc with the serial port on the terminal until the -until
// address, the -cycles budget or an interrupt request.
func runMachine(dbg *debugger.Debugger, mc *machine.Machine) int {
	var until uint16
	hasUntil := untilvar != ""

	if hasUntil {
		var err error
		until, err = parseAddr(untilvar)

		if err != nil {
			log.WithError(err).Errorf("Invalid -until address '%s'", untilvar)
			return 1
		}
	}

	term := openTerm(dbg)
	defer term.Close()

	display := bufio.NewWriter(os.Stdout)
	defer display.Flush()

	mc.Devices = &machine.DeviceHandler{
		SerialIn:  term,
		SerialOut: display,
	}

	for {
		mc.Step()

		if hasUntil && mc.State.Program == until {
			break
		}

		if cyclesvar != 0 && mc.State.Cycles >= cyclesvar {
			break
		}

		if dbg.Break.Swap(false) {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"program": fmt.Sprintf("0x%04X", mc.State.Program),
		"cycles":  mc.State.Cycles,
	}).Info("Machine stopped")

	return 0
}

// parseAddr reads a hexadecimal address, with or without its 0x prefix.
func parseAddr(s string) (uint16, error) {
	if !strings.ContainsAny(s, "xX") {
		s = "0x" + s
	}

	return encoding.DecodeHex(s)
}

func main() {
	flag.Parse()
	os.Exit(vm8051())
}
