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

package coprocessor

import (
	"errors"
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/lassandro/vm8051/pkg/machine"
)

var ErrNoStep = errors.New("script defines no step function")

// Lua is a coprocessor driven by a Lua script. The script must define a
// global step() function, called once per machine step, and may define
// describe(), whose return value is printed in the status display.
//
// Scripts reach the machine through these globals:
//
//	cycles()                machine cycle counter
//	sfr(a) / set_sfr(a, v)  SFR space, a in 0x80-0xFF; set_sfr has the
//	                        side effects of a direct write
//	idata(a) / set_idata(a, v)
//	xdata(a) / set_xdata(a, v)
//	code(a)
type Lua struct {
	Name string

	state *lua.LState
	mc    *machine.Machine
}

// LoadLua runs the script at path and returns the coprocessor it defines.
func LoadLua(path string) (*Lua, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	return NewLua(path, file)
}

// NewLua runs the script read from reader and returns the coprocessor it
// defines. name is used in error messages and the status display.
func NewLua(name string, reader io.Reader) (*Lua, error) {
	co := &Lua{Name: name, state: lua.NewState()}
	co.register()

	fn, err := co.state.Load(reader, name)
	if err == nil {
		co.state.Push(fn)
		err = co.state.PCall(0, lua.MultRet, nil)
	}

	if err != nil {
		co.state.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if co.state.GetGlobal("step").Type() != lua.LTFunction {
		co.state.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoStep)
	}

	return co, nil
}

func (co *Lua) register() {
	functions := map[string]lua.LGFunction{
		"cycles": func(L *lua.LState) int {
			L.Push(lua.LNumber(co.mc.State.Cycles))
			return 1
		},
		"sfr": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x80, 0xFF)
			L.Push(lua.LNumber(co.mc.State.SFRByte(uint8(addr))))
			return 1
		},
		"set_sfr": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x80, 0xFF)
			value := checkRange(L, 2, 0x00, 0xFF)
			co.mc.WriteDirect(uint8(addr), uint8(value))
			return 0
		},
		"idata": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x00, 0xFF)
			L.Push(lua.LNumber(co.mc.State.Data[addr]))
			return 1
		},
		"set_idata": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x00, 0xFF)
			value := checkRange(L, 2, 0x00, 0xFF)
			co.mc.State.Data[addr] = uint8(value)
			return 0
		},
		"xdata": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x0000, 0xFFFF)
			L.Push(lua.LNumber(co.mc.State.XData[addr]))
			return 1
		},
		"set_xdata": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x0000, 0xFFFF)
			value := checkRange(L, 2, 0x00, 0xFF)
			co.mc.State.XData[addr] = uint8(value)
			return 0
		},
		"code": func(L *lua.LState) int {
			addr := checkRange(L, 1, 0x0000, 0xFFFF)
			L.Push(lua.LNumber(co.mc.State.Code[addr]))
			return 1
		},
	}

	for name, fn := range functions {
		co.state.SetGlobal(name, co.state.NewFunction(fn))
	}
}

func checkRange(L *lua.LState, n int, lo int, hi int) int {
	value := L.CheckInt(n)

	if value < lo || value > hi {
		L.ArgError(n, fmt.Sprintf("%#x out of range [%#x, %#x]", value, lo, hi))
	}

	return value
}

// Step runs the script step function. Script errors are device failures
// and panic.
func (co *Lua) Step(mc *machine.Machine) {
	co.mc = mc

	err := co.state.CallByParam(lua.P{
		Fn:      co.state.GetGlobal("step"),
		NRet:    0,
		Protect: true,
	})

	if err != nil {
		panic(fmt.Errorf("%s: %w", co.Name, err))
	}
}

func (co *Lua) Describe(w io.Writer, mc *machine.Machine) {
	co.mc = mc

	describe := co.state.GetGlobal("describe")
	if describe.Type() != lua.LTFunction {
		fmt.Fprintf(w, "LUA  : %s\n", co.Name)
		return
	}

	err := co.state.CallByParam(lua.P{
		Fn:      describe,
		NRet:    1,
		Protect: true,
	})

	if err != nil {
		fmt.Fprintf(w, "LUA  : %s: %v\n", co.Name, err)
		return
	}

	result := co.state.Get(-1)
	co.state.Pop(1)

	fmt.Fprintln(w, lua.LVAsString(result))
}

func (co *Lua) Close() error {
	co.state.Close()
	return nil
}
