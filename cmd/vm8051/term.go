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
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/lassandro/vm8051/pkg/debugger"
)

const ctrlC = 0x03

// terminal feeds stdin to the serial receiver without blocking the machine.
// A tty is switched to raw mode, where ^C requests a break.
type terminal struct {
	fd      int
	restore *term.State
	dbg     *debugger.Debugger
	buf     [1]byte
	closed  bool
}

func openTerm(dbg *debugger.Debugger) *terminal {
	t := &terminal{fd: int(os.Stdin.Fd()), dbg: dbg}

	if term.IsTerminal(t.fd) {
		state, err := term.MakeRaw(t.fd)

		if err != nil {
			log.WithError(err).Warn("Unable to enter raw mode")
		} else {
			t.restore = state
		}
	}

	return t
}

// ReadByte returns io.EOF whenever no byte is ready.
func (t *terminal) ReadByte() (byte, error) {
	if t.closed {
		return 0, io.EOF
	}

	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)

	if err == unix.EINTR || n == 0 {
		return 0, io.EOF
	} else if err != nil {
		return 0, err
	}

	if fds[0].Revents&(unix.POLLIN|unix.POLLHUP) == 0 {
		return 0, io.EOF
	}

	n, err = unix.Read(t.fd, t.buf[:])

	if err == unix.EAGAIN || err == unix.EINTR {
		return 0, io.EOF
	} else if err != nil {
		return 0, err
	}

	if n == 0 {
		t.closed = true
		return 0, io.EOF
	}

	if t.restore != nil && t.buf[0] == ctrlC {
		t.dbg.Break.Store(true)
		return 0, io.EOF
	}

	return t.buf[0], nil
}

func (t *terminal) Close() {
	if t.restore == nil {
		return
	}

	if err := term.Restore(t.fd, t.restore); err != nil {
		panic(err)
	}
}
