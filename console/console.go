// This file is part of dragon32.
//
// dragon32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dragon32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dragon32.  If not, see <https://www.gnu.org/licenses/>.

// Package console is a wrapper for "github.com/pkg/term/termios". It puts
// the controlling terminal into cbreak mode so the run loop can poll for
// single keypresses without waiting for a newline.
package console

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Console is the controlling terminal in cbreak mode.
type Console struct {
	input *os.File

	// terminal attributes on entry, restored by CleanUp
	canAttr    unix.Termios
	cbreakAttr unix.Termios
}

// NewConsole is the preferred method of initialisation for the Console
// type. The terminal stays in cbreak mode until CleanUp is called.
func NewConsole() (*Console, error) {
	c := &Console{input: os.Stdin}

	if err := termios.Tcgetattr(c.input.Fd(), &c.canAttr); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	c.cbreakAttr = c.canAttr
	termios.Cfmakecbreak(&c.cbreakAttr)

	// polling reads: return immediately whether a key is waiting or not
	c.cbreakAttr.Cc[unix.VMIN] = 0
	c.cbreakAttr.Cc[unix.VTIME] = 0

	if err := termios.Tcsetattr(c.input.Fd(), termios.TCSANOW, &c.cbreakAttr); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	return c, nil
}

// ReadKey polls for a single keypress. The second return value is false if
// no key was waiting.
func (c *Console) ReadKey() (byte, bool) {
	var buf [1]byte
	n, _ := c.input.Read(buf[:])
	return buf[0], n == 1
}

// CleanUp restores the terminal attributes saved by NewConsole.
func (c *Console) CleanUp() {
	_ = termios.Tcsetattr(c.input.Fd(), termios.TCSANOW, &c.canAttr)
}
