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

// Package pia implements the machine's two peripheral interface adapters.
// Each PIA has two eight bit ports. A port is an independent little state
// machine: a six bit control register, a data direction register, an output
// register, and an interrupt latch fed by an edge-sensitive control line.
//
// The two ports of a chip share one interrupt line, the OR of their
// individual contributions. Chip 0 drives the CPU's IRQ line, chip 1 the
// FIRQ line. A port only contributes while its interrupt enable bit is set
// and its latch is pending; reading the port's data register clears both the
// latch and the contribution, which is how machine code acknowledges an
// interrupt.
//
// Every port drives exactly one peripheral through its update hook: the
// keyboard matrix, the cassette, the sound multiplexer or the video mode
// lines. The hook fires on any data-side write and receives the externally
// visible level of the port - output bits where the direction register says
// output, the last seen input level elsewhere, the whole thing masked by the
// lines that are tied low on the board.
package pia
