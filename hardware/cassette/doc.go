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

// Package cassette implements the tape deck attached to the second PIA.
// Tape images are WAV or MP3 recordings of real tapes. Replay is sample
// accurate with respect to the machine clock: a scheduler event fires once
// per sample period while the motor relay is closed, and the sign of each
// sample drives the cassette input line, with zero crossings delivered as
// interrupt edges.
//
// The deck can also record, capturing the level the CPU drives through the
// DAC bits of the port at the same sample rate.
package cassette
