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

// Package clocks defines the constant values that define the speed of the
// clocks in the machine. Everything on the board divides down from the one
// 14.31818MHz reference crystal, which is also the unit of the event
// scheduler's tick.
package clocks

// frequency of the reference crystal in Hz.
const CrystalHz = 14318180.0

// scanline and field geometry in crystal ticks. a scanline is 57 character
// fetches of 16 ticks each.
const (
	TicksPerLine  = 912
	LinesPerField = 262
	TicksPerField = TicksPerLine * LinesPerField
)

// nominal field rate in Hz.
const FieldHz = CrystalHz / TicksPerField
