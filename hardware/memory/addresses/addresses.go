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

// Package addresses enumerates the fixed points of the machine's memory map.
// These are part of the hardware-compatible address decoding and must not
// change: both original software and the snapshot format depend on them.
package addresses

// The I/O page occupies the top 256 bytes of the address map.
const IOPage uint16 = 0xff00

// PIA register windows. Each PIA exposes four registers, mirrored through
// its 32 byte select region: side A data/direction, side A control, side B
// data/direction, side B control.
const (
	PIA0Data    uint16 = 0xff00
	PIA0Control uint16 = 0xff01
	PIA1Data    uint16 = 0xff20
	PIA1Control uint16 = 0xff21
)

// The SAM control register occupies a 32 byte window. Each even/odd address
// pair clears/sets one register bit; the value on the data bus is ignored.
const (
	SAMControl    uint16 = 0xffc0
	SAMControlTop uint16 = 0xffdf
)

// CPU vectors, fetched through ROM2 whatever the map type.
const (
	VectorSWI3  uint16 = 0xfff2
	VectorSWI2  uint16 = 0xfff4
	VectorFIRQ  uint16 = 0xfff6
	VectorIRQ   uint16 = 0xfff8
	VectorSWI   uint16 = 0xfffa
	VectorNMI   uint16 = 0xfffc
	VectorReset uint16 = 0xfffe
)
