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

// Package sam implements the synchronous address multiplexer, the chip that
// sits between the CPU and everything else in the machine. Every CPU bus
// cycle passes through the MemCycle() function, which does four jobs:
//
// 1. Classify the address to a source: RAM, one of the ROM selects, one of
// the I/O selects, or nothing. Classification depends on the map type bit
// and, for RAM, on the memory geometry bits of the control register.
//
// 2. Translate the address. For RAM sources the physical address is built
// from the row and column masks of the current geometry, plus the RAS1 bank
// bit for the small-RAM geometries and the page bit for the 64K geometry in
// the ROM/RAM map.
//
// 3. Cost the cycle. The CPU clock is derived from the same crystal as the
// video clock and the SAM can run it at two rates. Moving between rates
// costs a fractional cycle and the chip owes or collects the difference on
// the way out; see the cost constants. Address-dependent rate (R=1) runs
// fast for anything that isn't RAM.
//
// 4. Advance the machine's virtual clock by the cost and let due events
// fire, then report the completed cycle to the CPU.
//
// Writes to the top of the I/O page land in the SAM's own control register.
// Each even/odd address pair clears/sets one of the sixteen register bits, so
// the data bus value is irrelevant; only the address matters. Writes that can
// affect the picture mid-frame are reported to the video collaborator before
// the register changes, so it can bring the display up to date under the old
// mode first.
//
// The SAM also owns the video address counter chain (see the vcounter
// package); the V and F fields of the control register configure it and the
// VDG collaborators drive it through the VDGBytes, HorizontalSync and
// VerticalSync functions.
package sam
