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

// Package hardware is the base package for the machine emulation. It and
// its sub-packages contain everything required for a headless emulation of
// the bus and timing core: the address multiplexer, the two peripheral
// interface adapters, the event scheduler that is the machine's clock, and
// the devices hanging off the ports.
//
// The Dragon type is the root of the emulation. Every CPU bus access enters
// through its Read and Write functions, which route the access through the
// multiplexer and advance machine time by the true cost of the cycle. The
// CPU itself sits behind the CPU interface; instruction decode is not this
// package's business.
package hardware
