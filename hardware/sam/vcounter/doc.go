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

// Package vcounter implements the SAM's video address generator: a chain of
// ripple counters that produces the VDG fetch address. The low four bits (the
// B3_0 counter) advance once per fetched byte; a carry out of B3_0 clocks the
// B4 counter; B4 clocks the eleven bit B15_5 counter, either directly or
// through one of the Y dividers, according to the V bits of the SAM control
// register. A similar arrangement of X dividers sits between the VDG clock
// and B3_0.
//
// The counters form a graph. Each counter names another counter as its clock
// input and counts on the falling edge of that counter's output bit. The
// graph is held as an array indexed by counter ID, with wiring expressed as
// IDs rather than pointers, so the whole thing serialises trivially.
//
// When the V bits change, the divider wiring changes. On the real chip some
// of these transitions momentarily connect a counter's clock input to ground.
// If the old input happened to be high the counter sees a falling edge and
// counts. Software relies on this (it is one way of fine-scrolling on
// machines with this chip family) so the glitch is reproduced here exactly:
// transitions between divide-by-12 and divide-by-3, and between divide-by-12
// and divide-by-2, pass through ground on the Y side; transitions between
// divide-by-3 and divide-by-2 pass through ground on the X side. All other
// transitions rewire directly.
package vcounter
