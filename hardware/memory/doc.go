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

// Package memory implements the storage devices on the far side of the
// address multiplexer. The multiplexer does not access these directly; it
// classifies each bus cycle into a source code and a translated physical
// address, and the machine routes the access to the selected RAM bank or
// ROM.
//
// RAM is organised as two banks, one per row-address strobe, matching how
// 4K and 16K parts are fitted in pairs on the real board. ROMs cover 8K
// windows each and read as 0xff when unpopulated.
package memory
