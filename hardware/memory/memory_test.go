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

package memory_test

import (
	"testing"

	"github.com/sevenhills/dragon32/hardware/memory"
	"github.com/sevenhills/dragon32/state"
	"github.com/sevenhills/dragon32/test"
)

func TestRAMBanks(t *testing.T) {
	r := memory.NewRAM(0x4000)

	// the same physical address lands in different bytes depending on which
	// row-address strobe is asserted
	r.Write(0x1234, false, 0xaa)
	r.Write(0x1234, true, 0x55)
	test.Equate(t, r.Read(0x1234, false), 0xaa)
	test.Equate(t, r.Read(0x1234, true), 0x55)

	// addresses wrap at the bank size
	test.Equate(t, r.Read(0x5234, false), 0xaa)

	r.Clear()
	test.Equate(t, r.Read(0x1234, false), 0x00)
}

func TestRAMState(t *testing.T) {
	r := memory.NewRAM(0x1000)
	r.Write(0x07ff, true, 0x42)

	w := state.NewWriter()
	r.WriteState(w)

	n := memory.NewRAM(0x1000)
	test.ExpectSuccess(t, n.ReadState(state.NewReader(w.Data())))
	test.Equate(t, n.Read(0x07ff, true), 0x42)

	// restoring into a differently sized RAM fails and leaves it untouched
	m := memory.NewRAM(0x4000)
	m.Write(0x0000, false, 0x99)
	test.ExpectFailure(t, m.ReadState(state.NewReader(w.Data())))
	test.Equate(t, m.Read(0x0000, false), 0x99)
}

func TestROM(t *testing.T) {
	img := make([]uint8, 0x2000)
	img[0x100] = 0x7e
	r := memory.NewROM("basic", img)
	test.Equate(t, r.Read(0x100), 0x7e)

	// a short image repeats through the select window
	short := memory.NewROM("cart", []uint8{0x01, 0x02})
	test.Equate(t, short.Read(0), 0x01)
	test.Equate(t, short.Read(3), 0x02)

	// an unpopulated ROM reads as a floating bus
	var none *memory.ROM
	test.Equate(t, none.Read(0), 0xff)
}
