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

package vcounter_test

import (
	"testing"

	"github.com/sevenhills/dragon32/hardware/sam/vcounter"
	"github.com/sevenhills/dragon32/state"
	"github.com/sevenhills/dragon32/test"
)

func TestModeTable(t *testing.T) {
	// the full eight entries of the V lookup table
	expected := [8]vcounter.Mode{
		{YDiv: 12, XDiv: 1, Clear: vcounter.Clear4},
		{YDiv: 1, XDiv: 3, Clear: vcounter.Clear3},
		{YDiv: 3, XDiv: 1, Clear: vcounter.Clear4},
		{YDiv: 1, XDiv: 2, Clear: vcounter.Clear3},
		{YDiv: 2, XDiv: 1, Clear: vcounter.Clear4},
		{YDiv: 1, XDiv: 1, Clear: vcounter.Clear3},
		{YDiv: 1, XDiv: 1, Clear: vcounter.Clear4},
		{YDiv: 1, XDiv: 1, Clear: vcounter.ClearNone},
	}

	for v := 0; v < 8; v++ {
		m := vcounter.ModeTable[v]
		test.Equate(t, m.YDiv, expected[v].YDiv)
		test.Equate(t, m.XDiv, expected[v].XDiv)
		test.Equate(t, m.Clear == expected[v].Clear, true)
	}
}

func TestAdvanceBytes(t *testing.T) {
	ch := vcounter.NewChain()

	// a full row of 16 bytes must be split at the B3_0 wrap
	n, addr := ch.AdvanceBytes(10)
	test.Equate(t, n, 10)
	test.Equate(t, addr, 0x0000)

	n, addr = ch.AdvanceBytes(10)
	test.Equate(t, n, 6)
	test.Equate(t, addr, 0x000a)

	// B3_0 wrapped; B4 counted
	test.Equate(t, ch.Value(vcounter.B3_0), 0x00)
	test.Equate(t, ch.Value(vcounter.B4), 0x01)

	n, addr = ch.AdvanceBytes(1)
	test.Equate(t, n, 1)
	test.Equate(t, addr, 0x0010)
}

func TestCarryIntoB15_5(t *testing.T) {
	ch := vcounter.NewChain()
	ch.Reconfigure(5) // Y divide by one: B15_5 clocked directly from B4

	// 32 bytes wraps B4 once; its falling edge carries into B15_5
	for i := 0; i < 4; i++ {
		ch.AdvanceBytes(8)
	}
	test.Equate(t, ch.Value(vcounter.B4), 0x00)
	test.Equate(t, ch.Value(vcounter.B15_5), 0x01)
	test.Equate(t, ch.Address(), 0x0020)
}

func TestHorizontalSyncClear4(t *testing.T) {
	ch := vcounter.NewChain() // V=0 is a CLR4 mode

	// B3_0=9, B4=1
	ch.AdvanceBytes(16)
	ch.AdvanceBytes(9)
	test.Equate(t, ch.Value(vcounter.B3_0), 0x09)
	test.Equate(t, ch.Value(vcounter.B4), 0x01)

	y := ch.Value(vcounter.YDIV3)

	ch.HorizontalSync()
	test.Equate(t, ch.Value(vcounter.B3_0), 0x00)
	test.Equate(t, ch.Value(vcounter.B4), 0x00)

	// clearing B4 drops its output, which clocks the Y dividers
	test.Equate(t, ch.Value(vcounter.YDIV3), (y+1)%3)
}

func TestHorizontalSyncClearNone(t *testing.T) {
	ch := vcounter.NewChain()
	ch.Reconfigure(7) // DMA mode: no clear

	ch.AdvanceBytes(16)
	ch.AdvanceBytes(9)

	ch.HorizontalSync()
	test.Equate(t, ch.Value(vcounter.B3_0), 0x09)
	test.Equate(t, ch.Value(vcounter.B4), 0x01)
}

func TestVerticalSync(t *testing.T) {
	ch := vcounter.NewChain()

	ch.AdvanceBytes(16)
	ch.AdvanceBytes(5)

	ch.VerticalSync(0x260)
	test.Equate(t, ch.Value(vcounter.B3_0), 0x00)
	test.Equate(t, ch.Value(vcounter.B4), 0x00)
	test.Equate(t, ch.Value(vcounter.B15_5), 0x260)
	test.Equate(t, ch.Address(), 0x4c00)
}

func TestRewireGlitch(t *testing.T) {
	ch := vcounter.NewChain() // V=0: Y divide by 12, B15_5 wired to YDIV4

	// walk YDIV4 to a value where its output bit is high: two falling edges
	// of YDIV3, ie. six falling edges of B4, ie. 96 bytes advanced twice over
	for i := 0; i < 12; i++ {
		ch.AdvanceBytes(16)
	}
	test.Equate(t, ch.Value(vcounter.YDIV4), 0x02)
	b15 := ch.Value(vcounter.B15_5)

	// divide-by-12 to divide-by-2 passes through ground: with YDIV4's output
	// high, B15_5 sees a falling edge and counts. this is the glitch
	ch.Reconfigure(4)
	test.Equate(t, ch.Input(vcounter.B15_5) == vcounter.YDIV2, true)
	test.Equate(t, ch.Value(vcounter.B15_5), b15+1)
}

func TestRewireDirect(t *testing.T) {
	ch := vcounter.NewChain()

	for i := 0; i < 12; i++ {
		ch.AdvanceBytes(16)
	}
	test.Equate(t, ch.Value(vcounter.YDIV4), 0x02)
	b15 := ch.Value(vcounter.B15_5)

	// divide-by-12 to divide-by-1 rewires directly. B4's output is low at
	// this point so no edge is seen
	ch.Reconfigure(5)
	test.Equate(t, ch.Input(vcounter.B15_5) == vcounter.B4, true)
	test.Equate(t, ch.Value(vcounter.B15_5), b15)
}

func TestXRewireGlitch(t *testing.T) {
	ch := vcounter.NewChain()
	ch.Reconfigure(1) // X divide by 3

	b30 := ch.Value(vcounter.B3_0)

	// X divide-by-3 to divide-by-2 passes through ground. XDIV3 output is
	// low at power-on so no edge results; the wiring still ends on XDIV2
	ch.Reconfigure(3)
	test.Equate(t, ch.Input(vcounter.B3_0) == vcounter.XDIV2, true)
	test.Equate(t, ch.Value(vcounter.B3_0), b30)
}

func TestStateRoundTrip(t *testing.T) {
	ch := vcounter.NewChain()
	ch.Reconfigure(2)
	ch.AdvanceBytes(16)
	ch.AdvanceBytes(7)

	w := state.NewWriter()
	ch.WriteState(w)

	n := vcounter.NewChain()
	test.ExpectSuccess(t, n.ReadState(state.NewReader(w.Data())))

	for id := vcounter.ID(0); id < vcounter.NumCounters; id++ {
		test.Equate(t, n.Value(id), ch.Value(id))
		test.Equate(t, n.Input(id) == ch.Input(id), true)
	}
	test.Equate(t, n.Address(), ch.Address())

	// truncated stream must fail and leave the target untouched
	spoiled := vcounter.NewChain()
	test.ExpectFailure(t, spoiled.ReadState(state.NewReader(w.Data()[:10])))
	test.Equate(t, spoiled.Value(vcounter.B3_0), 0x00)
}
