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

package pia_test

import (
	"testing"

	"github.com/sevenhills/dragon32/hardware/pia"
	"github.com/sevenhills/dragon32/state"
	"github.com/sevenhills/dragon32/test"
)

func TestInterruptGating(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	// interrupt disabled: matching edges latch but never raise the line
	p.A.WriteControl(0x02) // active rising, not enabled
	for i := 0; i < 5; i++ {
		p.A.SignalEdge(true)
	}
	test.Equate(t, p.Line(), false)
	test.Equate(t, p.A.ReadControl()&0x80, 0x80)

	// enabling interrupts with the latch pending raises the line at once
	p.A.WriteControl(0x03)
	test.Equate(t, p.Line(), true)

	// a further matching edge keeps it raised
	p.A.SignalEdge(true)
	test.Equate(t, p.Line(), true)
}

func TestEdgePolarity(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	// active falling (bit 1 clear): rising edges are ignored
	p.A.WriteControl(0x01)
	p.A.SignalEdge(true)
	test.Equate(t, p.Line(), false)

	p.A.SignalEdge(false)
	test.Equate(t, p.Line(), true)
}

func TestSharedLine(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	var transitions []bool
	p.SetLineHook(func(v bool) { transitions = append(transitions, v) })

	p.A.WriteControl(0x07)
	p.B.WriteControl(0x07)

	// the line is the OR of both ports' contributions
	p.A.SignalEdge(true)
	p.B.SignalEdge(true)
	test.Equate(t, p.Line(), true)

	// acknowledging one port leaves the line held by the other
	p.A.ReadData()
	test.Equate(t, p.Line(), true)

	p.B.ReadData()
	test.Equate(t, p.Line(), false)

	// the hook saw exactly one rise and one fall
	test.Equate(t, len(transitions), 2)
	test.Equate(t, transitions[0], true)
	test.Equate(t, transitions[1], false)
}

func TestReadDataMix(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	// output register 0xa5 behind direction mask 0x0f, input lines high:
	// the CPU reads input on the input bits and the output register on the
	// output bits
	p.A.WriteControl(0x00)
	p.A.WriteData(0xff) // direction: all output
	p.A.WriteControl(0x04)
	p.A.WriteData(0xa5)
	p.A.WriteControl(0x00)
	p.A.WriteData(0x0f) // direction: low nibble output
	p.A.WriteControl(0x04)
	p.A.SetInput(0xff)

	test.Equate(t, p.A.ReadData(), 0xf5)
}

func TestReadDataAcknowledges(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	p.A.WriteControl(0x07)
	p.A.SignalEdge(true)
	test.Equate(t, p.Line(), true)
	test.Equate(t, p.A.ReadControl()&0x80, 0x80)

	p.A.ReadData()
	test.Equate(t, p.Line(), false)
	test.Equate(t, p.A.ReadControl()&0x80, 0x00)

	// with the data register deselected a read returns the direction
	// register and does not acknowledge
	p.A.WriteControl(0x03)
	p.A.SignalEdge(true)
	p.A.WriteControl(0x01)
	test.Equate(t, p.A.ReadData(), 0x00)
	test.Equate(t, p.Line(), true)
}

func TestTiedLow(t *testing.T) {
	// port A of the first PIA has its top bit tied low on the board
	p := pia.NewPIA("pia0", 0x7f, 0xff)

	p.A.WriteControl(0x04)
	p.A.SetInput(0xff)
	test.Equate(t, p.A.ReadData(), 0x7f)
	test.Equate(t, p.A.Output(), 0x7f)
}

func TestHook(t *testing.T) {
	p := pia.NewPIA("pia1", 0xff, 0xff)

	var seen []uint8
	p.B.SetHook(func(v uint8) { seen = append(seen, v) })

	p.B.WriteControl(0x00)
	p.B.WriteData(0xf0) // direction
	p.B.WriteControl(0x04)
	p.B.SetInput(0x0a)
	p.B.WriteData(0x35)

	// one hook call per data-side write, carrying the visible port level:
	// output bits from the output register, input bits from the pins
	test.Equate(t, len(seen), 2)
	test.Equate(t, seen[1], 0x3a)
}

func TestRegisterWindow(t *testing.T) {
	p := pia.NewPIA("pia0", 0xff, 0xff)

	p.WriteRegister(0xff01, 0x04)
	p.WriteRegister(0xff00, 0x55)
	test.Equate(t, p.A.ReadControl(), 0x04)

	// the window mirrors every four bytes
	test.Equate(t, p.ReadRegister(0xff05), 0x04)
}

func TestStateRoundTrip(t *testing.T) {
	p := pia.NewPIA("pia0", 0x7f, 0xff)

	p.A.WriteControl(0x03)
	p.A.SignalEdge(true)
	p.B.WriteControl(0x04)
	p.B.WriteData(0x12)

	w := state.NewWriter()
	p.WriteState(w)

	n := pia.NewPIA("pia0", 0x7f, 0xff)
	test.ExpectSuccess(t, n.ReadState(state.NewReader(w.Data())))

	test.Equate(t, n.Line(), p.Line())
	test.Equate(t, n.A.ReadControl(), p.A.ReadControl())
	test.Equate(t, n.B.Output(), p.B.Output())

	// a truncated stream fails and leaves the target untouched
	spoiled := pia.NewPIA("pia0", 0x7f, 0xff)
	test.ExpectFailure(t, spoiled.ReadState(state.NewReader(w.Data()[:6])))
	test.Equate(t, spoiled.A.ReadControl(), 0x00)
}
