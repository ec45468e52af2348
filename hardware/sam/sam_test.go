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

package sam_test

import (
	"testing"

	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/hardware/sam"
	"github.com/sevenhills/dragon32/state"
	"github.com/sevenhills/dragon32/test"
)

type mockCPU struct {
	cycles []events.Tick
}

func (m *mockCPU) Cycle(n events.Tick, isRead bool, addr uint16) {
	m.cycles = append(m.cycles, n)
}

type mockVideo struct {
	updates int
}

func (m *mockVideo) Update() {
	m.updates++
}

func TestControlRegisterBits(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	// odd address sets a bit, even address clears it. the bit index comes
	// from address bits 1-4; the data bus value is ignored
	s.MemCycle(0xffc1, false)
	test.Equate(t, s.V(), 0x01)
	s.MemCycle(0xffc5, false)
	test.Equate(t, s.V(), 0x05)
	s.MemCycle(0xffc0, false)
	test.Equate(t, s.V(), 0x04)

	s.MemCycle(0xffc7, false)
	test.Equate(t, s.F(), 0x0010)
	s.MemCycle(0xffd3, false)
	test.Equate(t, s.F(), 0x0410)

	s.MemCycle(0xffd5, false)
	test.Equate(t, s.P(), 0x01)
	s.MemCycle(0xffd9, false)
	test.Equate(t, s.R(), 0x02)
	s.MemCycle(0xffdb, false)
	test.Equate(t, s.M(), 0x01)
	s.MemCycle(0xffdf, false)
	test.Equate(t, s.MapType(), 0x01)

	// a read in the control window must not change anything
	s.MemCycle(0xffc0, true)
	test.Equate(t, s.V(), 0x04)
}

func TestClassifyPurity(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	for _, addr := range []uint16{0x0000, 0x1234, 0x8000, 0xa000, 0xff00, 0xfff8} {
		for _, isRead := range []bool{true, false} {
			a := s.Classify(addr, isRead)
			b := s.Classify(addr, isRead)
			test.Equate(t, a.Source == b.Source, true)
			test.Equate(t, a.Phys, b.Phys)
			test.Equate(t, a.RAS0 == b.RAS0, true)
		}
	}
}

func TestClassifySources(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	// map type 0: ROM in the top half
	test.Equate(t, s.Classify(0x8000, true).Source == sam.SourceROM0, true)
	test.Equate(t, s.Classify(0xa000, true).Source == sam.SourceROM1, true)
	test.Equate(t, s.Classify(0xc000, true).Source == sam.SourceROM2, true)
	test.Equate(t, s.Classify(0xe000, true).Source == sam.SourceROM2, true)
	test.Equate(t, s.Classify(0x7fff, true).Source == sam.SourceRAM, true)

	// the I/O page decodes ahead of the ROM map. vector fetches read
	// through to ROM2; the same addresses decode to nothing for writes
	test.Equate(t, s.Classify(0xff00, true).Source == sam.SourceIO0, true)
	test.Equate(t, s.Classify(0xff20, false).Source == sam.SourceIO1, true)
	test.Equate(t, s.Classify(0xff40, true).Source == sam.SourceIO2, true)
	test.Equate(t, s.Classify(0xfff8, true).Source == sam.SourceROM2, true)
	test.Equate(t, s.Classify(0xfff8, false).Source == sam.SourceNone, true)
	test.Equate(t, s.Classify(0xffc0, false).Source == sam.SourceNone, true)

	// all-RAM map: the top half is RAM like everything else
	s.MemCycle(0xffdf, false)
	test.Equate(t, s.Classify(0x8000, true).Source == sam.SourceRAM, true)
	test.Equate(t, s.Classify(0xfff8, true).Source == sam.SourceROM2, true)
}

func TestTranslate4K(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	// power-on geometry is 4K: two banks selected by address bit 12
	a := s.Classify(0x0234, true)
	test.Equate(t, a.Phys, 0x0234)
	test.Equate(t, a.RAS0, true)
	test.Equate(t, a.RAS1, false)

	a = s.Classify(0x1234, true)
	test.Equate(t, a.Phys, 0x1234)
	test.Equate(t, a.RAS0, false)
	test.Equate(t, a.RAS1, true)

	// address bits outside row, column and bank select fall away
	a = s.Classify(0x6234, true)
	test.Equate(t, a.Phys, 0x0234)
}

func TestTranslate64K(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	s.MemCycle(0xffdd, false) // M=2: 64K
	a := s.Classify(0x1234, true)
	test.Equate(t, a.Phys, 0x1234)
	test.Equate(t, a.RAS0, true)
	test.Equate(t, a.RAS1, false)

	// in the ROM/RAM map the P bit selects the upper half of the 64K array
	s.MemCycle(0xffd5, false)
	a = s.Classify(0x1234, true)
	test.Equate(t, a.Phys, 0x9234)

	// in the all-RAM map the address reaches the whole array and P is
	// irrelevant
	s.MemCycle(0xffdf, false)
	a = s.Classify(0x9234, true)
	test.Equate(t, a.Phys, 0x9234)
}

func TestTimingSequence(t *testing.T) {
	sch := events.NewScheduler()
	cpu := &mockCPU{}
	s := sam.NewSAM(sch, cpu, nil)

	// R=1 is the address-dependent rate: fast for anything that isn't RAM.
	// the register write itself is the first fast cycle. from the slow
	// state, fast flags [true true false true] must cost [15 8 17 15]
	a := s.MemCycle(0xffd7, false)
	test.Equate(t, int64(a.Cost), 15)

	a = s.MemCycle(0x8000, true)
	test.Equate(t, int64(a.Cost), 8)

	a = s.MemCycle(0x0000, true)
	test.Equate(t, int64(a.Cost), 17)

	a = s.MemCycle(0x8000, true)
	test.Equate(t, int64(a.Cost), 15)

	// the machine clock advanced by the summed costs and the CPU saw every
	// cycle
	test.Equate(t, int64(sch.Now(events.MachineDomain)), 55)
	test.Equate(t, len(cpu.cycles), 4)
	test.Equate(t, int64(cpu.cycles[2]), 17)
}

func TestTimingSlow(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	// R=0: every cycle is slow
	for i := 0; i < 3; i++ {
		a := s.MemCycle(0x0000, true)
		test.Equate(t, int64(a.Cost), 16)
	}
	test.Equate(t, int64(sch.Now(events.MachineDomain)), 48)
}

func TestVideoNotify(t *testing.T) {
	sch := events.NewScheduler()
	vid := &mockVideo{}
	s := sam.NewSAM(sch, nil, vid)

	// V and F writes notify the video collaborator; P does not
	s.MemCycle(0xffc1, false)
	test.Equate(t, vid.updates, 1)
	s.MemCycle(0xffc7, false)
	test.Equate(t, vid.updates, 2)
	s.MemCycle(0xffd5, false)
	test.Equate(t, vid.updates, 2)
}

func TestEventsFireDuringCycle(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	fired := false
	sch.Schedule(events.MachineDomain, events.NewEvent("fire", func() { fired = true }), 10)

	s.MemCycle(0x0000, true)
	test.Equate(t, fired, true)
}

func TestStateRoundTrip(t *testing.T) {
	sch := events.NewScheduler()
	s := sam.NewSAM(sch, nil, nil)

	s.MemCycle(0xffc1, false)
	s.MemCycle(0xffc7, false)
	s.MemCycle(0xffdd, false)
	s.MemCycle(0xffd5, false)
	s.MemCycle(0xffd7, false)
	s.MemCycle(0x8000, true)

	w := state.NewWriter()
	s.WriteState(w)

	n := sam.NewSAM(events.NewScheduler(), nil, nil)
	test.ExpectSuccess(t, n.ReadState(state.NewReader(w.Data())))

	// register fields and re-derived geometry behave identically
	test.Equate(t, n.V(), s.V())
	test.Equate(t, n.F(), s.F())
	test.Equate(t, n.M(), s.M())
	test.Equate(t, n.P(), s.P())
	test.Equate(t, n.R(), s.R())
	test.Equate(t, n.MapType(), s.MapType())

	a := s.Classify(0x1234, true)
	b := n.Classify(0x1234, true)
	test.Equate(t, a.Phys, b.Phys)
	test.Equate(t, a.RAS0 == b.RAS0, true)

	// and the next cycle costs the same from the restored timing state
	ca := s.MemCycle(0x0000, true)
	cb := n.MemCycle(0x0000, true)
	test.Equate(t, int64(ca.Cost), int64(cb.Cost))

	// a truncated stream fails without touching the target
	spoiled := sam.NewSAM(events.NewScheduler(), nil, nil)
	test.ExpectFailure(t, spoiled.ReadState(state.NewReader(w.Data()[:4])))
	test.Equate(t, spoiled.V(), 0x00)
}
