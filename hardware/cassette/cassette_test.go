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

package cassette

import (
	"testing"

	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/test"
)

type mockPort struct {
	level uint8
	edges []bool
}

func (m *mockPort) SetInput(value uint8) {
	m.level = value
}

func (m *mockPort) SignalEdge(rising bool) {
	m.edges = append(m.edges, rising)
}

func TestReplayEdges(t *testing.T) {
	sch := events.NewScheduler()
	p := &mockPort{}
	c := NewCassette(sch, p)

	// a square wave: two samples high, two low
	c.tape = tape{
		sampleRate: 4800,
		data:       []float32{1, 1, -1, -1, 1, 1, -1, -1},
	}
	c.setRate(c.tape.sampleRate)

	c.SetMotor(true)
	sch.Advance(events.MachineDomain, c.ticksPerSample*8)

	// the deck starts at level low, so the first high sample is an edge too
	test.Equate(t, len(p.edges), 4)
	test.Equate(t, p.edges[0], true)
	test.Equate(t, p.edges[1], false)
	test.Equate(t, p.level, 0xfe)

	// the tape is exhausted but the motor keeps turning
	test.Equate(t, c.pos, 8)
	sch.Advance(events.MachineDomain, c.ticksPerSample*4)
	test.Equate(t, len(p.edges), 4)
}

func TestMotorStopsEvents(t *testing.T) {
	sch := events.NewScheduler()
	c := NewCassette(sch, &mockPort{})
	c.tape = tape{sampleRate: 4800, data: []float32{1, -1, 1, -1}}
	c.setRate(c.tape.sampleRate)

	c.SetMotor(true)
	test.Equate(t, len(sch.Pending(events.MachineDomain)), 1)

	sch.Advance(events.MachineDomain, c.ticksPerSample)
	test.Equate(t, c.pos, 1)

	c.SetMotor(false)
	test.Equate(t, len(sch.Pending(events.MachineDomain)), 0)

	// position holds while the motor is off
	sch.Advance(events.MachineDomain, c.ticksPerSample*4)
	test.Equate(t, c.pos, 1)

	// and resumes where it left off
	c.SetMotor(true)
	sch.Advance(events.MachineDomain, c.ticksPerSample)
	test.Equate(t, c.pos, 2)
}

func TestHook(t *testing.T) {
	sch := events.NewScheduler()
	c := NewCassette(sch, &mockPort{})

	c.Hook(0xfd)
	test.Equate(t, c.Motor(), true)
	test.Equate(t, c.outLevel, 0x3f)

	c.Hook(0x00)
	test.Equate(t, c.Motor(), false)
}
