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

package vcounter

import (
	"fmt"
	"strings"

	"github.com/sevenhills/dragon32/state"
)

// ID indexes a counter in the chain.
type ID int

// List of counters in the chain. Ground is not a counter; it is the
// permanently-low input used while rewiring through certain divider
// transitions.
const (
	B15_5 ID = iota
	B4
	B3_0
	YDIV4
	YDIV3
	YDIV2
	XDIV3
	XDIV2
	Clock
	NumCounters

	Ground ID = -1
)

func (id ID) String() string {
	switch id {
	case B15_5:
		return "B15_5"
	case B4:
		return "B4"
	case B3_0:
		return "B3_0"
	case YDIV4:
		return "YDIV4"
	case YDIV3:
		return "YDIV3"
	case YDIV2:
		return "YDIV2"
	case XDIV3:
		return "XDIV3"
	case XDIV2:
		return "XDIV2"
	case Clock:
		return "CLOCK"
	case Ground:
		return "GROUND"
	}
	panic("unknown vcounter ID")
}

// ClearMode says which low bits of the chain a horizontal sync clears.
type ClearMode int

// List of valid ClearMode values.
const (
	ClearNone ClearMode = iota
	Clear3
	Clear4
)

func (m ClearMode) String() string {
	switch m {
	case ClearNone:
		return "CLRN"
	case Clear3:
		return "CLR3"
	case Clear4:
		return "CLR4"
	}
	panic("unknown clear mode")
}

// Mode is one entry of the V lookup table.
type Mode struct {
	YDiv  int
	XDiv  int
	Clear ClearMode
}

// ModeTable maps the three V bits of the SAM control register to divider and
// clear-mode selections.
var ModeTable = [8]Mode{
	{YDiv: 12, XDiv: 1, Clear: Clear4},
	{YDiv: 1, XDiv: 3, Clear: Clear3},
	{YDiv: 3, XDiv: 1, Clear: Clear4},
	{YDiv: 1, XDiv: 2, Clear: Clear3},
	{YDiv: 2, XDiv: 1, Clear: Clear4},
	{YDiv: 1, XDiv: 1, Clear: Clear3},
	{YDiv: 1, XDiv: 1, Clear: Clear4},
	{YDiv: 1, XDiv: 1, Clear: ClearNone},
}

// counter is one node in the ripple graph. A counter increments, modulo its
// modulus, on the falling edge of the output bit of the counter named by
// input. inputLevel is the input level most recently seen, needed for edge
// detection across rewires.
type counter struct {
	value      uint16
	modulus    uint16
	outputMask uint16
	input      ID
	inputLevel bool
}

func (c *counter) output() bool {
	return c.value&c.outputMask != 0
}

// Chain is the complete video address counter graph.
type Chain struct {
	counters [NumCounters]counter

	ydiv  int
	xdiv  int
	clear ClearMode
}

// NewChain is the preferred method of initialisation for the Chain type. The
// chain powers up wired for V=0.
func NewChain() *Chain {
	ch := &Chain{}

	ch.counters[B15_5] = counter{modulus: 0x800, outputMask: 0x400, input: YDIV4}
	ch.counters[B4] = counter{modulus: 2, outputMask: 1, input: B3_0}
	ch.counters[B3_0] = counter{modulus: 16, outputMask: 8, input: Clock}
	ch.counters[YDIV4] = counter{modulus: 4, outputMask: 2, input: YDIV3}
	ch.counters[YDIV3] = counter{modulus: 3, outputMask: 2, input: B4}
	ch.counters[YDIV2] = counter{modulus: 2, outputMask: 1, input: B4}
	ch.counters[XDIV3] = counter{modulus: 3, outputMask: 2, input: Clock}
	ch.counters[XDIV2] = counter{modulus: 2, outputMask: 1, input: Clock}
	ch.counters[Clock] = counter{modulus: 2, outputMask: 1, input: Ground}

	m := ModeTable[0]
	ch.ydiv = m.YDiv
	ch.xdiv = m.XDiv
	ch.clear = m.Clear

	return ch
}

// Snapshot returns a copy of the chain in its current state.
func (ch *Chain) Snapshot() *Chain {
	n := *ch
	return &n
}

func (ch *Chain) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("ydiv=%d xdiv=%d clear=%s\n", ch.ydiv, ch.xdiv, ch.clear))
	for id := ID(0); id < NumCounters; id++ {
		c := &ch.counters[id]
		s.WriteString(fmt.Sprintf("%s=%d (mod %d, from %s)\n", id, c.value, c.modulus, c.input))
	}
	return s.String()
}

// Value returns the current count of the named counter.
func (ch *Chain) Value(id ID) uint16 {
	return ch.counters[id].value
}

// Input returns the counter currently wired as the clock input of the named
// counter.
func (ch *Chain) Input(id ID) ID {
	return ch.counters[id].input
}

// ClearMode returns the horizontal sync clear mode for the current V bits.
func (ch *Chain) ClearMode() ClearMode {
	return ch.clear
}

// level of an input source as seen by a counter wired to it.
func (ch *Chain) level(id ID) bool {
	if id == Ground {
		return false
	}
	return ch.counters[id].output()
}

// update re-samples the input of the named counter, counting if the input has
// fallen since it was last seen. A carry out of the counter ripples onward.
func (ch *Chain) update(id ID) {
	c := &ch.counters[id]
	level := ch.level(c.input)
	if c.inputLevel && !level {
		ch.count(id)
	}
	c.inputLevel = level
}

// count increments the named counter. Any change of the counter's output bit
// ripples to the counters it clocks: a rise so they can track the level, a
// fall so they can count in turn.
func (ch *Chain) count(id ID) {
	c := &ch.counters[id]
	o := c.output()
	c.value = (c.value + 1) % c.modulus
	if o != c.output() {
		ch.ripple(id)
	}
}

// ripple updates every counter that names from as its input.
func (ch *Chain) ripple(from ID) {
	for id := ID(0); id < NumCounters; id++ {
		if ch.counters[id].input == from {
			ch.update(id)
		}
	}
}

// attach wires a new clock input to the named counter. A clean switch: the
// counter takes the new input's current level without counting.
func (ch *Chain) attach(id ID, input ID) {
	c := &ch.counters[id]
	c.input = input
	c.inputLevel = ch.level(input)
}

// groundGlitch momentarily wires the named counter's clock input to ground.
// If the counter last saw a high level it sees a falling edge and counts.
// This is the mechanism behind the mode change glitch.
func (ch *Chain) groundGlitch(id ID) {
	c := &ch.counters[id]
	c.input = Ground
	if c.inputLevel {
		ch.count(id)
	}
	c.inputLevel = false
}

// Reconfigure rewires the divider graph for a new value of the V bits.
// Transitions between certain Y divisors, and between the two X dividers,
// pass through ground; see the package documentation.
func (ch *Chain) Reconfigure(v uint8) {
	m := ModeTable[v&0x07]

	if m.YDiv != ch.ydiv {
		throughGround := (ch.ydiv == 12 && (m.YDiv == 3 || m.YDiv == 2)) ||
			(m.YDiv == 12 && (ch.ydiv == 3 || ch.ydiv == 2))
		if throughGround {
			ch.groundGlitch(B15_5)
		}
		switch m.YDiv {
		case 12:
			ch.attach(B15_5, YDIV4)
		case 3:
			ch.attach(B15_5, YDIV3)
		case 2:
			ch.attach(B15_5, YDIV2)
		case 1:
			ch.attach(B15_5, B4)
		}
		ch.ydiv = m.YDiv
	}

	if m.XDiv != ch.xdiv {
		throughGround := (ch.xdiv == 3 && m.XDiv == 2) || (ch.xdiv == 2 && m.XDiv == 3)
		if throughGround {
			ch.groundGlitch(B3_0)
		}
		switch m.XDiv {
		case 3:
			ch.attach(B3_0, XDIV3)
		case 2:
			ch.attach(B3_0, XDIV2)
		case 1:
			ch.attach(B3_0, Clock)
		}
		ch.xdiv = m.XDiv
	}

	ch.clear = m.Clear
}

// Address returns the VDG fetch address for the current counter values.
func (ch *Chain) Address() uint16 {
	return ch.counters[B15_5].value<<5 | ch.counters[B4].value<<4 | ch.counters[B3_0].value
}

// AdvanceBytes advances the B3_0 counter by up to n byte fetches, stopping at
// the point where B3_0 would wrap. It returns the number of bytes advanced
// and the fetch address the run started at. A wrap of B3_0 propagates a
// single falling edge into the rest of the chain.
func (ch *Chain) AdvanceBytes(n int) (int, uint16) {
	c := &ch.counters[B3_0]

	take := int(16 - c.value)
	if n < take {
		take = n
	}

	addr := ch.Address()

	c.value += uint16(take)
	if c.value >= 16 {
		c.value = 0
		ch.forceEdge(B3_0)
	}

	return take, addr
}

// forceEdge delivers a complete output pulse of the named counter to its
// dependents: a high level followed immediately by the current low level. A
// bulk advance of B3_0 always passes through the high half of the count
// before wrapping, so however the wrap was reached its dependents see exactly
// one falling edge.
func (ch *Chain) forceEdge(from ID) {
	for id := ID(0); id < NumCounters; id++ {
		if ch.counters[id].input == from {
			ch.counters[id].inputLevel = true
		}
	}
	ch.ripple(from)
}

// force sets a counter to an absolute value, as the sync inputs do, and
// reports whether the counter's output bit fell as a result. Dependents take
// the new level without counting; a sync clear is not a clock.
func (ch *Chain) force(id ID, value uint16) bool {
	c := &ch.counters[id]
	o := c.output()
	c.value = value
	fell := o && !c.output()
	if o != c.output() {
		for d := ID(0); d < NumCounters; d++ {
			if ch.counters[d].input == id {
				ch.counters[d].inputLevel = c.output()
			}
		}
	}
	return fell
}

// HorizontalSync clears the low end of the chain on the falling edge of the
// VDG horizontal sync. Which counters are cleared depends on the clear mode
// of the current video mode; mode CLRN leaves the chain untouched. A clear
// that drops the B4 output ripples into the Y dividers.
func (ch *Chain) HorizontalSync() {
	switch ch.clear {
	case ClearNone:
		return

	case Clear3:
		ch.force(B3_0, ch.counters[B3_0].value&0x8)

	case Clear4:
		b4fell := ch.counters[B4].output()
		ch.force(B3_0, 0)
		ch.force(B4, 0)
		if b4fell {
			ch.forceEdge(B4)
		}
	}
}

// VerticalSync resets the whole chain on the rising edge of the VDG vertical
// sync and reseeds the B15_5 counter from the SAM's F bits.
func (ch *Chain) VerticalSync(seed uint16) {
	for id := ID(0); id < NumCounters; id++ {
		ch.counters[id].value = 0
	}
	ch.counters[B15_5].value = seed & 0x7ff
	for id := ID(0); id < NumCounters; id++ {
		c := &ch.counters[id]
		c.inputLevel = ch.level(c.input)
	}
}

// WriteState appends the chain's state, including wiring, to the tagged
// stream.
func (ch *Chain) WriteState(w *state.Writer) {
	w.Int64("vcounter/ydiv", int64(ch.ydiv))
	w.Int64("vcounter/xdiv", int64(ch.xdiv))
	w.Int64("vcounter/clear", int64(ch.clear))
	for id := ID(0); id < NumCounters; id++ {
		c := &ch.counters[id]
		w.Uint16(fmt.Sprintf("vcounter/%s/value", id), c.value)
		w.Int64(fmt.Sprintf("vcounter/%s/input", id), int64(c.input))
		w.Bool(fmt.Sprintf("vcounter/%s/level", id), c.inputLevel)
	}
}

// ReadState restores state previously written with WriteState. The chain is
// untouched on error.
func (ch *Chain) ReadState(r *state.Reader) error {
	n := NewChain()
	n.ydiv = int(r.Int64("vcounter/ydiv"))
	n.xdiv = int(r.Int64("vcounter/xdiv"))
	n.clear = ClearMode(r.Int64("vcounter/clear"))
	for id := ID(0); id < NumCounters; id++ {
		c := &n.counters[id]
		c.value = r.Uint16(fmt.Sprintf("vcounter/%s/value", id))
		c.input = ID(r.Int64(fmt.Sprintf("vcounter/%s/input", id)))
		c.inputLevel = r.Bool(fmt.Sprintf("vcounter/%s/level", id))
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("vcounter: %w", err)
	}
	*ch = *n
	return nil
}
