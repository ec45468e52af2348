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

package pia

import (
	"fmt"

	"github.com/sevenhills/dragon32/state"
)

// control register bits. only the low six bits are writable; bit 7 is the
// interrupt latch, visible on control register reads.
const (
	ctrlInterruptEnabled = 0x01
	ctrlActiveRising     = 0x02
	ctrlDataSelected     = 0x04
	ctrlMask             = 0x3f
	ctrlLatchFlag        = 0x80
)

// Port is one half of a PIA.
type Port struct {
	chip  *PIA
	label string

	control uint8
	ddr     uint8
	output  uint8

	// the level last presented on the port's input pins by the outside
	// world. not latched; SetInput simply records it for the next read
	input uint8

	// lines wired permanently low on the board. a zero bit here always
	// reads zero whatever the peripheral drives
	tiedLow uint8

	latched bool
	irq     bool

	// exactly one peripheral hangs off each port
	hook func(value uint8)
}

// PIA is one chip: two ports sharing an interrupt line.
type PIA struct {
	Label string

	A Port
	B Port

	line     bool
	lineHook func(bool)
}

// NewPIA is the preferred method of initialisation for the PIA type. The
// tiedLow arguments give the board-level pull-down masks for the two ports;
// 0xff means no lines are tied low.
func NewPIA(label string, tiedLowA uint8, tiedLowB uint8) *PIA {
	p := &PIA{Label: label}
	p.A = Port{chip: p, label: label + ".a", tiedLow: tiedLowA, input: 0xff}
	p.B = Port{chip: p, label: label + ".b", tiedLow: tiedLowB, input: 0xff}
	return p
}

// Reset returns both ports to power-on state. Board wiring (tied-low masks,
// hooks) and the externally driven input levels are preserved.
func (p *PIA) Reset() {
	for _, prt := range []*Port{&p.A, &p.B} {
		prt.control = 0
		prt.ddr = 0
		prt.output = 0
		prt.latched = false
		prt.irq = false
	}
	p.recompute()
}

// Snapshot returns a copy of the PIA in its current state.
func (p *PIA) Snapshot() *PIA {
	n := *p
	n.A.chip = &n
	n.B.chip = &n
	return &n
}

// Plumb reconnects the shared line hook after a snapshot restore. Port hooks
// are reattached individually with SetHook.
func (p *PIA) Plumb(lineHook func(bool)) {
	p.lineHook = lineHook
}

// Line returns the current state of the chip's shared interrupt line.
func (p *PIA) Line() bool {
	return p.line
}

// SetLineHook registers a function called whenever the shared interrupt line
// changes state.
func (p *PIA) SetLineHook(h func(bool)) {
	p.lineHook = h
}

func (p *PIA) String() string {
	return fmt.Sprintf("%s: a=[%s] b=[%s] line=%v", p.Label, p.A.String(), p.B.String(), p.line)
}

// recompute the shared line from both ports' contributions.
func (p *PIA) recompute() {
	line := p.A.irq || p.B.irq
	if line != p.line {
		p.line = line
		if p.lineHook != nil {
			p.lineHook(line)
		}
	}
}

// ReadRegister decodes a CPU read in the chip's register window. The window
// mirrors every four bytes.
func (p *PIA) ReadRegister(addr uint16) uint8 {
	switch addr & 0x03 {
	case 0:
		return p.A.ReadData()
	case 1:
		return p.A.ReadControl()
	case 2:
		return p.B.ReadData()
	default:
		return p.B.ReadControl()
	}
}

// WriteRegister decodes a CPU write in the chip's register window.
func (p *PIA) WriteRegister(addr uint16, data uint8) {
	switch addr & 0x03 {
	case 0:
		p.A.WriteData(data)
	case 1:
		p.A.WriteControl(data)
	case 2:
		p.B.WriteData(data)
	default:
		p.B.WriteControl(data)
	}
}

func (prt *Port) String() string {
	return fmt.Sprintf("ctrl=%#02x ddr=%#02x out=%#02x in=%#02x irq=%v",
		prt.control, prt.ddr, prt.output, prt.input, prt.irq)
}

// SetHook registers the peripheral update function for the port.
func (prt *Port) SetHook(h func(value uint8)) {
	prt.hook = h
}

// SetInput records the level currently driven onto the port's input pins.
func (prt *Port) SetInput(value uint8) {
	prt.input = value
}

// Output returns the externally visible level of the port.
func (prt *Port) Output() uint8 {
	return ((prt.output & prt.ddr) | (prt.input & ^prt.ddr)) & prt.tiedLow
}

// SignalEdge reports a transition on the port's interrupt control line. Only
// the configured active transition latches; whether the latch reaches the
// shared line depends on the interrupt enable bit at the time of the edge.
func (prt *Port) SignalEdge(rising bool) {
	if rising != (prt.control&ctrlActiveRising == ctrlActiveRising) {
		return
	}
	prt.latched = true
	if prt.control&ctrlInterruptEnabled == ctrlInterruptEnabled {
		prt.irq = true
	}
	prt.chip.recompute()
}

// ReadControl returns the control register with the interrupt latch in bit
// 7. Reading the control register does not clear the latch; only a data
// register read does that.
func (prt *Port) ReadControl() uint8 {
	v := prt.control
	if prt.latched {
		v |= ctrlLatchFlag
	}
	return v
}

// WriteControl replaces the low six bits of the control register. The
// port's contribution to the shared line is recomputed, so enabling
// interrupts with a latch already pending raises the line immediately.
func (prt *Port) WriteControl(value uint8) {
	prt.control = value & ctrlMask
	prt.irq = prt.latched && prt.control&ctrlInterruptEnabled == ctrlInterruptEnabled
	prt.chip.recompute()
}

// ReadData reads the register currently selected by control bit 2: the data
// register, which acknowledges any pending interrupt, or the direction
// register.
func (prt *Port) ReadData() uint8 {
	if prt.control&ctrlDataSelected != ctrlDataSelected {
		return prt.ddr
	}

	prt.latched = false
	prt.irq = false
	prt.chip.recompute()

	return (prt.input & prt.tiedLow & ^prt.ddr) | (prt.output & prt.ddr)
}

// WriteData writes the register currently selected by control bit 2 and then
// reports the port's new externally visible level to the attached
// peripheral.
func (prt *Port) WriteData(value uint8) {
	if prt.control&ctrlDataSelected == ctrlDataSelected {
		prt.output = value & prt.ddr
	} else {
		prt.ddr = value
	}

	if prt.hook != nil {
		prt.hook(prt.Output())
	}
}

// WriteState appends the port's state to the tagged stream.
func (prt *Port) WriteState(w *state.Writer) {
	w.Uint8(prt.label+"/control", prt.control)
	w.Uint8(prt.label+"/ddr", prt.ddr)
	w.Uint8(prt.label+"/output", prt.output)
	w.Uint8(prt.label+"/input", prt.input)
	w.Uint8(prt.label+"/tiedlow", prt.tiedLow)
	w.Bool(prt.label+"/latched", prt.latched)
	w.Bool(prt.label+"/irq", prt.irq)
}

func (prt *Port) readState(r *state.Reader) Port {
	n := Port{label: prt.label}
	n.control = r.Uint8(prt.label + "/control")
	n.ddr = r.Uint8(prt.label + "/ddr")
	n.output = r.Uint8(prt.label + "/output")
	n.input = r.Uint8(prt.label + "/input")
	n.tiedLow = r.Uint8(prt.label + "/tiedlow")
	n.latched = r.Bool(prt.label + "/latched")
	n.irq = r.Bool(prt.label + "/irq")
	return n
}

// WriteState appends the chip's state to the tagged stream.
func (p *PIA) WriteState(w *state.Writer) {
	p.A.WriteState(w)
	p.B.WriteState(w)
}

// ReadState restores state previously written with WriteState, re-deriving
// the shared line. Hooks survive; the PIA is untouched on error.
func (p *PIA) ReadState(r *state.Reader) error {
	a := p.A.readState(r)
	b := p.B.readState(r)
	if err := r.Err(); err != nil {
		return fmt.Errorf("pia: %s: %w", p.Label, err)
	}

	a.chip, a.hook = p, p.A.hook
	b.chip, b.hook = p, p.B.hook
	p.A = a
	p.B = b

	// announce the restored line level unconditionally
	p.line = a.irq || b.irq
	if p.lineHook != nil {
		p.lineHook(p.line)
	}
	return nil
}
