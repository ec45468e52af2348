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

package sam

import (
	"fmt"

	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/hardware/memory/addresses"
	"github.com/sevenhills/dragon32/hardware/sam/vcounter"
	"github.com/sevenhills/dragon32/state"
)

// CPU is the collaborator notified at the end of every bus cycle, after the
// machine clock has advanced and due events have fired.
type CPU interface {
	Cycle(ncycles events.Tick, isRead bool, addr uint16)
}

// Video is the collaborator notified before a control register write that can
// affect the picture currently being displayed. Implementations should bring
// the display up to date before returning.
type Video interface {
	Update()
}

// Source identifies which device a bus cycle selects.
type Source int

// List of valid Source values.
const (
	SourceRAM Source = iota
	SourceROM0
	SourceROM1
	SourceROM2
	SourceIO0
	SourceIO1
	SourceIO2
	SourceNone
)

func (s Source) String() string {
	switch s {
	case SourceRAM:
		return "RAM"
	case SourceROM0:
		return "ROM0"
	case SourceROM1:
		return "ROM1"
	case SourceROM2:
		return "ROM2"
	case SourceIO0:
		return "IO0"
	case SourceIO1:
		return "IO1"
	case SourceIO2:
		return "IO2"
	case SourceNone:
		return "NONE"
	}
	panic("unknown source")
}

// Access is the result of classifying one bus cycle.
type Access struct {
	Source Source

	// Phys is the translated physical address. Meaningful for SourceRAM;
	// for the ROM sources it is the offset into the selected ROM.
	Phys uint32

	// RAS0 and RAS1 are mutually exclusive; at most one is set, and only for
	// SourceRAM.
	RAS0 bool
	RAS1 bool

	// Cost of the cycle in ticks.
	Cost events.Tick
}

// source lookup for the I/O page, keyed by address bits 5-7. reads and
// writes decode differently: vector fetches at the top of the page read
// through to ROM2, and the SAM control register region is write-only.
var ioReadSources = [8]Source{
	SourceIO0, SourceIO1, SourceIO2,
	SourceNone, SourceNone, SourceNone, SourceNone,
	SourceROM2,
}

var ioWriteSources = [8]Source{
	SourceIO0, SourceIO1, SourceIO2,
	SourceNone, SourceNone, SourceNone, SourceNone,
	SourceNone,
}

// source lookup for the top half of the ROM/RAM map, keyed by address bits
// 13-15. only entries 4-7 are reachable.
var mapROMSources = [8]Source{
	SourceRAM, SourceRAM, SourceRAM, SourceRAM,
	SourceROM0, SourceROM1, SourceROM2, SourceROM2,
}

// cycle costs in ticks. a slow cycle is sixteen ticks of the reference
// crystal, a fast cycle eight. changing rate costs a fraction of a cycle:
// entering the fast rate is a tick short and the debt is repaid when leaving,
// either as a one tick or a nine tick stretch depending on the phase the fast
// rate was left in.
const (
	costSlow         events.Tick = 16
	costSlowToFast   events.Tick = 15
	costFast         events.Tick = 8
	costFastToSlow   events.Tick = 17
	costFastToSlowEx events.Tick = 25
)

// geometry is the set of fields derived from the M and P bits. it is
// recomputed eagerly whenever either changes so that address translation
// never needs to decode the control register.
type geometry struct {
	rowMask  uint16
	colShift uint
	colMask  uint16

	// ras1Bit is the address bit that selects the second RAM bank. zero for
	// the 64K geometry, where the chip routes an extra row-address bit to the
	// RAM instead of a second RAS line.
	ras1Bit  uint16
	extraRAS bool

	// pageBit is ORed into the physical address in the ROM/RAM map so the P
	// bit can select either half of a 64K array.
	pageBit uint32
}

// SAM is the address multiplexer.
type SAM struct {
	sch *events.Scheduler
	cpu CPU
	vid Video

	// the sixteen bit control register; see the field accessors
	reg uint16

	geom geometry

	runningFast     bool
	extendSlowCycle bool

	vc *vcounter.Chain
}

// NewSAM is the preferred method of initialisation for the SAM type. The cpu
// and vid collaborators may be nil, in which case the corresponding
// notifications are skipped.
func NewSAM(sch *events.Scheduler, cpu CPU, vid Video) *SAM {
	s := &SAM{
		sch: sch,
		cpu: cpu,
		vid: vid,
		vc:  vcounter.NewChain(),
	}
	s.updateGeometry()
	return s
}

// Reset returns the control register and timing state to power-on values.
// The divider chain is rewired for V=0 and cleared.
func (s *SAM) Reset() {
	s.reg = 0
	s.runningFast = false
	s.extendSlowCycle = false
	s.updateGeometry()
	s.vc.Reconfigure(0)
	s.vc.VerticalSync(0)
}

// Snapshot returns a copy of the SAM in its current state.
func (s *SAM) Snapshot() *SAM {
	n := *s
	n.vc = s.vc.Snapshot()
	return &n
}

// Plumb reconnects the SAM's collaborators after a snapshot restore.
func (s *SAM) Plumb(sch *events.Scheduler, cpu CPU, vid Video) {
	s.sch = sch
	s.cpu = cpu
	s.vid = vid
}

func (s *SAM) String() string {
	return fmt.Sprintf("reg=%#04x V=%d F=%#04x P=%d R=%d M=%d TY=%d fast=%v ext=%v",
		s.reg, s.V(), s.F(), s.P(), s.R(), s.M(), s.MapType(), s.runningFast, s.extendSlowCycle)
}

// V returns the three video mode bits.
func (s *SAM) V() uint8 {
	return uint8(s.reg & 0x07)
}

// F returns the frame base as a seed for the divider chain's B15_5 counter.
// The seven F bits of the control register give the top seven bits of the
// eleven bit seed; the low four bits are always zero.
func (s *SAM) F() uint16 {
	return ((s.reg >> 3) & 0x7f) << 4
}

// P returns the page bit.
func (s *SAM) P() uint8 {
	return uint8((s.reg >> 10) & 0x01)
}

// R returns the two MPU rate bits.
func (s *SAM) R() uint8 {
	return uint8((s.reg >> 11) & 0x03)
}

// M returns the two memory geometry bits.
func (s *SAM) M() uint8 {
	return uint8((s.reg >> 13) & 0x03)
}

// MapType returns the map type bit: 0 for the 32K RAM / 32K ROM map, 1 for
// the all-RAM map.
func (s *SAM) MapType() uint8 {
	return uint8(s.reg >> 15)
}

// Chain exposes the video address counter chain.
func (s *SAM) Chain() *vcounter.Chain {
	return s.vc
}

func (s *SAM) updateGeometry() {
	switch s.M() {
	case 0: // 4K
		s.geom = geometry{
			rowMask: 0x003f,
			colMask: 0x0fc0,
			ras1Bit: 0x1000,
		}
	case 1: // 16K
		s.geom = geometry{
			rowMask: 0x007f,
			colMask: 0x3f80,
			ras1Bit: 0x4000,
		}
	default: // 64K
		s.geom = geometry{
			rowMask:  0x00ff,
			colMask:  0xff00,
			extraRAS: true,
		}
		if s.P() == 1 {
			s.geom.pageBit = 0x8000
		}
	}
}

// writeControl clears or sets one bit of the control register according to
// the address written. Bits that can affect the picture are reported to the
// video collaborator before they change; bits that feed derived state cascade
// into the geometry or the divider chain after.
func (s *SAM) writeControl(addr uint16) {
	bit := (addr >> 1) & 0x0f

	// bits 0-9 are the V and F fields, both of which steer active video
	if bit <= 9 && s.vid != nil {
		s.vid.Update()
	}

	if addr&0x01 == 0x01 {
		s.reg |= 1 << bit
	} else {
		s.reg &^= 1 << bit
	}

	switch {
	case bit <= 2:
		s.vc.Reconfigure(s.V())
	case bit == 10 || bit == 13 || bit == 14:
		s.updateGeometry()
	}
}

// translate builds the physical RAM address for the current geometry.
func (s *SAM) translate(addr uint16) (uint32, bool, bool) {
	g := &s.geom

	phys := uint32((addr<<g.colShift)&g.colMask) | uint32(addr&g.rowMask)

	ras1 := false
	if !g.extraRAS {
		phys |= uint32(addr & g.ras1Bit)
		ras1 = addr&g.ras1Bit != 0
	}

	if s.MapType() == 0 {
		phys |= g.pageBit
	}

	return phys, !ras1, ras1
}

// Classify decodes one bus cycle to a source and physical address without
// costing it or advancing time. Identical inputs always produce identical
// results.
func (s *SAM) Classify(addr uint16, isRead bool) Access {
	// the I/O page decodes first, whatever the map type
	if addr&0xff00 == addresses.IOPage {
		var src Source
		if isRead {
			src = ioReadSources[(addr>>5)&0x07]
		} else {
			src = ioWriteSources[(addr>>5)&0x07]
		}
		return Access{Source: src, Phys: uint32(addr & 0x1fff)}
	}

	// top half of the ROM/RAM map selects a ROM
	if s.MapType() == 0 && addr&0x8000 != 0 {
		src := mapROMSources[(addr>>13)&0x07]
		return Access{Source: src, Phys: uint32(addr & 0x1fff)}
	}

	phys, ras0, ras1 := s.translate(addr)
	return Access{Source: SourceRAM, Phys: phys, RAS0: ras0, RAS1: ras1}
}

// cycleCost runs the timing state machine for one cycle. fast is the rate
// the cycle wants to run at.
func (s *SAM) cycleCost(fast bool) events.Tick {
	if s.runningFast {
		if fast {
			s.extendSlowCycle = !s.extendSlowCycle
			return costFast
		}
		s.runningFast = false
		if s.extendSlowCycle {
			s.extendSlowCycle = false
			return costFastToSlowEx
		}
		return costFastToSlow
	}

	if fast {
		s.runningFast = true
		s.extendSlowCycle = true
		return costSlowToFast
	}

	return costSlow
}

// MemCycle processes one complete CPU bus cycle: control register decode for
// writes in the SAM window, classification, cycle costing, clock advance and
// the end-of-cycle report to the CPU collaborator.
func (s *SAM) MemCycle(addr uint16, isRead bool) Access {
	if !isRead && addr >= addresses.SAMControl && addr <= addresses.SAMControlTop {
		s.writeControl(addr)
	}

	acc := s.Classify(addr, isRead)

	fast := s.R() >= 2 || (s.R() == 1 && acc.Source != SourceRAM)
	acc.Cost = s.cycleCost(fast)

	s.sch.Advance(events.MachineDomain, acc.Cost)

	if s.cpu != nil {
		s.cpu.Cycle(acc.Cost, isRead, addr)
	}

	return acc
}

// VDGBytes advances the video address counter by up to n byte fetches,
// stopping at a carry out of the low counter. It returns the number of bytes
// advanced and the physical address of the first.
func (s *SAM) VDGBytes(n int) (int, uint32) {
	n, addr := s.vc.AdvanceBytes(n)

	// video fetches go through the same address multiplexer as the CPU
	phys, _, _ := s.translate(addr)
	return n, phys
}

// HorizontalSync reports the falling edge of the VDG horizontal sync to the
// counter chain.
func (s *SAM) HorizontalSync() {
	s.vc.HorizontalSync()
}

// VerticalSync reports the rising edge of the VDG vertical sync: the counter
// chain resets and the frame base is reloaded from the F bits.
func (s *SAM) VerticalSync() {
	s.vc.VerticalSync(s.F())
}

// WriteState appends the SAM's state, including the divider chain, to the
// tagged stream.
func (s *SAM) WriteState(w *state.Writer) {
	w.Uint16("sam/reg", s.reg)
	w.Bool("sam/fast", s.runningFast)
	w.Bool("sam/extend", s.extendSlowCycle)
	s.vc.WriteState(w)
}

// ReadState restores state previously written with WriteState, re-deriving
// the geometry fields. The SAM is untouched on error.
func (s *SAM) ReadState(r *state.Reader) error {
	reg := r.Uint16("sam/reg")
	fast := r.Bool("sam/fast")
	extend := r.Bool("sam/extend")

	vc := vcounter.NewChain()
	if err := vc.ReadState(r); err != nil {
		return fmt.Errorf("sam: %w", err)
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("sam: %w", err)
	}

	s.reg = reg
	s.runningFast = fast
	s.extendSlowCycle = extend
	s.vc = vc
	s.updateGeometry()
	return nil
}
