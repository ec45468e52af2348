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

package vdg

import (
	"fmt"

	"github.com/sevenhills/dragon32/hardware/clocks"
	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/state"
)

// Multiplexer is the address multiplexer as the VDG sees it: a supply of
// video byte addresses and the two sync inputs to its counter chain.
type Multiplexer interface {
	VDGBytes(n int) (int, uint32)
	HorizontalSync()
	VerticalSync()
}

// mode register bits, as wired to the PIA port.
const (
	ModeCSS = 0x08
	ModeGM0 = 0x10
	ModeGM1 = 0x20
	ModeGM2 = 0x40
	ModeAG  = 0x80
)

// the active window covers 32 of a scanline's 57 character fetches, on 192
// of the field's lines.
const (
	activeLines  = 192
	activeBytes  = 32
	ticksPerByte = 16
)

// VDG is the video display generator reduced to its bus-side behaviour: the
// mode latch and the fetch/sync traffic it generates on the multiplexer's
// counter chain. It produces no picture.
type VDG struct {
	sch *events.Scheduler
	mpx Multiplexer

	mode uint8

	line      int
	lineStart events.Tick
	fetched   int

	// FieldCount increments on every vertical sync.
	FieldCount int

	scanline *events.Event
}

// NewVDG is the preferred method of initialisation for the VDG type. The
// first scanline event is scheduled immediately.
func NewVDG(sch *events.Scheduler, mpx Multiplexer) *VDG {
	v := &VDG{sch: sch, mpx: mpx}
	v.scanline = events.NewEvent("vdg/scanline", v.endScanline)
	v.Reset()
	return v
}

// Reset returns the VDG to the top of a field and reschedules the scanline
// event.
func (v *VDG) Reset() {
	v.mode = 0
	v.line = 0
	v.fetched = 0
	v.lineStart = v.sch.Now(events.MachineDomain)
	v.sch.ScheduleAfter(events.MachineDomain, v.scanline, clocks.TicksPerLine)
}

// Snapshot returns a copy of the VDG in its current state. The scanline
// event itself stays with the scheduler; Plumb reattaches it.
func (v *VDG) Snapshot() *VDG {
	n := *v
	return &n
}

// Plumb reconnects the VDG to the scheduler and multiplexer after a
// snapshot restore.
func (v *VDG) Plumb(sch *events.Scheduler, mpx Multiplexer) {
	v.sch = sch
	v.mpx = mpx
	v.scanline = events.NewEvent("vdg/scanline", v.endScanline)
}

// ScanlineEvent returns the event that ends the current scanline, so the
// machine can requeue it when restoring a saved state.
func (v *VDG) ScanlineEvent() *events.Event {
	return v.scanline
}

// SetMode is the PIA port hook. Bits 3 to 7 of the port carry CSS, GM0-GM2
// and the alpha/graphics select.
func (v *VDG) SetMode(value uint8) {
	v.mode = value & (ModeAG | ModeGM2 | ModeGM1 | ModeGM0 | ModeCSS)
}

// Mode returns the latched mode bits.
func (v *VDG) Mode() uint8 {
	return v.mode
}

func (v *VDG) String() string {
	return fmt.Sprintf("vdg: mode=%#02x line=%d field=%d", v.mode, v.line, v.FieldCount)
}

// Update brings the fetch position on the current scanline up to the
// machine clock. The multiplexer calls this before any control register
// write that would change the video address, so fetches before the write
// use the old configuration.
func (v *VDG) Update() {
	if v.line >= activeLines {
		return
	}
	elapsed := int(v.sch.Now(events.MachineDomain) - v.lineStart)
	want := elapsed / ticksPerByte
	if want > activeBytes {
		want = activeBytes
	}
	// the counter chain hands over at most one row of bytes per call and
	// expects the caller to come back across the wrap
	for v.fetched < want {
		n, _ := v.mpx.VDGBytes(want - v.fetched)
		v.fetched += n
	}
}

// endScanline is the scanline event payload.
func (v *VDG) endScanline() {
	v.Update()
	v.mpx.HorizontalSync()

	v.line++
	v.fetched = 0
	v.lineStart = v.sch.Now(events.MachineDomain)

	if v.line >= clocks.LinesPerField {
		v.line = 0
		v.FieldCount++
		v.mpx.VerticalSync()
	}

	v.sch.ScheduleAfter(events.MachineDomain, v.scanline, clocks.TicksPerLine)
}

// WriteState appends the VDG's state to the tagged stream. The pending
// scanline event is saved by the scheduler, not here.
func (v *VDG) WriteState(w *state.Writer) {
	w.Uint8("vdg/mode", v.mode)
	w.Uint16("vdg/line", uint16(v.line))
	w.Uint8("vdg/fetched", uint8(v.fetched))

	// the scan position is saved relative to the machine clock so a restore
	// works whatever tick the clock has reached
	w.Int64("vdg/offset", int64(v.sch.Now(events.MachineDomain)-v.lineStart))
}

// ReadState restores state previously written with WriteState. The VDG is
// untouched on error.
func (v *VDG) ReadState(r *state.Reader) error {
	mode := r.Uint8("vdg/mode")
	line := r.Uint16("vdg/line")
	fetched := r.Uint8("vdg/fetched")
	offset := r.Int64("vdg/offset")
	if err := r.Err(); err != nil {
		return fmt.Errorf("vdg: %w", err)
	}

	v.mode = mode
	v.line = int(line)
	v.fetched = int(fetched)
	v.lineStart = v.sch.Now(events.MachineDomain) - events.Tick(offset)
	return nil
}
