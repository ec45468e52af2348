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

package hardware

import (
	"fmt"
	"os"

	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/logger"
	"github.com/sevenhills/dragon32/state"
)

// State is one saved machine state: every register, counter, RAM byte and
// pending event, in the tagged stream encoding. It is produced by the
// Snapshot() function and restored with the Plumb() function.
type State struct {
	data []byte
}

// Snapshot the state of the machine's sub-systems.
func (d *Dragon) Snapshot() *State {
	w := state.NewWriter()
	d.WriteState(w)
	return &State{data: w.Data()}
}

// Plumb a previously snapshotted state back into the machine.
func (d *Dragon) Plumb(s *State) error {
	if s == nil {
		return fmt.Errorf("machine: cannot plumb a nil state")
	}
	return d.ReadState(state.NewReader(s.data))
}

// Save writes a snapshot of the machine to disk.
func (d *Dragon) Save(filename string) error {
	s := d.Snapshot()
	if err := os.WriteFile(filename, s.data, 0644); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	logger.Logf(logger.Allow, "machine", "state saved to %s", filename)
	return nil
}

// Load restores the machine from a snapshot on disk. The machine is
// untouched on error.
func (d *Dragon) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := d.Plumb(&State{data: data}); err != nil {
		return err
	}
	logger.Logf(logger.Allow, "machine", "state loaded from %s", filename)
	return nil
}

// pendingDelta looks up a queued event by label and returns how far ahead
// of the machine clock it is due.
func (d *Dragon) pendingDelta(label string) (events.Tick, bool) {
	for _, p := range d.Sch.Pending(events.MachineDomain) {
		if p.Label == label {
			return p.Delta, true
		}
	}
	return 0, false
}

// WriteState appends the whole machine state to the tagged stream. Pending
// events are saved as deltas ahead of the clock, so the stream is
// independent of the absolute tick it was taken at.
func (d *Dragon) WriteState(w *state.Writer) {
	d.SAM.WriteState(w)
	d.PIA0.WriteState(w)
	d.PIA1.WriteState(w)
	d.RAM.WriteState(w)
	d.Keyboard.WriteState(w)
	d.VDG.WriteState(w)
	d.Cassette.WriteState(w)

	for _, ev := range []struct {
		name  string
		label string
	}{
		{"machine/scanline", d.VDG.ScanlineEvent().Label()},
		{"machine/sample", d.Cassette.SampleEvent().Label()},
	} {
		delta, queued := d.pendingDelta(ev.label)
		w.Bool(ev.name+"-queued", queued)
		w.Int64(ev.name+"-delta", int64(delta))
	}
}

// ReadState restores state previously written with WriteState. The stream
// is decoded into copies of every sub-system first; the machine commits to
// the restored state only when the whole stream has decoded cleanly, and is
// untouched on error.
func (d *Dragon) ReadState(r *state.Reader) error {
	sm := d.SAM.Snapshot()
	p0 := d.PIA0.Snapshot()
	p1 := d.PIA1.Snapshot()
	ram := d.RAM.Snapshot()
	kb := d.Keyboard.Snapshot()
	vid := d.VDG.Snapshot()
	cas := d.Cassette.Snapshot()

	// detach the copies from the live machine so a failed decode cannot
	// reach it through a hook
	p0.Plumb(nil)
	p1.Plumb(nil)
	kb.Plumb(nil)

	if err := sm.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := p0.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := p1.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := ram.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := kb.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := vid.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	if err := cas.ReadState(r); err != nil {
		return fmt.Errorf("machine: %w", err)
	}

	scanQueued := r.Bool("machine/scanline-queued")
	scanDelta := r.Int64("machine/scanline-delta")
	sampQueued := r.Bool("machine/sample-queued")
	sampDelta := r.Int64("machine/sample-delta")
	if err := r.Err(); err != nil {
		return fmt.Errorf("machine: %w", err)
	}

	// the old events leave the queue before their owners are replaced
	d.Sch.Cancel(d.VDG.ScanlineEvent())
	d.Sch.Cancel(d.Cassette.SampleEvent())

	// commit
	d.SAM = sm
	d.PIA0 = p0
	d.PIA1 = p1
	d.RAM = ram
	d.Keyboard = kb
	d.VDG = vid
	d.Cassette = cas

	d.VDG.Plumb(d.Sch, d.SAM)
	d.SAM.Plumb(d.Sch, d.cpu, d.VDG)
	d.Keyboard.Plumb(&d.PIA0.A)
	d.Cassette.Plumb(d.Sch, &d.PIA1.A)
	d.wireHooks()

	if scanQueued {
		d.Sch.ScheduleAfter(events.MachineDomain, d.VDG.ScanlineEvent(), events.Tick(scanDelta))
	}
	if sampQueued {
		d.Sch.ScheduleAfter(events.MachineDomain, d.Cassette.SampleEvent(), events.Tick(sampDelta))
	}

	// the restored interrupt lines are announced whether they changed or not
	if d.cpu != nil {
		d.cpu.SetIRQ(d.PIA0.Line())
		d.cpu.SetFIRQ(d.PIA1.Line())
	}

	return nil
}
