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
	"fmt"

	"github.com/sevenhills/dragon32/hardware/clocks"
	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/logger"
	"github.com/sevenhills/dragon32/state"
	"github.com/sevenhills/dragon32/wavwriter"
)

const logTag = "cassette"

// rate used for output recordings when no tape image gives one.
const defaultRate = 9600.0

// Port is the PIA port the cassette input line arrives on.
type Port interface {
	SetInput(value uint8)
	SignalEdge(rising bool)
}

// hook bits on the cassette PIA port.
const (
	// motor relay
	hookMotor = 0x01

	// the six DAC bits that carry the output signal
	hookDACShift = 2
)

// Cassette is the tape deck. While the motor relay is closed it replays a
// loaded tape image one sample at a time through scheduler events, turning
// zero crossings into edges on the PIA port, and optionally records the
// level the CPU is driving out through the DAC.
type Cassette struct {
	sch  *events.Scheduler
	port Port

	tape tape
	pos  int

	ticksPerSample events.Tick

	motor bool
	level bool

	// level last written to the DAC bits by the CPU
	outLevel uint8

	rec *wavwriter.WavWriter

	sample *events.Event
}

// NewCassette is the preferred method of initialisation for the Cassette
// type.
func NewCassette(sch *events.Scheduler, port Port) *Cassette {
	c := &Cassette{sch: sch, port: port}
	c.sample = events.NewEvent("cassette/sample", c.onSample)
	c.setRate(defaultRate)
	return c
}

func (c *Cassette) setRate(rate float64) {
	c.ticksPerSample = events.Tick(clocks.CrystalHz/rate + 0.5)
}

// Load reads a tape image from disk. The motor state is unchanged; a
// playing tape switches to the new image from its beginning.
func (c *Cassette) Load(filename string) error {
	t, err := loadTape(filename)
	if err != nil {
		return fmt.Errorf("cassette: %w", err)
	}
	c.tape = t
	c.pos = 0
	c.setRate(t.sampleRate)
	return nil
}

// Rewind returns the tape to its beginning.
func (c *Cassette) Rewind() {
	c.pos = 0
}

// Position returns how far into the tape the deck is, in seconds.
func (c *Cassette) Position() float64 {
	if c.tape.sampleRate == 0 {
		return 0
	}
	return float64(c.pos) / c.tape.sampleRate
}

// Motor returns whether the motor relay is closed.
func (c *Cassette) Motor() bool {
	return c.motor
}

// Hook is the PIA port hook. Bit 0 is the motor relay and bits 2 to 7 the
// DAC output level.
func (c *Cassette) Hook(value uint8) {
	c.outLevel = value >> hookDACShift
	c.SetMotor(value&hookMotor == hookMotor)
}

// SetMotor opens or closes the motor relay. Closing it starts the sample
// events; opening it cancels them, leaving the tape position where it is.
func (c *Cassette) SetMotor(on bool) {
	if on == c.motor {
		return
	}
	c.motor = on

	if on {
		logger.Logf(logger.Allow, logTag, "motor on at %.02fs", c.Position())
		c.sch.ScheduleAfter(events.MachineDomain, c.sample, c.ticksPerSample)
	} else {
		logger.Log(logger.Allow, logTag, "motor off")
		c.sch.Cancel(c.sample)
	}
}

// StartRecording begins capturing the DAC output level, one sample per
// sample period while the motor is on. The file is written by EndRecording.
func (c *Cassette) StartRecording(filename string) {
	rate := c.tape.sampleRate
	if rate == 0 {
		rate = defaultRate
	}
	c.rec = wavwriter.New(filename, uint32(rate))
	logger.Logf(logger.Allow, logTag, "recording to %s", filename)
}

// EndRecording writes the captured samples to disk.
func (c *Cassette) EndRecording() error {
	if c.rec == nil {
		return fmt.Errorf("cassette: not recording")
	}
	err := c.rec.End()
	c.rec = nil
	if err != nil {
		return fmt.Errorf("cassette: %w", err)
	}
	return nil
}

// onSample is the sample event payload.
func (c *Cassette) onSample() {
	if c.rec != nil {
		// centre the six DAC bits in the 8-bit sample range
		c.rec.SetLevel(c.outLevel << 2)
	}

	if c.pos < len(c.tape.data) {
		s := c.tape.data[c.pos]
		c.pos++

		level := s >= 0
		if level != c.level {
			c.level = level
			if level {
				c.port.SetInput(0xff)
			} else {
				c.port.SetInput(0xfe)
			}
			c.port.SignalEdge(level)
		}
	}

	if c.motor {
		c.sch.ScheduleAfter(events.MachineDomain, c.sample, c.ticksPerSample)
	}
}

// SampleEvent returns the event that delivers the next tape sample, so the
// machine can requeue it when restoring a saved state.
func (c *Cassette) SampleEvent() *events.Event {
	return c.sample
}

// Snapshot returns a copy of the cassette in its current state. Recording
// state stays with the live deck.
func (c *Cassette) Snapshot() *Cassette {
	n := *c
	n.rec = nil
	return &n
}

// Plumb reconnects the cassette to the scheduler and port after a snapshot
// restore.
func (c *Cassette) Plumb(sch *events.Scheduler, port Port) {
	c.sch = sch
	c.port = port
	c.sample = events.NewEvent("cassette/sample", c.onSample)
}

func (c *Cassette) String() string {
	return fmt.Sprintf("cassette: %.02fs of %.02fs, motor=%v", c.Position(), c.tape.totalTime, c.motor)
}

// WriteState appends the deck's state to the tagged stream. The tape image
// itself is not saved, only the position in it.
func (c *Cassette) WriteState(w *state.Writer) {
	w.Int64("cassette/pos", int64(c.pos))
	w.Bool("cassette/motor", c.motor)
	w.Bool("cassette/level", c.level)
	w.Uint8("cassette/out", c.outLevel)
}

// ReadState restores state previously written with WriteState. The deck is
// untouched on error.
func (c *Cassette) ReadState(r *state.Reader) error {
	pos := r.Int64("cassette/pos")
	motor := r.Bool("cassette/motor")
	level := r.Bool("cassette/level")
	out := r.Uint8("cassette/out")
	if err := r.Err(); err != nil {
		return fmt.Errorf("cassette: %w", err)
	}

	c.pos = int(pos)
	c.motor = motor
	c.level = level
	c.outLevel = out
	return nil
}
