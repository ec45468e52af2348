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

	"github.com/sevenhills/dragon32/hardware/cassette"
	"github.com/sevenhills/dragon32/hardware/events"
	"github.com/sevenhills/dragon32/hardware/keyboard"
	"github.com/sevenhills/dragon32/hardware/memory"
	"github.com/sevenhills/dragon32/hardware/pia"
	"github.com/sevenhills/dragon32/hardware/sam"
	"github.com/sevenhills/dragon32/hardware/vdg"
	"github.com/sevenhills/dragon32/logger"
	"github.com/sevenhills/dragon32/random"
)

// CPU is the processor as the rest of the machine needs to see it. Knowledge
// of the instruction set stays on the other side of this interface.
type CPU interface {
	// Cycle is called at the end of every bus cycle, after the machine
	// clock has advanced by the cycle's cost.
	Cycle(ncycles events.Tick, isRead bool, addr uint16)

	// the two interrupt request lines, driven by the PIAs
	SetIRQ(assert bool)
	SetFIRQ(assert bool)
}

// ROM slots, in the order the multiplexer's source codes select them.
const (
	ROMBasic = iota
	ROMExtended
	ROMCartridge
	numROMs
)

// size of one RAM bank. two banks of 16K, strobed separately.
const ramBankSize = 0x4000

// Dragon is the main container for the emulated components of the machine.
type Dragon struct {
	Sch *events.Scheduler
	SAM *sam.SAM

	PIA0 *pia.PIA
	PIA1 *pia.PIA

	RAM *memory.RAM
	ROM [numROMs]*memory.ROM

	VDG      *vdg.VDG
	Keyboard *keyboard.Keyboard
	Cassette *cassette.Cassette

	cpu CPU

	// Rand is the emulation's random number source
	Rand *random.Random

	// sound multiplexer select lines, as driven by the first PIA. nothing
	// is mixed but the selection is observable machine state
	muxSel uint8
}

// NewDragon is the preferred method of initialisation for the Dragon type.
// A nil CPU is allowed; the bus can then be driven directly with Read and
// Write, which is how the tests use it.
func NewDragon(cpu CPU) *Dragon {
	d := &Dragon{cpu: cpu}

	d.Sch = events.NewScheduler()
	d.Rand = random.NewRandom(d.Sch)

	// the top bit of the first PIA's A port is tied low on the board
	d.PIA0 = pia.NewPIA("pia0", 0x7f, 0xff)
	d.PIA1 = pia.NewPIA("pia1", 0xff, 0xff)

	d.RAM = memory.NewRAM(ramBankSize)

	d.SAM = sam.NewSAM(d.Sch, cpu, nil)
	d.VDG = vdg.NewVDG(d.Sch, d.SAM)
	d.SAM.Plumb(d.Sch, cpu, d.VDG)

	d.Keyboard = keyboard.NewKeyboard(&d.PIA0.A)
	d.Cassette = cassette.NewCassette(d.Sch, &d.PIA1.A)

	d.wireHooks()

	return d
}

// wireHooks attaches the fixed peripheral wiring of the board to the PIA
// ports and interrupt lines.
func (d *Dragon) wireHooks() {
	d.PIA0.A.SetHook(func(v uint8) { d.muxSel = v >> 2 & 0x03 })
	d.PIA0.B.SetHook(d.Keyboard.Strobe)
	d.PIA1.A.SetHook(d.Cassette.Hook)
	d.PIA1.B.SetHook(d.VDG.SetMode)

	d.PIA0.SetLineHook(func(v bool) {
		if d.cpu != nil {
			d.cpu.SetIRQ(v)
		}
	})
	d.PIA1.SetLineHook(func(v bool) {
		if d.cpu != nil {
			d.cpu.SetFIRQ(v)
		}
	})
}

// AttachROM loads a ROM image from disk into a slot.
func (d *Dragon) AttachROM(slot int, filename string) error {
	if slot < 0 || slot >= numROMs {
		return fmt.Errorf("machine: no such rom slot: %d", slot)
	}

	labels := [numROMs]string{"basic", "extended", "cartridge"}
	rom, err := memory.NewROMFromFile(labels[slot], filename)
	if err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	d.ROM[slot] = rom
	logger.Logf(logger.Allow, "machine", "%s", rom.String())
	return nil
}

// Reset emulates the reset button. A hard reset also clears RAM, as close
// to a power cycle as an emulation gets.
func (d *Dragon) Reset(hard bool) {
	d.SAM.Reset()
	d.PIA0.Reset()
	d.PIA1.Reset()
	d.VDG.Reset()
	d.Keyboard.Reset()
	d.Cassette.SetMotor(false)

	// real parts come up with garbage in them, not zeroes
	if hard {
		d.RAM.Fill(d.Rand.Stream())
	}

	logger.Logf(logger.Allow, "machine", "reset (hard=%v)", hard)
}

// Read performs one CPU read cycle: the multiplexer classifies and costs
// the access, the clock advances, and the byte comes back from whichever
// device was selected.
func (d *Dragon) Read(addr uint16) uint8 {
	acc := d.SAM.MemCycle(addr, true)

	switch acc.Source {
	case sam.SourceRAM:
		return d.RAM.Read(acc.Phys, acc.RAS1)
	case sam.SourceROM0:
		return d.ROM[ROMBasic].Read(acc.Phys)
	case sam.SourceROM1:
		return d.ROM[ROMExtended].Read(acc.Phys)
	case sam.SourceROM2:
		return d.ROM[ROMCartridge].Read(acc.Phys)
	case sam.SourceIO0:
		return d.PIA0.ReadRegister(addr)
	case sam.SourceIO1:
		return d.PIA1.ReadRegister(addr)
	}

	// unpopulated device selects float high
	return 0xff
}

// Write performs one CPU write cycle.
func (d *Dragon) Write(addr uint16, data uint8) {
	acc := d.SAM.MemCycle(addr, false)

	switch acc.Source {
	case sam.SourceRAM:
		d.RAM.Write(acc.Phys, acc.RAS1, data)
	case sam.SourceIO0:
		d.PIA0.WriteRegister(addr, data)
	case sam.SourceIO1:
		d.PIA1.WriteRegister(addr, data)
	}
}

// Idle advances the machine clock without any bus traffic, running due
// events. Useful when no CPU is attached.
func (d *Dragon) Idle(ticks events.Tick) {
	d.Sch.Advance(events.MachineDomain, ticks)
}

// MuxSelect returns the sound multiplexer selection currently driven by the
// first PIA.
func (d *Dragon) MuxSelect() uint8 {
	return d.muxSel
}

func (d *Dragon) String() string {
	return fmt.Sprintf("%s\n%s\n%s\n%s", d.SAM.String(), d.PIA0.String(), d.PIA1.String(), d.VDG.String())
}
