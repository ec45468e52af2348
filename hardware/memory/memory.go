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

package memory

import (
	"fmt"
	"os"

	"github.com/sevenhills/dragon32/state"
)

// RAM is the dynamic memory behind the multiplexer. It holds two banks, one
// per row-address strobe. In the 64K configuration only the first bank is
// strobed and it covers the whole physical range.
type RAM struct {
	banks [2][]uint8
}

// NewRAM is the preferred method of initialisation for the RAM type.
// bankSize must be a power of two.
func NewRAM(bankSize int) *RAM {
	r := &RAM{}
	r.banks[0] = make([]uint8, bankSize)
	r.banks[1] = make([]uint8, bankSize)
	return r
}

// Snapshot returns a copy of RAM in its current state.
func (r *RAM) Snapshot() *RAM {
	n := &RAM{}
	for b := range r.banks {
		n.banks[b] = make([]uint8, len(r.banks[b]))
		copy(n.banks[b], r.banks[b])
	}
	return n
}

// Fill sets every byte in both banks from the source function. Real parts
// do not power up zeroed.
func (r *RAM) Fill(src func() uint8) {
	for b := range r.banks {
		for i := range r.banks[b] {
			r.banks[b][i] = src()
		}
	}
}

// Clear sets every byte in both banks to zero.
func (r *RAM) Clear() {
	for b := range r.banks {
		for i := range r.banks[b] {
			r.banks[b][i] = 0
		}
	}
}

func (r *RAM) bank(ras1 bool) []uint8 {
	if ras1 {
		return r.banks[1]
	}
	return r.banks[0]
}

// Read returns the byte at the translated physical address in the strobed
// bank. Addresses wrap at the bank size, as unconnected address lines do.
func (r *RAM) Read(phys uint32, ras1 bool) uint8 {
	b := r.bank(ras1)
	return b[int(phys)&(len(b)-1)]
}

// Write stores a byte at the translated physical address in the strobed
// bank.
func (r *RAM) Write(phys uint32, ras1 bool, data uint8) {
	b := r.bank(ras1)
	b[int(phys)&(len(b)-1)] = data
}

func (r *RAM) String() string {
	return fmt.Sprintf("ram: 2x%dk", len(r.banks[0])/1024)
}

// WriteState appends the RAM contents to the tagged stream.
func (r *RAM) WriteState(w *state.Writer) {
	w.Bytes("ram/bank0", r.banks[0])
	w.Bytes("ram/bank1", r.banks[1])
}

// ReadState restores RAM contents previously written with WriteState. The
// RAM is untouched on error, including on a bank size mismatch.
func (r *RAM) ReadState(rd *state.Reader) error {
	b0 := rd.Bytes("ram/bank0")
	b1 := rd.Bytes("ram/bank1")
	if err := rd.Err(); err != nil {
		return fmt.Errorf("ram: %w", err)
	}
	if len(b0) != len(r.banks[0]) || len(b1) != len(r.banks[1]) {
		return fmt.Errorf("ram: state is for a different memory size")
	}
	copy(r.banks[0], b0)
	copy(r.banks[1], b1)
	return nil
}

// ROM is an 8K read-only device selected by one of the multiplexer's ROM
// source codes.
type ROM struct {
	Label string
	data  []uint8
}

// ROMSize is the size of the address window each ROM select covers.
const ROMSize = 0x2000

// NewROM is the preferred method of initialisation for the ROM type. Images
// shorter than the select window are allowed and repeat through it; longer
// images are truncated.
func NewROM(label string, data []uint8) *ROM {
	r := &ROM{Label: label}
	if len(data) > ROMSize {
		data = data[:ROMSize]
	}
	r.data = make([]uint8, len(data))
	copy(r.data, data)
	return r
}

// NewROMFromFile loads a ROM image from disk.
func NewROMFromFile(label string, filename string) (*ROM, error) {
	d, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("rom: %s: %w", label, err)
	}
	if len(d) == 0 {
		return nil, fmt.Errorf("rom: %s: empty image", label)
	}
	return NewROM(label, d), nil
}

// Read returns the byte at the offset into the ROM image. An unpopulated
// ROM reads as 0xff, like a floating data bus.
func (r *ROM) Read(offset uint32) uint8 {
	if r == nil || len(r.data) == 0 {
		return 0xff
	}
	return r.data[int(offset)%len(r.data)]
}

func (r *ROM) String() string {
	return fmt.Sprintf("rom: %s (%d bytes)", r.Label, len(r.data))
}
