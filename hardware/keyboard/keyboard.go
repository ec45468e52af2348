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

// Package keyboard implements the 8x7 key matrix. Columns are strobed low
// through one PIA port and the rows of any held key in a strobed column
// read back low on the other.
package keyboard

import (
	"fmt"

	"github.com/sevenhills/dragon32/state"
)

// RowPort is the PIA port the matrix rows feed into.
type RowPort interface {
	SetInput(value uint8)
}

// Keyboard is the key matrix. It holds which keys are down and the current
// column strobe, and keeps the row port's input level consistent with both.
type Keyboard struct {
	port RowPort

	// rowsDown has a bit set for every held key in the column
	rowsDown [8]uint8

	// column strobe as last written by the CPU. active low
	strobe uint8
}

// position of a key in the matrix.
type key struct {
	col uint8
	row uint8
}

// matrix gives the position of the keys with a direct character equivalent.
// Shift, break and the arrow keys are addressed by position.
var matrix = map[rune]key{}

func init() {
	for i, r := range "01234567" {
		matrix[r] = key{col: uint8(i), row: 0}
	}
	for i, r := range "89:;,-./" {
		matrix[r] = key{col: uint8(i), row: 1}
	}
	for i, r := range "@ABCDEFG" {
		matrix[r] = key{col: uint8(i), row: 2}
	}
	for i, r := range "HIJKLMNO" {
		matrix[r] = key{col: uint8(i), row: 3}
	}
	for i, r := range "PQRSTUVW" {
		matrix[r] = key{col: uint8(i), row: 4}
	}
	for i, r := range "XYZ" {
		matrix[r] = key{col: uint8(i), row: 5}
	}
	matrix[' '] = key{col: 7, row: 5}
	matrix['\r'] = key{col: 0, row: 6}

	// clear and break
	matrix['\f'] = key{col: 1, row: 6}
	matrix['\x1b'] = key{col: 2, row: 6}
}

// KeyShift is the position of the shift key, for use with HoldKey.
var KeyShift = struct{ Col, Row uint8 }{Col: 7, Row: 6}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type.
func NewKeyboard(port RowPort) *Keyboard {
	k := &Keyboard{port: port, strobe: 0xff}
	k.refresh()
	return k
}

// Snapshot returns a copy of the keyboard in its current state.
func (k *Keyboard) Snapshot() *Keyboard {
	n := *k
	return &n
}

// Plumb reconnects the keyboard to the row port after a snapshot restore.
func (k *Keyboard) Plumb(port RowPort) {
	k.port = port
	k.refresh()
}

// Reset releases every key.
func (k *Keyboard) Reset() {
	k.rowsDown = [8]uint8{}
	k.refresh()
}

// Strobe is the column port hook. The CPU scans the matrix by walking a low
// bit across the columns.
func (k *Keyboard) Strobe(value uint8) {
	k.strobe = value
	k.refresh()
}

// HoldKey presses or releases the key at a matrix position.
func (k *Keyboard) HoldKey(col uint8, row uint8, down bool) {
	if col > 7 || row > 6 {
		return
	}
	if down {
		k.rowsDown[col] |= 1 << row
	} else {
		k.rowsDown[col] &^= 1 << row
	}
	k.refresh()
}

// SetKey presses or releases the key for a character. It returns false for
// characters with no key of their own.
func (k *Keyboard) SetKey(r rune, down bool) bool {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	pos, ok := matrix[r]
	if !ok {
		return false
	}
	k.HoldKey(pos.col, pos.row, down)
	return true
}

// refresh rederives the row port's input level. rows are active low: a held
// key in a strobed column pulls its row down.
func (k *Keyboard) refresh() {
	rows := uint8(0xff)
	for col := 0; col < 8; col++ {
		if k.strobe&(1<<col) == 0 {
			rows &^= k.rowsDown[col]
		}
	}
	if k.port != nil {
		k.port.SetInput(rows)
	}
}

func (k *Keyboard) String() string {
	n := 0
	for _, r := range k.rowsDown {
		for b := r; b != 0; b >>= 1 {
			if b&1 == 1 {
				n++
			}
		}
	}
	return fmt.Sprintf("keyboard: %d held, strobe=%#02x", n, k.strobe)
}

// WriteState appends the keyboard state to the tagged stream.
func (k *Keyboard) WriteState(w *state.Writer) {
	w.Bytes("keyboard/rows", k.rowsDown[:])
	w.Uint8("keyboard/strobe", k.strobe)
}

// ReadState restores state previously written with WriteState. The keyboard
// is untouched on error.
func (k *Keyboard) ReadState(r *state.Reader) error {
	rows := r.Bytes("keyboard/rows")
	strobe := r.Uint8("keyboard/strobe")
	if err := r.Err(); err != nil {
		return fmt.Errorf("keyboard: %w", err)
	}
	if len(rows) != len(k.rowsDown) {
		return fmt.Errorf("keyboard: bad matrix size in state")
	}

	copy(k.rowsDown[:], rows)
	k.strobe = strobe
	k.refresh()
	return nil
}
