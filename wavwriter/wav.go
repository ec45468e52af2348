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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirety, and written to disk
// only when writing ends. It is therefore probably only suitable for short
// recordings.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/sevenhills/dragon32/logger"
	"github.com/youpy/go-wav"
)

// WavWriter accumulates 8-bit mono samples and writes them out as a WAV
// file.
type WavWriter struct {
	filename   string
	sampleRate uint32
	buffer     []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate uint32) *WavWriter {
	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]wav.Sample, 0),
	}
}

// SetLevel appends one sample.
func (aw *WavWriter) SetLevel(level uint8) {
	s := wav.Sample{}
	s.Values[0] = int(level)
	aw.buffer = append(aw.buffer, s)
}

// NumSamples returns the number of samples buffered so far.
func (aw *WavWriter) NumSamples() int {
	return len(aw.buffer)
}

// End writes the buffered samples to disk.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 1, aw.sampleRate, 8)
	if enc == nil {
		return fmt.Errorf("wavwriter: %s", "bad parameters for wav encoding")
	}

	logger.Logf(logger.Allow, "wavwriter", "writing audio to %s", aw.filename)
	if err := enc.WriteSamples(aw.buffer); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	return nil
}
