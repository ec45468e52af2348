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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/hajimehoshi/go-mp3"
	"github.com/sevenhills/dragon32/logger"
)

type tape struct {
	totalTime  float64 // in seconds
	sampleRate float64

	// data is mono data (taken from the left channel in the case of stereo
	// source files)
	data []float32
}

func loadTape(filename string) (tape, error) {
	p := tape{
		data: make([]float32, 0),
	}

	f, err := os.Open(filename)
	if err != nil {
		return p, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		dec := wav.NewDecoder(f)
		if dec == nil {
			return p, fmt.Errorf("wav: error decoding")
		}

		if !dec.IsValidFile() {
			return p, fmt.Errorf("wav: not a valid wav file")
		}

		logger.Log(logger.Allow, logTag, "loading from wav file")

		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return p, fmt.Errorf("wav: %w", err)
		}
		floatBuf := buf.AsFloat32Buffer()

		// a tape is mono; keep the first channel of whatever the file holds
		p.data = make([]float32, 0, len(floatBuf.Data)/int(dec.NumChans))
		for i := 0; i < len(floatBuf.Data); i += int(dec.NumChans) {
			p.data = append(p.data, floatBuf.Data[i])
		}

		p.sampleRate = float64(dec.SampleRate)

		dur, err := dec.Duration()
		if err != nil {
			return p, fmt.Errorf("wav: %w", err)
		}
		p.totalTime = dur.Seconds()

	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return p, fmt.Errorf("mp3: %w", err)
		}

		logger.Log(logger.Allow, logTag, "loading from mp3 file")

		err = nil
		chunk := make([]byte, 4096)
		for err != io.EOF {
			var chunkLen int
			chunkLen, err = dec.Read(chunk)
			if err != nil && err != io.EOF {
				return p, fmt.Errorf("mp3: %w", err)
			}

			// a decoded frame is four bytes: two 16 bit little endian
			// samples, one per channel. a tape is mono so one channel
			// per frame is enough
			for i := 2; i < chunkLen; i += 4 {
				f := int(chunk[i]) | (int(chunk[i+1]) << 8)

				// recentre the unsigned sample around zero
				if f != 0 {
					f -= 32768
				}

				p.data = append(p.data, float32(f))
			}
		}

		// go-mp3 decodes to stereo 16 bit whatever the source file held
		p.sampleRate = float64(dec.SampleRate())
		p.totalTime = float64(len(p.data)) / p.sampleRate

	default:
		return p, fmt.Errorf("unsupported tape image type: %s", filepath.Ext(filename))
	}

	logger.Logf(logger.Allow, logTag, "sample rate: %0.2fHz", p.sampleRate)
	logger.Logf(logger.Allow, logTag, "total time: %.02fs", p.totalTime)

	return p, nil
}
