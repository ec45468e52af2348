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

// Package random should be used in preference to the math/rand package when
// a random number is required inside the emulation.
//
// Predictable() returns numbers seeded by the current machine tick. It
// returns the same number for the same tick, so replaying a machine from a
// restored state sees the same sequence.
//
// If the same random numbers are required every single run then set
// ZeroSeed to true. This is useful for testing purposes.
package random

import (
	"math/rand"
	"time"

	"github.com/sevenhills/dragon32/hardware/events"
)

// the base seed for all random numbers
var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is a random number generator that is sensitive to time within the
// emulation.
type Random struct {
	sch *events.Scheduler

	// use zero seed rather than the random base seed. this is only really
	// useful for tests where random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(sch *events.Scheduler) *Random {
	return &Random{sch: sch}
}

// new RNG from the standard library, seeded from the machine clock
func (rnd *Random) rand() *rand.Rand {
	tick := int64(rnd.sch.Now(events.MachineDomain))
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(tick))
	}
	return rand.New(rand.NewSource(baseSeed + tick))
}

// Predictable returns a random number between 0 and n, seeded by the
// machine clock. The same tick always produces the same number.
func (rnd *Random) Predictable(n int) int {
	return rnd.rand().Intn(n)
}

// Stream returns a source of random bytes seeded by the machine clock.
// Successive calls at the same tick return identical streams.
func (rnd *Random) Stream() func() uint8 {
	r := rnd.rand()
	return func() uint8 {
		return uint8(r.Intn(256))
	}
}
