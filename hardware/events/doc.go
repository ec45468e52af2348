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

// Package events implements the virtual clock that drives every part of the
// emulated machine. Time is measured in ticks. A tick has no relationship to
// wall-clock time; it advances only when the SAM has finished costing a bus
// cycle and never goes backwards.
//
// Deferred actions are represented by the Event type. An event is created once
// by the component that needs it and is then scheduled and rescheduled as
// required. An event is only ever in one queue position at a time -
// scheduling an already pending event moves it rather than duplicating it.
//
// Events are run strictly in order of due tick. Events due on the same tick
// run in the order they were scheduled. A payload may reschedule its own event
// (the normal idiom for periodic work) without disturbing other pending
// events.
//
// Queues are grouped by Domain. The machine domain is advanced by the SAM as
// part of the bus cycle. The user-interface domain is advanced by whatever
// frontend is attached and exists so that housekeeping events never interleave
// with machine time.
package events
