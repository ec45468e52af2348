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

package events

import (
	"fmt"
	"strings"
)

// Tick is the unit of virtual time. One tick corresponds to one sub-cycle of
// the reference crystal, of which a slow CPU cycle takes sixteen.
type Tick int64

// Domain identifies an independent queue and tick counter.
type Domain int

// List of valid Domain values.
const (
	MachineDomain Domain = iota
	UIDomain
	numDomains
)

func (d Domain) String() string {
	switch d {
	case MachineDomain:
		return "machine"
	case UIDomain:
		return "ui"
	}
	panic("unknown event domain")
}

// Event is a single deferred action. Create one with NewEvent and keep it for
// the lifetime of the owning component, rescheduling as required.
type Event struct {
	label   string
	payload func()

	// fields below are owned by the scheduler. index is the position in the
	// queue's heap, or notQueued.
	due   Tick
	seq   uint64
	index int
	queue *queue
}

const notQueued = -1

// NewEvent is the preferred method of initialisation for the Event type. The
// label identifies the event in queue listings and in snapshots.
func NewEvent(label string, payload func()) *Event {
	return &Event{
		label:   label,
		payload: payload,
		index:   notQueued,
	}
}

// Label returns the name the event was created with.
func (ev *Event) Label() string {
	return ev.label
}

// Pending returns true if the event is currently queued.
func (ev *Event) Pending() bool {
	return ev.index != notQueued
}

func (ev *Event) String() string {
	if !ev.Pending() {
		return fmt.Sprintf("%s -> not queued", ev.label)
	}
	return fmt.Sprintf("%s -> %d", ev.label, ev.due)
}

// queue is the pending event heap and tick counter for one domain.
type queue struct {
	now    Tick
	events []*Event
	seq    uint64
}

// Scheduler groups the event queues for every domain. The zero value is not
// usable; use NewScheduler.
type Scheduler struct {
	queues [numDomains]*queue
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type.
func NewScheduler() *Scheduler {
	sch := &Scheduler{}
	for i := range sch.queues {
		sch.queues[i] = &queue{}
	}
	return sch
}

// Now returns the current tick for the domain.
func (sch *Scheduler) Now(d Domain) Tick {
	return sch.queues[d].now
}

// Schedule queues the event to fire at the absolute tick given. If the event
// is already pending, in any domain, it is moved rather than duplicated.
// Events scheduled for the same tick fire in the order they were scheduled.
func (sch *Scheduler) Schedule(d Domain, ev *Event, due Tick) {
	if ev.Pending() {
		sch.Cancel(ev)
	}

	q := sch.queues[d]
	q.seq++

	ev.due = due
	ev.seq = q.seq
	ev.queue = q

	q.events = append(q.events, ev)
	ev.index = len(q.events) - 1
	q.up(ev.index)
}

// ScheduleAfter queues the event to fire delta ticks from the domain's
// current tick.
func (sch *Scheduler) ScheduleAfter(d Domain, ev *Event, delta Tick) {
	sch.Schedule(d, ev, sch.queues[d].now+delta)
}

// Cancel removes the event from its queue without running the payload. It is
// a no-op if the event is not pending.
func (sch *Scheduler) Cancel(ev *Event) {
	if !ev.Pending() {
		return
	}
	ev.queue.remove(ev.index)
	ev.queue = nil
	ev.index = notQueued
}

// Advance moves the domain's tick counter forward by delta, running every
// event that falls due on the way. Payloads run strictly in due-tick order,
// FIFO among equals. The counter stops on each due tick as it passes, so a
// payload that reschedules itself relative to the current tick sees the tick
// it fired at, not the far end of the advance. An event scheduled by a
// payload runs in the same pass if it falls due before the advance ends.
func (sch *Scheduler) Advance(d Domain, delta Tick) {
	q := sch.queues[d]
	target := q.now + delta

	for len(q.events) > 0 && q.events[0].due <= target {
		ev := q.events[0]
		if ev.due > q.now {
			q.now = ev.due
		}
		q.remove(0)
		ev.queue = nil
		ev.index = notQueued
		ev.payload()
	}

	q.now = target
}

// RunDue runs every event due at or before the domain's current tick without
// moving the clock. Rarely needed directly; Advance covers the common case.
func (sch *Scheduler) RunDue(d Domain) {
	q := sch.queues[d]
	for len(q.events) > 0 && q.events[0].due <= q.now {
		ev := q.events[0]
		q.remove(0)
		ev.queue = nil
		ev.index = notQueued
		ev.payload()
	}
}

// PendingEvent describes one queued event for snapshot purposes. Delta is
// relative to the domain's tick at the time of the snapshot.
type PendingEvent struct {
	Label string
	Delta Tick
}

// Pending lists the queued events for the domain in firing order, with due
// ticks converted to deltas from the current tick.
func (sch *Scheduler) Pending(d Domain) []PendingEvent {
	q := sch.queues[d]

	// copy the heap and drain the copy in firing order
	c := queue{now: q.now, events: make([]*Event, len(q.events))}
	copy(c.events, q.events)

	l := make([]PendingEvent, 0, len(c.events))
	for len(c.events) > 0 {
		ev := c.events[0]
		c.removeShadow(0)
		l = append(l, PendingEvent{Label: ev.label, Delta: ev.due - q.now})
	}

	return l
}

func (sch *Scheduler) String() string {
	s := strings.Builder{}
	for d := Domain(0); d < numDomains; d++ {
		for _, p := range sch.Pending(d) {
			s.WriteString(fmt.Sprintf("%s: %s -> +%d\n", d, p.Label, p.Delta))
		}
	}
	return s.String()
}

// heap ordering: earliest due tick first, earliest scheduled first among
// equal ticks.
func (q *queue) less(i, j int) bool {
	if q.events[i].due != q.events[j].due {
		return q.events[i].due < q.events[j].due
	}
	return q.events[i].seq < q.events[j].seq
}

func (q *queue) swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
	q.events[i].index = i
	q.events[j].index = j
}

func (q *queue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *queue) down(i int) {
	for {
		l := 2*i + 1
		if l >= len(q.events) {
			break
		}
		c := l
		if r := l + 1; r < len(q.events) && q.less(r, l) {
			c = r
		}
		if !q.less(c, i) {
			break
		}
		q.swap(i, c)
		i = c
	}
}

func (q *queue) remove(i int) {
	last := len(q.events) - 1
	if i != last {
		q.swap(i, last)
	}
	q.events = q.events[:last]
	if i != last {
		q.down(i)
		q.up(i)
	}
}

// removeShadow is remove() for a copied heap. It must not touch the index
// field of the events, which still refer to positions in the live heap.
func (q *queue) removeShadow(i int) {
	last := len(q.events) - 1
	q.events[i] = q.events[last]
	q.events = q.events[:last]

	// sift down without updating indexes
	for {
		l := 2*i + 1
		if l >= len(q.events) {
			break
		}
		c := l
		if r := l + 1; r < len(q.events) && q.less(r, l) {
			c = r
		}
		if !q.less(c, i) {
			break
		}
		q.events[i], q.events[c] = q.events[c], q.events[i]
		i = c
	}
}
