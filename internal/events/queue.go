/*
rasched — 5G NR MAC random access scheduler in Go
Copyright (C) 2026  The rasched authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package events provides the slot-synchronized hand-off between the
// radio-facing ingestion thread and the scheduling thread. Producers only
// ever append; the consumer makes a whole slot's worth of events visible
// at once with SlotIndication, so exactly one processing pass sees each
// event, one slot boundary after it was pushed at the latest.
package events

import "sync"

// Queue is a double-buffered event list. Push may be called from any
// thread; SlotIndication and Events must only be called from the consuming
// (scheduling) thread.
type Queue[T any] struct {
	mu      sync.Mutex
	pending []T
	current []T
}

// NewQueue pre-sizes both buffers to the expected per-slot event count.
func NewQueue[T any](sizeHint int) *Queue[T] {
	return &Queue[T]{
		pending: make([]T, 0, sizeHint),
		current: make([]T, 0, sizeHint),
	}
}

// Push buffers an event for the next slot boundary. It never blocks on the
// consumer and performs no scheduling work.
func (q *Queue[T]) Push(ev T) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// SlotIndication swaps the pending buffer in for consumption. Events pushed
// after the swap become visible at the next boundary. The previous slot's
// events are discarded; callers drain Events before the next indication.
func (q *Queue[T]) SlotIndication() {
	q.mu.Lock()
	q.current = q.current[:0]
	q.pending, q.current = q.current, q.pending
	q.mu.Unlock()
}

// Events returns the events made visible by the last SlotIndication. The
// slice is owned by the queue and valid until the next SlotIndication.
func (q *Queue[T]) Events() []T {
	return q.current
}
