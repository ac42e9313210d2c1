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

// Package executor drives the scheduling thread: one goroutine, pinned to
// an OS thread (and optionally a CPU core on Linux), invoking the slot
// processor at the numerology's slot cadence. The scheduler itself is
// single-threaded; the executor is the only place that knows about time.
package executor

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/nr-rasched/rasched/internal/ran"
)

// SlotProcessor is the per-slot work the executor drives. RunSlot is
// always invoked from the same pinned goroutine.
type SlotProcessor interface {
	RunSlot(slotTx ran.SlotPoint)
}

// Executor owns the slot clock for one cell.
type Executor struct {
	proc   SlotProcessor
	scs    ran.SCS
	core   int // target CPU core, -1 to skip pinning
	logger zerolog.Logger
}

// New builds an executor. core < 0 disables CPU pinning.
func New(proc SlotProcessor, scs ran.SCS, core int, logger zerolog.Logger) *Executor {
	return &Executor{
		proc:   proc,
		scs:    scs,
		core:   core,
		logger: logger.With().Str("component", "executor").Logger(),
	}
}

// SlotDuration returns the wall-clock duration of one slot for the
// executor's numerology (1 ms at 15 kHz, halving per numerology step).
func (e *Executor) SlotDuration() time.Duration {
	return time.Millisecond >> e.scs.Mu()
}

// Run drives the slot processor from startSlot for nofSlots slots, or until
// the context is cancelled when nofSlots is zero. It blocks; callers run it
// in a dedicated goroutine. The goroutine stays locked to its OS thread for
// the whole run so the affinity setting holds.
func (e *Executor) Run(ctx context.Context, startSlot ran.SlotPoint, nofSlots int) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if e.core >= 0 {
		setAffinity(e.core, e.logger)
	}

	ticker := time.NewTicker(e.SlotDuration())
	defer ticker.Stop()

	e.logger.Info().
		Stringer("start_slot", startSlot).
		Dur("slot_duration", e.SlotDuration()).
		Int("nof_slots", nofSlots).
		Msg("slot clock started")

	slot := startSlot
	for n := 0; nofSlots == 0 || n < nofSlots; n++ {
		select {
		case <-ctx.Done():
			e.logger.Info().Stringer("slot", slot).Msg("slot clock stopped")
			return ctx.Err()
		case <-ticker.C:
			e.proc.RunSlot(slot)
			slot = slot.Add(1)
		}
	}

	e.logger.Info().Stringer("slot", slot).Msg("slot clock finished")
	return nil
}
