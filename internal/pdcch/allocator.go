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

// Package pdcch allocates DCI opportunities in a slot's PDCCH region
// against a fixed CCE budget. Exhaustion surfaces as a retryable
// allocation error; the caller postpones to a later slot.
package pdcch

import (
	"github.com/rs/zerolog"

	"github.com/nr-rasched/rasched/internal/grid"
	"github.com/nr-rasched/rasched/internal/ran"
)

// errNoCCEs reports a slot whose CCE budget cannot fit the candidate.
var errNoCCEs = grid.NewError("CCE budget exhausted", true)

// Allocator is the contract the RA scheduler consumes. Errors are
// classified through grid.IsRetryable: a retryable failure means the same
// allocation may succeed in a later slot.
type Allocator interface {
	// AllocDLCommon allocates a downlink DCI opportunity in a common
	// search space.
	AllocDLCommon(alloc *grid.SlotAllocation, rnti ran.RNTI, ssID uint8, aggrLvl uint8) (*grid.PDCCHDLInfo, error)
	// AllocULCommon allocates an uplink (fallback DCI 0_0) opportunity in
	// a common search space.
	AllocULCommon(alloc *grid.SlotAllocation, rnti ran.RNTI, ssID uint8, aggrLvl uint8) (*grid.PDCCHULInfo, error)
}

// CCEAllocator grants DCI opportunities while the slot's CCE budget lasts.
// It does not model candidate positions within the CORESET; the budget is
// the binding constraint for RA traffic.
type CCEAllocator struct {
	budget uint32
	logger zerolog.Logger
}

// NewCCEAllocator builds an allocator with the cell's per-slot CCE budget.
func NewCCEAllocator(cceBudget uint32, logger zerolog.Logger) *CCEAllocator {
	return &CCEAllocator{budget: cceBudget, logger: logger}
}

func (a *CCEAllocator) hasCCEs(alloc *grid.SlotAllocation, aggrLvl uint8) bool {
	return alloc.CCEsUsed+uint32(aggrLvl) <= a.budget
}

// AllocDLCommon implements Allocator.
func (a *CCEAllocator) AllocDLCommon(alloc *grid.SlotAllocation, rnti ran.RNTI, ssID uint8, aggrLvl uint8) (*grid.PDCCHDLInfo, error) {
	if alloc.Result.DL.PDCCHsFull() {
		return nil, grid.ErrListFull
	}
	if !a.hasCCEs(alloc, aggrLvl) {
		a.logger.Debug().
			Stringer("slot", alloc.Slot).
			Stringer("rnti", rnti).
			Uint32("cces_used", alloc.CCEsUsed).
			Msg("DL PDCCH exhausted")
		return nil, errNoCCEs
	}
	alloc.CCEsUsed += uint32(aggrLvl)
	alloc.Result.DL.PDCCHs = append(alloc.Result.DL.PDCCHs, grid.PDCCHDLInfo{
		RNTI:             rnti,
		SearchSpaceID:    ssID,
		AggregationLevel: aggrLvl,
	})
	return &alloc.Result.DL.PDCCHs[len(alloc.Result.DL.PDCCHs)-1], nil
}

// AllocULCommon implements Allocator.
func (a *CCEAllocator) AllocULCommon(alloc *grid.SlotAllocation, rnti ran.RNTI, ssID uint8, aggrLvl uint8) (*grid.PDCCHULInfo, error) {
	if alloc.Result.DL.ULPDCCHsFull() {
		return nil, grid.ErrListFull
	}
	if !a.hasCCEs(alloc, aggrLvl) {
		a.logger.Debug().
			Stringer("slot", alloc.Slot).
			Stringer("rnti", rnti).
			Uint32("cces_used", alloc.CCEsUsed).
			Msg("UL PDCCH exhausted")
		return nil, errNoCCEs
	}
	alloc.CCEsUsed += uint32(aggrLvl)
	alloc.Result.DL.ULPDCCHs = append(alloc.Result.DL.ULPDCCHs, grid.PDCCHULInfo{
		RNTI:             rnti,
		SearchSpaceID:    ssID,
		AggregationLevel: aggrLvl,
	})
	return &alloc.Result.DL.ULPDCCHs[len(alloc.Result.DL.ULPDCCHs)-1], nil
}
