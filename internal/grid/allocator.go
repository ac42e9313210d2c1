package grid

import (
	"fmt"

	"github.com/nr-rasched/rasched/internal/ran"
)

// RingSize is the number of future slots the allocator keeps views for. It
// bounds how far ahead a grant may land (k0/k2 plus the Msg3 delta all fit
// well within it).
const RingSize = 40

// SlotAllocation is the scheduling view of a single slot: its resource
// grids and its result lists.
type SlotAllocation struct {
	Slot   ran.SlotPoint
	DLGrid *SlotGrid
	ULGrid *SlotGrid
	Result SchedResult

	// PDCCH bookkeeping owned by the PDCCH allocator.
	CCEsUsed uint32
}

func (s *SlotAllocation) reset(slot ran.SlotPoint) {
	s.Slot = slot
	s.DLGrid.Reset()
	s.ULGrid.Reset()
	s.Result.reset()
	s.CCEsUsed = 0
}

// CellAllocator owns the ring of per-slot allocation views for one cell.
// Index 0 is the current PDCCH (transmit) slot; index k the slot k slots
// later. Only the scheduling thread may touch it.
type CellAllocator struct {
	ring   [RingSize]SlotAllocation
	slotTx ran.SlotPoint
}

// NewCellAllocator builds the ring with grids sized to the cell's BWPs.
func NewCellAllocator(dlCRBs, ulCRBs uint32) *CellAllocator {
	a := &CellAllocator{}
	for i := range a.ring {
		a.ring[i].DLGrid = NewSlotGrid(dlCRBs)
		a.ring[i].ULGrid = NewSlotGrid(ulCRBs)
		a.ring[i].Result.DL.PDCCHs = make([]PDCCHDLInfo, 0, MaxDLPDCCHsPerSlot)
		a.ring[i].Result.DL.ULPDCCHs = make([]PDCCHULInfo, 0, MaxULPDCCHsPerSlot)
		a.ring[i].Result.DL.RARs = make([]RARInfo, 0, MaxRARsPerSlot)
		a.ring[i].Result.UL.PUSCHs = make([]PUSCHConfig, 0, MaxPUSCHsPerSlot)
	}
	return a
}

// SlotIndication advances the allocator to a new transmit slot. Ring
// entries are recycled lazily: a view whose stored slot no longer matches
// is reset on first access.
func (a *CellAllocator) SlotIndication(slotTx ran.SlotPoint) {
	a.slotTx = slotTx
}

// SlotTx returns the current transmit slot.
func (a *CellAllocator) SlotTx() ran.SlotPoint { return a.slotTx }

// Slot returns the allocation view for the slot at the given offset from
// the current transmit slot.
func (a *CellAllocator) Slot(offset int) *SlotAllocation {
	if offset < 0 || offset >= RingSize {
		panic(fmt.Sprintf("grid: slot offset %d outside allocator ring", offset))
	}
	slot := a.slotTx.Add(offset)
	entry := &a.ring[slot.Count()%RingSize]
	if !entry.Slot.Valid() || entry.Slot.Diff(slot) != 0 {
		entry.reset(slot)
	}
	return entry
}
