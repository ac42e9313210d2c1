package grid

import (
	"github.com/nr-rasched/rasched/internal/ran"
)

// Grant describes one contiguous time-frequency allocation inside a slot.
type Grant struct {
	Symbols ran.SymbolRange
	CRBs    ran.CRBInterval
}

// SlotGrid tracks used resources of one direction (DL or UL) in one slot,
// one CRB bitmap per OFDM symbol. Only the single scheduling thread ever
// touches a SlotGrid.
type SlotGrid struct {
	symbols [ran.NofSymbolsPerSlot]CRBBitmap
	scratch CRBBitmap // reused by UsedCRBs to avoid per-call allocation
}

// NewSlotGrid returns an empty grid covering nofCRBs resource blocks.
func NewSlotGrid(nofCRBs uint32) *SlotGrid {
	g := &SlotGrid{scratch: NewCRBBitmap(nofCRBs)}
	for i := range g.symbols {
		g.symbols[i] = NewCRBBitmap(nofCRBs)
	}
	return g
}

// Fill marks the grant's resources used.
func (g *SlotGrid) Fill(grant Grant) {
	for s := grant.Symbols.Start; s < grant.Symbols.Stop; s++ {
		g.symbols[s].SetRange(grant.CRBs)
	}
}

// Collides reports whether any resource of the grant is already used.
func (g *SlotGrid) Collides(grant Grant) bool {
	for s := grant.Symbols.Start; s < grant.Symbols.Stop; s++ {
		if g.symbols[s].AnySet(grant.CRBs) {
			return true
		}
	}
	return false
}

// UsedCRBs returns the union of used CRBs over the symbol range. The
// returned bitmap is only valid until the next UsedCRBs call on this grid.
func (g *SlotGrid) UsedCRBs(symbols ran.SymbolRange) CRBBitmap {
	g.scratch.Reset()
	for s := symbols.Start; s < symbols.Stop; s++ {
		g.scratch.Or(g.symbols[s])
	}
	return g.scratch
}

// Reset frees every resource in the grid.
func (g *SlotGrid) Reset() {
	for i := range g.symbols {
		g.symbols[i].Reset()
	}
}
