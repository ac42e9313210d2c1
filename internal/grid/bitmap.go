package grid

import (
	"math/bits"

	"github.com/nr-rasched/rasched/internal/ran"
)

const wordBits = 64

// CRBBitmap tracks used common resource blocks, one bit per CRB.
type CRBBitmap struct {
	words []uint64
	size  uint32
}

// NewCRBBitmap returns an all-free bitmap covering size CRBs.
func NewCRBBitmap(size uint32) CRBBitmap {
	return CRBBitmap{words: make([]uint64, (size+wordBits-1)/wordBits), size: size}
}

// Size returns the number of CRBs covered.
func (b CRBBitmap) Size() uint32 { return b.size }

// Test reports whether CRB i is marked used.
func (b CRBBitmap) Test(i uint32) bool {
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// SetRange marks the CRBs of the interval used.
func (b CRBBitmap) SetRange(crbs ran.CRBInterval) {
	for i := crbs.Start; i < crbs.Stop && i < b.size; i++ {
		b.words[i/wordBits] |= 1 << (i % wordBits)
	}
}

// AnySet reports whether any CRB of the interval is used.
func (b CRBBitmap) AnySet(crbs ran.CRBInterval) bool {
	for i := crbs.Start; i < crbs.Stop && i < b.size; i++ {
		if b.Test(i) {
			return true
		}
	}
	return false
}

// Or merges other into b. Both bitmaps must have the same size.
func (b CRBBitmap) Or(other CRBBitmap) {
	for i := range b.words {
		b.words[i] |= other.words[i]
	}
}

// Reset marks every CRB free.
func (b CRBBitmap) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// CountSet returns the number of used CRBs.
func (b CRBBitmap) CountSet() uint32 {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return uint32(n)
}

// FindEmptyInterval searches the bitmap for a free interval of the
// requested length starting the scan at CRB 0. If no run of that length
// exists it returns the longest free run found; the caller shrinks its
// allocation accordingly. An all-used bitmap yields an empty interval.
func FindEmptyInterval(used CRBBitmap, length uint32) ran.CRBInterval {
	var best ran.CRBInterval
	var runStart uint32
	inRun := false
	for i := uint32(0); i < used.size; i++ {
		if !used.Test(i) {
			if !inRun {
				runStart, inRun = i, true
			}
			if i-runStart+1 >= length {
				return ran.CRBInterval{Start: runStart, Stop: runStart + length}
			}
			continue
		}
		if inRun {
			if i-runStart > best.Length() {
				best = ran.CRBInterval{Start: runStart, Stop: i}
			}
			inRun = false
		}
	}
	if inRun && used.size-runStart > best.Length() {
		best = ran.CRBInterval{Start: runStart, Stop: used.size}
	}
	return best
}
