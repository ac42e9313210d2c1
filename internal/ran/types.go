package ran

import "fmt"

// RNTI is a Radio Network Temporary Identifier (TS 38.321).
type RNTI uint16

func (r RNTI) String() string { return fmt.Sprintf("%#x", uint16(r)) }

// NofSymbolsPerSlot is the number of OFDM symbols in a slot with normal
// cyclic prefix.
const NofSymbolsPerSlot = 14

// RARNTI derives the RA-RNTI from the PRACH occasion coordinates, as per
// TS 38.321, 5.1.3:
//
//	RA-RNTI = 1 + s_id + 14*t_id + 14*80*f_id + 14*80*8*ul_carrier_id
//
// where s_id is the first OFDM symbol of the occasion, t_id the slot index
// of the PRACH within its frame, f_id the frequency-domain occasion index
// (0 for FDD) and ul_carrier_id 1 for the SUL carrier.
func RARNTI(slotRx SlotPoint, startSymbol, frequencyIndex uint32, isSUL bool) RNTI {
	ul := uint32(0)
	if isSUL {
		ul = 1
	}
	return RNTI(1 + startSymbol + 14*slotRx.SlotIndex() + 14*80*frequencyIndex + 14*80*8*ul)
}

// CRBInterval is a half-open [Start, Stop) range of common resource blocks.
type CRBInterval struct {
	Start uint32
	Stop  uint32
}

// Length returns the number of CRBs in the interval.
func (c CRBInterval) Length() uint32 {
	if c.Stop <= c.Start {
		return 0
	}
	return c.Stop - c.Start
}

// Empty reports whether the interval covers no CRBs.
func (c CRBInterval) Empty() bool { return c.Length() == 0 }

// Resize shrinks or grows the interval to the given length, keeping Start.
func (c CRBInterval) Resize(length uint32) CRBInterval {
	c.Stop = c.Start + length
	return c
}

func (c CRBInterval) String() string { return fmt.Sprintf("[%d..%d)", c.Start, c.Stop) }

// PRBInterval is a half-open [Start, Stop) range of physical resource
// blocks, i.e. CRBs relative to the start of a BWP.
type PRBInterval struct {
	Start uint32
	Stop  uint32
}

// Length returns the number of PRBs in the interval.
func (p PRBInterval) Length() uint32 {
	if p.Stop <= p.Start {
		return 0
	}
	return p.Stop - p.Start
}

func (p PRBInterval) String() string { return fmt.Sprintf("[%d..%d)", p.Start, p.Stop) }

// CRBToPRB translates a CRB interval into PRBs of a BWP starting at
// bwpStart. The scheduler only handles BWPs aligned to the carrier, so the
// translation is a plain offset.
func CRBToPRB(bwpStart uint32, crbs CRBInterval) PRBInterval {
	return PRBInterval{Start: crbs.Start - bwpStart, Stop: crbs.Stop - bwpStart}
}

// PRBToCRB is the inverse of CRBToPRB.
func PRBToCRB(bwpStart uint32, prbs PRBInterval) CRBInterval {
	return CRBInterval{Start: prbs.Start + bwpStart, Stop: prbs.Stop + bwpStart}
}

// SymbolRange is a half-open [Start, Stop) range of OFDM symbols within a
// slot.
type SymbolRange struct {
	Start uint8
	Stop  uint8
}

// Length returns the number of symbols in the range.
func (s SymbolRange) Length() uint8 {
	if s.Stop <= s.Start {
		return 0
	}
	return s.Stop - s.Start
}

func (s SymbolRange) String() string { return fmt.Sprintf("[%d..%d)", s.Start, s.Stop) }
