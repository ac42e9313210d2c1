package phy

import (
	"github.com/nr-rasched/rasched/internal/ran"
)

// DMRSInfo carries the demodulation reference signal parameters of a
// PDSCH/PUSCH allocation that the scheduler needs for sizing: which symbols
// carry DM-RS and the scrambling identity.
type DMRSInfo struct {
	SymbolMask   uint16 // bit i set if symbol i carries DM-RS
	ScramblingID uint32
}

// NofDMRSPerRB returns the number of resource elements per RB consumed by
// DM-RS (type 1, single-symbol, 6 RE per DM-RS symbol).
func (d DMRSInfo) NofDMRSPerRB() uint32 {
	n := uint32(0)
	for mask := d.SymbolMask; mask != 0; mask &= mask - 1 {
		n++
	}
	return 6 * n
}

// MakeDMRSInfoCommon builds the DM-RS information for a common (typeA)
// time-domain allocation. The front-loaded DM-RS sits at the configured
// typeA position; allocations of ten symbols or more get one additional
// DM-RS symbol (TS 38.211, Table 7.4.1.1.2-3, dmrs-AdditionalPosition pos1).
func MakeDMRSInfoCommon(symbols ran.SymbolRange, typeAPos uint8, pci uint32) DMRSInfo {
	mask := uint16(1) << typeAPos
	if symbols.Length() >= 10 {
		mask |= 1 << (symbols.Stop - 3)
	}
	return DMRSInfo{SymbolMask: mask, ScramblingID: pci}
}

// maxREPerPRB caps the usable resource elements per PRB in the TBS
// computation (TS 38.214, 5.1.3.2 step 2).
const maxREPerPRB = 156

// CalculateTBS computes a transport block size in bytes for an allocation.
// It follows the intermediate-information-bits procedure of TS 38.214,
// 5.1.3.2 but rounds to whole bytes instead of quantizing through the TBS
// table; the scheduler only needs a consistent, monotonic size.
func CalculateTBS(nofSymbols, nofDMRSPerRB, nofOHPRB uint32, codeRatePer1024 float64, mod Modulation, nofLayers, nofPRBs uint32) uint32 {
	rePerPRB := 12*nofSymbols - nofDMRSPerRB - nofOHPRB
	if rePerPRB > maxREPerPRB {
		rePerPRB = maxREPerPRB
	}
	nRE := rePerPRB * nofPRBs
	nInfo := float64(nRE) * (codeRatePer1024 / 1024.0) * float64(mod.BitsPerSymbol()) * float64(nofLayers)
	if nInfo < 24 {
		nInfo = 24
	}
	return uint32(nInfo) / 8
}

// NofPRBsForPayload returns the smallest number of PRBs whose transport
// block fits payloadBytes, given the allocation shape. Used to size the RAR
// PDSCH grant per addressed preamble.
func NofPRBsForPayload(payloadBytes, nofSymbols, nofDMRSPerRB, nofOHPRB uint32, codeRatePer1024 float64, mod Modulation, nofLayers uint32) uint32 {
	rePerPRB := 12*nofSymbols - nofDMRSPerRB - nofOHPRB
	if rePerPRB > maxREPerPRB {
		rePerPRB = maxREPerPRB
	}
	bitsPerPRB := float64(rePerPRB) * (codeRatePer1024 / 1024.0) * float64(mod.BitsPerSymbol()) * float64(nofLayers)
	if bitsPerPRB <= 0 {
		return 0
	}
	payloadBits := float64(payloadBytes * 8)
	n := uint32(payloadBits / bitsPerPRB)
	if float64(n)*bitsPerPRB < payloadBits {
		n++
	}
	return n
}

// RIV encodes a contiguous frequency-domain allocation as a resource
// indication value for type-1 resource allocation (TS 38.214, 5.1.2.2.2).
func RIV(bwpSize uint32, prbs ran.PRBInterval) uint32 {
	start := prbs.Start
	length := prbs.Length()
	if length == 0 || start+length > bwpSize {
		panic("phy: RIV allocation outside BWP")
	}
	if length-1 <= bwpSize/2 {
		return bwpSize*(length-1) + start
	}
	return bwpSize*(bwpSize-length+1) + (bwpSize - 1 - start)
}
