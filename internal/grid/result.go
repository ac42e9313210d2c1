package grid

import (
	"github.com/nr-rasched/rasched/internal/phy"
	"github.com/nr-rasched/rasched/internal/ran"
)

// Per-slot result list capacities. Allocation against a full list fails
// with ErrListFull; the lists never grow past these bounds.
const (
	MaxDLPDCCHsPerSlot = 8
	MaxULPDCCHsPerSlot = 8
	MaxRARsPerSlot     = 8
	MaxPUSCHsPerSlot   = 16
	MaxGrantsPerRAR    = 16
)

// DLDCI is the payload of a DCI format 1_0 scrambled by RA-RNTI.
type DLDCI struct {
	NofRBDLBWP        uint32
	FrequencyResource uint32 // RIV
	TimeResource      uint32
	VRBToPRBMapping   uint8
	MCS               uint32
	TBScaling         uint8
}

// ULDCI is the payload of a DCI format 0_0 scrambled by TC-RNTI.
type ULDCI struct {
	NofRBULBWP        uint32
	FrequencyResource uint32 // RIV
	TimeResource      uint32
	MCS               uint32
	RV                uint8
	FreqHoppingFlag   bool
	TPC               uint8
}

// PDCCHDLInfo is one allocated downlink DCI opportunity.
type PDCCHDLInfo struct {
	RNTI             ran.RNTI
	SearchSpaceID    uint8
	AggregationLevel uint8
	DCI              DLDCI
}

// PDCCHULInfo is one allocated uplink (fallback) DCI opportunity.
type PDCCHULInfo struct {
	RNTI             ran.RNTI
	SearchSpaceID    uint8
	AggregationLevel uint8
	DCI              ULDCI
}

// PDSCHCodeword carries the modulation/coding outcome of a PDSCH grant.
type PDSCHCodeword struct {
	MCSIndex       uint32
	RVIndex        uint8
	Modulation     phy.Modulation
	TargetCodeRate float64
	TBSizeBytes    uint32
}

// PDSCHConfig describes the PDSCH carrying a RAR.
type PDSCHConfig struct {
	RNTI     ran.RNTI
	PRBs     ran.PRBInterval
	Symbols  ran.SymbolRange
	Codeword PDSCHCodeword
	DMRS     phy.DMRSInfo
	NID      uint32
}

// RARULGrant is one Msg3 uplink grant inside a RAR PDU.
type RARULGrant struct {
	RAPID                  uint8
	TimingAdvance          uint32
	TempCRNTI              ran.RNTI
	TimeResourceAssignment uint32
	FreqResourceAssignment uint32 // RIV
	MCS                    uint32
	TPC                    uint8
	CSIReq                 bool
}

// RARInfo is one Random Access Response: the PDSCH it rides on plus the
// Msg3 grants it addresses.
type RARInfo struct {
	PDSCH  PDSCHConfig
	Grants []RARULGrant
}

// PUSCHConfig describes one scheduled uplink transmission (Msg3 or retx).
type PUSCHConfig struct {
	RNTI               ran.RNTI
	PRBs               ran.PRBInterval
	Symbols            ran.SymbolRange
	MCSIndex           uint32
	Modulation         phy.Modulation
	TargetCodeRate     float64
	TransformPrecoding bool
	NID                uint32
	DMRS               phy.DMRSInfo
	RVIndex            uint8
	HARQID             uint8
	NewData            bool
	TBSizeBytes        uint32
}

// DLResult collects the downlink allocations of one slot.
type DLResult struct {
	PDCCHs   []PDCCHDLInfo
	ULPDCCHs []PDCCHULInfo
	RARs     []RARInfo
}

// ULResult collects the uplink allocations of one slot.
type ULResult struct {
	PUSCHs []PUSCHConfig
}

// SchedResult is the complete scheduling output for one slot.
type SchedResult struct {
	DL DLResult
	UL ULResult
}

// PDCCHsFull reports whether the DL DCI list is at capacity.
func (r *DLResult) PDCCHsFull() bool { return len(r.PDCCHs) >= MaxDLPDCCHsPerSlot }

// ULPDCCHsFull reports whether the UL DCI list is at capacity.
func (r *DLResult) ULPDCCHsFull() bool { return len(r.ULPDCCHs) >= MaxULPDCCHsPerSlot }

// RARsFull reports whether the RAR grant list is at capacity.
func (r *DLResult) RARsFull() bool { return len(r.RARs) >= MaxRARsPerSlot }

// PUSCHsFull reports whether the PUSCH grant list is at capacity.
func (r *ULResult) PUSCHsFull() bool { return len(r.PUSCHs) >= MaxPUSCHsPerSlot }

// PUSCHsFree returns the remaining PUSCH grant list capacity.
func (r *ULResult) PUSCHsFree() int { return MaxPUSCHsPerSlot - len(r.PUSCHs) }

func (r *SchedResult) reset() {
	r.DL.PDCCHs = r.DL.PDCCHs[:0]
	r.DL.ULPDCCHs = r.DL.ULPDCCHs[:0]
	r.DL.RARs = r.DL.RARs[:0]
	r.UL.PUSCHs = r.UL.PUSCHs[:0]
}
