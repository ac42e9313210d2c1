package rasched

import (
	"github.com/nr-rasched/rasched/internal/ran"
)

// PRACHPreamble is one detected preamble within a PRACH occasion, already
// assigned a temporary C-RNTI by the detector.
type PRACHPreamble struct {
	PreambleID    uint8
	TCRNTI        ran.RNTI
	TimingAdvance uint32
}

// PRACHOccasion locates a set of detected preambles in the PRACH resource
// geometry of the reception slot.
type PRACHOccasion struct {
	StartSymbol    uint32
	FrequencyIndex uint32
	Preambles      []PRACHPreamble
}

// RACHIndication reports the PRACH detections of one reception slot. It is
// buffered on arrival and processed at the next slot boundary.
type RACHIndication struct {
	SlotRx    ran.SlotPoint
	Occasions []PRACHOccasion
}

// CRCInfo is one uplink CRC outcome, keyed by the transmitting TC-RNTI and
// the HARQ process that carried the transport block.
type CRCInfo struct {
	RNTI         ran.RNTI
	HARQID       uint8
	TBCRCSuccess bool
}

// CRCIndication reports the uplink CRC outcomes of one reception slot.
type CRCIndication struct {
	SlotRx ran.SlotPoint
	CRCs   []CRCInfo
}
