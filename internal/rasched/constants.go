/*
Package rasched constants shared across the RA scheduling engine. These are
the fixed parameters of the random access procedures: payload sizes and
table indices taken from the 3GPP procedures, plus engine bounds that cap
per-slot work. They are distinct from per-cell configuration (internal/
config), which varies by deployment; everything here is the same for every
cell.
*/
package rasched

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

const (
	// MaxNofMsg3 is the size of the pending-Msg3 context table. Contexts
	// are indexed by TC-RNTI modulo this value; two live TC-RNTIs mapping
	// to the same slot is a protocol-level collision handled by dropping
	// the newer preamble.
	MaxNofMsg3 = 64

	// prachDurationSlots is the PRACH processing delay applied before the
	// RAR response window may open.
	prachDurationSlots = 1

	// maxMsg3Retx bounds Msg3 HARQ retransmissions. A NACK at the bound
	// abandons the context.
	maxMsg3Retx = 4

	// msg3RetxDelaySlots is the fixed PDCCH-to-PUSCH delay (k2) used for
	// Msg3 retransmissions, pending derivation from configuration.
	msg3RetxDelaySlots = 4

	// msg3RetxTimeResIndex is the PUSCH time-domain resource used for Msg3
	// retransmissions.
	msg3RetxTimeResIndex = 0

	// pdschTimeResIndex is the PDSCH time-domain resource carrying RARs.
	pdschTimeResIndex = 0

	// gnbTxDelaySlots is the offset between the transmit slot being
	// scheduled and the most recent receive slot, used to advance HARQ
	// clocks.
	gnbTxDelaySlots = 4

	// RAR MAC PDU sizing as per TS 38.321, 6.1.5 and 6.2.3.
	rarPayloadBytes   = 7
	rarSubheaderBytes = 1

	// MCS indices for the RAR PDSCH and the Msg3 PUSCH (qam64 tables).
	rarMCSIndex  = 0
	msg3MCSIndex = 0

	// Msg3 allocation shape, fixed pending a real size derivation.
	msg3NofPRBs  = 3
	msg3TBSBytes = 11

	// raAggregationLevel is the PDCCH aggregation level for all RA search
	// space allocations.
	raAggregationLevel = 4

	// eventQueueSizeHint pre-sizes the slot event queues to the expected
	// per-slot indication count.
	eventQueueSizeHint = 16
)

// rvSequence is the redundancy version cycle applied to successive Msg3
// retransmissions (TS 38.214, Table 6.1.2.1-2 ordering).
var rvSequence = [4]uint8{0, 2, 3, 1}

// msg3DeltaTable is Table 6.1.2.1.1-5 of TS 38.214: the Delta added to k2
// when deriving the Msg3 slot, indexed by numerology.
var msg3DeltaTable = [4]int{2, 3, 4, 6}
