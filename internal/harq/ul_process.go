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

// Package harq implements the uplink HARQ process used for pending Msg3
// transmissions: a small state machine tracking one retransmission
// lifecycle from first grant to ACK, bounded retransmission, or
// abandonment.
package harq

import (
	"github.com/nr-rasched/rasched/internal/ran"
)

// maxACKWaitSlots is how long a process waits for CRC feedback before it
// treats the transmission as NACKed.
const maxACKWaitSlots = 8

// State of an uplink HARQ process.
type State uint8

const (
	// StateEmpty means the process holds no transmission.
	StateEmpty State = iota
	// StateWaitingACK means a transmission is in flight awaiting CRC.
	StateWaitingACK
	// StatePendingRetx means the last transmission was NACKed and a
	// retransmission grant is due.
	StatePendingRetx
)

// Feedback is the outcome of feeding an ACK/NACK into the process.
type Feedback uint8

const (
	// FeedbackACKed: transmission succeeded, process is now empty.
	FeedbackACKed Feedback = iota
	// FeedbackRetx: transmission failed, a retransmission is pending.
	FeedbackRetx
	// FeedbackAbandoned: transmission failed at the retransmission bound,
	// the process reset to empty.
	FeedbackAbandoned
	// FeedbackIgnored: the process held no in-flight transmission.
	FeedbackIgnored
)

// ULProcess is one uplink HARQ process. It holds at most one outstanding
// transmission's resource allocation at a time. Not safe for concurrent
// use; ownership stays with the scheduling thread.
type ULProcess struct {
	// ID is the HARQ process id reported in grants and CRC indications.
	ID uint8

	state   State
	slotTx  ran.SlotPoint
	prbs    ran.PRBInterval
	mcs     uint32
	tbs     uint32
	nofRetx uint32
	maxRetx uint32
}

// Empty reports whether the process holds no transmission.
func (p *ULProcess) Empty() bool { return p.state == StateEmpty }

// HasPendingRetx reports whether a retransmission grant is due.
func (p *ULProcess) HasPendingRetx() bool { return p.state == StatePendingRetx }

// NofRetx returns the number of retransmissions granted so far.
func (p *ULProcess) NofRetx() uint32 { return p.nofRetx }

// PRBs returns the PRB interval of the last transmission, reused for
// retransmissions when the grid allows.
func (p *ULProcess) PRBs() ran.PRBInterval { return p.prbs }

// MCS returns the MCS index of the transmission.
func (p *ULProcess) MCS() uint32 { return p.mcs }

// TBS returns the transport block size in bytes.
func (p *ULProcess) TBS() uint32 { return p.tbs }

// SetTBS records the transport block size after grant filling.
func (p *ULProcess) SetTBS(tbs uint32) { p.tbs = tbs }

// NewTx starts a new transmission. It fails if the process is not empty;
// the caller treats that as an invariant violation.
func (p *ULProcess) NewTx(slotTx ran.SlotPoint, prbs ran.PRBInterval, mcs, maxRetx uint32) bool {
	if p.state != StateEmpty {
		return false
	}
	p.state = StateWaitingACK
	p.slotTx = slotTx
	p.prbs = prbs
	p.mcs = mcs
	p.nofRetx = 0
	p.maxRetx = maxRetx
	return true
}

// NewRetx registers a granted retransmission. It fails unless a
// retransmission was pending.
func (p *ULProcess) NewRetx(slotTx ran.SlotPoint, prbs ran.PRBInterval) bool {
	if p.state != StatePendingRetx {
		return false
	}
	p.state = StateWaitingACK
	p.slotTx = slotTx
	p.prbs = prbs
	p.nofRetx++
	return true
}

// ACKInfo feeds CRC feedback into the process. A NACK at the
// retransmission bound abandons the context.
func (p *ULProcess) ACKInfo(ack bool) Feedback {
	if p.state != StateWaitingACK {
		return FeedbackIgnored
	}
	if ack {
		p.Reset()
		return FeedbackACKed
	}
	if p.nofRetx >= p.maxRetx {
		p.Reset()
		return FeedbackAbandoned
	}
	p.state = StatePendingRetx
	return FeedbackRetx
}

// SlotIndication advances the process clock. A transmission whose CRC
// never arrived within the wait bound is treated as NACKed.
func (p *ULProcess) SlotIndication(slotRx ran.SlotPoint) Feedback {
	if p.state != StateWaitingACK {
		return FeedbackIgnored
	}
	if slotRx.Diff(p.slotTx) < maxACKWaitSlots {
		return FeedbackIgnored
	}
	return p.ACKInfo(false)
}

// Reset empties the process, releasing its context slot.
func (p *ULProcess) Reset() {
	p.state = StateEmpty
	p.prbs = ran.PRBInterval{}
	p.mcs = 0
	p.tbs = 0
	p.nofRetx = 0
	p.maxRetx = 0
}
