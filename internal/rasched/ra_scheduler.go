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

package rasched

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nr-rasched/rasched/internal/config"
	"github.com/nr-rasched/rasched/internal/events"
	"github.com/nr-rasched/rasched/internal/grid"
	"github.com/nr-rasched/rasched/internal/harq"
	"github.com/nr-rasched/rasched/internal/metrics"
	"github.com/nr-rasched/rasched/internal/pdcch"
	"github.com/nr-rasched/rasched/internal/phy"
	"github.com/nr-rasched/rasched/internal/ran"
)

// Msg3Delay returns the PDCCH-to-Msg3 slot offset implied by a PUSCH
// time-domain resource: k2 plus the numerology-dependent Delta of
// TS 38.214, Table 6.1.2.1.1-5. PUSCH and PDCCH numerologies are assumed
// equal, which reduces the full formula to k2 + Delta.
func Msg3Delay(res config.PUSCHTimeResource, scs ran.SCS) int {
	return res.K2 + msg3DeltaTable[scs.Mu()]
}

// pendingRAR tracks the preambles of one (RA-RNTI, PRACH slot) pair that
// still await a RAR grant, and the window in which that RAR may go out.
// TC-RNTIs are granted strictly in list order.
type pendingRAR struct {
	raRNTI      ran.RNTI
	prachSlotRx ran.SlotPoint
	window      ran.SlotInterval
	tcRNTIs     []ran.RNTI
}

// pendingMsg3 is one slot of the fixed-size Msg3 context table. A slot is
// occupied from preamble acceptance until its Msg3 is acknowledged,
// abandoned, or its RAR window expires ungranted.
type pendingMsg3 struct {
	busy     bool
	preamble PRACHPreamble
	harq     harq.ULProcess
}

// Cached per-time-resource allocation parameters, precomputed at
// construction so the hot path never recomputes DM-RS or sizing.
type rarResources struct {
	dmrs     phy.DMRSInfo
	nofPRBs  uint32
	tbsBytes uint32
}

type msg3Resources struct {
	dmrs     phy.DMRSInfo
	nofPRBs  uint32
	tbsBytes uint32
}

type msg3Candidate struct {
	crbs            ran.CRBInterval
	puschTDResIndex int
}

// Scheduler is the per-cell random access scheduling engine. Ingestion
// methods may be called from the radio-facing thread; everything else runs
// on the single scheduling thread that drives RunSlot once per slot.
type Scheduler struct {
	cfg        *config.CellConfig
	pdcchSched pdcch.Allocator
	logger     zerolog.Logger
	m          *metrics.Metrics
	cellLabel  string

	raWinNofSlots uint32
	rarMCS        phy.MCSConfig
	msg3MCS       phy.MCSConfig
	rarData       []rarResources
	msg3Data      []msg3Resources

	pendingRACHs *events.Queue[RACHIndication]
	pendingCRCs  *events.Queue[CRCIndication]

	// Pending RARs in ascending response-window order; expiry is a prefix
	// scan and iteration stops at the first future window.
	pendingRARs  []pendingRAR
	pendingMsg3s [MaxNofMsg3]pendingMsg3

	// Throttles repeated expiry/postpone warnings so a congested window
	// does not flood the log from the hot path.
	warnLimiter *rate.Limiter
}

// New constructs the RA scheduler for a validated cell configuration.
func New(cfg *config.CellConfig, pdcchSched pdcch.Allocator, logger zerolog.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rasched: %w", err)
	}

	s := &Scheduler{
		cfg:           cfg,
		pdcchSched:    pdcchSched,
		logger:        logger.With().Str("component", "rasched").Uint8("cell", cfg.CellIndex).Logger(),
		m:             metrics.Get(),
		cellLabel:     strconv.Itoa(int(cfg.CellIndex)),
		raWinNofSlots: cfg.RACH.ResponseWindowSlots,
		rarMCS:        phy.MCSGetConfig(rarMCSIndex),
		msg3MCS:       phy.MCSGetConfig(msg3MCSIndex),
		pendingRACHs:  events.NewQueue[RACHIndication](eventQueueSizeHint),
		pendingCRCs:   events.NewQueue[CRCIndication](eventQueueSizeHint),
		warnLimiter:   rate.NewLimiter(rate.Limit(20), 40),
	}

	// Cache PDSCH DM-RS information and RAR PRB/TBS sizing per
	// time-domain resource.
	s.rarData = make([]rarResources, len(cfg.PDSCHTable))
	for i, td := range cfg.PDSCHTable {
		dmrs := phy.MakeDMRSInfoCommon(td.Symbols, cfg.TypeAPos, cfg.PCI)
		nofPRBs := phy.NofPRBsForPayload(
			rarPayloadBytes+rarSubheaderBytes,
			uint32(td.Symbols.Length()), dmrs.NofDMRSPerRB(), 0,
			s.rarMCS.TargetCodeRate, s.rarMCS.Modulation, 1)
		tbs := phy.CalculateTBS(
			uint32(td.Symbols.Length()), dmrs.NofDMRSPerRB(), 0,
			s.rarMCS.TargetCodeRate, s.rarMCS.Modulation, 1, nofPRBs)
		s.rarData[i] = rarResources{dmrs: dmrs, nofPRBs: nofPRBs, tbsBytes: tbs}
	}

	// Cache PUSCH DM-RS information and the fixed Msg3 sizing.
	s.msg3Data = make([]msg3Resources, len(cfg.PUSCHTable))
	for i, td := range cfg.PUSCHTable {
		s.msg3Data[i] = msg3Resources{
			dmrs:     phy.MakeDMRSInfoCommon(td.Symbols, cfg.TypeAPos, cfg.PCI),
			nofPRBs:  msg3NofPRBs,
			tbsBytes: msg3TBSBytes,
		}
	}

	return s, nil
}

// HandleRACHIndication buffers detected PRACH preambles for processing at
// the next slot boundary. Safe to call from the radio-facing thread.
func (s *Scheduler) HandleRACHIndication(msg RACHIndication) {
	s.pendingRACHs.Push(msg)
}

// HandleCRCIndication buffers uplink CRC outcomes for processing at the
// next slot boundary. Safe to call from the radio-facing thread.
func (s *Scheduler) HandleCRCIndication(msg CRCIndication) {
	s.pendingCRCs.Push(msg)
}

// RunSlot advances the scheduler by one slot and writes RAR and Msg3
// grants into the shared per-slot allocation. It must be called exactly
// once per slot, from the scheduling thread, after the allocator's own
// slot indication. Recoverable failures are logged, never returned.
func (s *Scheduler) RunSlot(resAlloc *grid.CellAllocator) {
	start := time.Now()
	defer func() {
		s.m.SlotDuration.WithLabelValues(s.cellLabel).Observe(time.Since(start).Seconds())
		s.m.PendingRARs.WithLabelValues(s.cellLabel).Set(float64(len(s.pendingRARs)))
	}()

	pdcchSlot := resAlloc.SlotTx()
	pdschSlot := pdcchSlot.Add(s.cfg.PDSCHTable[pdschTimeResIndex].K0)

	// CRC first: a HARQ context freed by an ACK this slot can be reused by
	// a new detection drained right after.
	s.handlePendingCRCs(resAlloc)

	s.pendingRACHs.SlotIndication()
	for _, rach := range s.pendingRACHs.Events() {
		s.handleRACHIndicationImpl(rach)
	}

	// RAR scheduling opportunities are sparse under TDD; the checks below
	// are designed short-circuits, not errors.
	if !s.cfg.IsDLEnabled(pdcchSlot) || !s.cfg.IsDLEnabled(pdschSlot) {
		s.m.SlotsSkipped.WithLabelValues(s.cellLabel, "no_dl").Inc()
		return
	}
	if !s.cfg.RASearchSpace.Monitored(pdcchSlot) {
		s.m.SlotsSkipped.WithLabelValues(s.cellLabel, "ss_not_monitored").Inc()
		return
	}
	puschAvailable := false
	for _, td := range s.cfg.PUSCHTable {
		if s.cfg.IsULEnabled(pdcchSlot.Add(Msg3Delay(td, s.cfg.SCS))) {
			puschAvailable = true
			break
		}
	}
	if !puschAvailable {
		s.m.SlotsSkipped.WithLabelValues(s.cellLabel, "no_ul").Inc()
		return
	}

	for i := 0; i < len(s.pendingRARs); {
		req := &s.pendingRARs[i]

		// Outside the window: drop if it elapsed, stop if it has not yet
		// started (requests are in ascending window order, so no later
		// request can be in-window either).
		if !req.window.Contains(pdcchSlot) {
			if pdcchSlot.AtOrAfter(req.window.Stop) {
				s.dropExpiredRAR(req, pdcchSlot)
				s.erasePendingRAR(i)
				continue
			}
			break
		}

		nofAllocs := s.scheduleRAR(req, resAlloc)
		if nofAllocs > len(req.tcRNTIs) {
			panic("rasched: RAR allocation count exceeds pending TC-RNTIs")
		}

		if nofAllocs == 0 {
			// Resource shortage for this request; try the next one.
			i++
			continue
		}
		if nofAllocs == len(req.tcRNTIs) {
			s.erasePendingRAR(i)
			continue
		}
		// Partial success: keep only the ungranted TC-RNTIs and stop, the
		// slot's resources are exhausted.
		req.tcRNTIs = append(req.tcRNTIs[:0], req.tcRNTIs[nofAllocs:]...)
		break
	}

	s.logRARs(resAlloc)
}

// handlePendingCRCs drains buffered CRC indications, feeds them into the
// matching HARQ processes, advances every live HARQ clock, and schedules
// retransmissions for processes that timed out without an ACK.
func (s *Scheduler) handlePendingCRCs(resAlloc *grid.CellAllocator) {
	s.pendingCRCs.SlotIndication()
	for _, ind := range s.pendingCRCs.Events() {
		for _, crc := range ind.CRCs {
			pm := &s.pendingMsg3s[int(crc.RNTI)%MaxNofMsg3]
			if !pm.busy || pm.preamble.TCRNTI != crc.RNTI {
				s.logger.Warn().
					Stringer("rnti", crc.RNTI).
					Uint8("harq_id", crc.HARQID).
					Msg("dropping UL CRC for unknown TC-RNTI")
				s.m.CRCDropped.WithLabelValues(s.cellLabel, "unknown_rnti").Inc()
				continue
			}
			if pm.harq.ID != crc.HARQID {
				s.logger.Warn().
					Stringer("rnti", crc.RNTI).
					Uint8("harq_id", crc.HARQID).
					Uint8("expected_harq_id", pm.harq.ID).
					Msg("dropping UL CRC with mismatched HARQ id")
				s.m.CRCDropped.WithLabelValues(s.cellLabel, "harq_mismatch").Inc()
				continue
			}
			switch pm.harq.ACKInfo(crc.TBCRCSuccess) {
			case harq.FeedbackACKed:
				s.logger.Info().Stringer("rnti", crc.RNTI).Msg("Msg3 acknowledged")
				s.freeMsg3Context(pm)
			case harq.FeedbackAbandoned:
				s.logger.Warn().
					Stringer("rnti", crc.RNTI).
					Uint32("nof_retx", pm.harq.NofRetx()).
					Msg("Msg3 abandoned at retransmission bound")
				s.m.Msg3Abandoned.WithLabelValues(s.cellLabel).Inc()
				s.freeMsg3Context(pm)
			case harq.FeedbackIgnored:
				s.logger.Warn().
					Stringer("rnti", crc.RNTI).
					Msg("dropping UL CRC with no in-flight transmission")
				s.m.CRCDropped.WithLabelValues(s.cellLabel, "no_tx").Inc()
			case harq.FeedbackRetx:
				// Picked up by the retransmission pass below.
			}
		}
	}

	slotRx := resAlloc.SlotTx().Add(-gnbTxDelaySlots)
	for i := range s.pendingMsg3s {
		pm := &s.pendingMsg3s[i]
		if pm.harq.Empty() {
			continue
		}
		if fb := pm.harq.SlotIndication(slotRx); fb == harq.FeedbackAbandoned {
			s.logger.Warn().
				Stringer("rnti", pm.preamble.TCRNTI).
				Msg("Msg3 abandoned: no CRC feedback within bound")
			s.m.Msg3Abandoned.WithLabelValues(s.cellLabel).Inc()
			s.freeMsg3Context(pm)
			continue
		}
		if pm.harq.HasPendingRetx() {
			s.scheduleMsg3Retx(resAlloc, pm)
		}
	}
}

// handleRACHIndicationImpl folds one buffered RACH indication into the
// pending-RAR state. Runs on the scheduling thread only.
func (s *Scheduler) handleRACHIndicationImpl(msg RACHIndication) {
	for _, occ := range msg.Occasions {
		raRNTI := ran.RARNTI(msg.SlotRx, occ.StartSymbol, occ.FrequencyIndex, false)

		var req *pendingRAR
		for i := range s.pendingRARs {
			r := &s.pendingRARs[i]
			if r.raRNTI == raRNTI && r.prachSlotRx.Diff(msg.SlotRx) == 0 {
				req = r
				break
			}
		}
		created := req == nil
		if created {
			s.pendingRARs = append(s.pendingRARs, pendingRAR{
				raRNTI:      raRNTI,
				prachSlotRx: msg.SlotRx,
				window:      s.computeRARWindow(msg.SlotRx),
			})
			req = &s.pendingRARs[len(s.pendingRARs)-1]
		}

		for _, preamble := range occ.Preambles {
			s.logger.Info().
				Stringer("slot_rx", msg.SlotRx).
				Uint8("preamble", preamble.PreambleID).
				Stringer("ra_rnti", raRNTI).
				Stringer("tc_rnti", preamble.TCRNTI).
				Uint32("ta", preamble.TimingAdvance).
				Msg("new PRACH preamble")

			pm := &s.pendingMsg3s[int(preamble.TCRNTI)%MaxNofMsg3]
			if pm.busy {
				// First detection wins until its context is released.
				s.logger.Warn().
					Stringer("tc_rnti", preamble.TCRNTI).
					Stringer("in_use_by", pm.preamble.TCRNTI).
					Msg("PRACH ignored: TC-RNTI context slot already in use")
				s.m.PreambleCollisions.WithLabelValues(s.cellLabel).Inc()
				continue
			}

			req.tcRNTIs = append(req.tcRNTIs, preamble.TCRNTI)
			pm.busy = true
			pm.preamble = preamble
			s.m.PreamblesDetected.WithLabelValues(s.cellLabel).Inc()
		}

		// Every preamble of a freshly created request collided: it holds
		// nothing to grant and no context slots, so it is dropped instead
		// of postponing until window expiry.
		if created && len(req.tcRNTIs) == 0 {
			s.pendingRARs = s.pendingRARs[:len(s.pendingRARs)-1]
		}
	}
}

// computeRARWindow derives the RAR response window for a PRACH reception
// slot: the window opens at the first DL-enabled slot after the PRACH
// processing delay and spans the configured number of slots. For TDD the
// start search scans one full period; Validate guarantees it finds a DL
// slot.
func (s *Scheduler) computeRARWindow(prachSlotRx ran.SlotPoint) ran.SlotInterval {
	if s.cfg.TDD == nil {
		start := prachSlotRx.Add(prachDurationSlots)
		return ran.SlotInterval{Start: start, Stop: start.Add(int(s.raWinNofSlots))}
	}
	for slIdx := 0; slIdx < int(s.cfg.TDD.PeriodSlots); slIdx++ {
		start := prachSlotRx.Add(prachDurationSlots + slIdx)
		if s.cfg.IsDLEnabled(start) {
			return ran.SlotInterval{Start: start, Stop: start.Add(int(s.raWinNofSlots))}
		}
	}
	panic("rasched: TDD pattern yielded no DL slot for RAR window")
}

// scheduleRAR attempts to allocate PDCCH+PDSCH resources for one RAR and
// PUSCH resources for as many of its pending Msg3s as fit this slot. It
// returns the number of TC-RNTIs granted; zero means the whole request is
// postponed.
func (s *Scheduler) scheduleRAR(req *pendingRAR, resAlloc *grid.CellAllocator) int {
	nofPRBsPerRAR := s.rarData[pdschTimeResIndex].nofPRBs
	pdcchAlloc := resAlloc.Slot(0)
	pdschAlloc := resAlloc.Slot(s.cfg.PDSCHTable[pdschTimeResIndex].K0)

	// 1. Space in the DL result lists.
	if pdschAlloc.Result.DL.RARsFull() || pdcchAlloc.Result.DL.PDCCHsFull() {
		s.logPostponedRAR(req, "list_full", grid.ErrListFull)
		return 0
	}

	// Start from the full pending count and narrow by each capacity bound.
	maxNofAllocs := len(req.tcRNTIs)
	if maxNofAllocs > grid.MaxGrantsPerRAR {
		maxNofAllocs = grid.MaxGrantsPerRAR
	}

	// 2. Contiguous PDSCH PRBs for the RAR itself.
	symbols := s.cfg.PDSCHTable[pdschTimeResIndex].Symbols
	usedCRBs := pdschAlloc.DLGrid.UsedCRBs(symbols)
	rarCRBs := grid.FindEmptyInterval(usedCRBs, nofPRBsPerRAR*uint32(maxNofAllocs))
	maxNofAllocs = int(rarCRBs.Length() / nofPRBsPerRAR)
	if maxNofAllocs == 0 {
		s.logPostponedRAR(req, "pdsch_prbs", grid.ErrNoSpace)
		return 0
	}

	// 3. PUSCH capacity for Msg3s, greedily across the time-domain
	// resource table. Candidates are ordered by resource index, then PRB
	// offset, which keeps the outcome deterministic.
	candidates := make([]msg3Candidate, 0, grid.MaxGrantsPerRAR)
	for puschIdx, td := range s.cfg.PUSCHTable {
		remaining := maxNofAllocs - len(candidates)
		if remaining == 0 {
			break
		}
		msg3Alloc := resAlloc.Slot(Msg3Delay(td, s.cfg.SCS))
		if !s.cfg.IsULEnabled(msg3Alloc.Slot) {
			continue
		}
		if free := msg3Alloc.Result.UL.PUSCHsFree(); free < remaining {
			remaining = free
		}
		if remaining == 0 {
			continue
		}
		nofPRBsPerMsg3 := s.msg3Data[puschIdx].nofPRBs
		usedUL := msg3Alloc.ULGrid.UsedCRBs(td.Symbols)
		msg3CRBs := grid.FindEmptyInterval(usedUL, nofPRBsPerMsg3*uint32(remaining))
		remaining = int(msg3CRBs.Length() / nofPRBsPerMsg3)
		lastCRB := msg3CRBs.Start
		for i := 0; i < remaining; i++ {
			candidates = append(candidates, msg3Candidate{
				crbs:            ran.CRBInterval{Start: lastCRB, Stop: lastCRB + nofPRBsPerMsg3},
				puschTDResIndex: puschIdx,
			})
			lastCRB += nofPRBsPerMsg3
		}
	}
	if len(candidates) == 0 {
		s.logPostponedRAR(req, "msg3_capacity", grid.ErrNoSpace)
		return 0
	}

	// 4. Shrink the RAR allocation to the Msg3 count actually secured.
	maxNofAllocs = len(candidates)
	rarCRBs = rarCRBs.Resize(nofPRBsPerRAR * uint32(maxNofAllocs))

	// 5. One DCI opportunity in the RA search space.
	pdcchInfo, err := s.pdcchSched.AllocDLCommon(pdcchAlloc, req.raRNTI, s.cfg.RASearchSpace.ID, raAggregationLevel)
	if err != nil {
		s.logPostponedRAR(req, "pdcch", err)
		return 0
	}

	// 6. Commit: DCI, PDSCH RAR, and one PUSCH + HARQ start per Msg3.
	s.fillRARGrant(resAlloc, req, rarCRBs, candidates, pdcchInfo)
	return len(candidates)
}

// fillRARGrant writes the committed allocation into the slot results and
// starts the Msg3 HARQ processes. All capacity checks happened in
// scheduleRAR; failures here are invariant violations.
func (s *Scheduler) fillRARGrant(resAlloc *grid.CellAllocator, req *pendingRAR,
	rarCRBs ran.CRBInterval, candidates []msg3Candidate, pdcchInfo *grid.PDCCHDLInfo) {

	pdschTD := s.cfg.PDSCHTable[pdschTimeResIndex]
	pdschAlloc := resAlloc.Slot(pdschTD.K0)
	rarPRBs := ran.CRBToPRB(0, rarCRBs)

	pdcchInfo.DCI = grid.DLDCI{
		NofRBDLBWP:        s.cfg.DLCRBs,
		FrequencyResource: phy.RIV(s.cfg.DLCRBs, rarPRBs),
		TimeResource:      pdschTimeResIndex,
		MCS:               rarMCSIndex,
	}

	pdschAlloc.DLGrid.Fill(grid.Grant{Symbols: pdschTD.Symbols, CRBs: rarCRBs})

	rar := grid.RARInfo{
		PDSCH: grid.PDSCHConfig{
			RNTI:    req.raRNTI,
			PRBs:    rarPRBs,
			Symbols: pdschTD.Symbols,
			Codeword: grid.PDSCHCodeword{
				MCSIndex:       rarMCSIndex,
				Modulation:     s.rarMCS.Modulation,
				TargetCodeRate: s.rarMCS.TargetCodeRate,
				TBSizeBytes:    s.rarData[pdschTimeResIndex].tbsBytes,
			},
			DMRS: s.rarData[pdschTimeResIndex].dmrs,
			// n_ID is the physical cell id for RA-RNTI scrambled PDSCH.
			NID: s.cfg.PCI,
		},
		Grants: make([]grid.RARULGrant, 0, len(candidates)),
	}

	for i, cand := range candidates {
		td := s.cfg.PUSCHTable[cand.puschTDResIndex]
		msg3Alloc := resAlloc.Slot(Msg3Delay(td, s.cfg.SCS))
		prbs := ran.CRBToPRB(0, cand.crbs)

		pm := &s.pendingMsg3s[int(req.tcRNTIs[i])%MaxNofMsg3]
		if !pm.harq.Empty() {
			panic("rasched: pending Msg3 scheduled while its HARQ is busy")
		}

		rar.Grants = append(rar.Grants, grid.RARULGrant{
			RAPID:                  pm.preamble.PreambleID,
			TimingAdvance:          pm.preamble.TimingAdvance,
			TempCRNTI:              pm.preamble.TCRNTI,
			TimeResourceAssignment: uint32(cand.puschTDResIndex),
			FreqResourceAssignment: phy.RIV(s.cfg.ULCRBs, prbs),
			MCS:                    msg3MCSIndex,
		})

		msg3Alloc.ULGrid.Fill(grid.Grant{Symbols: td.Symbols, CRBs: cand.crbs})
		msg3Alloc.Result.UL.PUSCHs = append(msg3Alloc.Result.UL.PUSCHs, grid.PUSCHConfig{
			RNTI:               pm.preamble.TCRNTI,
			PRBs:               prbs,
			Symbols:            td.Symbols,
			MCSIndex:           msg3MCSIndex,
			Modulation:         s.msg3MCS.Modulation,
			TargetCodeRate:     s.msg3MCS.TargetCodeRate,
			TransformPrecoding: s.cfg.RACH.Msg3TransformPrecoder,
			NID:                s.cfg.PCI,
			DMRS:               s.msg3Data[cand.puschTDResIndex].dmrs,
			RVIndex:            rvSequence[0],
			HARQID:             pm.harq.ID,
			NewData:            true,
			TBSizeBytes:        s.msg3Data[cand.puschTDResIndex].tbsBytes,
		})

		if !pm.harq.NewTx(msg3Alloc.Slot, prbs, msg3MCSIndex, maxMsg3Retx) {
			panic("rasched: unexpected HARQ new-tx rejection")
		}
		pm.harq.SetTBS(s.msg3Data[cand.puschTDResIndex].tbsBytes)
		s.m.Msg3Granted.WithLabelValues(s.cellLabel).Inc()
	}

	pdschAlloc.Result.DL.RARs = append(pdschAlloc.Result.DL.RARs, rar)
	s.m.RARAllocated.WithLabelValues(s.cellLabel).Inc()
}

// scheduleMsg3Retx attempts a retransmission grant for a HARQ process with
// a pending retx. The original PRB interval is reused; if it collides with
// grid usage in the target slot the retransmission is postponed to a later
// slot rather than moved (no alternative-interval search yet).
func (s *Scheduler) scheduleMsg3Retx(resAlloc *grid.CellAllocator, pm *pendingMsg3) {
	pdcchAlloc := resAlloc.Slot(0)
	puschAlloc := resAlloc.Slot(msg3RetxDelaySlots)

	if puschAlloc.Result.UL.PUSCHsFull() || pdcchAlloc.Result.DL.ULPDCCHsFull() {
		s.logger.Warn().
			Stringer("rnti", pm.preamble.TCRNTI).
			Msg("Msg3 retx postponed: no result list space")
		s.m.Msg3RetxBlocked.WithLabelValues(s.cellLabel, "list_full").Inc()
		return
	}

	td := s.cfg.PUSCHTable[msg3RetxTimeResIndex]
	grant := grid.Grant{
		Symbols: td.Symbols,
		CRBs:    ran.PRBToCRB(0, pm.harq.PRBs()),
	}
	if puschAlloc.ULGrid.Collides(grant) {
		s.m.Msg3RetxBlocked.WithLabelValues(s.cellLabel, "prb_collision").Inc()
		if s.warnLimiter.Allow() {
			s.logger.Warn().
				Stringer("rnti", pm.preamble.TCRNTI).
				Stringer("prbs", pm.harq.PRBs()).
				Stringer("slot", puschAlloc.Slot).
				Msg("Msg3 retx postponed: PRBs occupied in target slot")
		}
		return
	}

	pdcchInfo, err := s.pdcchSched.AllocULCommon(pdcchAlloc, pm.preamble.TCRNTI, s.cfg.RASearchSpace.ID, raAggregationLevel)
	if err != nil {
		s.m.Msg3RetxBlocked.WithLabelValues(s.cellLabel, "pdcch").Inc()
		if !grid.IsRetryable(err) {
			s.logger.Error().Err(err).
				Stringer("rnti", pm.preamble.TCRNTI).
				Msg("dropping Msg3 retx after unrecoverable PDCCH failure")
			pm.harq.Reset()
			s.freeMsg3Context(pm)
			return
		}
		s.logger.Warn().Err(err).
			Stringer("rnti", pm.preamble.TCRNTI).
			Msg("Msg3 retx postponed")
		return
	}

	puschAlloc.ULGrid.Fill(grant)

	prbs := ran.CRBToPRB(0, grant.CRBs)
	if !pm.harq.NewRetx(puschAlloc.Slot, prbs) {
		s.logger.Warn().
			Stringer("rnti", pm.preamble.TCRNTI).
			Msg("failed to register Msg3 retx in HARQ process")
		pm.harq.Reset()
		s.freeMsg3Context(pm)
		return
	}

	rv := rvSequence[pm.harq.NofRetx()%uint32(len(rvSequence))]
	pdcchInfo.DCI = grid.ULDCI{
		NofRBULBWP:        s.cfg.ULCRBs,
		FrequencyResource: phy.RIV(s.cfg.ULCRBs, prbs),
		TimeResource:      msg3RetxTimeResIndex,
		MCS:               pm.harq.MCS(),
		RV:                rv,
	}

	mcsCfg := phy.MCSGetConfig(pm.harq.MCS())
	dmrs := s.msg3Data[msg3RetxTimeResIndex].dmrs
	tbs := phy.CalculateTBS(
		uint32(td.Symbols.Length()), dmrs.NofDMRSPerRB(), 0,
		mcsCfg.TargetCodeRate, mcsCfg.Modulation, 1, grant.CRBs.Length())

	puschAlloc.Result.UL.PUSCHs = append(puschAlloc.Result.UL.PUSCHs, grid.PUSCHConfig{
		RNTI:               pm.preamble.TCRNTI,
		PRBs:               prbs,
		Symbols:            td.Symbols,
		MCSIndex:           pm.harq.MCS(),
		Modulation:         mcsCfg.Modulation,
		TargetCodeRate:     mcsCfg.TargetCodeRate,
		TransformPrecoding: s.cfg.RACH.Msg3TransformPrecoder,
		NID:                s.cfg.PCI,
		DMRS:               dmrs,
		RVIndex:            rv,
		HARQID:             pm.harq.ID,
		NewData:            false,
		TBSizeBytes:        tbs,
	})
	pm.harq.SetTBS(tbs)
	s.m.Msg3Retx.WithLabelValues(s.cellLabel).Inc()
}

// dropExpiredRAR discards a request whose response window elapsed without
// a (complete) RAR transmission and releases the context slots of its
// ungranted preambles.
func (s *Scheduler) dropExpiredRAR(req *pendingRAR, slotTx ran.SlotPoint) {
	s.m.RARExpired.WithLabelValues(s.cellLabel).Inc()
	if s.warnLimiter.Allow() {
		s.logger.Warn().
			Stringer("ra_rnti", req.raRNTI).
			Stringer("window", req.window).
			Stringer("prach_slot", req.prachSlotRx).
			Stringer("slot_tx", slotTx).
			Int("lost_msg3s", len(req.tcRNTIs)).
			Msg("could not transmit RAR within the response window")
	}
	for _, tc := range req.tcRNTIs {
		pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
		if pm.busy && pm.preamble.TCRNTI == tc && pm.harq.Empty() {
			s.freeMsg3Context(pm)
		}
	}
}

func (s *Scheduler) erasePendingRAR(i int) {
	s.pendingRARs = append(s.pendingRARs[:i], s.pendingRARs[i+1:]...)
}

func (s *Scheduler) freeMsg3Context(pm *pendingMsg3) {
	pm.busy = false
	pm.preamble = PRACHPreamble{}
}

func (s *Scheduler) logPostponedRAR(req *pendingRAR, cause string, err error) {
	s.m.RARPostponed.WithLabelValues(s.cellLabel, cause).Inc()
	s.logger.Debug().
		Err(err).
		Stringer("ra_rnti", req.raRNTI).
		Str("cause", cause).
		Msg("RAR allocation postponed")
}

// logRARs emits one info event per RAR allocated this slot.
func (s *Scheduler) logRARs(resAlloc *grid.CellAllocator) {
	pdschAlloc := resAlloc.Slot(s.cfg.PDSCHTable[pdschTimeResIndex].K0)
	for _, rar := range pdschAlloc.Result.DL.RARs {
		s.logger.Info().
			Stringer("ra_rnti", rar.PDSCH.RNTI).
			Stringer("prbs", rar.PDSCH.PRBs).
			Int("msg3_grants", len(rar.Grants)).
			Msg("RAR allocated")
	}
}
