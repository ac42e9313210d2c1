package rasched

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/nr-rasched/rasched/internal/config"
	"github.com/nr-rasched/rasched/internal/grid"
	"github.com/nr-rasched/rasched/internal/pdcch"
	"github.com/nr-rasched/rasched/internal/ran"
)

func newTestSched(t *testing.T, cfg *config.CellConfig) (*Scheduler, *grid.CellAllocator) {
	t.Helper()
	alloc := grid.NewCellAllocator(cfg.DLCRBs, cfg.ULCRBs)
	pdcchAlloc := pdcch.NewCCEAllocator(cfg.PDCCHCCEs, zerolog.Nop())
	s, err := New(cfg, pdcchAlloc, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s, alloc
}

func runSlot(s *Scheduler, alloc *grid.CellAllocator, slot ran.SlotPoint) {
	alloc.SlotIndication(slot)
	s.RunSlot(alloc)
}

func onePreamble(slotRx ran.SlotPoint, tc ran.RNTI, id uint8) RACHIndication {
	return RACHIndication{
		SlotRx: slotRx,
		Occasions: []PRACHOccasion{{
			Preambles: []PRACHPreamble{{PreambleID: id, TCRNTI: tc, TimingAdvance: 12}},
		}},
	}
}

func TestSinglePreambleGetsRARAndMsg3(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 1, 0)
	tc := ran.RNTI(0x4601)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 7))

	slotTx := slotRx.Add(1) // first slot of the response window
	runSlot(s, alloc, slotTx)

	dl := &alloc.Slot(0).Result.DL
	if len(dl.PDCCHs) != 1 {
		t.Fatalf("expected 1 DL PDCCH, got %d", len(dl.PDCCHs))
	}
	wantRARNTI := ran.RARNTI(slotRx, 0, 0, false)
	if dl.PDCCHs[0].RNTI != wantRARNTI {
		t.Fatalf("PDCCH RNTI %s, want %s", dl.PDCCHs[0].RNTI, wantRARNTI)
	}
	if dl.PDCCHs[0].DCI.TimeResource != 0 || dl.PDCCHs[0].DCI.NofRBDLBWP != cfg.DLCRBs {
		t.Fatalf("unexpected DL DCI %+v", dl.PDCCHs[0].DCI)
	}
	if alloc.Slot(0).CCEsUsed != 4 {
		t.Fatalf("expected 4 CCEs used, got %d", alloc.Slot(0).CCEsUsed)
	}

	if len(dl.RARs) != 1 {
		t.Fatalf("expected 1 RAR, got %d", len(dl.RARs))
	}
	rar := dl.RARs[0]
	if rar.PDSCH.RNTI != wantRARNTI {
		t.Fatalf("RAR PDSCH RNTI %s, want %s", rar.PDSCH.RNTI, wantRARNTI)
	}
	if len(rar.Grants) != 1 {
		t.Fatalf("expected 1 Msg3 grant, got %d", len(rar.Grants))
	}
	g := rar.Grants[0]
	if g.TempCRNTI != tc || g.RAPID != 7 || g.TimingAdvance != 12 {
		t.Fatalf("unexpected grant %+v", g)
	}

	// Msg3 rides the first PUSCH time resource: k2=2 plus Delta=2 at 15 kHz.
	msg3 := alloc.Slot(4)
	if len(msg3.Result.UL.PUSCHs) != 1 {
		t.Fatalf("expected 1 PUSCH in msg3 slot, got %d", len(msg3.Result.UL.PUSCHs))
	}
	p := msg3.Result.UL.PUSCHs[0]
	if p.RNTI != tc || !p.NewData || p.RVIndex != 0 {
		t.Fatalf("unexpected PUSCH %+v", p)
	}
	if p.PRBs.Length() != msg3NofPRBs || p.TBSizeBytes != msg3TBSBytes {
		t.Fatalf("unexpected msg3 sizing prbs=%d tbs=%d", p.PRBs.Length(), p.TBSizeBytes)
	}

	if len(s.pendingRARs) != 0 {
		t.Fatalf("fully served request should be erased")
	}
	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if !pm.busy || pm.harq.Empty() {
		t.Fatalf("msg3 context should be busy with a live HARQ")
	}
}

func TestRARNotBeforeWindowStart(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 2, 0)
	s.HandleRACHIndication(onePreamble(slotRx, 0x100, 1))

	// The PRACH slot itself precedes the window; nothing may be allocated.
	runSlot(s, alloc, slotRx)
	if got := len(alloc.Slot(0).Result.DL.RARs); got != 0 {
		t.Fatalf("RAR allocated before the window opened")
	}
	if len(s.pendingRARs) != 1 {
		t.Fatalf("request should stay pending")
	}

	runSlot(s, alloc, slotRx.Add(1))
	if got := len(alloc.Slot(0).Result.DL.RARs); got != 1 {
		t.Fatalf("expected RAR at window start, got %d", got)
	}
}

func TestWindowExpiryFreesContext(t *testing.T) {
	cfg := config.Default()
	// A CCE budget below the RA aggregation level blocks every PDCCH
	// allocation, so the request can never be served.
	cfg.PDCCHCCEs = 1
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 3, 0)
	tc := ran.RNTI(0x200)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 2))

	for i := 1; i <= int(cfg.RACH.ResponseWindowSlots); i++ {
		runSlot(s, alloc, slotRx.Add(i))
		if got := len(alloc.Slot(0).Result.DL.RARs); got != 0 {
			t.Fatalf("slot %d: RAR allocated without PDCCH space", i)
		}
	}
	if len(s.pendingRARs) != 1 {
		t.Fatalf("request should survive to the end of the window")
	}

	// One slot past the window stop the request is dropped and its Msg3
	// context released.
	runSlot(s, alloc, slotRx.Add(int(cfg.RACH.ResponseWindowSlots)+1))
	if len(s.pendingRARs) != 0 {
		t.Fatalf("expired request not dropped")
	}
	if s.pendingMsg3s[int(tc)%MaxNofMsg3].busy {
		t.Fatalf("msg3 context not released on expiry")
	}
}

func TestSamePassIdentifierCollision(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 4, 0)
	first := ran.RNTI(100)
	second := ran.RNTI(100 + MaxNofMsg3) // same context table slot
	s.HandleRACHIndication(RACHIndication{
		SlotRx: slotRx,
		Occasions: []PRACHOccasion{{
			Preambles: []PRACHPreamble{
				{PreambleID: 1, TCRNTI: first},
				{PreambleID: 2, TCRNTI: second},
			},
		}},
	})

	runSlot(s, alloc, slotRx.Add(1))

	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || len(rars[0].Grants) != 1 {
		t.Fatalf("expected exactly one grant for the colliding pair")
	}
	if rars[0].Grants[0].TempCRNTI != first {
		t.Fatalf("first detection must win, granted %s", rars[0].Grants[0].TempCRNTI)
	}
	if got := s.pendingMsg3s[int(first)%MaxNofMsg3].preamble.TCRNTI; got != first {
		t.Fatalf("context holds %s, want %s", got, first)
	}
}

func TestMultiplePreamblesOneRAR(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 5, 0)
	ind := RACHIndication{SlotRx: slotRx, Occasions: []PRACHOccasion{{}}}
	for i := 0; i < 5; i++ {
		ind.Occasions[0].Preambles = append(ind.Occasions[0].Preambles, PRACHPreamble{
			PreambleID: uint8(i),
			TCRNTI:     ran.RNTI(0x300 + i),
		})
	}
	s.HandleRACHIndication(ind)

	runSlot(s, alloc, slotRx.Add(1))

	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 {
		t.Fatalf("expected a single RAR for one occasion, got %d", len(rars))
	}
	if len(rars[0].Grants) != 5 {
		t.Fatalf("expected 5 grants, got %d", len(rars[0].Grants))
	}

	// All Msg3s fit the first PUSCH time resource on an empty grid, with
	// disjoint PRB intervals.
	puschs := alloc.Slot(4).Result.UL.PUSCHs
	if len(puschs) != 5 {
		t.Fatalf("expected 5 PUSCHs, got %d", len(puschs))
	}
	for i := 1; i < len(puschs); i++ {
		if puschs[i].PRBs.Start < puschs[i-1].PRBs.Stop {
			t.Fatalf("overlapping msg3 PRBs: %s and %s", puschs[i-1].PRBs, puschs[i].PRBs)
		}
	}
	if len(s.pendingRARs) != 0 {
		t.Fatalf("fully served request should be erased")
	}
}

func TestPartialAllocationKeepsRemainder(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 6, 0)
	ind := RACHIndication{SlotRx: slotRx, Occasions: []PRACHOccasion{{}}}
	for i := 0; i < 3; i++ {
		ind.Occasions[0].Preambles = append(ind.Occasions[0].Preambles, PRACHPreamble{
			PreambleID: uint8(i),
			TCRNTI:     ran.RNTI(0x400 + i),
		})
	}
	s.HandleRACHIndication(ind)

	// Leave uplink room for exactly two Msg3s across both time resources.
	slotTx := slotRx.Add(1)
	alloc.SlotIndication(slotTx)
	full := ran.SymbolRange{Start: 0, Stop: 14}
	alloc.Slot(4).ULGrid.Fill(grid.Grant{Symbols: full, CRBs: ran.CRBInterval{Start: 2 * msg3NofPRBs, Stop: cfg.ULCRBs}})
	alloc.Slot(6).ULGrid.Fill(grid.Grant{Symbols: full, CRBs: ran.CRBInterval{Start: 0, Stop: cfg.ULCRBs}})
	s.RunSlot(alloc)

	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || len(rars[0].Grants) != 2 {
		t.Fatalf("expected a partial RAR with 2 grants")
	}
	if len(s.pendingRARs) != 1 || len(s.pendingRARs[0].tcRNTIs) != 1 {
		t.Fatalf("ungranted preamble should stay pending")
	}
	if s.pendingRARs[0].tcRNTIs[0] != ran.RNTI(0x402) {
		t.Fatalf("grants must be issued in detection order")
	}

	// The next slot has a fresh uplink and serves the remainder.
	runSlot(s, alloc, slotTx.Add(1))
	rars = alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || len(rars[0].Grants) != 1 {
		t.Fatalf("remainder not served in the following slot")
	}
	if rars[0].Grants[0].TempCRNTI != ran.RNTI(0x402) {
		t.Fatalf("wrong remainder grant %s", rars[0].Grants[0].TempCRNTI)
	}
}

func TestMultiRequestWindowOrdering(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	// Three requests at staggered PRACH slots, distinct RA-RNTIs and
	// distinct Msg3 context slots.
	base := ran.NewSlotPoint(ran.SCS15, 12, 0)
	expired := ran.RNTI(0xb01)
	active := ran.RNTI(0xb02)
	future := ran.RNTI(0xb03)
	s.HandleRACHIndication(onePreamble(base, expired, 1))
	s.HandleRACHIndication(onePreamble(base.Add(4), active, 2))
	s.HandleRACHIndication(onePreamble(base.Add(12), future, 3))

	// One pass at base+12: the first window ([1,11) relative to base) has
	// elapsed, the second ([5,15)) is open, the third ([13,23)) has not
	// started yet.
	runSlot(s, alloc, base.Add(12))

	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || len(rars[0].Grants) != 1 {
		t.Fatalf("expected exactly the in-window request to be served")
	}
	if rars[0].Grants[0].TempCRNTI != active {
		t.Fatalf("granted %s, want %s", rars[0].Grants[0].TempCRNTI, active)
	}
	if s.pendingMsg3s[int(expired)%MaxNofMsg3].busy {
		t.Fatalf("expired request did not release its msg3 context")
	}
	if len(s.pendingRARs) != 1 || len(s.pendingRARs[0].tcRNTIs) != 1 ||
		s.pendingRARs[0].tcRNTIs[0] != future {
		t.Fatalf("future-window request must stay pending untouched")
	}
	if !s.pendingMsg3s[int(future)%MaxNofMsg3].busy {
		t.Fatalf("future-window request lost its msg3 context")
	}

	// The surviving request is served once its window opens.
	runSlot(s, alloc, base.Add(13))
	rars = alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || rars[0].Grants[0].TempCRNTI != future {
		t.Fatalf("future-window request not served at its window start")
	}
}

func TestAllCollidedOccasionDropped(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 13, 0)
	tc := ran.RNTI(0xc01)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 1))
	runSlot(s, alloc, slotRx.Add(1))
	if len(alloc.Slot(0).Result.DL.RARs) != 1 {
		t.Fatalf("setup: first preamble not served")
	}

	// Same context table slot while the first Msg3 is still in flight: the
	// new request carries nothing to grant and must not linger.
	alias := tc + MaxNofMsg3
	s.HandleRACHIndication(onePreamble(slotRx.Add(1), alias, 2))
	runSlot(s, alloc, slotRx.Add(2))

	if len(s.pendingRARs) != 0 {
		t.Fatalf("request with no granted preambles left pending")
	}
	if got := len(alloc.Slot(0).Result.DL.RARs); got != 0 {
		t.Fatalf("unexpected RAR for a fully collided occasion, got %d", got)
	}
}

func TestMsg3RetxAfterNACK(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 7, 0)
	tc := ran.RNTI(0x500)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 3))

	slotTx := slotRx.Add(1)
	runSlot(s, alloc, slotTx)
	firstTx := alloc.Slot(4).Result.UL.PUSCHs
	if len(firstTx) != 1 {
		t.Fatalf("msg3 grant missing")
	}
	origPRBs := firstTx[0].PRBs

	s.HandleCRCIndication(CRCIndication{
		SlotRx: slotTx.Add(4),
		CRCs:   []CRCInfo{{RNTI: tc, HARQID: 0, TBCRCSuccess: false}},
	})

	retxSlot := slotTx.Add(1)
	runSlot(s, alloc, retxSlot)

	dl := &alloc.Slot(0).Result.DL
	if len(dl.ULPDCCHs) != 1 || dl.ULPDCCHs[0].RNTI != tc {
		t.Fatalf("retx needs a TC-RNTI UL DCI")
	}
	if dl.ULPDCCHs[0].DCI.RV != 2 {
		t.Fatalf("first retx must use rv 2, got %d", dl.ULPDCCHs[0].DCI.RV)
	}

	puschs := alloc.Slot(msg3RetxDelaySlots).Result.UL.PUSCHs
	if len(puschs) != 1 {
		t.Fatalf("retx PUSCH missing")
	}
	p := puschs[0]
	if p.NewData {
		t.Fatalf("retx must not toggle the new-data indicator")
	}
	if p.PRBs != origPRBs {
		t.Fatalf("retx PRBs %s differ from original %s", p.PRBs, origPRBs)
	}
	if p.RVIndex != 2 || p.HARQID != 0 {
		t.Fatalf("unexpected retx PUSCH %+v", p)
	}

	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if pm.harq.NofRetx() != 1 {
		t.Fatalf("expected 1 retransmission, got %d", pm.harq.NofRetx())
	}
}

func TestMsg3RetxPostponedOnPRBCollision(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 8, 0)
	tc := ran.RNTI(0x600)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 4))

	slotTx := slotRx.Add(1)
	runSlot(s, alloc, slotTx)
	origPRBs := alloc.Slot(4).Result.UL.PUSCHs[0].PRBs

	s.HandleCRCIndication(CRCIndication{
		SlotRx: slotTx.Add(4),
		CRCs:   []CRCInfo{{RNTI: tc, TBCRCSuccess: false}},
	})

	// Occupy the retx PRBs in the target slot: the retx must wait.
	blockedTx := slotTx.Add(1)
	alloc.SlotIndication(blockedTx)
	alloc.Slot(msg3RetxDelaySlots).ULGrid.Fill(grid.Grant{
		Symbols: ran.SymbolRange{Start: 0, Stop: 14},
		CRBs:    ran.PRBToCRB(0, origPRBs),
	})
	s.RunSlot(alloc)
	if got := len(alloc.Slot(msg3RetxDelaySlots).Result.UL.PUSCHs); got != 0 {
		t.Fatalf("retx scheduled into occupied PRBs")
	}

	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if !pm.harq.HasPendingRetx() {
		t.Fatalf("postponed retx lost")
	}

	// Next slot targets a fresh slot and succeeds on the same PRBs.
	runSlot(s, alloc, blockedTx.Add(1))
	puschs := alloc.Slot(msg3RetxDelaySlots).Result.UL.PUSCHs
	if len(puschs) != 1 || puschs[0].PRBs != origPRBs {
		t.Fatalf("postponed retx not rescheduled on its PRBs")
	}
}

func TestMsg3AbandonedAtRetxBound(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 9, 0)
	tc := ran.RNTI(0x700)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 5))

	// NACK every uplink transmission as it reaches its transmit slot.
	newData, retx := 0, 0
	slot := slotRx.Add(1)
	for i := 0; i < 60; i++ {
		runSlot(s, alloc, slot)
		for _, p := range alloc.Slot(0).Result.UL.PUSCHs {
			if p.RNTI != tc {
				continue
			}
			if p.NewData {
				newData++
			} else {
				retx++
			}
			s.HandleCRCIndication(CRCIndication{
				SlotRx: slot,
				CRCs:   []CRCInfo{{RNTI: tc, HARQID: p.HARQID, TBCRCSuccess: false}},
			})
		}
		slot = slot.Add(1)
	}

	if newData != 1 {
		t.Fatalf("expected 1 initial transmission, got %d", newData)
	}
	if retx != maxMsg3Retx {
		t.Fatalf("expected %d retransmissions, got %d", maxMsg3Retx, retx)
	}
	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if pm.busy || !pm.harq.Empty() {
		t.Fatalf("context not released after abandonment")
	}
}

func TestMsg3ACKReleasesContext(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	slotRx := ran.NewSlotPoint(ran.SCS15, 10, 0)
	tc := ran.RNTI(0x800)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 6))

	slotTx := slotRx.Add(1)
	runSlot(s, alloc, slotTx)
	s.HandleCRCIndication(CRCIndication{
		SlotRx: slotTx.Add(4),
		CRCs:   []CRCInfo{{RNTI: tc, TBCRCSuccess: true}},
	})
	runSlot(s, alloc, slotTx.Add(1))

	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if pm.busy || !pm.harq.Empty() {
		t.Fatalf("context not released after ACK")
	}

	// The released slot accepts a new preamble with the same identifier.
	s.HandleRACHIndication(onePreamble(slotTx.Add(2), tc, 9))
	runSlot(s, alloc, slotTx.Add(3))
	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || rars[0].Grants[0].TempCRNTI != tc {
		t.Fatalf("released context did not accept a new preamble")
	}
}

func TestUnknownCRCDropped(t *testing.T) {
	cfg := config.Default()
	s, alloc := newTestSched(t, cfg)

	s.HandleCRCIndication(CRCIndication{
		SlotRx: ran.NewSlotPoint(ran.SCS15, 11, 0),
		CRCs:   []CRCInfo{{RNTI: 0x900, TBCRCSuccess: true}},
	})
	// Must not panic or fabricate state.
	runSlot(s, alloc, ran.NewSlotPoint(ran.SCS15, 11, 4))
	if s.pendingMsg3s[int(ran.RNTI(0x900))%MaxNofMsg3].busy {
		t.Fatalf("CRC for unknown RNTI created a context")
	}

	// A CRC whose HARQ id does not match the live process is dropped too:
	// the bogus ACK must not release the context.
	slotRx := ran.NewSlotPoint(ran.SCS15, 11, 5)
	tc := ran.RNTI(0x901)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 1))
	slotTx := slotRx.Add(1)
	runSlot(s, alloc, slotTx)

	s.HandleCRCIndication(CRCIndication{
		SlotRx: slotTx.Add(4),
		CRCs:   []CRCInfo{{RNTI: tc, HARQID: 3, TBCRCSuccess: true}},
	})
	runSlot(s, alloc, slotTx.Add(1))

	pm := &s.pendingMsg3s[int(tc)%MaxNofMsg3]
	if !pm.busy || pm.harq.Empty() {
		t.Fatalf("CRC with mismatched HARQ id must not touch the live process")
	}
}

func TestTDDWindowAndSlotGating(t *testing.T) {
	cfg := config.Default()
	cfg.TDD = &config.TDDPattern{PeriodSlots: 10, DLSlots: 6, ULSlots: 3}
	s, alloc := newTestSched(t, cfg)

	// PRACH in an uplink slot; the window opens at the first DL slot after
	// the processing delay, which is the next period's slot 0.
	slotRx := ran.NewSlotPoint(ran.SCS15, 0, 7)
	tc := ran.RNTI(0xa00)
	s.HandleRACHIndication(onePreamble(slotRx, tc, 8))

	// Slots 8..10: either outside the window or without a reachable UL
	// slot for Msg3 (10+4 and 10+6 both land in DL).
	for i := 8; i <= 10; i++ {
		runSlot(s, alloc, ran.NewSlotPoint(ran.SCS15, 0, 0).Add(i))
		if len(alloc.Slot(0).Result.DL.RARs) != 0 {
			t.Fatalf("slot %d: RAR scheduled without a DL+UL opportunity", i)
		}
	}

	// Slot 11: DL for PDCCH/PDSCH, and 11+6=17 is an uplink slot.
	runSlot(s, alloc, ran.NewSlotPoint(ran.SCS15, 1, 1))
	rars := alloc.Slot(0).Result.DL.RARs
	if len(rars) != 1 || len(rars[0].Grants) != 1 {
		t.Fatalf("expected the RAR in the first feasible TDD slot")
	}
	puschs := alloc.Slot(6).Result.UL.PUSCHs
	if len(puschs) != 1 || puschs[0].RNTI != tc {
		t.Fatalf("msg3 not placed in the uplink slot")
	}
	if !cfg.IsULEnabled(alloc.Slot(6).Slot) {
		t.Fatalf("msg3 slot is not uplink-enabled")
	}
}

func TestMsg3DelayTable(t *testing.T) {
	td := config.PUSCHTimeResource{K2: 2}
	cases := map[ran.SCS]int{
		ran.SCS15:  4,
		ran.SCS30:  5,
		ran.SCS60:  6,
		ran.SCS120: 8,
	}
	for scs, want := range cases {
		if got := Msg3Delay(td, scs); got != want {
			t.Fatalf("scs %d: msg3 delay %d, want %d", scs, got, want)
		}
	}
}
