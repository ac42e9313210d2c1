package harq

import (
	"testing"

	"github.com/nr-rasched/rasched/internal/ran"
)

func slot(n int) ran.SlotPoint {
	return ran.NewSlotPoint(ran.SCS15, 0, 0).Add(n)
}

func TestULProcessAckLifecycle(t *testing.T) {
	t.Parallel()

	var p ULProcess
	if !p.Empty() {
		t.Fatalf("zero process should be empty")
	}

	prbs := ran.PRBInterval{Start: 2, Stop: 5}
	if !p.NewTx(slot(0), prbs, 0, 4) {
		t.Fatalf("new tx on empty process must succeed")
	}
	if p.NewTx(slot(1), prbs, 0, 4) {
		t.Fatalf("second new tx on a busy process must fail")
	}
	if p.PRBs() != prbs {
		t.Fatalf("PRBs not recorded")
	}

	if fb := p.ACKInfo(true); fb != FeedbackACKed {
		t.Fatalf("expected ACK feedback, got %d", fb)
	}
	if !p.Empty() {
		t.Fatalf("process should be empty after ACK")
	}
}

func TestULProcessRetxBound(t *testing.T) {
	t.Parallel()

	var p ULProcess
	if !p.NewTx(slot(0), ran.PRBInterval{Start: 0, Stop: 3}, 0, 4) {
		t.Fatalf("new tx failed")
	}

	for i := 0; i < 4; i++ {
		if fb := p.ACKInfo(false); fb != FeedbackRetx {
			t.Fatalf("retx %d: expected pending retx, got %d", i, fb)
		}
		if !p.HasPendingRetx() {
			t.Fatalf("retx %d: pending retx not reported", i)
		}
		if !p.NewRetx(slot(4*(i+1)), p.PRBs()) {
			t.Fatalf("retx %d: grant registration failed", i)
		}
		if p.NofRetx() != uint32(i+1) {
			t.Fatalf("retx count %d, expected %d", p.NofRetx(), i+1)
		}
	}

	// NACK at the bound abandons the context instead of cycling again.
	if fb := p.ACKInfo(false); fb != FeedbackAbandoned {
		t.Fatalf("expected abandonment at the retx bound, got %d", fb)
	}
	if !p.Empty() {
		t.Fatalf("process should be empty after abandonment")
	}
}

func TestULProcessMissingCRCTimesOut(t *testing.T) {
	t.Parallel()

	var p ULProcess
	if !p.NewTx(slot(0), ran.PRBInterval{Start: 0, Stop: 3}, 0, 4) {
		t.Fatalf("new tx failed")
	}

	// Within the wait bound nothing happens.
	if fb := p.SlotIndication(slot(maxACKWaitSlots - 1)); fb != FeedbackIgnored {
		t.Fatalf("early slot indication must be ignored, got %d", fb)
	}
	// At the bound the transmission counts as NACKed.
	if fb := p.SlotIndication(slot(maxACKWaitSlots)); fb != FeedbackRetx {
		t.Fatalf("expected implicit NACK at the wait bound, got %d", fb)
	}
	if !p.HasPendingRetx() {
		t.Fatalf("pending retx expected after timeout")
	}
}

func TestULProcessInvalidTransitions(t *testing.T) {
	t.Parallel()

	var p ULProcess
	if p.NewRetx(slot(0), ran.PRBInterval{}) {
		t.Fatalf("retx without a pending retx must fail")
	}
	if fb := p.ACKInfo(true); fb != FeedbackIgnored {
		t.Fatalf("feedback on an empty process must be ignored, got %d", fb)
	}
	if fb := p.SlotIndication(slot(100)); fb != FeedbackIgnored {
		t.Fatalf("slot indication on an empty process must be ignored, got %d", fb)
	}
}
