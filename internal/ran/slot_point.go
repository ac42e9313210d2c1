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

// Package ran defines the elementary 5G NR value types shared across the
// scheduler: subcarrier spacings, slot points, RNTIs and resource-block /
// OFDM-symbol intervals. All types are plain values; none of them allocate
// or synchronize.
package ran

import "fmt"

// SCS is a subcarrier spacing in kHz.
type SCS uint16

// Subcarrier spacings supported by the scheduler. Anything above 120 kHz is
// rejected because the Msg3 delay table (TS 38.214, Table 6.1.2.1.1-5) is
// only defined for numerologies 0..3.
const (
	SCS15  SCS = 15
	SCS30  SCS = 30
	SCS60  SCS = 60
	SCS120 SCS = 120
)

// Mu returns the numerology value for the subcarrier spacing (15 kHz -> 0,
// 30 kHz -> 1, ...).
func (s SCS) Mu() uint32 {
	switch s {
	case SCS15:
		return 0
	case SCS30:
		return 1
	case SCS60:
		return 2
	case SCS120:
		return 3
	}
	panic(fmt.Sprintf("ran: unsupported subcarrier spacing %d kHz", s))
}

// Valid reports whether the subcarrier spacing is one the scheduler supports.
func (s SCS) Valid() bool {
	switch s {
	case SCS15, SCS30, SCS60, SCS120:
		return true
	}
	return false
}

// SlotsPerFrame returns the number of slots in a 10 ms radio frame for the
// given numerology.
func (s SCS) SlotsPerFrame() uint32 {
	return 10 << s.Mu()
}

// framesPerHyperframe is the SFN period. Slot points wrap after 1024 frames.
const framesPerHyperframe = 1024

// SlotPoint identifies one radio slot. It combines a numerology with a slot
// counter that wraps at 1024 frames, so arithmetic and comparisons stay
// valid across the SFN rollover as long as compared points are less than
// half a hyperframe apart.
//
// The zero SlotPoint is invalid; use NewSlotPoint.
type SlotPoint struct {
	mu    uint32
	count uint32 // slot count within the hyperframe
	valid bool
}

// NewSlotPoint builds a slot point from a subcarrier spacing, a system frame
// number and a slot index within the frame. It panics on out-of-range input;
// slot points are built from validated configuration and internal counters,
// so a bad argument is a programming error.
func NewSlotPoint(scs SCS, sfn, slot uint32) SlotPoint {
	if !scs.Valid() {
		panic(fmt.Sprintf("ran: unsupported subcarrier spacing %d kHz", scs))
	}
	spf := scs.SlotsPerFrame()
	if sfn >= framesPerHyperframe || slot >= spf {
		panic(fmt.Sprintf("ran: slot point out of range sfn=%d slot=%d", sfn, slot))
	}
	return SlotPoint{mu: scs.Mu(), count: sfn*spf + slot, valid: true}
}

// Valid reports whether the slot point was initialized.
func (p SlotPoint) Valid() bool { return p.valid }

// Mu returns the numerology of the slot point.
func (p SlotPoint) Mu() uint32 { return p.mu }

func (p SlotPoint) slotsPerFrame() uint32 { return 10 << p.mu }

func (p SlotPoint) period() uint32 { return framesPerHyperframe * p.slotsPerFrame() }

// SFN returns the system frame number.
func (p SlotPoint) SFN() uint32 { return p.count / p.slotsPerFrame() }

// SlotIndex returns the slot index within the radio frame. This is the t_id
// used in the RA-RNTI computation.
func (p SlotPoint) SlotIndex() uint32 { return p.count % p.slotsPerFrame() }

// Count returns the absolute slot count within the hyperframe.
func (p SlotPoint) Count() uint32 { return p.count }

// Add returns the slot point n slots later (or earlier for negative n),
// wrapping at the hyperframe boundary.
func (p SlotPoint) Add(n int) SlotPoint {
	period := int(p.period())
	c := (int(p.count) + n%period + period) % period
	p.count = uint32(c)
	return p
}

// Diff returns the signed shortest distance p - other in slots. Both points
// must share the same numerology.
func (p SlotPoint) Diff(other SlotPoint) int {
	if p.mu != other.mu {
		panic("ran: slot points with different numerologies are not comparable")
	}
	period := int(p.period())
	d := (int(p.count) - int(other.count) + period) % period
	if d >= period/2 {
		d -= period
	}
	return d
}

// Before reports whether p is strictly earlier than other.
func (p SlotPoint) Before(other SlotPoint) bool { return p.Diff(other) < 0 }

// AtOrAfter reports whether p is at or later than other.
func (p SlotPoint) AtOrAfter(other SlotPoint) bool { return p.Diff(other) >= 0 }

func (p SlotPoint) String() string {
	if !p.valid {
		return "invalid"
	}
	return fmt.Sprintf("%d.%d", p.SFN(), p.SlotIndex())
}

// SlotInterval is a half-open interval [Start, Stop) of slot points, used
// for RAR response windows.
type SlotInterval struct {
	Start SlotPoint
	Stop  SlotPoint
}

// Length returns the number of slots covered by the interval.
func (w SlotInterval) Length() int {
	if !w.Start.Valid() || !w.Stop.Valid() {
		return 0
	}
	return w.Stop.Diff(w.Start)
}

// Contains reports whether the slot lies inside the interval.
func (w SlotInterval) Contains(p SlotPoint) bool {
	return w.Length() > 0 && p.AtOrAfter(w.Start) && p.Before(w.Stop)
}

func (w SlotInterval) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start, w.Stop)
}
