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

// Package phy provides the side-effect-free numeric helpers the MAC
// scheduler needs when filling grants: MCS configuration lookup, DM-RS
// overhead, transport-block sizing and frequency-resource (RIV) encoding.
// The functions are deterministic and keep the signatures of their 3GPP
// counterparts; they do not reproduce the full specification tables.
package phy

import "fmt"

// Modulation is a modulation scheme, identified by its bits per symbol.
type Modulation uint8

const (
	QPSK   Modulation = 2
	QAM16  Modulation = 4
	QAM64  Modulation = 6
	QAM256 Modulation = 8
)

// BitsPerSymbol returns the modulation order Qm.
func (m Modulation) BitsPerSymbol() uint32 { return uint32(m) }

func (m Modulation) String() string {
	switch m {
	case QPSK:
		return "QPSK"
	case QAM16:
		return "16QAM"
	case QAM64:
		return "64QAM"
	case QAM256:
		return "256QAM"
	}
	return fmt.Sprintf("mod(%d)", uint8(m))
}

// MCSConfig describes one row of an MCS table: the modulation and the
// target code rate expressed as R*1024 (TS 38.214 convention).
type MCSConfig struct {
	Modulation     Modulation
	TargetCodeRate float64 // R * 1024
}

// Leading rows of the qam64 MCS table (TS 38.214, Table 5.1.3.1-1). The RA
// procedures only ever use low indices; requesting a row beyond the slice
// is a configuration defect.
var qam64Table = []MCSConfig{
	{QPSK, 120}, {QPSK, 157}, {QPSK, 193}, {QPSK, 251}, {QPSK, 308},
	{QPSK, 379}, {QPSK, 449}, {QPSK, 526}, {QPSK, 602}, {QPSK, 679},
	{QAM16, 340}, {QAM16, 378}, {QAM16, 434}, {QAM16, 490}, {QAM16, 553},
	{QAM16, 616},
}

// MCSGetConfig looks up the modulation and target code rate for an MCS
// index in the qam64 table. It panics on an out-of-range index; MCS indices
// come from validated configuration, never from the air interface.
func MCSGetConfig(mcsIndex uint32) MCSConfig {
	if int(mcsIndex) >= len(qam64Table) {
		panic(fmt.Sprintf("phy: MCS index %d outside qam64 table", mcsIndex))
	}
	return qam64Table[mcsIndex]
}
