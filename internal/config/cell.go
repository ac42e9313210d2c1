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

// Package config holds the static per-cell parameters the scheduler is
// constructed with. Configuration is read once, validated once, and never
// mutated afterwards; every query on it is safe from the scheduling thread.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nr-rasched/rasched/internal/ran"
)

// PDSCHTimeResource is one row of the PDSCH time-domain allocation table.
type PDSCHTimeResource struct {
	K0      int             `yaml:"k0"` // PDCCH-to-PDSCH slot offset
	Symbols ran.SymbolRange `yaml:"symbols"`
}

// PUSCHTimeResource is one row of the PUSCH time-domain allocation table.
type PUSCHTimeResource struct {
	K2      int             `yaml:"k2"` // PDCCH-to-PUSCH slot offset before the Msg3 delta
	Symbols ran.SymbolRange `yaml:"symbols"`
}

// TDDPattern describes a static DL/UL slot pattern: within each period the
// first DLSlots slots are downlink, the last ULSlots are uplink, and
// anything between is flexible (neither queried direction).
type TDDPattern struct {
	PeriodSlots uint32 `yaml:"period_slots"`
	DLSlots     uint32 `yaml:"dl_slots"`
	ULSlots     uint32 `yaml:"ul_slots"`
}

// RACHConfig holds the random-access parameters the RA scheduler consumes.
type RACHConfig struct {
	ResponseWindowSlots   uint32 `yaml:"response_window_slots"`
	Msg3TransformPrecoder bool   `yaml:"msg3_transform_precoder"`
}

// SearchSpace describes the RA search space monitoring pattern. The RA
// scheduler only allocates PDCCH in slots where the search space is
// monitored.
type SearchSpace struct {
	ID                 uint8  `yaml:"id"`
	MonitoringPeriod   uint32 `yaml:"monitoring_period"` // in slots
	MonitoringOffset   uint32 `yaml:"monitoring_offset"`
	MonitoringDuration uint32 `yaml:"monitoring_duration"`
}

// Monitored reports whether the search space is monitored in the slot.
func (s SearchSpace) Monitored(slot ran.SlotPoint) bool {
	if s.MonitoringPeriod == 0 {
		return true
	}
	pos := slot.Count() % s.MonitoringPeriod
	return pos >= s.MonitoringOffset && pos < s.MonitoringOffset+s.MonitoringDuration
}

// CellConfig is the immutable per-cell configuration supplied to the
// scheduler at construction.
type CellConfig struct {
	CellIndex uint8   `yaml:"cell_index"`
	PCI       uint32  `yaml:"pci"`
	SCS       ran.SCS `yaml:"scs_khz"`

	DLCRBs   uint32      `yaml:"dl_crbs"` // initial DL BWP width
	ULCRBs   uint32      `yaml:"ul_crbs"` // initial UL BWP width
	TypeAPos uint8       `yaml:"dmrs_typea_pos"`
	TDD      *TDDPattern `yaml:"tdd,omitempty"`

	RACH          RACHConfig          `yaml:"rach"`
	RASearchSpace SearchSpace         `yaml:"ra_search_space"`
	PDCCHCCEs     uint32              `yaml:"pdcch_cces"` // CCE budget per slot
	PDSCHTable    []PDSCHTimeResource `yaml:"pdsch_time_resources"`
	PUSCHTable    []PUSCHTimeResource `yaml:"pusch_time_resources"`
}

// IsDLEnabled reports whether the slot can carry downlink transmissions.
func (c *CellConfig) IsDLEnabled(slot ran.SlotPoint) bool {
	if c.TDD == nil {
		return true
	}
	return slot.Count()%c.TDD.PeriodSlots < c.TDD.DLSlots
}

// IsULEnabled reports whether the slot can carry uplink transmissions.
func (c *CellConfig) IsULEnabled(slot ran.SlotPoint) bool {
	if c.TDD == nil {
		return true
	}
	return slot.Count()%c.TDD.PeriodSlots >= c.TDD.PeriodSlots-c.TDD.ULSlots
}

// Validate checks the configuration for defects that would otherwise
// surface as invariant violations inside the scheduling hot path. A
// non-nil error here is fatal for cell bring-up.
func (c *CellConfig) Validate() error {
	if !c.SCS.Valid() {
		return fmt.Errorf("unsupported subcarrier spacing %d kHz", c.SCS)
	}
	if c.DLCRBs == 0 || c.ULCRBs == 0 {
		return fmt.Errorf("BWP sizes must be non-zero (dl=%d ul=%d)", c.DLCRBs, c.ULCRBs)
	}
	if c.RACH.ResponseWindowSlots == 0 {
		return fmt.Errorf("RAR response window must be non-zero")
	}
	if len(c.PDSCHTable) == 0 {
		return fmt.Errorf("PDSCH time-domain resource table is empty")
	}
	if len(c.PUSCHTable) == 0 {
		return fmt.Errorf("PUSCH time-domain resource table is empty")
	}
	if c.PDCCHCCEs == 0 {
		return fmt.Errorf("PDCCH CCE budget must be non-zero")
	}
	for i, td := range c.PDSCHTable {
		if td.K0 < 0 || td.Symbols.Length() == 0 || td.Symbols.Stop > ran.NofSymbolsPerSlot {
			return fmt.Errorf("PDSCH time resource %d is malformed", i)
		}
	}
	for i, td := range c.PUSCHTable {
		if td.K2 < 0 || td.Symbols.Length() == 0 || td.Symbols.Stop > ran.NofSymbolsPerSlot {
			return fmt.Errorf("PUSCH time resource %d is malformed", i)
		}
	}
	if c.TDD != nil {
		if c.TDD.PeriodSlots == 0 {
			return fmt.Errorf("TDD period must be non-zero")
		}
		if c.TDD.DLSlots+c.TDD.ULSlots > c.TDD.PeriodSlots {
			return fmt.Errorf("TDD pattern dl=%d ul=%d exceeds period=%d",
				c.TDD.DLSlots, c.TDD.ULSlots, c.TDD.PeriodSlots)
		}
		if c.TDD.DLSlots == 0 {
			// The RAR window start scans one TDD period for a DL slot;
			// a period without one would make the scan fail at runtime.
			return fmt.Errorf("TDD pattern has no DL slot")
		}
	}
	return nil
}

// Load reads and validates a cell configuration from a YAML file.
func Load(path string) (*CellConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cell config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse cell config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cell config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns an FDD 15 kHz cell with a 52-PRB BWP, matching the
// smallest standard NR deployment. Tests and the simulator start from it.
func Default() *CellConfig {
	return &CellConfig{
		CellIndex: 0,
		PCI:       1,
		SCS:       ran.SCS15,
		DLCRBs:    52,
		ULCRBs:    52,
		TypeAPos:  2,
		RACH: RACHConfig{
			ResponseWindowSlots: 10,
		},
		RASearchSpace: SearchSpace{ID: 1},
		PDCCHCCEs:     16,
		PDSCHTable: []PDSCHTimeResource{
			{K0: 0, Symbols: ran.SymbolRange{Start: 2, Stop: 14}},
		},
		PUSCHTable: []PUSCHTimeResource{
			{K2: 2, Symbols: ran.SymbolRange{Start: 0, Stop: 14}},
			{K2: 4, Symbols: ran.SymbolRange{Start: 0, Stop: 14}},
		},
	}
}
