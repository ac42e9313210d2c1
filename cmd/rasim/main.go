/*
Package main is the entry point for the rasim command-line application.

rasim runs the 5G NR random access scheduling engine against a simulated
cell: synthetic UEs send PRACH preambles at a configurable arrival rate,
the scheduler allocates RARs and Msg3 grants on the slot clock, and CRC
outcomes (with an injectable error rate) feed the Msg3 HARQ loop.

Subcommands:
  - `run`    drives the engine for a number of slots (or until interrupted).
  - `config` prints the default cell configuration as YAML, as a template
    for the --config flag of `run`.

The slot clock runs on a dedicated goroutine locked to its OS thread and,
on Linux, optionally pinned to a CPU core. Prometheus metrics are exposed
over HTTP for the duration of the run. Graceful shutdown is handled via
context cancellation triggered by OS signals (SIGINT, SIGTERM).
*/
package main

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

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"

	"github.com/nr-rasched/rasched/internal/config"
	"github.com/nr-rasched/rasched/internal/executor"
	"github.com/nr-rasched/rasched/internal/grid"
	"github.com/nr-rasched/rasched/internal/metrics"
	"github.com/nr-rasched/rasched/internal/pdcch"
	"github.com/nr-rasched/rasched/internal/rasched"
	"github.com/nr-rasched/rasched/internal/ran"
)

var (
	debug       bool
	metricsAddr string

	configPath   string
	nofSlots     int
	cpuCore      int
	arrivalRate  float64
	crcErrorRate float64
	seed         uint64
)

var rootCmd = &cobra.Command{
	Use:   "rasim",
	Short: "rasim - a 5G NR random access scheduling engine with a simulated cell",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the RA scheduler against simulated PRACH/CRC traffic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default cell configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(config.Default())
		if err != nil {
			return fmt.Errorf("marshal default config: %w", err)
		}
		_, err = os.Stdout.Write(b)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus metrics listen address")

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Cell configuration YAML (default: built-in FDD 15 kHz cell)")
	runCmd.Flags().IntVarP(&nofSlots, "slots", "n", 10000, "Number of slots to run (0 = until interrupted)")
	runCmd.Flags().IntVar(&cpuCore, "core", -1, "Pin the scheduling thread to this CPU core (-1 = no pinning)")
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 0.05, "Probability of a PRACH preamble per slot")
	runCmd.Flags().Float64Var(&crcErrorRate, "crc-error-rate", 0.1, "Probability that a Msg3 CRC fails")
	runCmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for UE identity derivation and traffic randomness")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func runSimulation() error {
	logger := newLogger()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	metrics.Serve(metricsAddr, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}()

	alloc := grid.NewCellAllocator(cfg.DLCRBs, cfg.ULCRBs)
	pdcchAlloc := pdcch.NewCCEAllocator(cfg.PDCCHCCEs, logger)
	sched, err := rasched.New(cfg, pdcchAlloc, logger)
	if err != nil {
		return err
	}

	sim := &cellSim{
		cfg:          cfg,
		alloc:        alloc,
		sched:        sched,
		rng:          rand.New(rand.NewSource(int64(seed))),
		logger:       logger.With().Str("component", "sim").Logger(),
		arrivalRate:  arrivalRate,
		crcErrorRate: crcErrorRate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec := executor.New(sim, cfg.SCS, cpuCore, logger)
	startSlot := ran.NewSlotPoint(cfg.SCS, 0, 0)

	logger.Info().
		Uint8("cell", cfg.CellIndex).
		Float64("arrival_rate", arrivalRate).
		Float64("crc_error_rate", crcErrorRate).
		Int("slots", nofSlots).
		Msg("starting simulation")

	if err := exec.Run(ctx, startSlot, nofSlots); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	sim.logSummary()
	return nil
}

// cellSim is the slot processor the executor drives: it plays the radio
// side of the cell, feeding PRACH and CRC indications into the scheduler
// and reading back its grants.
type cellSim struct {
	cfg    *config.CellConfig
	alloc  *grid.CellAllocator
	sched  *rasched.Scheduler
	rng    *rand.Rand
	logger zerolog.Logger

	arrivalRate  float64
	crcErrorRate float64

	nextUE         uint64
	prachsSent     uint64
	msg3CRCsSent   uint64
	msg3CRCsFailed uint64
}

// slotRxDelay mirrors the scheduler's tx-to-rx reference: indications
// observed "now" belong to the slot the radio received four slots before
// the one being scheduled.
const slotRxDelay = 4

// RunSlot implements executor.SlotProcessor.
func (c *cellSim) RunSlot(slotTx ran.SlotPoint) {
	c.alloc.SlotIndication(slotTx)
	slotRx := slotTx.Add(-slotRxDelay)

	if c.cfg.IsULEnabled(slotRx) && c.rng.Float64() < c.arrivalRate {
		c.sched.HandleRACHIndication(c.makeRACH(slotRx))
	}

	c.sched.RunSlot(c.alloc)

	// Every PUSCH whose transmission slot is the one just scheduled gets a
	// CRC outcome, delivered at the next slot boundary.
	c.reportCRCs(slotTx)
}

// makeRACH fabricates one detected preamble. The TC-RNTI is derived
// deterministically from the seed and a UE counter, so runs are
// reproducible and identifier collisions recur at fixed points.
func (c *cellSim) makeRACH(slotRx ran.SlotPoint) rasched.RACHIndication {
	ue := c.nextUE
	c.nextUE++
	c.prachsSent++

	h := xxh3.HashString(fmt.Sprintf("ue-%d-%d", seed, ue))
	tcRNTI := ran.RNTI(1 + h%0xFFEE)

	return rasched.RACHIndication{
		SlotRx: slotRx,
		Occasions: []rasched.PRACHOccasion{{
			StartSymbol:    0,
			FrequencyIndex: 0,
			Preambles: []rasched.PRACHPreamble{{
				PreambleID:    uint8(h >> 32 & 0x3f),
				TCRNTI:        tcRNTI,
				TimingAdvance: uint32(h >> 40 & 0x7f),
			}},
		}},
	}
}

// reportCRCs walks the PUSCH grants of the slot being transmitted and
// produces one CRC indication for them, with the configured error rate.
func (c *cellSim) reportCRCs(slotTx ran.SlotPoint) {
	puschs := c.alloc.Slot(0).Result.UL.PUSCHs
	if len(puschs) == 0 {
		return
	}

	ind := rasched.CRCIndication{SlotRx: slotTx}
	for _, p := range puschs {
		ok := c.rng.Float64() >= c.crcErrorRate
		if !ok {
			c.msg3CRCsFailed++
		}
		c.msg3CRCsSent++
		ind.CRCs = append(ind.CRCs, rasched.CRCInfo{
			RNTI:         p.RNTI,
			HARQID:       p.HARQID,
			TBCRCSuccess: ok,
		})
	}
	c.sched.HandleCRCIndication(ind)
}

func (c *cellSim) logSummary() {
	c.logger.Info().
		Uint64("prachs", c.prachsSent).
		Uint64("msg3_crcs", c.msg3CRCsSent).
		Uint64("msg3_crc_failures", c.msg3CRCsFailed).
		Msg("simulation finished")
}
