package metrics

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
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	registry          = prometheus.NewRegistry()
	defaultRegisterer = promauto.With(registry)
	serverOnce        sync.Once
	metricsServer     *http.Server
)

// Metrics contains all the Prometheus metrics of the RA scheduling engine.
// Counters are only ever touched from the scheduling thread; the registry
// handles scrape-side synchronization.
type Metrics struct {
	// RAR lifecycle
	RARAllocated *prometheus.CounterVec
	RARPostponed *prometheus.CounterVec
	RARExpired   *prometheus.CounterVec
	PendingRARs  *prometheus.GaugeVec

	// Preamble / CRC ingestion
	PreamblesDetected  *prometheus.CounterVec
	PreambleCollisions *prometheus.CounterVec
	CRCDropped         *prometheus.CounterVec

	// Msg3 HARQ lifecycle
	Msg3Granted     *prometheus.CounterVec
	Msg3Retx        *prometheus.CounterVec
	Msg3RetxBlocked *prometheus.CounterVec
	Msg3Abandoned   *prometheus.CounterVec

	// Slot pipeline
	SlotDuration *prometheus.HistogramVec
	SlotsSkipped *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

func newMetrics() *Metrics {
	// Slot budgets are sub-millisecond; buckets track the compute budget,
	// not wall-clock I/O.
	slotBuckets := []float64{10e-6, 25e-6, 50e-6, 100e-6, 250e-6, 500e-6, 1e-3, 2.5e-3, 5e-3}

	return &Metrics{
		RARAllocated: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_rar_allocated_total",
				Help: "Total number of RAR PDUs allocated",
			},
			[]string{"cell"},
		),
		RARPostponed: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_rar_postponed_total",
				Help: "Total number of RAR allocation attempts postponed to a later slot",
			},
			[]string{"cell", "cause"},
		),
		RARExpired: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_rar_expired_total",
				Help: "Total number of pending RARs dropped at response-window expiry",
			},
			[]string{"cell"},
		),
		PendingRARs: defaultRegisterer.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rasched_pending_rars",
				Help: "Pending RAR requests awaiting allocation",
			},
			[]string{"cell"},
		),
		PreamblesDetected: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_preambles_detected_total",
				Help: "Total number of PRACH preambles accepted for scheduling",
			},
			[]string{"cell"},
		),
		PreambleCollisions: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_preamble_collisions_total",
				Help: "Total number of preambles dropped because their TC-RNTI context slot was occupied",
			},
			[]string{"cell"},
		),
		CRCDropped: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_crc_dropped_total",
				Help: "Total number of CRC indications dropped as inconsistent",
			},
			[]string{"cell", "cause"},
		),
		Msg3Granted: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_msg3_granted_total",
				Help: "Total number of Msg3 new-transmission grants",
			},
			[]string{"cell"},
		),
		Msg3Retx: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_msg3_retx_total",
				Help: "Total number of Msg3 retransmission grants",
			},
			[]string{"cell"},
		),
		Msg3RetxBlocked: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_msg3_retx_blocked_total",
				Help: "Total number of Msg3 retransmissions postponed (PRB collision or PDCCH exhaustion)",
			},
			[]string{"cell", "cause"},
		),
		Msg3Abandoned: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_msg3_abandoned_total",
				Help: "Total number of Msg3 contexts abandoned at the retransmission bound",
			},
			[]string{"cell"},
		),
		SlotDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rasched_slot_duration_seconds",
				Help:    "Time spent in the per-slot RA scheduling pass",
				Buckets: slotBuckets,
			},
			[]string{"cell"},
		),
		SlotsSkipped: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rasched_slots_skipped_total",
				Help: "Slots where RAR scheduling short-circuited (no DL/UL opportunity or search space not monitored)",
			},
			[]string{"cell", "cause"},
		),
	}
}

// Serve starts an HTTP server exposing the registry on /metrics.
func Serve(addr string, logger zerolog.Logger) {
	serverOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		metricsServer = &http.Server{Addr: addr, Handler: mux}

		go func() {
			logger.Info().Str("addr", addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	})
}

// Shutdown gracefully stops the metrics server, if one was started.
func Shutdown(ctx context.Context) error {
	if metricsServer != nil {
		return metricsServer.Shutdown(ctx)
	}
	return nil
}
