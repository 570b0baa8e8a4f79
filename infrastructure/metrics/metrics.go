package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Unit metrics
	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "witnessd_units_total",
		Help: "Total number of units processed",
	}, []string{"status"})

	unitProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "witnessd_unit_processing_duration_seconds",
		Help:    "Duration of unit validation and insertion, stabilization included",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// Stability metrics
	lastStableMCIGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "witnessd_last_stable_mci",
		Help: "The last stable main chain index",
	})

	lastMCIGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "witnessd_last_mci",
		Help: "The main chain index of the main chain tip",
	})

	newlyStableMCIsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "witnessd_newly_stable_mcis_total",
		Help: "Total number of main chain indexes that became stable",
	})

	mainChainRewindsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "witnessd_main_chain_rewinds_total",
		Help: "Total number of main chain updates that unassigned main chain indexes",
	})

	stabilityStallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "witnessd_stability_stalls_total",
		Help: "Total number of stability checks given up on because the alternative branches were too large",
	})

	stalledMCIGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "witnessd_stability_stalled_mci",
		Help: "The last stable main chain index at the most recent stability stall",
	})

	haltedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "witnessd_consensus_halted",
		Help: "1 once a consistency violation halted consensus writes",
	})

	// Catchup metrics
	catchupRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "witnessd_catchup_requests_total",
		Help: "Total number of catchup requests served",
	}, []string{"request", "outcome"})

	catchupRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "witnessd_catchup_request_duration_seconds",
		Help:    "Duration of catchup requests served",
		Buckets: prometheus.DefBuckets,
	}, []string{"request"})

	activeCatchupSessionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "witnessd_active_catchup_sessions",
		Help: "Current number of catchup sessions held by peers",
	})

	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "witnessd_http_requests_total",
		Help: "Total number of HTTP API requests",
	}, []string{"route", "status"})
)

// Catchup request kinds
const (
	RequestCatchupChain = "catchup_chain"
	RequestWitnessProof = "witness_proof"
	RequestHashTree     = "hash_tree"
	RequestJoint        = "joint"
	RequestFreeUnits    = "free_units"
)

// RecordUnitAccepted records an accepted unit and how long it took to process
func RecordUnitAccepted(seconds float64) {
	unitsTotal.WithLabelValues("accepted").Inc()
	unitProcessingDuration.Observe(seconds)
}

// RecordUnitRejected records a rejected unit. reason is the category of the
// error that rejected it.
func RecordUnitRejected(reason string) {
	unitsTotal.WithLabelValues("rejected_" + reason).Inc()
}

// RecordMainChainState records the main chain state after an insertion
func RecordMainChainState(lastStableMCI, lastMCI uint64, newlyStable int, rewound bool) {
	lastStableMCIGauge.Set(float64(lastStableMCI))
	lastMCIGauge.Set(float64(lastMCI))
	newlyStableMCIsTotal.Add(float64(newlyStable))
	if rewound {
		mainChainRewindsTotal.Inc()
	}
}

// RecordStabilityStall records a stability check that could not bound the
// alternative branches above lastStableMCI
func RecordStabilityStall(lastStableMCI uint64) {
	stabilityStallsTotal.Inc()
	stalledMCIGauge.Set(float64(lastStableMCI))
}

// RecordHalted marks consensus as halted
func RecordHalted() {
	haltedGauge.Set(1)
}

// RecordCatchupRequest records a served catchup request with its outcome
func RecordCatchupRequest(request, outcome string, seconds float64) {
	catchupRequestsTotal.WithLabelValues(request, outcome).Inc()
	catchupRequestDuration.WithLabelValues(request).Observe(seconds)
}

// SetActiveCatchupSessions sets the number of active catchup sessions
func SetActiveCatchupSessions(count int) {
	activeCatchupSessionsGauge.Set(float64(count))
}

// RecordHTTPRequest records an HTTP API request
func RecordHTTPRequest(route string, status int) {
	httpRequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
