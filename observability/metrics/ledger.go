package metrics

import (
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks program calls and the shape of the ledger after each
// successful mutation. A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	totalSupply prometheus.Gauge
	holders     prometheus.Gauge
	allowances  prometheus.Gauge
	paused      prometheus.Gauge
	requests    *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide metrics registered on the default
// Prometheus registerer.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = NewLedgerMetrics(prometheus.DefaultRegisterer)
	})
	return ledgerRegistry
}

// NewLedgerMetrics builds a fresh set of collectors and registers them on reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Name:      "operations_total",
			Help:      "Ledger calls segmented by operation and result kind.",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenledger",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution of ledger calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		totalSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Name:      "total_supply",
			Help:      "Current total supply in base units. Saturates at the float64 range.",
		}),
		holders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Name:      "holders",
			Help:      "Number of actors with a non-zero balance.",
		}),
		allowances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Name:      "allowances",
			Help:      "Number of non-zero allowances.",
		}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Name:      "paused",
			Help:      "1 while the breaker is engaged.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served by the status endpoint segmented by route and status.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(
		m.operations,
		m.latency,
		m.totalSupply,
		m.holders,
		m.allowances,
		m.paused,
		m.requests,
	)
	return m
}

// ObserveOperation counts a call with its result label and records how long it
// took.
func (m *LedgerMetrics) ObserveOperation(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetLedgerState publishes the gauges describing current ledger contents.
func (m *LedgerMetrics) SetLedgerState(totalSupply *big.Int, holders, allowances int, paused bool) {
	if m == nil {
		return
	}
	m.totalSupply.Set(bigToFloat(totalSupply))
	m.holders.Set(float64(holders))
	m.allowances.Set(float64(allowances))
	if paused {
		m.paused.Set(1)
	} else {
		m.paused.Set(0)
	}
}

// ObserveRequest counts one HTTP request.
func (m *LedgerMetrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, statusLabel(status)).Inc()
}

func bigToFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	if math.IsInf(f, 0) {
		return math.MaxFloat64
	}
	return f
}

func statusLabel(status int) string {
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
