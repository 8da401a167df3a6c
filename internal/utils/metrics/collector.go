// internal/utils/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты обращения к кэшу blockhash.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Операции над хранилищем кэша.
const (
	OpLoad = "load"
	OpSave = "save"
)

// Collector управляет набором метрик подготовки транзакций.
// Все методы безопасны для nil-получателя, чтобы компоненты работали без метрик.
type Collector struct {
	registry *prometheus.Registry

	cacheRequests   *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	blockhashFetch  prometheus.Histogram
	feeResolutions  *prometheus.CounterVec
	feeEstimate     prometheus.Histogram
	lastPriorityFee prometheus.Gauge
}

// NewCollector создает коллектор с собственным реестром.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "txprep"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blockhash",
			Name:      "cache_requests_total",
			Help:      "Blockhash cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)
	c.storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blockhash",
			Name:      "store_errors_total",
			Help:      "Blockhash store faults swallowed by the cache",
		},
		[]string{"op"},
	)
	c.blockhashFetch = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "blockhash",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of latest blockhash RPC calls",
			Buckets:   prometheus.DefBuckets,
		},
	)
	c.feeResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fee",
			Name:      "resolutions_total",
			Help:      "Priority fee resolutions by strategy",
		},
		[]string{"strategy"},
	)
	c.feeEstimate = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fee",
			Name:      "estimate_duration_seconds",
			Help:      "Latency of external priority fee estimate calls",
			Buckets:   prometheus.DefBuckets,
		},
	)
	c.lastPriorityFee = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fee",
			Name:      "last_micro_lamports",
			Help:      "Last resolved priority fee in micro-lamports per compute unit",
		},
	)

	c.registry.MustRegister(
		c.cacheRequests,
		c.storeErrors,
		c.blockhashFetch,
		c.feeResolutions,
		c.feeEstimate,
		c.lastPriorityFee,
	)
	return c
}

// Registry возвращает реестр для экспорта через promhttp.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) RecordCacheResult(result string) {
	if c == nil {
		return
	}
	c.cacheRequests.WithLabelValues(result).Inc()
}

func (c *Collector) RecordStoreError(op string) {
	if c == nil {
		return
	}
	c.storeErrors.WithLabelValues(op).Inc()
}

func (c *Collector) ObserveBlockhashFetch(d time.Duration) {
	if c == nil {
		return
	}
	c.blockhashFetch.Observe(d.Seconds())
}

func (c *Collector) RecordFeeResolution(strategy string, fee float64) {
	if c == nil {
		return
	}
	c.feeResolutions.WithLabelValues(strategy).Inc()
	c.lastPriorityFee.Set(fee)
}

func (c *Collector) ObserveFeeEstimate(d time.Duration) {
	if c == nil {
		return
	}
	c.feeEstimate.Observe(d.Seconds())
}
