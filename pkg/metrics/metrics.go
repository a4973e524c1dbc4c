package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 账务指标采集器
// 按交易类型统计成功/失败次数，并累计手续费收入便于和利润表对账
type Collector struct {
	registry          *prometheus.Registry
	operationsApplied *prometheus.CounterVec
	operationsFailed  *prometheus.CounterVec
	feeRevenue        prometheus.Counter
	operationDuration prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		operationsApplied: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_applied_total",
			Help: "Total number of applied ledger operations",
		}, []string{"type"}),
		operationsFailed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_failed_total",
			Help: "Total number of failed ledger operations",
		}, []string{"type"}),
		feeRevenue: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_fee_revenue_total",
			Help: "Accumulated platform fee revenue",
		}),
		operationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken to apply a ledger operation",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordApplied 记录一笔成功的账务操作
func (c *Collector) RecordApplied(opType string, fee float64, seconds float64) {
	c.operationsApplied.WithLabelValues(opType).Inc()
	c.feeRevenue.Add(fee)
	c.operationDuration.Observe(seconds)
}

// RecordFailed 记录一笔失败的账务操作
func (c *Collector) RecordFailed(opType string) {
	c.operationsFailed.WithLabelValues(opType).Inc()
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
