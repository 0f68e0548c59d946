// Package metrics exposes Prometheus collectors for the evaluation engine
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScanCycles counts completed evaluation cycles
	ScanCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricepulse_scan_cycles_total",
		Help: "Total number of completed evaluation cycles",
	})

	// CycleDuration observes how long one evaluation cycle takes
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricepulse_cycle_duration_seconds",
		Help:    "Duration of evaluation cycles in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PriceFetches counts upstream price fetches by result
	PriceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricepulse_price_fetches_total",
		Help: "Total number of upstream price fetches",
	}, []string{"result"})

	// AlertsFired counts fired alerts by kind
	AlertsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricepulse_alerts_fired_total",
		Help: "Total number of fired alerts",
	}, []string{"kind"})

	// DeliveryFailures counts notification sends that failed
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricepulse_delivery_failures_total",
		Help: "Total number of failed notification deliveries",
	})

	// ActiveSymbols tracks the distinct symbols watched in the last cycle
	ActiveSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricepulse_active_symbols",
		Help: "Distinct symbols referenced by active alerts in the last cycle",
	})
)
