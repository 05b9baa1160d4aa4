// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsSubmitted counts submitted payments by type and outcome.
	PaymentsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_submissions_total",
			Help: "Total payment submissions by payment type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// GatewayCharges counts individual gateway charge attempts.
	GatewayCharges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_charges_total",
			Help: "Total gateway charge attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// GatewayChargeDuration observes gateway charge latency.
	GatewayChargeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_charge_duration_seconds",
			Help:    "Latency of external gateway charge calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ReconciliationRuns counts reconciliation sweeps.
	ReconciliationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciliation_runs_total",
			Help: "Total reconciliation batch runs",
		},
	)

	// ReconciliationItems counts per-installment reconciliation results.
	ReconciliationItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_items_total",
			Help: "Total installments handled by reconciliation, by result",
		},
		[]string{"result"},
	)
)
