// Package metrics registers the Prometheus instruments exported on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SettlementRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamtab_settlement_requests_created_total",
		Help: "Total number of settlement requests created.",
	})

	SettlementRequestsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamtab_settlement_requests_approved_total",
		Help: "Total number of settlement requests approved.",
	})

	SettlementRequestsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamtab_settlement_requests_expired_total",
		Help: "Total number of settlement requests that expired at approval time.",
	})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamtab_notification_failures_total",
		Help: "Total number of notification deliveries that failed.",
	})

	SettlementPlanSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "teamtab_settlement_plan_transfers",
		Help:    "Number of transfers per computed settlement plan.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teamtab_http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"method", "route", "status"})
)
