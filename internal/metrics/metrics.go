// Package metrics holds Prometheus instruments shared by the sign-up
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler in main.go is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_field_errors_total",
			Help: "Field-level validation failures, by field.",
		}, []string{"field"})

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_submissions_total",
			Help: "Submissions sent to the collector, by outcome.",
		}, []string{"outcome"})

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signup_sessions_active",
			Help: "Form sessions currently held in memory.",
		})

	CollectorRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_records_total",
			Help: "Records received by the local collector, by outcome.",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		FieldErrorsTotal,
		SubmissionsTotal,
		SessionsActive,
		CollectorRecordsTotal,
	)
}
