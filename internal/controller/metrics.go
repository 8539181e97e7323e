package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// ReconcileTotal counts the total number of reconciliations
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminui_operator_reconcile_total",
			Help: "Total number of reconciliations by resulting state",
		},
		[]string{"state"},
	)

	// ReconcileDuration tracks the duration of reconciliations
	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adminui_operator_reconcile_duration_seconds",
			Help:    "Duration of reconciliations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"state"},
	)

	// PlanApplies counts service plan applications
	PlanApplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminui_operator_plan_applies_total",
			Help: "Total number of service plan applications",
		},
		[]string{"result"},
	)

	// MigrationRuns counts database migration runs
	MigrationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminui_operator_migration_runs_total",
			Help: "Total number of database migration runs",
		},
		[]string{"direction", "result"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		ReconcileTotal,
		ReconcileDuration,
		PlanApplies,
		MigrationRuns,
	)
}

// RecordReconcile records the outcome and duration of one reconciliation.
func RecordReconcile(state string, seconds float64) {
	ReconcileTotal.WithLabelValues(state).Inc()
	ReconcileDuration.WithLabelValues(state).Observe(seconds)
}
