package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ingestion metrics
	DealsSubmitted  prometheus.Counter
	DealsReversed   prometheus.Counter
	SplitsCapped    prometheus.Counter
	SubmitDuration  prometheus.Histogram
	SubmitErrors    *prometheus.CounterVec
	CommissionGross prometheus.Histogram

	// Payout metrics
	PayoutsReleased prometheus.Counter
	PayoutsResolved *prometheus.CounterVec

	// Settlement metrics
	BatchesRun        prometheus.Counter
	BatchItemsClaimed prometheus.Histogram
	TransferOutcomes  *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	Reconciliations   *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		DealsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commissions_deals_submitted_total",
			Help: "Total number of closed deals ingested",
		}),
		DealsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commissions_deals_reversed_total",
			Help: "Total number of reversal records appended",
		}),
		SplitsCapped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commissions_splits_capped_total",
			Help: "Total number of splits limited by the annual cap",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commissions_submit_duration_seconds",
			Help:    "Duration of deal ingestion transactions",
			Buckets: prometheus.DefBuckets,
		}),
		SubmitErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_submit_errors_total",
				Help: "Total number of rejected deal submissions by reason",
			},
			[]string{"reason"},
		),
		CommissionGross: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commissions_gross_cents",
			Help:    "Gross commission per deal in minor units",
			Buckets: []float64{10_000, 100_000, 500_000, 1_000_000, 2_500_000, 5_000_000, 10_000_000},
		}),

		PayoutsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commissions_payouts_released_total",
			Help: "Total number of line items released for payment",
		}),
		PayoutsResolved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_payouts_resolved_total",
				Help: "Total number of line items resolved by outcome",
			},
			[]string{"outcome"},
		),

		BatchesRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commissions_batches_run_total",
			Help: "Total number of settlement batches executed",
		}),
		BatchItemsClaimed: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commissions_batch_items_claimed",
			Help:    "Line items claimed per settlement batch",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		TransferOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_transfers_total",
				Help: "Payment transfer calls by outcome",
			},
			[]string{"outcome"},
		),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commissions_batch_duration_seconds",
			Help:    "Duration of settlement batch runs",
			Buckets: prometheus.DefBuckets,
		}),
		Reconciliations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_reconciliations_total",
				Help: "Stale Submitted items reconciled by lookup result",
			},
			[]string{"result"},
		),

		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_audit_logs_total",
				Help: "Audit log entries written by action",
			},
			[]string{"action"},
		),
	}
}
