package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal entry metrics
	JournalEntriesCreated   prometheus.Counter
	JournalEntriesReversed  prometheus.Counter
	JournalEntryTransitions *prometheus.CounterVec
	PostingDuration         prometheus.Histogram
	PostingErrors           *prometheus.CounterVec

	// Period metrics
	PeriodClosingTransitions *prometheus.CounterVec

	// Ledger metrics
	TrialBalanceDuration  prometheus.Histogram
	LedgerInconsistencies prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailed    prometheus.Counter
	OutboxCleaned   prometheus.Counter

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		JournalEntriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_journal_entries_created_total",
			Help: "Total number of journal entries created",
		}),
		JournalEntriesReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_journal_entries_reversed_total",
			Help: "Total number of journal entries reversed",
		}),
		JournalEntryTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_journal_entry_transitions_total",
				Help: "Journal entry status transitions by target",
			},
			[]string{"transition"},
		),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "glcore_posting_duration_seconds",
			Help:    "Duration of journal entry posting including balance updates",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),

		PeriodClosingTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_period_closing_transitions_total",
				Help: "Financial period closing transitions by resulting status",
			},
			[]string{"status"},
		),

		TrialBalanceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "glcore_trial_balance_duration_seconds",
			Help:    "Duration of trial balance generation",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerInconsistencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_ledger_inconsistencies_total",
			Help: "Number of failed ledger consistency checks",
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_outbox_events_published_total",
			Help: "Outbox events relayed to the broker",
		}),
		OutboxFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_outbox_events_failed_total",
			Help: "Outbox events that failed to publish",
		}),
		OutboxCleaned: factory.NewCounter(prometheus.CounterOpts{
			Name: "glcore_outbox_events_cleaned_total",
			Help: "Published outbox events deleted by retention cleanup",
		}),

		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glcore_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
