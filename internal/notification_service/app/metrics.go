package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsDispatchedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifications",
			Name:      "dispatch_attempts_total",
			Help:      "Total number of per-channel dispatch attempts.",
		},
		[]string{"trigger", "channel", "status"},
	)
	notificationsExhaustedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifications",
			Name:      "dispatch_exhausted_total",
			Help:      "Notify calls that failed on every configured channel.",
		},
		[]string{"trigger"},
	)
	remindersDispatchedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifications",
			Name:      "reminders_dispatched_total",
			Help:      "Payment reminders dispatched by the poller.",
		},
		[]string{"slot", "status"},
	)
	reminderTickDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notifications",
			Name:      "reminder_tick_duration_seconds",
			Help:      "Duration of one reminder poller tick.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
