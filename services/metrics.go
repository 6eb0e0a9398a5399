package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the reminder and weekly report jobs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reminders   *prometheus.CounterVec
	reports     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// MustNewMetrics registers the collectors with reg and panics on duplicate
// registration. Tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		reminders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recruit_reminder",
				Name:      "reminders_total",
				Help:      "Reminder decisions by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recruit_reminder",
				Name:      "weekly_reports_total",
				Help:      "Weekly report decisions by outcome.",
			},
			[]string{"outcome"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "recruit_reminder",
				Name:      "job_duration_seconds",
				Help:      "Wall time of scheduled job runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job", "status"},
		),
	}
	reg.MustRegister(m.reminders, m.reports, m.jobDuration)
	return m
}

func (m *Metrics) reminder(kind, outcome string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) report(outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeJob(job string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.jobDuration.WithLabelValues(job, status).Observe(time.Since(started).Seconds())
}
