// Package metrics exposes profiling results to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

const namespace = "dqmon"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	profiles        *prometheus.CounterVec
	failures        *prometheus.CounterVec
	critical        *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	rows            *prometheus.GaugeVec
	duplicates      *prometheus.GaugeVec
	missingColumns  *prometheus.GaugeVec
	inconsistencies *prometheus.GaugeVec
	lastRun         *prometheus.GaugeVec
}

func New() *Metrics {
	table := []string{"table"}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "profiles_total", Help: "Completed table profiles.",
		}, table),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "profile_failures_total", Help: "Profiles that failed to read or compute.",
		}, table),
		critical: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "critical_profiles_total", Help: "Profiles that crossed an alerting threshold.",
		}, table),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "alerts_total", Help: "Alert delivery attempts by outcome.",
		}, []string{"table", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "profile_duration_seconds", Help: "Time to snapshot and profile a table.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, table),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "table_rows", Help: "Rows in the last profiled snapshot.",
		}, table),
		duplicates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "duplicate_rows", Help: "Duplicate rows in the last profiled snapshot.",
		}, table),
		missingColumns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "columns_with_missing_values", Help: "Columns with at least one missing value.",
		}, table),
		inconsistencies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "inconsistencies", Help: "Inconsistency findings in the last profile.",
		}, table),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_profile_timestamp_seconds", Help: "Unix time of the last profile.",
		}, table),
	}
	m.reg.MustRegister(
		m.profiles, m.failures, m.critical, m.alerts, m.duration,
		m.rows, m.duplicates, m.missingColumns, m.inconsistencies, m.lastRun,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a finished profile.
func (m *Metrics) Observe(p *quality.TableProfile, critical bool, took time.Duration) {
	t := p.TableName
	m.profiles.WithLabelValues(t).Inc()
	if critical {
		m.critical.WithLabelValues(t).Inc()
	}
	m.duration.WithLabelValues(t).Observe(took.Seconds())
	m.rows.WithLabelValues(t).Set(float64(p.TotalRows))
	m.duplicates.WithLabelValues(t).Set(float64(p.Issues.DuplicateRowCount))
	m.missingColumns.WithLabelValues(t).Set(float64(len(p.Issues.MissingByColumn)))
	m.inconsistencies.WithLabelValues(t).Set(float64(len(p.Issues.Inconsistencies)))
	m.lastRun.WithLabelValues(t).Set(float64(p.GeneratedAt.Unix()))
}

// Failed records a profile that could not be produced.
func (m *Metrics) Failed(table string) { m.failures.WithLabelValues(table).Inc() }

// Alert records a delivery attempt; outcome is "sent", "suppressed" or "failed".
func (m *Metrics) Alert(table, outcome string) { m.alerts.WithLabelValues(table, outcome).Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
