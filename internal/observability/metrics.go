package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores the Prometheus collectors for the sweep and delivery flows.
type Metrics struct {
	registry *prometheus.Registry

	sweepsTotal              prometheus.Counter
	sweepDuration            prometheus.Histogram
	candidatesMatchedTotal   *prometheus.CounterVec
	channelSendsTotal        *prometheus.CounterVec
	channelSendDuration      *prometheus.HistogramVec
	suppressedTotal          prometheus.Counter
	ledgerConflictsTotal     prometheus.Counter
	ledgerWriteFailuresTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		sweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "sweeps_total",
				Help:      "Total number of completed reminder sweeps.",
			},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "agroalert",
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a full reminder sweep in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		candidatesMatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "candidates_matched_total",
				Help:      "Total (deadline, threshold) pairs matched by the policy, by kind.",
			},
			[]string{"kind"},
		),
		channelSendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "channel_sends_total",
				Help:      "Total outbound channel calls by channel and result.",
			},
			[]string{"channel", "result"},
		),
		channelSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agroalert",
				Name:      "channel_send_duration_seconds",
				Help:      "Outbound channel call duration in seconds by channel.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"channel"},
		),
		suppressedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "suppressed_total",
				Help:      "Total reminders suppressed by a prior success in the send ledger.",
			},
		),
		ledgerConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "ledger_conflicts_total",
				Help:      "Total ledger inserts rejected by the success uniqueness constraint.",
			},
		),
		ledgerWriteFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agroalert",
				Name:      "ledger_write_failures_total",
				Help:      "Total ledger writes that failed for reasons other than duplicate suppression.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sweepsTotal,
		m.sweepDuration,
		m.candidatesMatchedTotal,
		m.channelSendsTotal,
		m.channelSendDuration,
		m.suppressedTotal,
		m.ledgerConflictsTotal,
		m.ledgerWriteFailuresTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncSweep() {
	if m == nil {
		return
	}
	m.sweepsTotal.Inc()
}

func (m *Metrics) ObserveSweepDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.sweepDuration.Observe(seconds)
}

func (m *Metrics) IncCandidateMatched(kind string) {
	if m == nil {
		return
	}
	m.candidatesMatchedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncChannelSend(channel string, result string) {
	if m == nil {
		return
	}
	m.channelSendsTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(result)).Inc()
}

func (m *Metrics) ObserveSendDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.channelSendDuration.WithLabelValues(normalizeLabel(channel)).Observe(seconds)
}

func (m *Metrics) IncSuppressed() {
	if m == nil {
		return
	}
	m.suppressedTotal.Inc()
}

func (m *Metrics) IncLedgerConflict() {
	if m == nil {
		return
	}
	m.ledgerConflictsTotal.Inc()
}

func (m *Metrics) IncLedgerWriteFailure() {
	if m == nil {
		return
	}
	m.ledgerWriteFailuresTotal.Inc()
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
