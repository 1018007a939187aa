package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	exports            prometheus.Counter
	validationFailures prometheus.Counter
	archiveDownloads   *prometheus.CounterVec
	registrations      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visa_exports_total",
			Help: "Export files generated from pending form state.",
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visa_form_validation_failures_total",
			Help: "Form submissions rejected by validation.",
		}),
		archiveDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visa_archive_downloads_total",
			Help: "Archived submissions downloaded by staff.",
		}, []string{"kind"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visa_agency_registrations_total",
			Help: "Agency accounts created from invite links.",
		}),
	}
	reg.MustRegister(m.exports, m.validationFailures, m.archiveDownloads, m.registrations)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Export() {
	if m != nil {
		m.exports.Inc()
	}
}

func (m *Metrics) ValidationFailure() {
	if m != nil {
		m.validationFailures.Inc()
	}
}

// ArchiveDownload counts a staff download; kind is "single" or "bulk".
func (m *Metrics) ArchiveDownload(kind string) {
	if m != nil {
		m.archiveDownloads.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Registration() {
	if m != nil {
		m.registrations.Inc()
	}
}
