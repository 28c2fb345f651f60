package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters for the reconciliation engine.
type EngineMetrics struct {
	linksTotal        *prometheus.CounterVec
	transitionsTotal  *prometheus.CounterVec
	writebackFailures prometheus.Counter
	attributionDenied prometheus.Counter
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		linksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "engine",
			Name:      "event_links_total",
			Help:      "Calendar event link attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "engine",
			Name:      "transitions_total",
			Help:      "Appointment state transitions by target state and result",
		}, []string{"target", "result"}),
		writebackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "engine",
			Name:      "writeback_failures_total",
			Help:      "Calendar writebacks that failed and were swallowed",
		}),
		attributionDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicops",
			Subsystem: "engine",
			Name:      "attribution_rejections_total",
			Help:      "Link attempts rejected because no professional could be resolved",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.linksTotal, m.transitionsTotal, m.writebackFailures, m.attributionDenied)
	return m
}

func (m *EngineMetrics) ObserveLink(outcome string) {
	if m == nil {
		return
	}
	m.linksTotal.WithLabelValues(outcome).Inc()
}

func (m *EngineMetrics) ObserveTransition(target, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(target, result).Inc()
}

func (m *EngineMetrics) ObserveWritebackFailure() {
	if m == nil {
		return
	}
	m.writebackFailures.Inc()
}

func (m *EngineMetrics) ObserveAttributionRejection() {
	if m == nil {
		return
	}
	m.attributionDenied.Inc()
}
