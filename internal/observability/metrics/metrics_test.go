package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.ObserveLink("created")
	m.ObserveLink("created")
	m.ObserveLink("existing")
	m.ObserveTransition("completed", "ok")
	m.ObserveWritebackFailure()
	m.ObserveAttributionRejection()

	if got := testutil.ToFloat64(m.linksTotal.WithLabelValues("created")); got != 2 {
		t.Errorf("links created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.transitionsTotal.WithLabelValues("completed", "ok")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.writebackFailures); got != 1 {
		t.Errorf("writeback failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attributionDenied); got != 1 {
		t.Errorf("attribution rejections = %v, want 1", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.ObserveLink("created")
	m.ObserveTransition("no_show", "ok")
	m.ObserveWritebackFailure()
	m.ObserveAttributionRejection()
}
