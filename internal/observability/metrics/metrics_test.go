package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestVoiceMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVoiceMetrics(reg)

	m.ObserveTurn("knowledge-base", "ok", 0.001)
	m.ObserveTurn("gpt-4o-mini", "ok", 0.8)
	m.ObserveTurn("gpt-4o-mini", "ok", 0.4)
	m.ObserveDropped("transcript")
	m.ObserveSink("airtable", errors.New("403"))
	m.ObserveSink("airtable", nil)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("gpt-4o-mini", "ok")); got != 2 {
		t.Fatalf("turns_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.droppedTotal.WithLabelValues("transcript")); got != 1 {
		t.Fatalf("dropped_events_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sinkTotal.WithLabelValues("airtable", "error")); got != 1 {
		t.Fatalf("sink error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeSession); got != 1 {
		t.Fatalf("active_sessions = %v, want 1", got)
	}
}

func TestVoiceMetricsNilSafe(t *testing.T) {
	var m *VoiceMetrics
	m.ObserveTurn("knowledge-base", "ok", 0.1)
	m.ObserveDropped("example")
	m.ObserveSink("sheets", nil)
	m.SessionOpened()
	m.SessionClosed()
}
