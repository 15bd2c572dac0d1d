package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoiceMetrics exposes counters/histograms for voice turns and log sinks.
type VoiceMetrics struct {
	turnsTotal    *prometheus.CounterVec
	droppedTotal  *prometheus.CounterVec
	sinkTotal     *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	activeSession prometheus.Gauge
}

func NewVoiceMetrics(reg prometheus.Registerer) *VoiceMetrics {
	m := &VoiceMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crystal_voice",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Completed voice turns by provenance and outcome",
		}, []string{"provenance", "outcome"}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crystal_voice",
			Subsystem: "assistant",
			Name:      "dropped_events_total",
			Help:      "Input events dropped because a turn was already processing",
		}, []string{"event"}),
		sinkTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crystal_voice",
			Subsystem: "logbook",
			Name:      "sink_results_total",
			Help:      "Turn log deliveries by sink and status",
		}, []string{"sink", "status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crystal_voice",
			Subsystem: "assistant",
			Name:      "turn_latency_seconds",
			Help:      "Time spent routing a query to a reply",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provenance"}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crystal_voice",
			Subsystem: "assistant",
			Name:      "active_sessions",
			Help:      "Open voice websocket sessions",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.droppedTotal, m.sinkTotal, m.turnLatency, m.activeSession)
	return m
}

func (m *VoiceMetrics) ObserveTurn(provenance, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(provenance, outcome).Inc()
	m.turnLatency.WithLabelValues(provenance).Observe(seconds)
}

func (m *VoiceMetrics) ObserveDropped(event string) {
	if m == nil {
		return
	}
	m.droppedTotal.WithLabelValues(event).Inc()
}

func (m *VoiceMetrics) ObserveSink(sink string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sinkTotal.WithLabelValues(sink, status).Inc()
}

func (m *VoiceMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSession.Inc()
}

func (m *VoiceMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSession.Dec()
}
