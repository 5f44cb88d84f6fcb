package call

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and gauges for the calls created by one API. A
// nil *Metrics is valid and records nothing, so instrumentation stays
// optional.
type Metrics struct {
	callsActive     prometheus.Gauge
	callStates      *prometheus.CounterVec
	callsEnded      *prometheus.CounterVec
	contentsActive  *prometheus.GaugeVec
	offersEnqueued  prometheus.Counter
	offersResolved  *prometheus.CounterVec
	flowTransitions *prometheus.CounterVec
	flowFailures    prometheus.Counter
}

// NewMetrics creates and registers the metric set with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "call",
			Name:      "active_calls",
			Help:      "Number of calls that have started and not yet ended.",
		}),
		callStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "state_transitions_total",
			Help:      "Call state transitions by resulting state.",
		}, []string{"state"}),
		callsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "ended_total",
			Help:      "Ended calls by state change reason.",
		}, []string{"reason"}),
		contentsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "call",
			Name:      "active_contents",
			Help:      "Number of live contents by media type.",
		}, []string{"media_type"}),
		offersEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "media_description_offers_total",
			Help:      "Media description offers submitted for negotiation.",
		}),
		offersResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "media_description_resolutions_total",
			Help:      "Media description resolutions by outcome.",
		}, []string{"outcome"}),
		flowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "flow_state_transitions_total",
			Help:      "Stream flow state transitions by direction and state.",
		}, []string{"direction", "state"}),
		flowFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "call",
			Name:      "flow_failures_total",
			Help:      "Flow state failures reported by the media engine.",
		}),
	}
	reg.MustRegister(
		m.callsActive,
		m.callStates,
		m.callsEnded,
		m.contentsActive,
		m.offersEnqueued,
		m.offersResolved,
		m.flowTransitions,
		m.flowFailures,
	)
	return m
}

func (m *Metrics) callStarted() {
	if m == nil {
		return
	}
	m.callsActive.Inc()
}

func (m *Metrics) callStateChanged(state CallState) {
	if m == nil {
		return
	}
	m.callStates.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) callEnded(reason CallStateChangeReason) {
	if m == nil {
		return
	}
	m.callsActive.Dec()
	m.callsEnded.WithLabelValues(reason.String()).Inc()
}

func (m *Metrics) contentAdded(mediaType MediaType) {
	if m == nil {
		return
	}
	m.contentsActive.WithLabelValues(mediaType.String()).Inc()
}

func (m *Metrics) contentRemoved(mediaType MediaType) {
	if m == nil {
		return
	}
	m.contentsActive.WithLabelValues(mediaType.String()).Dec()
}

func (m *Metrics) offerEnqueued() {
	if m == nil {
		return
	}
	m.offersEnqueued.Inc()
}

func (m *Metrics) offerResolved(outcome string) {
	if m == nil {
		return
	}
	m.offersResolved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) flowTransition(direction string, state StreamFlowState) {
	if m == nil {
		return
	}
	m.flowTransitions.WithLabelValues(direction, state.String()).Inc()
}

func (m *Metrics) flowFailure() {
	if m == nil {
		return
	}
	m.flowFailures.Inc()
}
