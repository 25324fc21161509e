package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Web request outcomes.
const (
	OutcomeReplied      = "replied"
	OutcomeHandled      = "handled"
	OutcomeUnmatched    = "unmatched"
	OutcomeMalformed    = "malformed"
	OutcomeUnrecognized = "unrecognized"
	OutcomeFailed       = "failed"
)

// Frame directions and results.
const (
	DirectionIn  = "in"
	DirectionOut = "out"

	FrameOK        = "ok"
	FrameDropped   = "dropped"
	FrameUnhandled = "unhandled"
	FrameError     = "error"
)

var (
	registerOnce sync.Once

	webRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elweb",
			Subsystem: "web",
			Name:      "requests_total",
			Help:      "Web request packets dispatched, by reason and outcome.",
		},
		[]string{"reason", "outcome"},
	)
	webFields = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "elweb",
			Subsystem: "web",
			Name:      "fields_total",
			Help:      "Submitted form fields delivered to handlers.",
		},
	)
	linkFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elweb",
			Subsystem: "link",
			Name:      "frames_total",
			Help:      "Frames crossing the co-processor link.",
		},
		[]string{"direction", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(webRequests, webFields, linkFrames)
	})
}

func RecordWebRequest(reason, outcome string) {
	RegisterMetrics()
	webRequests.WithLabelValues(reason, outcome).Inc()
}

func RecordWebField() {
	RegisterMetrics()
	webFields.Inc()
}

func RecordFrame(direction, result string) {
	RegisterMetrics()
	linkFrames.WithLabelValues(direction, result).Inc()
}
