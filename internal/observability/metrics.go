package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dictation_sessions_total",
		Help: "Total recognition sessions started",
	}, []string{"status"})

	handshakeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dictation_handshake_latency_seconds",
		Help:    "Latency of the StartTask/StartSession handshake",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// Frame metrics
	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dictation_frames_sent_total",
		Help: "Total audio frames transmitted",
	})

	audioBytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dictation_audio_bytes_sent_total",
		Help: "Total encoded audio bytes transmitted",
	})

	audioBytesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dictation_audio_bytes_dropped_total",
		Help: "Total PCM bytes dropped at the capture handoff",
	})

	transmitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dictation_transmit_errors_total",
		Help: "Total mid-stream transmit failures (each ends a session)",
	})

	// Event metrics
	eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dictation_events_received_total",
		Help: "Total inbound events by classified type",
	}, []string{"type"})
)

// RecordSessionStart records a session start attempt.
func RecordSessionStart(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	sessionsStarted.WithLabelValues(status).Inc()
}

// RecordHandshake records a completed handshake.
func RecordHandshake(d time.Duration) {
	handshakeLatency.Observe(d.Seconds())
}

// RecordFrameSent records one transmitted audio frame.
func RecordFrameSent(bytes int) {
	framesSent.Inc()
	audioBytesSent.Add(float64(bytes))
}

// RecordAudioDropped records PCM bytes dropped under backpressure.
func RecordAudioDropped(bytes uint64) {
	audioBytesDropped.Add(float64(bytes))
}

// RecordTransmitError records a terminal mid-stream send failure.
func RecordTransmitError() {
	transmitErrors.Inc()
}

// RecordEvent records one classified inbound event.
func RecordEvent(eventType string) {
	eventsReceived.WithLabelValues(eventType).Inc()
}
