package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "window_exporter"

// Message results counted by CountMessage.
const (
	ResultAccepted        = "accepted"
	ResultMalformed       = "malformed"
	ResultUnexpectedTopic = "unexpected_topic"
)

// Store is the process-wide gauge store backed by a private registry.
//
// Thread Safety: all methods are safe for concurrent use; each Set is an
// independent per-series update.
type Store struct {
	registry *prometheus.Registry

	windowStatus  *prometheus.GaugeVec
	messages      *prometheus.CounterVec
	mqttConnected prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// NewStore creates a store with default runtime/process collectors and the
// exporter's own series registered.
func NewStore() *Store {
	s := &Store{
		registry: prometheus.NewRegistry(),
		windowStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "window_status",
				Help: "window_status",
			},
			[]string{"sensor"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "MQTT messages handled, by result.",
			},
			[]string{"result"},
		),
		mqttConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mqtt_connected",
				Help:      "Whether the MQTT broker connection is up (1) or down (0).",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by status code.",
			},
			[]string{"code"},
		),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.windowStatus,
		s.messages,
		s.mqttConnected,
		s.httpRequests,
	)

	return s
}

// SetWindowStatus overwrites the window_status value for one sensor.
func (s *Store) SetWindowStatus(sensor string, value float64) {
	s.windowStatus.WithLabelValues(sensor).Set(value)
}

// SetConnected records the broker connection state.
func (s *Store) SetConnected(connected bool) {
	if connected {
		s.mqttConnected.Set(1)
		return
	}
	s.mqttConnected.Set(0)
}

// CountMessage increments the handled-message counter for result.
func (s *Store) CountMessage(result string) {
	s.messages.WithLabelValues(result).Inc()
}

// CountRequest increments the HTTP request counter for a status code.
func (s *Store) CountRequest(code int) {
	s.httpRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Gatherer returns the registry for exposition.
func (s *Store) Gatherer() prometheus.Gatherer {
	return s.registry
}

// WindowStatus exposes the gauge vector for inspection in tests.
func (s *Store) WindowStatus() *prometheus.GaugeVec {
	return s.windowStatus
}

// Messages exposes the message counter for inspection in tests.
func (s *Store) Messages() *prometheus.CounterVec {
	return s.messages
}
