package sensor

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
	"github.com/nerrad567/window-exporter/internal/infrastructure/mqtt"
	"github.com/nerrad567/window-exporter/internal/metrics"
)

// Bus is the message bus as seen by the subscriber. *mqtt.Client satisfies
// it; tests substitute a fake.
type Bus interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	Close() error
}

// Gauges is the subset of the gauge store the subscriber writes to.
type Gauges interface {
	SetWindowStatus(sensor string, value float64)
	SetConnected(connected bool)
	CountMessage(result string)
}

// SubscriptionState is the per-topic subscription state within a session.
type SubscriptionState string

const (
	StateUnsubscribed    SubscriptionState = "unsubscribed"
	StateSubscribing     SubscriptionState = "subscribing"
	StateSubscribed      SubscriptionState = "subscribed"
	StateSubscribeFailed SubscriptionState = "subscribe_failed"
)

// Subscriber connects the bus to the gauge store.
type Subscriber struct {
	bus    Bus
	gauges Gauges
	topics Topics
	qos    byte
	logger *logging.Logger

	states map[string]SubscriptionState
	mu     sync.RWMutex
}

// NewSubscriber creates a subscriber for topics, requested at qos. Nothing
// happens on the bus until Start is called.
func NewSubscriber(bus Bus, gauges Gauges, topics Topics, qos byte, logger *logging.Logger) (*Subscriber, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: bus is required", ErrNilDependency)
	}
	if gauges == nil {
		return nil, fmt.Errorf("%w: gauge store is required", ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ErrNilDependency)
	}

	states := make(map[string]SubscriptionState, topics.Len())
	for _, topic := range topics.All() {
		states[topic] = StateUnsubscribed
	}

	return &Subscriber{
		bus:    bus,
		gauges: gauges,
		topics: topics,
		qos:    qos,
		logger: logger.With("component", "subscriber"),
		states: states,
	}, nil
}

// Start installs the connection callbacks and connects to the bus. Topics are
// subscribed from the on-connect callback, so they are re-issued after every
// reconnect performed by the bus client.
func (s *Subscriber) Start(ctx context.Context) error {
	s.bus.SetOnConnect(s.handleConnect)
	s.bus.SetOnDisconnect(s.handleDisconnect)

	if err := s.bus.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to message bus: %w", err)
	}
	return nil
}

// Close closes the bus connection.
func (s *Subscriber) Close() error {
	err := s.bus.Close()
	s.gauges.SetConnected(false)
	s.resetStates()
	if err != nil {
		return fmt.Errorf("closing message bus: %w", err)
	}
	return nil
}

func (s *Subscriber) handleConnect() {
	s.logger.Info("connected to MQTT broker")
	s.gauges.SetConnected(true)
	s.subscribeAll()
}

func (s *Subscriber) handleDisconnect(err error) {
	s.logger.Warn("MQTT connection lost", "error", err)
	s.gauges.SetConnected(false)
	s.resetStates()
}

// subscribeAll attempts every topic independently; one failure does not stop
// the rest and nothing is retried.
func (s *Subscriber) subscribeAll() {
	for _, topic := range s.topics.All() {
		s.setState(topic, StateSubscribing)

		if err := s.bus.Subscribe(topic, s.qos, s.HandleMessage); err != nil {
			s.setState(topic, StateSubscribeFailed)
			s.logger.Error("failed to subscribe to topic", "topic", topic, "error", err)
			continue
		}

		s.setState(topic, StateSubscribed)
		s.logger.Info("subscribed to topic", "topic", topic)
	}
}

// HandleMessage applies one bus message to the gauge store.
//
// Messages on topics outside the registry are logged and ignored. A payload
// that is not valid JSON leaves the store untouched and returns
// ErrMalformedPayload.
func (s *Subscriber) HandleMessage(topic string, payload []byte) error {
	if !s.topics.Contains(topic) {
		s.gauges.CountMessage(metrics.ResultUnexpectedTopic)
		s.logger.Warn("message received on unexpected topic", "topic", topic)
		return nil
	}

	msg, err := decodeMessage(payload)
	if err != nil {
		s.gauges.CountMessage(metrics.ResultMalformed)
		return fmt.Errorf("topic %s: %w", topic, err)
	}

	s.gauges.SetWindowStatus(topic, msg.Value())
	s.gauges.CountMessage(metrics.ResultAccepted)
	s.logger.Info("message", "topic", topic)
	return nil
}

// SubscriptionState returns the current state of topic. Topics outside the
// registry report StateUnsubscribed.
func (s *Subscriber) SubscriptionState(topic string) SubscriptionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[topic]; ok {
		return state
	}
	return StateUnsubscribed
}

func (s *Subscriber) setState(topic string, state SubscriptionState) {
	s.mu.Lock()
	s.states[topic] = state
	s.mu.Unlock()
}

func (s *Subscriber) resetStates() {
	s.mu.Lock()
	for topic := range s.states {
		s.states[topic] = StateUnsubscribed
	}
	s.mu.Unlock()
}
