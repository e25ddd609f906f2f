package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/window-exporter/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for the exporter.
//
// It provides connection management, subscription handling with panic
// recovery and connection-state callbacks. Reconnection is left entirely to
// paho; callers re-subscribe from the on-connect callback because sessions are
// clean.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client    pahomqtt.Client
	brokerURL string

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked from paho's delivery goroutine and should return
// quickly. A returned error is logged and otherwise ignored.
type MessageHandler func(topic string, payload []byte) error

// New builds a client from config without touching the network.
//
// Returns:
//   - *Client: Client ready for Connect
//   - error: If the broker address cannot be built from config
func New(cfg config.MQTTConfig) (*Client, error) {
	opts, err := buildClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	u, err := brokerURL(cfg.Broker)
	if err != nil {
		return nil, err
	}

	c := &Client{
		brokerURL: u.String(),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		if logger := c.getLogger(); logger != nil {
			logger.Info("reconnecting to MQTT broker", "broker", c.brokerURL)
		}
	})

	c.client = pahomqtt.NewClient(opts)
	return c, nil
}

// Connect starts connecting to the broker and waits for the first connection.
//
// The wait is bounded by ctx and the connect timeout. When the broker is not
// reachable in time Connect returns nil: paho keeps retrying in the background
// and the on-connect callback fires once it succeeds. Only a definite failure
// reported by paho is returned.
//
// Returns:
//   - error: ErrConnectionFailed wrapping the paho error, or ctx.Err()
func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	timer := time.NewTimer(defaultConnectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
		return nil
	case <-timer.C:
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT broker not reachable yet, retrying in background",
				"broker", c.brokerURL,
				"waited", defaultConnectTimeout,
			)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt connect: %w", ctx.Err())
	}
}

// handleConnect is called by paho whenever a connection is established.
func (c *Client) handleConnect() {
	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called by paho when the connection is lost.
// With a clean session the broker has dropped every subscription; the
// on-connect callback re-issues them.
func (c *Client) handleDisconnect(err error) {
	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Close disconnects from the broker, letting in-flight work finish within
// the quiesce period. Closing a client that never connected is not an error.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// IsConnected returns true only while a connection is open. It is false
// while paho is reconnecting.
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

// BrokerURL returns the URL the client connects to. It never carries credentials.
func (c *Client) BrokerURL() string {
	return c.brokerURL
}

// SetOnConnect sets a callback invoked on the initial connect and on every
// reconnect. It runs on its own goroutine, so it may block on Subscribe.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler errors, panics and reconnect notices.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and error logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
