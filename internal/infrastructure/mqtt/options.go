package mqtt

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/window-exporter/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds the wait for the first connection in Connect.
	defaultConnectTimeout = 10 * time.Second

	// defaultSubscribeTimeout is the maximum time to wait for a SUBACK.
	defaultSubscribeTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending work on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// secureSchemes are the transports that need a TLS configuration.
var secureSchemes = map[string]bool{
	"mqtts": true,
	"ssl":   true,
	"tls":   true,
	"wss":   true,
}

// brokerURL builds the broker URL from protocol, host, port and path.
//
// Examples:
//
//	mqtt://localhost:1883
//	wss://broker.example.com:8884/mqtt
func brokerURL(cfg config.MQTTBrokerConfig) (*url.URL, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is empty", ErrInvalidBroker)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidBroker, cfg.Port)
	}

	scheme := strings.ToLower(cfg.Protocol)
	if scheme == "" {
		scheme = "mqtt"
	}

	u := &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	if cfg.Path != "" {
		u.Path = "/" + strings.TrimPrefix(cfg.Path, "/")
	}
	return u, nil
}

// buildClientOptions creates paho MQTT options from exporter config.
//
// This configures:
//   - Broker URL (scheme taken from the configured protocol)
//   - Client ID for identification
//   - Authentication credentials (if provided)
//   - Auto-reconnect and connect retry, both handled by paho
//   - TLS configuration for secure schemes
//   - Clean session mode; subscriptions are re-issued on every connect
func buildClientOptions(cfg config.MQTTConfig) (*pahomqtt.ClientOptions, error) {
	u, err := brokerURL(cfg.Broker)
	if err != nil {
		return nil, err
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(u.String())
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	if cfg.Reconnect.InitialDelay > 0 {
		opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	}
	if cfg.Reconnect.MaxDelay > 0 {
		opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	}

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if secureSchemes[u.Scheme] {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts, nil
}
