package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration structure for the window exporter.
// All configuration comes from defaults overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Shutdown ShutdownConfig
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig
	Auth      MQTTAuthConfig
	QoS       int
	Reconnect MQTTReconnectConfig
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string
	Port int

	// Path is appended to the broker URL. Only websocket transports use it.
	Path string

	// Protocol is the transport scheme: mqtt, mqtts, tcp, ssl, tls, ws or wss.
	Protocol string

	ClientID string
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string
	Password string
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
// Reconnection itself is carried out by the MQTT client library.
type MQTTReconnectConfig struct {
	InitialDelay int
	MaxDelay     int
}

// HTTPConfig contains metrics HTTP listener settings.
type HTTPConfig struct {
	Host     string
	Port     int
	Timeouts HTTPTimeoutConfig
}

// HTTPTimeoutConfig contains HTTP timeout settings, in seconds.
type HTTPTimeoutConfig struct {
	Read  int
	Write int
	Idle  int
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ShutdownConfig bounds how long shutdown may take.
type ShutdownConfig struct {
	Grace time.Duration
}

// supportedProtocols lists the broker URL schemes understood by the MQTT client.
var supportedProtocols = map[string]bool{
	"mqtt":  true,
	"mqtts": true,
	"tcp":   true,
	"ssl":   true,
	"tls":   true,
	"ws":    true,
	"wss":   true,
}

// Load builds the configuration from defaults and environment variables.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. Environment variables (override defaults)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If an environment value cannot be parsed or validation fails
func Load() (*Config, error) {
	cfg := defaultConfig()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				Protocol: "mqtt",
				ClientID: "window-exporter",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 4000,
			Timeouts: HTTPTimeoutConfig{
				Read:  10,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Shutdown: ShutdownConfig{
			Grace: 15 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	// MQTT
	if v := os.Getenv("MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MQTT_PORT: %w", err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("MQTT_PATH"); v != "" {
		cfg.MQTT.Broker.Path = v
	}
	if v := os.Getenv("MQTT_PROTOCOL"); v != "" {
		cfg.MQTT.Broker.Protocol = strings.ToLower(v)
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// HTTP
	if v := os.Getenv("HTTP_HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Shutdown
	if v := os.Getenv("SHUTDOWN_GRACE"); v != "" {
		grace, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_GRACE: %w", err)
		}
		cfg.Shutdown.Grace = grace
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt port must be between 1 and 65535")
	}
	if !supportedProtocols[c.MQTT.Broker.Protocol] {
		errs = append(errs, fmt.Sprintf("mqtt protocol %q is not supported", c.MQTT.Broker.Protocol))
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt qos must be 0, 1, or 2")
	}

	// HTTP validation
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "http port must be between 1 and 65535")
	}

	if c.Shutdown.Grace <= 0 {
		errs = append(errs, "shutdown grace period must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadTimeout returns the HTTP read timeout as a Duration.
func (c HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// WriteTimeout returns the HTTP write timeout as a Duration.
func (c HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// IdleTimeout returns the HTTP idle timeout as a Duration.
func (c HTTPConfig) IdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
