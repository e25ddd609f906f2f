// Package config handles loading and validating window exporter configuration.
//
// This package manages:
//   - Default value handling
//   - Overriding defaults with environment variables
//   - Validation of ports, protocol and shutdown grace period
//
// There is no configuration file. Every setting is read from the process
// environment once at startup:
//
//	MQTT_HOST, MQTT_PORT, MQTT_PATH, MQTT_PROTOCOL, MQTT_CLIENT_ID
//	MQTT_USERNAME, MQTT_PASSWORD
//	HTTP_HOST, HTTP_PORT
//	LOG_LEVEL, LOG_FORMAT
//	SHUTDOWN_GRACE
//
// Security Considerations:
//   - MQTT_PASSWORD must never be logged
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.HTTP.Port)
package config
