// Package logging provides structured logging for the window exporter.
//
// It wraps log/slog with:
//
//   - JSON output by default, text output for local development
//   - Default fields (service, version) on every entry
//   - Level filtering (debug, info, warn, error)
//
// Configuration comes from LOG_LEVEL and LOG_FORMAT:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("subscribed to topic", "topic", topic)
//	logger.Warn("message received on unexpected topic", "topic", topic)
//
// Never log credentials or message payloads.
package logging
