// Window exporter - MQTT contact sensors to Prometheus
//
// This is the main entry point. The exporter subscribes to door/window
// contact-sensor topics on an MQTT broker and exposes each sensor's latest
// state as window_status{sensor="<topic>"} on GET /metrics.
//
// Configuration is read from the environment; see internal/infrastructure/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/nerrad567/window-exporter/internal/api"
	"github.com/nerrad567/window-exporter/internal/infrastructure/config"
	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
	"github.com/nerrad567/window-exporter/internal/infrastructure/mqtt"
	"github.com/nerrad567/window-exporter/internal/lifecycle"
	"github.com/nerrad567/window-exporter/internal/metrics"
	"github.com/nerrad567/window-exporter/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// The signal context is wired first so every component can observe it.
	ctx, stop := lifecycle.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns once ctx is cancelled and every component has shut down, or
// immediately on a startup failure.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting window exporter", "version", version, "commit", commit)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)

	bus, err := mqtt.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating MQTT client: %w", err)
	}
	bus.SetLogger(log.With("component", "mqtt"))

	log.Info("configuration loaded",
		"broker", bus.BrokerURL(),
		"qos", cfg.MQTT.QoS,
		"http_port", cfg.HTTP.Port,
	)

	store := metrics.NewStore()

	return serve(ctx, cfg, log, store, bus)
}

// serve starts the HTTP endpoint and the subscriber over bus, blocks until ctx
// is cancelled, then shuts both down within the configured grace period.
func serve(ctx context.Context, cfg *config.Config, log *logging.Logger, store *metrics.Store, bus sensor.Bus) error {
	var cleanup lifecycle.Group
	cleanup.SetLogger(log)

	server, err := api.New(api.Deps{
		Config:   cfg.HTTP,
		Logger:   log,
		Gatherer: store.Gatherer(),
		Requests: store,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting HTTP server: %w", err)
	}
	if err := cleanup.Add("http", server.Shutdown); err != nil {
		return err
	}

	subscriber, err := sensor.NewSubscriber(bus, store, sensor.DefaultTopics, byte(cfg.MQTT.QoS), log)
	if err != nil {
		return errors.Join(fmt.Errorf("creating subscriber: %w", err), cleanup.Shutdown(cfg.Shutdown.Grace))
	}
	if err := cleanup.Add("mqtt", func(context.Context) error { return subscriber.Close() }); err != nil {
		return err
	}
	if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
		return errors.Join(fmt.Errorf("starting subscriber: %w", err), cleanup.Shutdown(cfg.Shutdown.Grace))
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	if sig, ok := lifecycle.SignalFromContext(ctx); ok {
		log.Info("shutdown signal received", "signal", sig.String())
	} else {
		log.Info("shutting down", "reason", context.Cause(ctx))
	}

	if err := cleanup.Shutdown(cfg.Shutdown.Grace); err != nil {
		log.Error("shutdown incomplete", "error", err)
		return nil
	}

	log.Info("window exporter stopped")
	return nil
}
