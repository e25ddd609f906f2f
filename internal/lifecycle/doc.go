// Package lifecycle turns termination signals into a cancelled context and
// runs component cleanup actions under a bounded grace period.
//
// Startup wires the signal context first so every long-lived component can
// observe it:
//
//	ctx, stop := lifecycle.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	var cleanup lifecycle.Group
//	cleanup.Add("mqtt", func(context.Context) error { return subscriber.Close() })
//	cleanup.Add("http", server.Shutdown)
//
//	<-ctx.Done()
//	err := cleanup.Shutdown(cfg.Shutdown.Grace)
package lifecycle
