// Package api serves the exporter's HTTP surface: the Prometheus scrape
// endpoint and nothing else.
//
//	GET /metrics   text exposition of the gauge store, 200; 500 if gathering fails
//	HEAD /metrics  same status and headers, no body
//	anything else  404
//
// The server follows the same lifecycle pattern as other components:
//
//	server, err := api.New(deps)
//	if err := server.Start(ctx); err != nil { ... } // binds synchronously
//	defer server.Shutdown(shutdownCtx)
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
