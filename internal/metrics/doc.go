// Package metrics holds the exporter's gauge store: a private Prometheus
// registry with the Go runtime and process collectors, the window_status
// gauge and a few counters describing the exporter itself.
//
// The store is created once in main and injected into the subscriber (which
// writes) and the HTTP server (which gathers). Nothing is registered on the
// global default registry, so each test can build its own store.
//
// Exposed series:
//
//	window_status{sensor="<topic>"}                 1 closed, 0 otherwise
//	window_exporter_messages_total{result="..."}    accepted|malformed|unexpected_topic
//	window_exporter_mqtt_connected                  1 while the broker connection is up
//	window_exporter_http_requests_total{code="..."}
package metrics
