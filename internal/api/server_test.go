package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/window-exporter/internal/infrastructure/config"
	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
	"github.com/nerrad567/window-exporter/internal/metrics"
)

// testServer creates a Server over a fresh gauge store.
func testServer(t *testing.T) (*Server, *metrics.Store) {
	t.Helper()

	store := metrics.NewStore()
	srv, err := New(Deps{
		Config: config.HTTPConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.HTTPTimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger:   logging.Discard(),
		Gatherer: store.Gatherer(),
		Requests: store,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, store
}

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_MissingDeps(t *testing.T) {
	if _, err := New(Deps{Gatherer: prometheus.NewRegistry()}); err == nil {
		t.Error("New() without logger expected error")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without gatherer expected error")
	}
}

func TestMetrics_BeforeAnyMessage(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	body := rec.Body.String()
	if strings.Contains(body, "window_status{") {
		t.Error("window_status series present before any message")
	}
	for _, want := range []string{"go_goroutines", "go_memstats_alloc_bytes"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing default metric %q", want)
		}
	}
}

func TestMetrics_ContainsWindowStatus(t *testing.T) {
	srv, store := testServer(t)
	store.SetWindowStatus("zigbee2mqtt/ikkuna/olohuone", 1)
	store.SetWindowStatus("zigbee2mqtt/ikkuna/makkari", 0)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE window_status gauge",
		`window_status{sensor="zigbee2mqtt/ikkuna/olohuone"} 1`,
		`window_status{sensor="zigbee2mqtt/ikkuna/makkari"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestMetrics_IgnoresNegotiatedFormat(t *testing.T) {
	srv, store := testServer(t)
	store.SetWindowStatus("zigbee2mqtt/ikkuna/olohuone", 1)

	for _, accept := range []string{
		"application/vnd.google.protobuf;proto=io.prometheus.client.MetricFamily;encoding=delimited",
		"application/openmetrics-text;version=1.0.0",
	} {
		t.Run(accept, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.Header.Set("Accept", accept)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", ct)
			}
			if !strings.Contains(rec.Body.String(), `window_status{sensor="zigbee2mqtt/ikkuna/olohuone"} 1`) {
				t.Error("body is not the text exposition")
			}
		})
	}
}

func TestMetrics_Head(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodHead, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

// faultyCollector always reports an invalid metric, making Gather fail.
type faultyCollector struct {
	desc *prometheus.Desc
}

func (c faultyCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c faultyCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.NewInvalidMetric(c.desc, errors.New("injected fault"))
}

func TestMetrics_GatherFailureReturns500(t *testing.T) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(faultyCollector{
		desc: prometheus.NewDesc("faulty_metric", "always fails", nil, nil),
	})

	srv, err := New(Deps{Logger: logging.Discard(), Gatherer: registry})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/health"},
		{http.MethodGet, "/metrics/extra"},
		{http.MethodPost, "/metrics"},
		{http.MethodPut, "/metrics"},
		{http.MethodDelete, "/anything"},
		{http.MethodHead, "/nope"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, srv.Handler(), tt.method, tt.path)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Request-ID", "scrape-42")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "scrape-42" {
		t.Errorf("X-Request-ID = %q, want %q", got, "scrape-42")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, _ := testServer(t)

	handler := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := doRequest(t, handler, http.MethodGet, "/metrics")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequestsCounted(t *testing.T) {
	srv, store := testServer(t)

	doRequest(t, srv.Handler(), http.MethodGet, "/metrics")
	doRequest(t, srv.Handler(), http.MethodGet, "/nope")

	expected := `
# HELP window_exporter_http_requests_total HTTP requests served, by status code.
# TYPE window_exporter_http_requests_total counter
window_exporter_http_requests_total{code="200"} 1
window_exporter_http_requests_total{code="404"} 1
`
	if err := testutil.GatherAndCompare(store.Gatherer(), strings.NewReader(expected), "window_exporter_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestStartAndShutdown(t *testing.T) {
	srv, store := testServer(t)
	store.SetWindowStatus("a", 1)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	addr := srv.Addr()
	if addr == "" {
		t.Fatal("Addr() empty after Start")
	}

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `window_status{sensor="a"} 1`) {
		t.Errorf("GET /metrics = %d %q", resp.StatusCode, body)
	}

	head, err := http.Head("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("HEAD /metrics: %v", err)
	}
	body, _ = io.ReadAll(head.Body)
	head.Body.Close()
	if head.StatusCode != http.StatusOK || len(body) != 0 {
		t.Errorf("HEAD /metrics = %d with %d body bytes, want 200 and none", head.StatusCode, len(body))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Error("listener still accepting connections after Shutdown")
	}
}

func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	srv, err := New(Deps{
		Config:   config.HTTPConfig{Host: "127.0.0.1", Port: port},
		Logger:   logging.Discard(),
		Gatherer: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	err = srv.Start(context.Background())
	if !errors.Is(err, ErrListen) {
		t.Fatalf("Start() error = %v, want ErrListen", err)
	}
	if !strings.Contains(err.Error(), strconv.Itoa(port)) {
		t.Errorf("error %q should name the port", err)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv, _ := testServer(t)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Start error = %v", err)
	}
	if srv.Addr() != "" {
		t.Errorf("Addr() before Start = %q, want empty", srv.Addr())
	}
}
