package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Namespace:       "test",
		Subsystem:       "server",
		DurationBuckets: []float64{0.001, 0.01, 0.1, 1},
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{}
	c := NewCollector(cfg, nil)

	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
	if cfg.Namespace != "phi3" || cfg.Subsystem != "server" {
		t.Errorf("namespace/subsystem = %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("DurationBuckets not defaulted")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	tests := []struct {
		route      string
		method     string
		status     int
		wantMethod string
		wantStatus string
	}{
		{"health", "GET", 200, "GET", "200"},
		{"completion", "POST", 200, "POST", "200"},
		{"not_found", "DELETE", 404, "DELETE", "404"},
		{"not_found", "\x16\x03", 404, "other", "404"},
		{"not_found", "", 404, "none", "404"},
	}

	for _, tt := range tests {
		c.RecordRequest(tt.route, tt.method, tt.status, time.Millisecond, 40, 20)
		got := testutil.ToFloat64(c.requestMetrics.requestsTotal.WithLabelValues(tt.route, tt.wantMethod, tt.wantStatus))
		if got < 1 {
			t.Errorf("requests_total{%s,%s,%s} = %v, want >= 1", tt.route, tt.wantMethod, tt.wantStatus, got)
		}
	}

	if n := testutil.CollectAndCount(c.requestMetrics.requestDuration); n != 3 {
		t.Errorf("request_duration series = %d, want 3", n)
	}
}

func TestCollector_RecordCompletion(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordCompletion("placeholder", "success", 2*time.Millisecond, 26)
	c.RecordCompletion("placeholder", "success", 2*time.Millisecond, 0)
	c.RecordCompletion("llamacpp", "error", time.Second, 0)

	if got := testutil.ToFloat64(c.engineMetrics.completionsTotal.WithLabelValues("placeholder", "success")); got != 2 {
		t.Errorf("completions{placeholder,success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.engineMetrics.tokensTotal.WithLabelValues("placeholder")); got != 26 {
		t.Errorf("tokens{placeholder} = %v, want 26", got)
	}
	if got := testutil.ToFloat64(c.engineMetrics.completionsTotal.WithLabelValues("llamacpp", "error")); got != 1 {
		t.Errorf("completions{llamacpp,error} = %v, want 1", got)
	}
}

func TestCollector_Connections(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.RecordAcceptError()
	c.RecordConnectionError("read")

	if got := testutil.ToFloat64(c.connectionMetrics.accepted); got != 2 {
		t.Errorf("accepted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.connectionMetrics.open); got != 1 {
		t.Errorf("open = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.connectionMetrics.acceptErrors); got != 1 {
		t.Errorf("accept errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.connectionMetrics.errors.WithLabelValues("read")); got != 1 {
		t.Errorf("connection errors{read} = %v, want 1", got)
	}
}

func TestCollector_Audit(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordAuditWrite("stored")
	c.RecordAuditWrite("dropped")
	c.RecordAuditPruned(5)
	c.RecordAuditPruned(0)

	if got := testutil.ToFloat64(c.auditMetrics.writes.WithLabelValues("dropped")); got != 1 {
		t.Errorf("audit dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.auditMetrics.pruned); got != 5 {
		t.Errorf("audit pruned = %v, want 5", got)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	c.RecordRequest("health", "GET", 200, time.Millisecond, 1, 1)
	c.RecordCompletion("placeholder", "success", time.Millisecond, 1)
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.RecordAcceptError()
	c.RecordConnectionError("panic")
	c.RecordAuditWrite("stored")
	c.RecordAuditPruned(1)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordRequest("health", "GET", 200, time.Millisecond, 40, 20)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`test_server_requests_total{method="GET",route="health",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_Serve(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.ConnectionOpened()

	srv, err := c.Listen("127.0.0.1:0", "/metrics", nil)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("failed to scrape: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "test_server_connections_open 1") {
		t.Errorf("scrape missing connections_open")
	}

	resp, err = http.Get("http://" + srv.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("failed to request /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/health on metrics listener = %d, want 404", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestListen_BadAddress(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	if _, err := c.Listen("256.0.0.1:bad", "/metrics", nil); err == nil {
		t.Error("Listen() error = nil")
	}
}
