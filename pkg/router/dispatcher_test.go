package router

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/audit/storage"
	"workspaces-inventory/phi3/pkg/config"
	"workspaces-inventory/phi3/pkg/engine"
	"workspaces-inventory/phi3/pkg/telemetry/logging"
	"workspaces-inventory/phi3/pkg/telemetry/metrics"
	"workspaces-inventory/phi3/pkg/telemetry/tracing"
	"workspaces-inventory/phi3/pkg/wire"
)

type failingEngine struct{}

func (failingEngine) Complete(ctx context.Context, prompt string) (engine.Result, error) {
	return engine.Result{}, &engine.Error{Engine: "llamacpp", Message: "inference failed", Cause: errors.New("exit status 1")}
}

func (failingEngine) Name() string { return "llamacpp" }

type echoEngine struct{ text string }

func (e echoEngine) Complete(ctx context.Context, prompt string) (engine.Result, error) {
	return engine.Result{Text: e.text, Tokens: 1}, nil
}

func (echoEngine) Name() string { return "echo" }

// swapOnName replaces the engine in holder with next the first time its name
// is read, so a hot reload lands in the middle of a dispatch.
type swapOnName struct {
	holder *engine.Swappable
	next   engine.Engine
	once   sync.Once
}

func (s *swapOnName) Complete(ctx context.Context, prompt string) (engine.Result, error) {
	return engine.Result{Text: "from first", Tokens: 1}, nil
}

func (s *swapOnName) Name() string {
	s.once.Do(func() { s.holder.Swap(s.next) })
	return "first"
}

func dispatch(d *Dispatcher, raw string) *wire.Response {
	return d.Dispatch(context.Background(), wire.ParseRequest([]byte(raw)))
}

func TestDispatch_Routes(t *testing.T) {
	d := New(engine.NewPlaceholder(), Deps{})

	tests := []struct {
		name       string
		raw        string
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{
			name:       "health",
			raw:        "GET /health HTTP/1.1\r\nHost: x\r\n\r\n",
			wantStatus: 200,
			wantBody:   `{"status":"healthy"}`,
			wantType:   "application/json",
		},
		{
			name:       "health prefix",
			raw:        "GET /healthz HTTP/1.1\r\n\r\n",
			wantStatus: 200,
			wantBody:   `{"status":"healthy"}`,
			wantType:   "application/json",
		},
		{
			name:       "health with query",
			raw:        "GET /health?x=1 HTTP/1.1\r\n\r\n",
			wantStatus: 200,
			wantBody:   `{"status":"healthy"}`,
			wantType:   "application/json",
		},
		{
			name:       "completion",
			raw:        "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"hello world\"}",
			wantStatus: 200,
			wantBody:   `{"response":"` + engine.PlaceholderPrefix + `hello world"}`,
			wantType:   "application/json",
		},
		{
			name:       "completion prefix",
			raw:        "POST /completionX HTTP/1.1\r\n\r\n{\"prompt\":\"p\"}",
			wantStatus: 200,
			wantBody:   `{"response":"` + engine.PlaceholderPrefix + `p"}`,
			wantType:   "application/json",
		},
		{
			name:       "completion without prompt",
			raw:        "POST /completion HTTP/1.1\r\n\r\n{}",
			wantStatus: 200,
			wantBody:   `{"response":"` + engine.PlaceholderPrefix + `"}`,
			wantType:   "application/json",
		},
		{
			name:       "completion without body",
			raw:        "POST /completion HTTP/1.1\r\n",
			wantStatus: 200,
			wantBody:   `{"response":"` + engine.PlaceholderPrefix + `"}`,
			wantType:   "application/json",
		},
		{name: "unknown path", raw: "GET /unknown HTTP/1.1\r\n\r\n", wantStatus: 404},
		{name: "wrong method for completion", raw: "DELETE /completion HTTP/1.1\r\n\r\n", wantStatus: 404},
		{name: "wrong method for health", raw: "POST /health HTTP/1.1\r\n\r\n", wantStatus: 404},
		{name: "get completion", raw: "GET /completion HTTP/1.1\r\n\r\n", wantStatus: 404},
		{name: "lowercase method", raw: "get /health HTTP/1.1\r\n\r\n", wantStatus: 404},
		{name: "empty request", raw: "", wantStatus: 404},
		{name: "garbage", raw: "\x00\x01\x02", wantStatus: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := dispatch(d, tt.raw)
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status, tt.wantStatus)
			}
			if string(resp.Body) != tt.wantBody {
				t.Errorf("Body = %s, want %s", resp.Body, tt.wantBody)
			}
			if got := resp.Header("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestDispatch_CompletionIsValidJSON(t *testing.T) {
	d := New(engine.NewPlaceholder(), Deps{})
	prompts := []string{
		"hello world",
		`back\slash`,
		"tab\tand<html>&",
		"unicode héllo 世界",
		"line\\nbreak",
	}

	for _, prompt := range prompts {
		raw := "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"" + prompt + "\"}"
		resp := dispatch(d, raw)

		var out struct {
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			t.Fatalf("prompt %q: body %s is not valid JSON: %v", prompt, resp.Body, err)
		}
		if !strings.Contains(out.Response, prompt) {
			t.Errorf("prompt %q: response %q does not contain the prompt", prompt, out.Response)
		}
	}
}

func TestDispatch_EngineTextIsEscaped(t *testing.T) {
	d := New(echoEngine{text: "say \"hi\"\n<b>"}, Deps{})
	resp := dispatch(d, "POST /completion HTTP/1.1\r\n\r\n{}")

	if want := `{"response":"say \"hi\"\n<b>"}`; string(resp.Body) != want {
		t.Errorf("Body = %s, want %s", resp.Body, want)
	}
}

func TestDispatch_EngineError(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := audit.NewRecorder(store, &config.AuditConfig{AsyncBuffer: 4, WriteTimeout: time.Second}, nil)
	d := New(failingEngine{}, Deps{Recorder: rec})

	resp := dispatch(d, "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"x\"}")
	if resp.Status != 500 {
		t.Errorf("Status = %d, want 500", resp.Status)
	}
	if string(resp.Body) != `{"error":"inference failed"}` {
		t.Errorf("Body = %s", resp.Body)
	}

	rec.Close()
	list, _ := store.List(context.Background(), 0)
	if len(list) != 1 || list[0].Error == "" || list[0].Status != 500 || list[0].Engine != "llamacpp" {
		t.Errorf("audit records = %+v", list)
	}
}

func TestDispatch_StrictRoutes(t *testing.T) {
	d := New(engine.NewPlaceholder(), Deps{StrictRoutes: true})

	tests := []struct {
		raw  string
		want int
	}{
		{"GET /health HTTP/1.1\r\n\r\n", 200},
		{"GET /health?verbose=1 HTTP/1.1\r\n\r\n", 200},
		{"GET /healthz HTTP/1.1\r\n\r\n", 404},
		{"POST /completion HTTP/1.1\r\n\r\n{}", 200},
		{"POST /completionX HTTP/1.1\r\n\r\n{}", 404},
		{"POST /completion/ HTTP/1.1\r\n\r\n{}", 404},
	}

	for _, tt := range tests {
		if got := dispatch(d, tt.raw).Status; got != tt.want {
			t.Errorf("Dispatch(%q) status = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		raw    string
		strict bool
		want   string
	}{
		{"GET /health", false, audit.RouteHealth},
		{"GET /healthcheck", false, audit.RouteHealth},
		{"GET /healthcheck", true, audit.RouteNotFound},
		{"POST /completion", false, audit.RouteCompletion},
		{"POST /completions", false, audit.RouteCompletion},
		{"PUT /completion", false, audit.RouteNotFound},
		{"GET", false, audit.RouteNotFound},
		{"GET /", false, audit.RouteNotFound},
	}
	for _, tt := range tests {
		if got := Match(wire.ParseRequest([]byte(tt.raw)), tt.strict); got != tt.want {
			t.Errorf("Match(%q, strict=%v) = %q, want %q", tt.raw, tt.strict, got, tt.want)
		}
	}
}

func TestDispatch_AuditRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := audit.NewRecorder(store, &config.AuditConfig{AsyncBuffer: 8, WriteTimeout: time.Second}, nil)
	d := New(engine.NewPlaceholder(), Deps{Recorder: rec})

	ctx := logging.WithConnID(context.Background(), "conn-42")
	d.Dispatch(ctx, wire.ParseRequest([]byte("POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"hello world\"}")))
	d.Dispatch(ctx, wire.ParseRequest([]byte("GET /nope HTTP/1.1\r\n\r\n")))
	rec.Close()

	list, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("stored %d records, want 2", len(list))
	}

	byRoute := map[string]*audit.Record{}
	for _, r := range list {
		byRoute[r.Route] = r
	}

	c := byRoute[audit.RouteCompletion]
	if c == nil {
		t.Fatal("no completion record")
	}
	if c.ConnID != "conn-42" || c.Status != 200 || c.Engine != "placeholder" {
		t.Errorf("completion record = %+v", c)
	}
	if c.PromptHash != audit.HashPrompt("hello world") || c.PromptBytes != len("hello world") {
		t.Errorf("prompt fields = %q/%d", c.PromptHash, c.PromptBytes)
	}
	if c.ResponseBytes == 0 {
		t.Error("ResponseBytes not recorded")
	}

	nf := byRoute[audit.RouteNotFound]
	if nf == nil || nf.Status != 404 || nf.ResponseBytes != 0 || nf.Engine != "" || nf.PromptHash != "" {
		t.Errorf("not found record = %+v", nf)
	}
}

func TestDispatch_SwapDuringCompletion(t *testing.T) {
	holder := engine.NewSwappable(engine.NewPlaceholder())
	holder.Swap(&swapOnName{holder: holder, next: echoEngine{text: "from second"}})

	store := storage.NewMemoryStorage()
	rec := audit.NewRecorder(store, &config.AuditConfig{AsyncBuffer: 8, WriteTimeout: time.Second}, nil)
	d := New(holder, Deps{Recorder: rec})

	resp := dispatch(d, "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"x\"}")
	rec.Close()

	if string(resp.Body) != `{"response":"from first"}` {
		t.Errorf("body = %s, want the engine that was current at dispatch", resp.Body)
	}
	list, err := store.List(context.Background(), 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %d records, err %v", len(list), err)
	}
	if list[0].Engine != "first" {
		t.Errorf("record engine = %q, want first", list[0].Engine)
	}
	if holder.Name() != "echo" {
		t.Errorf("holder engine = %q, want the swapped-in echo", holder.Name())
	}
}

func TestDispatch_Metrics(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{}, nil)
	d := New(engine.NewPlaceholder(), Deps{Metrics: collector})

	dispatch(d, "GET /health HTTP/1.1\r\n\r\n")
	dispatch(d, "GET /health HTTP/1.1\r\n\r\n")
	dispatch(d, "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"a b\"}")
	dispatch(d, "DELETE /x HTTP/1.1\r\n\r\n")

	expected := `
# HELP phi3_server_requests_total Total number of requests dispatched
# TYPE phi3_server_requests_total counter
phi3_server_requests_total{method="DELETE",route="not_found",status="404"} 1
phi3_server_requests_total{method="GET",route="health",status="200"} 2
phi3_server_requests_total{method="POST",route="completion",status="200"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "phi3_server_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestDispatch_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Enabled: true, Sampler: "always"}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	d := New(engine.NewPlaceholder(), Deps{Tracer: tracer})

	dispatch(d, "POST /completion HTTP/1.1\r\n\r\n{\"prompt\":\"x\"}")
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exporter.GetSpans()
	names := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		names[s.Name] = s
	}
	dispatchSpan, ok := names[tracing.SpanDispatch]
	if !ok {
		t.Fatalf("no %s span in %d spans", tracing.SpanDispatch, len(spans))
	}
	completion, ok := names[tracing.SpanCompletion]
	if !ok {
		t.Fatalf("no %s span", tracing.SpanCompletion)
	}
	if completion.Parent.SpanID() != dispatchSpan.SpanContext.SpanID() {
		t.Error("completion span is not a child of the dispatch span")
	}
	_ = tracer.Shutdown(context.Background())
}
