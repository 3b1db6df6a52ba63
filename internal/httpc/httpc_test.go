package httpc

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// helper to perform a simple GET through a client built from cfg
func doGet(t *testing.T, ctx context.Context, cfg Config, path string) (*Response, error) {
	t.Helper()
	c := NewClient(cfg)
	return c.Send(ctx, Request{Method: "GET", Path: path})
}

func TestClient_Insecure_AllowsSelfSigned(t *testing.T) {
	// Self-signed TLS server
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// default should fail due to unknown authority
	if _, err := doGet(t, context.Background(), Config{BaseURL: srv.URL, RetryCount: -1}, "/"); err == nil {
		t.Fatalf("expected error without insecure TLS, got nil")
	}

	// insecure should succeed
	resp, err := doGet(t, context.Background(), Config{BaseURL: srv.URL, Insecure: true, RetryCount: -1}, "/")
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("expected 200 with insecure, got resp=%v err=%v", resp, err)
	}
}

func TestConfig_TLSConfigAppliedToClient(t *testing.T) {
	// insecure: expect TLS config set and InsecureSkipVerify true
	cInsec := (&Config{Insecure: true}).New()
	tr, _ := cInsec.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true for insecure mode")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS13 {
		t.Fatalf("expected MinVersion default TLS1.3, got %v", tr.TLSClientConfig.MinVersion)
	}

	// explicit TLS config passes through, MinVersion kept when set
	c12 := (&Config{TlsConfig: &tls.Config{MinVersion: tls.VersionTLS12, MaxVersion: tls.VersionTLS12}}).New()
	tr, _ = c12.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil {
		t.Fatalf("expected TLSClientConfig for explicit config")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS12 || tr.TLSClientConfig.MaxVersion != tls.VersionTLS12 {
		t.Fatalf("expected TLS1.2 only, got Min=%v Max=%v", tr.TLSClientConfig.MinVersion, tr.TLSClientConfig.MaxVersion)
	}

	// default: we do not set TLS config (leave resty default)
	cAuto := (&Config{}).New()
	trAuto, _ := cAuto.GetClient().Transport.(*http.Transport)
	if trAuto != nil && trAuto.TLSClientConfig != nil {
		if trAuto.TLSClientConfig.MinVersion != 0 || trAuto.TLSClientConfig.InsecureSkipVerify {
			t.Fatalf("expected default TLS config not to be constrained")
		}
	}
}

func TestClient_DefaultHeadersAndOverride(t *testing.T) {
	var gotContentType, gotAccept, gotCustom, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Tenant")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(204)
	}))
	defer srv.Close()

	cfg := Config{
		BaseURL:    srv.URL,
		Headers:    map[string]string{"X-Tenant": "acme"},
		AuthHeader: "Authorization",
		AuthValue:  "Bearer tok",
		RetryCount: -1,
	}
	c := NewClient(cfg)

	resp, err := c.Send(context.Background(), Request{Method: "post", Path: "/things", Body: []byte(`{}`)})
	if err != nil || resp.StatusCode != 204 {
		t.Fatalf("expected 204, got resp=%v err=%v", resp, err)
	}
	if gotContentType != "application/json" || gotAccept != "application/json" {
		t.Fatalf("expected json defaults, got content-type=%q accept=%q", gotContentType, gotAccept)
	}
	if gotCustom != "acme" || gotAuth != "Bearer tok" {
		t.Fatalf("expected config headers applied, got tenant=%q auth=%q", gotCustom, gotAuth)
	}

	// per-request header wins over the config default
	_, err = c.Send(context.Background(), Request{
		Method:  "GET",
		Path:    "/things",
		Headers: []Param{{Key: "X-Tenant", Value: "umbrella"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCustom != "umbrella" {
		t.Fatalf("expected per-request header to win, got %q", gotCustom)
	}
}

func TestClient_QueryOrderPreserved(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RetryCount: -1})
	_, err := c.Send(context.Background(), Request{
		Method: "GET",
		Path:   "/search",
		Query:  []Param{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}, {Key: "q", Value: "x y"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "b=2&a=1&q=x+y" {
		t.Fatalf("expected ordered encoded query, got %q", gotQuery)
	}
}

func TestClient_RetriesOnRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	cfg := Config{
		BaseURL:      srv.URL,
		RetryCount:   3,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}
	resp, err := doGet(t, context.Background(), cfg, "/flaky")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected eventual 200, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestClient_NoRetryOnPlainFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(404)
	}))
	defer srv.Close()

	resp, err := doGet(t, context.Background(), Config{BaseURL: srv.URL}, "/missing")
	if err != nil {
		t.Fatalf("status errors are not transport errors, got %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("404 is not retryable, expected 1 attempt, got %d", n)
	}
}

func TestClient_ResponseSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "abc-123")
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(201)
		_, _ = w.Write([]byte(`{"id":42,"name":"alice"}`))
	}))
	defer srv.Close()

	resp, err := doGet(t, context.Background(), Config{BaseURL: srv.URL, RetryCount: -1}, "/users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Headers["x-request-id"] != "abc-123" {
		t.Fatalf("expected lowercased header keys, got %v", resp.Headers)
	}
	if resp.Headers["set-cookie"] != "a=1, b=2" {
		t.Fatalf("expected comma-joined multi-value header, got %q", resp.Headers["set-cookie"])
	}
	if !strings.Contains(resp.Body, `"name":"alice"`) {
		t.Fatalf("expected raw body kept, got %q", resp.Body)
	}
	m, ok := resp.JSON.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded JSON map, got %T", resp.JSON)
	}
	if m["id"] != float64(42) {
		t.Fatalf("expected id 42, got %v", m["id"])
	}
}

func TestClient_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	resp, err := doGet(t, context.Background(), Config{BaseURL: srv.URL, RetryCount: -1}, "/text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != "plain text" {
		t.Fatalf("expected body kept verbatim, got %q", resp.Body)
	}
	if resp.JSON != nil {
		t.Fatalf("expected nil JSON for non-JSON body, got %v", resp.JSON)
	}
}

func TestClient_UnsupportedMethod(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := c.Send(context.Background(), Request{Method: "TELEPORT", Path: "/"}); err == nil {
		t.Fatalf("expected error for unsupported method")
	}
}
