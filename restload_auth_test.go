package restload

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAcquireAuth_Basic(t *testing.T) {
	header, value, err := AcquireAuth(context.Background(), AuthSpec{
		Type:   AuthTypeBasic,
		Config: map[string]any{"username": "u", "password": "p"},
	})
	if err != nil {
		t.Fatalf("AcquireAuth error: %v", err)
	}
	exp := "Basic " + base64.StdEncoding.EncodeToString([]byte("u:p"))
	if header != "Authorization" || value != exp {
		t.Fatalf("unexpected credential: got (%q, %q) want (Authorization, %q)", header, value, exp)
	}
}

func TestAcquireAuth_Token(t *testing.T) {
	_, value, err := AcquireAuth(context.Background(), AuthSpec{
		Type:   AuthTypeToken,
		Config: map[string]any{"token": "tok-1"},
	})
	if err != nil {
		t.Fatalf("AcquireAuth error: %v", err)
	}
	if value != "Bearer tok-1" {
		t.Fatalf("unexpected token value: %q", value)
	}
}

type staticAuth struct{ value string }

func (s staticAuth) Acquire(context.Context) (string, string, error) {
	return "X-Custom-Auth", s.value, nil
}

func TestRegisterAuthProvider_Custom(t *testing.T) {
	RegisterAuthProvider("static-test", func(config map[string]any) (AuthMethod, error) {
		v, _ := config["value"].(string)
		return staticAuth{value: v}, nil
	})

	header, value, err := AcquireAuth(context.Background(), AuthSpec{
		Type:   "static-test",
		Config: map[string]any{"value": "s3cret"},
	})
	if err != nil {
		t.Fatalf("AcquireAuth error: %v", err)
	}
	if header != "X-Custom-Auth" || value != "s3cret" {
		t.Fatalf("unexpected credential (%q, %q)", header, value)
	}
}

func TestRun_ConfigWithAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reg := NewRegistry("")
	err := reg.Add(&APIConfig{
		Name:    "secured",
		BaseURL: srv.URL,
		Auth: &AuthSpec{
			Type:   AuthTypeBasic,
			Config: map[string]any{"username": "u", "password": "p"},
		},
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	batch, err := ParseBatch([]byte(`{"tasks":[{"configName":"secured","method":"GET","path":"/"}]}`))
	if err != nil {
		t.Fatalf("ParseBatch error: %v", err)
	}
	rr, err := Run(context.Background(), reg, batch, false)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if rr.Successful != 1 {
		t.Fatalf("expected success, got %+v", rr.Results[0].Error)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("expected basic credential on the wire, got %q", gotAuth)
	}
}
