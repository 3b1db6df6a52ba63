package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAPI_Validate(t *testing.T) {
	valid := func() *API {
		return &API{Name: "petstore", BaseURL: "https://api.example.com/v1"}
	}

	tests := []struct {
		name    string
		mutate  func(*API)
		wantErr string
	}{
		{"valid", func(*API) {}, ""},
		{"missing name", func(a *API) { a.Name = "  " }, "config name is required"},
		{"missing base url", func(a *API) { a.BaseURL = "" }, "base_url is required"},
		{"relative base url", func(a *API) { a.BaseURL = "/just/a/path" }, "invalid base_url"},
		{"no scheme", func(a *API) { a.BaseURL = "api.example.com" }, "invalid base_url"},
		{"negative timeout", func(a *API) { a.Timeout = -1 }, "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultRegistryPath(t *testing.T) {
	p, err := DefaultRegistryPath()
	if err != nil {
		t.Fatalf("DefaultRegistryPath error: %v", err)
	}
	want := filepath.Join(".restload", "configs.json")
	if !strings.HasSuffix(p, want) {
		t.Errorf("expected path ending in %q, got %q", want, p)
	}
	if !filepath.IsAbs(p) {
		t.Errorf("expected absolute path, got %q", p)
	}
}
