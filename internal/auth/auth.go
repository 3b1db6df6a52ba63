// Package auth acquires request credentials from declarative provider
// specs. Providers register a factory under a type key; spec config maps
// are decoded into the provider's typed form with mapstructure.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Benjamin-Hogan/restload/internal/util"
)

// Spec selects a provider and carries its loosely-typed configuration.
type Spec struct {
	Type   string         `json:"type" yaml:"type" mapstructure:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty" mapstructure:"config"`
}

// Method acquires one credential header for a client.
type Method interface {
	Acquire(ctx context.Context) (header, value string, err error)
}

// Factory builds a Method from a loosely-typed config map. Decoding into
// a concrete config struct is the factory's responsibility.
type Factory func(config map[string]any) (Method, error)

var providers = map[string]Factory{}

func normalizeType(s string) string { return util.TrimAndLower(s) }

// Register installs a provider factory under a type key. Later
// registrations replace earlier ones; empty keys and nil factories are
// ignored.
func Register(typ string, f Factory) {
	key := normalizeType(typ)
	if key == "" || f == nil {
		return
	}
	providers[key] = f
}

// New builds the method spec describes.
func New(spec Spec) (Method, error) {
	f, ok := providers[normalizeType(spec.Type)]
	if !ok {
		return nil, fmt.Errorf("auth: unsupported provider type %q", spec.Type)
	}
	return f(spec.Config)
}

// Acquire builds the method and acquires the credential in one step.
func Acquire(ctx context.Context, spec Spec) (string, string, error) {
	m, err := New(spec)
	if err != nil {
		return "", "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return m.Acquire(ctx)
}

// headerOrDefault falls back to Authorization.
func headerOrDefault(h string) string {
	if s := strings.TrimSpace(h); s != "" {
		return s
	}
	return "Authorization"
}
