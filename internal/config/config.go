// Package config manages named API endpoint configurations and the JSON
// registry file that persists them between invocations.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/auth"
	"github.com/Benjamin-Hogan/restload/internal/constants"
)

// API describes one target endpoint tasks can be sent to. The zero value
// is not usable; Name and BaseURL are required.
type API struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// OpenAPISpecPath points at an OpenAPI document (file path or URL
	// left to the caller to fetch) describing this API's endpoints.
	OpenAPISpecPath string `json:"openapi_spec_path,omitempty" yaml:"openapi_spec_path,omitempty" mapstructure:"openapi_spec_path"`

	// AuthToken is a pre-issued bearer token. Auth, when set, wins.
	AuthToken string     `json:"auth_token,omitempty" yaml:"auth_token,omitempty" mapstructure:"auth_token"`
	Auth      *auth.Spec `json:"auth,omitempty" yaml:"auth,omitempty" mapstructure:"auth"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`

	// Timeout is the per-request limit in seconds. Zero means the
	// transport default.
	Timeout  float64 `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
	Insecure bool    `json:"insecure,omitempty" yaml:"insecure,omitempty" mapstructure:"insecure"`
}

// Validate reports structural problems with the configuration.
func (a *API) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("config name is required")
	}
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", a.BaseURL)
	}
	if a.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// timeout converts the configured seconds to a duration.
func (a *API) timeout() time.Duration {
	return time.Duration(a.Timeout * float64(time.Second))
}

// DefaultRegistryPath returns $HOME/.restload/configs.json.
func DefaultRegistryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, constants.DefaultAppDir, constants.DefaultRegistryFile), nil
}
