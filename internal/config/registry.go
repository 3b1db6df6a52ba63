package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Benjamin-Hogan/restload/internal/auth"
	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/Benjamin-Hogan/restload/internal/httpc"
)

// registryFile is the on-disk shape of the registry.
type registryFile struct {
	Configs      []*API `json:"configs"`
	ActiveConfig string `json:"active_config,omitempty"`
}

// Registry holds the known API configurations, the active-config pointer
// and a cache of built transport clients. It implements the engine's
// ClientProvider. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	path    string
	configs []*API
	active  string
	clients map[string]*httpc.Client
	logger  *common.Logger
}

// NewRegistry returns an empty in-memory registry. Save requires a path,
// set either here or via Load.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:    path,
		clients: make(map[string]*httpc.Client),
		logger:  common.GetLogger().WithComponent("config"),
	}
}

// Load reads the registry file at path. A missing file yields an empty
// registry bound to that path, so first use needs no setup step.
func Load(path string) (*Registry, error) {
	r := NewRegistry(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	for _, cfg := range f.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("registry %s: config %q: %w", path, cfg.Name, err)
		}
		r.configs = append(r.configs, cfg)
	}
	if f.ActiveConfig != "" && r.lookup(f.ActiveConfig) == nil {
		return nil, fmt.Errorf("registry %s: active config %q not defined", path, f.ActiveConfig)
	}
	r.active = f.ActiveConfig
	return r, nil
}

// Save writes the registry back to its file, creating the directory on
// demand.
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.path == "" {
		return fmt.Errorf("registry has no file path")
	}
	data, err := json.MarshalIndent(registryFile{Configs: r.configs, ActiveConfig: r.active}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil { // #nosec G306 -- registry holds no secrets by default
		return fmt.Errorf("write registry %s: %w", r.path, err)
	}
	return nil
}

// Add registers a new configuration. Names are unique; the first one
// added becomes active.
func (r *Registry) Add(cfg *API) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookup(cfg.Name) != nil {
		return fmt.Errorf("config %q already exists", cfg.Name)
	}
	r.configs = append(r.configs, cfg)
	if r.active == "" {
		r.active = cfg.Name
	}
	r.logger.Debug("config added", "name", cfg.Name, "base_url", cfg.BaseURL)
	return nil
}

// Remove drops a configuration and its cached client. Removing the
// active configuration clears the active pointer.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cfg := range r.configs {
		if cfg.Name == name {
			r.configs = append(r.configs[:i], r.configs[i+1:]...)
			delete(r.clients, name)
			if r.active == name {
				r.active = ""
			}
			return nil
		}
	}
	return fmt.Errorf("config %q not found", name)
}

// Use sets the active configuration.
func (r *Registry) Use(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookup(name) == nil {
		return fmt.Errorf("config %q not found", name)
	}
	r.active = name
	return nil
}

// Get returns the named configuration.
func (r *Registry) Get(name string) (*API, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg := r.lookup(name)
	return cfg, cfg != nil
}

// Active returns the active configuration, if any.
func (r *Registry) Active() (*API, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return nil, false
	}
	cfg := r.lookup(r.active)
	return cfg, cfg != nil
}

// ActiveName returns the active configuration's name, or "".
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Path returns the registry file path, empty for in-memory registries.
func (r *Registry) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// Names returns all configuration names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for _, cfg := range r.configs {
		names = append(names, cfg.Name)
	}
	sort.Strings(names)
	return names
}

// Client returns a transport client for the named configuration,
// building and caching it on first use. An empty name selects the active
// configuration. Unknown names wrap httpc.ErrConfigNotFound.
func (r *Registry) Client(ctx context.Context, name string) (*httpc.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		name = r.active
	}
	cfg := r.lookup(name)
	if cfg == nil {
		return nil, fmt.Errorf("%q: %w", name, httpc.ErrConfigNotFound)
	}
	if c, ok := r.clients[cfg.Name]; ok {
		return c, nil
	}

	hc := httpc.Config{
		BaseURL:  cfg.BaseURL,
		Headers:  cfg.Headers,
		Timeout:  cfg.timeout(),
		Insecure: cfg.Insecure,
	}
	switch {
	case cfg.Auth != nil:
		header, value, err := auth.Acquire(ctx, *cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth for config %q: %w", cfg.Name, err)
		}
		hc.AuthHeader, hc.AuthValue = header, value
	case strings.TrimSpace(cfg.AuthToken) != "":
		hc.AuthHeader, hc.AuthValue = "Authorization", "Bearer "+strings.TrimSpace(cfg.AuthToken)
	}

	c := httpc.NewClient(hc)
	r.clients[cfg.Name] = c
	r.logger.Debug("client built", "config", cfg.Name)
	return c, nil
}

// lookup requires the caller to hold r.mu.
func (r *Registry) lookup(name string) *API {
	for _, cfg := range r.configs {
		if cfg.Name == name {
			return cfg
		}
	}
	return nil
}
