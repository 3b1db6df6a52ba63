package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// TokenConfig holds a pre-issued static token. Prefix is prepended to the
// token with a single space and defaults to Bearer.
type TokenConfig struct {
	Header string `mapstructure:"header"`
	Prefix string `mapstructure:"prefix"`
	Token  string `mapstructure:"token"`
}

type tokenMethod struct{ c TokenConfig }

func (m tokenMethod) Acquire(_ context.Context) (string, string, error) {
	tok := strings.TrimSpace(m.c.Token)
	if tok == "" {
		return "", "", errors.New("token: token is required")
	}
	prefix := strings.TrimSpace(m.c.Prefix)
	if prefix == "" {
		prefix = "Bearer"
	}
	return headerOrDefault(m.c.Header), prefix + " " + tok, nil
}

func init() {
	Register("token", func(config map[string]any) (Method, error) {
		var c TokenConfig
		if err := mapstructure.Decode(config, &c); err != nil {
			return nil, err
		}
		return tokenMethod{c: c}, nil
	})
}
