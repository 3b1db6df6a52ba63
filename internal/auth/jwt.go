package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig mints a short-lived HS256 token when the client is built.
type JWTConfig struct {
	// Secret is the HMAC key used for HS256 signing (required).
	Secret string `mapstructure:"secret"`
	// TTLSeconds bounds the token lifetime. Default 300.
	TTLSeconds int64 `mapstructure:"ttl_seconds"`

	Subject  string   `mapstructure:"sub"`
	Issuer   string   `mapstructure:"iss"`
	Audience []string `mapstructure:"aud"`

	// Claims carries arbitrary custom fields to embed into the token.
	Claims map[string]any `mapstructure:"claims"`

	Header string `mapstructure:"header"`
}

type jwtMethod struct{ c JWTConfig }

func (m jwtMethod) Acquire(_ context.Context) (string, string, error) {
	tok, err := m.c.issue(time.Now())
	if err != nil {
		return "", "", err
	}
	return headerOrDefault(m.c.Header), "Bearer " + tok, nil
}

func (c JWTConfig) issue(now time.Time) (string, error) {
	if len(c.Secret) == 0 {
		return "", errors.New("jwt: secret is required")
	}
	ttl := c.TTLSeconds
	if ttl <= 0 {
		ttl = 300
	}
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Unix() + ttl,
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if len(c.Audience) > 0 {
		claims["aud"] = c.Audience
	}
	for k, v := range c.Claims {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.Secret))
}

func init() {
	Register("jwt", func(config map[string]any) (Method, error) {
		var c JWTConfig
		if err := mapstructure.Decode(config, &c); err != nil {
			return nil, err
		}
		return jwtMethod{c: c}, nil
	})
}
