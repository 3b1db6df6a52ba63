package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// BasicConfig holds configuration for HTTP basic credentials.
type BasicConfig struct {
	Header   string `mapstructure:"header"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type basicMethod struct{ c BasicConfig }

func (m basicMethod) Acquire(_ context.Context) (string, string, error) {
	u := strings.TrimSpace(m.c.Username)
	p := strings.TrimSpace(m.c.Password)
	if u == "" || p == "" {
		return "", "", errors.New("basic: username and password are required")
	}
	cred := base64.StdEncoding.EncodeToString([]byte(u + ":" + p))
	return headerOrDefault(m.c.Header), "Basic " + cred, nil
}

func init() {
	Register("basic", func(config map[string]any) (Method, error) {
		var c BasicConfig
		if err := mapstructure.Decode(config, &c); err != nil {
			return nil, err
		}
		return basicMethod{c: c}, nil
	})
}
