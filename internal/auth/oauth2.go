package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig holds configuration for the client_credentials
// grant.
type ClientCredentialsConfig struct {
	Header       string   `mapstructure:"header"`
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

type clientCredentialsMethod struct{ c ClientCredentialsConfig }

func (m clientCredentialsMethod) Acquire(ctx context.Context) (string, string, error) {
	tokenURL := strings.TrimSpace(m.c.TokenURL)
	clientID := strings.TrimSpace(m.c.ClientID)
	clientSecret := strings.TrimSpace(m.c.ClientSecret)
	if tokenURL == "" {
		return "", "", errors.New("oauth2: token_url is required for client_credentials grant")
	}
	if clientID == "" || clientSecret == "" {
		return "", "", errors.New("oauth2: client_id and client_secret are required for client_credentials grant")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       m.c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", "", err
	}
	return bearer(m.c.Header, tok)
}

// PasswordConfig holds configuration for the resource owner password
// grant.
type PasswordConfig struct {
	Header       string   `mapstructure:"header"`
	TokenURL     string   `mapstructure:"token_url"`
	AuthURL      string   `mapstructure:"auth_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	Scopes       []string `mapstructure:"scopes"`
}

type passwordMethod struct{ c PasswordConfig }

func (m passwordMethod) Acquire(ctx context.Context) (string, string, error) {
	tokenURL := strings.TrimSpace(m.c.TokenURL)
	clientID := strings.TrimSpace(m.c.ClientID)
	username := strings.TrimSpace(m.c.Username)
	password := strings.TrimSpace(m.c.Password)
	if tokenURL == "" {
		return "", "", errors.New("oauth2: token_url is required for password grant")
	}
	if clientID == "" || username == "" || password == "" {
		return "", "", errors.New("oauth2: client_id, username and password are required for password grant")
	}
	ocfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: strings.TrimSpace(m.c.ClientSecret),
		Endpoint: oauth2.Endpoint{
			AuthURL:   strings.TrimSpace(m.c.AuthURL),
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: m.c.Scopes,
	}
	tok, err := ocfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return "", "", err
	}
	return bearer(m.c.Header, tok)
}

// bearer builds the credential header value from an oauth2 token.
func bearer(header string, tok *oauth2.Token) (string, string, error) {
	if tok == nil || !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return "", "", errors.New("oauth2: received invalid token")
	}
	return headerOrDefault(header), tok.Type() + " " + tok.AccessToken, nil
}

func init() {
	Register("oauth2_client_credentials", func(config map[string]any) (Method, error) {
		var c ClientCredentialsConfig
		if err := mapstructure.Decode(config, &c); err != nil {
			return nil, err
		}
		return clientCredentialsMethod{c: c}, nil
	})
	Register("oauth2_password", func(config map[string]any) (Method, error) {
		var c PasswordConfig
		if err := mapstructure.Decode(config, &c); err != nil {
			return nil, err
		}
		return passwordMethod{c: c}, nil
	})
}
