// Package auth supplies access tokens for remote document stores that need
// them. Refresh and retry live behind the provider, not in the sync engine:
// callers ask for a valid token once per request and either get one or an
// error.
package auth

import (
	"context"
	"errors"
	"os"
)

// ErrNoToken is returned when a provider has no token to hand out.
var ErrNoToken = errors.New("no access token available")

// TokenProvider yields a currently valid access token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Static is a TokenProvider wrapping a fixed token.
type Static struct {
	token string
}

func NewStatic(token string) *Static {
	return &Static{token: token}
}

func (p *Static) Token(_ context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNoToken
	}
	return p.token, nil
}

// EnvProvider reads the token from an environment variable on every call, so
// an external refresher can rotate it without restarting the process.
type EnvProvider struct {
	envVar string
}

func NewEnvProvider(envVar string) *EnvProvider {
	return &EnvProvider{envVar: envVar}
}

func (p *EnvProvider) Token(_ context.Context) (string, error) {
	token := os.Getenv(p.envVar)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
