package auth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/telekom/idctl/pkg/apperrors"
)

// OwnerPasswordAuthenticator exchanges username + password directly
// (resource-owner password grant). Intended for non-interactive tooling
// against realms that still allow it.
type OwnerPasswordAuthenticator struct {
	cfg          Config
	clientSecret string
	username     string
	password     string
}

func NewOwnerPasswordAuthenticator(cfg Config, clientSecret, username, password string) (*OwnerPasswordAuthenticator, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client id is required")
	}
	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "username and password are both required")
	}
	return &OwnerPasswordAuthenticator{cfg: cfg, clientSecret: clientSecret, username: username, password: password}, nil
}

func (a *OwnerPasswordAuthenticator) Kind() string { return KindOwnerPassword }

func (a *OwnerPasswordAuthenticator) Hash() string { return a.cfg.fingerprint(a.Kind()) }

func (a *OwnerPasswordAuthenticator) Login(ctx context.Context) (*Result, error) {
	oauthCfg := oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: a.cfg.Endpoints.Token},
		Scopes:       a.cfg.Scopes,
	}
	token, err := oauthCfg.PasswordCredentialsToken(a.cfg.oauthContext(ctx), a.username, a.password)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return resultFromToken(token), nil
}
