package auth

import (
	"context"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/telekom/idctl/pkg/apperrors"
)

// ClientSecretAuthenticator exchanges client id + secret directly against
// the token endpoint (client_credentials grant).
type ClientSecretAuthenticator struct {
	cfg    Config
	secret string
}

func NewClientSecretAuthenticator(cfg Config, secret string) (*ClientSecretAuthenticator, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client id is required")
	}
	if secret == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client secret is required")
	}
	return &ClientSecretAuthenticator{cfg: cfg, secret: secret}, nil
}

func (a *ClientSecretAuthenticator) Kind() string { return KindClientSecret }

func (a *ClientSecretAuthenticator) Hash() string { return a.cfg.fingerprint(a.Kind()) }

func (a *ClientSecretAuthenticator) Login(ctx context.Context) (*Result, error) {
	cc := &clientcredentials.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.secret,
		TokenURL:     a.cfg.Endpoints.Token,
		Scopes:       a.cfg.Scopes,
	}
	token, err := cc.Token(a.cfg.oauthContext(ctx))
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return resultFromToken(token), nil
}
