package idp

import (
	"context"
	"fmt"

	"github.com/Nerzal/gocloak/v13"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Identity is the subset of userinfo claims the engine records per account.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Connector performs the non-grant provider calls: userinfo lookups and
// best-effort session logout.
type Connector struct {
	rest *resty.Client
	log  *zap.SugaredLogger
}

func NewConnector(log *zap.SugaredLogger) *Connector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Connector{rest: resty.New(), log: log}
}

// UserInfo fetches identity claims from the realm's userinfo endpoint.
func (c *Connector) UserInfo(ctx context.Context, baseURL, realm, accessToken string) (*Identity, error) {
	kc := gocloak.NewClient(baseURL)
	info, err := kc.GetUserInfo(ctx, accessToken, realm)
	if err != nil {
		return nil, err
	}
	id := &Identity{}
	if info.Sub != nil {
		id.Subject = *info.Sub
	}
	if info.Email != nil {
		id.Email = *info.Email
	}
	if info.Name != nil {
		id.Name = *info.Name
	}
	if id.Name == "" && info.PreferredUsername != nil {
		id.Name = *info.PreferredUsername
	}
	return id, nil
}

// Logout calls the provider's logout endpoint with an id_token_hint. The
// call is best-effort: the caller logs the returned error and moves on.
func (c *Connector) Logout(ctx context.Context, logoutURL, idTokenHint string) error {
	req := c.rest.R().SetContext(ctx)
	if idTokenHint != "" {
		req.SetQueryParam("id_token_hint", idTokenHint)
	}
	resp, err := req.Get(logoutURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("logout returned %s", resp.Status())
	}
	return nil
}
