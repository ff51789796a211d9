package idp

import (
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"

	"github.com/telekom/idctl/pkg/apperrors"
)

// DiscoveryDocument is the OpenID well-known configuration, normalized to
// the fields the authenticators use. Unknown fields are dropped.
type DiscoveryDocument struct {
	Issuer                 string   `json:"issuer"`
	AuthorizationEndpoint  string   `json:"authorization_endpoint"`
	TokenEndpoint          string   `json:"token_endpoint"`
	UserInfoEndpoint       string   `json:"userinfo_endpoint,omitempty"`
	EndSessionEndpoint     string   `json:"end_session_endpoint,omitempty"`
	JWKSURI                string   `json:"jwks_uri,omitempty"`
	IntrospectionEndpoint  string   `json:"introspection_endpoint,omitempty"`
	GrantTypesSupported    []string `json:"grant_types_supported,omitempty"`
	ResponseTypesSupported []string `json:"response_types_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
}

// Endpoints converts the discovery document into the endpoint set shape
// used by the authenticators.
func (d *DiscoveryDocument) Endpoints() Endpoints {
	return Endpoints{
		Authorization: d.AuthorizationEndpoint,
		Token:         d.TokenEndpoint,
		Logout:        d.EndSessionEndpoint,
		UserInfo:      d.UserInfoEndpoint,
		Introspection: d.IntrospectionEndpoint,
		JWKS:          d.JWKSURI,
	}
}

// Discover fetches and parses the well-known configuration at wellKnownURL.
// The result is not cached; callers that need caching keep the document.
func Discover(ctx context.Context, client *resty.Client, wellKnownURL string) (*DiscoveryDocument, error) {
	if client == nil {
		client = resty.New()
	}
	resp, err := client.R().SetContext(ctx).Get(wellKnownURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.NetworkError, err, "discovery request failed")
	}
	if resp.IsError() {
		return nil, apperrors.New(apperrors.NetworkError, "discovery returned %s for %s", resp.Status(), wellKnownURL)
	}
	var doc DiscoveryDocument
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.NetworkError, err, "malformed discovery document")
	}
	return &doc, nil
}
