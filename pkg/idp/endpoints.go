package idp

import (
	"fmt"
	"strings"
)

// Endpoints is the OAuth2/OIDC endpoint set for one realm. It is derived
// from base URL and realm by pure templating; no network call is involved.
type Endpoints struct {
	Authorization string
	Token         string
	Logout        string
	UserInfo      string
	WellKnown     string
	Introspection string
	JWKS          string
}

// ResolveEndpoints computes the endpoint set for a realm under baseURL.
// The layout follows the Keycloak realm URL scheme.
func ResolveEndpoints(baseURL, realm string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	realmBase := fmt.Sprintf("%s/realms/%s", base, realm)
	oidc := realmBase + "/protocol/openid-connect"
	return Endpoints{
		Authorization: oidc + "/auth",
		Token:         oidc + "/token",
		Logout:        oidc + "/logout",
		UserInfo:      oidc + "/userinfo",
		WellKnown:     realmBase + "/.well-known/openid-configuration",
		Introspection: oidc + "/token/introspect",
		JWKS:          oidc + "/certs",
	}
}
