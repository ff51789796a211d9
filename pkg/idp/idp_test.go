package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/idctl/pkg/apperrors"
)

func TestResolveBaseURL(t *testing.T) {
	envs := Environments{
		"dev":     "https://id.dev.example.com/",
		"preprod": "https://id.preprod.example.com",
		"prod":    "https://id.example.com",
	}

	t.Run("known environment", func(t *testing.T) {
		base, err := envs.ResolveBaseURL("preprod", "")
		require.NoError(t, err)
		assert.Equal(t, "https://id.preprod.example.com", base)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		base, err := envs.ResolveBaseURL("dev", "")
		require.NoError(t, err)
		assert.Equal(t, "https://id.dev.example.com", base)
	})

	t.Run("override wins over environment", func(t *testing.T) {
		base, err := envs.ResolveBaseURL("dev", "https://other.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com", base)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := envs.ResolveBaseURL("staging", "")
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.InvalidValue))
		assert.Contains(t, err.Error(), "staging")
	})

	t.Run("nil map falls back to defaults", func(t *testing.T) {
		var none Environments
		base, err := none.ResolveBaseURL("prod", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultEnvironments[EnvProd], base)
	})
}

func TestResolveEndpoints(t *testing.T) {
	ep := ResolveEndpoints("https://id.example.com/", "platform")

	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/auth", ep.Authorization)
	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/token", ep.Token)
	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/logout", ep.Logout)
	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/userinfo", ep.UserInfo)
	assert.Equal(t, "https://id.example.com/realms/platform/.well-known/openid-configuration", ep.WellKnown)
	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/token/introspect", ep.Introspection)
	assert.Equal(t, "https://id.example.com/realms/platform/protocol/openid-connect/certs", ep.JWKS)
}

func TestResolveEndpointsDeterministic(t *testing.T) {
	a := ResolveEndpoints("https://id.example.com", "r1")
	b := ResolveEndpoints("https://id.example.com", "r1")
	assert.Equal(t, a, b)
}

func TestDiscover(t *testing.T) {
	t.Run("returns canonical document", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/realms/platform/.well-known/openid-configuration", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"issuer":                   server.URL + "/realms/platform",
				"authorization_endpoint":   server.URL + "/auth",
				"token_endpoint":           server.URL + "/token",
				"userinfo_endpoint":        server.URL + "/userinfo",
				"jwks_uri":                 server.URL + "/certs",
				"grant_types_supported":    []string{"authorization_code", "client_credentials", "password"},
				"response_types_supported": []string{"code"},
			})
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		doc, err := Discover(ctx, nil, server.URL+"/realms/platform/.well-known/openid-configuration")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/realms/platform", doc.Issuer)
		assert.Equal(t, server.URL+"/token", doc.TokenEndpoint)
		assert.Equal(t, server.URL+"/userinfo", doc.UserInfoEndpoint)
		assert.Equal(t, server.URL+"/certs", doc.JWKSURI)
		assert.Equal(t, []string{"authorization_code", "client_credentials", "password"}, doc.GrantTypesSupported)
		assert.Equal(t, []string{"code"}, doc.ResponseTypesSupported)

		ep := doc.Endpoints()
		assert.Equal(t, server.URL+"/token", ep.Token)
	})

	t.Run("non-2xx is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := Discover(context.Background(), nil, server.URL+"/missing")
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.NetworkError))
	})

	t.Run("malformed json is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer server.Close()

		_, err := Discover(context.Background(), nil, server.URL)
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.NetworkError))
	})

	t.Run("unreachable endpoint is a network error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := Discover(ctx, nil, "http://127.0.0.1:1/.well-known/openid-configuration")
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.NetworkError))
	})
}

func TestConnectorLogout(t *testing.T) {
	t.Run("passes id_token_hint", func(t *testing.T) {
		var gotHint string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHint = r.URL.Query().Get("id_token_hint")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c := NewConnector(nil)
		require.NoError(t, c.Logout(context.Background(), server.URL+"/logout", "id-token-123"))
		assert.Equal(t, "id-token-123", gotHint)
	})

	t.Run("non-2xx reported to caller", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		err := NewConnector(nil).Logout(context.Background(), server.URL+"/logout", "")
		require.Error(t, err)
	})
}
