package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/idctl/pkg/apperrors"
)

// newFakeProvider serves the discovery document and a token endpoint that
// records the authorization-code exchange.
func newFakeProvider(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	var exchanged url.Values
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/realms/platform/.well-known/openid-configuration":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"issuer":                 server.URL + "/realms/platform",
				"authorization_endpoint": server.URL + "/auth",
				"token_endpoint":         server.URL + "/token",
			})
		case "/token":
			require.NoError(t, r.ParseForm())
			exchanged = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "pkce-token",
				"refresh_token": "pkce-refresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &exchanged
}

func startPKCELogin(t *testing.T, a *PKCEAuthenticator) (chan *Result, chan error) {
	t.Helper()
	resultCh := make(chan *Result, 1)
	errCh := make(chan error, 1)
	go func() {
		result, err := a.Login(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- result
	}()
	return resultCh, errCh
}

func TestPKCELogin(t *testing.T) {
	t.Run("completes on callback", func(t *testing.T) {
		server, exchanged := newFakeProvider(t)

		authURLCh := make(chan string, 1)
		a, err := NewPKCEAuthenticator(testConfig(server.URL), PKCEOptions{
			Manual:    true,
			Timeout:   10 * time.Second,
			OnAuthURL: func(u string) { authURLCh <- u },
		})
		require.NoError(t, err)

		resultCh, errCh := startPKCELogin(t, a)

		authURL := <-authURLCh
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)
		query := parsed.Query()
		assert.Equal(t, "S256", query.Get("code_challenge_method"))
		assert.NotEmpty(t, query.Get("code_challenge"))
		redirect := query.Get("redirect_uri")
		state := query.Get("state")
		require.NotEmpty(t, redirect)
		require.NotEmpty(t, state)

		resp, err := http.Get(redirect + "?state=" + url.QueryEscape(state) + "&code=test-code")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		select {
		case result := <-resultCh:
			assert.Equal(t, "pkce-token", result.Tokens.AccessToken)
			assert.Equal(t, "pkce-refresh", result.Tokens.RefreshToken)
		case err := <-errCh:
			t.Fatalf("login failed: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("login did not complete")
		}

		// The exchange carried the code and the verifier.
		assert.Equal(t, "test-code", exchanged.Get("code"))
		assert.NotEmpty(t, exchanged.Get("code_verifier"))
	})

	t.Run("provider error redirect is AUTH_FAILED", func(t *testing.T) {
		server, _ := newFakeProvider(t)

		authURLCh := make(chan string, 1)
		a, err := NewPKCEAuthenticator(testConfig(server.URL), PKCEOptions{
			Manual:    true,
			Timeout:   10 * time.Second,
			OnAuthURL: func(u string) { authURLCh <- u },
		})
		require.NoError(t, err)

		_, errCh := startPKCELogin(t, a)

		authURL := <-authURLCh
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect := parsed.Query().Get("redirect_uri")

		resp, err := http.Get(redirect + "?error=access_denied&error_description=user+said+no")
		require.NoError(t, err)
		_ = resp.Body.Close()

		select {
		case err := <-errCh:
			assert.True(t, apperrors.HasKind(err, apperrors.AuthFailed))
			assert.Contains(t, err.Error(), "access_denied")
		case <-time.After(5 * time.Second):
			t.Fatal("expected login to fail")
		}
	})

	t.Run("state mismatch is AUTH_FAILED", func(t *testing.T) {
		server, _ := newFakeProvider(t)

		authURLCh := make(chan string, 1)
		a, err := NewPKCEAuthenticator(testConfig(server.URL), PKCEOptions{
			Manual:    true,
			Timeout:   10 * time.Second,
			OnAuthURL: func(u string) { authURLCh <- u },
		})
		require.NoError(t, err)

		_, errCh := startPKCELogin(t, a)

		authURL := <-authURLCh
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect := parsed.Query().Get("redirect_uri")

		resp, err := http.Get(redirect + "?state=forged&code=test-code")
		require.NoError(t, err)
		_ = resp.Body.Close()

		select {
		case err := <-errCh:
			assert.True(t, apperrors.HasKind(err, apperrors.AuthFailed))
		case <-time.After(5 * time.Second):
			t.Fatal("expected login to fail")
		}
	})

	t.Run("no callback within timeout is TIMEOUT", func(t *testing.T) {
		server, _ := newFakeProvider(t)

		a, err := NewPKCEAuthenticator(testConfig(server.URL), PKCEOptions{
			Manual:  true,
			Timeout: 300 * time.Millisecond,
		})
		require.NoError(t, err)

		_, err = a.Login(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.Timeout))
	})

	t.Run("requires client id", func(t *testing.T) {
		_, err := NewPKCEAuthenticator(Config{}, PKCEOptions{})
		require.Error(t, err)
		assert.True(t, apperrors.HasKind(err, apperrors.InvalidArgument))
	})
}
