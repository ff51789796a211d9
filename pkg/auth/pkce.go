package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/telekom/idctl/pkg/apperrors"
)

// DefaultLoginTimeout bounds how long the PKCE flow waits for the browser
// redirect before giving up.
const DefaultLoginTimeout = 5 * time.Minute

var defaultScopes = []string{oidc.ScopeOpenID, "email", "profile"}

// PKCEOptions tune the interactive flow.
type PKCEOptions struct {
	// Manual suppresses opening the browser; the authorization URL is still
	// surfaced through OnAuthURL and the logger, and the flow waits for the
	// redirect as usual.
	Manual bool
	// Timeout overrides DefaultLoginTimeout.
	Timeout time.Duration
	// OnAuthURL receives the authorization URL before the flow starts
	// waiting. The CLI uses it to print the URL for the user.
	OnAuthURL func(url string)
	Logger    *zap.SugaredLogger
}

// PKCEAuthenticator runs the interactive authorization-code flow hardened
// with a verifier/challenge pair. The local callback listener lives only
// for the duration of one Login call.
type PKCEAuthenticator struct {
	cfg  Config
	opts PKCEOptions
	log  *zap.SugaredLogger

	// openBrowser is swapped out in tests.
	openBrowser func(url string) error
}

func NewPKCEAuthenticator(cfg Config, opts PKCEOptions) (*PKCEAuthenticator, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client id is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PKCEAuthenticator{cfg: cfg, opts: opts, log: log, openBrowser: openBrowser}, nil
}

func (a *PKCEAuthenticator) Kind() string { return KindPKCE }

func (a *PKCEAuthenticator) Hash() string { return a.cfg.fingerprint(a.Kind()) }

func (a *PKCEAuthenticator) issuer() string {
	return strings.TrimRight(a.cfg.BaseURL, "/") + "/realms/" + a.cfg.Realm
}

func (a *PKCEAuthenticator) Login(ctx context.Context) (*Result, error) {
	timeout := a.opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	verifier, challenge, err := newPKCEPair()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer func() {
		_ = listener.Close()
	}()
	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())

	if a.cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, a.cfg.HTTPClient)
	}
	provider, err := oidc.NewProvider(ctx, a.issuer())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.NetworkError, err, "failed to discover provider")
	}
	scopes := a.cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	oauthCfg := oauth2.Config{
		ClientID:    a.cfg.ClientID,
		Endpoint:    provider.Endpoint(),
		RedirectURL: redirectURL,
		Scopes:      scopes,
	}

	state := uuid.NewString()
	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	resultCh := make(chan *Result, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/callback" {
				http.NotFound(w, r)
				return
			}
			query := r.URL.Query()
			if errCode := query.Get("error"); errCode != "" {
				desc := query.Get("error_description")
				errCh <- apperrors.New(apperrors.AuthFailed, "provider returned %s: %s", errCode, desc)
				http.Error(w, "authentication failed", http.StatusBadRequest)
				return
			}
			if query.Get("state") != state {
				errCh <- apperrors.New(apperrors.AuthFailed, "state mismatch in callback")
				http.Error(w, "invalid state", http.StatusBadRequest)
				return
			}
			code := query.Get("code")
			if code == "" {
				errCh <- apperrors.New(apperrors.AuthFailed, "missing code in callback")
				http.Error(w, "missing code", http.StatusBadRequest)
				return
			}
			token, err := oauthCfg.Exchange(a.cfg.oauthContext(ctx), code, oauth2.SetAuthURLParam("code_verifier", verifier))
			if err != nil {
				errCh <- classifyExchangeError(err)
				http.Error(w, "token exchange failed", http.StatusInternalServerError)
				return
			}
			_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
			resultCh <- resultFromToken(token)
		}),
	}
	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		_ = server.Close()
	}()

	if a.opts.OnAuthURL != nil {
		a.opts.OnAuthURL(authURL)
	}
	a.log.Infow("Waiting for authorization callback", "url", authURL, "timeout", timeout)
	if !a.opts.Manual {
		if err := a.openBrowser(authURL); err != nil {
			a.log.Debugw("Failed to open browser", "error", err)
		}
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.New(apperrors.Timeout, "no authorization callback received within %s", timeout)
		}
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case result := <-resultCh:
		return result, nil
	}
}

func newPKCEPair() (verifier, challenge string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate code verifier: %w", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}
