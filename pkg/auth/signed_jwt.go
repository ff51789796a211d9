package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/telekom/idctl/pkg/apperrors"
	"github.com/telekom/idctl/pkg/store"
)

const grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// assertionLifetime bounds the validity of a signed assertion; providers
// reject anything much longer.
const assertionLifetime = 60 * time.Second

// SignedJWTAuthenticator builds an RS256-signed JWT assertion from a
// private key file and exchanges it at the token endpoint (JWT-bearer
// grant).
type SignedJWTAuthenticator struct {
	cfg Config
	key *rsa.PrivateKey
}

// NewSignedJWTAuthenticator reads and parses the PEM private key at
// keyFile. Unreadable or unparsable key material fails construction.
func NewSignedJWTAuthenticator(cfg Config, keyFile string) (*SignedJWTAuthenticator, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client id is required")
	}
	if keyFile == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "secret file is required")
	}
	pem, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, err, "failed to read secret file")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidArgument, err, "failed to parse private key")
	}
	return &SignedJWTAuthenticator{cfg: cfg, key: key}, nil
}

func (a *SignedJWTAuthenticator) Kind() string { return KindSignedJWT }

func (a *SignedJWTAuthenticator) Hash() string { return a.cfg.fingerprint(a.Kind()) }

func (a *SignedJWTAuthenticator) assertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": a.cfg.ClientID,
		"sub": a.cfg.ClientID,
		"aud": a.cfg.Endpoints.Token,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
}

func (a *SignedJWTAuthenticator) Login(ctx context.Context) (*Result, error) {
	assertion, err := a.assertion()
	if err != nil {
		return nil, fmt.Errorf("failed to sign assertion: %w", err)
	}

	values := url.Values{}
	values.Set("grant_type", grantTypeJWTBearer)
	values.Set("assertion", assertion)
	values.Set("client_id", a.cfg.ClientID)
	if len(a.cfg.Scopes) > 0 {
		values.Set("scope", strings.Join(a.cfg.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoints.Token, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := a.cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.NetworkError, err, "token endpoint unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.New(apperrors.AuthFailed, "provider rejected assertion: %s", strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token,omitempty"`
		IDToken      string `json:"id_token,omitempty"`
		ExpiresIn    int    `json:"expires_in,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.NetworkError, err, "malformed token response")
	}
	tokens := store.Tokens{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		IDToken:      payload.IDToken,
		ExpiresAt:    expiryFromSeconds(payload.ExpiresIn),
	}
	return &Result{Tokens: tokens, AuthInfo: decodeAuthInfo(tokens)}, nil
}
