package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"github.com/telekom/idctl/pkg/apperrors"
	"github.com/telekom/idctl/pkg/idp"
	"github.com/telekom/idctl/pkg/store"
)

const (
	KindClientSecret  = "client-secret"
	KindOwnerPassword = "owner-password"
	KindSignedJWT     = "signed-jwt"
	KindPKCE          = "pkce"
)

// Result is the normalized outcome of one grant exchange.
type Result struct {
	Tokens   store.Tokens
	AuthInfo *store.AuthInfo
}

// Authenticator performs exactly one login attempt. Hash is deterministic
// over the constructor inputs and involves no network; it doubles as the
// store key for the resulting entry.
type Authenticator interface {
	Kind() string
	Hash() string
	Login(ctx context.Context) (*Result, error)
}

// Config is the resolved provider context shared by all grant strategies.
type Config struct {
	BaseURL   string
	Realm     string
	ClientID  string
	Scopes    []string
	Endpoints idp.Endpoints
	// HTTPClient overrides the transport, e.g. for custom CAs.
	HTTPClient *http.Client
}

// Fingerprint derives the stable store key for a login slot.
func Fingerprint(kind, clientID, realm, baseURL string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{kind, clientID, realm, baseURL}, "\n")))
	return hex.EncodeToString(sum[:])
}

func (c Config) fingerprint(kind string) string {
	return Fingerprint(kind, c.ClientID, c.Realm, c.BaseURL)
}

// oauthContext threads a custom HTTP client into the oauth2 machinery.
func (c Config) oauthContext(ctx context.Context) context.Context {
	if c.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
}

// classifyExchangeError maps token-endpoint failures onto the error
// taxonomy: a provider response rejecting the grant is AUTH_FAILED, a
// transport failure is NETWORK_ERROR.
func classifyExchangeError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return apperrors.Wrap(apperrors.AuthFailed, err, "provider rejected credentials")
	}
	return apperrors.Wrap(apperrors.NetworkError, err, "token endpoint unreachable")
}

// resultFromToken normalizes an oauth2 token plus optional id_token into
// the engine result, decoding identity claims when present.
func resultFromToken(token *oauth2.Token) *Result {
	idToken, _ := token.Extra("id_token").(string)
	tokens := store.Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      idToken,
		ExpiresAt:    token.Expiry,
	}
	return &Result{Tokens: tokens, AuthInfo: decodeAuthInfo(tokens)}
}

// decodeAuthInfo extracts identity claims from the id token, falling back
// to the access token. Signatures are deliberately not verified: the token
// was just received from the provider over TLS and is only displayed.
func decodeAuthInfo(tokens store.Tokens) *store.AuthInfo {
	raw := tokens.IDToken
	if raw == "" {
		raw = tokens.AccessToken
	}
	if raw == "" {
		return nil
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}
	info := &store.AuthInfo{}
	if sub, ok := claims["sub"].(string); ok {
		info.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if name, ok := claims["name"].(string); ok && name != "" {
		info.Name = name
	} else if username, ok := claims["preferred_username"].(string); ok {
		info.Name = username
	}
	if info.Subject == "" && info.Email == "" && info.Name == "" {
		return nil
	}
	return info
}

func expiryFromSeconds(expiresIn int) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
