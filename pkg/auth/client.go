// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/telekom/idctl/pkg/apperrors"
	"github.com/telekom/idctl/pkg/idp"
	"github.com/telekom/idctl/pkg/store"
	"github.com/telekom/idctl/pkg/utils"
)

// DefaultRefreshThreshold is how close to expiry a cached access token may
// get before GetAccount attempts a transparent refresh.
const DefaultRefreshThreshold = 2 * time.Minute

// Options are the per-call login parameters. Zero fields fall back to the
// client defaults, which in turn fall back to environment-derived values.
type Options struct {
	// Env names a known environment (dev, preprod, prod) used to derive the
	// base URL when BaseURL is not set explicitly.
	Env     string
	BaseURL string
	Realm   string

	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// SecretFile points at a PEM private key for the signed-JWT grant.
	SecretFile string

	Scopes []string

	// Manual suppresses browser opening for the interactive flow.
	Manual bool
	// LoginTimeout bounds the interactive flow's wait for the callback.
	LoginTimeout time.Duration
	// OnAuthURL surfaces the authorization URL of the interactive flow.
	OnAuthURL func(url string)

	CAFile          string
	InsecureSkipTLS bool

	// WellKnown overrides the derived discovery URL for ServerInfo.
	WellKnown string

	RefreshThreshold time.Duration

	// Authenticator short-circuits selection with an explicit instance.
	Authenticator Authenticator
}

// StoreOptions control how the client picks its credential store.
type StoreOptions struct {
	// Kind is auto, keyring, file, memory, or none. Auto falls back
	// keyring → file → memory; an explicit kind propagates its error.
	Kind       string
	Dir        string
	Passphrase string
	Service    string
	// Store supplies a ready-made instance; it must implement store.Store.
	Store any
}

const storeKindNone = "none"

// Client is the authentication facade. It owns one credential store for
// its lifetime and constructs a fresh authenticator per operation.
type Client struct {
	defaults  Options
	store     store.Store
	envs      idp.Environments
	connector *idp.Connector
	log       *zap.SugaredLogger
}

// New builds a client around the given defaults and store configuration.
func New(defaults Options, storeOpts StoreOptions, envs idp.Environments, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Client{defaults: defaults, envs: envs, connector: idp.NewConnector(log), log: log}

	switch {
	case storeOpts.Store != nil:
		ts, ok := storeOpts.Store.(store.Store)
		if !ok {
			return nil, apperrors.New(apperrors.InvalidParameter, "store option is not a credential store (got %T)", storeOpts.Store)
		}
		c.store = ts
	case storeOpts.Kind == storeKindNone:
		// Stateless operation: login still works, nothing is persisted.
	default:
		s, err := store.Select(log, storeOpts.Kind, store.Config{
			Dir:        storeOpts.Dir,
			Passphrase: storeOpts.Passphrase,
			Service:    storeOpts.Service,
		})
		if err != nil {
			return nil, err
		}
		c.store = s
	}
	return c, nil
}

// Store exposes the selected backend, mainly for the CLI to report it.
func (c *Client) Store() store.Store { return c.store }

func (c *Client) merge(opts Options) Options {
	merged := c.defaults
	if opts.Env != "" {
		merged.Env = opts.Env
	}
	if opts.BaseURL != "" {
		merged.BaseURL = opts.BaseURL
	}
	if opts.Realm != "" {
		merged.Realm = opts.Realm
	}
	if opts.ClientID != "" {
		merged.ClientID = opts.ClientID
	}
	if opts.ClientSecret != "" {
		merged.ClientSecret = opts.ClientSecret
	}
	if opts.Username != "" {
		merged.Username = opts.Username
	}
	if opts.Password != "" {
		merged.Password = opts.Password
	}
	if opts.SecretFile != "" {
		merged.SecretFile = opts.SecretFile
	}
	if len(opts.Scopes) > 0 {
		merged.Scopes = opts.Scopes
	}
	if opts.Manual {
		merged.Manual = true
	}
	if opts.LoginTimeout > 0 {
		merged.LoginTimeout = opts.LoginTimeout
	}
	if opts.OnAuthURL != nil {
		merged.OnAuthURL = opts.OnAuthURL
	}
	if opts.CAFile != "" {
		merged.CAFile = opts.CAFile
	}
	if opts.InsecureSkipTLS {
		merged.InsecureSkipTLS = true
	}
	if opts.WellKnown != "" {
		merged.WellKnown = opts.WellKnown
	}
	if opts.RefreshThreshold > 0 {
		merged.RefreshThreshold = opts.RefreshThreshold
	}
	if opts.Authenticator != nil {
		merged.Authenticator = opts.Authenticator
	}
	return merged
}

type resolved struct {
	opts       Options
	baseURL    string
	realm      string
	clientID   string
	endpoints  idp.Endpoints
	httpClient *http.Client
}

// resolve applies the defaults cascade and validates the provider context
// before any network activity.
func (c *Client) resolve(opts Options) (*resolved, error) {
	merged := c.merge(opts)
	if merged.BaseURL == "" && merged.Env == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "either an environment or a base URL is required")
	}
	baseURL, err := c.envs.ResolveBaseURL(merged.Env, merged.BaseURL)
	if err != nil {
		return nil, err
	}
	if merged.Realm == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "realm is required")
	}
	if merged.ClientID == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "client id is required")
	}
	r := &resolved{
		opts:      merged,
		baseURL:   baseURL,
		realm:     merged.Realm,
		clientID:  merged.ClientID,
		endpoints: idp.ResolveEndpoints(baseURL, merged.Realm),
	}
	if merged.CAFile != "" || merged.InsecureSkipTLS {
		client, err := NewHTTPClient(merged.CAFile, merged.InsecureSkipTLS)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.InvalidArgument, err, "invalid TLS configuration")
		}
		r.httpClient = client
	}
	return r, nil
}

func (r *resolved) authConfig() Config {
	return Config{
		BaseURL:    r.baseURL,
		Realm:      r.realm,
		ClientID:   r.clientID,
		Scopes:     r.opts.Scopes,
		Endpoints:  r.endpoints,
		HTTPClient: r.httpClient,
	}
}

// newAuthenticator picks the grant strategy from the supplied credentials.
// First match wins: explicit instance, owner password, client secret,
// signed JWT, then interactive PKCE.
func (c *Client) newAuthenticator(r *resolved) (Authenticator, error) {
	opts := r.opts
	switch {
	case opts.Authenticator != nil:
		return opts.Authenticator, nil
	case opts.Username != "" || opts.Password != "":
		return NewOwnerPasswordAuthenticator(r.authConfig(), opts.ClientSecret, opts.Username, opts.Password)
	case opts.ClientSecret != "":
		return NewClientSecretAuthenticator(r.authConfig(), opts.ClientSecret)
	case opts.SecretFile != "":
		return NewSignedJWTAuthenticator(r.authConfig(), opts.SecretFile)
	default:
		return NewPKCEAuthenticator(r.authConfig(), PKCEOptions{
			Manual:    opts.Manual,
			Timeout:   opts.LoginTimeout,
			OnAuthURL: opts.OnAuthURL,
			Logger:    c.log,
		})
	}
}

// fingerprintFor mirrors the selection order of newAuthenticator but only
// looks at which credentials are present. The fingerprint never depends on
// secret material, so a lookup works with a username alone while the
// owner-password constructor would still demand the password.
func (c *Client) fingerprintFor(r *resolved) string {
	opts := r.opts
	kind := KindPKCE
	switch {
	case opts.Authenticator != nil:
		return opts.Authenticator.Hash()
	case opts.Username != "" || opts.Password != "":
		kind = KindOwnerPassword
	case opts.ClientSecret != "":
		kind = KindClientSecret
	case opts.SecretFile != "":
		kind = KindSignedJWT
	}
	return Fingerprint(kind, r.clientID, r.realm, r.baseURL)
}

// Account is the outcome of a successful login.
type Account struct {
	AccessToken string
	Entry       store.Entry
}

// Login selects an authenticator, performs the grant exchange, and
// persists the resulting entry under its fingerprint.
func (c *Client) Login(ctx context.Context, opts Options) (*Account, error) {
	r, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}
	authenticator, err := c.newAuthenticator(r)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("Starting login", "kind", authenticator.Kind(), "realm", r.realm, "baseURL", r.baseURL)
	result, err := authenticator.Login(ctx)
	if err != nil {
		return nil, err
	}
	if result.AuthInfo == nil {
		if id, err := c.connector.UserInfo(ctx, r.baseURL, r.realm, result.Tokens.AccessToken); err == nil {
			result.AuthInfo = &store.AuthInfo{Subject: id.Subject, Email: id.Email, Name: id.Name}
		} else {
			c.log.Debugw("Userinfo lookup failed", "error", err)
		}
	}
	entry := store.Entry{
		Hash:     authenticator.Hash(),
		Name:     accountName(result.AuthInfo, r.clientID),
		BaseURL:  r.baseURL,
		Realm:    r.realm,
		Tokens:   result.Tokens,
		AuthInfo: result.AuthInfo,
	}
	if c.store != nil {
		if err := c.store.Set(entry); err != nil {
			return nil, fmt.Errorf("failed to persist account: %w", err)
		}
	}
	c.log.Infow("Login succeeded", "account", entry.Name, "kind", authenticator.Kind())
	return &Account{AccessToken: entry.Tokens.AccessToken, Entry: entry}, nil
}

// GetAccount computes the fingerprint a matching login would produce and
// looks it up. Absence is nil, never an error. A cached token close to
// expiry is refreshed transparently when a refresh token is available;
// refresh is non-atomic and last-write-wins for concurrent readers.
func (c *Client) GetAccount(ctx context.Context, opts Options) (*store.Entry, error) {
	if c.store == nil {
		return nil, nil
	}
	r, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}
	entry, err := c.store.Get(store.Criteria{Hash: c.fingerprintFor(r)})
	if err != nil || entry == nil {
		return entry, err
	}
	return c.maybeRefresh(ctx, r, entry), nil
}

func (c *Client) maybeRefresh(ctx context.Context, r *resolved, entry *store.Entry) *store.Entry {
	threshold := r.opts.RefreshThreshold
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	if entry.Tokens.ExpiresAt.IsZero() || time.Until(entry.Tokens.ExpiresAt) > threshold {
		return entry
	}
	if entry.Tokens.RefreshToken == "" {
		return entry
	}
	oauthCfg := oauth2.Config{
		ClientID:     r.clientID,
		ClientSecret: r.opts.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: r.endpoints.Token},
	}
	// Only the refresh token is seeded: with the (still valid) access token
	// present the token source would hand it back without refreshing.
	src := oauthCfg.TokenSource(r.authConfig().oauthContext(ctx), &oauth2.Token{
		RefreshToken: entry.Tokens.RefreshToken,
	})
	refreshed, err := src.Token()
	if err != nil {
		// The entry stays in place; the caller sees it as expired.
		c.log.Warnw("Token refresh failed", "account", entry.Name, "error", err)
		return entry
	}
	entry.Tokens.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		entry.Tokens.RefreshToken = refreshed.RefreshToken
	}
	if idToken, ok := refreshed.Extra("id_token").(string); ok && idToken != "" {
		entry.Tokens.IDToken = idToken
	}
	entry.Tokens.ExpiresAt = refreshed.Expiry
	if err := c.store.Set(*entry); err != nil {
		c.log.Warnw("Failed to persist refreshed token", "account", entry.Name, "error", err)
	}
	return entry
}

// List returns all stored accounts; an empty slice without a store.
func (c *Client) List() ([]store.Entry, error) {
	if c.store == nil {
		return []store.Entry{}, nil
	}
	return c.store.List()
}

// RevokeOptions name the accounts to revoke, or All of them, optionally
// restricted to one provider base URL. Account selectors may be glob
// patterns.
type RevokeOptions struct {
	Accounts []string
	All      bool
	BaseURL  string
}

// Revoke removes matching entries from the store and makes a best-effort
// logout call per entry. A failed remote logout is logged and does not
// fail the revoke, nor does it stop processing of further entries.
func (c *Client) Revoke(ctx context.Context, opts RevokeOptions) ([]store.Entry, error) {
	if !opts.All && len(opts.Accounts) == 0 {
		return nil, apperrors.New(apperrors.InvalidArgument, "either a list of accounts or all=true is required")
	}
	if c.store == nil {
		return []store.Entry{}, nil
	}
	var (
		removed []store.Entry
		err     error
	)
	if opts.All {
		removed, err = c.store.Clear(opts.BaseURL)
	} else {
		criteria, matchErr := c.matchAccounts(opts.Accounts, opts.BaseURL)
		if matchErr != nil {
			return nil, matchErr
		}
		removed, err = c.store.Delete(criteria...)
	}
	if err != nil {
		return removed, err
	}
	for _, entry := range removed {
		logoutURL := idp.ResolveEndpoints(entry.BaseURL, entry.Realm).Logout
		if err := c.connector.Logout(ctx, logoutURL, entry.Tokens.IDToken); err != nil {
			c.log.Warnw("Remote logout failed", "account", entry.Name, "error", err)
			continue
		}
		c.log.Debugw("Remote logout succeeded", "account", entry.Name)
	}
	return removed, nil
}

// matchAccounts resolves account selectors against the stored entries.
// Selectors support glob patterns, so "svc-*" revokes every matching
// account. Matches are addressed by hash to avoid name collisions across
// providers.
func (c *Client) matchAccounts(selectors []string, baseURL string) ([]store.Criteria, error) {
	entries, err := c.store.List()
	if err != nil {
		return nil, err
	}
	for _, selector := range selectors {
		if _, err := utils.GlobMatch(selector, ""); err != nil {
			return nil, apperrors.New(apperrors.InvalidValue, "invalid account selector %q: %v", selector, err)
		}
	}
	var criteria []store.Criteria
	for _, entry := range entries {
		if baseURL != "" && entry.BaseURL != baseURL {
			continue
		}
		if utils.GlobMatchAny(selectors, entry.Name) {
			criteria = append(criteria, store.Criteria{Hash: entry.Hash})
		}
	}
	return criteria, nil
}

// ServerInfo fetches the provider's well-known configuration, derived from
// the environment/realm unless an explicit discovery URL is given.
func (c *Client) ServerInfo(ctx context.Context, opts Options) (*idp.DiscoveryDocument, error) {
	merged := c.merge(opts)
	wellKnown := merged.WellKnown
	if wellKnown == "" {
		if merged.BaseURL == "" && merged.Env == "" {
			return nil, apperrors.New(apperrors.InvalidArgument, "either an environment or a base URL is required")
		}
		baseURL, err := c.envs.ResolveBaseURL(merged.Env, merged.BaseURL)
		if err != nil {
			return nil, err
		}
		if merged.Realm == "" {
			return nil, apperrors.New(apperrors.InvalidArgument, "realm is required")
		}
		wellKnown = idp.ResolveEndpoints(baseURL, merged.Realm).WellKnown
	}
	return idp.Discover(ctx, nil, wellKnown)
}

func accountName(info *store.AuthInfo, clientID string) string {
	if info != nil {
		if info.Email != "" {
			return info.Email
		}
		if info.Name != "" {
			return info.Name
		}
		if info.Subject != "" {
			return info.Subject
		}
	}
	return clientID
}
