// Package auth implements the OAuth2 grant strategies (client-credentials,
// resource-owner password, signed-JWT bearer, and interactive PKCE) and the
// facade that selects one, drives it against the identity provider, and
// persists the resulting tokens in a credential store.
package auth
