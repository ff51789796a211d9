// Package idp resolves identity-provider endpoints for a named environment,
// fetches the OpenID well-known discovery document, and talks to the
// provider's userinfo and logout endpoints.
package idp
