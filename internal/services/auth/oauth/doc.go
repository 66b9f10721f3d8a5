// Package oauth implements the LinkedIn OAuth 2.0 authorization-code flow
// with PKCE: the authorization-request builder, the local callback listener
// that captures the provider redirect, the code-for-token exchange, and the
// in-memory session store for authenticated identities.
package oauth
