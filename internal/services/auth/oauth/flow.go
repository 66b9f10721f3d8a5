package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/inletworks/linkedin-mcp/internal/platform/id"
)

// DefaultAuthTimeout bounds how long an attempt waits for the user to
// authorize in the browser.
const DefaultAuthTimeout = 5 * time.Minute

// AuthResultKind names the disjoint terminal outcomes of one attempt.
type AuthResultKind string

const (
	// ResultAuthenticated means tokens were issued and a session stored.
	ResultAuthenticated AuthResultKind = "AUTHENTICATED"
	// ResultTimeout means no redirect arrived within the deadline.
	ResultTimeout AuthResultKind = "TIMEOUT"
	// ResultAuthDenied means the provider returned an error on redirect.
	ResultAuthDenied AuthResultKind = "AUTH_DENIED"
	// ResultCancelled means the listener was stopped while waiting.
	ResultCancelled AuthResultKind = "CANCELLED"
	// ResultTokenExchangeFailed means the token endpoint rejected the code.
	ResultTokenExchangeFailed AuthResultKind = "TOKEN_EXCHANGE_FAILED"
)

// BeginOptions configures one authentication attempt.
type BeginOptions struct {
	// Scopes to request; DefaultScopes when empty. Every scope must be on
	// the supported allow-list.
	Scopes []string
	// Timeout for the browser authorization step; DefaultAuthTimeout when
	// zero.
	Timeout time.Duration
	// PreferredPort for the callback listener; the redirect URI's port when
	// zero.
	PreferredPort int
	// OpenBrowser opens the authorization URL in the default browser as a
	// best-effort side effect.
	OpenBrowser bool
}

// BeginResult is the caller-facing outcome of BeginAuthentication.
type BeginResult struct {
	// Handle correlates this attempt for CompleteAuthentication.
	Handle           string
	AuthorizationURL string
	ListenerPort     int
	BrowserOpened    bool
	// BrowserError carries the non-fatal browser-open failure, if any.
	BrowserError string
}

// AuthResult is the terminal outcome of CompleteAuthentication.
type AuthResult struct {
	Kind    AuthResultKind
	Session AuthenticatedSession
	// ProviderError carries the provider's error code and description for
	// AUTH_DENIED results.
	ProviderError string
	// ExchangeStatus and ExchangeBody carry the token endpoint's non-2xx
	// response for TOKEN_EXCHANGE_FAILED results.
	ExchangeStatus int
	ExchangeBody   string
}

// Flow orchestrates end-to-end OAuth attempts: PKCE generation, listener
// coordination, the code-for-token exchange, and session persistence.
type Flow struct {
	config   Config
	listener *Listener
	store    *SessionStore

	httpClient *http.Client
	clock      func() time.Time
	openURL    func(string) error

	mu       sync.Mutex
	attempts map[string]*PendingAttempt
}

// NewFlow builds a flow controller over the shared listener and store.
func NewFlow(cfg Config, listener *Listener, store *SessionStore) *Flow {
	return &Flow{
		config:     cfg,
		listener:   listener,
		store:      store,
		httpClient: http.DefaultClient,
		clock:      time.Now,
		openURL:    OpenBrowser,
		attempts:   make(map[string]*PendingAttempt),
	}
}

// BeginAuthentication validates the requested scopes, registers a pending
// attempt with the callback listener (starting it if needed), and returns
// the authorization URL for the user's browser.
func (f *Flow) BeginAuthentication(ctx context.Context, opts BeginOptions) (BeginResult, error) {
	if err := f.config.Validate(); err != nil {
		return BeginResult{}, err
	}

	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	// Scope validation happens before any listener or network interaction.
	if err := ValidateScopes(scopes); err != nil {
		return BeginResult{}, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	verifier, challenge := GeneratePKCE()
	state, err := id.NewID()
	if err != nil {
		return BeginResult{}, fmt.Errorf("generate state token: %w", err)
	}

	status, err := f.listener.Start(opts.PreferredPort)
	if err != nil {
		return BeginResult{}, err
	}
	if opts.PreferredPort > 0 && status.BoundPort != opts.PreferredPort {
		// The redirect URI registered with the provider is port-specific, so
		// a listener already bound elsewhere cannot serve this attempt.
		return BeginResult{}, fmt.Errorf("callback listener is already running on port %d, not %d; stop it first",
			status.BoundPort, opts.PreferredPort)
	}

	attempt := &PendingAttempt{
		StateToken:    state,
		CodeVerifier:  verifier,
		CodeChallenge: challenge,
		Scopes:        scopes,
		CreatedAt:     f.clock(),
		Timeout:       timeout,
	}
	if err := f.listener.Register(attempt); err != nil {
		return BeginResult{}, fmt.Errorf("register attempt: %w", err)
	}

	authURL := f.config.oauth2Config(scopes).AuthCodeURL(state, oauth2.S256ChallengeOption(challenge))

	f.mu.Lock()
	f.attempts[state] = attempt
	f.mu.Unlock()

	result := BeginResult{
		Handle:           state,
		AuthorizationURL: authURL,
		ListenerPort:     status.BoundPort,
	}
	if opts.OpenBrowser {
		if err := f.openURL(authURL); err != nil {
			result.BrowserError = err.Error()
		} else {
			result.BrowserOpened = true
		}
	}
	return result, nil
}

// CompleteAuthentication waits for the attempt's redirect, exchanges the
// authorization code for tokens, resolves the authenticated identity, and
// stores the resulting session. The token exchange runs at most once per
// authorization code and is never retried: providers invalidate codes after
// first use, so a failure requires a fresh BeginAuthentication.
func (f *Flow) CompleteAuthentication(ctx context.Context, handle string, timeout time.Duration) (AuthResult, error) {
	f.mu.Lock()
	attempt, ok := f.attempts[handle]
	delete(f.attempts, handle)
	f.mu.Unlock()
	if !ok {
		return AuthResult{}, fmt.Errorf("unknown session handle")
	}

	if timeout <= 0 {
		timeout = attempt.Timeout
	}

	callback, err := f.listener.AwaitCallback(ctx, attempt.StateToken, timeout)
	if err != nil {
		var denied *AuthDeniedError
		switch {
		case errors.Is(err, ErrTimeout):
			return AuthResult{Kind: ResultTimeout}, nil
		case errors.Is(err, ErrShutdown):
			return AuthResult{Kind: ResultCancelled}, nil
		case errors.As(err, &denied):
			return AuthResult{Kind: ResultAuthDenied, ProviderError: denied.Error()}, nil
		default:
			return AuthResult{}, err
		}
	}

	token, err := f.exchangeCode(ctx, callback.Code, attempt)
	if err != nil {
		var exchange *TokenExchangeError
		if errors.As(err, &exchange) {
			return AuthResult{
				Kind:           ResultTokenExchangeFailed,
				ExchangeStatus: exchange.StatusCode,
				ExchangeBody:   exchange.Body,
			}, nil
		}
		return AuthResult{}, err
	}

	identity, err := f.resolveIdentity(ctx, token)
	if err != nil {
		return AuthResult{}, fmt.Errorf("resolve authenticated identity: %w", err)
	}

	sessionID, err := id.NewID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}

	session := AuthenticatedSession{
		SessionID:      sessionID,
		LinkedInUserID: identity.userID,
		DisplayName:    identity.displayName,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiry:    token.Expiry,
		ScopesGranted:  grantedScopes(token, attempt.Scopes),
		CreatedAt:      f.clock(),
	}
	f.store.Put(session)

	return AuthResult{Kind: ResultAuthenticated, Session: session}, nil
}

// Refresh exchanges the session's refresh token for new token material.
// Refresh is explicit only; read paths never trigger it implicitly.
func (f *Flow) Refresh(ctx context.Context, sessionID string) (AuthenticatedSession, error) {
	session, err := f.store.Get(sessionID)
	if err != nil {
		return AuthenticatedSession{}, err
	}
	if session.RefreshToken == "" {
		return AuthenticatedSession{}, fmt.Errorf("session %s has no refresh token", sessionID)
	}

	ocfg := f.config.oauth2Config(session.ScopesGranted)
	source := ocfg.TokenSource(f.oauthContext(ctx), &oauth2.Token{RefreshToken: session.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return AuthenticatedSession{}, wrapRetrieveError(err)
	}

	session.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		session.RefreshToken = token.RefreshToken
	}
	session.TokenExpiry = token.Expiry
	f.store.Put(session)
	return session, nil
}

// exchangeCode performs the single POST to the token endpoint with the
// attempt's PKCE verifier.
func (f *Flow) exchangeCode(ctx context.Context, code string, attempt *PendingAttempt) (*oauth2.Token, error) {
	ocfg := f.config.oauth2Config(attempt.Scopes)
	token, err := ocfg.Exchange(f.oauthContext(ctx), code, oauth2.VerifierOption(attempt.CodeVerifier))
	if err != nil {
		return nil, wrapRetrieveError(err)
	}
	return token, nil
}

// oauthContext routes x/oauth2's internal HTTP through the flow's client so
// tests can point at stub providers.
func (f *Flow) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
}

func wrapRetrieveError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return &TokenExchangeError{
			StatusCode: retrieve.Response.StatusCode,
			Body:       string(retrieve.Body),
		}
	}
	return err
}

type resolvedIdentity struct {
	userID      string
	displayName string
}

// resolveIdentity extracts the member identity from the OpenID Connect
// id_token when present, falling back to the userinfo endpoint. The id_token
// arrives directly from the token endpoint over TLS, so its claims are
// decoded without signature verification.
func (f *Flow) resolveIdentity(ctx context.Context, token *oauth2.Token) (resolvedIdentity, error) {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
			if identity, ok := identityFromClaims(claims); ok {
				return identity, nil
			}
		}
	}
	return f.fetchUserInfo(ctx, token.AccessToken)
}

func identityFromClaims(claims jwt.MapClaims) (resolvedIdentity, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return resolvedIdentity{}, false
	}
	name, _ := claims["name"].(string)
	if name == "" {
		given, _ := claims["given_name"].(string)
		family, _ := claims["family_name"].(string)
		name = strings.TrimSpace(given + " " + family)
	}
	if name == "" {
		name = sub
	}
	return resolvedIdentity{userID: sub, displayName: name}, true
}

// fetchUserInfo queries the provider's OpenID Connect userinfo endpoint.
func (f *Flow) fetchUserInfo(ctx context.Context, accessToken string) (resolvedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.UserInfoURL, nil)
	if err != nil {
		return resolvedIdentity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return resolvedIdentity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resolvedIdentity{}, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Sub        string `json:"sub"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return resolvedIdentity{}, err
	}
	if payload.Sub == "" {
		return resolvedIdentity{}, fmt.Errorf("userinfo response is missing member id")
	}

	name := payload.Name
	if name == "" {
		name = strings.TrimSpace(payload.GivenName + " " + payload.FamilyName)
	}
	if name == "" {
		name = payload.Email
	}
	if name == "" {
		name = payload.Sub
	}
	return resolvedIdentity{userID: payload.Sub, displayName: name}, nil
}

// grantedScopes prefers the scope list echoed by the token endpoint and
// falls back to the requested scopes.
func grantedScopes(token *oauth2.Token, requested []string) []string {
	raw, ok := token.Extra("scope").(string)
	if !ok || raw == "" {
		return requested
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return requested
	}
	return fields
}
