package oauth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// AuthenticatedSession is one authenticated LinkedIn identity with its token
// material. Sessions live in process memory only and are lost on restart.
type AuthenticatedSession struct {
	SessionID      string
	LinkedInUserID string
	DisplayName    string
	AccessToken    string
	RefreshToken   string
	TokenExpiry    time.Time
	ScopesGranted  []string
	CreatedAt      time.Time
}

// Expired reports whether the session's access token has passed its expiry.
// Sessions without a recorded expiry never expire locally.
func (s AuthenticatedSession) Expired(now time.Time) bool {
	return !s.TokenExpiry.IsZero() && now.After(s.TokenExpiry)
}

// SessionSummary is the listing view of a session, without token material.
type SessionSummary struct {
	SessionID      string    `json:"session_id"`
	LinkedInUserID string    `json:"linkedin_user_id"`
	DisplayName    string    `json:"display_name"`
	TokenExpiry    time.Time `json:"token_expiry"`
	ScopesGranted  []string  `json:"scopes_granted"`
	CreatedAt      time.Time `json:"created_at"`
}

// SessionStore is the in-memory session/token store shared across the flow
// controller and the downstream API handlers. Reads are concurrent; writes
// are serialized.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]AuthenticatedSession

	revokeURL    string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	clock        func() time.Time
}

// NewSessionStore builds an empty store. The config supplies the optional
// provider revocation endpoint and the client credentials it requires.
func NewSessionStore(cfg Config) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]AuthenticatedSession),
		revokeURL:    cfg.RevokeURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   http.DefaultClient,
		clock:        time.Now,
	}
}

// Put stores a session, keyed by its unique session identifier.
func (s *SessionStore) Put(session AuthenticatedSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
}

// Get returns the session for the given identifier, or a
// SessionNotFoundError when unknown.
func (s *SessionStore) Get(sessionID string) (AuthenticatedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return AuthenticatedSession{}, &SessionNotFoundError{SessionID: sessionID}
	}
	return session, nil
}

// List returns summaries of every stored session, most recent first.
func (s *SessionStore) List() []SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(s.sessions))
	for _, session := range s.sessions {
		summaries = append(summaries, SessionSummary{
			SessionID:      session.SessionID,
			LinkedInUserID: session.LinkedInUserID,
			DisplayName:    session.DisplayName,
			TokenExpiry:    session.TokenExpiry,
			ScopesGranted:  session.ScopesGranted,
			CreatedAt:      session.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// MostRecent returns the most recently created session, used by simplified
// posting flows that operate on "whoever last authenticated".
func (s *SessionStore) MostRecent() (AuthenticatedSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest AuthenticatedSession
	found := false
	for _, session := range s.sessions {
		if !found || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
			found = true
		}
	}
	return latest, found
}

// Revoke removes a session. When a provider revocation endpoint is
// configured, it is called best-effort first; a failure there is logged and
// never blocks local removal.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return &SessionNotFoundError{SessionID: sessionID}
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.revokeWithProvider(ctx, session.AccessToken); err != nil {
		log.Printf("provider revocation for session %s: %v", sessionID, err)
	}
	return nil
}

// revokeWithProvider posts the token to the configured revocation endpoint.
// LinkedIn has no standard revocation endpoint, so an empty RevokeURL is a
// successful no-op.
func (s *SessionStore) revokeWithProvider(ctx context.Context, accessToken string) error {
	if s.revokeURL == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revocation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
