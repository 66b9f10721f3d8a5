package oauth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout reports that no redirect arrived within the attempt deadline.
var ErrTimeout = errors.New("authorization timed out")

// ErrShutdown reports that a pending attempt was voided by listener stop.
// It is distinct from ErrTimeout so callers can tell "shutdown" apart from
// "user never completed".
var ErrShutdown = errors.New("callback listener stopped")

// ValidationError reports requested scopes outside the supported allow-list
// or otherwise malformed authentication input.
type ValidationError struct {
	Message           string
	UnsupportedScopes []string
}

func (e *ValidationError) Error() string {
	if len(e.UnsupportedScopes) == 0 {
		return e.Message
	}
	return fmt.Sprintf("unsupported scopes [%s]; supported scopes are [%s]",
		strings.Join(e.UnsupportedScopes, ", "), strings.Join(SupportedScopes, ", "))
}

// PortInUseError reports that the callback listener could not bind its port.
type PortInUseError struct {
	Port int
	Err  error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use: %v", e.Port, e.Err)
}

func (e *PortInUseError) Unwrap() error { return e.Err }

// AuthDeniedError reports that the provider returned an error on redirect,
// for example when the user declined authorization.
type AuthDeniedError struct {
	Code        string
	Description string
}

func (e *AuthDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization denied: %s", e.Code)
	}
	return fmt.Sprintf("authorization denied: %s (%s)", e.Code, e.Description)
}

// TokenExchangeError reports a non-2xx response from the token endpoint.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// SessionNotFoundError reports a lookup or revocation against an unknown
// session identifier.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}
