package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
)

func formatExpiry(expiry time.Time) string {
	if expiry.IsZero() {
		return ""
	}
	return expiry.Format(time.RFC3339)
}

func sessionEntry(summary oauth.SessionSummary) SessionEntry {
	return SessionEntry{
		SessionID:      summary.SessionID,
		LinkedInUserID: summary.LinkedInUserID,
		DisplayName:    summary.DisplayName,
		ScopesGranted:  summary.ScopesGranted,
		TokenExpiry:    formatExpiry(summary.TokenExpiry),
		CreatedAt:      summary.CreatedAt.Format(time.RFC3339),
	}
}

// resolveSession loads the named session, or the most recent one when the
// identifier is empty. Expired sessions are refused on read paths; the caller
// must re-authenticate or refresh explicitly.
func resolveSession(store *oauth.SessionStore, sessionID string) (oauth.AuthenticatedSession, error) {
	var session oauth.AuthenticatedSession
	if sessionID == "" {
		latest, ok := store.MostRecent()
		if !ok {
			return oauth.AuthenticatedSession{}, fmt.Errorf("no authenticated sessions; run linkedin_authenticate first")
		}
		session = latest
	} else {
		found, err := store.Get(sessionID)
		if err != nil {
			return oauth.AuthenticatedSession{}, err
		}
		session = found
	}
	if session.Expired(time.Now()) {
		return oauth.AuthenticatedSession{}, fmt.Errorf("access token for session %s has expired; re-authenticate", session.SessionID)
	}
	return session, nil
}

// AuthenticateHandler runs the begin and complete halves of the OAuth flow in
// one blocking call, matching how MCP clients invoke it.
func AuthenticateHandler(flow *oauth.Flow) mcp.ToolHandlerFor[AuthenticateInput, AuthenticateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AuthenticateInput) (*mcp.CallToolResult, AuthenticateResult, error) {
		timeout := time.Duration(input.TimeoutSeconds) * time.Second

		begin, err := flow.BeginAuthentication(ctx, oauth.BeginOptions{
			Scopes:        input.Scopes,
			Timeout:       timeout,
			PreferredPort: input.Port,
			OpenBrowser:   !input.NoBrowser,
		})
		if err != nil {
			return nil, AuthenticateResult{}, fmt.Errorf("begin authentication: %w", err)
		}

		outcome, err := flow.CompleteAuthentication(ctx, begin.Handle, timeout)
		if err != nil {
			return nil, AuthenticateResult{}, fmt.Errorf("complete authentication: %w", err)
		}

		result := AuthenticateResult{
			Status:           string(outcome.Kind),
			AuthorizationURL: begin.AuthorizationURL,
		}
		switch outcome.Kind {
		case oauth.ResultAuthenticated:
			session := outcome.Session
			result.SessionID = session.SessionID
			result.LinkedInUserID = session.LinkedInUserID
			result.DisplayName = session.DisplayName
			result.ScopesGranted = session.ScopesGranted
			result.TokenExpiry = formatExpiry(session.TokenExpiry)
			// Token material never leaves the server.
			result.AuthorizationURL = ""
		case oauth.ResultAuthDenied:
			result.Detail = outcome.ProviderError
		case oauth.ResultTokenExchangeFailed:
			result.Detail = fmt.Sprintf("status %d: %s", outcome.ExchangeStatus, outcome.ExchangeBody)
		}
		if begin.BrowserError != "" && result.Detail == "" {
			result.Detail = "browser did not open: " + begin.BrowserError
		}
		return nil, result, nil
	}
}

// SessionUserHandler reports the identity behind a stored session.
func SessionUserHandler(store *oauth.SessionStore) mcp.ToolHandlerFor[SessionUserInput, SessionUserResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionUserInput) (*mcp.CallToolResult, SessionUserResult, error) {
		var session oauth.AuthenticatedSession
		if input.SessionID == "" {
			latest, ok := store.MostRecent()
			if !ok {
				return nil, SessionUserResult{}, fmt.Errorf("no authenticated sessions; run linkedin_authenticate first")
			}
			session = latest
		} else {
			found, err := store.Get(input.SessionID)
			if err != nil {
				return nil, SessionUserResult{}, err
			}
			session = found
		}

		return nil, SessionUserResult{
			SessionID:      session.SessionID,
			LinkedInUserID: session.LinkedInUserID,
			DisplayName:    session.DisplayName,
			ScopesGranted:  session.ScopesGranted,
			TokenExpiry:    formatExpiry(session.TokenExpiry),
			Expired:        session.Expired(time.Now()),
		}, nil
	}
}

// SessionsListHandler lists stored sessions without token material.
func SessionsListHandler(store *oauth.SessionStore) mcp.ToolHandlerFor[SessionsListInput, SessionsListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SessionsListInput) (*mcp.CallToolResult, SessionsListResult, error) {
		summaries := store.List()
		result := SessionsListResult{Sessions: make([]SessionEntry, 0, len(summaries))}
		for _, summary := range summaries {
			result.Sessions = append(result.Sessions, sessionEntry(summary))
		}
		return nil, result, nil
	}
}

// RevokeHandler removes a stored session, revoking with the provider when
// configured.
func RevokeHandler(store *oauth.SessionStore) mcp.ToolHandlerFor[RevokeInput, RevokeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RevokeInput) (*mcp.CallToolResult, RevokeResult, error) {
		if input.SessionID == "" {
			return nil, RevokeResult{}, fmt.Errorf("session_id is required")
		}
		if err := store.Revoke(ctx, input.SessionID); err != nil {
			return nil, RevokeResult{}, err
		}
		return nil, RevokeResult{SessionID: input.SessionID, Revoked: true}, nil
	}
}

func callbackStatusResult(status oauth.ListenerStatus) CallbackServerResult {
	return CallbackServerResult{
		Running:      status.Running,
		BoundPort:    status.BoundPort,
		PendingCount: status.PendingCount,
	}
}

// CallbackServerStartHandler starts the local callback listener.
func CallbackServerStartHandler(listener *oauth.Listener) mcp.ToolHandlerFor[CallbackServerInput, CallbackServerResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CallbackServerInput) (*mcp.CallToolResult, CallbackServerResult, error) {
		status, err := listener.Start(input.Port)
		if err != nil {
			return nil, CallbackServerResult{}, err
		}
		return nil, callbackStatusResult(status), nil
	}
}

// CallbackServerStopHandler stops the local callback listener.
func CallbackServerStopHandler(listener *oauth.Listener) mcp.ToolHandlerFor[CallbackServerStatusInput, CallbackServerResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CallbackServerStatusInput) (*mcp.CallToolResult, CallbackServerResult, error) {
		listener.Stop()
		return nil, callbackStatusResult(listener.Status()), nil
	}
}

// CallbackServerStatusHandler reports the callback listener state.
func CallbackServerStatusHandler(listener *oauth.Listener) mcp.ToolHandlerFor[CallbackServerStatusInput, CallbackServerResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CallbackServerStatusInput) (*mcp.CallToolResult, CallbackServerResult, error) {
		return nil, callbackStatusResult(listener.Status()), nil
	}
}
