package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// AuthenticateInput represents the MCP tool input for the full OAuth flow.
type AuthenticateInput struct {
	Scopes         []string `json:"scopes,omitempty" jsonschema:"OAuth scopes to request (defaults to openid, profile, email, w_member_social)"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema:"seconds to wait for browser authorization (default 300)"`
	Port           int      `json:"port,omitempty" jsonschema:"preferred callback port (defaults to the redirect URI port)"`
	NoBrowser      bool     `json:"no_browser,omitempty" jsonschema:"skip opening the system browser"`
}

// AuthenticateResult represents the MCP tool output for the full OAuth flow.
type AuthenticateResult struct {
	Status           string   `json:"status" jsonschema:"terminal outcome (AUTHENTICATED, TIMEOUT, AUTH_DENIED, CANCELLED, TOKEN_EXCHANGE_FAILED)"`
	SessionID        string   `json:"session_id,omitempty" jsonschema:"session identifier for subsequent tool calls"`
	LinkedInUserID   string   `json:"linkedin_user_id,omitempty" jsonschema:"authenticated member identifier"`
	DisplayName      string   `json:"display_name,omitempty" jsonschema:"authenticated member display name"`
	ScopesGranted    []string `json:"scopes_granted,omitempty" jsonschema:"scopes the provider granted"`
	TokenExpiry      string   `json:"token_expiry,omitempty" jsonschema:"RFC3339 access token expiry"`
	AuthorizationURL string   `json:"authorization_url,omitempty" jsonschema:"authorization URL the browser was sent to"`
	Detail           string   `json:"detail,omitempty" jsonschema:"provider error detail for non-authenticated outcomes"`
}

// SessionUserInput represents the MCP tool input for session identity lookup.
type SessionUserInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to the most recent session)"`
}

// SessionUserResult represents the MCP tool output for session identity lookup.
type SessionUserResult struct {
	SessionID      string   `json:"session_id" jsonschema:"session identifier"`
	LinkedInUserID string   `json:"linkedin_user_id" jsonschema:"authenticated member identifier"`
	DisplayName    string   `json:"display_name" jsonschema:"authenticated member display name"`
	ScopesGranted  []string `json:"scopes_granted" jsonschema:"scopes the provider granted"`
	TokenExpiry    string   `json:"token_expiry,omitempty" jsonschema:"RFC3339 access token expiry"`
	Expired        bool     `json:"expired" jsonschema:"whether the access token has expired"`
}

// SessionsListInput represents the MCP tool input for session listing.
type SessionsListInput struct{}

// SessionEntry is one session in a listing, without token material.
type SessionEntry struct {
	SessionID      string   `json:"session_id"`
	LinkedInUserID string   `json:"linkedin_user_id"`
	DisplayName    string   `json:"display_name"`
	ScopesGranted  []string `json:"scopes_granted"`
	TokenExpiry    string   `json:"token_expiry,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// SessionsListResult represents the MCP tool output for session listing.
type SessionsListResult struct {
	Sessions []SessionEntry `json:"sessions" jsonschema:"stored sessions, most recent first"`
}

// RevokeInput represents the MCP tool input for session revocation.
type RevokeInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier to revoke"`
}

// RevokeResult represents the MCP tool output for session revocation.
type RevokeResult struct {
	SessionID string `json:"session_id" jsonschema:"revoked session identifier"`
	Revoked   bool   `json:"revoked" jsonschema:"whether the session was removed"`
}

// CallbackServerInput represents the MCP tool input for callback listener
// start requests.
type CallbackServerInput struct {
	Port int `json:"port,omitempty" jsonschema:"preferred port (defaults to the redirect URI port)"`
}

// CallbackServerStatusInput represents the MCP tool input for callback
// listener stop and status requests.
type CallbackServerStatusInput struct{}

// CallbackServerResult represents the MCP tool output for callback listener
// operations.
type CallbackServerResult struct {
	Running      bool `json:"running" jsonschema:"whether the listener is accepting redirects"`
	BoundPort    int  `json:"bound_port" jsonschema:"port the listener is bound to (0 when stopped)"`
	PendingCount int  `json:"pending_count" jsonschema:"number of authorization attempts awaiting redirect"`
}

// AuthenticateTool defines the MCP tool schema for the full OAuth flow.
func AuthenticateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_authenticate",
		Description: "Authenticates with LinkedIn via OAuth in the browser and stores a session",
	}
}

// SessionUserTool defines the MCP tool schema for session identity lookup.
func SessionUserTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_session_user",
		Description: "Returns the LinkedIn identity behind a stored session",
	}
}

// SessionsListTool defines the MCP tool schema for session listing.
func SessionsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_sessions_list",
		Description: "Lists stored LinkedIn sessions, most recent first",
	}
}

// RevokeTool defines the MCP tool schema for session revocation.
func RevokeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_revoke",
		Description: "Revokes a stored LinkedIn session and discards its tokens",
	}
}

// CallbackServerStartTool defines the MCP tool schema for starting the
// callback listener.
func CallbackServerStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "callback_server_start",
		Description: "Starts the local OAuth callback listener",
	}
}

// CallbackServerStopTool defines the MCP tool schema for stopping the
// callback listener.
func CallbackServerStopTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "callback_server_stop",
		Description: "Stops the local OAuth callback listener and cancels pending attempts",
	}
}

// CallbackServerStatusTool defines the MCP tool schema for querying the
// callback listener.
func CallbackServerStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "callback_server_status",
		Description: "Reports whether the OAuth callback listener is running",
	}
}
