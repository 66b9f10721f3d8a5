package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
	"github.com/inletworks/linkedin-mcp/internal/services/linkedin"
)

// ProfilePayload represents the MCP resource payload for a member profile.
type ProfilePayload struct {
	SessionID  string `json:"session_id"`
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Picture    string `json:"picture,omitempty"`
}

// ConnectionsPayload represents the MCP resource payload for a connections
// listing.
type ConnectionsPayload struct {
	SessionID   string            `json:"session_id"`
	Connections []ConnectionEntry `json:"connections"`
	Total       int               `json:"total"`
}

// ProfileResourceTemplate defines the MCP resource template for member
// profiles.
func ProfileResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "linkedin_profile",
		Title:       "LinkedIn Profile",
		Description: "Readable profile for an authenticated session. URI format: linkedin://profile/{session_id}",
		MIMEType:    "application/json",
		URITemplate: "linkedin://profile/{session_id}",
	}
}

// ConnectionsResourceTemplate defines the MCP resource template for
// connection listings.
func ConnectionsResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "linkedin_connections",
		Title:       "LinkedIn Connections",
		Description: "Readable connections listing for an authenticated session. URI format: linkedin://connections/{session_id}",
		MIMEType:    "application/json",
		URITemplate: "linkedin://connections/{session_id}",
	}
}

// parseSessionIDFromResourceURI extracts the session ID from a URI of the
// form linkedin://{kind}/{session_id}.
func parseSessionIDFromResourceURI(uri, kind string) (string, error) {
	prefix := "linkedin://" + kind + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("uri %q does not match linkedin://%s/{session_id}", uri, kind)
	}
	sessionID := strings.TrimPrefix(uri, prefix)
	if sessionID == "" || strings.Contains(sessionID, "/") {
		return "", fmt.Errorf("uri %q does not carry a session id", uri)
	}
	return sessionID, nil
}

func resourceResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

// ProfileResourceHandler returns a readable member profile resource.
func ProfileResourceHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("session ID is required; use URI format linkedin://profile/{session_id}")
		}
		uri := req.Params.URI

		sessionID, err := parseSessionIDFromResourceURI(uri, "profile")
		if err != nil {
			return nil, err
		}
		session, err := resolveSession(store, sessionID)
		if err != nil {
			return nil, err
		}

		info, err := client.UserInfo(ctx, session.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("profile lookup failed: %w", err)
		}

		return resourceResult(uri, ProfilePayload{
			SessionID:  session.SessionID,
			MemberID:   info.Sub,
			Name:       info.Name,
			GivenName:  info.GivenName,
			FamilyName: info.FamilyName,
			Email:      info.Email,
			Picture:    info.Picture,
		})
	}
}

// ConnectionsResourceHandler returns a readable connections listing resource.
func ConnectionsResourceHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("session ID is required; use URI format linkedin://connections/{session_id}")
		}
		uri := req.Params.URI

		sessionID, err := parseSessionIDFromResourceURI(uri, "connections")
		if err != nil {
			return nil, err
		}
		session, err := resolveSession(store, sessionID)
		if err != nil {
			return nil, err
		}

		page, err := client.Connections(ctx, session.AccessToken, 0, linkedin.MaxConnectionsPage)
		if err != nil {
			return nil, fmt.Errorf("connections lookup failed: %w", err)
		}

		payload := ConnectionsPayload{
			SessionID:   session.SessionID,
			Connections: make([]ConnectionEntry, 0, len(page.Elements)),
			Total:       page.Paging.Total,
		}
		for _, connection := range page.Elements {
			payload.Connections = append(payload.Connections, ConnectionEntry{
				ID:        connection.ID,
				FirstName: connection.LocalizedFirstName,
				LastName:  connection.LocalizedLastName,
				Headline:  connection.LocalizedHeadline,
			})
		}
		return resourceResult(uri, payload)
	}
}
