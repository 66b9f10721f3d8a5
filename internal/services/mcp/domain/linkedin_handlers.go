package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
	"github.com/inletworks/linkedin-mcp/internal/services/linkedin"
)

// ProfileHandler fetches the member identity behind a session.
func ProfileHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[ProfileInput, ProfileResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProfileInput) (*mcp.CallToolResult, ProfileResult, error) {
		session, err := resolveSession(store, input.SessionID)
		if err != nil {
			return nil, ProfileResult{}, err
		}

		info, err := client.UserInfo(ctx, session.AccessToken)
		if err != nil {
			return nil, ProfileResult{}, fmt.Errorf("profile lookup failed: %w", err)
		}

		return nil, ProfileResult{
			SessionID:  session.SessionID,
			MemberID:   info.Sub,
			Name:       info.Name,
			GivenName:  info.GivenName,
			FamilyName: info.FamilyName,
			Email:      info.Email,
			Picture:    info.Picture,
		}, nil
	}
}

// ConnectionsHandler lists one page of the member's first-degree connections.
func ConnectionsHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[ConnectionsInput, ConnectionsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ConnectionsInput) (*mcp.CallToolResult, ConnectionsResult, error) {
		session, err := resolveSession(store, input.SessionID)
		if err != nil {
			return nil, ConnectionsResult{}, err
		}

		page, err := client.Connections(ctx, session.AccessToken, input.Start, input.Count)
		if err != nil {
			return nil, ConnectionsResult{}, fmt.Errorf("connections lookup failed: %w", err)
		}

		result := ConnectionsResult{
			SessionID:   session.SessionID,
			Connections: make([]ConnectionEntry, 0, len(page.Elements)),
			Start:       page.Paging.Start,
			Total:       page.Paging.Total,
		}
		for _, connection := range page.Elements {
			result.Connections = append(result.Connections, ConnectionEntry{
				ID:        connection.ID,
				FirstName: connection.LocalizedFirstName,
				LastName:  connection.LocalizedLastName,
				Headline:  connection.LocalizedHeadline,
			})
		}
		return nil, result, nil
	}
}

// SearchPeopleHandler searches LinkedIn people by keywords.
func SearchPeopleHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[SearchPeopleInput, SearchPeopleResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchPeopleInput) (*mcp.CallToolResult, SearchPeopleResult, error) {
		if input.Keywords == "" {
			return nil, SearchPeopleResult{}, fmt.Errorf("keywords are required")
		}

		session, err := resolveSession(store, input.SessionID)
		if err != nil {
			return nil, SearchPeopleResult{}, err
		}

		page, err := client.SearchPeople(ctx, session.AccessToken, input.Keywords, input.Start, input.Count)
		if err != nil {
			return nil, SearchPeopleResult{}, fmt.Errorf("people search failed: %w", err)
		}

		result := SearchPeopleResult{
			SessionID: session.SessionID,
			People:    make([]PersonEntry, 0, len(page.Elements)),
			Total:     page.Paging.Total,
		}
		for _, person := range page.Elements {
			result.People = append(result.People, PersonEntry{
				ID:        person.ID,
				FirstName: person.LocalizedFirstName,
				LastName:  person.LocalizedLastName,
				Headline:  person.LocalizedHeadline,
			})
		}
		return nil, result, nil
	}
}

func publishShare(ctx context.Context, client *linkedin.Client, session oauth.AuthenticatedSession, text, visibility, articleURL, articleTitle, articleDescription string) (linkedin.ShareResponse, error) {
	created, err := client.ShareContent(ctx, session.AccessToken, linkedin.ShareRequest{
		AuthorID:           session.LinkedInUserID,
		Text:               text,
		Visibility:         linkedin.ShareVisibility(visibility),
		ArticleURL:         articleURL,
		ArticleTitle:       articleTitle,
		ArticleDescription: articleDescription,
	})
	if err != nil {
		return linkedin.ShareResponse{}, fmt.Errorf("share failed: %w", err)
	}
	return created, nil
}

// ShareHandler publishes a post from an explicit session.
func ShareHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[ShareInput, ShareResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ShareInput) (*mcp.CallToolResult, ShareResult, error) {
		if input.SessionID == "" {
			return nil, ShareResult{}, fmt.Errorf("session_id is required")
		}

		session, err := resolveSession(store, input.SessionID)
		if err != nil {
			return nil, ShareResult{}, err
		}

		visibility := input.Visibility
		if visibility == "" {
			visibility = string(linkedin.VisibilityPublic)
		}

		created, err := publishShare(ctx, client, session, input.Text, visibility,
			input.ArticleURL, input.ArticleTitle, input.ArticleDescription)
		if err != nil {
			return nil, ShareResult{}, err
		}

		return nil, ShareResult{
			SessionID:  session.SessionID,
			PostID:     created.ID,
			Visibility: visibility,
		}, nil
	}
}

// PostHandler publishes a post as the most recently authenticated member.
func PostHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[PostInput, PostResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PostInput) (*mcp.CallToolResult, PostResult, error) {
		session, err := resolveSession(store, "")
		if err != nil {
			return nil, PostResult{}, err
		}

		created, err := publishShare(ctx, client, session, input.Text, input.Visibility, "", "", "")
		if err != nil {
			return nil, PostResult{}, err
		}

		return nil, PostResult{
			SessionID: session.SessionID,
			PostID:    created.ID,
		}, nil
	}
}

// ActivitySummaryHandler composes the lightweight account overview.
func ActivitySummaryHandler(client *linkedin.Client, store *oauth.SessionStore) mcp.ToolHandlerFor[ActivitySummaryInput, ActivitySummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActivitySummaryInput) (*mcp.CallToolResult, ActivitySummaryResult, error) {
		session, err := resolveSession(store, input.SessionID)
		if err != nil {
			return nil, ActivitySummaryResult{}, err
		}

		summary, err := client.FetchActivitySummary(ctx, session.AccessToken)
		if err != nil {
			return nil, ActivitySummaryResult{}, fmt.Errorf("activity summary failed: %w", err)
		}

		return nil, ActivitySummaryResult{
			SessionID:        session.SessionID,
			MemberID:         summary.MemberID,
			Name:             summary.Name,
			Email:            summary.Email,
			ConnectionsTotal: summary.ConnectionsTotal,
		}, nil
	}
}
