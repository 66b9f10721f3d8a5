package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ProfileInput represents the MCP tool input for profile lookup.
type ProfileInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to the most recent session)"`
}

// ProfileResult represents the MCP tool output for profile lookup.
type ProfileResult struct {
	SessionID  string `json:"session_id" jsonschema:"session the lookup used"`
	MemberID   string `json:"member_id" jsonschema:"LinkedIn member identifier"`
	Name       string `json:"name" jsonschema:"member display name"`
	GivenName  string `json:"given_name,omitempty" jsonschema:"member given name"`
	FamilyName string `json:"family_name,omitempty" jsonschema:"member family name"`
	Email      string `json:"email,omitempty" jsonschema:"member email address"`
	Picture    string `json:"picture,omitempty" jsonschema:"profile picture URL"`
}

// ConnectionsInput represents the MCP tool input for connection listing.
type ConnectionsInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to the most recent session)"`
	Start     int    `json:"start,omitempty" jsonschema:"pagination offset"`
	Count     int    `json:"count,omitempty" jsonschema:"page size (capped at 500)"`
}

// ConnectionEntry is one first-degree connection in a listing.
type ConnectionEntry struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Headline  string `json:"headline,omitempty"`
}

// ConnectionsResult represents the MCP tool output for connection listing.
type ConnectionsResult struct {
	SessionID   string            `json:"session_id" jsonschema:"session the lookup used"`
	Connections []ConnectionEntry `json:"connections" jsonschema:"first-degree connections for this page"`
	Start       int               `json:"start" jsonschema:"pagination offset of this page"`
	Total       int               `json:"total" jsonschema:"total connections reported by LinkedIn"`
}

// SearchPeopleInput represents the MCP tool input for people search.
type SearchPeopleInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to the most recent session)"`
	Keywords  string `json:"keywords" jsonschema:"search keywords"`
	Start     int    `json:"start,omitempty" jsonschema:"pagination offset"`
	Count     int    `json:"count,omitempty" jsonschema:"page size (default 10)"`
}

// PersonEntry is one person in a search listing.
type PersonEntry struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Headline  string `json:"headline,omitempty"`
}

// SearchPeopleResult represents the MCP tool output for people search.
type SearchPeopleResult struct {
	SessionID string        `json:"session_id" jsonschema:"session the search used"`
	People    []PersonEntry `json:"people" jsonschema:"matching people for this page"`
	Total     int           `json:"total" jsonschema:"total matches reported by LinkedIn"`
}

// ShareInput represents the MCP tool input for sharing a post from an
// explicit session.
type ShareInput struct {
	SessionID          string `json:"session_id" jsonschema:"session identifier to post as"`
	Text               string `json:"text" jsonschema:"post text"`
	Visibility         string `json:"visibility,omitempty" jsonschema:"post visibility (PUBLIC or CONNECTIONS, default PUBLIC)"`
	ArticleURL         string `json:"article_url,omitempty" jsonschema:"optional article link to attach"`
	ArticleTitle       string `json:"article_title,omitempty" jsonschema:"optional article title"`
	ArticleDescription string `json:"article_description,omitempty" jsonschema:"optional article description"`
}

// ShareResult represents the MCP tool output for sharing a post.
type ShareResult struct {
	SessionID  string `json:"session_id" jsonschema:"session the post was made from"`
	PostID     string `json:"post_id" jsonschema:"created post identifier"`
	Visibility string `json:"visibility" jsonschema:"post visibility"`
}

// PostInput represents the MCP tool input for posting as the most recently
// authenticated member.
type PostInput struct {
	Text       string `json:"text" jsonschema:"post text"`
	Visibility string `json:"visibility,omitempty" jsonschema:"post visibility (PUBLIC or CONNECTIONS, default PUBLIC)"`
}

// PostResult represents the MCP tool output for posting.
type PostResult struct {
	SessionID string `json:"session_id" jsonschema:"session the post was made from"`
	PostID    string `json:"post_id" jsonschema:"created post identifier"`
}

// ActivitySummaryInput represents the MCP tool input for the account
// overview.
type ActivitySummaryInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to the most recent session)"`
}

// ActivitySummaryResult represents the MCP tool output for the account
// overview.
type ActivitySummaryResult struct {
	SessionID        string `json:"session_id" jsonschema:"session the lookup used"`
	MemberID         string `json:"member_id" jsonschema:"LinkedIn member identifier"`
	Name             string `json:"name" jsonschema:"member display name"`
	Email            string `json:"email,omitempty" jsonschema:"member email address"`
	ConnectionsTotal int    `json:"connections_total" jsonschema:"total first-degree connections"`
}

// ProfileTool defines the MCP tool schema for profile lookup.
func ProfileTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_profile",
		Description: "Fetches the authenticated member's LinkedIn profile",
	}
}

// ConnectionsTool defines the MCP tool schema for connection listing.
func ConnectionsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_connections",
		Description: "Lists the member's first-degree connections",
	}
}

// SearchPeopleTool defines the MCP tool schema for people search.
func SearchPeopleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_search_people",
		Description: "Searches LinkedIn people by keywords",
	}
}

// ShareTool defines the MCP tool schema for sharing from an explicit session.
func ShareTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_share",
		Description: "Publishes a post on LinkedIn from a specific session",
	}
}

// PostTool defines the MCP tool schema for posting as the most recent
// session.
func PostTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_post",
		Description: "Publishes a post on LinkedIn as the most recently authenticated member",
	}
}

// ActivitySummaryTool defines the MCP tool schema for the account overview.
func ActivitySummaryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "linkedin_activity_summary",
		Description: "Summarizes the member's LinkedIn account activity",
	}
}
