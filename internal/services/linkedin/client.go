// Package linkedin wraps the subset of the LinkedIn REST API the server
// exposes as tools: member identity, profile, connections, people search,
// organization roles, and content sharing.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaseURL is LinkedIn's v2 REST API root.
const DefaultBaseURL = "https://api.linkedin.com/v2"

// MaxConnectionsPage caps one connections page; LinkedIn rejects larger
// count values.
const MaxConnectionsPage = 500

// restliProtocolVersion is required on every v2 request.
const restliProtocolVersion = "2.0.0"

// APIError is a non-2xx response from the LinkedIn API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("linkedin api: access token is expired or invalid (status %d)", e.StatusCode)
	case http.StatusForbidden:
		return fmt.Sprintf("linkedin api: the granted scopes do not permit this operation (status %d)", e.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("linkedin api: rate limited, retry later (status %d)", e.StatusCode)
	default:
		return fmt.Sprintf("linkedin api: status %d: %s", e.StatusCode, e.Body)
	}
}

// Client talks to the LinkedIn REST API on behalf of one access token per
// call. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the production API.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
}

// NewClientWithBaseURL builds a client against a custom API root.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// UserInfo is the OpenID Connect identity of the token's member.
type UserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
	Locale        any    `json:"locale,omitempty"`
}

// UserInfo fetches the member identity behind the access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	var info UserInfo
	err := c.getJSON(ctx, accessToken, "/userinfo", nil, &info)
	return info, err
}

// Profile is the lite member profile available with the profile scope.
type Profile struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	LocalizedHeadline  string `json:"localizedHeadline"`
	VanityName         string `json:"vanityName"`
}

// Profile fetches the authenticated member's own profile.
func (c *Client) Profile(ctx context.Context, accessToken string) (Profile, error) {
	var profile Profile
	err := c.getJSON(ctx, accessToken, "/me", nil, &profile)
	return profile, err
}

// EmailAddress fetches the member's primary email handle.
func (c *Client) EmailAddress(ctx context.Context, accessToken string) (string, error) {
	var payload struct {
		Elements []struct {
			Handle struct {
				EmailAddress string `json:"emailAddress"`
			} `json:"handle~"`
		} `json:"elements"`
	}
	query := url.Values{}
	query.Set("q", "members")
	query.Set("projection", "(elements*(handle~))")
	if err := c.getJSON(ctx, accessToken, "/emailAddress", query, &payload); err != nil {
		return "", err
	}
	if len(payload.Elements) == 0 {
		return "", nil
	}
	return payload.Elements[0].Handle.EmailAddress, nil
}

// Paging is LinkedIn's offset pagination envelope.
type Paging struct {
	Start int `json:"start"`
	Count int `json:"count"`
	Total int `json:"total"`
}

// Connection is one first-degree connection entry.
type Connection struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	LocalizedHeadline  string `json:"localizedHeadline"`
}

// ConnectionsPage is one page of the viewer's connections.
type ConnectionsPage struct {
	Elements []Connection `json:"elements"`
	Paging   Paging       `json:"paging"`
}

// Connections fetches one page of the member's first-degree connections.
// The page size is capped at MaxConnectionsPage.
func (c *Client) Connections(ctx context.Context, accessToken string, start, count int) (ConnectionsPage, error) {
	if count <= 0 || count > MaxConnectionsPage {
		count = MaxConnectionsPage
	}
	if start < 0 {
		start = 0
	}

	query := url.Values{}
	query.Set("q", "viewer")
	query.Set("start", strconv.Itoa(start))
	query.Set("count", strconv.Itoa(count))

	var page ConnectionsPage
	err := c.getJSON(ctx, accessToken, "/connections", query, &page)
	return page, err
}

// PersonResult is one entry from a people search.
type PersonResult struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	LocalizedHeadline  string `json:"localizedHeadline"`
}

// PeoplePage is one page of people-search results.
type PeoplePage struct {
	Elements []PersonResult `json:"elements"`
	Paging   Paging         `json:"paging"`
}

// SearchPeople queries the people search endpoint by keywords.
func (c *Client) SearchPeople(ctx context.Context, accessToken, keywords string, start, count int) (PeoplePage, error) {
	if count <= 0 {
		count = 10
	}
	if start < 0 {
		start = 0
	}

	query := url.Values{}
	query.Set("keywords", keywords)
	query.Set("start", strconv.Itoa(start))
	query.Set("count", strconv.Itoa(count))

	var page PeoplePage
	err := c.getJSON(ctx, accessToken, "/people-search", query, &page)
	return page, err
}

// OrganizationRole is one organization the member holds a role in.
type OrganizationRole struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	State        string `json:"state"`
}

// Organizations fetches the organizations the member administers.
func (c *Client) Organizations(ctx context.Context, accessToken string) ([]OrganizationRole, error) {
	var payload struct {
		Elements []OrganizationRole `json:"elements"`
	}
	query := url.Values{}
	query.Set("q", "roleAssignee")
	if err := c.getJSON(ctx, accessToken, "/organizationAcls", query, &payload); err != nil {
		return nil, err
	}
	return payload.Elements, nil
}

// ShareVisibility controls who can see a shared post.
type ShareVisibility string

const (
	VisibilityPublic      ShareVisibility = "PUBLIC"
	VisibilityConnections ShareVisibility = "CONNECTIONS"
)

// ShareRequest is one post to publish on the member's feed.
type ShareRequest struct {
	// AuthorID is the member's OpenID sub; it becomes the author URN.
	AuthorID string
	Text     string
	// Visibility defaults to PUBLIC.
	Visibility ShareVisibility
	// ArticleURL attaches a link preview when set.
	ArticleURL         string
	ArticleTitle       string
	ArticleDescription string
}

// ShareResponse identifies the created post.
type ShareResponse struct {
	ID string `json:"id"`
}

// ShareContent publishes a UGC post on the member's feed.
func (c *Client) ShareContent(ctx context.Context, accessToken string, share ShareRequest) (ShareResponse, error) {
	if share.AuthorID == "" {
		return ShareResponse{}, fmt.Errorf("share requires the author's member id")
	}
	if share.Text == "" {
		return ShareResponse{}, fmt.Errorf("share requires text")
	}

	visibility := share.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	content := map[string]any{
		"shareCommentary":    map[string]string{"text": share.Text},
		"shareMediaCategory": "NONE",
	}
	if share.ArticleURL != "" {
		content["shareMediaCategory"] = "ARTICLE"
		media := map[string]any{
			"status":      "READY",
			"originalUrl": share.ArticleURL,
		}
		if share.ArticleTitle != "" {
			media["title"] = map[string]string{"text": share.ArticleTitle}
		}
		if share.ArticleDescription != "" {
			media["description"] = map[string]string{"text": share.ArticleDescription}
		}
		content["media"] = []any{media}
	}

	body := map[string]any{
		"author":         "urn:li:person:" + share.AuthorID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": content,
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": string(visibility),
		},
	}

	var created ShareResponse
	if err := c.postJSON(ctx, accessToken, "/ugcPosts", body, &created); err != nil {
		return ShareResponse{}, err
	}
	return created, nil
}

// ActivitySummary aggregates the lightweight account overview the analytics
// tool reports.
type ActivitySummary struct {
	MemberID         string `json:"member_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	ConnectionsTotal int    `json:"connections_total"`
}

// FetchActivitySummary composes identity and connection volume into one
// overview.
func (c *Client) FetchActivitySummary(ctx context.Context, accessToken string) (ActivitySummary, error) {
	info, err := c.UserInfo(ctx, accessToken)
	if err != nil {
		return ActivitySummary{}, err
	}
	page, err := c.Connections(ctx, accessToken, 0, 1)
	if err != nil {
		return ActivitySummary{}, err
	}
	return ActivitySummary{
		MemberID:         info.Sub,
		Name:             info.Name,
		Email:            info.Email,
		ConnectionsTotal: page.Paging.Total,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, accessToken, out)
}

func (c *Client) postJSON(ctx context.Context, accessToken, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, accessToken, out)
}

func (c *Client) do(req *http.Request, accessToken string, out any) error {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
