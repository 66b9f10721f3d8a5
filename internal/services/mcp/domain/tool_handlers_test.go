package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
	"github.com/inletworks/linkedin-mcp/internal/services/linkedin"
)

func newTestStore(t *testing.T) *oauth.SessionStore {
	t.Helper()
	return oauth.NewSessionStore(oauth.Config{})
}

func storedSession(id string, createdAt time.Time) oauth.AuthenticatedSession {
	return oauth.AuthenticatedSession{
		SessionID:      id,
		LinkedInUserID: "member-" + id,
		DisplayName:    "Member " + id,
		AccessToken:    "token-" + id,
		TokenExpiry:    createdAt.Add(time.Hour),
		ScopesGranted:  oauth.DefaultScopes,
		CreatedAt:      createdAt,
	}
}

func jsonDecode(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func newStubAPI(t *testing.T, handler http.HandlerFunc) *linkedin.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return linkedin.NewClientWithBaseURL(server.URL)
}

func TestResolveSessionMostRecent(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("old", time.Now().Add(-time.Hour)))
	store.Put(storedSession("new", time.Now()))

	session, err := resolveSession(store, "")
	if err != nil {
		t.Fatalf("resolveSession() error = %v", err)
	}
	if session.SessionID != "new" {
		t.Errorf("SessionID = %q, want most recent", session.SessionID)
	}
}

func TestResolveSessionEmptyStore(t *testing.T) {
	if _, err := resolveSession(newTestStore(t), ""); err == nil {
		t.Fatal("expected error with no sessions")
	}
}

func TestResolveSessionRefusesExpired(t *testing.T) {
	store := newTestStore(t)
	session := storedSession("stale", time.Now())
	session.TokenExpiry = time.Now().Add(-time.Minute)
	store.Put(session)

	_, err := resolveSession(store, "stale")
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("error = %v, want expiry refusal", err)
	}
}

func TestProfileHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-s1" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"sub":"member-1","name":"Ada Lovelace","email":"ada@example.com"}`)
	})

	handler := ProfileHandler(client, store)
	_, result, err := handler(context.Background(), nil, ProfileInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.MemberID != "member-1" || result.Name != "Ada Lovelace" {
		t.Errorf("result = %+v", result)
	}
	if result.SessionID != "s1" {
		t.Errorf("SessionID = %q", result.SessionID)
	}
}

func TestProfileHandlerUnknownSession(t *testing.T) {
	handler := ProfileHandler(linkedin.NewClient(), newTestStore(t))
	_, _, err := handler(context.Background(), nil, ProfileInput{SessionID: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestConnectionsHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements":[{"id":"c1","localizedFirstName":"Rob","localizedLastName":"Pike"}],"paging":{"start":0,"total":42}}`)
	})

	handler := ConnectionsHandler(client, store)
	_, result, err := handler(context.Background(), nil, ConnectionsInput{})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.Total != 42 || len(result.Connections) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Connections[0].FirstName != "Rob" {
		t.Errorf("connection = %+v", result.Connections[0])
	}
}

func TestSearchPeopleHandlerRequiresKeywords(t *testing.T) {
	handler := SearchPeopleHandler(linkedin.NewClient(), newTestStore(t))
	_, _, err := handler(context.Background(), nil, SearchPeopleInput{})
	if err == nil {
		t.Fatal("expected error without keywords")
	}
}

func TestShareHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	var author string
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := jsonDecode(r, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		author, _ = body["author"].(string)
		fmt.Fprint(w, `{"id":"urn:li:share:9"}`)
	})

	handler := ShareHandler(client, store)
	_, result, err := handler(context.Background(), nil, ShareInput{SessionID: "s1", Text: "hello"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.PostID != "urn:li:share:9" || result.Visibility != "PUBLIC" {
		t.Errorf("result = %+v", result)
	}
	if author != "urn:li:person:member-s1" {
		t.Errorf("author = %q", author)
	}
}

func TestShareHandlerRequiresSession(t *testing.T) {
	handler := ShareHandler(linkedin.NewClient(), newTestStore(t))
	_, _, err := handler(context.Background(), nil, ShareInput{Text: "hello"})
	if err == nil {
		t.Fatal("expected error without session_id")
	}
}

func TestPostHandlerUsesMostRecent(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("old", time.Now().Add(-time.Hour)))
	store.Put(storedSession("new", time.Now()))

	var author string
	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := jsonDecode(r, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		author, _ = body["author"].(string)
		fmt.Fprint(w, `{"id":"urn:li:share:10"}`)
	})

	handler := PostHandler(client, store)
	_, result, err := handler(context.Background(), nil, PostInput{Text: "hi"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.SessionID != "new" {
		t.Errorf("SessionID = %q, want most recent", result.SessionID)
	}
	if author != "urn:li:person:member-new" {
		t.Errorf("author = %q", author)
	}
}

func TestActivitySummaryHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/userinfo":
			fmt.Fprint(w, `{"sub":"member-1","name":"Ada","email":"ada@example.com"}`)
		case "/connections":
			fmt.Fprint(w, `{"elements":[],"paging":{"total":7}}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	handler := ActivitySummaryHandler(client, store)
	_, result, err := handler(context.Background(), nil, ActivitySummaryInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.MemberID != "member-1" || result.ConnectionsTotal != 7 {
		t.Errorf("result = %+v", result)
	}
}

func TestSessionUserHandlerReportsExpired(t *testing.T) {
	store := newTestStore(t)
	session := storedSession("stale", time.Now())
	session.TokenExpiry = time.Now().Add(-time.Minute)
	store.Put(session)

	handler := SessionUserHandler(store)
	_, result, err := handler(context.Background(), nil, SessionUserInput{SessionID: "stale"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.Expired {
		t.Error("Expired = false for a stale session")
	}
}

func TestSessionsListHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("a", time.Now().Add(-time.Hour)))
	store.Put(storedSession("b", time.Now()))

	handler := SessionsListHandler(store)
	_, result, err := handler(context.Background(), nil, SessionsListInput{})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(result.Sessions) != 2 || result.Sessions[0].SessionID != "b" {
		t.Errorf("result = %+v", result)
	}
}

func TestRevokeHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	handler := RevokeHandler(store)
	_, result, err := handler(context.Background(), nil, RevokeInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.Revoked {
		t.Error("Revoked = false")
	}
	if _, err := store.Get("s1"); err == nil {
		t.Error("session still present after revoke")
	}

	if _, _, err := handler(context.Background(), nil, RevokeInput{}); err == nil {
		t.Error("expected error without session_id")
	}
}

func TestCallbackServerHandlers(t *testing.T) {
	listener := oauth.NewListener(oauth.Config{RedirectURI: "http://127.0.0.1:0/callback"})
	t.Cleanup(listener.Stop)

	start := CallbackServerStartHandler(listener)
	_, started, err := start(context.Background(), nil, CallbackServerInput{})
	if err != nil {
		t.Fatalf("start error = %v", err)
	}
	if !started.Running || started.BoundPort == 0 {
		t.Fatalf("start result = %+v", started)
	}

	status := CallbackServerStatusHandler(listener)
	_, current, err := status(context.Background(), nil, CallbackServerStatusInput{})
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if current.BoundPort != started.BoundPort {
		t.Errorf("status = %+v", current)
	}

	stop := CallbackServerStopHandler(listener)
	_, stopped, err := stop(context.Background(), nil, CallbackServerStatusInput{})
	if err != nil {
		t.Fatalf("stop error = %v", err)
	}
	if stopped.Running {
		t.Errorf("stop result = %+v", stopped)
	}
}

func TestProfileResourceHandler(t *testing.T) {
	store := newTestStore(t)
	store.Put(storedSession("s1", time.Now()))

	client := newStubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sub":"member-1","name":"Ada Lovelace"}`)
	})

	handler := ProfileResourceHandler(client, store)
	result, err := handler(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "linkedin://profile/s1"},
	})
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("contents = %+v", result.Contents)
	}
	content := result.Contents[0]
	if content.MIMEType != "application/json" {
		t.Errorf("MIMEType = %q", content.MIMEType)
	}
	if !strings.Contains(content.Text, "Ada Lovelace") {
		t.Errorf("payload = %s", content.Text)
	}
}

func TestConnectionsResourceHandlerBadURI(t *testing.T) {
	handler := ConnectionsResourceHandler(linkedin.NewClient(), newTestStore(t))

	for _, uri := range []string{"linkedin://connections/", "linkedin://profile/s1", "connections://s1"} {
		_, err := handler(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: uri},
		})
		if err == nil {
			t.Errorf("uri %q: expected error", uri)
		}
	}
}

func TestPromptHandlers(t *testing.T) {
	summary := ProfileSummaryPromptHandler()
	result, err := summary(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"session_id": "s1"}},
	})
	if err != nil {
		t.Fatalf("profile summary error = %v", err)
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "linkedin://profile/s1") {
		t.Errorf("prompt text = %q", text)
	}

	copywriter := PostCopywriterPromptHandler()
	if _, err := copywriter(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{}},
	}); err == nil {
		t.Error("expected error without subject")
	}
}
