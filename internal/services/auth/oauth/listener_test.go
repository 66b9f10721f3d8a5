package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func testListenerConfig() Config {
	return Config{
		ClientID:     "client",
		ClientSecret: "secret",
		// Port zero binds an ephemeral port so tests never collide.
		RedirectURI: "http://127.0.0.1:0/callback",
	}
}

func startTestListener(t *testing.T) *Listener {
	t.Helper()
	listener := NewListener(testListenerConfig())
	status, err := listener.Start(0)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !status.Running || status.BoundPort == 0 {
		t.Fatalf("Start() status = %+v", status)
	}
	t.Cleanup(listener.Stop)
	return listener
}

func callbackURL(l *Listener, query string) string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback?%s", l.Status().BoundPort, query)
}

func registerAttempt(t *testing.T, l *Listener, state string) *PendingAttempt {
	t.Helper()
	attempt := &PendingAttempt{
		StateToken:    state,
		CodeVerifier:  "verifier-" + state,
		CodeChallenge: ComputeS256Challenge("verifier-" + state),
		Scopes:        DefaultScopes,
		Timeout:       time.Second,
	}
	if err := l.Register(attempt); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return attempt
}

type awaitOutcome struct {
	result CallbackResult
	err    error
}

func awaitAsync(l *Listener, state string, timeout time.Duration) <-chan awaitOutcome {
	ch := make(chan awaitOutcome, 1)
	go func() {
		result, err := l.AwaitCallback(context.Background(), state, timeout)
		ch <- awaitOutcome{result, err}
	}()
	return ch
}

func TestListenerStartIdempotent(t *testing.T) {
	listener := startTestListener(t)
	first := listener.Status()

	again, err := listener.Start(0)
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if again.BoundPort != first.BoundPort {
		t.Fatalf("second Start() rebound: port %d, want %d", again.BoundPort, first.BoundPort)
	}
}

func TestListenerPortInUse(t *testing.T) {
	listener := startTestListener(t)
	port := listener.Status().BoundPort

	other := NewListener(testListenerConfig())
	_, err := other.Start(port)
	if err == nil {
		other.Stop()
		t.Fatal("expected bind error on occupied port")
	}

	var portErr *PortInUseError
	if !errors.As(err, &portErr) {
		t.Fatalf("error type = %T, want *PortInUseError", err)
	}
	if portErr.Port != port {
		t.Errorf("PortInUseError.Port = %d, want %d", portErr.Port, port)
	}
}

func TestListenerStopIdempotent(t *testing.T) {
	listener := startTestListener(t)
	listener.Stop()
	listener.Stop()

	if status := listener.Status(); status.Running {
		t.Fatalf("Status() = %+v after Stop", status)
	}
}

func TestListenerFulfilledCallback(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-ok")
	outcome := awaitAsync(listener, "state-ok", 5*time.Second)

	resp, err := http.Get(callbackURL(listener, "code=abc123&state=state-ok"))
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status = %d, want 200", resp.StatusCode)
	}

	got := <-outcome
	if got.err != nil {
		t.Fatalf("AwaitCallback() error = %v", got.err)
	}
	if got.result.Code != "abc123" || got.result.State != "state-ok" {
		t.Errorf("result = %+v", got.result)
	}
	if count := listener.Status().PendingCount; count != 0 {
		t.Errorf("PendingCount = %d after fulfillment", count)
	}
}

func TestListenerDeniedCallback(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-denied")
	outcome := awaitAsync(listener, "state-denied", 5*time.Second)

	resp, err := http.Get(callbackURL(listener, "error=access_denied&error_description=user+cancelled&state=state-denied"))
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("callback status = %d, want 400", resp.StatusCode)
	}

	got := <-outcome
	var denied *AuthDeniedError
	if !errors.As(got.err, &denied) {
		t.Fatalf("error = %v, want *AuthDeniedError", got.err)
	}
	if denied.Code != "access_denied" || denied.Description != "user cancelled" {
		t.Errorf("denied = %+v", denied)
	}
}

func TestListenerUnknownState(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-real")

	resp, err := http.Get(callbackURL(listener, "code=stolen&state=state-forged"))
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("callback status = %d, want 400", resp.StatusCode)
	}
	// The registered attempt is untouched.
	if count := listener.Status().PendingCount; count != 1 {
		t.Errorf("PendingCount = %d, want 1", count)
	}
}

func TestListenerReplayedCallback(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-once")
	outcome := awaitAsync(listener, "state-once", 5*time.Second)

	first, err := http.Get(callbackURL(listener, "code=abc&state=state-once"))
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	first.Body.Close()
	<-outcome

	second, err := http.Get(callbackURL(listener, "code=abc&state=state-once"))
	if err != nil {
		t.Fatalf("GET replayed callback: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusBadRequest {
		t.Fatalf("replayed callback status = %d, want 400", second.StatusCode)
	}
}

func TestListenerTimeout(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-slow")

	_, err := listener.AwaitCallback(context.Background(), "state-slow", 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("AwaitCallback() error = %v, want ErrTimeout", err)
	}
	if count := listener.Status().PendingCount; count != 0 {
		t.Errorf("PendingCount = %d after expiry", count)
	}
}

func TestListenerStopCancelsPending(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-stopped")
	outcome := awaitAsync(listener, "state-stopped", 5*time.Second)

	time.Sleep(10 * time.Millisecond)
	listener.Stop()

	got := <-outcome
	if !errors.Is(got.err, ErrShutdown) {
		t.Fatalf("AwaitCallback() error = %v, want ErrShutdown", got.err)
	}
}

func TestListenerConcurrentAttempts(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-a")
	registerAttempt(t, listener, "state-b")

	outcomeA := awaitAsync(listener, "state-a", 5*time.Second)
	outcomeB := awaitAsync(listener, "state-b", 5*time.Second)

	for _, query := range []string{"code=code-b&state=state-b", "code=code-a&state=state-a"} {
		resp, err := http.Get(callbackURL(listener, query))
		if err != nil {
			t.Fatalf("GET callback: %v", err)
		}
		resp.Body.Close()
	}

	gotA, gotB := <-outcomeA, <-outcomeB
	if gotA.err != nil || gotA.result.Code != "code-a" {
		t.Errorf("attempt a: %+v, %v", gotA.result, gotA.err)
	}
	if gotB.err != nil || gotB.result.Code != "code-b" {
		t.Errorf("attempt b: %+v, %v", gotB.result, gotB.err)
	}
}

func TestListenerRegisterRequiresRunning(t *testing.T) {
	listener := NewListener(testListenerConfig())
	err := listener.Register(&PendingAttempt{StateToken: "state"})
	if err == nil {
		t.Fatal("expected error registering on a stopped listener")
	}
}

func TestListenerRegisterRejectsDuplicateState(t *testing.T) {
	listener := startTestListener(t)
	registerAttempt(t, listener, "state-dup")

	err := listener.Register(&PendingAttempt{StateToken: "state-dup"})
	if err == nil {
		t.Fatal("expected error for duplicate state token")
	}
}
