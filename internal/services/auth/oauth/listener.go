package oauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// AttemptStatus tracks the lifecycle of one authorization attempt.
type AttemptStatus int

const (
	// StatusPending marks an attempt waiting for the provider redirect.
	StatusPending AttemptStatus = iota
	// StatusFulfilled marks an attempt whose redirect arrived with a code.
	StatusFulfilled
	// StatusExpired marks an attempt whose deadline elapsed first.
	StatusExpired
	// StatusFailed marks an attempt the provider rejected or that was
	// cancelled by listener shutdown.
	StatusFailed
)

// CallbackResult is the captured redirect for one matched attempt. It is
// produced exactly once and consumed by the flow controller.
type CallbackResult struct {
	FullURL          string
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// PendingAttempt is one authorization-in-progress, keyed by its state token.
type PendingAttempt struct {
	StateToken    string
	CodeVerifier  string
	CodeChallenge string
	Scopes        []string
	CreatedAt     time.Time
	Timeout       time.Duration

	status AttemptStatus
	// done carries the terminal delivery for this attempt. Buffered so the
	// accept path never blocks on a slow or absent waiter.
	done chan callbackDelivery
}

type deliveryKind int

const (
	deliveryFulfilled deliveryKind = iota
	deliveryDenied
	deliveryCancelled
)

type callbackDelivery struct {
	kind   deliveryKind
	result CallbackResult
}

// ListenerStatus describes the callback listener's current state.
type ListenerStatus struct {
	Running      bool `json:"running"`
	BoundPort    int  `json:"bound_port"`
	PendingCount int  `json:"pending_count"`
}

// Listener is the local HTTP endpoint the provider redirects the user's
// browser to. One long-lived instance is owned by the process's top-level
// lifecycle and injected by reference into whatever needs to start, stop, or
// query it; there is no hidden module-level singleton.
type Listener struct {
	config Config

	mu      sync.Mutex
	ln      net.Listener
	server  *http.Server
	port    int
	pending map[string]*PendingAttempt

	clock func() time.Time
}

// NewListener builds a callback listener for the configured redirect URI.
func NewListener(cfg Config) *Listener {
	return &Listener{
		config:  cfg,
		pending: make(map[string]*PendingAttempt),
		clock:   time.Now,
	}
}

// Start binds the listener on the preferred port (the redirect URI's port
// when zero). It is idempotent: when already running it returns the current
// status without rebinding. A bind failure is reported as a PortInUseError
// rather than silently picking another port, because the redirect URI
// registered with the provider is port-specific.
func (l *Listener) Start(preferredPort int) (ListenerStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server != nil {
		return l.statusLocked(), nil
	}

	port := preferredPort
	if port <= 0 {
		port = l.config.CallbackPort()
	}

	ln, err := net.Listen("tcp", l.config.listenAddr(port))
	if err != nil {
		return ListenerStatus{}, &PortInUseError{Port: port, Err: err}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(l.config.CallbackPath(), l.handleCallback)

	l.ln = ln
	l.port = ln.Addr().(*net.TCPAddr).Port
	l.server = &http.Server{Handler: mux}

	server := l.server
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("callback listener serve: %v", err)
		}
	}()

	log.Printf("callback listener started on http://%s%s", ln.Addr(), l.config.CallbackPath())
	return l.statusLocked(), nil
}

// Stop closes the listening socket, fails every still-pending attempt with a
// cancellation delivery, and clears the pending set. It is idempotent.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server == nil {
		return
	}

	if err := l.server.Close(); err != nil {
		log.Printf("callback listener close: %v", err)
	}
	l.server = nil
	l.ln = nil
	l.port = 0

	for state, attempt := range l.pending {
		attempt.status = StatusFailed
		attempt.done <- callbackDelivery{kind: deliveryCancelled}
		delete(l.pending, state)
	}

	log.Printf("callback listener stopped")
}

// Status reports whether the listener is running, its bound port, and how
// many attempts are pending.
func (l *Listener) Status() ListenerStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statusLocked()
}

func (l *Listener) statusLocked() ListenerStatus {
	return ListenerStatus{
		Running:      l.server != nil,
		BoundPort:    l.port,
		PendingCount: len(l.pending),
	}
}

// Register adds a pending attempt keyed by its state token. State tokens are
// never reused while still pending, so a collision is an error.
func (l *Listener) Register(attempt *PendingAttempt) error {
	if attempt == nil || attempt.StateToken == "" {
		return fmt.Errorf("attempt requires a state token")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.server == nil {
		return fmt.Errorf("callback listener is not running")
	}
	if _, exists := l.pending[attempt.StateToken]; exists {
		return fmt.Errorf("state token is already pending")
	}

	attempt.status = StatusPending
	attempt.done = make(chan callbackDelivery, 1)
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = l.clock()
	}
	l.pending[attempt.StateToken] = attempt
	return nil
}

// Abandon removes a pending attempt before it resolves. Late redirects for
// the abandoned state token are rejected like any unknown state.
func (l *Listener) Abandon(stateToken string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if attempt, ok := l.pending[stateToken]; ok && attempt.status == StatusPending {
		attempt.status = StatusFailed
		delete(l.pending, stateToken)
	}
}

// AwaitCallback suspends the caller until the redirect matching stateToken
// arrives, the timeout elapses, or the listener stops. The three terminal
// outcomes are disjoint: a fulfilled redirect returns the CallbackResult, a
// provider rejection returns an AuthDeniedError, expiry returns ErrTimeout,
// and shutdown returns ErrShutdown. Waiting never blocks the accept path.
func (l *Listener) AwaitCallback(ctx context.Context, stateToken string, timeout time.Duration) (CallbackResult, error) {
	l.mu.Lock()
	attempt, ok := l.pending[stateToken]
	running := l.server != nil
	l.mu.Unlock()
	if !ok {
		if !running {
			return CallbackResult{}, ErrShutdown
		}
		return CallbackResult{}, fmt.Errorf("no pending attempt for state token")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case delivery := <-attempt.done:
		return l.resolveDelivery(delivery)
	case <-timer.C:
		return l.expire(attempt)
	case <-ctx.Done():
		l.Abandon(stateToken)
		return CallbackResult{}, ctx.Err()
	}
}

func (l *Listener) resolveDelivery(delivery callbackDelivery) (CallbackResult, error) {
	switch delivery.kind {
	case deliveryFulfilled:
		return delivery.result, nil
	case deliveryDenied:
		return CallbackResult{}, &AuthDeniedError{
			Code:        delivery.result.Error,
			Description: delivery.result.ErrorDescription,
		}
	default:
		return CallbackResult{}, ErrShutdown
	}
}

// expire marks the attempt EXPIRED unless a delivery raced in first, in
// which case the delivery wins.
func (l *Listener) expire(attempt *PendingAttempt) (CallbackResult, error) {
	l.mu.Lock()
	if attempt.status == StatusPending {
		attempt.status = StatusExpired
		delete(l.pending, attempt.StateToken)
		l.mu.Unlock()
		return CallbackResult{}, ErrTimeout
	}
	l.mu.Unlock()

	select {
	case delivery := <-attempt.done:
		return l.resolveDelivery(delivery)
	default:
		return CallbackResult{}, ErrTimeout
	}
}

// handleCallback processes one inbound redirect. The browser-facing response
// is a static human-readable page and never carries token material; protocol
// state travels only through the matched attempt.
func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := query.Get("state")

	l.mu.Lock()
	attempt, ok := l.pending[state]
	if ok && attempt.status != StatusPending {
		// Already terminal; treat a replayed redirect as unknown.
		ok = false
	}

	if !ok {
		l.mu.Unlock()
		renderCallbackPage(w, http.StatusBadRequest, "unknown.html", callbackPageData{})
		return
	}

	if errCode := query.Get("error"); errCode != "" {
		attempt.status = StatusFailed
		delete(l.pending, state)
		attempt.done <- callbackDelivery{
			kind: deliveryDenied,
			result: CallbackResult{
				FullURL:          r.URL.String(),
				State:            state,
				Error:            errCode,
				ErrorDescription: query.Get("error_description"),
			},
		}
		l.mu.Unlock()
		renderCallbackPage(w, http.StatusBadRequest, "denied.html", callbackPageData{
			Error:            errCode,
			ErrorDescription: query.Get("error_description"),
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		l.mu.Unlock()
		renderCallbackPage(w, http.StatusBadRequest, "unknown.html", callbackPageData{})
		return
	}

	attempt.status = StatusFulfilled
	delete(l.pending, state)
	attempt.done <- callbackDelivery{
		kind: deliveryFulfilled,
		result: CallbackResult{
			FullURL: r.URL.String(),
			Code:    code,
			State:   state,
		},
	}
	l.mu.Unlock()

	renderCallbackPage(w, http.StatusOK, "success.html", callbackPageData{})
}
