package sdk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Fixed authentication endpoints of the catalog API.
const (
	LoginPath       = "/api/login"
	LogoutPath      = "/api/logout"
	CurrentUserPath = "/api/user"
)

// Status is the resolved state of the session.
type Status int

const (
	// StatusUnknown is the initial state while the session is being verified.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Authenticator owns the session status. It performs login, logout and
// session verification through the client and is the only writer of the
// status; guards only read it.
type Authenticator struct {
	client *Client
	store  TokenStore
	logger *slog.Logger

	mu        sync.RWMutex
	status    Status
	user      *User
	listeners []func(Status)

	resolveOnce sync.Once
	resolved    chan struct{}
}

// NewAuthenticator wires an Authenticator to client. It subscribes to the
// client's auth failures so a 401/403 on any request marks the session
// unauthenticated.
func NewAuthenticator(client *Client, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &Authenticator{
		client:   client,
		store:    client.Store(),
		logger:   logger,
		status:   StatusUnknown,
		resolved: make(chan struct{}),
	}
	client.OnAuthFailure(func(int) {
		a.setStatus(StatusUnauthenticated, nil)
	})
	return a
}

// Client returns the underlying API client.
func (a *Authenticator) Client() *Client { return a.client }

// Status returns the current session status.
func (a *Authenticator) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// User returns the profile fetched by the last successful CheckSession.
func (a *Authenticator) User() *User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// Resolved is closed once the status leaves StatusUnknown.
func (a *Authenticator) Resolved() <-chan struct{} {
	return a.resolved
}

// Wait blocks until the status is resolved or ctx is done.
func (a *Authenticator) Wait(ctx context.Context) (Status, error) {
	select {
	case <-a.resolved:
		return a.Status(), nil
	case <-ctx.Done():
		return StatusUnknown, ctx.Err()
	}
}

// OnStatusChange registers fn to be called after every status transition.
func (a *Authenticator) OnStatusChange(fn func(Status)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *Authenticator) setStatus(status Status, user *User) {
	a.mu.Lock()
	changed := a.status != status
	a.status = status
	a.user = user
	listeners := append([]func(Status){}, a.listeners...)
	a.mu.Unlock()

	if status != StatusUnknown {
		a.resolveOnce.Do(func() { close(a.resolved) })
	}
	if !changed {
		return
	}
	a.logger.Debug("session status changed", "status", status.String())
	for _, fn := range listeners {
		fn(status)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token, persists it, loads the user
// profile and marks the session authenticated. It does not retry.
func (a *Authenticator) Login(ctx context.Context, email, password string) error {
	resp, err := a.client.Post(ctx, LoginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		a.setStatus(StatusUnauthenticated, nil)
		return err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.Decode(&payload); err != nil || payload.AccessToken == "" {
		a.setStatus(StatusUnauthenticated, nil)
		return &MissingTokenError{Field: "access_token"}
	}

	if err := a.store.SetToken(payload.AccessToken); err != nil {
		a.setStatus(StatusUnauthenticated, nil)
		return fmt.Errorf("persist session token: %w", err)
	}
	// The profile is best-effort; the session is valid without it.
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		a.logger.Warn("could not load profile after login", "error", err)
		user = nil
	}
	if _, ok := a.store.Token(); !ok {
		// The profile request was rejected and the token already cleared.
		a.setStatus(StatusUnauthenticated, nil)
		if err == nil {
			err = ErrNotAuthenticated
		}
		return err
	}
	a.setStatus(StatusAuthenticated, user)
	a.logger.Info("logged in", "email", email)
	return nil
}

// Logout revokes the token server-side on a best-effort basis, then always
// clears the local session. Only a failure to clear the store is returned.
func (a *Authenticator) Logout(ctx context.Context) error {
	if _, ok := a.store.Token(); ok {
		if _, err := a.client.Post(ctx, LogoutPath, nil); err != nil {
			a.logger.Warn("server logout failed; clearing local session anyway", "error", err)
		}
	}

	err := a.store.ClearToken()
	a.setStatus(StatusUnauthenticated, nil)
	if err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// CheckSession verifies the stored token against the API. With no stored
// token it resolves to StatusUnauthenticated without any network call.
// Callers invoke it once at process start.
func (a *Authenticator) CheckSession(ctx context.Context) Status {
	if _, ok := a.store.Token(); !ok {
		a.setStatus(StatusUnauthenticated, nil)
		return StatusUnauthenticated
	}

	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		a.logger.Warn("session verification failed", "error", err)
		if cerr := a.store.ClearToken(); cerr != nil {
			a.logger.Error("failed to clear session token", "error", cerr)
		}
		a.setStatus(StatusUnauthenticated, nil)
		return StatusUnauthenticated
	}

	a.setStatus(StatusAuthenticated, user)
	return StatusAuthenticated
}
