// Package session holds the client-local copy of the authenticated identity.
// A Store probes the backend once at construction, then tracks every
// auth-state change the backend emits until it is disposed.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
	"github.com/dmitrijs2005/skilllink/internal/notify"
)

// Session is a snapshot of the current auth state. Loading is true only
// while the initial session probe is in flight.
type Session struct {
	Identity *backend.Identity
	Loading  bool
}

// Store observes the backend's auth-state stream and exposes the
// register/login/logout actions. One Store exists per running client;
// Dispose must be called to release the subscription.
type Store struct {
	auth     backend.AuthClient
	notifier notify.Notifier
	log      logging.Logger

	mu       sync.Mutex
	identity *backend.Identity
	loading  bool

	disposeOnce sync.Once
	unsubscribe func()
}

// New builds a Store, probes the current session, and subscribes to
// auth-state changes. The probe failure is surfaced as a notification; the
// store starts unauthenticated in that case.
func New(ctx context.Context, auth backend.AuthClient, notifier notify.Notifier, log logging.Logger) *Store {
	s := &Store{
		auth:     auth,
		notifier: notifier,
		log:      log,
		loading:  true,
	}

	identity, err := auth.CurrentUser(ctx)
	if err != nil {
		log.Error(ctx, "session probe failed", "err", err.Error())
		notifier.Error("Could not restore your session")
		identity = nil
	}

	s.mu.Lock()
	s.identity = identity
	s.loading = false
	s.mu.Unlock()

	s.unsubscribe = auth.Subscribe(s.applyEvent)
	return s
}

// Current returns the session snapshot as of the last observed event.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{Identity: s.identity, Loading: s.loading}
}

// Register creates a new account. Success does not imply an active session;
// the backend's activation policy decides when the first SignedIn arrives.
func (s *Store) Register(ctx context.Context, email, password string) (*backend.Identity, error) {
	identity, err := s.auth.Register(ctx, email, password)
	if err != nil {
		s.notifier.Error("Sign up failed: " + err.Error())
		return nil, err
	}
	s.notifier.Success("Account created! You can sign in now.")
	return identity, nil
}

// Login delegates the credential check. On success the backend emits a
// SignedIn event which updates this store; a failed attempt leaves the
// session unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (*backend.Identity, error) {
	identity, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.notifier.Error("Login failed: " + err.Error())
		return nil, err
	}
	s.notifier.Success("Welcome back, " + identity.Email + "!")
	return identity, nil
}

// Logout delegates to the backend and expects a SignedOut event to clear the
// session. Failures are notified, never swallowed.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.notifier.Error("Logout failed: " + err.Error())
		return err
	}
	s.notifier.Info("You have been logged out")
	return nil
}

// Dispose releases the auth-state subscription. Safe to call more than once;
// events arriving after Dispose are not applied.
func (s *Store) Dispose() {
	s.disposeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

// applyEvent folds one auth-state change into the store. Application is
// idempotent: re-delivery of the current state is a no-op.
func (s *Store) applyEvent(event backend.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Kind {
	case backend.SignedIn:
		if event.Identity == nil {
			return
		}
		if s.identity != nil && s.identity.ID == event.Identity.ID {
			return
		}
		s.identity = event.Identity
	case backend.SignedOut:
		s.identity = nil
	}
}
