package session

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
)

// fakeAuth implements backend.AuthClient for unit tests. Login and Logout
// emit events to the single subscriber the way the real provider does.
type fakeAuth struct {
	CurrentRet *backend.Identity
	CurrentErr error

	RegisterRet *backend.Identity
	RegisterErr error

	LoginRet *backend.Identity
	LoginErr error

	LogoutErr error

	subscriber   func(backend.AuthEvent)
	Unsubscribed bool
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*backend.Identity, error) {
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*backend.Identity, error) {
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.emit(backend.AuthEvent{Kind: backend.SignedIn, Identity: f.LoginRet})
	return f.LoginRet, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.emit(backend.AuthEvent{Kind: backend.SignedOut})
	return nil
}

func (f *fakeAuth) CurrentUser(ctx context.Context) (*backend.Identity, error) {
	return f.CurrentRet, f.CurrentErr
}

func (f *fakeAuth) Subscribe(fn func(backend.AuthEvent)) func() {
	f.subscriber = fn
	return func() {
		f.Unsubscribed = true
		f.subscriber = nil
	}
}

func (f *fakeAuth) emit(event backend.AuthEvent) {
	if f.subscriber != nil {
		f.subscriber(event)
	}
}

// fakeNotifier records messages for assertions.
type fakeNotifier struct {
	Successes []string
	Errors    []string
	Infos     []string
}

func (f *fakeNotifier) Success(msg string) { f.Successes = append(f.Successes, msg) }
func (f *fakeNotifier) Error(msg string)   { f.Errors = append(f.Errors, msg) }
func (f *fakeNotifier) Info(msg string)    { f.Infos = append(f.Infos, msg) }

func newTestStore(t *testing.T, auth backend.AuthClient, n *fakeNotifier) *Store {
	t.Helper()
	s := New(context.Background(), auth, n, logging.NewDefault(io.Discard))
	t.Cleanup(s.Dispose)
	return s
}

func TestInitialProbe(t *testing.T) {
	jane := &backend.Identity{ID: "u1", Email: "jane@x.com"}
	s := newTestStore(t, &fakeAuth{CurrentRet: jane}, &fakeNotifier{})

	cur := s.Current()
	require.False(t, cur.Loading)
	require.Equal(t, jane, cur.Identity)
}

func TestInitialProbeFailure(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestStore(t, &fakeAuth{CurrentErr: errors.New("backend down")}, n)

	cur := s.Current()
	require.False(t, cur.Loading)
	require.Nil(t, cur.Identity)
	require.NotEmpty(t, n.Errors)
}

func TestLoginUpdatesSession(t *testing.T) {
	jane := &backend.Identity{ID: "u1", Email: "jane@x.com"}
	auth := &fakeAuth{LoginRet: jane}
	n := &fakeNotifier{}
	s := newTestStore(t, auth, n)

	id, err := s.Login(context.Background(), "jane@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, jane, id)
	require.Equal(t, jane, s.Current().Identity)
	require.Contains(t, n.Successes[0], "jane@x.com")
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	auth := &fakeAuth{LoginErr: backend.ErrUnauthorized}
	n := &fakeNotifier{}
	s := newTestStore(t, auth, n)

	_, err := s.Login(context.Background(), "jane@x.com", "wrong")
	require.Error(t, err)
	require.Nil(t, s.Current().Identity)
	require.NotEmpty(t, n.Errors)
}

func TestLogoutClearsSession(t *testing.T) {
	jane := &backend.Identity{ID: "u1", Email: "jane@x.com"}
	auth := &fakeAuth{LoginRet: jane}
	n := &fakeNotifier{}
	s := newTestStore(t, auth, n)

	_, err := s.Login(context.Background(), "jane@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	require.Nil(t, s.Current().Identity)
	require.NotEmpty(t, n.Infos)
}

func TestLogoutFailureIsNotified(t *testing.T) {
	auth := &fakeAuth{LogoutErr: errors.New("backend down")}
	n := &fakeNotifier{}
	s := newTestStore(t, auth, n)

	require.Error(t, s.Logout(context.Background()))
	require.NotEmpty(t, n.Errors)
}

func TestEventApplicationIsIdempotent(t *testing.T) {
	jane := &backend.Identity{ID: "u1", Email: "jane@x.com"}
	auth := &fakeAuth{}
	s := newTestStore(t, auth, &fakeNotifier{})

	auth.emit(backend.AuthEvent{Kind: backend.SignedIn, Identity: jane})
	auth.emit(backend.AuthEvent{Kind: backend.SignedIn, Identity: jane})
	require.Equal(t, jane, s.Current().Identity)

	auth.emit(backend.AuthEvent{Kind: backend.SignedOut})
	auth.emit(backend.AuthEvent{Kind: backend.SignedOut})
	require.Nil(t, s.Current().Identity)
}

func TestExternalExpiryClearsSession(t *testing.T) {
	jane := &backend.Identity{ID: "u1", Email: "jane@x.com"}
	auth := &fakeAuth{CurrentRet: jane}
	s := newTestStore(t, auth, &fakeNotifier{})
	require.Equal(t, jane, s.Current().Identity)

	// The backend noticed an expired token and pushed a SignedOut event.
	auth.emit(backend.AuthEvent{Kind: backend.SignedOut})
	require.Nil(t, s.Current().Identity)
}

func TestDisposeReleasesSubscription(t *testing.T) {
	auth := &fakeAuth{}
	s := New(context.Background(), auth, &fakeNotifier{}, logging.NewDefault(io.Discard))

	s.Dispose()
	s.Dispose() // second call is a no-op
	require.True(t, auth.Unsubscribed)

	// A late-arriving event has no observer and must not mutate state.
	auth.emit(backend.AuthEvent{Kind: backend.SignedIn, Identity: &backend.Identity{ID: "u1"}})
	require.Nil(t, s.Current().Identity)
}
