package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
)

// Provider implements backend.AuthClient. It retains at most one active
// session (an access token) and fans auth-state changes out to subscribers.
//
// Register deliberately does not start a session: account activation policy
// belongs to the identity service, and callers only learn about an active
// session through a SignedIn event.
type Provider struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	log      logging.Logger

	mu          sync.Mutex
	accessToken string
	current     *backend.Identity
	subscribers map[int]func(backend.AuthEvent)
	nextSubID   int
}

func NewProvider(repo Repository, secret []byte, tokenTTL time.Duration, log logging.Logger) *Provider {
	return &Provider{
		repo:        repo,
		secret:      secret,
		tokenTTL:    tokenTTL,
		log:         log,
		subscribers: make(map[int]func(backend.AuthEvent)),
	}
}

// Register creates a new account. The email is normalized to lower case;
// a duplicate yields backend.ErrDuplicateEmail. No session is started and
// no auth event is emitted.
func (p *Provider) Register(ctx context.Context, email, password string) (*backend.Identity, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := p.repo.GetByEmail(ctx, email); err == nil {
		return nil, backend.ErrDuplicateEmail
	} else if !errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("register error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	user, err := p.repo.Create(ctx, &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	return &backend.Identity{ID: user.ID, Email: user.Email}, nil
}

// Login verifies the credentials, mints a session token, and emits a
// SignedIn event. Unknown emails and wrong passwords are indistinguishable
// to the caller (both yield backend.ErrUnauthorized).
func (p *Provider) Login(ctx context.Context, email, password string) (*backend.Identity, error) {
	email = normalizeEmail(email)

	user, err := p.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, backend.ErrUnauthorized
		}
		return nil, fmt.Errorf("login error: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, backend.ErrUnauthorized
	}

	token, err := generateToken(user.ID, p.secret, p.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	identity := &backend.Identity{ID: user.ID, Email: user.Email}

	p.mu.Lock()
	p.accessToken = token
	p.current = identity
	subs := p.snapshotSubscribersLocked()
	p.mu.Unlock()

	emit(subs, backend.AuthEvent{Kind: backend.SignedIn, Identity: identity})
	return identity, nil
}

// Logout clears the retained session and emits a SignedOut event. Logging
// out without an active session is a no-op.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	hadSession := p.accessToken != ""
	p.accessToken = ""
	p.current = nil
	subs := p.snapshotSubscribersLocked()
	p.mu.Unlock()

	if hadSession {
		emit(subs, backend.AuthEvent{Kind: backend.SignedOut})
	}
	return nil
}

// CurrentUser returns the identity of the active session, or (nil, nil) when
// there is none. An expired or otherwise invalid token ends the session:
// the state is cleared and a single SignedOut event is emitted.
func (p *Provider) CurrentUser(ctx context.Context) (*backend.Identity, error) {
	p.mu.Lock()
	token := p.accessToken
	current := p.current
	p.mu.Unlock()

	if token == "" {
		return nil, nil
	}

	if _, err := userIDFromToken(token, p.secret); err != nil {
		p.log.Warn(ctx, "session token no longer valid", "err", err.Error())

		p.mu.Lock()
		// Another goroutine may have logged in again meanwhile; only clear
		// the token we just rejected.
		var subs []func(backend.AuthEvent)
		expired := p.accessToken == token
		if expired {
			p.accessToken = ""
			p.current = nil
			subs = p.snapshotSubscribersLocked()
		}
		p.mu.Unlock()

		if expired {
			emit(subs, backend.AuthEvent{Kind: backend.SignedOut})
		}
		return nil, nil
	}

	return current, nil
}

// Subscribe registers fn on the auth-state stream. The returned handle
// removes the subscription and is safe to call more than once.
func (p *Provider) Subscribe(fn func(backend.AuthEvent)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) snapshotSubscribersLocked() []func(backend.AuthEvent) {
	subs := make([]func(backend.AuthEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// emit invokes callbacks outside the provider lock so a subscriber may call
// back into the provider.
func emit(subs []func(backend.AuthEvent), event backend.AuthEvent) {
	for _, fn := range subs {
		fn(event)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
