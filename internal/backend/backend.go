// Package backend defines the capability contracts of the managed backend
// this application delegates to: identity (authentication and the auth-state
// event stream), object storage for uploaded files, and row storage keyed by
// primary key. Concrete adapters live in subpackages; everything above this
// package treats the backend as an opaque collaborator.
package backend

import "context"

// Identity is the authenticated principal returned by the identity service.
type Identity struct {
	ID    string
	Email string
}

// AuthEventKind distinguishes the two observable auth-state transitions.
type AuthEventKind string

const (
	SignedIn  AuthEventKind = "signed_in"
	SignedOut AuthEventKind = "signed_out"
)

// AuthEvent is delivered to subscribers whenever the auth state changes.
// Identity is nil for SignedOut events.
type AuthEvent struct {
	Kind     AuthEventKind
	Identity *Identity
}

// AuthClient is the identity capability: registration, credential checks,
// session teardown, and a subscribable auth-state stream.
//
// CurrentUser returns (nil, nil) when no session is active; an expired
// session is reported the same way after a SignedOut event has been emitted.
type AuthClient interface {
	Register(ctx context.Context, email, password string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*Identity, error)

	// Subscribe registers fn on the auth-state stream and returns a handle
	// that removes the subscription. Callers must release the handle when
	// they no longer observe events.
	Subscribe(fn func(AuthEvent)) (unsubscribe func())
}

// BlobStore is the object storage capability. Keys are opaque blob
// references; PublicURL resolves one to a fetchable URL.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte) error
	PublicURL(bucket, key string) string
	Delete(ctx context.Context, bucket, key string) error
}

// Row is one relational row as returned by the row store. Column values keep
// the driver's native Go types.
type Row map[string]any

// RowStore is the row storage capability: select by primary key and
// insert-or-update keyed by a declared conflict column.
//
// SelectByID returns ErrNotFound for an absent row. Upsert returns the
// stored row, including any backend-assigned id and column defaults.
type RowStore interface {
	SelectByID(ctx context.Context, table, id string) (Row, error)
	Upsert(ctx context.Context, table string, row Row, conflictKey string) (Row, error)
}

// Client bundles the three capability groups, mirroring how the managed
// platform hands out a single client object.
type Client struct {
	Auth  AuthClient
	Blobs BlobStore
	Rows  RowStore
}
