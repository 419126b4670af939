package profile

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
)

var jane = backend.Identity{ID: "u1", Email: "jane@x.com"}

// ---- fakes ----

type fakeAuth struct {
	CurrentRet *backend.Identity
	CurrentErr error
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*backend.Identity, error) {
	return nil, nil
}
func (f *fakeAuth) Login(ctx context.Context, email, password string) (*backend.Identity, error) {
	return nil, nil
}
func (f *fakeAuth) Logout(ctx context.Context) error { return nil }
func (f *fakeAuth) CurrentUser(ctx context.Context) (*backend.Identity, error) {
	return f.CurrentRet, f.CurrentErr
}
func (f *fakeAuth) Subscribe(fn func(backend.AuthEvent)) func() { return func() {} }

type fakeBlobs struct {
	UploadErr error
	DeleteErr error

	Uploads []string
	Deletes []string
}

func (f *fakeBlobs) Upload(ctx context.Context, bucket, key string, data []byte) error {
	if f.UploadErr != nil {
		return f.UploadErr
	}
	f.Uploads = append(f.Uploads, bucket+"/"+key)
	return nil
}

func (f *fakeBlobs) Delete(ctx context.Context, bucket, key string) error {
	f.Deletes = append(f.Deletes, bucket+"/"+key)
	return f.DeleteErr
}

func (f *fakeBlobs) PublicURL(bucket, key string) string {
	return "http://blobs/" + bucket + "/" + key
}

type fakeRows struct {
	SelectRet backend.Row
	SelectErr error
	UpsertErr error

	LastUpsertTable string
	LastUpsertRow   backend.Row
	UpsertCalls     int
}

func (f *fakeRows) SelectByID(ctx context.Context, table, id string) (backend.Row, error) {
	if f.SelectErr != nil {
		return nil, f.SelectErr
	}
	return f.SelectRet, nil
}

func (f *fakeRows) Upsert(ctx context.Context, table string, row backend.Row, conflictKey string) (backend.Row, error) {
	f.UpsertCalls++
	f.LastUpsertTable = table
	f.LastUpsertRow = row
	if f.UpsertErr != nil {
		return nil, f.UpsertErr
	}
	return row, nil
}

type fakeNotifier struct {
	Successes []string
	Errors    []string
	Infos     []string
}

func (f *fakeNotifier) Success(msg string) { f.Successes = append(f.Successes, msg) }
func (f *fakeNotifier) Error(msg string)   { f.Errors = append(f.Errors, msg) }
func (f *fakeNotifier) Info(msg string)    { f.Infos = append(f.Infos, msg) }

type editorParts struct {
	editor   *Editor
	auth     *fakeAuth
	blobs    *fakeBlobs
	rows     *fakeRows
	notifier *fakeNotifier
}

func newTestEditor(t *testing.T) *editorParts {
	t.Helper()
	p := &editorParts{
		auth:     &fakeAuth{CurrentRet: &jane},
		blobs:    &fakeBlobs{},
		rows:     &fakeRows{SelectErr: backend.ErrNotFound},
		notifier: &fakeNotifier{},
	}
	client := &backend.Client{Auth: p.auth, Blobs: p.blobs, Rows: p.rows}
	p.editor = NewEditor(client, p.notifier, logging.NewDefault(io.Discard))
	return p
}

// ---- tests ----

func TestLoadAbsentRowSeedsDefaults(t *testing.T) {
	p := newTestEditor(t)

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)
	require.Equal(t, "jane", draft.Username())
	require.Empty(t, draft.FullName())
	require.Empty(t, draft.Bio())
	require.Empty(t, draft.Location())
	require.Empty(t, p.notifier.Errors)
}

func TestLoadExistingRow(t *testing.T) {
	p := newTestEditor(t)
	p.rows.SelectErr = nil
	p.rows.SelectRet = backend.Row{
		"id":         "u1",
		"username":   "jane2",
		"full_name":  "Jane Doe",
		"location":   "Riga",
		"bio":        "designer",
		"avatar_url": "u1-1.png",
	}

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)
	require.Equal(t, "jane2", draft.Username())
	require.Equal(t, "Jane Doe", draft.FullName())
	require.Equal(t, "u1-1.png", draft.AvatarRef())
	require.Equal(t, "http://blobs/avatars/u1-1.png", p.editor.PreviewURL(draft))
}

func TestLoadFailureIsNotified(t *testing.T) {
	p := newTestEditor(t)
	p.rows.SelectErr = errors.New("backend down")

	_, err := p.editor.Load(context.Background(), jane)
	require.Error(t, err)
	require.NotEmpty(t, p.notifier.Errors)
}

func TestSaveWithoutAvatarOnlyUpserts(t *testing.T) {
	p := newTestEditor(t)

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)
	draft.SetUsername("jane2")

	require.NoError(t, p.editor.Save(context.Background(), jane, draft, nil))

	require.Empty(t, p.blobs.Uploads)
	require.Empty(t, p.blobs.Deletes)
	require.Equal(t, "profiles", p.rows.LastUpsertTable)
	require.Equal(t, "u1", p.rows.LastUpsertRow["id"])
	require.Equal(t, "jane2", p.rows.LastUpsertRow["username"])
	require.NotContains(t, p.rows.LastUpsertRow, "avatar_url")
	require.IsType(t, time.Time{}, p.rows.LastUpsertRow["updated_at"])
	require.NotEmpty(t, p.notifier.Successes)
}

func TestSaveUploadsAvatarAndDeletesPrevious(t *testing.T) {
	p := newTestEditor(t)
	p.rows.SelectErr = nil
	p.rows.SelectRet = backend.Row{"id": "u1", "username": "jane", "avatar_url": "u1-old.png"}

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	avatar := &AvatarUpload{Data: []byte("img"), Ext: ".png"}
	require.NoError(t, p.editor.Save(context.Background(), jane, draft, avatar))

	require.Len(t, p.blobs.Uploads, 1)
	require.Contains(t, p.blobs.Uploads[0], "avatars/u1-")
	require.Equal(t, []string{"avatars/u1-old.png"}, p.blobs.Deletes)
	require.Equal(t, draft.AvatarRef(), p.rows.LastUpsertRow["avatar_url"])
	require.NotEqual(t, "u1-old.png", draft.AvatarRef())
}

func TestSaveAbortsOnUploadFailure(t *testing.T) {
	p := newTestEditor(t)
	p.blobs.UploadErr = errors.New("storage down")

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	avatar := &AvatarUpload{Data: []byte("img"), Ext: "png"}
	require.Error(t, p.editor.Save(context.Background(), jane, draft, avatar))

	require.Zero(t, p.rows.UpsertCalls)
	require.Empty(t, p.blobs.Deletes)
	require.NotEmpty(t, p.notifier.Errors)
}

func TestSaveKeepsGoingWhenPreviousDeleteFails(t *testing.T) {
	p := newTestEditor(t)
	p.rows.SelectErr = nil
	p.rows.SelectRet = backend.Row{"id": "u1", "username": "jane", "avatar_url": "u1-old.png"}
	p.blobs.DeleteErr = errors.New("storage down")

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	avatar := &AvatarUpload{Data: []byte("img"), Ext: "png"}
	require.NoError(t, p.editor.Save(context.Background(), jane, draft, avatar))
	require.Equal(t, 1, p.rows.UpsertCalls)
	require.NotEmpty(t, p.notifier.Successes)
}

func TestSaveRejectedWhenSessionGone(t *testing.T) {
	p := newTestEditor(t)
	p.auth.CurrentRet = nil

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	err = p.editor.Save(context.Background(), jane, draft, nil)
	require.ErrorIs(t, err, backend.ErrUnauthorized)
	require.Zero(t, p.rows.UpsertCalls)
	require.NotEmpty(t, p.notifier.Errors)
}

func TestSaveRejectedWhenIdentityChanged(t *testing.T) {
	p := newTestEditor(t)
	p.auth.CurrentRet = &backend.Identity{ID: "u2", Email: "john@x.com"}

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	err = p.editor.Save(context.Background(), jane, draft, nil)
	require.ErrorIs(t, err, backend.ErrUnauthorized)
	require.Zero(t, p.rows.UpsertCalls)
}

func TestSaveGateRejectsSecondInvocation(t *testing.T) {
	p := newTestEditor(t)

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)

	p.editor.saving.Store(true) // a save is outstanding
	err = p.editor.Save(context.Background(), jane, draft, nil)
	require.ErrorIs(t, err, ErrSaveInFlight)
	require.Zero(t, p.rows.UpsertCalls)

	p.editor.saving.Store(false)
	require.NoError(t, p.editor.Save(context.Background(), jane, draft, nil))
}

func TestSaveScenario(t *testing.T) {
	// Identity {id:"u1", email:"jane@x.com"}, no existing profile:
	// load seeds username "jane", save with username "jane2" upserts
	// {id:"u1", username:"jane2", updated_at:<timestamp>} and no avatar ref.
	p := newTestEditor(t)

	draft, err := p.editor.Load(context.Background(), jane)
	require.NoError(t, err)
	require.Equal(t, "jane", draft.Username())

	draft.SetUsername("jane2")
	require.NoError(t, p.editor.Save(context.Background(), jane, draft, nil))

	row := p.rows.LastUpsertRow
	require.Equal(t, "u1", row["id"])
	require.Equal(t, "jane2", row["username"])
	require.NotContains(t, row, "avatar_url")
	require.Contains(t, row, "updated_at")
}
