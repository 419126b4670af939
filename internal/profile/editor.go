// Package profile implements the profile editor workflow: load the current
// user's profile row (or start a blank one), then save the draft with an
// optional avatar replacement.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
	"github.com/dmitrijs2005/skilllink/internal/notify"
)

const (
	profilesTable = "profiles"
	avatarBucket  = "avatars"
)

// ErrSaveInFlight reports a save attempt while another one is outstanding
// for the same editor instance. The second attempt is rejected synchronously.
var ErrSaveInFlight = errors.New("a save is already in flight")

// timeNow is a test seam.
var timeNow = time.Now

// AvatarUpload carries the bytes of a newly selected avatar plus its file
// extension (with or without the leading dot).
type AvatarUpload struct {
	Data []byte
	Ext  string
}

// Editor is one profile editing workflow instance.
type Editor struct {
	client   *backend.Client
	notifier notify.Notifier
	log      logging.Logger

	saving atomic.Bool
}

func NewEditor(client *backend.Client, notifier notify.Notifier, log logging.Logger) *Editor {
	return &Editor{client: client, notifier: notifier, log: log}
}

// Load fetches the identity's profile row. An absent row is an expected
// state, not an error: a default draft seeded from the email local-part is
// returned instead. Any other failure is notified and returned.
func (e *Editor) Load(ctx context.Context, identity backend.Identity) (*Draft, error) {
	row, err := e.client.Rows.SelectByID(ctx, profilesTable, identity.ID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return defaultDraft(identity), nil
		}
		e.log.Error(ctx, "profile load failed", "user_id", identity.ID, "err", err.Error())
		e.notifier.Error("Failed to load profile")
		return nil, err
	}
	return draftFromRow(row), nil
}

// Save persists the draft for identity. If avatar is non-nil its bytes are
// uploaded first under a timestamped key; an upload failure aborts the save
// with no row mutation. The previous avatar blob, if any, is deleted
// best-effort after a successful upload. The row upsert carries the touched
// draft fields plus the blob reference and a fresh updated_at.
//
// Only one save may be in flight per editor instance; a concurrent call
// returns ErrSaveInFlight immediately.
func (e *Editor) Save(ctx context.Context, identity backend.Identity, draft *Draft, avatar *AvatarUpload) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInFlight
	}
	defer e.saving.Store(false)

	// Re-check the session immediately before mutating anything; the token
	// may have expired while the form was open.
	current, err := e.client.Auth.CurrentUser(ctx)
	if err != nil || current == nil || current.ID != identity.ID {
		e.notifier.Error("You are no longer signed in")
		return backend.ErrUnauthorized
	}

	if avatar != nil {
		key := blobKey(identity.ID, avatar.Ext)
		if err := e.client.Blobs.Upload(ctx, avatarBucket, key, avatar.Data); err != nil {
			e.log.Error(ctx, "avatar upload failed", "user_id", identity.ID, "err", err.Error())
			e.notifier.Error("Avatar upload failed")
			return err
		}

		if prev := draft.AvatarRef(); prev != "" {
			if err := e.client.Blobs.Delete(ctx, avatarBucket, prev); err != nil {
				// Best effort: an orphaned blob is accepted drift, not a
				// save failure.
				e.log.Warn(ctx, "could not delete previous avatar", "key", prev, "err", err.Error())
			}
		}
		draft.setAvatarRef(key)
	}

	row := draft.Changes()
	row["id"] = identity.ID
	row["updated_at"] = timeNow().UTC()

	if _, err := e.client.Rows.Upsert(ctx, profilesTable, row, "id"); err != nil {
		e.log.Error(ctx, "profile upsert failed", "user_id", identity.ID, "err", err.Error())
		e.notifier.Error("Profile update failed")
		return err
	}

	e.notifier.Success("Profile updated successfully!")
	return nil
}

// PreviewURL resolves the draft's avatar reference to a fetchable URL, or ""
// when no avatar is set.
func (e *Editor) PreviewURL(draft *Draft) string {
	if draft.AvatarRef() == "" {
		return ""
	}
	return e.client.Blobs.PublicURL(avatarBucket, draft.AvatarRef())
}

// blobKey derives a collision-avoiding storage key from the owner id and the
// current timestamp.
func blobKey(ownerID, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	key := fmt.Sprintf("%s-%d", ownerID, timeNow().UnixMilli())
	if ext != "" {
		key += "." + ext
	}
	return key
}
