// Package posts implements the skill-post editor workflow. It mirrors the
// profile editor but is keyed by the post's own id and supports both create
// and edit modes.
package posts

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
	postsTable  = "skill_posts"
	imageBucket = "skill-images"
)

// ErrSaveInFlight reports a save attempt while another one is outstanding
// for the same editor instance.
var ErrSaveInFlight = errors.New("a save is already in flight")

// timeNow is a test seam.
var timeNow = time.Now

// ImageUpload carries the bytes of a newly selected post image plus its file
// extension.
type ImageUpload struct {
	Data []byte
	Ext  string
}

// Editor is one skill-post editing workflow instance.
type Editor struct {
	client   *backend.Client
	notifier notify.Notifier
	log      logging.Logger

	saving atomic.Bool
}

func NewEditor(client *backend.Client, notifier notify.Notifier, log logging.Logger) *Editor {
	return &Editor{client: client, notifier: notifier, log: log}
}

// Load fetches an existing post for edit mode. Unlike profiles, an absent
// post is a failure: there is nothing sensible to edit.
func (e *Editor) Load(ctx context.Context, postID string) (*Draft, error) {
	row, err := e.client.Rows.SelectByID(ctx, postsTable, postID)
	if err != nil {
		e.log.Error(ctx, "post load failed", "post_id", postID, "err", err.Error())
		e.notifier.Error("Failed to load post")
		return nil, err
	}
	return draftFromRow(row), nil
}

// Save persists the draft for identity. A draft without an id is a
// create-mode save: the id column is omitted so the backend assigns one, and
// on success the draft is reset to empty. A draft with an id updates the
// existing row in place, preserving the id.
//
// Image handling matches the profile workflow: upload first under a
// timestamped key, abort the save on upload failure, best-effort delete of
// the previous blob, then upsert.
func (e *Editor) Save(ctx context.Context, identity backend.Identity, draft *Draft, image *ImageUpload) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInFlight
	}
	defer e.saving.Store(false)

	creating := draft.ID() == ""

	if strings.TrimSpace(draft.Title()) == "" {
		e.notifier.Error("A post needs a title")
		return errors.New("empty title")
	}
	if !validCategory(draft.Category()) {
		e.notifier.Error("Pick a category: " + strings.Join(Categories, ", "))
		return fmt.Errorf("unknown category %q", draft.Category())
	}

	// Re-check the session immediately before mutating anything.
	current, err := e.client.Auth.CurrentUser(ctx)
	if err != nil || current == nil || current.ID != identity.ID {
		e.notifier.Error("You are no longer signed in")
		return backend.ErrUnauthorized
	}

	if image != nil {
		key := blobKey(identity.ID, image.Ext)
		if err := e.client.Blobs.Upload(ctx, imageBucket, key, image.Data); err != nil {
			e.log.Error(ctx, "post image upload failed", "user_id", identity.ID, "err", err.Error())
			e.notifier.Error("Image upload failed")
			return err
		}

		if prev := draft.ImageRef(); prev != "" {
			if err := e.client.Blobs.Delete(ctx, imageBucket, prev); err != nil {
				e.log.Warn(ctx, "could not delete previous image", "key", prev, "err", err.Error())
			}
		}
		draft.setImageRef(key)
	}

	row := draft.Changes()
	row["user_id"] = identity.ID
	row["created_at"] = timeNow().UTC()
	if !creating {
		row["id"] = draft.ID()
	}

	stored, err := e.client.Rows.Upsert(ctx, postsTable, row, "id")
	if err != nil {
		e.log.Error(ctx, "post upsert failed", "user_id", identity.ID, "err", err.Error())
		if creating {
			e.notifier.Error("Post creation failed")
		} else {
			e.notifier.Error("Post update failed")
		}
		return err
	}

	if creating {
		e.log.Info(ctx, "post created", "post_id", rowString(stored, "id"), "user_id", identity.ID)
		e.notifier.Success("Post created successfully!")
		draft.reset()
		return nil
	}

	e.notifier.Success("Post updated successfully!")
	return nil
}

// PreviewURL resolves the draft's image reference to a fetchable URL, or ""
// when no image is set.
func (e *Editor) PreviewURL(draft *Draft) string {
	if draft.ImageRef() == "" {
		return ""
	}
	return e.client.Blobs.PublicURL(imageBucket, draft.ImageRef())
}

func blobKey(ownerID, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	key := fmt.Sprintf("%s-%d", ownerID, timeNow().UnixMilli())
	if ext != "" {
		key += "." + ext
	}
	return key
}
