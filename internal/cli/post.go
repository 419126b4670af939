package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/skilllink/internal/posts"
)

// NewPost creates a new skill post. Unauthenticated users get a sign-in
// prompt instead of the form; this is a capability gate at the presentation
// boundary, not a security boundary — the workflow re-checks the session
// before persisting.
func (a *App) NewPost(ctx context.Context) error {
	cur := a.session.Current()
	if cur.Identity == nil {
		fmt.Fprintln(a.out, "Login to be able to make a post!")
		return nil
	}

	draft := posts.NewDraft()
	if err := a.fillPostDraft(draft); err != nil {
		return err
	}

	image, err := a.readPostImage()
	if err != nil {
		return err
	}

	return a.posts.Save(ctx, *cur.Identity, draft, image)
}

// EditPost loads an existing post by id and saves the edited draft.
func (a *App) EditPost(ctx context.Context) error {
	cur := a.session.Current()
	if cur.Identity == nil {
		fmt.Fprintln(a.out, "Login to edit your posts!")
		return nil
	}

	postID, err := GetSimpleText(a.reader, "Post id", a.out)
	if err != nil {
		return err
	}

	draft, err := a.posts.Load(ctx, postID)
	if err != nil {
		return err
	}

	if url := a.posts.PreviewURL(draft); url != "" {
		fmt.Fprintln(a.out, "Current image: "+url)
	}

	if err := a.fillPostDraft(draft); err != nil {
		return err
	}

	image, err := a.readPostImage()
	if err != nil {
		return err
	}

	return a.posts.Save(ctx, *cur.Identity, draft, image)
}

func (a *App) fillPostDraft(draft *posts.Draft) error {
	if v, ok, err := GetTextWithDefault(a.reader, "Title", draft.Title(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetTitle(v)
	}
	if v, ok, err := GetTextWithDefault(a.reader, "Description", draft.Description(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetDescription(v)
	}

	label := "Category (" + strings.Join(posts.Categories, ", ") + ")"
	if v, ok, err := GetTextWithDefault(a.reader, label, draft.Category(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetCategory(v)
	}
	return nil
}

func (a *App) readPostImage() (*posts.ImageUpload, error) {
	path, err := GetSimpleText(a.reader, "Image file path (empty to keep current)", a.out)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(a.out, "Could not read file: "+err.Error())
		return nil, err
	}
	return &posts.ImageUpload{Data: data, Ext: filepath.Ext(path)}, nil
}
