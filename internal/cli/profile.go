package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/skilllink/internal/profile"
)

// EditProfile loads the current user's profile into a draft, prompts for
// each field (empty input keeps the current value), optionally reads a new
// avatar file, and saves.
func (a *App) EditProfile(ctx context.Context) error {
	cur := a.session.Current()
	if cur.Identity == nil {
		fmt.Fprintln(a.out, "Login to edit your profile!")
		return nil
	}
	identity := *cur.Identity

	draft, err := a.profiles.Load(ctx, identity)
	if err != nil {
		return err
	}

	if url := a.profiles.PreviewURL(draft); url != "" {
		fmt.Fprintln(a.out, "Current avatar: "+url)
	}

	if v, ok, err := GetTextWithDefault(a.reader, "Username", draft.Username(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetUsername(v)
	}
	if v, ok, err := GetTextWithDefault(a.reader, "Full name", draft.FullName(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetFullName(v)
	}
	if v, ok, err := GetTextWithDefault(a.reader, "Location", draft.Location(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetLocation(v)
	}
	if v, ok, err := GetTextWithDefault(a.reader, "Bio", draft.Bio(), a.out); err != nil {
		return err
	} else if ok {
		draft.SetBio(v)
	}

	avatar, err := a.readAvatar()
	if err != nil {
		return err
	}

	return a.profiles.Save(ctx, identity, draft, avatar)
}

// readAvatar prompts for a local image path; empty input means "keep the
// current avatar".
func (a *App) readAvatar() (*profile.AvatarUpload, error) {
	path, err := GetSimpleText(a.reader, "Avatar file path (empty to keep current)", a.out)
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
	return &profile.AvatarUpload{Data: data, Ext: filepath.Ext(path)}, nil
}
