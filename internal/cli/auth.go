package cli

import (
	"context"
	"fmt"
)

// Register prompts for credentials and creates a new account. A successful
// registration does not sign the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	_, err = a.session.Register(ctx, email, password)
	return err
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	_, err = a.session.Login(ctx, email, password)
	return err
}

// Logout ends the current session.
func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// WhoAmI prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	cur := a.session.Current()
	if cur.Identity == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", cur.Identity.Email, cur.Identity.ID)
	return nil
}
