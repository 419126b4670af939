// Package cli is the presentation shell: a REPL whose available commands are
// gated on the session state. It owns no business logic; every action goes
// through the session store or one of the editor workflows.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/logging"
	"github.com/dmitrijs2005/skilllink/internal/notify"
	"github.com/dmitrijs2005/skilllink/internal/posts"
	"github.com/dmitrijs2005/skilllink/internal/profile"
	"github.com/dmitrijs2005/skilllink/internal/session"
)

type App struct {
	session  *session.Store
	profiles *profile.Editor
	posts    *posts.Editor
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, client *backend.Client, notifier notify.Notifier, log logging.Logger) *App {
	return &App{
		session:  session.New(ctx, client.Auth, notifier, log),
		profiles: profile.NewEditor(client, notifier, log),
		posts:    posts.NewEditor(client, notifier, log),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Run drives the REPL until EOF or an exit command, then releases the
// session's auth-state subscription.
func (a *App) Run(ctx context.Context) {
	defer a.session.Dispose()
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().Identity != nil
}

func (a *App) status() string {
	cur := a.session.Current()
	if cur.Loading {
		return "loading"
	}
	if cur.Identity == nil {
		return "signed out"
	}
	return cur.Identity.Email
}
