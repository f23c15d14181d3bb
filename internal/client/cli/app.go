// Package cli implements the interactive Authgate client: a small REPL over
// the session, the guarded HTTP client, and the route guard.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/primesecret/authgate/internal/client/api"
	"github.com/primesecret/authgate/internal/client/config"
	"github.com/primesecret/authgate/internal/client/guard"
	"github.com/primesecret/authgate/internal/client/repositories/state"
	"github.com/primesecret/authgate/internal/client/session"
)

type App struct {
	config  *config.Config
	session *session.Session
	guarded *guard.Client
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	// An empty state path means the session lives in memory only.
	var store state.Repository = state.NewInMemoryRepository()
	if c.StatePath != "" {
		db, err := state.InitDatabase(ctx, c.StatePath)
		if err != nil {
			return nil, fmt.Errorf("error initializing state database: %w", err)
		}
		store = state.NewSQLiteRepository(db)
	}

	apiClient := api.NewClient(c.ServerURL, c.RequestTimeout)
	sess := session.NewSession(apiClient, store)

	if err := sess.Restore(ctx); err != nil {
		return nil, fmt.Errorf("error restoring session: %w", err)
	}

	app := &App{
		config:  c,
		session: sess,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	app.guarded = guard.NewClient(apiClient.HTTPClient(), sess, func() {
		fmt.Fprintln(app.out, "Session expired, please log in again.")
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	a.Main(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) showLogin() string {
	if email := a.session.Email(); email != "" {
		return email
	}
	return "anonymous"
}
