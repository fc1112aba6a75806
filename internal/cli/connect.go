package cli

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"tiger-client/internal/gateway"
	"tiger-client/internal/journal"
	"tiger-client/internal/remote"
	"tiger-client/internal/session"
	"tiger-client/internal/store"
	"tiger-client/internal/texture"
)

// conn is one live replica: the engine connection, the tree it feeds, and the
// journal recording it.
type conn struct {
	client    *remote.Client
	st        *store.Store
	gw        *gateway.Gateway
	sessions  *session.Manager
	log       journal.Log
	rec       *journal.Recorder
	textures  *texture.Table
	templates *texture.Table
}

func (app *App) engineURL() string {
	if app.EngineURL != "" {
		return app.EngineURL
	}
	return app.cfg.Engine.URL
}

func (app *App) journalPath() string {
	if app.JournalPath != "" {
		return app.JournalPath
	}
	return app.cfg.Journal.Path
}

func (app *App) journalEnabled() bool {
	if app.NoJournal {
		return false
	}
	return app.JournalPath != "" || app.cfg.Journal.Enabled
}

// connect dials the engine and performs the initial full sync.
func (app *App) connect(ctx context.Context, dialogs gateway.Dialogs) (*conn, error) {
	c := &conn{st: store.New(), textures: texture.NewTable(), templates: texture.NewTable()}
	opts := gateway.Options{Dialogs: dialogs, Timeout: app.cfg.Engine.RequestTimeout}

	if app.journalEnabled() {
		l, err := journal.Open(ctx, app.journalPath())
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		c.log = l
		c.rec = journal.NewRecorder(l)
		c.st.OnViolation(c.rec.Violation)
		opts.Observer = c.rec.Observe
	}

	client, err := remote.Dial(ctx, app.engineURL(), remote.Options{
		DialTimeout: app.cfg.Engine.DialTimeout,
		OnEvent:     remote.TextureRouter(c.textures, c.templates),
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.client = client
	c.gw = gateway.New(client, c.st, opts)
	c.sessions = session.New(c.gw)

	if err := c.gw.Sync(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("sync with engine: %w", err)
	}
	if c.rec != nil {
		glog.V(1).Infof("cli: connected to %s, journal session %s", app.engineURL(), c.rec.Session())
	}
	return c, nil
}

func (c *conn) Close() {
	if c.sessions != nil {
		c.sessions.Close()
	}
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.log != nil {
		_ = c.log.Close()
	}
}
