// Package app wires the session and its collaborators from the loaded
// settings. Commands build one App, open the configured project and
// work against the session.
package app

import (
	"context"
	"time"

	"github.com/slateboard/slateboard-go/internal/api"
	"github.com/slateboard/slateboard-go/internal/conf"
	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/events"
	"github.com/slateboard/slateboard-go/internal/session"
	"github.com/slateboard/slateboard-go/internal/store"
)

// App bundles the wired collaborators for one run.
type App struct {
	Settings *conf.Settings
	Client   *api.Client
	Store    *store.Store
	Bus      *events.Bus
	Session  *session.Session
}

// New builds the API client, the persistent cache, the event bus and the
// session from settings.
func New(settings *conf.Settings) (*App, error) {
	if settings.Server.ProjectID == "" {
		return nil, errors.Newf("no project configured, set server.projectid or --project").
			Category(errors.CategoryConfiguration).
			Component("app").
			Build()
	}

	client, err := api.NewClient(api.Config{
		BaseURL:     settings.Server.BaseURL,
		AccessToken: settings.Server.AccessToken,
		Timeout:     time.Duration(settings.Server.TimeoutSec) * time.Second,
		RateLimitMS: settings.Server.RateLimitMS,
	})
	if err != nil {
		return nil, err
	}

	db, err := store.Open(settings.Cache.Path)
	if err != nil {
		client.Close()
		return nil, err
	}

	bus := events.NewBus(nil)
	sess := session.New(client, session.Config{Store: db, Bus: bus})

	return &App{
		Settings: settings,
		Client:   client,
		Store:    db,
		Bus:      bus,
		Session:  sess,
	}, nil
}

// OpenProject opens the configured project in the session.
func (a *App) OpenProject(ctx context.Context) error {
	return a.Session.Open(ctx, a.Settings.Server.ProjectID)
}

// Close releases all resources.
func (a *App) Close() {
	_ = a.Bus.Shutdown(2 * time.Second)
	if err := a.Store.Close(); err != nil {
		// Nothing actionable at shutdown
		_ = err
	}
	a.Client.Close()
}
