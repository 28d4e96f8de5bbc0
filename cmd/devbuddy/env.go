package main

import (
	"context"
	"errors"
	"fmt"

	dbfs "github.com/garnizeh/devbuddy/db"
	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/config"
	"github.com/garnizeh/devbuddy/internal/db"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/repository/sqlite"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
)

// env is what every command runs against: the stored credential, the API
// client and the session resolved from them.
type env struct {
	cfg     *config.Config
	db      *db.DB
	client  *marketplace.Client
	session *session.Session
	catalog *catalog.Catalog
	notices *notify.Center
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	marketplace.SetLogger(logger)

	d, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		return nil, err
	}
	store := sqlite.New(d, logger)

	client, err := marketplace.NewDefaultClient(cfg.API, store)
	if err != nil {
		d.Close()
		return nil, err
	}
	sess := session.New(client, store, session.Options{Leeway: cfg.TokenLeeway, Logger: logger})
	client.OnUnauthorized(sess.Invalidate)

	e := &env{
		cfg:     cfg,
		db:      d,
		client:  client,
		session: sess,
		catalog: catalog.New(client, store, cfg.SkillCacheTTL, logger),
		notices: notify.NewCenter(0),
	}
	// failures surface as notices on stderr
	e.notices.Subscribe(func(n notify.Notification) {
		if n.Level == notify.LevelError {
			logger.Error(n.Title, "message", n.Message)
		}
	})
	return e, nil
}

func (e *env) Close() {
	_ = e.client.Close()
	_ = e.db.Close()
}

// signedIn resolves the stored credential and returns the user.
func (e *env) signedIn(ctx context.Context) (*models.User, error) {
	if err := e.session.Bootstrap(ctx); err != nil {
		return nil, err
	}
	u := e.session.User()
	if u == nil {
		return nil, errors.New("not signed in; run devbuddy login")
	}
	return u, nil
}

// withEnv opens the environment for the duration of fn.
func withEnv(ctx context.Context, fn func(e *env) error) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}
