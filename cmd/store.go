package cmd

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/user/deepfocus-cli/auth"
	"github.com/user/deepfocus-cli/config"
	"github.com/user/deepfocus-cli/db"
	"github.com/user/deepfocus-cli/progress"
)

// remoteUser stands in for the user when the API server identifies them by token.
const remoteUser = "remote"

// localUser owns the library when nobody is signed in.
const localUser = "local"

// openStore opens the configured watch-history store. The returned func releases it.
func openStore(ctx context.Context, sc config.StoreConfig) (progress.Store, func(), error) {
	switch sc.Driver {
	case config.StorePostgres:
		pool, err := db.ConnectPostgres(ctx, sc.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db.NewPostgresStore(pool), pool.Close, nil

	case config.StoreHTTP:
		if sc.HTTPToken == "" {
			return nil, nil, errors.New("store.http_token is required for the http driver (see `deepfocus serve token`)")
		}
		return progress.NewHTTPStore(sc.HTTPBaseURL, sc.HTTPToken), func() {}, nil

	default:
		database, err := db.Open(sc.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db.NewSQLiteStore(database), func() { database.Close() }, nil
	}
}

// loadSession returns the signed-in Google session, or an anonymous one when there are
// no stored credentials.
func loadSession(ctx context.Context) (*auth.Session, error) {
	creds, err := auth.LoadCredentials(cfg.Google.TokenPath)
	if errors.Is(err, auth.ErrNotSignedIn) {
		return auth.Anonymous(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	oc, err := auth.OAuthConfig(cfg.Google)
	if err != nil {
		logger.Warn().Err(err).Msg("stored credentials ignored")
		return auth.Anonymous(), nil
	}

	save := func(tok *oauth2.Token) error {
		refreshed := *creds
		refreshed.Token = tok
		return auth.SaveCredentials(cfg.Google.TokenPath, &refreshed)
	}
	return auth.NewSession(ctx, oc, creds, save), nil
}

// historyUser resolves whose history a command reads. Local stores need a signed-in user.
func historyUser(ctx context.Context) (string, error) {
	if cfg.Store.Driver == config.StoreHTTP {
		return remoteUser, nil
	}
	session, err := loadSession(ctx)
	if err != nil {
		return "", err
	}
	if !session.Authenticated() {
		return "", auth.ErrNotSignedIn
	}
	return session.UserID(), nil
}

// openLibrary opens the playlists, tags and watch-later store. It always lives in the
// local SQLite database, whatever store.driver says.
func openLibrary() (*db.LibraryStore, func(), error) {
	database, err := db.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db.NewLibraryStore(database), func() { database.Close() }, nil
}

// libraryUser returns the signed-in user, or localUser when nobody is signed in.
func libraryUser(session *auth.Session) string {
	if session.Authenticated() {
		return session.UserID()
	}
	return localUser
}
