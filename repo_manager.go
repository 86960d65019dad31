package social

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

type mngr struct {
	db          *bun.DB
	credentials CredentialStore
	settings    SettingsStore
	posts       Posts
	analytics   Analytics
}

// NewRepositoryManager wires every repository over one bun handle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		credentials: NewCredentialsRepository(db),
		settings:    NewSettingsRepository(db),
		posts:       NewPostsRepository(db),
		analytics:   NewAnalyticsRepository(db),
	}
}

func (m *mngr) Validate() error {
	if m.credentials == nil {
		return errors.New("repository credentials should be initialized")
	}

	if m.settings == nil {
		return errors.New("repository settings should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	if m.analytics == nil {
		return errors.New("repository analytics should be initialized")
	}

	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *mngr) Credentials() CredentialStore {
	return m.credentials
}

func (m *mngr) Settings() SettingsStore {
	return m.settings
}

func (m *mngr) Posts() Posts {
	return m.posts
}

func (m *mngr) Analytics() Analytics {
	return m.analytics
}
