package social

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore persists one credential per (user, platform) pair.
// Get returns nil without error when no credential exists.
type CredentialStore interface {
	Get(ctx context.Context, userID uuid.UUID, platform Platform) (*PlatformCredential, error)
	GetTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, platform Platform) (*PlatformCredential, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PlatformCredential, error)
	Upsert(ctx context.Context, credential *PlatformCredential) error
	UpsertTx(ctx context.Context, tx bun.IDB, credential *PlatformCredential) error
	Remove(ctx context.Context, userID uuid.UUID, platform Platform) error
	RemoveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, platform Platform) error
}

// SettingsStore is the read/write surface of the per user settings
// projection. Load returns the default document when none exists yet.
type SettingsStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*UserSettings, error)
	LoadTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*UserSettings, error)
	Save(ctx context.Context, settings *UserSettings) error
	SaveTx(ctx context.Context, tx bun.IDB, settings *UserSettings) error
}

// Analytics is the read only surface over engagement documents written
// by the ingestion side, which is not part of this module.
type Analytics interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PostAnalytics, error)
	Summary(ctx context.Context, userID uuid.UUID) (*AnalyticsSummary, error)
}

type RepositoryManager interface {
	Credentials() CredentialStore
	Settings() SettingsStore
	Posts() Posts
	Analytics() Analytics

	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SOCIAL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SOCIAL "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SOCIAL "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// DefaultLogger is used by components when no logger is injected.
func DefaultLogger() Logger {
	return defLogger{}
}
