package social

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type settings struct {
	db *bun.DB
}

var _ SettingsStore = (*settings)(nil)

// NewSettingsRepository creates the bun backed settings projection store.
func NewSettingsRepository(db *bun.DB) SettingsStore {
	return &settings{db: db}
}

// Load returns the stored settings document, or the default document when
// the user has none yet. The default is not persisted on read.
func (r *settings) Load(ctx context.Context, userID uuid.UUID) (*UserSettings, error) {
	return r.LoadTx(ctx, r.db, userID)
}

func (r *settings) LoadTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*UserSettings, error) {
	doc := &UserSettings{}
	err := tx.NewSelect().
		Model(doc).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultSettings(userID, ""), nil
		}
		return nil, err
	}
	return doc, nil
}

// Save writes the whole document. Callers are expected to have loaded it
// first and merged their change so unrelated fields survive.
func (r *settings) Save(ctx context.Context, doc *UserSettings) error {
	return r.SaveTx(ctx, r.db, doc)
}

func (r *settings) SaveTx(ctx context.Context, tx bun.IDB, doc *UserSettings) error {
	now := time.Now()
	doc.UpdatedAt = &now

	_, err := tx.NewInsert().
		Model(doc).
		On("CONFLICT (user_id) DO UPDATE").
		Set("timezone = EXCLUDED.timezone").
		Set("accounts = EXCLUDED.accounts").
		Set("notifications = EXCLUDED.notifications").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}
