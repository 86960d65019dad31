package social

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type credentials struct {
	db *bun.DB
}

var _ CredentialStore = (*credentials)(nil)

// NewCredentialsRepository creates the bun backed credential store.
func NewCredentialsRepository(db *bun.DB) CredentialStore {
	return &credentials{db: db}
}

// CredentialID derives the stable row ID for a (user, platform) pair, so
// repeated connects update the same row instead of minting new identities.
func CredentialID(userID uuid.UUID, platform Platform) uuid.UUID {
	if id, err := hashid.NewUUID(userID.String() + ":" + platform); err == nil {
		return id
	}
	return uuid.New()
}

func (r *credentials) Get(ctx context.Context, userID uuid.UUID, platform Platform) (*PlatformCredential, error) {
	return r.GetTx(ctx, r.db, userID, platform)
}

func (r *credentials) GetTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, platform Platform) (*PlatformCredential, error) {
	credential := &PlatformCredential{}
	err := tx.NewSelect().
		Model(credential).
		Where("user_id = ? AND platform = ?", userID, platform).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return credential, nil
}

func (r *credentials) ListByUser(ctx context.Context, userID uuid.UUID) ([]*PlatformCredential, error) {
	var models []*PlatformCredential
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("platform ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*PlatformCredential{}, nil
		}
		return nil, err
	}
	return models, nil
}

func (r *credentials) Upsert(ctx context.Context, credential *PlatformCredential) error {
	return r.UpsertTx(ctx, r.db, credential)
}

func (r *credentials) UpsertTx(ctx context.Context, tx bun.IDB, credential *PlatformCredential) error {
	if credential.ID == uuid.Nil {
		credential.ID = CredentialID(credential.UserID, credential.Platform)
	}
	if credential.ProfileData == nil {
		credential.ProfileData = map[string]any{}
	}
	now := time.Now()
	credential.UpdatedAt = &now

	_, err := tx.NewInsert().
		Model(credential).
		On("CONFLICT (user_id, platform) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("platform_user_id = EXCLUDED.platform_user_id").
		Set("username = EXCLUDED.username").
		Set("profile_data = EXCLUDED.profile_data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

func (r *credentials) Remove(ctx context.Context, userID uuid.UUID, platform Platform) error {
	return r.RemoveTx(ctx, r.db, userID, platform)
}

// RemoveTx is idempotent: deleting an absent credential is not an error.
func (r *credentials) RemoveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, platform Platform) error {
	_, err := tx.NewDelete().
		Model((*PlatformCredential)(nil)).
		Where("user_id = ? AND platform = ?", userID, platform).
		Exec(ctx)
	return err
}
