package social

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Posts manages scheduled post persistence. Create/Upsert come from the
// generic repository; the list methods cover the dashboard and schedule
// views.
type Posts interface {
	repository.Repository[*ScheduledPost]

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ScheduledPost, error)
	ListUpcoming(ctx context.Context, userID uuid.UUID, limit int) ([]*ScheduledPost, error)
	DeleteOwned(ctx context.Context, userID, postID uuid.UUID) error
}

type posts struct {
	repository.Repository[*ScheduledPost]
	db *bun.DB
}

var (
	_ Posts                                 = (*posts)(nil)
	_ repository.Repository[*ScheduledPost] = (*posts)(nil)
)

// NewPostsRepository creates the scheduled posts repository.
func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*ScheduledPost](db, repository.ModelHandlers[*ScheduledPost]{
		NewRecord: func() *ScheduledPost { return &ScheduledPost{} },
		GetID: func(p *ScheduledPost) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *ScheduledPost, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (r *posts) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ScheduledPost, error) {
	var models []*ScheduledPost
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("scheduled_at ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*ScheduledPost{}, nil
		}
		return nil, err
	}
	return models, nil
}

// ListUpcoming returns the next pending posts, soonest first.
func (r *posts) ListUpcoming(ctx context.Context, userID uuid.UUID, limit int) ([]*ScheduledPost, error) {
	if limit <= 0 {
		limit = 5
	}

	var models []*ScheduledPost
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Where("status = ?", PostStatusPending).
		Where("scheduled_at >= ?", time.Now()).
		Order("scheduled_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*ScheduledPost{}, nil
		}
		return nil, err
	}
	return models, nil
}

// DeleteOwned soft deletes a post, scoped to its owner so one user cannot
// delete another's posts by guessing IDs.
func (r *posts) DeleteOwned(ctx context.Context, userID, postID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*ScheduledPost)(nil)).
		Where("id = ? AND user_id = ?", postID, userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrPostNotFound
	}
	return nil
}
