package social

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type analytics struct {
	db *bun.DB
}

var _ Analytics = (*analytics)(nil)

// NewAnalyticsRepository creates the read only analytics repository.
func NewAnalyticsRepository(db *bun.DB) Analytics {
	return &analytics{db: db}
}

func (r *analytics) ListByUser(ctx context.Context, userID uuid.UUID) ([]*PostAnalytics, error) {
	var models []*PostAnalytics
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*PostAnalytics{}, nil
		}
		return nil, err
	}
	return models, nil
}

// Summary reduces the user's analytics rows to the dashboard figures:
// total reach, total engagement, average likes, per platform totals.
func (r *analytics) Summary(ctx context.Context, userID uuid.UUID) (*AnalyticsSummary, error) {
	rows, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		Platforms: map[Platform]PlatformEngagement{},
	}

	totalLikes := 0
	for _, row := range rows {
		summary.TotalReach += row.Reach
		summary.TotalEngagement += row.Engagement()
		totalLikes += row.Likes

		entry := summary.Platforms[row.Platform]
		entry.Likes += row.Likes
		entry.Shares += row.Shares
		entry.Comments += row.Comments
		entry.Reach += row.Reach
		entry.Posts++
		summary.Platforms[row.Platform] = entry
	}

	if len(rows) > 0 {
		summary.AverageLikes = totalLikes / len(rows)
	}

	return summary, nil
}
