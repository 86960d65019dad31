package social

import (
	"context"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectPlatform(t *testing.T, repo RepositoryManager, userID uuid.UUID, platform Platform, username string) {
	t.Helper()

	settings, err := repo.Settings().Load(context.Background(), userID)
	require.NoError(t, err)
	settings.SetAccount(platform, username, true)
	require.NoError(t, repo.Settings().Save(context.Background(), settings))
}

func TestSchedulePostStoresPendingPost(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)
	userID := uuid.New()

	connectPlatform(t, repo, userID, PlatformInstagram, "alice")

	scheduledAt := time.Now().Add(24 * time.Hour)
	post, err := handler.Schedule(context.Background(), SchedulePostMessage{
		UserID:      userID,
		Content:     "launch day!",
		ScheduledAt: scheduledAt,
		Platforms:   []Platform{PlatformInstagram},
		MediaURLs:   []string{"https://cdn.example.com/launch.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.Equal(t, PostStatusPending, post.Status)
	assert.Equal(t, userID, post.UserID)

	stored, err := repo.Posts().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "launch day!", stored[0].Content)
}

func TestSchedulePostRejectsDisconnectedPlatform(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)
	userID := uuid.New()

	connectPlatform(t, repo, userID, PlatformInstagram, "alice")

	_, err := handler.Schedule(context.Background(), SchedulePostMessage{
		UserID:      userID,
		Content:     "cross post",
		ScheduledAt: time.Now().Add(time.Hour),
		Platforms:   []Platform{PlatformInstagram, PlatformTwitter},
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	assert.Contains(t, richErr.Message, "twitter")

	stored, err := repo.Posts().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSchedulePostRejectsPastTime(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)
	userID := uuid.New()

	connectPlatform(t, repo, userID, PlatformInstagram, "alice")

	_, err := handler.Schedule(context.Background(), SchedulePostMessage{
		UserID:      userID,
		Content:     "too late",
		ScheduledAt: time.Now().Add(-time.Hour),
		Platforms:   []Platform{PlatformInstagram},
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
}

func TestSchedulePostRejectsOverlongContent(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)
	userID := uuid.New()

	_, err := handler.Schedule(context.Background(), SchedulePostMessage{
		UserID:      userID,
		Content:     strings.Repeat("a", MaxPostContentLength+1),
		ScheduledAt: time.Now().Add(time.Hour),
		Platforms:   []Platform{PlatformInstagram},
	})
	require.Error(t, err)
}

func TestSchedulePostRejectsUnknownPlatform(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)

	_, err := handler.Schedule(context.Background(), SchedulePostMessage{
		UserID:      uuid.New(),
		Content:     "hello",
		ScheduledAt: time.Now().Add(time.Hour),
		Platforms:   []Platform{"myspace"},
	})
	require.Error(t, err)
}

func TestSchedulePostRequiresUser(t *testing.T) {
	repo := setupTestRepo(t)
	handler := NewSchedulePostHandler(repo)

	_, err := handler.Schedule(context.Background(), SchedulePostMessage{
		Content:     "anonymous",
		ScheduledAt: time.Now().Add(time.Hour),
		Platforms:   []Platform{PlatformInstagram},
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSchedulePostMessageType(t *testing.T) {
	assert.Equal(t, "post.schedule", SchedulePostMessage{}.Type())
}
