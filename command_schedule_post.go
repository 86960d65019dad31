package social

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxPostContentLength matches the most restrictive platform caption limit.
const MaxPostContentLength = 2200

// SchedulePostMessage asks for a post to be stored for future delivery.
type SchedulePostMessage struct {
	UserID      uuid.UUID  `json:"user_id"`
	Content     string     `json:"content"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Platforms   []Platform `json:"platforms"`
	MediaURLs   []string   `json:"media_urls"`
}

func (e SchedulePostMessage) Type() string { return "post.schedule" }

// Validate checks the message before any persistence happens.
func (e SchedulePostMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Content, validation.Required, validation.Length(1, MaxPostContentLength)),
		validation.Field(&e.Platforms, validation.Required, validation.By(validateKnownPlatforms)),
		validation.Field(&e.ScheduledAt, validation.Required, validation.By(validateFutureTime)),
	)
}

func validateKnownPlatforms(value any) error {
	platforms, ok := value.([]Platform)
	if !ok {
		return fmt.Errorf("must be a list of platforms")
	}
	for _, platform := range platforms {
		if !IsKnownPlatform(platform) {
			return fmt.Errorf("unknown platform: %s", platform)
		}
	}
	return nil
}

func validateFutureTime(value any) error {
	at, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("must be a timestamp")
	}
	if !at.After(time.Now()) {
		return fmt.Errorf("must be in the future")
	}
	return nil
}

// SchedulePostHandler stores validated posts with a pending status.
type SchedulePostHandler struct {
	repo RepositoryManager
}

// NewSchedulePostHandler creates the handler.
func NewSchedulePostHandler(repo RepositoryManager) *SchedulePostHandler {
	return &SchedulePostHandler{repo: repo}
}

func (h *SchedulePostHandler) Execute(ctx context.Context, event SchedulePostMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled while scheduling post",
		)
	default:
		_, err := h.Schedule(ctx, event)
		return err
	}
}

// Schedule validates the message, confirms every target platform is
// connected, and inserts the post. Nothing is written on failure.
func (h *SchedulePostHandler) Schedule(ctx context.Context, event SchedulePostMessage) (*ScheduledPost, error) {
	if event.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	if err := event.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid scheduled post").
			WithCode(goerrors.CodeBadRequest)
	}

	post := &ScheduledPost{
		ID:          uuid.New(),
		UserID:      event.UserID,
		Content:     event.Content,
		ScheduledAt: event.ScheduledAt,
		Platforms:   event.Platforms,
		MediaURLs:   event.MediaURLs,
		Status:      PostStatusPending,
	}
	if post.MediaURLs == nil {
		post.MediaURLs = []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		settings, err := h.repo.Settings().LoadTx(ctx, tx, event.UserID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load account settings")
		}

		for _, platform := range event.Platforms {
			account := settings.Account(platform)
			if account == nil || !account.Connected {
				return goerrors.New(
					fmt.Sprintf("platform not connected: %s", platform),
					goerrors.CategoryValidation,
				).WithCode(goerrors.CodeBadRequest)
			}
		}

		if post, err = h.repo.Posts().CreateTx(ctx, tx, post); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create scheduled post")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "schedule post transaction failed")
	}

	return post, nil
}
