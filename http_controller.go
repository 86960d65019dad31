package social

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the scheduling, analytics, and settings routes.
type HTTPController struct {
	Logger    Logger
	Repo      RepositoryManager
	Scheduler *SchedulePostHandler
	config    HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// SessionContextKey is the router locals key used by go-auth (default: "user")
	SessionContextKey string

	// UpcomingLimit caps the upcoming posts view (default: 5)
	UpcomingLimit int
}

// NewHTTPController creates the controller. The scheduler is built from
// the same repository manager.
func NewHTTPController(repo RepositoryManager, cfg HTTPConfig, logger Logger) *HTTPController {
	if cfg.SessionContextKey == "" {
		cfg.SessionContextKey = "user"
	}
	if cfg.UpcomingLimit == 0 {
		cfg.UpcomingLimit = 5
	}
	if logger == nil {
		logger = DefaultLogger()
	}

	return &HTTPController{
		Logger:    logger,
		Repo:      repo,
		Scheduler: NewSchedulePostHandler(repo),
		config:    cfg,
	}
}

// RegisterRoutes registers the API routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/posts/upcoming", c.ListUpcomingPosts)
	group.Get("/posts", c.ListPosts)
	group.Post("/posts", c.SchedulePost)
	group.Delete("/posts/:id", c.DeletePost)
	group.Get("/analytics/summary", c.AnalyticsSummary)
	group.Get("/analytics", c.ListAnalytics)
	group.Get("/settings", c.GetSettings)
	group.Put("/settings", c.UpdateSettings)
}

// ListPosts returns every scheduled post for the current user.
func (c *HTTPController) ListPosts(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	posts, err := c.Repo.Posts().ListByUser(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"posts": posts,
	})
}

// ListUpcomingPosts returns the next pending posts, soonest first.
func (c *HTTPController) ListUpcomingPosts(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	limit := c.config.UpcomingLimit
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	posts, err := c.Repo.Posts().ListUpcoming(ctx.Context(), userID, limit)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"posts": posts,
	})
}

// SchedulePost validates and stores a new post for future delivery.
func (c *HTTPController) SchedulePost(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	payload := new(SchedulePostMessage)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	payload.UserID = userID

	post, err := c.Scheduler.Schedule(ctx.Context(), *payload)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, post)
}

// DeletePost removes one of the current user's scheduled posts.
func (c *HTTPController) DeletePost(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	postID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid post id",
		})
	}

	if err := c.Repo.Posts().DeleteOwned(ctx.Context(), userID, postID); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// ListAnalytics returns the raw engagement rows, newest first.
func (c *HTTPController) ListAnalytics(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	records, err := c.Repo.Analytics().ListByUser(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"analytics": records,
	})
}

// AnalyticsSummary returns aggregate engagement for the dashboard.
func (c *HTTPController) AnalyticsSummary(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	summary, err := c.Repo.Analytics().Summary(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, summary)
}

// GetSettings returns the current user's settings document, materialized
// with defaults when nothing was saved yet.
func (c *HTTPController) GetSettings(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	settings, err := c.Repo.Settings().Load(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, settings)
}

// UpdateSettingsRequest carries the user editable settings fields. The
// accounts projection is owned by the connect flow and cannot be edited
// here.
type UpdateSettingsRequest struct {
	Timezone      string        `json:"timezone" form:"timezone"`
	Notifications Notifications `json:"notifications" form:"notifications"`
}

// Validate will run validation rules
func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Timezone, validation.Required, validation.By(validateTimezone)),
	)
}

func validateTimezone(value any) error {
	name, ok := value.(string)
	if !ok {
		return goerrors.New("must be a string", goerrors.CategoryValidation)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return goerrors.New("unknown timezone", goerrors.CategoryValidation)
	}
	return nil
}

// UpdateSettings saves timezone and notification preferences.
func (c *HTTPController) UpdateSettings(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return c.unauthorized(ctx)
	}

	payload := new(UpdateSettingsRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	settings, err := c.Repo.Settings().Load(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	settings.Timezone = payload.Timezone
	settings.Notifications = payload.Notifications

	if err := c.Repo.Settings().Save(ctx.Context(), settings); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, settings)
}

func (c *HTTPController) getUserIDFromSession(ctx router.Context) uuid.UUID {
	session, err := auth.GetRouterSession(ctx, c.config.SessionContextKey)
	if err != nil {
		return uuid.Nil
	}

	userID, err := uuid.Parse(session.GetUserID())
	if err != nil {
		return uuid.Nil
	}

	return userID
}

func (c *HTTPController) unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": "authentication required",
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	c.Logger.Error(
		"request failed: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	status := router.StatusInternalServerError
	switch richErr.Category {
	case goerrors.CategoryNotFound:
		status = router.StatusNotFound
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		status = router.StatusBadRequest
	case goerrors.CategoryAuth:
		status = router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		status = router.StatusForbidden
	case goerrors.CategoryConflict:
		status = router.StatusConflict
	}

	return ctx.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
