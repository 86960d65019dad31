package connect

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-auth"
	goerrors "github.com/goliatone/go-errors"
	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController handles the platform connection HTTP routes.
type HTTPController struct {
	connector *Connector
	config    HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// SessionContextKey is the router locals key used by go-auth (default: "user")
	SessionContextKey string

	// SuccessRedirect is the default SPA destination after a connect
	SuccessRedirect string

	// ErrorRedirect is the redirect for callback errors
	ErrorRedirect string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// NewHTTPController creates a new connection HTTP controller.
func NewHTTPController(connector *Connector, cfg HTTPConfig) *HTTPController {
	if cfg.SessionContextKey == "" {
		cfg.SessionContextKey = "user"
	}
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = "/settings"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/settings?error=connect_failed"
	}

	return &HTTPController{
		connector: connector,
		config:    cfg,
	}
}

// RegisterRoutes registers the connection routes. Static paths go first
// so "/platforms" never matches the ":platform" parameter.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/platforms", c.ListPlatforms)
	group.Get("/accounts", c.ListAccounts)
	group.Get("/:platform/callback", c.Callback)
	group.Post("/:platform/refresh", c.Refresh)
	group.Delete("/:platform", c.Disconnect)
	group.Get("/:platform", c.BeginConnect)
}

// ListPlatforms returns the supported platform descriptors plus the
// current user's connected flag for each.
func (c *HTTPController) ListPlatforms(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)

	connected := map[social.Platform]bool{}
	if userID != uuid.Nil {
		credentials, err := c.connector.repo.Credentials().ListByUser(ctx.Context(), userID)
		if err != nil {
			return c.handleError(ctx, err)
		}
		for _, cred := range credentials {
			connected[cred.Platform] = true
		}
	}

	descriptors := c.connector.registry.Descriptors()
	response := make([]map[string]any, 0, len(descriptors))
	for _, d := range descriptors {
		response = append(response, map[string]any{
			"id":           d.ID,
			"display_name": d.DisplayName,
			"color":        d.Color,
			"scopes":       d.Scopes,
			"configured":   d.Configured,
			"connected":    connected[d.ID],
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"platforms": response,
	})
}

// ListAccounts returns the current user's connected accounts. Tokens
// never leave the server.
func (c *HTTPController) ListAccounts(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	credentials, err := c.connector.repo.Credentials().ListByUser(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	response := make([]map[string]any, 0, len(credentials))
	for _, cred := range credentials {
		response = append(response, map[string]any{
			"id":               cred.ID,
			"platform":         cred.Platform,
			"platform_user_id": cred.PlatformUserID,
			"username":         cred.Username,
			"expires_at":       cred.ExpiresAt,
			"created_at":       cred.CreatedAt,
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"accounts": response,
	})
}

// BeginConnect starts the OAuth connect flow.
func (c *HTTPController) BeginConnect(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	platform := social.Platform(ctx.Param("platform"))

	redirectURL := ctx.Query("redirect_url")
	if redirectURL == "" {
		redirectURL = c.config.SuccessRedirect
	}

	redirect, err := c.connector.Begin(ctx.Context(), userID, platform, WithRedirectURL(redirectURL))
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.Redirect(redirect.URL, http.StatusTemporaryRedirect)
}

// Callback handles the OAuth provider callback.
func (c *HTTPController) Callback(ctx router.Context) error {
	platform := social.Platform(ctx.Param("platform"))
	code := ctx.Query("code")
	state := ctx.Query("state")

	if errCode := ctx.Query("error"); errCode != "" {
		errDesc := ctx.Query("error_description")
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "oauth_error", errCode)
		if errDesc != "" {
			redirectURL = appendQueryParam(redirectURL, "desc", errDesc)
		}
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	if code == "" || state == "" {
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", "missing_params")
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	result, err := c.connector.Complete(ctx.Context(), userID, platform, code, state)
	if err != nil {
		return c.handleError(ctx, err)
	}

	redirectURL := result.RedirectURL
	if redirectURL == "" {
		redirectURL = c.config.SuccessRedirect
	}
	redirectURL = appendQueryParam(redirectURL, "connected", string(platform))

	return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
}

// Disconnect removes a platform connection.
func (c *HTTPController) Disconnect(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	platform := social.Platform(ctx.Param("platform"))

	result, err := c.connector.Disconnect(ctx.Context(), userID, platform)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"status":  "disconnected",
		"revoked": result.Revoked,
	})
}

// Refresh refreshes the stored credential if it is close to expiry.
func (c *HTTPController) Refresh(ctx router.Context) error {
	userID := c.getUserIDFromSession(ctx)
	if userID == uuid.Nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	platform := social.Platform(ctx.Param("platform"))

	credential, err := c.connector.RefreshIfExpiring(ctx.Context(), userID, platform)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"platform":   credential.Platform,
		"username":   credential.Username,
		"expires_at": credential.ExpiresAt,
	})
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

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
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

	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": err.Error(),
	})
}

func appendQueryParam(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		query := parsed.Query()
		query.Set(key, value)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
