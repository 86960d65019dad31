package connect

import "github.com/goliatone/go-errors"

const (
	TextCodePlatformNotFound   = "connect_platform_not_found"
	TextCodeMissingCredentials = "connect_missing_client_credentials"
	TextCodeInvalidState       = "connect_invalid_state"
	TextCodeStateExpired       = "connect_state_expired"
	TextCodeTokenExchangeFail  = "connect_token_exchange_failed"
	TextCodeProfileFetchFail   = "connect_profile_fetch_failed"
	TextCodeRevokeFail         = "connect_revoke_failed"
	TextCodeRefreshUnsupported = "connect_refresh_not_supported"
)

// ErrPlatformNotFound is returned for platform keys outside the registry.
// It indicates a caller bug or missing configuration, never a runtime
// condition to recover from.
var ErrPlatformNotFound = errors.New("platform not found", errors.CategoryNotFound).
	WithTextCode(TextCodePlatformNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingClientCredentials is returned when a platform is known but has
// no client ID or secret configured.
var ErrMissingClientCredentials = errors.New("missing client credentials for platform", errors.CategoryOperation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(errors.CodeInternal)

// ErrInvalidState is returned when the OAuth state is invalid or tampered.
var ErrInvalidState = errors.New("invalid oauth state", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrStateExpired is returned when the OAuth state has expired.
var ErrStateExpired = errors.New("oauth state expired", errors.CategoryBadInput).
	WithTextCode(TextCodeStateExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenExchangeFailed is returned when a provider token exchange fails.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrProfileFetchFailed is returned when fetching the remote profile fails.
var ErrProfileFetchFailed = errors.New("failed to fetch platform profile", errors.CategoryAuth).
	WithTextCode(TextCodeProfileFetchFail).
	WithCode(errors.CodeUnauthorized)

// ErrRevokeFailed is returned when the platform rejects a revocation.
var ErrRevokeFailed = errors.New("token revocation failed", errors.CategoryOperation).
	WithTextCode(TextCodeRevokeFail).
	WithCode(errors.CodeInternal)

// ErrRefreshNotSupported is returned by platforms without a refresh grant.
var ErrRefreshNotSupported = errors.New("token refresh not supported", errors.CategoryOperation).
	WithTextCode(TextCodeRefreshUnsupported).
	WithCode(errors.CodeBadRequest)
