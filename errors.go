package social

import "github.com/goliatone/go-errors"

const (
	TextCodeNotAuthenticated = "social_not_authenticated"
	TextCodePlatformUnknown  = "social_platform_unknown"
	TextCodeCredentialAbsent = "social_credential_absent"
	TextCodePostNotFound     = "social_post_not_found"
)

// ErrNotAuthenticated is the first precondition of every operation that
// acts on behalf of a user.
var ErrNotAuthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownPlatform is returned for platform keys outside the registry.
var ErrUnknownPlatform = errors.New("unknown platform", errors.CategoryNotFound).
	WithTextCode(TextCodePlatformUnknown).
	WithCode(errors.CodeNotFound)

// ErrCredentialNotFound is returned when an operation requires a stored
// credential and none exists for the (user, platform) pair.
var ErrCredentialNotFound = errors.New("platform credential not found", errors.CategoryNotFound).
	WithTextCode(TextCodeCredentialAbsent).
	WithCode(errors.CodeNotFound)

// ErrPostNotFound is returned when a scheduled post does not exist or is
// not owned by the caller.
var ErrPostNotFound = errors.New("scheduled post not found", errors.CategoryNotFound).
	WithTextCode(TextCodePostNotFound).
	WithCode(errors.CodeNotFound)
