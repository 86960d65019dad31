// Package social is the backend core for a social media post scheduler.
//
// It connects user accounts to external platforms (Instagram, Twitter,
// Facebook) through the OAuth2 authorization code flow, persists the
// resulting credentials alongside a denormalized per-user settings
// projection, and stores scheduled posts and engagement analytics.
//
// The connect subpackage owns the OAuth lifecycle: building authorize
// redirects, completing callbacks, disconnecting accounts, and refreshing
// tokens that are close to expiry. Platform specific clients live under
// connect/providers and are registered on a connect.Registry.
//
// Persistence is bun based. Credentials and the settings projection are
// always written together inside one transaction so the projection never
// disagrees with the credential store.
package social
