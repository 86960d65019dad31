package connect

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	social "github.com/goliatone/go-social"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Connector orchestrates the platform connection lifecycle: initiate,
// callback, disconnect, and refresh. Credential writes and the settings
// projection flip always happen in the same transaction.
type Connector struct {
	registry     *Registry
	repo         social.RepositoryManager
	stateManager StateManager
	logger       social.Logger
	config       Config
}

// Config configures the connector.
type Config struct {
	// DefaultRedirectURL is where the SPA lands after a connect when the
	// initiate call did not ask for a specific destination.
	DefaultRedirectURL string

	// StateEncryptionKey and StateHMACKey protect the state parameter.
	StateEncryptionKey []byte
	StateHMACKey       []byte

	// StateTTL bounds how long an authorize redirect stays usable.
	StateTTL time.Duration

	// RefreshWindow is how close to expiry a credential must be before
	// RefreshIfExpiring acts. Default 5 minutes.
	RefreshWindow time.Duration
}

// Option configures the connector.
type Option func(*Connector)

// WithStateManager sets a custom state manager.
func WithStateManager(sm StateManager) Option {
	return func(c *Connector) {
		c.stateManager = sm
	}
}

// WithLogger sets the logger.
func WithLogger(l social.Logger) Option {
	return func(c *Connector) {
		c.logger = l
	}
}

// New creates a connector.
func New(registry *Registry, repo social.RepositoryManager, config Config, opts ...Option) *Connector {
	cfg := config
	if cfg.StateTTL == 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.RefreshWindow == 0 {
		cfg.RefreshWindow = 5 * time.Minute
	}

	c := &Connector{
		registry: registry,
		repo:     repo,
		config:   cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.logger == nil {
		c.logger = social.DefaultLogger()
	}

	if c.stateManager == nil {
		c.stateManager = NewEncryptedStateManager(
			cfg.StateEncryptionKey,
			cfg.StateHMACKey,
			cfg.StateTTL,
		)
	}

	return c
}

// ConnectRedirect contains the authorize URL for redirecting the browser.
type ConnectRedirect struct {
	URL      string
	State    string
	Platform social.Platform
}

// ConnectResult is the outcome of a completed callback.
type ConnectResult struct {
	Credential  *social.PlatformCredential
	Profile     *PlatformProfile
	RedirectURL string
}

// DisconnectResult reports the disconnect outcome. Revoked is false when
// the platform rejected (or never received) the revocation; the local
// credential is removed regardless.
type DisconnectResult struct {
	Revoked bool
}

// BeginOption configures connect initiation.
type BeginOption func(*beginConfig)

type beginConfig struct {
	redirectURL string
}

// WithRedirectURL sets the post-connect SPA destination.
func WithRedirectURL(url string) BeginOption {
	return func(c *beginConfig) {
		c.redirectURL = url
	}
}

// Begin starts the connect flow: it verifies the platform is configured,
// encodes a fresh single-use state, and returns the authorize URL the
// browser must navigate to. Control resumes in Complete when the
// provider redirects back.
func (c *Connector) Begin(
	ctx context.Context,
	userID uuid.UUID,
	platform social.Platform,
	opts ...BeginOption,
) (*ConnectRedirect, error) {
	if userID == uuid.Nil {
		return nil, social.ErrNotAuthenticated
	}

	provider, err := c.registry.Provider(platform)
	if err != nil {
		return nil, err
	}

	cfg := &beginConfig{redirectURL: c.config.DefaultRedirectURL}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := computeCodeChallenge(codeVerifier)

	state := &ConnectState{
		Nonce:        generateNonce(),
		Platform:     platform,
		UserID:       userID.String(),
		CodeVerifier: codeVerifier,
		RedirectURL:  cfg.redirectURL,
		IssuedAt:     time.Now().Unix(),
		ExpiresAt:    time.Now().Add(c.config.StateTTL).Unix(),
	}

	stateToken, err := c.stateManager.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	authURL := provider.AuthCodeURL(stateToken, WithPKCE(codeChallenge, "S256"))

	return &ConnectRedirect{
		URL:      authURL,
		State:    stateToken,
		Platform: platform,
	}, nil
}

// Complete finishes the connect flow after the provider callback. On any
// failure nothing is persisted; on success the credential and the
// settings projection are committed in one transaction.
func (c *Connector) Complete(
	ctx context.Context,
	userID uuid.UUID,
	platform social.Platform,
	code string,
	stateToken string,
) (*ConnectResult, error) {
	if userID == uuid.Nil {
		return nil, social.ErrNotAuthenticated
	}

	state, err := c.stateManager.Decode(stateToken)
	if err != nil {
		if errors.Is(err, ErrStateExpired) {
			return nil, ErrStateExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if state.Platform != platform {
		return nil, fmt.Errorf("%w: platform mismatch", ErrInvalidState)
	}

	if state.UserID != userID.String() {
		return nil, fmt.Errorf("%w: user mismatch", ErrInvalidState)
	}

	if time.Now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	provider, err := c.registry.Provider(platform)
	if err != nil {
		return nil, err
	}

	token, err := provider.Exchange(ctx, code, WithCodeVerifier(state.CodeVerifier))
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, platform, "exchange", err)
	}

	profile, err := provider.Profile(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrProfileFetchFailed, platform, "profile", err)
	}

	credential := &social.PlatformCredential{
		UserID:         userID,
		Platform:       platform,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		PlatformUserID: profile.PlatformUserID,
		Username:       profile.Username,
		ProfileData:    profile.Raw,
	}
	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		credential.ExpiresAt = &expiresAt
	}

	err = c.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := c.repo.Credentials().UpsertTx(ctx, tx, credential); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}

		settings, err := c.repo.Settings().LoadTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		settings.SetAccount(platform, profile.Username, true)

		if err := c.repo.Settings().SaveTx(ctx, tx, settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to commit platform connection")
	}

	c.logger.Info("platform %s connected for user %s", platform, userID)

	return &ConnectResult{
		Credential:  credential,
		Profile:     profile,
		RedirectURL: state.RedirectURL,
	}, nil
}

// Disconnect revokes the stored token (best effort, but classified) and
// removes the credential together with the settings projection flip.
func (c *Connector) Disconnect(
	ctx context.Context,
	userID uuid.UUID,
	platform social.Platform,
) (*DisconnectResult, error) {
	if userID == uuid.Nil {
		return nil, social.ErrNotAuthenticated
	}

	if _, err := c.registry.Descriptor(platform); err != nil {
		return nil, err
	}

	credential, err := c.repo.Credentials().Get(ctx, userID, platform)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read credential")
	}

	revoked := false
	if credential != nil {
		if provider, err := c.registry.Provider(platform); err == nil {
			if err := provider.Revoke(ctx, credential.AccessToken); err != nil {
				c.logger.Error("%s token revocation failed, removing credential anyway: %v", platform, err)
			} else {
				revoked = true
			}
		}
	}

	err = c.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := c.repo.Credentials().RemoveTx(ctx, tx, userID, platform); err != nil {
			return fmt.Errorf("failed to remove credential: %w", err)
		}

		settings, err := c.repo.Settings().LoadTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		settings.SetAccount(platform, "", false)

		if err := c.repo.Settings().SaveTx(ctx, tx, settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to commit platform disconnection")
	}

	c.logger.Info("platform %s disconnected for user %s, revoked=%t", platform, userID, revoked)

	return &DisconnectResult{Revoked: revoked}, nil
}

// RefreshIfExpiring refreshes the stored credential when it expires
// within the configured window and the platform supports refresh. It is
// meant to be called before any use of a stored credential.
func (c *Connector) RefreshIfExpiring(
	ctx context.Context,
	userID uuid.UUID,
	platform social.Platform,
) (*social.PlatformCredential, error) {
	if userID == uuid.Nil {
		return nil, social.ErrNotAuthenticated
	}

	credential, err := c.repo.Credentials().Get(ctx, userID, platform)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read credential")
	}
	if credential == nil {
		return nil, fmt.Errorf("%w: %s", social.ErrCredentialNotFound, platform)
	}

	if !credential.ExpiresWithin(c.config.RefreshWindow) {
		return credential, nil
	}

	if credential.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s has no refresh token", ErrRefreshNotSupported, platform)
	}

	provider, err := c.registry.Provider(platform)
	if err != nil {
		return nil, err
	}

	token, err := provider.RefreshToken(ctx, credential.RefreshToken)
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, platform, "refresh", err)
	}

	credential.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		credential.RefreshToken = token.RefreshToken
	}
	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		credential.ExpiresAt = &expiresAt
	}

	if err := c.repo.Credentials().Upsert(ctx, credential); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save refreshed credential")
	}

	c.logger.Debug("%s credential refreshed for user %s", platform, userID)

	return credential, nil
}
