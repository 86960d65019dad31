package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
)

const (
	defaultAuthURL    = "https://www.facebook.com/v18.0/dialog/oauth"
	defaultTokenURL   = "https://graph.facebook.com/v18.0/oauth/access_token"
	defaultProfileURL = "https://graph.facebook.com/me"
	defaultRevokeURL  = "https://graph.facebook.com/v18.0/me/permissions"
)

// Config holds Facebook OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	AuthURL    string
	TokenURL   string
	ProfileURL string
	RevokeURL  string

	HTTPClient *http.Client
}

// DefaultScopes returns the default Facebook scopes.
func DefaultScopes() []string {
	return []string{"pages_manage_posts", "pages_read_engagement"}
}

// Provider implements connect.PlatformProvider for Facebook.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Facebook provider.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = defaultProfileURL
	}
	if cfg.RevokeURL == "" {
		cfg.RevokeURL = defaultRevokeURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements connect.PlatformProvider.
func (p *Provider) Name() social.Platform {
	return social.PlatformFacebook
}

// AuthCodeURL implements connect.PlatformProvider. Facebook wants a
// comma separated scope list, unlike the other platforms.
func (p *Provider) AuthCodeURL(state string, opts ...connect.AuthCodeOption) string {
	cfg := connect.ApplyAuthCodeOptions(p.config.Scopes, opts...)
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"scope":         {strings.Join(scopes, ",")},
		"response_type": {"code"},
		"state":         {state},
	}

	if cfg.CodeChallenge != "" {
		method := cfg.CodeChallengeMethod
		if method == "" {
			method = "S256"
		}
		params.Set("code_challenge", cfg.CodeChallenge)
		params.Set("code_challenge_method", method)
	}

	return p.config.AuthURL + "?" + params.Encode()
}

// Exchange implements connect.PlatformProvider.
func (p *Provider) Exchange(ctx context.Context, code string, opts ...connect.ExchangeOption) (*connect.Token, error) {
	cfg := connect.ApplyExchangeOptions(opts...)

	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {p.config.CallbackURL},
	}
	if cfg.CodeVerifier != "" {
		data.Set("code_verifier", cfg.CodeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(body)
		return nil, providerError("exchange", resp.StatusCode, apiErr.code(), apiErr.message(), nil, apiErr.metadata())
	}

	var tokenResp facebookTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("exchange", resp.StatusCode, "invalid_response", "failed to decode token response", err, nil)
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("exchange", resp.StatusCode, "missing_access_token", "missing access token", nil, nil)
	}

	token := &connect.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}
	if tokenResp.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// Profile implements connect.PlatformProvider.
func (p *Provider) Profile(ctx context.Context, token *connect.Token) (*connect.PlatformProfile, error) {
	endpoint := p.config.ProfileURL + "?fields=id,name"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(body)
		return nil, providerError("profile", resp.StatusCode, apiErr.code(), apiErr.message(), nil, apiErr.metadata())
	}

	var user facebookUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, providerError("profile", resp.StatusCode, "invalid_response", "failed to decode profile response", err, nil)
	}
	if user.ID == "" {
		return nil, providerError("profile", resp.StatusCode, "missing_user_id", "profile response has no id", nil, nil)
	}

	return mapProfile(&user), nil
}

// Revoke implements connect.PlatformProvider. Revoking the app
// permissions invalidates every token issued for this user.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{
		"token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.RevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := parseAPIError(body)
		return providerError("revoke", resp.StatusCode, apiErr.code(), apiErr.message(), nil, apiErr.metadata())
	}

	return nil
}

// RefreshToken implements connect.PlatformProvider.
// Facebook user tokens are extended via the long-lived token exchange,
// not a refresh grant.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*connect.Token, error) {
	return nil, fmt.Errorf("facebook: token refresh not supported")
}

type facebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type facebookAPIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`

	raw string
}

func parseAPIError(body []byte) facebookAPIError {
	var apiErr facebookAPIError
	_ = json.Unmarshal(body, &apiErr)
	apiErr.raw = strings.TrimSpace(string(body))
	return apiErr
}

func (e facebookAPIError) code() string {
	return e.Error.Type
}

func (e facebookAPIError) message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}
	if e.raw != "" {
		return e.raw
	}
	return "facebook request failed"
}

func (e facebookAPIError) metadata() map[string]any {
	meta := map[string]any{}
	if e.Error.Message != "" {
		meta["message"] = e.Error.Message
	}
	if e.Error.Type != "" {
		meta["type"] = e.Error.Type
	}
	if e.Error.Code != 0 {
		meta["code"] = e.Error.Code
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *connect.ProviderError {
	return &connect.ProviderError{
		Platform:    social.PlatformFacebook,
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
