package instagram

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
	defaultAuthURL    = "https://api.instagram.com/oauth/authorize"
	defaultTokenURL   = "https://api.instagram.com/oauth/access_token"
	defaultProfileURL = "https://graph.instagram.com/me"
	defaultRevokeURL  = "https://graph.instagram.com/access_token/revoke"
)

// Config holds Instagram OAuth configuration.
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

// DefaultScopes returns the default Instagram scopes.
func DefaultScopes() []string {
	return []string{"basic", "create_content", "read_insights"}
}

// Provider implements connect.PlatformProvider for Instagram.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Instagram provider.
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
	return social.PlatformInstagram
}

// AuthCodeURL implements connect.PlatformProvider.
func (p *Provider) AuthCodeURL(state string, opts ...connect.AuthCodeOption) string {
	cfg := connect.ApplyAuthCodeOptions(p.config.Scopes, opts...)
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"scope":         {strings.Join(scopes, " ")},
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

	var tokenResp instagramTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("exchange", resp.StatusCode, "invalid_response", "failed to decode token response", err, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerError("exchange", resp.StatusCode, tokenResp.ErrorType, tokenResp.ErrorMessage, nil, tokenResp.errorMetadata())
	}
	if tokenResp.ErrorType != "" {
		return nil, providerError("exchange", resp.StatusCode, tokenResp.ErrorType, tokenResp.ErrorMessage, nil, tokenResp.errorMetadata())
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("exchange", resp.StatusCode, "missing_access_token", "missing access token", nil, nil)
	}

	token := &connect.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   "bearer",
		Raw: map[string]any{
			"user_id": tokenResp.UserID,
		},
	}
	if tokenResp.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// Profile implements connect.PlatformProvider.
func (p *Provider) Profile(ctx context.Context, token *connect.Token) (*connect.PlatformProfile, error) {
	endpoint := p.config.ProfileURL + "?fields=id,username"

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
		return nil, providerError("profile", resp.StatusCode, "", apiErrorMessage(body), nil, nil)
	}

	var user instagramUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, providerError("profile", resp.StatusCode, "invalid_response", "failed to decode profile response", err, nil)
	}
	if user.ID == "" {
		return nil, providerError("profile", resp.StatusCode, "missing_user_id", "profile response has no id", nil, nil)
	}

	return mapProfile(&user), nil
}

// Revoke implements connect.PlatformProvider.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.RevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return providerError("revoke", resp.StatusCode, "", apiErrorMessage(body), nil, nil)
	}

	return nil
}

// RefreshToken implements connect.PlatformProvider.
// Instagram basic display tokens have no refresh grant on this flow.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*connect.Token, error) {
	return nil, fmt.Errorf("instagram: token refresh not supported")
}

type instagramTokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      any    `json:"user_id"`
	ExpiresIn   int64  `json:"expires_in"`

	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	ErrorCode    int    `json:"code"`
}

func (r instagramTokenResponse) errorMetadata() map[string]any {
	meta := map[string]any{}
	if r.ErrorType != "" {
		meta["error_type"] = r.ErrorType
	}
	if r.ErrorMessage != "" {
		meta["error_message"] = r.ErrorMessage
	}
	if r.ErrorCode != 0 {
		meta["code"] = r.ErrorCode
	}
	return meta
}

type instagramAPIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func apiErrorMessage(body []byte) string {
	var apiErr instagramAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "instagram request failed"
	}

	return msg
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *connect.ProviderError {
	return &connect.ProviderError{
		Platform:    social.PlatformInstagram,
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
