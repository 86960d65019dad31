package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
)

const (
	defaultAuthURL    = "https://twitter.com/i/oauth2/authorize"
	defaultTokenURL   = "https://api.twitter.com/2/oauth2/token"
	defaultProfileURL = "https://api.twitter.com/2/users/me"
	defaultRevokeURL  = "https://api.twitter.com/2/oauth2/revoke"
)

// Config holds Twitter OAuth configuration.
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

// DefaultScopes returns the default Twitter scopes. offline.access is
// required for the refresh grant.
func DefaultScopes() []string {
	return []string{"tweet.read", "tweet.write", "users.read", "offline.access"}
}

// Provider implements connect.PlatformProvider for Twitter.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Twitter provider.
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
	return social.PlatformTwitter
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

	// Twitter requires PKCE on the authorization code grant.
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
		"client_id":    {p.config.ClientID},
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {p.config.CallbackURL},
	}
	if cfg.CodeVerifier != "" {
		data.Set("code_verifier", cfg.CodeVerifier)
	}

	return p.tokenRequest(ctx, "exchange", data)
}

// Profile implements connect.PlatformProvider.
func (p *Provider) Profile(ctx context.Context, token *connect.Token) (*connect.PlatformProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ProfileURL, nil)
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

	var envelope twitterUserResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, providerError("profile", resp.StatusCode, "invalid_response", "failed to decode profile response", err, nil)
	}
	if envelope.Data.ID == "" {
		return nil, providerError("profile", resp.StatusCode, "missing_user_id", "profile response has no id", nil, nil)
	}

	return mapProfile(&envelope.Data), nil
}

// Revoke implements connect.PlatformProvider.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{
		"client_id":       {p.config.ClientID},
		"token":           {accessToken},
		"token_type_hint": {"access_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.RevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if p.config.ClientSecret != "" {
		req.SetBasicAuth(p.config.ClientID, p.config.ClientSecret)
	}

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
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*connect.Token, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	return p.tokenRequest(ctx, "refresh", data)
}

func (p *Provider) tokenRequest(ctx context.Context, operation string, data url.Values) (*connect.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if p.config.ClientSecret != "" {
		req.SetBasicAuth(p.config.ClientID, p.config.ClientSecret)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tokenResp twitterTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError(operation, resp.StatusCode, "invalid_response", "failed to decode token response", err, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(operation, resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil, tokenResp.errorMetadata())
	}
	if tokenResp.Error != "" {
		return nil, providerError(operation, resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil, tokenResp.errorMetadata())
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError(operation, resp.StatusCode, "missing_access_token", "missing access token", nil, nil)
	}

	token := &connect.Token{
		AccessToken:  tokenResp.AccessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: tokenResp.RefreshToken,
		Scopes:       splitSpaceScopes(tokenResp.Scope),
	}
	if tokenResp.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}

type twitterTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`

	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

func (r twitterTokenResponse) errorMetadata() map[string]any {
	meta := map[string]any{}
	if r.Error != "" {
		meta["error"] = r.Error
	}
	if r.ErrorDesc != "" {
		meta["error_description"] = r.ErrorDesc
	}
	if r.Scope != "" {
		meta["scope"] = r.Scope
	}
	return meta
}

type twitterAPIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func apiErrorMessage(body []byte) string {
	var apiErr twitterAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Title != "" {
			return apiErr.Title
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "twitter request failed"
	}

	return msg
}

func splitSpaceScopes(scopes string) []string {
	if scopes == "" {
		return nil
	}

	parts := strings.Fields(scopes)
	out := make([]string, 0, len(parts))
	out = append(out, parts...)

	return out
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *connect.ProviderError {
	return &connect.ProviderError{
		Platform:    social.PlatformTwitter,
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
