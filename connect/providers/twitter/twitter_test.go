package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderAuthCodeURL(t *testing.T) {
	provider := New(Config{
		ClientID:    "client-id",
		CallbackURL: "https://example.com/callback",
	})

	authURL := provider.AuthCodeURL("state-token", connect.WithPKCE("challenge", "S256"))

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "challenge", query.Get("code_challenge"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))

	scope := query.Get("scope")
	assert.Contains(t, scope, "tweet.read")
	assert.Contains(t, scope, "tweet.write")
	assert.Contains(t, scope, "users.read")
	assert.Contains(t, scope, "offline.access")
}

func TestProviderExchangeAndProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/oauth2/token":
			assert.Equal(t, http.MethodPost, r.Method)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			values, err := url.ParseQuery(string(body))
			assert.NoError(t, err)
			assert.Equal(t, "authorization_code", values.Get("grant_type"))
			assert.Equal(t, "auth-code", values.Get("code"))
			assert.Equal(t, "verifier", values.Get("code_verifier"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "tok2",
				"token_type":    "bearer",
				"refresh_token": "refresh-1",
				"expires_in":    7200,
				"scope":         "tweet.read users.read",
			})
		case "/2/users/me":
			assert.Equal(t, "Bearer tok2", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"id":       "u2",
					"name":     "Bob",
					"username": "bob",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://example.com/callback",
		TokenURL:     server.URL + "/2/oauth2/token",
		ProfileURL:   server.URL + "/2/users/me",
	})

	token, err := provider.Exchange(context.Background(), "auth-code", connect.WithCodeVerifier("verifier"))
	require.NoError(t, err)
	assert.Equal(t, "tok2", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.False(t, token.ExpiresAt.IsZero())
	assert.Equal(t, []string{"tweet.read", "users.read"}, token.Scopes)

	profile, err := provider.Profile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u2", profile.PlatformUserID)
	assert.Equal(t, social.PlatformTwitter, profile.Platform)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, "Bob", profile.Name)
}

func TestProviderRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		values, _ := url.ParseQuery(string(body))
		assert.Equal(t, "refresh_token", values.Get("grant_type"))
		assert.Equal(t, "refresh-1", values.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok3",
			"token_type":    "bearer",
			"refresh_token": "refresh-2",
			"expires_in":    7200,
		})
	}))
	defer server.Close()

	provider := New(Config{
		ClientID: "client-id",
		TokenURL: server.URL,
	})

	token, err := provider.RefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "tok3", token.AccessToken)
	assert.Equal(t, "refresh-2", token.RefreshToken)
}

func TestProviderExchangeErrorNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_request",
			"error_description": "Value passed for the authorization code was invalid.",
		})
	}))
	defer server.Close()

	provider := New(Config{
		ClientID: "client-id",
		TokenURL: server.URL,
	})

	_, err := provider.Exchange(context.Background(), "bad-code")
	require.Error(t, err)

	var perr *connect.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, social.PlatformTwitter, perr.Platform)
	assert.Equal(t, "exchange", perr.Operation)
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "invalid_request", perr.Code)
}

func TestProviderRevoke(t *testing.T) {
	var revoked string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		values, _ := url.ParseQuery(string(body))
		revoked = values.Get("token")
		assert.Equal(t, "access_token", values.Get("token_type_hint"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"revoked": true})
	}))
	defer server.Close()

	provider := New(Config{
		ClientID:  "client-id",
		RevokeURL: server.URL,
	})

	err := provider.Revoke(context.Background(), "tok2")
	require.NoError(t, err)
	assert.Equal(t, "tok2", revoked)
}
