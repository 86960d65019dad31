package connect

import (
	"testing"

	social "github.com/goliatone/go-social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDescriptors(t *testing.T) {
	registry := NewRegistry()

	descriptors := registry.Descriptors()
	require.Len(t, descriptors, 3)

	assert.Equal(t, social.PlatformInstagram, descriptors[0].ID)
	assert.Equal(t, social.PlatformTwitter, descriptors[1].ID)
	assert.Equal(t, social.PlatformFacebook, descriptors[2].ID)

	for _, d := range descriptors {
		assert.NotEmpty(t, d.DisplayName)
		assert.NotEmpty(t, d.Color)
		assert.NotEmpty(t, d.Scopes)
		assert.False(t, d.Configured)
	}

	assert.Contains(t, descriptors[1].Scopes, "offline.access")
}

func TestRegistryUnknownPlatform(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Descriptor("myspace")
	assert.ErrorIs(t, err, ErrPlatformNotFound)

	_, err = registry.Provider("myspace")
	assert.ErrorIs(t, err, ErrPlatformNotFound)
}

func TestRegistryUnconfiguredPlatform(t *testing.T) {
	registry := NewRegistry()

	for _, platform := range social.KnownPlatforms() {
		_, err := registry.Provider(platform)
		assert.ErrorIs(t, err, ErrMissingClientCredentials, platform)
	}
}

func TestRegistryWithProvider(t *testing.T) {
	provider := &fakeProvider{name: social.PlatformTwitter}
	registry := NewRegistry(WithProvider(provider))

	got, err := registry.Provider(social.PlatformTwitter)
	require.NoError(t, err)
	assert.Same(t, provider, got)

	d, err := registry.Descriptor(social.PlatformTwitter)
	require.NoError(t, err)
	assert.True(t, d.Configured)

	d, err = registry.Descriptor(social.PlatformInstagram)
	require.NoError(t, err)
	assert.False(t, d.Configured)
}

func TestClientCredentialsValid(t *testing.T) {
	assert.False(t, ClientCredentials{}.Valid())
	assert.False(t, ClientCredentials{ClientID: "id"}.Valid())
	assert.True(t, ClientCredentials{ClientID: "id", ClientSecret: "secret"}.Valid())
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("SOCIAL_INSTAGRAM_CLIENT_ID", "env-id")
	t.Setenv("SOCIAL_INSTAGRAM_CLIENT_SECRET", "env-secret")

	creds := CredentialsFromEnv(social.PlatformInstagram)
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Equal(t, "env-secret", creds.ClientSecret)
	assert.True(t, creds.Valid())

	assert.False(t, CredentialsFromEnv(social.PlatformTwitter).Valid())
}
