package connect

import (
	"fmt"
	"os"
	"strings"

	social "github.com/goliatone/go-social"
)

// Descriptor is the static description of a supported platform: identity,
// presentation metadata, and the scopes requested at connect time.
type Descriptor struct {
	ID          social.Platform `json:"id"`
	DisplayName string          `json:"display_name"`
	Color       string          `json:"color"`
	Scopes      []string        `json:"scopes"`
	Configured  bool            `json:"configured"`
}

func builtinDescriptors() []Descriptor {
	return []Descriptor{
		{
			ID:          social.PlatformInstagram,
			DisplayName: "Instagram",
			Color:       "#E1306C",
			Scopes:      []string{"basic", "create_content", "read_insights"},
		},
		{
			ID:          social.PlatformTwitter,
			DisplayName: "Twitter",
			Color:       "#1DA1F2",
			// offline.access keeps the refresh grant available to hosts
			// that configure the provider from descriptor scopes.
			Scopes: []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		},
		{
			ID:          social.PlatformFacebook,
			DisplayName: "Facebook",
			Color:       "#4267B2",
			Scopes:      []string{"pages_manage_posts", "pages_read_engagement"},
		},
	}
}

// Registry maps platform keys to descriptors and configured providers.
// Descriptors exist for every supported platform; a provider exists only
// when client credentials were configured for it.
type Registry struct {
	order       []social.Platform
	descriptors map[social.Platform]Descriptor
	providers   map[social.Platform]PlatformProvider
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithProvider registers a configured provider for its platform.
func WithProvider(provider PlatformProvider) RegistryOption {
	return func(r *Registry) {
		if provider == nil {
			return
		}
		name := provider.Name()
		r.providers[name] = provider
		if d, ok := r.descriptors[name]; ok {
			d.Configured = true
			r.descriptors[name] = d
		}
	}
}

// NewRegistry creates a registry seeded with the supported platforms.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		descriptors: map[social.Platform]Descriptor{},
		providers:   map[social.Platform]PlatformProvider{},
	}

	for _, d := range builtinDescriptors() {
		r.order = append(r.order, d.ID)
		r.descriptors[d.ID] = d
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Descriptor returns the static description for a platform key.
func (r *Registry) Descriptor(platform social.Platform) (Descriptor, error) {
	d, ok := r.descriptors[platform]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrPlatformNotFound, platform)
	}
	return d, nil
}

// Descriptors returns every supported platform in display order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.descriptors[id])
	}
	return out
}

// Provider returns the configured provider for a platform. Unknown keys
// return ErrPlatformNotFound; known but unconfigured platforms return
// ErrMissingClientCredentials.
func (r *Registry) Provider(platform social.Platform) (PlatformProvider, error) {
	if _, ok := r.descriptors[platform]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, platform)
	}

	provider, ok := r.providers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingClientCredentials, platform)
	}

	return provider, nil
}

// ClientCredentials holds the OAuth app credentials for one platform.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// Valid reports whether both values are present.
func (c ClientCredentials) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// CredentialsFromEnv reads SOCIAL_<PLATFORM>_CLIENT_ID and
// SOCIAL_<PLATFORM>_CLIENT_SECRET for a platform key. Missing values
// leave the platform unconfigured; initiating a connect for it fails
// with ErrMissingClientCredentials rather than at startup, so one
// unconfigured platform does not take the others down.
func CredentialsFromEnv(platform social.Platform) ClientCredentials {
	key := strings.ToUpper(string(platform))
	return ClientCredentials{
		ClientID:     os.Getenv("SOCIAL_" + key + "_CLIENT_ID"),
		ClientSecret: os.Getenv("SOCIAL_" + key + "_CLIENT_SECRET"),
	}
}
