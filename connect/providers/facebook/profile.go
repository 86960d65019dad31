package facebook

import (
	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
)

type facebookUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// mapProfile uses the display name as the username: the Graph API
// retired the dedicated username field years ago.
func mapProfile(user *facebookUser) *connect.PlatformProfile {
	if user == nil {
		return nil
	}

	return &connect.PlatformProfile{
		PlatformUserID: user.ID,
		Platform:       social.PlatformFacebook,
		Username:       user.Name,
		Name:           user.Name,
		Raw: map[string]any{
			"id":   user.ID,
			"name": user.Name,
		},
	}
}
