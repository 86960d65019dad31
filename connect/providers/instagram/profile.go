package instagram

import (
	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
)

type instagramUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func mapProfile(user *instagramUser) *connect.PlatformProfile {
	if user == nil {
		return nil
	}

	return &connect.PlatformProfile{
		PlatformUserID: user.ID,
		Platform:       social.PlatformInstagram,
		Username:       user.Username,
		Raw: map[string]any{
			"id":       user.ID,
			"username": user.Username,
		},
	}
}
