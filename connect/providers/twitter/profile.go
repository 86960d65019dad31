package twitter

import (
	social "github.com/goliatone/go-social"
	"github.com/goliatone/go-social/connect"
)

// twitterUserResponse is the v2 envelope: the user object sits under "data".
type twitterUserResponse struct {
	Data twitterUser `json:"data"`
}

type twitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func mapProfile(user *twitterUser) *connect.PlatformProfile {
	if user == nil {
		return nil
	}

	return &connect.PlatformProfile{
		PlatformUserID: user.ID,
		Platform:       social.PlatformTwitter,
		Username:       user.Username,
		Name:           user.Name,
		Raw: map[string]any{
			"id":       user.ID,
			"name":     user.Name,
			"username": user.Username,
		},
	}
}
