package social

import "github.com/google/uuid"

// DefaultTimezone is used when a caller does not provide one.
const DefaultTimezone = "UTC"

// DefaultSettings builds the settings document a user starts with: every
// known platform listed as disconnected and both notification channels on.
func DefaultSettings(userID uuid.UUID, timezone string) *UserSettings {
	if timezone == "" {
		timezone = DefaultTimezone
	}

	accounts := make([]SocialAccount, 0, len(KnownPlatforms()))
	for _, platform := range KnownPlatforms() {
		accounts = append(accounts, SocialAccount{Platform: platform})
	}

	return &UserSettings{
		UserID:   userID,
		Timezone: timezone,
		Accounts: accounts,
		Notifications: Notifications{
			Email: true,
			Push:  true,
		},
	}
}

// Account returns the projection entry for platform, or nil.
func (s *UserSettings) Account(platform Platform) *SocialAccount {
	if s == nil {
		return nil
	}
	for i := range s.Accounts {
		if s.Accounts[i].Platform == platform {
			return &s.Accounts[i]
		}
	}
	return nil
}

// SetAccount merges one platform entry into the accounts slice, leaving
// every other entry and the rest of the document untouched. Platforms
// missing from the slice are appended so older documents heal themselves.
func (s *UserSettings) SetAccount(platform Platform, username string, connected bool) {
	if s == nil {
		return
	}
	for i := range s.Accounts {
		if s.Accounts[i].Platform == platform {
			s.Accounts[i].Username = username
			s.Accounts[i].Connected = connected
			return
		}
	}
	s.Accounts = append(s.Accounts, SocialAccount{
		Platform:  platform,
		Username:  username,
		Connected: connected,
	})
}

// ConnectedPlatforms lists the platforms currently marked connected.
func (s *UserSettings) ConnectedPlatforms() []Platform {
	if s == nil {
		return nil
	}
	var connected []Platform
	for _, account := range s.Accounts {
		if account.Connected {
			connected = append(connected, account.Platform)
		}
	}
	return connected
}
