package social

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Platform identifies one of the supported external networks.
type Platform = string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
)

// KnownPlatforms returns the supported platforms in display order.
func KnownPlatforms() []Platform {
	return []Platform{PlatformInstagram, PlatformTwitter, PlatformFacebook}
}

// IsKnownPlatform reports whether id names a supported platform.
func IsKnownPlatform(id Platform) bool {
	switch id {
	case PlatformInstagram, PlatformTwitter, PlatformFacebook:
		return true
	}
	return false
}

// PlatformCredential is the token set and remote identity captured when a
// user connects a platform account. One row per (user, platform).
type PlatformCredential struct {
	bun.BaseModel  `bun:"table:platform_credentials,alias:cred"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Platform       Platform       `bun:"platform,notnull" json:"platform,omitempty"`
	AccessToken    string         `bun:"access_token,notnull" json:"-"`
	RefreshToken   string         `bun:"refresh_token" json:"-"`
	ExpiresAt      *time.Time     `bun:"expires_at" json:"expires_at,omitempty"`
	PlatformUserID string         `bun:"platform_user_id,notnull" json:"platform_user_id,omitempty"`
	Username       string         `bun:"username" json:"username,omitempty"`
	ProfileData    map[string]any `bun:"profile_data,type:jsonb" json:"profile_data,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ExpiresWithin reports whether the credential expires before now+window.
// Credentials without an expiry never report true.
func (c *PlatformCredential) ExpiresWithin(window time.Duration) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(time.Now().Add(window))
}

// SocialAccount is one entry of the settings projection: the UI's view of
// a platform connection without the raw credential.
type SocialAccount struct {
	Platform  Platform `json:"platform"`
	Username  string   `json:"username"`
	Connected bool     `json:"connected"`
}

// Notifications holds the per user notification toggles.
type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// UserSettings is the denormalized per user settings document. The
// accounts slice mirrors the credential store and is only mutated
// together with it by the connect package.
type UserSettings struct {
	bun.BaseModel `bun:"table:user_settings,alias:uset"`
	UserID        uuid.UUID       `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	Timezone      string          `bun:"timezone,notnull" json:"timezone,omitempty"`
	Accounts      []SocialAccount `bun:"accounts,type:jsonb" json:"accounts,omitempty"`
	Notifications Notifications   `bun:"notifications,type:jsonb" json:"notifications"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PostStatus is the lifecycle state of a scheduled post.
type PostStatus = string

const (
	// PostStatusPending is set on creation; nothing in this module moves
	// a post past pending, dispatch is owned by an external process.
	PostStatusPending PostStatus = "pending"
	// PostStatusPublished means the external dispatcher delivered the post.
	PostStatusPublished PostStatus = "published"
	// PostStatusFailed means delivery was attempted and failed.
	PostStatusFailed PostStatus = "failed"
)

// ScheduledPost is a post stored for future delivery.
type ScheduledPost struct {
	bun.BaseModel `bun:"table:scheduled_posts,alias:post"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	ScheduledAt   time.Time  `bun:"scheduled_at,notnull" json:"scheduled_at"`
	Platforms     []Platform `bun:"platforms,type:jsonb" json:"platforms,omitempty"`
	MediaURLs     []string   `bun:"media_urls,type:jsonb" json:"media_urls,omitempty"`
	Status        PostStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PostAnalytics is one engagement snapshot written by the ingestion
// process for a delivered post.
type PostAnalytics struct {
	bun.BaseModel `bun:"table:post_analytics,alias:pan"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Platform      Platform  `bun:"platform,notnull" json:"platform,omitempty"`
	Likes         int       `bun:"likes" json:"likes"`
	Shares        int       `bun:"shares" json:"shares"`
	Comments      int       `bun:"comments" json:"comments"`
	Reach         int       `bun:"reach" json:"reach"`
	RecordedAt    time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}

// Engagement is likes+comments+shares, the figure the dashboard sums.
func (a *PostAnalytics) Engagement() int {
	if a == nil {
		return 0
	}
	return a.Likes + a.Comments + a.Shares
}

// PlatformEngagement aggregates engagement per platform.
type PlatformEngagement struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
	Reach    int `json:"reach"`
	Posts    int `json:"posts"`
}

// AnalyticsSummary is the aggregate view the dashboard renders.
type AnalyticsSummary struct {
	TotalReach      int                             `json:"total_reach"`
	TotalEngagement int                             `json:"total_engagement"`
	AverageLikes    int                             `json:"average_likes"`
	Platforms       map[Platform]PlatformEngagement `json:"platforms"`
}
