package model

import "time"

// UserPlatformCredential stores OAuth state for one (user, platform) pair
type UserPlatformCredential struct {
	UserID               int64      `json:"user_id"`
	Platform             string     `json:"platform"`
	PlatformUserID       *string    `json:"platform_user_id,omitempty"`
	AccessToken          *string    `json:"-"`
	RefreshToken         *string    `json:"-"`
	AccessTokenExpiresAt *time.Time `json:"access_token_expires_at,omitempty"`
	Scope                *string    `json:"scope,omitempty"`
	Authorized           bool       `json:"authorized"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// HasFreshAccessToken reports whether the access token outlives now+skew.
func (c *UserPlatformCredential) HasFreshAccessToken(now time.Time, skew time.Duration) bool {
	if c == nil || c.AccessToken == nil || *c.AccessToken == "" || c.AccessTokenExpiresAt == nil {
		return false
	}
	return now.Add(skew).Before(*c.AccessTokenExpiresAt)
}

func (c *UserPlatformCredential) HasRefreshToken() bool {
	return c != nil && c.RefreshToken != nil && *c.RefreshToken != ""
}

func (c *UserPlatformCredential) HasPlatformUserID() bool {
	return c != nil && c.PlatformUserID != nil && *c.PlatformUserID != ""
}

// TokenGrant is a token endpoint response (code exchange or refresh).
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	Scope        string
}

// RefreshSweepResult summarises a proactive refresh pass
type RefreshSweepResult struct {
	Refreshed      int `json:"refreshed"`
	Failed         int `json:"failed"`
	Reauthenticate int `json:"reauthenticate"`
}
