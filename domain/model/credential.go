package model

import "time"

// SocialCredential stores one user's link to one platform. Token material is
// kept encrypted at rest; only the token lifecycle manager and the platform
// adapters ever see plaintext, and only for the duration of a single call.
//
// At most one credential exists per (UserID, Platform); reconnecting upserts.
// A failed credential is never deleted, it is marked invalid with LastError so
// the reconnect prompt can name the platform without re-deriving anything.
type SocialCredential struct {
	ID                     int64      `json:"id"`
	UserID                 string     `json:"user_id"`
	Platform               Platform   `json:"platform"`
	AccessTokenCiphertext  string     `json:"-"`
	RefreshTokenCiphertext string     `json:"-"` // empty for exchange-style platforms
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
	IsValid                bool       `json:"is_valid"`
	LastValidatedAt        *time.Time `json:"last_validated_at,omitempty"`
	LastError              *string    `json:"last_error,omitempty"`
	PlatformUserID         *string    `json:"platform_user_id,omitempty"`
	Username               *string    `json:"username,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ExpiringWithin reports whether the credential expires inside the buffer
// window. Credentials without an expiry never expire.
func (c *SocialCredential) ExpiringWithin(buffer time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(buffer).Before(*c.ExpiresAt)
}

// ValidatedWithin reports whether the credential was validated recently enough
// to be trusted without another network round trip.
func (c *SocialCredential) ValidatedWithin(window time.Duration, now time.Time) bool {
	if c.LastValidatedAt == nil {
		return false
	}
	return now.Sub(*c.LastValidatedAt) <= window
}
