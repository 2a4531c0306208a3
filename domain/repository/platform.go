package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// RefreshedToken is the result of a successful refresh or exchange.
type RefreshedToken struct {
	AccessToken      string
	RefreshToken     string // empty when the provider does not rotate it
	ExpiresInSeconds int64  // 0 when the provider reports no expiry
}

// PlatformProfile is a best-effort identity lookup result.
type PlatformProfile struct {
	PlatformUserID string
	Username       string
	DisplayName    string
}

// PublishResult identifies the created platform post.
type PublishResult struct {
	PostID string
	URL    string
}

// IPlatformAdapter is the per-platform capability set. Implementations make
// network calls with a fixed timeout and never retry internally; they classify
// every provider failure into the apperror taxonomy, most importantly
// reconnect-required versus transient, because all downstream retry policy
// hangs on that distinction.
type IPlatformAdapter interface {
	Platform() model.Platform
	// RefreshUsesAccessToken reports exchange-style platforms where the
	// current access token itself is the refresh material.
	RefreshUsesAccessToken() bool
	// ValidateToken returns nil when the access token is usable.
	ValidateToken(ctx context.Context, accessToken string) error
	RefreshToken(ctx context.Context, refreshOrExchangeToken string) (*RefreshedToken, error)
	GetUserProfile(ctx context.Context, accessToken string) (*PlatformProfile, error)
	PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*PublishResult, error)
}

// AdapterResolver maps a platform to its adapter. Adding a platform means one
// adapter and one registry entry, nothing else.
type AdapterResolver interface {
	Resolve(p model.Platform) (IPlatformAdapter, error)
}
