package model

import "time"

// PostStatus is the lifecycle state of a scheduled post.
type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPosted     PostStatus = "posted"
	PostStatusFailed     PostStatus = "failed"
)

// Terminal reports whether no further automated transition occurs.
func (s PostStatus) Terminal() bool {
	return s == PostStatusPosted || s == PostStatusFailed
}

// CanTransition encodes the one-directional status machine:
// draft -> scheduled -> publishing -> posted|failed, plus the dispatcher's
// time-deferred retry (publishing -> scheduled) and user edits that move a
// scheduled post back to draft. Terminal states never transition.
func CanTransition(from, to PostStatus) bool {
	switch from {
	case PostStatusDraft:
		return to == PostStatusScheduled
	case PostStatusScheduled:
		return to == PostStatusPublishing || to == PostStatusDraft
	case PostStatusPublishing:
		return to == PostStatusPosted || to == PostStatusFailed || to == PostStatusScheduled
	default:
		return false
	}
}

// ScheduledPost is one unit of future publish work for one platform.
type ScheduledPost struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	Platform       Platform   `json:"platform"`
	Content        string     `json:"content"`
	MediaURLs      []string   `json:"media_urls,omitempty"`
	Status         PostStatus `json:"status"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	PlatformPostID *string    `json:"platform_post_id,omitempty"`
	PostURL        *string    `json:"post_url,omitempty"`
	AttemptCount   int        `json:"attempt_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Editable reports whether the user may still change or cancel the post.
func (p *ScheduledPost) Editable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusScheduled
}

// DispatchAudit is an append-only record of one publish attempt.
type DispatchAudit struct {
	PostID       int64     `json:"post_id"       bson:"post_id"`
	UserID       string    `json:"user_id"       bson:"user_id"`
	Platform     Platform  `json:"platform"      bson:"platform"`
	Status       string    `json:"status"        bson:"status"`
	Attempt      int       `json:"attempt"       bson:"attempt"`
	ErrorMessage *string   `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"    bson:"created_at"`
}
