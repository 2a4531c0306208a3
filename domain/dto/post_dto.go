package dto

import "time"

// CreatePostRequest creates a draft or scheduled post for one platform.
type CreatePostRequest struct {
	Platform    string    `json:"platform" binding:"required"`
	Content     string    `json:"content" binding:"required"`
	MediaURLs   []string  `json:"media_urls"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Draft       bool      `json:"draft"`
}

// UpdatePostRequest edits a post that is still draft or scheduled.
type UpdatePostRequest struct {
	Content     *string    `json:"content"`
	MediaURLs   *[]string  `json:"media_urls"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Schedule    bool       `json:"schedule"` // promote a draft to scheduled
}

// RateLimitStatus reports the remaining budget for one action without
// consuming from it.
type RateLimitStatus struct {
	Action    string    `json:"action"`
	Ceiling   int       `json:"ceiling"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
