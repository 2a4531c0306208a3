package repository

import (
	"context"
	"time"

	"social-scheduler/domain/model"
)

// IScheduledPost is the durable queue of publish work.
type IScheduledPost interface {
	Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error)
	GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.ScheduledPost, error)
	// UpdateEditable applies user edits; it only succeeds while the post is
	// still draft or scheduled.
	UpdateEditable(ctx context.Context, post *model.ScheduledPost) (bool, error)
	// CancelScheduled deletes the post only while status is scheduled or
	// draft; a claimed post runs to a terminal state.
	CancelScheduled(ctx context.Context, id int64, userID string) (bool, error)

	// FetchDue returns scheduled posts whose ScheduledAt has passed.
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledPost, error)
	// Claim performs the exclusive scheduled -> publishing transition. The
	// conditional update succeeds for exactly one of N concurrent workers.
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPosted(ctx context.Context, id int64, platformPostID, postURL string, postedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	// Reschedule reverts publishing -> scheduled with a deferred ScheduledAt
	// for the dispatcher's bounded transient retry.
	Reschedule(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastErr string) error
}
