package usecase

import (
	"context"
	"fmt"
	"time"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"
)

// Dispatcher drives scheduled posts to their platforms. Several workers may
// poll the same table concurrently; the claim step guarantees each due post is
// published by exactly one of them.
type Dispatcher struct {
	posts    repository.IScheduledPost
	tokens   ITokenLifecycle
	adapters repository.AdapterResolver
	audit    repository.IDispatchAudit
	notifier repository.INotifier
	cfg      configuration.Scheduler
	now      func() time.Time
}

func NewDispatcher(
	posts repository.IScheduledPost,
	tokens ITokenLifecycle,
	adapters repository.AdapterResolver,
	audit repository.IDispatchAudit,
	notifier repository.INotifier,
	cfg configuration.Scheduler,
) *Dispatcher {
	return &Dispatcher{
		posts:    posts,
		tokens:   tokens,
		adapters: adapters,
		audit:    audit,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	interval := time.Duration(d.cfg.PollIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.ProcessDue(ctx); err != nil {
				logger.GetLogger().Errorf("processing due posts: %v", err)
			}
		}
	}
}

// ProcessDue fetches one batch of due posts and dispatches each claimed one.
func (d *Dispatcher) ProcessDue(ctx context.Context) error {
	due, err := d.posts.FetchDue(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("fetching due posts: %w", err)
	}
	for _, post := range due {
		claimed, err := d.posts.Claim(ctx, post.ID)
		if err != nil {
			logger.GetLogger().WithField("postID", post.ID).Errorf("claiming post: %v", err)
			continue
		}
		if !claimed {
			// Another worker got it first.
			continue
		}
		// Reload after the claim. An edit accepted between FetchDue and Claim
		// belongs in the published post, not the stale batch snapshot.
		fresh, err := d.posts.GetByID(ctx, post.ID)
		if err != nil {
			logger.GetLogger().WithField("postID", post.ID).Errorf("reloading claimed post: %v", err)
			continue
		}
		d.dispatch(ctx, fresh)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, post *model.ScheduledPost) {
	log := logger.GetLogger().WithField("postID", post.ID).WithField("platform", post.Platform)

	access, err := d.tokens.EnsureUsableToken(ctx, post.UserID, post.Platform)
	if err != nil {
		d.handleFailure(ctx, post, err)
		return
	}
	adapter, err := d.adapters.Resolve(post.Platform)
	if err != nil {
		d.fail(ctx, post, err)
		return
	}

	result, err := adapter.PublishPost(ctx, access, post)
	if err != nil {
		if apperror.IsReconnectRequired(err) {
			// The platform revoked the token between refresh and publish.
			if ierr := d.tokens.Invalidate(ctx, post.UserID, post.Platform, "token rejected during publish"); ierr != nil {
				log.Warnf("invalidating credential: %v", ierr)
			}
		}
		d.handleFailure(ctx, post, err)
		return
	}

	postedAt := d.now()
	if err := d.posts.MarkPosted(ctx, post.ID, result.PostID, result.URL, postedAt); err != nil {
		log.Errorf("marking post published: %v", err)
		return
	}
	log.WithField("platformPostID", result.PostID).Info("post published")
	d.recordAudit(ctx, post, string(model.PostStatusPosted), nil)
	d.notify(ctx, post.UserID,
		fmt.Sprintf("Your %s post was published", post.Platform),
		fmt.Sprintf("Post %d went live at %s: %s", post.ID, postedAt.UTC().Format(time.RFC3339), result.URL))
}

// handleFailure routes an error to the time-deferred retry path or to a
// terminal failure based on its kind. Only transient errors earn a retry.
func (d *Dispatcher) handleFailure(ctx context.Context, post *model.ScheduledPost, cause error) {
	if apperror.IsTransient(cause) {
		d.retryOrFail(ctx, post, cause)
		return
	}
	d.fail(ctx, post, cause)
}

func (d *Dispatcher) retryOrFail(ctx context.Context, post *model.ScheduledPost, cause error) {
	attempt := post.AttemptCount + 1
	if attempt >= d.cfg.MaxAttempts {
		d.fail(ctx, post, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, cause))
		return
	}
	backoff := time.Duration(d.cfg.RetryBackoffSeconds) * time.Second
	nextAt := d.now().Add(backoff)
	msg := cause.Error()
	if err := d.posts.Reschedule(ctx, post.ID, nextAt, attempt, msg); err != nil {
		logger.GetLogger().WithField("postID", post.ID).Errorf("rescheduling post: %v", err)
		return
	}
	logger.GetLogger().WithField("postID", post.ID).
		WithField("attempt", attempt).
		WithField("nextAt", nextAt.UTC().Format(time.RFC3339)).
		Warn("post rescheduled after transient failure")
	d.recordAudit(ctx, post, "rescheduled", &msg)
}

// fail marks the post terminally failed and notifies the user exactly once.
func (d *Dispatcher) fail(ctx context.Context, post *model.ScheduledPost, cause error) {
	msg := cause.Error()
	if err := d.posts.MarkFailed(ctx, post.ID, msg); err != nil {
		logger.GetLogger().WithField("postID", post.ID).Errorf("marking post failed: %v", err)
		return
	}
	logger.GetLogger().WithField("postID", post.ID).WithField("platform", post.Platform).
		Warnf("post failed: %v", cause)
	d.recordAudit(ctx, post, string(model.PostStatusFailed), &msg)

	body := fmt.Sprintf("Your %s post could not be published: %s", post.Platform, msg)
	if apperror.IsReconnectRequired(cause) || apperror.IsNotConnected(cause) {
		body = fmt.Sprintf("Your %s post could not be published because the %s connection is no longer valid. Please reconnect your %s account.",
			post.Platform, post.Platform, post.Platform)
	}
	d.notify(ctx, post.UserID, fmt.Sprintf("Your %s post failed", post.Platform), body)
}

func (d *Dispatcher) recordAudit(ctx context.Context, post *model.ScheduledPost, status string, errMsg *string) {
	if d.audit == nil {
		return
	}
	audit := &model.DispatchAudit{
		PostID:       post.ID,
		UserID:       post.UserID,
		Platform:     post.Platform,
		Status:       status,
		Attempt:      post.AttemptCount + 1,
		ErrorMessage: errMsg,
		CreatedAt:    d.now().UTC(),
	}
	if err := d.audit.Record(ctx, audit); err != nil {
		logger.GetLogger().WithField("postID", post.ID).Warnf("recording audit: %v", err)
	}
}

// notify is fire and forget. With no sink configured the outcome still lands
// in the log, so nothing is silently lost.
func (d *Dispatcher) notify(ctx context.Context, userID, subject, body string) {
	if d.notifier == nil {
		logger.GetLogger().WithField("userID", userID).WithField("subject", subject).Info(body)
		return
	}
	err := withRetry(ctx, networkAttempts, networkRetryGap, func() error {
		if nerr := d.notifier.Notify(ctx, userID, subject, body); nerr != nil {
			return apperror.Transient("", "notify failed", nerr)
		}
		return nil
	})
	if err != nil {
		logger.GetLogger().WithField("userID", userID).Warnf("delivering notification: %v", err)
	}
}
