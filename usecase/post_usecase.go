package usecase

import (
	"context"
	"strings"
	"time"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

const maxContentLength = 10000

// IPost is the user-facing post scheduling surface.
type IPost interface {
	Create(ctx context.Context, userID string, tier model.TierName, req dto.CreatePostRequest) (*model.ScheduledPost, error)
	Get(ctx context.Context, userID string, id int64) (*model.ScheduledPost, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*model.ScheduledPost, error)
	Update(ctx context.Context, userID string, id int64, req dto.UpdatePostRequest) (*model.ScheduledPost, error)
	Cancel(ctx context.Context, userID string, id int64) error
}

type PostUsecase struct {
	posts   repository.IScheduledPost
	limiter IRateLimit
	now     func() time.Time
}

func NewPostUsecase(posts repository.IScheduledPost, limiter IRateLimit) *PostUsecase {
	return &PostUsecase{posts: posts, limiter: limiter, now: time.Now}
}

func (u *PostUsecase) Create(ctx context.Context, userID string, tier model.TierName, req dto.CreatePostRequest) (*model.ScheduledPost, error) {
	platform, err := model.ParsePlatform(req.Platform)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation("content must not be empty")
	}
	if len(content) > maxContentLength {
		return nil, apperror.Validation("content too long")
	}

	status := model.PostStatusScheduled
	scheduledAt := req.ScheduledAt
	if req.Draft {
		status = model.PostStatusDraft
		if scheduledAt.IsZero() {
			scheduledAt = u.now()
		}
	} else if scheduledAt.Before(u.now()) {
		return nil, apperror.Validation("scheduled_at must be in the future")
	}

	// Drafts consume quota too; otherwise draft-then-schedule would be a
	// free pass around the ceiling.
	if _, err := u.limiter.CheckAndConsume(ctx, userID, tier, model.ActionPostCreate); err != nil {
		return nil, err
	}

	post := &model.ScheduledPost{
		UserID:      userID,
		Platform:    platform,
		Content:     content,
		MediaURLs:   req.MediaURLs,
		Status:      status,
		ScheduledAt: scheduledAt.UTC(),
	}
	return u.posts.Create(ctx, post)
}

func (u *PostUsecase) Get(ctx context.Context, userID string, id int64) (*model.ScheduledPost, error) {
	post, err := u.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (u *PostUsecase) List(ctx context.Context, userID string, limit, offset int) ([]*model.ScheduledPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.posts.ListByUser(ctx, userID, limit, offset)
}

func (u *PostUsecase) Update(ctx context.Context, userID string, id int64, req dto.UpdatePostRequest) (*model.ScheduledPost, error) {
	post, err := u.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !post.Editable() {
		return nil, apperror.Validation("post is no longer editable")
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, apperror.Validation("content must not be empty")
		}
		if len(content) > maxContentLength {
			return nil, apperror.Validation("content too long")
		}
		post.Content = content
	}
	if req.MediaURLs != nil {
		post.MediaURLs = *req.MediaURLs
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.Schedule && post.Status == model.PostStatusDraft {
		post.Status = model.PostStatusScheduled
	}
	if post.Status == model.PostStatusScheduled && post.ScheduledAt.Before(u.now()) {
		return nil, apperror.Validation("scheduled_at must be in the future")
	}

	ok, err := u.posts.UpdateEditable(ctx, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Dispatcher claimed it between our read and the update.
		return nil, apperror.Validation("post is no longer editable")
	}
	return post, nil
}

func (u *PostUsecase) Cancel(ctx context.Context, userID string, id int64) error {
	ok, err := u.posts.CancelScheduled(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		post, gerr := u.posts.GetByID(ctx, id)
		if gerr != nil || post.UserID != userID {
			return repository.ErrNotFound
		}
		return apperror.Validation("post can no longer be cancelled")
	}
	return nil
}

var _ IPost = (*PostUsecase)(nil)
