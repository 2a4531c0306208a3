package usecase

import (
	"context"
	"fmt"
	"time"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

// IRateLimit enforces per-tier action ceilings inside fixed windows that reset
// a full window after the first consumption.
type IRateLimit interface {
	// CheckAndConsume takes one slot or returns a RateLimitError. Check and
	// consume are a single atomic step; there is no window between them for a
	// concurrent caller to slip through.
	CheckAndConsume(ctx context.Context, userID string, tier model.TierName, action model.ActionKind) (*dto.RateLimitStatus, error)
	// Peek reports the budget without consuming.
	Peek(ctx context.Context, userID string, tier model.TierName, action model.ActionKind) (*dto.RateLimitStatus, error)
}

type RateLimitUsecase struct {
	counter repository.IRateLimitCounter
	tiers   map[model.TierName]model.Tier
	now     func() time.Time
}

func NewRateLimitUsecase(counter repository.IRateLimitCounter, tiers map[model.TierName]model.Tier) *RateLimitUsecase {
	if tiers == nil {
		tiers = model.DefaultTiers()
	}
	return &RateLimitUsecase{counter: counter, tiers: tiers, now: time.Now}
}

func rateLimitKey(userID string, action model.ActionKind, tier model.TierName) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", userID, action, tier)
}

func (u *RateLimitUsecase) limitFor(tier model.TierName, action model.ActionKind) (model.Limit, bool) {
	t, ok := u.tiers[tier]
	if !ok {
		t = u.tiers[model.TierFree]
	}
	limit, ok := t.Limits[action]
	return limit, ok
}

func (u *RateLimitUsecase) CheckAndConsume(ctx context.Context, userID string, tier model.TierName, action model.ActionKind) (*dto.RateLimitStatus, error) {
	limit, ok := u.limitFor(tier, action)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown action %q", action))
	}
	count, ttl, err := u.counter.IncrWithWindow(ctx, rateLimitKey(userID, action, tier), limit.Window)
	if err != nil {
		return nil, err
	}
	resetAt := u.now().Add(ttl)
	if count > int64(limit.Ceiling) {
		return nil, &apperror.RateLimitError{Action: action, Remaining: 0, ResetAt: resetAt}
	}
	return &dto.RateLimitStatus{
		Action:    string(action),
		Ceiling:   limit.Ceiling,
		Remaining: limit.Ceiling - int(count),
		ResetAt:   resetAt,
	}, nil
}

func (u *RateLimitUsecase) Peek(ctx context.Context, userID string, tier model.TierName, action model.ActionKind) (*dto.RateLimitStatus, error) {
	limit, ok := u.limitFor(tier, action)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown action %q", action))
	}
	count, ttl, err := u.counter.Get(ctx, rateLimitKey(userID, action, tier), limit.Window)
	if err != nil {
		return nil, err
	}
	remaining := limit.Ceiling - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &dto.RateLimitStatus{
		Action:    string(action),
		Ceiling:   limit.Ceiling,
		Remaining: remaining,
		ResetAt:   u.now().Add(ttl),
	}, nil
}

var _ IRateLimit = (*RateLimitUsecase)(nil)
