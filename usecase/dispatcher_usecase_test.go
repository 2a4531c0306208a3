package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[int64]*model.ScheduledPost

	rescheduled []int64
	failed      []int64
	posted      []int64
}

func newFakePostRepo(posts ...*model.ScheduledPost) *fakePostRepo {
	f := &fakePostRepo{posts: map[int64]*model.ScheduledPost{}}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePostRepo) Create(_ context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = int64(len(f.posts) + 1)
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*model.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (f *fakePostRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*model.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ScheduledPost
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) UpdateEditable(_ context.Context, post *model.ScheduledPost) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.posts[post.ID]
	if !ok || !existing.Editable() {
		return false, nil
	}
	f.posts[post.ID] = post
	return true, nil
}

func (f *fakePostRepo) CancelScheduled(_ context.Context, id int64, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.UserID != userID || !post.Editable() {
		return false, nil
	}
	delete(f.posts, id)
	return true, nil
}

func (f *fakePostRepo) FetchDue(_ context.Context, now time.Time, limit int) ([]*model.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []*model.ScheduledPost
	for _, p := range f.posts {
		if p.Status == model.PostStatusScheduled && !p.ScheduledAt.After(now) && len(due) < limit {
			c := *p
			due = append(due, &c)
		}
	}
	return due, nil
}

func (f *fakePostRepo) Claim(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.Status != model.PostStatusScheduled {
		return false, nil
	}
	post.Status = model.PostStatusPublishing
	return true, nil
}

func (f *fakePostRepo) MarkPosted(_ context.Context, id int64, platformPostID, postURL string, postedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := f.posts[id]
	post.Status = model.PostStatusPosted
	post.PlatformPostID = &platformPostID
	post.PostURL = &postURL
	post.PostedAt = &postedAt
	f.posted = append(f.posted, id)
	return nil
}

func (f *fakePostRepo) MarkFailed(_ context.Context, id int64, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := f.posts[id]
	post.Status = model.PostStatusFailed
	post.ErrorMessage = &errMsg
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakePostRepo) Reschedule(_ context.Context, id int64, nextAt time.Time, attemptCount int, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post := f.posts[id]
	post.Status = model.PostStatusScheduled
	post.ScheduledAt = nextAt
	post.AttemptCount = attemptCount
	post.ErrorMessage = &lastErr
	f.rescheduled = append(f.rescheduled, id)
	return nil
}

type fakeTokens struct {
	access          string
	err             error
	invalidateCalls int
}

func (f *fakeTokens) Connect(context.Context, string, dto.ConnectRequest) (*dto.CredentialStatus, error) {
	return nil, nil
}
func (f *fakeTokens) EnsureUsableToken(context.Context, string, model.Platform) (string, error) {
	return f.access, f.err
}
func (f *fakeTokens) Disconnect(context.Context, string, model.Platform) error { return nil }
func (f *fakeTokens) Invalidate(context.Context, string, model.Platform, string) error {
	f.invalidateCalls++
	return nil
}
func (f *fakeTokens) ListCredentials(context.Context, string) ([]dto.CredentialStatus, error) {
	return nil, nil
}

type notification struct {
	userID, subject, body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(_ context.Context, userID, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{userID, subject, body})
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	records []*model.DispatchAudit
}

func (f *fakeAudit) Record(_ context.Context, audit *model.DispatchAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, audit)
	return nil
}

func schedulerConfig() configuration.Scheduler {
	return configuration.Scheduler{
		Workers:             1,
		BatchSize:           10,
		PollIntervalSeconds: 15,
		MaxAttempts:         3,
		RetryBackoffSeconds: 300,
	}
}

func duePost(id int64, platform model.Platform, attempts int) *model.ScheduledPost {
	return &model.ScheduledPost{
		ID:           id,
		UserID:       "42",
		Platform:     platform,
		Content:      "hello world",
		Status:       model.PostStatusScheduled,
		ScheduledAt:  time.Now().Add(-time.Minute),
		AttemptCount: attempts,
	}
}

func TestDispatchPublishesDuePost(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformTwitter,
		publishRes: &repository.PublishResult{PostID: "tw-123", URL: "https://twitter.com/i/web/status/tw-123"},
	}
	posts := newFakePostRepo(duePost(1, model.PlatformTwitter, 0))
	notifier := &fakeNotifier{}
	audit := &fakeAudit{}
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		audit, notifier, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	post := posts.posts[1]
	assert.Equal(t, model.PostStatusPosted, post.Status)
	require.NotNil(t, post.PlatformPostID)
	assert.Equal(t, "tw-123", *post.PlatformPostID)
	require.NotNil(t, post.PostedAt)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].subject, "twitter")
	require.Len(t, audit.records, 1)
	assert.Equal(t, "posted", audit.records[0].Status)
}

// editBeforeClaimRepo lands a user edit on the row right before the claim
// succeeds, the way a guarded UPDATE committing between FetchDue and Claim
// does.
type editBeforeClaimRepo struct {
	*fakePostRepo
	newContent string
}

func (r *editBeforeClaimRepo) Claim(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	if p, ok := r.posts[id]; ok && p.Status == model.PostStatusScheduled {
		p.Content = r.newContent
	}
	r.mu.Unlock()
	return r.fakePostRepo.Claim(ctx, id)
}

func TestDispatchPublishesContentEditedBeforeClaim(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformTwitter,
		publishRes: &repository.PublishResult{PostID: "tw-9", URL: "https://twitter.com/i/web/status/tw-9"},
	}
	posts := &editBeforeClaimRepo{
		fakePostRepo: newFakePostRepo(duePost(1, model.PlatformTwitter, 0)),
		newContent:   "edited content",
	}
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		&fakeAudit{}, &fakeNotifier{}, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	require.NotNil(t, adapter.lastPublished)
	assert.Equal(t, "edited content", adapter.lastPublished.Content)
	assert.Equal(t, model.PostStatusPosted, posts.posts[1].Status)
}

func TestDispatchReconnectRequiredFailsWithOneNotification(t *testing.T) {
	posts := newFakePostRepo(duePost(1, model.PlatformLinkedIn, 0))
	notifier := &fakeNotifier{}
	tokens := &fakeTokens{err: apperror.ReconnectRequired(model.PlatformLinkedIn, "refresh rejected")}
	d := NewDispatcher(posts, tokens,
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{}},
		&fakeAudit{}, notifier, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	post := posts.posts[1]
	assert.Equal(t, model.PostStatusFailed, post.Status)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].body, "linkedin")
	assert.Contains(t, strings.ToLower(notifier.sent[0].body), "reconnect")
	assert.Empty(t, posts.rescheduled)
}

func TestDispatchTransientReschedulesWithoutNotifying(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformTwitter,
		publishErr: apperror.Transient(model.PlatformTwitter, "provider returned 503", nil),
	}
	posts := newFakePostRepo(duePost(1, model.PlatformTwitter, 0))
	notifier := &fakeNotifier{}
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		&fakeAudit{}, notifier, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	post := posts.posts[1]
	assert.Equal(t, model.PostStatusScheduled, post.Status)
	assert.Equal(t, 1, post.AttemptCount)
	assert.True(t, post.ScheduledAt.After(time.Now().Add(4*time.Minute)))
	assert.Empty(t, notifier.sent)
}

func TestDispatchRetriesExhausted(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformTwitter,
		publishErr: apperror.Transient(model.PlatformTwitter, "still down", nil),
	}
	posts := newFakePostRepo(duePost(1, model.PlatformTwitter, 2)) // maxAttempts is 3
	notifier := &fakeNotifier{}
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		&fakeAudit{}, notifier, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	post := posts.posts[1]
	assert.Equal(t, model.PostStatusFailed, post.Status)
	require.NotNil(t, post.ErrorMessage)
	assert.Contains(t, *post.ErrorMessage, "retries exhausted")
	require.Len(t, notifier.sent, 1)
}

func TestDispatchPublishRejectionInvalidatesCredential(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformTwitter,
		publishErr: apperror.ReconnectRequired(model.PlatformTwitter, "authorization rejected (401)"),
	}
	posts := newFakePostRepo(duePost(1, model.PlatformTwitter, 0))
	tokens := &fakeTokens{access: "tok"}
	d := NewDispatcher(posts, tokens,
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		&fakeAudit{}, &fakeNotifier{}, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	assert.Equal(t, 1, tokens.invalidateCalls)
	assert.Equal(t, model.PostStatusFailed, posts.posts[1].Status)
}

func TestDispatchValidationErrorIsTerminal(t *testing.T) {
	adapter := &fakeAdapter{
		platform:   model.PlatformInstagram,
		publishErr: &apperror.Error{Kind: apperror.KindValidation, Platform: model.PlatformInstagram, Msg: "instagram posts require at least one media url"},
	}
	posts := newFakePostRepo(duePost(1, model.PlatformInstagram, 0))
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformInstagram: adapter}},
		&fakeAudit{}, &fakeNotifier{}, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))

	assert.Equal(t, model.PostStatusFailed, posts.posts[1].Status)
	assert.Empty(t, posts.rescheduled)
}

func TestDispatchSkipsUnclaimablePosts(t *testing.T) {
	post := duePost(1, model.PlatformTwitter, 0)
	post.Status = model.PostStatusPublishing // already claimed by another worker
	adapter := &fakeAdapter{platform: model.PlatformTwitter, publishRes: &repository.PublishResult{PostID: "x"}}
	posts := newFakePostRepo(post)
	d := NewDispatcher(posts, &fakeTokens{access: "tok"},
		&fakeResolver{adapters: map[model.Platform]repository.IPlatformAdapter{model.PlatformTwitter: adapter}},
		&fakeAudit{}, &fakeNotifier{}, schedulerConfig())

	require.NoError(t, d.ProcessDue(context.Background()))
	assert.Zero(t, adapter.publishCalls)
}
