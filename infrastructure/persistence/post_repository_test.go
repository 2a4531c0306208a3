package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/model"
)

var postRows = []string{
	"id", "user_id", "platform", "content", "media_urls", "status", "scheduled_at",
	"posted_at", "error_message", "platform_post_id", "post_url", "attempt_count",
	"created_at", "updated_at",
}

func TestPostCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO scheduled_posts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	repo := NewPostRepository(db)
	post, err := repo.Create(context.Background(), &model.ScheduledPost{
		UserID:      "42",
		Platform:    model.PlatformTwitter,
		Content:     "hello",
		Status:      model.PostStatusScheduled,
		ScheduledAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), post.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE scheduled_posts SET status='publishing'").
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostRepository(db)
	claimed, err := repo.Claim(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostClaimAlreadyTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Another worker moved the row out of scheduled first.
	mock.ExpectExec("UPDATE scheduled_posts SET status='publishing'").
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostRepository(db)
	claimed, err := repo.Claim(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostFetchDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM scheduled_posts WHERE status='scheduled' AND scheduled_at<=(.+)").
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows(postRows).
			AddRow(1, "42", "twitter", "first", "{}", "scheduled", now.Add(-time.Minute), nil, nil, nil, nil, 0, now, now).
			AddRow(2, "42", "linkedin", "second", "{}", "scheduled", now.Add(-time.Second), nil, nil, nil, nil, 1, now, now))

	repo := NewPostRepository(db)
	due, err := repo.FetchDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, model.PlatformTwitter, due[0].Platform)
	assert.Equal(t, 1, due[1].AttemptCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostCancelScheduledGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM scheduled_posts").
		WithArgs(int64(9), "42").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostRepository(db)
	ok, err := repo.CancelScheduled(context.Background(), 9, "42")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostReschedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	next := time.Now().Add(5 * time.Minute).UTC()
	mock.ExpectExec("UPDATE scheduled_posts SET status='scheduled'").
		WithArgs(next, 2, "provider returned 503", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostRepository(db)
	err = repo.Reschedule(context.Background(), 3, next, 2, "provider returned 503")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
