package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"

	"github.com/lib/pq"
)

const postColumns = `id, user_id, platform, content, media_urls, status, scheduled_at, posted_at, error_message, platform_post_id, post_url, attempt_count, created_at, updated_at`

// PostRepository persists scheduled posts in PostgreSQL.
type PostRepository struct{ db *sql.DB }

func NewPostRepository(db *sql.DB) *PostRepository { return &PostRepository{db: db} }

func (r *PostRepository) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	q := `INSERT INTO scheduled_posts (user_id, platform, content, media_urls, status, scheduled_at, attempt_count, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,0,$7,$7) RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		post.UserID, string(post.Platform), post.Content, pq.Array(post.MediaURLs),
		string(post.Status), post.ScheduledAt.UTC(), now).Scan(&post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM scheduled_posts WHERE id=$1`, id)
	return scanPost(row)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts WHERE user_id=$1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}

func (r *PostRepository) UpdateEditable(ctx context.Context, post *model.ScheduledPost) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET content=$1, media_urls=$2, status=$3, scheduled_at=$4, updated_at=$5
		 WHERE id=$6 AND user_id=$7 AND status IN ('draft','scheduled')`,
		post.Content, pq.Array(post.MediaURLs), string(post.Status), post.ScheduledAt.UTC(),
		time.Now().UTC(), post.ID, post.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepository) CancelScheduled(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM scheduled_posts WHERE id=$1 AND user_id=$2 AND status IN ('draft','scheduled')`,
		id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts WHERE status='scheduled' AND scheduled_at<=$1 ORDER BY scheduled_at ASC LIMIT $2`,
		now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}

// Claim transitions scheduled -> publishing. The status guard makes the claim
// exclusive: under N concurrent workers exactly one update succeeds.
func (r *PostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='publishing', updated_at=$1 WHERE id=$2 AND status='scheduled'`,
		time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepository) MarkPosted(ctx context.Context, id int64, platformPostID, postURL string, postedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='posted', platform_post_id=$1, post_url=$2, posted_at=$3, error_message=NULL, updated_at=$4 WHERE id=$5 AND status='publishing'`,
		platformPostID, postURL, postedAt.UTC(), time.Now().UTC(), id)
	return err
}

func (r *PostRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='failed', error_message=$1, updated_at=$2 WHERE id=$3 AND status='publishing'`,
		errMsg, time.Now().UTC(), id)
	return err
}

func (r *PostRepository) Reschedule(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastErr string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='scheduled', scheduled_at=$1, attempt_count=$2, error_message=$3, updated_at=$4 WHERE id=$5 AND status='publishing'`,
		nextAt.UTC(), attemptCount, lastErr, time.Now().UTC(), id)
	return err
}

func scanPost(row rowScanner) (*model.ScheduledPost, error) {
	post := &model.ScheduledPost{}
	var platform, status string
	var media pq.StringArray
	var postedAt sql.NullTime
	var errMsg, platformPostID, postURL sql.NullString
	err := row.Scan(&post.ID, &post.UserID, &platform, &post.Content, &media,
		&status, &post.ScheduledAt, &postedAt, &errMsg, &platformPostID, &postURL,
		&post.AttemptCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	post.Platform = model.Platform(platform)
	post.Status = model.PostStatus(status)
	post.MediaURLs = []string(media)
	if postedAt.Valid {
		post.PostedAt = &postedAt.Time
	}
	if errMsg.Valid {
		v := errMsg.String
		post.ErrorMessage = &v
	}
	if platformPostID.Valid {
		v := platformPostID.String
		post.PlatformPostID = &v
	}
	if postURL.Valid {
		v := postURL.String
		post.PostURL = &v
	}
	return post, nil
}

var _ repository.IScheduledPost = (*PostRepository)(nil)
