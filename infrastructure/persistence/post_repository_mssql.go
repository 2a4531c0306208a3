package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

// PostRepositoryMSSQL is the SQL Server variant. media_urls is stored as a
// JSON array in an NVARCHAR column since SQL Server has no native array type.
type PostRepositoryMSSQL struct{ db *sql.DB }

func NewPostRepositoryMSSQL(db *sql.DB) *PostRepositoryMSSQL {
	return &PostRepositoryMSSQL{db: db}
}

func encodeMediaURLs(urls []string) (string, error) {
	if len(urls) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMediaURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	return urls
}

func (r *PostRepositoryMSSQL) Create(ctx context.Context, post *model.ScheduledPost) (*model.ScheduledPost, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	media, err := encodeMediaURLs(post.MediaURLs)
	if err != nil {
		return nil, err
	}
	q := `INSERT INTO dbo.[scheduled_posts] (user_id, platform, content, media_urls, status, scheduled_at, attempt_count, created_at, updated_at)
		  OUTPUT INSERTED.id
		  VALUES (@p1,@p2,@p3,@p4,@p5,@p6,0,@p7,@p7)`
	err = r.db.QueryRowContext(ctx, q,
		post.UserID, string(post.Platform), post.Content, media,
		string(post.Status), post.ScheduledAt.UTC(), now).Scan(&post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM dbo.[scheduled_posts] WHERE id=@p1`, id)
	return scanPostMSSQL(row)
}

func (r *PostRepositoryMSSQL) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM dbo.[scheduled_posts] WHERE user_id=@p1 ORDER BY scheduled_at DESC OFFSET @p2 ROWS FETCH NEXT @p3 ROWS ONLY`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostsMSSQL(rows)
}

func (r *PostRepositoryMSSQL) UpdateEditable(ctx context.Context, post *model.ScheduledPost) (bool, error) {
	media, err := encodeMediaURLs(post.MediaURLs)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[scheduled_posts] SET content=@p1, media_urls=@p2, status=@p3, scheduled_at=@p4, updated_at=@p5
		 WHERE id=@p6 AND user_id=@p7 AND status IN ('draft','scheduled')`,
		post.Content, media, string(post.Status), post.ScheduledAt.UTC(),
		time.Now().UTC(), post.ID, post.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepositoryMSSQL) CancelScheduled(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM dbo.[scheduled_posts] WHERE id=@p1 AND user_id=@p2 AND status IN ('draft','scheduled')`,
		id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepositoryMSSQL) FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT TOP (@p1) `+postColumns+` FROM dbo.[scheduled_posts] WHERE status='scheduled' AND scheduled_at<=@p2 ORDER BY scheduled_at ASC`,
		limit, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostsMSSQL(rows)
}

func (r *PostRepositoryMSSQL) Claim(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[scheduled_posts] SET status='publishing', updated_at=@p1 WHERE id=@p2 AND status='scheduled'`,
		time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepositoryMSSQL) MarkPosted(ctx context.Context, id int64, platformPostID, postURL string, postedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[scheduled_posts] SET status='posted', platform_post_id=@p1, post_url=@p2, posted_at=@p3, error_message=NULL, updated_at=@p4 WHERE id=@p5 AND status='publishing'`,
		platformPostID, postURL, postedAt.UTC(), time.Now().UTC(), id)
	return err
}

func (r *PostRepositoryMSSQL) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[scheduled_posts] SET status='failed', error_message=@p1, updated_at=@p2 WHERE id=@p3 AND status='publishing'`,
		errMsg, time.Now().UTC(), id)
	return err
}

func (r *PostRepositoryMSSQL) Reschedule(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastErr string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[scheduled_posts] SET status='scheduled', scheduled_at=@p1, attempt_count=@p2, error_message=@p3, updated_at=@p4 WHERE id=@p5 AND status='publishing'`,
		nextAt.UTC(), attemptCount, lastErr, time.Now().UTC(), id)
	return err
}

func collectPostsMSSQL(rows *sql.Rows) ([]*model.ScheduledPost, error) {
	var list []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPostMSSQL(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, post)
	}
	return list, rows.Err()
}

func scanPostMSSQL(row rowScanner) (*model.ScheduledPost, error) {
	post := &model.ScheduledPost{}
	var platform, status, media string
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
	post.MediaURLs = decodeMediaURLs(media)
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

var _ repository.IScheduledPost = (*PostRepositoryMSSQL)(nil)
