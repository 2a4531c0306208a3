package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

// CredentialRepositoryMSSQL is the SQL Server variant used in production.
type CredentialRepositoryMSSQL struct{ db *sql.DB }

func NewCredentialRepositoryMSSQL(db *sql.DB) *CredentialRepositoryMSSQL {
	return &CredentialRepositoryMSSQL{db: db}
}

func (r *CredentialRepositoryMSSQL) Get(ctx context.Context, userID string, platform model.Platform) (*model.SocialCredential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM dbo.[social_credentials] WHERE user_id=@p1 AND platform=@p2`,
		userID, string(platform))
	return scanCredential(row)
}

func (r *CredentialRepositoryMSSQL) Upsert(ctx context.Context, cred *model.SocialCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	cred.IsValid = true
	cred.LastValidatedAt = &now
	cred.LastError = nil

	var exp sql.NullTime
	if cred.ExpiresAt != nil {
		exp = sql.NullTime{Time: *cred.ExpiresAt, Valid: true}
	}
	var platformUserID, username sql.NullString
	if cred.PlatformUserID != nil {
		platformUserID = sql.NullString{String: *cred.PlatformUserID, Valid: true}
	}
	if cred.Username != nil {
		username = sql.NullString{String: *cred.Username, Valid: true}
	}

	q := `MERGE dbo.[social_credentials] AS target
USING (VALUES (@p1, @p2)) AS src(user_id, platform)
ON target.user_id = src.user_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    access_token_ciphertext=@p3,
    refresh_token_ciphertext=@p4,
    expires_at=@p5,
    is_valid=1,
    last_validated_at=@p6,
    last_error=NULL,
    platform_user_id=@p7,
    username=@p8,
    updated_at=@p10
WHEN NOT MATCHED THEN
    INSERT (user_id, platform, access_token_ciphertext, refresh_token_ciphertext, expires_at, is_valid, last_validated_at, last_error, platform_user_id, username, created_at, updated_at)
    VALUES (@p1,@p2,@p3,@p4,@p5,1,@p6,NULL,@p7,@p8,@p9,@p10);`
	_, err := r.db.ExecContext(ctx, q,
		cred.UserID, string(cred.Platform),
		cred.AccessTokenCiphertext, cred.RefreshTokenCiphertext,
		exp, now, platformUserID, username,
		cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepositoryMSSQL) MarkInvalid(ctx context.Context, userID string, platform model.Platform, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[social_credentials] SET is_valid=0, last_error=@p1, updated_at=@p2 WHERE user_id=@p3 AND platform=@p4`,
		reason, time.Now().UTC(), userID, string(platform))
	return err
}

func (r *CredentialRepositoryMSSQL) MarkValidated(ctx context.Context, userID string, platform model.Platform) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE dbo.[social_credentials] SET last_validated_at=@p1, updated_at=@p1 WHERE user_id=@p2 AND platform=@p3`,
		now, userID, string(platform))
	return err
}

func (r *CredentialRepositoryMSSQL) ListByUser(ctx context.Context, userID string) ([]*model.SocialCredential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM dbo.[social_credentials] WHERE user_id=@p1 ORDER BY platform`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cred)
	}
	return list, rows.Err()
}

var _ repository.ICredential = (*CredentialRepositoryMSSQL)(nil)
