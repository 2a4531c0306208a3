package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

const credentialColumns = `id, user_id, platform, access_token_ciphertext, refresh_token_ciphertext, expires_at, is_valid, last_validated_at, last_error, platform_user_id, username, created_at, updated_at`

// CredentialRepository persists encrypted credentials in PostgreSQL.
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository { return &CredentialRepository{db: db} }

func (r *CredentialRepository) Get(ctx context.Context, userID string, platform model.Platform) (*model.SocialCredential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM social_credentials WHERE user_id=$1 AND platform=$2`,
		userID, string(platform))
	return scanCredential(row)
}

func (r *CredentialRepository) Upsert(ctx context.Context, cred *model.SocialCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	cred.IsValid = true
	cred.LastValidatedAt = &now
	cred.LastError = nil
	q := `INSERT INTO social_credentials (user_id, platform, access_token_ciphertext, refresh_token_ciphertext, expires_at, is_valid, last_validated_at, last_error, platform_user_id, username, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,TRUE,$6,NULL,$7,$8,$9,$10)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token_ciphertext=EXCLUDED.access_token_ciphertext,
			refresh_token_ciphertext=EXCLUDED.refresh_token_ciphertext,
			expires_at=EXCLUDED.expires_at,
			is_valid=TRUE,
			last_validated_at=EXCLUDED.last_validated_at,
			last_error=NULL,
			platform_user_id=EXCLUDED.platform_user_id,
			username=EXCLUDED.username,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q,
		cred.UserID, string(cred.Platform),
		cred.AccessTokenCiphertext, cred.RefreshTokenCiphertext,
		cred.ExpiresAt, now,
		cred.PlatformUserID, cred.Username,
		cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) MarkInvalid(ctx context.Context, userID string, platform model.Platform, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE social_credentials SET is_valid=FALSE, last_error=$1, updated_at=$2 WHERE user_id=$3 AND platform=$4`,
		reason, time.Now().UTC(), userID, string(platform))
	return err
}

func (r *CredentialRepository) MarkValidated(ctx context.Context, userID string, platform model.Platform) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE social_credentials SET last_validated_at=$1, updated_at=$1 WHERE user_id=$2 AND platform=$3`,
		now, userID, string(platform))
	return err
}

func (r *CredentialRepository) ListByUser(ctx context.Context, userID string) ([]*model.SocialCredential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM social_credentials WHERE user_id=$1 ORDER BY platform`, userID)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCredential(row rowScanner) (*model.SocialCredential, error) {
	cred := &model.SocialCredential{}
	var platform string
	var exp, validated sql.NullTime
	var lastErr, platformUserID, username sql.NullString
	err := row.Scan(&cred.ID, &cred.UserID, &platform,
		&cred.AccessTokenCiphertext, &cred.RefreshTokenCiphertext,
		&exp, &cred.IsValid, &validated, &lastErr,
		&platformUserID, &username, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	cred.Platform = model.Platform(platform)
	if exp.Valid {
		cred.ExpiresAt = &exp.Time
	}
	if validated.Valid {
		cred.LastValidatedAt = &validated.Time
	}
	if lastErr.Valid {
		v := lastErr.String
		cred.LastError = &v
	}
	if platformUserID.Valid {
		v := platformUserID.String
		cred.PlatformUserID = &v
	}
	if username.Valid {
		v := username.String
		cred.Username = &v
	}
	return cred, nil
}

var _ repository.ICredential = (*CredentialRepository)(nil)
