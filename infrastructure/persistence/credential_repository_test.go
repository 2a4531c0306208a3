package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

var credentialRows = []string{
	"id", "user_id", "platform", "access_token_ciphertext", "refresh_token_ciphertext",
	"expires_at", "is_valid", "last_validated_at", "last_error",
	"platform_user_id", "username", "created_at", "updated_at",
}

func TestCredentialGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM social_credentials WHERE user_id=(.+) AND platform=(.+)").
		WithArgs("42", "twitter").
		WillReturnRows(sqlmock.NewRows(credentialRows).
			AddRow(1, "42", "twitter", "ct-access", "ct-refresh", exp, true, now, nil, "tw-9", "jane", now, now))

	repo := NewCredentialRepository(db)
	cred, err := repo.Get(context.Background(), "42", model.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformTwitter, cred.Platform)
	assert.Equal(t, "ct-access", cred.AccessTokenCiphertext)
	assert.True(t, cred.IsValid)
	require.NotNil(t, cred.ExpiresAt)
	assert.Equal(t, exp, cred.ExpiresAt.UTC())
	require.NotNil(t, cred.Username)
	assert.Equal(t, "jane", *cred.Username)
	assert.Nil(t, cred.LastError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM social_credentials").
		WithArgs("42", "reddit").
		WillReturnRows(sqlmock.NewRows(credentialRows))

	repo := NewCredentialRepository(db)
	_, err = repo.Get(context.Background(), "42", model.PlatformReddit)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialUpsertResetsValidity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO social_credentials").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCredentialRepository(db)
	cred := &model.SocialCredential{
		UserID:                "42",
		Platform:              model.PlatformLinkedIn,
		AccessTokenCiphertext: "ct",
		IsValid:               false,
	}
	require.NoError(t, repo.Upsert(context.Background(), cred))
	// Reconnecting restores validity and clears the stored error.
	assert.True(t, cred.IsValid)
	assert.Nil(t, cred.LastError)
	assert.NotNil(t, cred.LastValidatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialMarkInvalid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE social_credentials SET is_valid=FALSE").
		WithArgs("token revoked", sqlmock.AnyArg(), "42", "facebook").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCredentialRepository(db)
	err = repo.MarkInvalid(context.Background(), "42", model.PlatformFacebook, "token revoked")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
