package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/cipher"
	"social-scheduler/infrastructure/logger"
)

const (
	// expiryBuffer refreshes tokens this far ahead of their expiry so a token
	// never dies mid-publish.
	expiryBuffer = 15 * time.Minute
	// validationTrustWindow skips the network validation round trip when the
	// credential was confirmed good recently.
	validationTrustWindow = time.Hour

	networkAttempts = 2
	networkRetryGap = 2 * time.Second
)

// ITokenLifecycle owns stored credentials end to end: connecting, producing a
// usable plaintext access token on demand, and invalidating.
type ITokenLifecycle interface {
	Connect(ctx context.Context, userID string, req dto.ConnectRequest) (*dto.CredentialStatus, error)
	// EnsureUsableToken returns a plaintext access token ready for an adapter
	// call, validating or refreshing first when needed.
	EnsureUsableToken(ctx context.Context, userID string, platform model.Platform) (string, error)
	Disconnect(ctx context.Context, userID string, platform model.Platform) error
	Invalidate(ctx context.Context, userID string, platform model.Platform, reason string) error
	ListCredentials(ctx context.Context, userID string) ([]dto.CredentialStatus, error)
}

type TokenUsecase struct {
	creds    repository.ICredential
	adapters repository.AdapterResolver
	cipher   *cipher.TokenCipher
	now      func() time.Time
}

func NewTokenUsecase(creds repository.ICredential, adapters repository.AdapterResolver, c *cipher.TokenCipher) *TokenUsecase {
	return &TokenUsecase{creds: creds, adapters: adapters, cipher: c, now: time.Now}
}

func (u *TokenUsecase) Connect(ctx context.Context, userID string, req dto.ConnectRequest) (*dto.CredentialStatus, error) {
	platform, err := model.ParsePlatform(req.Platform)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	adapter, err := u.adapters.Resolve(platform)
	if err != nil {
		return nil, err
	}
	if err := adapter.ValidateToken(ctx, req.AccessToken); err != nil {
		if apperror.IsTransient(err) {
			return nil, err
		}
		return nil, apperror.Validation(fmt.Sprintf("%s rejected the provided token", platform))
	}

	cred := &model.SocialCredential{UserID: userID, Platform: platform}
	cred.AccessTokenCiphertext, err = u.cipher.Encrypt(req.AccessToken)
	if err != nil {
		return nil, err
	}
	if req.RefreshToken != "" {
		cred.RefreshTokenCiphertext, err = u.cipher.Encrypt(req.RefreshToken)
		if err != nil {
			return nil, err
		}
	}
	if req.ExpiresInSeconds > 0 {
		exp := u.now().Add(time.Duration(req.ExpiresInSeconds) * time.Second)
		cred.ExpiresAt = &exp
	}

	// Best effort; a profile lookup failure never blocks the connect.
	if profile, perr := adapter.GetUserProfile(ctx, req.AccessToken); perr == nil {
		cred.PlatformUserID = &profile.PlatformUserID
		cred.Username = &profile.Username
	} else {
		logger.GetLogger().WithField("platform", platform).Warnf("profile lookup failed: %v", perr)
	}

	if err := u.creds.Upsert(ctx, cred); err != nil {
		return nil, err
	}
	status := credentialStatus(cred)
	return &status, nil
}

// EnsureUsableToken implements the decision ladder: trust a recently validated
// token, otherwise validate over the network, otherwise refresh. Invalid
// credentials short-circuit to reconnect-required without any network call.
func (u *TokenUsecase) EnsureUsableToken(ctx context.Context, userID string, platform model.Platform) (string, error) {
	cred, err := u.creds.Get(ctx, userID, platform)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperror.NotConnected(platform, "account not connected")
		}
		return "", err
	}
	if !cred.IsValid {
		msg := "credential is invalid, reconnect required"
		if cred.LastError != nil {
			msg = *cred.LastError
		}
		return "", apperror.ReconnectRequired(platform, msg)
	}
	adapter, err := u.adapters.Resolve(platform)
	if err != nil {
		return "", err
	}
	access, err := u.cipher.Decrypt(cred.AccessTokenCiphertext)
	if err != nil {
		return "", fmt.Errorf("decrypting access token: %w", err)
	}

	now := u.now()
	if !cred.ExpiringWithin(expiryBuffer, now) {
		if cred.ValidatedWithin(validationTrustWindow, now) {
			return access, nil
		}
		verr := withRetry(ctx, networkAttempts, networkRetryGap, func() error {
			return adapter.ValidateToken(ctx, access)
		})
		if verr == nil {
			if merr := u.creds.MarkValidated(ctx, userID, platform); merr != nil {
				logger.GetLogger().Warnf("marking credential validated: %v", merr)
			}
			return access, nil
		}
		if apperror.IsTransient(verr) {
			return "", verr
		}
		// Token rejected; fall through to the refresh path.
	}

	return u.refresh(ctx, cred, adapter, access)
}

func (u *TokenUsecase) refresh(ctx context.Context, cred *model.SocialCredential, adapter repository.IPlatformAdapter, access string) (string, error) {
	material := access
	if !adapter.RefreshUsesAccessToken() {
		if cred.RefreshTokenCiphertext == "" {
			return "", u.markAndReconnect(ctx, cred, "no refresh token on file")
		}
		var err error
		material, err = u.cipher.Decrypt(cred.RefreshTokenCiphertext)
		if err != nil {
			return "", fmt.Errorf("decrypting refresh token: %w", err)
		}
	}

	var refreshed *repository.RefreshedToken
	err := withRetry(ctx, networkAttempts, networkRetryGap, func() error {
		var rerr error
		refreshed, rerr = adapter.RefreshToken(ctx, material)
		return rerr
	})
	if err != nil {
		if apperror.IsReconnectRequired(err) {
			return "", u.markAndReconnect(ctx, cred, "refresh rejected by platform")
		}
		return "", err
	}

	cred.AccessTokenCiphertext, err = u.cipher.Encrypt(refreshed.AccessToken)
	if err != nil {
		return "", err
	}
	if refreshed.RefreshToken != "" {
		cred.RefreshTokenCiphertext, err = u.cipher.Encrypt(refreshed.RefreshToken)
		if err != nil {
			return "", err
		}
	}
	if refreshed.ExpiresInSeconds > 0 {
		exp := u.now().Add(time.Duration(refreshed.ExpiresInSeconds) * time.Second)
		cred.ExpiresAt = &exp
	} else {
		cred.ExpiresAt = nil
	}
	if err := u.creds.Upsert(ctx, cred); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

func (u *TokenUsecase) markAndReconnect(ctx context.Context, cred *model.SocialCredential, reason string) error {
	if err := u.creds.MarkInvalid(ctx, cred.UserID, cred.Platform, reason); err != nil {
		logger.GetLogger().Warnf("marking credential invalid: %v", err)
	}
	return apperror.ReconnectRequired(cred.Platform, reason)
}

func (u *TokenUsecase) Disconnect(ctx context.Context, userID string, platform model.Platform) error {
	return u.Invalidate(ctx, userID, platform, "disconnected by user")
}

func (u *TokenUsecase) Invalidate(ctx context.Context, userID string, platform model.Platform, reason string) error {
	return u.creds.MarkInvalid(ctx, userID, platform, reason)
}

func (u *TokenUsecase) ListCredentials(ctx context.Context, userID string) ([]dto.CredentialStatus, error) {
	creds, err := u.creds.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CredentialStatus, 0, len(creds))
	for _, cred := range creds {
		out = append(out, credentialStatus(cred))
	}
	return out, nil
}

func credentialStatus(cred *model.SocialCredential) dto.CredentialStatus {
	return dto.CredentialStatus{
		Platform:        string(cred.Platform),
		Connected:       true,
		IsValid:         cred.IsValid,
		Username:        cred.Username,
		ExpiresAt:       cred.ExpiresAt,
		LastValidatedAt: cred.LastValidatedAt,
		LastError:       cred.LastError,
	}
}

var _ ITokenLifecycle = (*TokenUsecase)(nil)
