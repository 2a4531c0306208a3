package repository

import (
	"context"
	"errors"

	"social-scheduler/domain/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ICredential is the encrypted credential store. Implementations persist
// ciphertext only; encryption and decryption happen in the token lifecycle
// manager.
type ICredential interface {
	// Get returns the credential for (userID, platform) or ErrNotFound.
	Get(ctx context.Context, userID string, platform model.Platform) (*model.SocialCredential, error)
	// Upsert overwrites token material for (userID, platform) and resets
	// IsValid=true, LastValidatedAt=now, LastError=nil.
	Upsert(ctx context.Context, cred *model.SocialCredential) error
	// MarkInvalid flags the credential for reconnect without touching the
	// stored token material.
	MarkInvalid(ctx context.Context, userID string, platform model.Platform, reason string) error
	// MarkValidated bumps LastValidatedAt after a successful remote check.
	MarkValidated(ctx context.Context, userID string, platform model.Platform) error
	ListByUser(ctx context.Context, userID string) ([]*model.SocialCredential, error)
}
