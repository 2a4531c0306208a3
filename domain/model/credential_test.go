package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiringWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	buffer := 15 * time.Minute

	noExpiry := &SocialCredential{}
	assert.False(t, noExpiry.ExpiringWithin(buffer, now))

	soon := now.Add(10 * time.Minute)
	assert.True(t, (&SocialCredential{ExpiresAt: &soon}).ExpiringWithin(buffer, now))

	later := now.Add(2 * time.Hour)
	assert.False(t, (&SocialCredential{ExpiresAt: &later}).ExpiringWithin(buffer, now))

	past := now.Add(-time.Minute)
	assert.True(t, (&SocialCredential{ExpiresAt: &past}).ExpiringWithin(buffer, now))
}

func TestValidatedWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	never := &SocialCredential{}
	assert.False(t, never.ValidatedWithin(window, now))

	recent := now.Add(-30 * time.Minute)
	assert.True(t, (&SocialCredential{LastValidatedAt: &recent}).ValidatedWithin(window, now))

	stale := now.Add(-2 * time.Hour)
	assert.False(t, (&SocialCredential{LastValidatedAt: &stale}).ValidatedWithin(window, now))
}
