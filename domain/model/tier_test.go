package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiersWithOverrides(t *testing.T) {
	tiers := TiersWithOverrides(map[TierName]map[ActionKind]Limit{
		TierFree: {
			ActionPostCreate: {Ceiling: 3},
		},
		TierPro: {
			ActionCredentialConnect: {Ceiling: 75, Window: time.Hour},
		},
		"enterprise": {
			ActionPostCreate: {Ceiling: 9999},
		},
	})

	free := tiers[TierFree].Limits[ActionPostCreate]
	assert.Equal(t, 3, free.Ceiling)
	assert.Equal(t, 24*time.Hour, free.Window) // zero override keeps the default window

	pro := tiers[TierPro].Limits[ActionCredentialConnect]
	assert.Equal(t, 75, pro.Ceiling)
	assert.Equal(t, time.Hour, pro.Window)

	// Untouched entries keep their defaults; unknown tiers are dropped.
	assert.Equal(t, 100, tiers[TierPro].Limits[ActionPostCreate].Ceiling)
	_, ok := tiers["enterprise"]
	assert.False(t, ok)
}

func TestTiersWithOverridesEmptyMatchesDefaults(t *testing.T) {
	defaults := DefaultTiers()
	tiers := TiersWithOverrides(nil)
	require.Equal(t, defaults, tiers)
}
