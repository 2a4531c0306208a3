package model

import "time"

// TierName is a subscription tier a user account is attached to.
type TierName string

const (
	TierFree     TierName = "free"
	TierPro      TierName = "pro"
	TierBusiness TierName = "business"
)

// ActionKind is a rate-limited action category.
type ActionKind string

const (
	ActionPostCreate        ActionKind = "post_create"
	ActionCredentialConnect ActionKind = "credential_connect"
)

// Limit is one ceiling inside a fixed-size rolling-reset window.
type Limit struct {
	Ceiling int           `json:"ceiling"`
	Window  time.Duration `json:"window"`
}

// Tier bundles the numeric ceilings for one subscription level.
type Tier struct {
	Name   TierName             `json:"name"`
	Limits map[ActionKind]Limit `json:"limits"`
}

// DefaultTiers returns the built-in tier table. Configuration may override
// individual ceilings but the shape stays fixed.
func DefaultTiers() map[TierName]Tier {
	day := 24 * time.Hour
	return map[TierName]Tier{
		TierFree: {
			Name: TierFree,
			Limits: map[ActionKind]Limit{
				ActionPostCreate:        {Ceiling: 10, Window: day},
				ActionCredentialConnect: {Ceiling: 10, Window: day},
			},
		},
		TierPro: {
			Name: TierPro,
			Limits: map[ActionKind]Limit{
				ActionPostCreate:        {Ceiling: 100, Window: day},
				ActionCredentialConnect: {Ceiling: 50, Window: day},
			},
		},
		TierBusiness: {
			Name: TierBusiness,
			Limits: map[ActionKind]Limit{
				ActionPostCreate:        {Ceiling: 1000, Window: day},
				ActionCredentialConnect: {Ceiling: 200, Window: day},
			},
		},
	}
}

// TiersWithOverrides applies configured ceiling overrides on top of the
// built-in table. Unknown tier or action names are ignored and zero values
// keep the default, so a partial override block is safe.
func TiersWithOverrides(overrides map[TierName]map[ActionKind]Limit) map[TierName]Tier {
	tiers := DefaultTiers()
	for name, limits := range overrides {
		tier, ok := tiers[name]
		if !ok {
			continue
		}
		for action, override := range limits {
			limit, ok := tier.Limits[action]
			if !ok {
				continue
			}
			if override.Ceiling > 0 {
				limit.Ceiling = override.Ceiling
			}
			if override.Window > 0 {
				limit.Window = override.Window
			}
			tier.Limits[action] = limit
		}
	}
	return tiers
}

// ParseTier maps an account's tier string to a known tier, defaulting to free.
func ParseTier(s string) TierName {
	switch TierName(s) {
	case TierPro:
		return TierPro
	case TierBusiness:
		return TierBusiness
	default:
		return TierFree
	}
}
