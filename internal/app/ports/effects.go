package ports

import "context"

// Effect keys the queue worker consults. Values are additive percent deltas
// across every active source (blessings, beliefs) for the player.
const (
	EffectGatheringCooldown = "gathering_cooldown"
	EffectGatheringYield    = "gathering_yield"
	EffectCraftingCooldown  = "crafting_cooldown"
	EffectCombatPower       = "combat_power"
	EffectTravelSpeed       = "travel_speed"
)

type EffectProvider interface {
	// Effect returns the summed value for the key, 0 when nothing grants it.
	Effect(ctx context.Context, playerID, key string) (int, error)
}
