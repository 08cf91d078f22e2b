package ports

import "context"

// NPCRoster is the world-population collaborator behind the calendar fan-out
// jobs. Each operation is idempotent at the job level: running it twice for
// the same world week is safe, just a double dose of the same rules.
type NPCRoster interface {
	// AgeNPCs adds one year to every npc and retires those past max age.
	AgeNPCs(ctx context.Context) (aged, died int, err error)
	// BreedNPCs spawns offspring from fertile pairs, clamped by settlement capacity.
	BreedNPCs(ctx context.Context) (born int, err error)
	// ConsumeFood debits one week of food per npc; npcs without food starve.
	ConsumeFood(ctx context.Context) (consumed, starved int, err error)
}
