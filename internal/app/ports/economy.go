package ports

import "context"

// Inventory is the economy collaborator the worker credits rewards through.
// AddItem returns ErrInventoryFull when the player cannot hold the item;
// RemoveItem returns ErrNotFound when the player lacks the amount.
type Inventory interface {
	AddItem(ctx context.Context, playerID, item string, quantity int) error
	RemoveItem(ctx context.Context, playerID, item string, quantity int) error
	HasItem(ctx context.Context, playerID, item string, quantity int) (bool, error)
	CreditGold(ctx context.Context, playerID string, amount int) error
	DebitGold(ctx context.Context, playerID string, amount int) error
}
