package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

const (
	stopReasonUnknownAction    = "Unknown action type."
	stopReasonInventoryFull    = "Your inventory is full."
	stopReasonMissingMaterials = "Required materials missing."
)

// Worker drives one queue record to a terminal status, one tick per
// transaction. A crash between ticks leaves the record at a valid
// intermediate completed count for the reaper to judge later.
type Worker struct {
	TxManager ports.TxManager
	Records   ports.QueueRecordRepository
	Effects   ports.EffectProvider
	Economy   ports.Inventory
	Metrics   ports.QueueMetrics
	Tuning    action.Tuning
	Now       func() time.Time
	// Sleep waits between ticks; tests replace it. Defaults to a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Roll returns a value in [0,n) for loot picks. Defaults to rand.Intn.
	Roll func(n int) int
}

// Run ticks the record until it reaches a terminal status. Errors out only on
// repository failures; every per-tick business failure is folded into the
// record as status=failed so one bad queue never takes down the lane.
func (w Worker) Run(ctx context.Context, queueID string) error {
	if queueID == "" {
		return ErrInvalidRequest
	}
	for {
		done, wait, err := w.tick(ctx, queueID)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := w.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tick performs one unit of the queued action inside its own transaction.
// The status re-read at the top is the cooperative cancellation point.
func (w Worker) tick(ctx context.Context, queueID string) (done bool, wait time.Duration, err error) {
	err = w.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := w.Records.GetByID(txCtx, queueID)
		if err != nil {
			return err
		}
		if rec.Status != action.StatusActive {
			done = true
			return nil
		}

		tuning, ok := w.Tuning.For(rec.Action)
		if !ok {
			done = true
			return w.finish(txCtx, rec, action.StatusFailed, stopReasonUnknownAction)
		}

		if len(tuning.Inputs) > 0 {
			if err := w.consumeInputs(txCtx, rec, tuning.Inputs); err != nil {
				if errors.Is(err, ports.ErrNotFound) {
					done = true
					return w.finish(txCtx, rec, action.StatusFailed, stopReasonMissingMaterials)
				}
				return err
			}
		}

		item, quantity := tuning.RollLoot(w.roll())
		if quantity > 0 {
			quantity = w.applyYieldBonus(txCtx, rec, quantity)
			if w.Economy != nil {
				if err := w.Economy.AddItem(txCtx, rec.PlayerID, item, quantity); err != nil {
					if errors.Is(err, ports.ErrInventoryFull) {
						done = true
						return w.finish(txCtx, rec, action.StatusFailed, stopReasonInventoryFull)
					}
					return err
				}
			}
		}
		if tuning.GoldPerTick > 0 && w.Economy != nil {
			if err := w.Economy.CreditGold(txCtx, rec.PlayerID, tuning.GoldPerTick); err != nil {
				return err
			}
		}

		rec.Completed++
		rec.TotalXP += tuning.XPPerTick
		rec.TotalQuantity += quantity
		rec.UpdatedAt = w.now()
		if rec.Completed >= rec.Total {
			rec.Completed = rec.Total
			done = true
			rec.Status = action.StatusCompleted
			if err := w.Records.Update(txCtx, rec); err != nil {
				return err
			}
			if w.Metrics != nil {
				w.Metrics.RecordTick(rec.Action)
				w.Metrics.RecordFinished(action.StatusCompleted)
			}
			return nil
		}

		if err := w.Records.Update(txCtx, rec); err != nil {
			return err
		}
		if w.Metrics != nil {
			w.Metrics.RecordTick(rec.Action)
		}
		wait = w.tickWait(txCtx, rec, tuning)
		return nil
	})
	return done, wait, err
}

// consumeInputs debits the recipe materials for one tick up front.
func (w Worker) consumeInputs(ctx context.Context, rec action.Record, inputs []action.ItemAmount) error {
	if w.Economy == nil {
		return nil
	}
	for _, input := range inputs {
		held, err := w.Economy.HasItem(ctx, rec.PlayerID, input.Item, input.Amount)
		if err != nil {
			return err
		}
		if !held {
			return ports.ErrNotFound
		}
	}
	for _, input := range inputs {
		if err := w.Economy.RemoveItem(ctx, rec.PlayerID, input.Item, input.Amount); err != nil {
			return err
		}
	}
	return nil
}

// applyYieldBonus grows the tick's quantity by the player's summed yield
// effect percentage. Only gathering has a yield effect today.
func (w Worker) applyYieldBonus(ctx context.Context, rec action.Record, quantity int) int {
	if w.Effects == nil || rec.Action != action.TypeGathering {
		return quantity
	}
	bonus, err := w.Effects.Effect(ctx, rec.PlayerID, ports.EffectGatheringYield)
	if err != nil || bonus <= 0 {
		return quantity
	}
	return quantity + quantity*bonus/100
}

// tickWait derives the gap before the next tick from the action's base
// interval minus the player's cooldown effect percentage, floored at half the
// base so effects cannot collapse the interval to zero.
func (w Worker) tickWait(ctx context.Context, rec action.Record, tuning action.TypeTuning) time.Duration {
	base := tuning.TickInterval()
	if w.Effects == nil {
		return base
	}
	key := ""
	switch rec.Action {
	case action.TypeGathering:
		key = ports.EffectGatheringCooldown
	case action.TypeCrafting:
		key = ports.EffectCraftingCooldown
	case action.TypeTravel:
		key = ports.EffectTravelSpeed
	}
	if key == "" {
		return base
	}
	reduction, err := w.Effects.Effect(ctx, rec.PlayerID, key)
	if err != nil || reduction <= 0 {
		return base
	}
	wait := base - base*time.Duration(reduction)/100
	if wait < base/2 {
		wait = base / 2
	}
	return wait
}

func (w Worker) finish(ctx context.Context, rec action.Record, status action.Status, reason string) error {
	rec.Status = status
	rec.StopReason = reason
	rec.UpdatedAt = w.now()
	if err := w.Records.Update(ctx, rec); err != nil {
		return fmt.Errorf("finish queue %s: %w", rec.ID, err)
	}
	if w.Metrics != nil {
		w.Metrics.RecordFinished(status)
	}
	return nil
}

func (w Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w Worker) roll() func(n int) int {
	if w.Roll != nil {
		return w.Roll
	}
	return rand.Intn
}

func (w Worker) sleep(ctx context.Context, d time.Duration) error {
	if w.Sleep != nil {
		return w.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
