package queue

import (
	"context"
	"testing"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

func testWorker(records *stubRecordRepo, economy *stubEconomy) Worker {
	return Worker{
		TxManager: stubTxManager{},
		Records:   records,
		Economy:   economy,
		Tuning:    action.DefaultTuning(),
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
		Sleep:     noSleep,
		Roll:      func(n int) int { return 0 },
	}
}

func seedActive(records *stubRecordRepo, id string, actionType action.Type, total int) {
	records.byID[id] = action.Record{
		ID:       id,
		PlayerID: "player-1",
		Action:   actionType,
		Status:   action.StatusActive,
		Total:    total,
	}
}

func TestWorkerRunsToCompletion(t *testing.T) {
	records := newStubRecordRepo()
	economy := newStubEconomy()
	seedActive(records, "q-1", action.TypeGathering, 5)
	metrics := newStubMetrics()
	w := testWorker(records, economy)
	w.Metrics = metrics

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Status != action.StatusCompleted {
		t.Fatalf("expected completed, got %q", rec.Status)
	}
	if rec.Completed != 5 {
		t.Fatalf("expected completed=5, got %d", rec.Completed)
	}
	if rec.TotalXP != 5*action.DefaultTuning().Actions[action.TypeGathering].XPPerTick {
		t.Fatalf("unexpected total xp %d", rec.TotalXP)
	}
	// roll 0 lands on the first loot entry every tick
	if rec.TotalQuantity == 0 || economy.items["wood"] == 0 {
		t.Fatalf("gathering ticks must credit loot, got qty=%d items=%v", rec.TotalQuantity, economy.items)
	}
	if metrics.ticks != 5 || metrics.finished[action.StatusCompleted] != 1 {
		t.Fatalf("unexpected metrics ticks=%d finished=%v", metrics.ticks, metrics.finished)
	}
}

func TestWorkerObservesCancellation(t *testing.T) {
	records := newStubRecordRepo()
	seedActive(records, "q-1", action.TypeTravel, 100)
	w := testWorker(records, newStubEconomy())
	ticks := 0
	w.Sleep = func(context.Context, time.Duration) error {
		ticks++
		if ticks == 3 {
			rec := records.byID["q-1"]
			rec.Status = action.StatusCancelled
			rec.StopReason = "Cancelled by player."
			records.byID["q-1"] = rec
		}
		return nil
	}

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Status != action.StatusCancelled {
		t.Fatalf("worker must not overwrite a cancelled record, got %q", rec.Status)
	}
	if rec.Completed != 3 {
		t.Fatalf("worker should have stopped after the cancel became visible, completed=%d", rec.Completed)
	}
}

func TestWorkerCompletedNeverExceedsTotal(t *testing.T) {
	records := newStubRecordRepo()
	seedActive(records, "q-1", action.TypeCombat, 2)
	w := testWorker(records, newStubEconomy())

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	// a redundant dispatch of the same queue id is a no-op
	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Completed != 2 || rec.Status != action.StatusCompleted {
		t.Fatalf("terminal record must not move, got %+v", rec)
	}
}

func TestWorkerInventoryFullFailsRecord(t *testing.T) {
	records := newStubRecordRepo()
	economy := newStubEconomy()
	economy.addErr = ports.ErrInventoryFull
	seedActive(records, "q-1", action.TypeGathering, 10)
	metrics := newStubMetrics()
	w := testWorker(records, economy)
	w.Metrics = metrics

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Status != action.StatusFailed {
		t.Fatalf("expected failed, got %q", rec.Status)
	}
	if rec.StopReason != "Your inventory is full." {
		t.Fatalf("unexpected stop reason %q", rec.StopReason)
	}
	if rec.Completed != 0 {
		t.Fatalf("the failing tick must not count as progress, completed=%d", rec.Completed)
	}
	if metrics.finished[action.StatusFailed] != 1 {
		t.Fatalf("expected one failed metric, got %v", metrics.finished)
	}
}

func TestWorkerCraftingConsumesInputs(t *testing.T) {
	records := newStubRecordRepo()
	economy := newStubEconomy()
	economy.items["wood"] = 6 // enough for 3 ticks at 2 wood each
	seedActive(records, "q-1", action.TypeCrafting, 3)
	w := testWorker(records, economy)

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Status != action.StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", rec.Status, rec.StopReason)
	}
	if economy.items["wood"] != 0 {
		t.Fatalf("crafting should have consumed all wood, left %d", economy.items["wood"])
	}
	if economy.items["plank"] != 3 {
		t.Fatalf("expected 3 planks, got %d", economy.items["plank"])
	}
}

func TestWorkerCraftingWithoutMaterialsFails(t *testing.T) {
	records := newStubRecordRepo()
	economy := newStubEconomy()
	economy.items["wood"] = 2 // one tick's worth
	seedActive(records, "q-1", action.TypeCrafting, 5)
	w := testWorker(records, economy)

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	rec := records.byID["q-1"]
	if rec.Status != action.StatusFailed {
		t.Fatalf("expected failed, got %q", rec.Status)
	}
	if rec.StopReason != "Required materials missing." {
		t.Fatalf("unexpected stop reason %q", rec.StopReason)
	}
	if rec.Completed != 1 {
		t.Fatalf("one tick should have landed before materials ran out, completed=%d", rec.Completed)
	}
}

func TestWorkerAppliesYieldEffect(t *testing.T) {
	records := newStubRecordRepo()
	economy := newStubEconomy()
	seedActive(records, "q-1", action.TypeGathering, 1)
	w := testWorker(records, economy)
	w.Effects = stubEffects{byKey: map[string]int{ports.EffectGatheringYield: 100}}
	w.Tuning = action.Tuning{Actions: map[action.Type]action.TypeTuning{
		action.TypeGathering: {
			TickSeconds: 5,
			XPPerTick:   2,
			Loot:        []action.LootEntry{{Item: "wood", Weight: 1, Min: 2, Max: 2}},
		},
	}}

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if economy.items["wood"] != 4 {
		t.Fatalf("+100%% yield on 2 wood should credit 4, got %d", economy.items["wood"])
	}
}

func TestWorkerCooldownEffectShortensWait(t *testing.T) {
	records := newStubRecordRepo()
	seedActive(records, "q-1", action.TypeGathering, 2)
	w := testWorker(records, newStubEconomy())
	w.Effects = stubEffects{byKey: map[string]int{ports.EffectGatheringCooldown: 25}}
	var waits []time.Duration
	w.Sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	base := action.DefaultTuning().Actions[action.TypeGathering].TickInterval()
	if len(waits) != 1 {
		t.Fatalf("expected one inter-tick wait, got %d", len(waits))
	}
	want := base - base/4
	if waits[0] != want {
		t.Fatalf("25%% cooldown reduction should wait %s, got %s", want, waits[0])
	}
}

func TestWorkerUnknownActionFailsRecord(t *testing.T) {
	records := newStubRecordRepo()
	seedActive(records, "q-1", "juggling", 3)
	w := testWorker(records, newStubEconomy())

	if err := w.Run(context.Background(), "q-1"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	rec := records.byID["q-1"]
	if rec.Status != action.StatusFailed || rec.StopReason != "Unknown action type." {
		t.Fatalf("unexpected record %+v", rec)
	}
}
