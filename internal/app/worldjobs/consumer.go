package worldjobs

import (
	"context"
	"fmt"
	"log"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
)

// Consumer handles the world-wide jobs the calendar fans out each week.
// Every job is idempotent at the job level; at-least-once delivery from the
// task layer only repeats the same population rules.
type Consumer struct {
	NPCs ports.NPCRoster
}

func (c Consumer) Handle(ctx context.Context, task ports.Task) error {
	if c.NPCs == nil {
		return fmt.Errorf("worldjobs: no npc roster wired")
	}
	switch task.Kind {
	case ports.TaskKindNPCAging:
		aged, died, err := c.NPCs.AgeNPCs(ctx)
		if err != nil {
			return fmt.Errorf("npc aging: %w", err)
		}
		log.Printf("worldjobs: aged %d npcs, %d died of old age", aged, died)
		return nil
	case ports.TaskKindNPCReproduction:
		born, err := c.NPCs.BreedNPCs(ctx)
		if err != nil {
			return fmt.Errorf("npc reproduction: %w", err)
		}
		log.Printf("worldjobs: %d npcs born", born)
		return nil
	case ports.TaskKindFoodConsumption:
		consumed, starved, err := c.NPCs.ConsumeFood(ctx)
		if err != nil {
			return fmt.Errorf("food consumption: %w", err)
		}
		log.Printf("worldjobs: consumed %d food, %d npcs starving", consumed, starved)
		return nil
	default:
		return fmt.Errorf("worldjobs: unknown task kind %q", task.Kind)
	}
}
