package ports

import "context"

// Lanes partition background work so a backlog in one class never starves
// another. Queue-worker runs and world-wide calendar jobs are isolated.
const (
	LaneQueue = "queue"
	LaneWorld = "world"
)

const (
	TaskKindRunQueue        = "run_queue"
	TaskKindFoodConsumption = "food_consumption"
	TaskKindNPCAging        = "npc_aging"
	TaskKindNPCReproduction = "npc_reproduction"
)

type Task struct {
	Kind    string
	Payload map[string]any
}

// QueueID reads the queue-record id out of a run_queue task payload.
func (t Task) QueueID() string {
	if t.Payload == nil {
		return ""
	}
	id, _ := t.Payload["queue_id"].(string)
	return id
}

// TaskDispatcher is fire-and-forget, at-least-once task delivery. Enqueue
// returns once the task is accepted onto the lane, not once it ran.
type TaskDispatcher interface {
	Enqueue(ctx context.Context, lane string, task Task) error
}
