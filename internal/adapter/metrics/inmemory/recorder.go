package inmemory

import (
	"sync"

	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
)

type Snapshot struct {
	QueuesStarted  uint64            `json:"queues_started"`
	TicksProcessed uint64            `json:"ticks_processed"`
	QueuesReaped   uint64            `json:"queues_reaped"`
	ByAction       map[string]uint64 `json:"by_action"`
	ByOutcome      map[string]uint64 `json:"by_outcome"`
}

type Recorder struct {
	mu        sync.Mutex
	started   uint64
	ticks     uint64
	reaped    uint64
	byAction  map[string]uint64
	byOutcome map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction:  map[string]uint64{},
		byOutcome: map[string]uint64{},
	}
}

func (r *Recorder) RecordStarted(actionType action.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	r.byAction[string(actionType)]++
}

func (r *Recorder) RecordTick(action.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *Recorder) RecordFinished(status action.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOutcome[string(status)]++
}

func (r *Recorder) RecordReaped(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reaped += uint64(count)
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		QueuesStarted:  r.started,
		TicksProcessed: r.ticks,
		QueuesReaped:   r.reaped,
		ByAction:       make(map[string]uint64, len(r.byAction)),
		ByOutcome:      make(map[string]uint64, len(r.byOutcome)),
	}
	for k, v := range r.byAction {
		out.ByAction[k] = v
	}
	for k, v := range r.byOutcome {
		out.ByOutcome[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
