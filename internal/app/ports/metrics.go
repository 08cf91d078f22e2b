package ports

import "github.com/djasnowski/myrefell-sub002/internal/domain/action"

type QueueMetrics interface {
	RecordStarted(actionType action.Type)
	RecordTick(actionType action.Type)
	RecordFinished(status action.Status)
	RecordReaped(count int)
}
