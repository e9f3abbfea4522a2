package ports

import "skirmish/internal/domain/action"

type ActionMetrics interface {
	RecordSuccess(responseType action.ResponseType)
	RecordConflict()
	RecordFailure()
}
