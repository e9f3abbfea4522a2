// Package inmemory counts submission outcomes for the /ops/kpi endpoint.
package inmemory

import (
	"sync/atomic"
	"time"

	"skirmish/internal/domain/action"
)

type Snapshot struct {
	Since          time.Time         `json:"since"`
	ActionTotal    uint64            `json:"action_total"`
	ActionSuccess  uint64            `json:"action_success"`
	ActionConflict uint64            `json:"action_conflict"`
	ActionFailure  uint64            `json:"action_failure"`
	SuccessRate    float64           `json:"success_rate"`
	ByResponseType map[string]uint64 `json:"by_response_type"`
}

// Recorder is safe for concurrent use; every counter is lock free.
type Recorder struct {
	since    time.Time
	success  atomic.Uint64
	conflict atomic.Uint64
	failure  atomic.Uint64
	// indexed by action.ResponseType
	byType [256]atomic.Uint64
}

func NewRecorder() *Recorder {
	return &Recorder{since: time.Now().UTC()}
}

func (r *Recorder) RecordSuccess(responseType action.ResponseType) {
	r.success.Add(1)
	r.byType[responseType].Add(1)
}

func (r *Recorder) RecordConflict() { r.conflict.Add(1) }

func (r *Recorder) RecordFailure() { r.failure.Add(1) }

func (r *Recorder) Snapshot() Snapshot {
	out := Snapshot{
		Since:          r.since,
		ActionSuccess:  r.success.Load(),
		ActionConflict: r.conflict.Load(),
		ActionFailure:  r.failure.Load(),
		ByResponseType: map[string]uint64{},
	}
	out.ActionTotal = out.ActionSuccess + out.ActionConflict + out.ActionFailure
	if out.ActionTotal > 0 {
		out.SuccessRate = float64(out.ActionSuccess) / float64(out.ActionTotal)
	}
	for i := range r.byType {
		if n := r.byType[i].Load(); n > 0 {
			out.ByResponseType[action.ResponseType(i).String()] = n
		}
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
