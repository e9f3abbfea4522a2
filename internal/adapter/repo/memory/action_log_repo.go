package memory

import (
	"context"

	"skirmish/internal/app/ports"
)

type ActionLogRepo struct {
	store *Store
}

func NewActionLogRepo(store *Store) ActionLogRepo {
	return ActionLogRepo{store: store}
}

func (r ActionLogRepo) Append(ctx context.Context, record ports.ActionLogRecord) error {
	defer r.store.lock(ctx)()
	for _, existing := range r.store.log[record.GameID] {
		if existing.Seq == record.Seq {
			return ports.ErrConflict
		}
	}
	r.store.log[record.GameID] = append(r.store.log[record.GameID], record)
	return nil
}

// ListByGameID returns the oldest records first; limit <= 0 means all.
func (r ActionLogRepo) ListByGameID(ctx context.Context, gameID string, limit int) ([]ports.ActionLogRecord, error) {
	defer r.store.rlock(ctx)()
	records := r.store.log[gameID]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return append([]ports.ActionLogRecord(nil), records...), nil
}
