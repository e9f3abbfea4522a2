package memory

import (
	"context"

	"skirmish/internal/app/ports"
)

type GameRepo struct {
	store *Store
}

func NewGameRepo(store *Store) GameRepo {
	return GameRepo{store: store}
}

func (r GameRepo) Create(ctx context.Context, game ports.GameRecord) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.games[game.GameID]; ok {
		return ports.ErrConflict
	}
	r.store.games[game.GameID] = game
	return nil
}

func (r GameRepo) Get(ctx context.Context, gameID string) (ports.GameRecord, error) {
	defer r.store.rlock(ctx)()
	game, ok := r.store.games[gameID]
	if !ok {
		return ports.GameRecord{}, ports.ErrNotFound
	}
	return game, nil
}

func (r GameRepo) SaveWithVersion(ctx context.Context, game ports.GameRecord, expectedVersion int64) error {
	defer r.store.lock(ctx)()
	current, ok := r.store.games[game.GameID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.games[game.GameID] = game
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.games[game.GameID] = game
	return nil
}
