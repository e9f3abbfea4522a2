package memory

import (
	"context"
	"sync"

	"skirmish/internal/app/ports"
)

type Store struct {
	mu    sync.RWMutex
	games map[string]ports.GameRecord
	log   map[string][]ports.ActionLogRecord
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]ports.GameRecord),
		log:   make(map[string][]ports.ActionLogRecord),
	}
}

type txKeyType struct{}

var txKey = txKeyType{}

// lock takes the store lock unless ctx already runs inside RunInTx, which
// holds it for the whole transaction.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if ctx.Value(txKey) == s {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}
