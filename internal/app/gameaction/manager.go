package gameaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// Manager maps game ids to live sessions. Every session gets its own
// simulator from NewSimulator so sessions never share an endpoint.
type Manager struct {
	Deps         Deps
	NewSimulator func(gameID string) ports.Simulator
	OnGameAction GameActionHook
	OnError      func(error)
	// Mutator is copied into every session; see Session.Mutator.
	Mutator string
	// OnEvict runs after an ended game has been dropped from the registry,
	// so per-game resources such as its simulator can be released.
	OnEvict func(gameID string)

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps, newSimulator func(gameID string) ports.Simulator) *Manager {
	return &Manager{Deps: deps, NewSimulator: newSimulator, sessions: make(map[string]*Session)}
}

// Create registers a new game that still needs its Start action.
func (m *Manager) Create(ctx context.Context, state board.MapData, effects action.Effects) (*Session, error) {
	if len(state.Players()) == 0 {
		return nil, invalidState("map has no players")
	}
	game := ClientGame{
		ID:        uuid.NewString(),
		State:     state,
		Effects:   effects,
		UpdatedAt: m.Deps.now(),
	}
	if m.Deps.Games != nil {
		rec := ports.GameRecord{
			GameID:    game.ID,
			Map:       game.State,
			Effects:   game.Effects,
			UpdatedAt: game.UpdatedAt,
		}
		if err := m.Deps.Games.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
	}
	s := m.newSession(game)
	m.mu.Lock()
	m.sessions[game.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the live session for gameID, loading it from the game
// repository when this process has not served it yet.
func (m *Manager) Get(ctx context.Context, gameID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[gameID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if m.Deps.Games == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	rec, err := m.Deps.Games.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return nil, err
	}
	game, err := gameFromRecord(rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[gameID]; ok {
		return s, nil
	}
	s = m.newSession(game)
	m.sessions[gameID] = s
	return s, nil
}

func (m *Manager) newSession(game ClientGame) *Session {
	s := NewSession(game, m.NewSimulator(game.ID), m.Deps)
	s.OnGameAction = m.OnGameAction
	s.OnError = m.OnError
	s.Mutator = m.Mutator
	s.OnEnded = m.evict
	return s
}

// evict drops an ended game. A later Get reloads it from the repository,
// where it only rejects submissions. Without a repository the session is
// the only copy and stays registered.
func (m *Manager) evict(gameID string) {
	if m.Deps.Games != nil {
		m.mu.Lock()
		delete(m.sessions, gameID)
		m.mu.Unlock()
		hlog.Debugf("gameaction: evicted ended game=%s", gameID)
	}
	if m.OnEvict != nil {
		m.OnEvict(gameID)
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
