// Package gameaction owns live games. Each Session accepts submissions in
// order, runs them through the simulator and commits the result.
package gameaction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
)

// Deps are the ports every session of a process shares. Only TxManager may
// be nil when Games is nil; everything else is optional.
type Deps struct {
	TxManager   ports.TxManager
	Games       ports.GameRepository
	Log         ports.ActionLogRepository
	Archive     ports.ReplayArchive
	Hub         ports.ObserverHub
	Errors      ports.ErrorSink
	Metrics     ports.ActionMetrics
	TurnTimeout time.Duration
	Now         func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Session serializes submissions for one game. Hooks must be set before the
// first submission.
type Session struct {
	Deps
	Simulator    ports.Simulator
	OnGameAction GameActionHook
	OnError      func(error)
	// Mutator names a rules mutator applied to every submission of this
	// game. Players cannot choose it.
	Mutator string
	// OnEnded runs once, after the commit that ends the game.
	OnEnded func(gameID string)

	mu    sync.RWMutex
	game  ClientGame
	queue taskQueue
}

func NewSession(game ClientGame, sim ports.Simulator, deps Deps) *Session {
	return &Session{Deps: deps, Simulator: sim, game: game}
}

func (s *Session) ID() string {
	return s.Game().ID
}

// Game returns the last committed snapshot.
func (s *Session) Game() ClientGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

func (s *Session) swap(next ClientGame) {
	s.mu.Lock()
	s.game = next
	s.mu.Unlock()
}

// SubmitAsync queues req behind every earlier submission. The submission
// runs to completion even if ctx is cancelled.
func (s *Session) SubmitAsync(ctx context.Context, req Request) *Pending {
	p := &Pending{done: make(chan struct{})}
	runCtx := context.WithoutCancel(ctx)
	settled := s.queue.enqueue(func() {
		p.result = s.execute(runCtx, req)
	})
	go func() {
		<-settled
		close(p.done)
	}()
	return p
}

// Submit queues req and waits for it to settle.
func (s *Session) Submit(ctx context.Context, req Request) Result {
	p := s.SubmitAsync(ctx, req)
	<-p.done
	return p.result
}

// Idle closes once every submission queued so far has settled.
func (s *Session) Idle() <-chan struct{} {
	return s.queue.idle()
}

func (s *Session) execute(ctx context.Context, req Request) (res Result) {
	game := s.Game()
	defer func() {
		if r := recover(); r != nil {
			res = s.fail(ctx, req, game, fmt.Errorf("panic: %v", r))
		}
	}()

	sc, err := s.ValidateState(game, req)
	if err != nil {
		return s.fail(ctx, req, game, err)
	}
	sc.In.At = s.now()
	if err := s.Dispatch(ctx, &sc); err != nil {
		return s.fail(ctx, req, game, err)
	}
	if err := s.DecodeReply(&sc); err != nil {
		return s.fail(ctx, req, game, err)
	}
	if err := s.RunHook(ctx, &sc); err != nil {
		return s.fail(ctx, req, game, err)
	}
	s.Redact(&sc)
	out, err := s.Respond(&sc)
	if err != nil {
		return s.fail(ctx, req, game, err)
	}
	if err := s.Commit(ctx, &sc); err != nil {
		return s.fail(ctx, req, game, err)
	}
	s.Publish(ctx, &sc)
	if sc.Plan.Next.Ended && s.OnEnded != nil {
		s.OnEnded(game.ID)
	}

	if s.Metrics != nil {
		s.Metrics.RecordSuccess(sc.Plan.Response.ResponseType())
	}
	hlog.CtxDebugf(ctx, "gameaction: committed game=%s seq=%d response=%s steps=%d",
		game.ID, sc.Plan.Next.Version, sc.Plan.Response.ResponseType(), len(sc.Plan.GameState))
	return Result{Self: &out}
}

func (s *Session) fail(ctx context.Context, req Request, game ClientGame, err error) Result {
	wrapped := &ActionExecutionError{Action: req.Action, Map: game.State, Err: err}
	hlog.CtxWarnf(ctx, "gameaction: submission failed game=%s err=%v", game.ID, err)
	if s.Errors != nil {
		s.Errors.Capture(ctx, wrapped)
	}
	if s.OnError != nil {
		s.OnError(wrapped)
	}
	if s.Metrics != nil {
		if errors.Is(err, ports.ErrConflict) {
			s.Metrics.RecordConflict()
		} else {
			s.Metrics.RecordFailure()
		}
	}
	if errors.Is(err, ports.ErrConflict) {
		s.reload(ctx)
	}
	return Result{Err: wrapped}
}

// reload replaces the in-memory snapshot after another writer won the
// version race.
func (s *Session) reload(ctx context.Context) {
	if s.Games == nil {
		return
	}
	rec, err := s.Games.Get(ctx, s.ID())
	if err != nil {
		hlog.CtxErrorf(ctx, "gameaction: reload game=%s err=%v", s.ID(), err)
		return
	}
	game, err := gameFromRecord(rec)
	if err != nil {
		hlog.CtxErrorf(ctx, "gameaction: reload game=%s err=%v", s.ID(), err)
		return
	}
	s.swap(game)
}

func gameFromRecord(rec ports.GameRecord) (ClientGame, error) {
	game := ClientGame{
		ID:        rec.GameID,
		State:     rec.Map,
		Effects:   rec.Effects,
		Ended:     rec.Ended,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Started() {
		a, err := action.DecodeAction(rec.LastAction)
		if err != nil {
			return ClientGame{}, fmt.Errorf("decode last action of %s: %w", rec.GameID, err)
		}
		game.LastAction = a
	}
	return game, nil
}
