package gameaction

import (
	"context"
	"time"

	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

// ClientGame is the committed snapshot a session serves from. It is replaced
// as a whole on every successful submission.
type ClientGame struct {
	ID      string
	State   board.MapData
	Effects action.Effects
	// LastAction is nil until Start has been accepted.
	LastAction action.Action
	Ended      bool
	Version    int64
	UpdatedAt  time.Time
}

type Request struct {
	// Actor must be the current player; board.Neutral submits on the
	// current player's behalf.
	Actor  board.PlayerID
	Action action.Action
}

// Outcome is what the submitting player gets back after a commit.
type Outcome struct {
	GameID string
	Seq    int64
	Viewer board.PlayerID
	// Response is the primary response as the viewer may see it.
	Response action.Response
	Encoded  tuple.Tuple
	Payload  wire.GameActionResponse
	// State is the committed map as the viewer sees it.
	State board.MapData
	Ended bool
}

// Result is the settled value of one submission: exactly one of Self and
// Err is set.
type Result struct {
	Self *Outcome
	Err  error
}

func (r Result) OK() bool {
	return r.Self != nil
}

// GameActionHook may rewrite the cascade before it is committed. active and
// resp are the last cascade step (its resulting map and its response), or
// the primary response and its map when the cascade is empty.
type GameActionHook func(ctx context.Context, gs action.GameState, active board.MapData, resp action.Response) (action.GameState, error)

// Pending is a submission that has been queued but may not have settled.
type Pending struct {
	done   chan struct{}
	result Result
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the submission settles or ctx ends. A ctx that ends
// first does not cancel the submission.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
