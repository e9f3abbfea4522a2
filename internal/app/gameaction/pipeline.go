package gameaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skirmish/internal/app/ports"
	"skirmish/internal/app/visibility"
	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

type SubmitInput struct {
	Req     Request
	Encoded tuple.Tuple
	At      time.Time
}

type SubmitView struct {
	Game   ClientGame
	Viewer board.PlayerID
	Vision board.Vision
}

type SubmitPlan struct {
	Request        ports.SimRequest
	Reply          ports.SimReply
	Response       action.Response
	Initial        board.MapData
	GameState      action.GameState
	Effects        action.Effects
	EffectsChanged bool
	Next           ClientGame
}

type SubmitTmp struct {
	Labels  board.LabelSet
	Visible action.Response
	Timeout wire.Timeout
}

// SubmitContext carries one submission through the pipeline.
type SubmitContext struct {
	In   SubmitInput
	View SubmitView
	Plan SubmitPlan
	Tmp  SubmitTmp
}

func (s *Session) ValidateState(game ClientGame, req Request) (SubmitContext, error) {
	if req.Action == nil {
		return SubmitContext{}, invalidState("missing action")
	}
	if game.Ended {
		return SubmitContext{}, invalidState("game %s has ended", game.ID)
	}
	_, isStart := req.Action.(action.StartAction)
	switch {
	case isStart && game.LastAction != nil:
		return SubmitContext{}, invalidState("game %s already started", game.ID)
	case !isStart && game.LastAction == nil:
		return SubmitContext{}, invalidState("game %s has not started", game.ID)
	}
	current := game.State.CurrentPlayerID()
	if req.Actor != board.Neutral && req.Actor != current {
		return SubmitContext{}, invalidState("player %d is not the current player %d", req.Actor, current)
	}
	enc, err := action.EncodeAction(req.Action)
	if err != nil {
		return SubmitContext{}, err
	}

	viewer := req.Actor
	if viewer == board.Neutral {
		viewer = current
	}
	return SubmitContext{
		In: SubmitInput{Req: req, Encoded: enc},
		View: SubmitView{
			Game:   game,
			Viewer: viewer,
			Vision: board.NewVision(game.State, viewer),
		},
	}, nil
}

func (s *Session) Dispatch(ctx context.Context, sc *SubmitContext) error {
	effects, err := action.EncodeEffects(sc.View.Game.Effects)
	if err != nil {
		return err
	}
	sc.Plan.Request = ports.SimRequest{
		Map:     sc.View.Game.State.ToPlain(),
		Effects: effects,
		Action:  sc.In.Encoded,
		Mutator: s.Mutator,
	}
	reply, err := s.Simulator.Simulate(ctx, sc.Plan.Request)
	if err != nil {
		if errors.Is(err, ports.ErrMalformedReply) || errors.Is(err, ports.ErrSimulatorUnavailable) {
			return protocolViolation("reply", err)
		}
		return err
	}
	sc.Plan.Reply = reply
	return nil
}

func (s *Session) DecodeReply(sc *SubmitContext) error {
	reply := sc.Plan.Reply
	if len(reply.Response) == 0 {
		return protocolViolation("response", errors.New("missing primary response"))
	}
	resp, err := action.DecodeResponse(reply.Response)
	if err != nil {
		return protocolViolation("response", err)
	}
	initial, err := board.FromPlain(reply.Map)
	if err != nil {
		return protocolViolation("map", err)
	}
	gs, err := action.DecodeGameState(initial, reply.GameState)
	if err != nil {
		return protocolViolation("game state", err)
	}
	sc.Plan.Response = resp
	sc.Plan.Initial = initial
	sc.Plan.GameState = gs
	sc.Plan.Effects = sc.View.Game.Effects
	if reply.HasEffects {
		effects, err := action.DecodeEffects(reply.Effects)
		if err != nil {
			return protocolViolation("effects", err)
		}
		sc.Plan.Effects = effects
		sc.Plan.EffectsChanged = true
	}
	return nil
}

// RunHook lets OnGameAction rewrite the cascade. The hook sees the last
// cascade step, or the primary response and its map when the cascade is
// empty. Hidden labels are taken from that step before the hook runs. A
// rewritten cascade must still chain from the primary map.
func (s *Session) RunHook(ctx context.Context, sc *SubmitContext) error {
	last, active := sc.Plan.GameState.Last(sc.Plan.Response, sc.Plan.Initial)
	sc.Tmp.Labels = visibility.HiddenLabelsOf(active)
	if s.OnGameAction == nil {
		return nil
	}
	gs, err := s.OnGameAction(ctx, sc.Plan.GameState, active, last)
	if err != nil {
		return fmt.Errorf("game action hook: %w", err)
	}
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("game action hook: %w", err)
	}
	if len(gs) > 0 && !gs[0].Previous.Equal(sc.Plan.Initial) {
		return fmt.Errorf("game action hook: %w: first step does not start at the primary map", action.ErrBrokenChain)
	}
	enc, err := action.EncodeGameState(gs)
	if err != nil {
		return fmt.Errorf("game action hook: %w", err)
	}
	sc.Plan.GameState = gs
	sc.Plan.Reply.GameState = enc
	return nil
}

// Redact prepares the primary response for the submitting viewer: the hidden
// labels collected by RunHook are dropped and an EndTurn is reduced to what
// the viewer may know.
func (s *Session) Redact(sc *SubmitContext) {
	sc.Tmp.Visible = visibility.VisiblePrimary(sc.Plan.Response, sc.Plan.Initial, sc.View.Vision, sc.Tmp.Labels)
}

// Respond builds the next snapshot and the submitting viewer's payload. It
// runs before Commit so that nothing is committed that cannot be reported.
func (s *Session) Respond(sc *SubmitContext) (Outcome, error) {
	game := sc.View.Game
	_, final := sc.Plan.GameState.Last(sc.Plan.Response, sc.Plan.Initial)
	next := ClientGame{
		ID:         game.ID,
		State:      final,
		Effects:    sc.Plan.Effects,
		LastAction: sc.In.Req.Action,
		Ended:      action.EndsGame(sc.Plan.Response, sc.Plan.GameState),
		Version:    game.Version + 1,
		UpdatedAt:  sc.In.At,
	}
	sc.Plan.Next = next

	sc.Tmp.Timeout = wire.TurnTimeout(s.TurnTimeout, sc.In.At, next.Ended)

	encoded, err := wire.EncodeGameActionResponse(game.State, sc.Plan.Initial, sc.View.Vision,
		sc.Plan.GameState, sc.Tmp.Timeout, sc.Tmp.Visible, sc.Tmp.Labels)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode response: %w", err)
	}
	payload, err := wire.DecodeGameActionResponse(encoded)
	if err != nil {
		return Outcome{}, fmt.Errorf("decode own response: %w", err)
	}
	return Outcome{
		GameID:   game.ID,
		Seq:      next.Version,
		Viewer:   sc.View.Viewer,
		Response: sc.Tmp.Visible,
		Encoded:  encoded,
		Payload:  payload,
		State:    sc.View.Vision.Apply(final),
		Ended:    next.Ended,
	}, nil
}

// Commit persists the submission and swaps the in-memory snapshot. The
// replay archive is written after the transaction; a failure there is
// reported but does not undo the commit.
func (s *Session) Commit(ctx context.Context, sc *SubmitContext) error {
	next := sc.Plan.Next
	if s.Games != nil {
		persist := func(txCtx context.Context) error {
			rec := ports.GameRecord{
				GameID:     next.ID,
				Map:        next.State,
				Effects:    next.Effects,
				LastAction: sc.In.Encoded,
				Ended:      next.Ended,
				Version:    next.Version,
				UpdatedAt:  next.UpdatedAt,
			}
			if err := s.Games.SaveWithVersion(txCtx, rec, sc.View.Game.Version); err != nil {
				return err
			}
			if s.Log == nil {
				return nil
			}
			return s.Log.Append(txCtx, ports.ActionLogRecord{
				GameID:    next.ID,
				Seq:       next.Version,
				Actor:     sc.View.Viewer,
				Action:    sc.In.Encoded,
				Previous:  sc.View.Game.State,
				Reply:     sc.Plan.Reply,
				AppliedAt: sc.In.At,
			})
		}
		var err error
		if s.TxManager != nil {
			err = s.TxManager.RunInTx(ctx, persist)
		} else {
			err = persist(ctx)
		}
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	if s.Archive != nil {
		entry := ports.ReplayEntry{
			GameID: next.ID,
			Seq:    next.Version,
			Req:    sc.Plan.Request,
			Reply:  sc.Plan.Reply,
			At:     sc.In.At,
		}
		if err := s.Archive.Append(ctx, entry); err != nil {
			s.capture(ctx, fmt.Errorf("archive game=%s seq=%d: %w", next.ID, next.Version, err))
		}
	}
	s.swap(next)
	return nil
}

// Publish sends every other observer its own encoding of the submission.
func (s *Session) Publish(ctx context.Context, sc *SubmitContext) {
	if s.Hub == nil {
		return
	}
	game := sc.View.Game
	primary := action.Step{Response: sc.Plan.Response, Previous: game.State, Current: sc.Plan.Initial}
	for _, viewer := range s.Hub.Viewers(game.ID) {
		if viewer == sc.View.Viewer {
			continue
		}
		enc, err := wire.EncodeForObserver(game.State, board.NewVision(game.State, viewer), primary,
			sc.Plan.GameState, sc.Tmp.Timeout, sc.Tmp.Labels)
		if err != nil {
			s.capture(ctx, fmt.Errorf("encode for viewer %d: %w", viewer, err))
			continue
		}
		body, err := json.Marshal(enc)
		if err != nil {
			s.capture(ctx, fmt.Errorf("marshal for viewer %d: %w", viewer, err))
			continue
		}
		if err := s.Hub.Publish(ctx, game.ID, viewer, body); err != nil {
			s.capture(ctx, fmt.Errorf("publish to viewer %d: %w", viewer, err))
		}
	}
}

func (s *Session) capture(ctx context.Context, err error) {
	if s.Errors != nil {
		s.Errors.Capture(ctx, err)
	}
}
