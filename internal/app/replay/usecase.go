package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skirmish/internal/app/ports"
	"skirmish/internal/app/visibility"
	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

var ErrInvalidRequest = errors.New("invalid replay request")

// UseCase rebuilds what a viewer received for every logged submission of a
// game.
type UseCase struct {
	Log ports.ActionLogRepository
	// TurnTimeout must match the live sessions' turn limit so the third
	// slot is rebuilt from each record's AppliedAt.
	TurnTimeout time.Duration
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.GameID) == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	records, err := u.Log.ListByGameID(ctx, req.GameID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		enc, err := EncodeRecord(rec, req.Viewer, u.TurnTimeout)
		if err != nil {
			return Response{}, fmt.Errorf("replay game=%s seq=%d: %w", rec.GameID, rec.Seq, err)
		}
		payload, err := wire.DecodeGameActionResponse(enc)
		if err != nil {
			return Response{}, fmt.Errorf("replay game=%s seq=%d: %w", rec.GameID, rec.Seq, err)
		}
		entries = append(entries, Entry{Seq: rec.Seq, Actor: rec.Actor, Encoded: enc, Payload: payload})
	}
	return Response{GameID: req.GameID, Viewer: req.Viewer, Entries: entries}, nil
}

// EncodeRecord encodes a logged submission for viewer: the submitter gets
// its primary response in slot 0, everyone else the observer form.
// turnTimeout rebuilds the deadline slot; zero omits it.
func EncodeRecord(rec ports.ActionLogRecord, viewer board.PlayerID, turnTimeout time.Duration) (tuple.Tuple, error) {
	resp, err := action.DecodeResponse(rec.Reply.Response)
	if err != nil {
		return nil, err
	}
	initial, err := board.FromPlain(rec.Reply.Map)
	if err != nil {
		return nil, err
	}
	gs, err := action.DecodeGameState(initial, rec.Reply.GameState)
	if err != nil {
		return nil, err
	}
	_, final := gs.Last(resp, initial)
	labels := visibility.HiddenLabelsOf(final)
	vision := board.NewVision(rec.Previous, viewer)
	timeout := wire.TurnTimeout(turnTimeout, rec.AppliedAt, action.EndsGame(resp, gs))
	if viewer == rec.Actor {
		visible := visibility.VisiblePrimary(resp, initial, vision, labels)
		return wire.EncodeGameActionResponse(rec.Previous, initial, vision, gs, timeout, visible, labels)
	}
	primary := action.Step{Response: resp, Previous: rec.Previous, Current: initial}
	return wire.EncodeForObserver(rec.Previous, vision, primary, gs, timeout, labels)
}
