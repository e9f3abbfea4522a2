package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

var (
	ErrMalformedReply = errors.New("malformed simulator reply")
	// ErrSimulatorUnavailable means the request never got a reply: the
	// endpoint broke and must be recreated.
	ErrSimulatorUnavailable = errors.New("simulator unavailable")
)

// Simulator is the authoritative computation boundary. The acting player is
// always the current player of the request map.
type Simulator interface {
	Simulate(ctx context.Context, req SimRequest) (SimReply, error)
}

// SimRequest travels as [map, effects, action, mutator].
type SimRequest struct {
	Map     board.PlainMap
	Effects tuple.Tuple
	Action  tuple.Tuple
	Mutator string
}

func (r SimRequest) MarshalJSON() ([]byte, error) {
	var mutator any
	if r.Mutator != "" {
		mutator = r.Mutator
	}
	return json.Marshal([4]any{r.Map, tuple.List(r.Effects), r.Action, mutator})
}

func (r *SimRequest) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) < 3 {
		return fmt.Errorf("simulator request: expected at least 3 slots, got %d", len(raw))
	}
	out := SimRequest{}
	if err := json.Unmarshal(raw[0], &out.Map); err != nil {
		return fmt.Errorf("simulator request map: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Effects); err != nil {
		return fmt.Errorf("simulator request effects: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.Action); err != nil {
		return fmt.Errorf("simulator request action: %w", err)
	}
	if len(raw) > 3 {
		var mutator *string
		if err := json.Unmarshal(raw[3], &mutator); err != nil {
			return fmt.Errorf("simulator request mutator: %w", err)
		}
		if mutator != nil {
			out.Mutator = *mutator
		}
	}
	*r = out
	return nil
}

// SimReply travels as [response, map, gameState, effects?]. The effects
// slot is present only when the submission replaced the effects table.
type SimReply struct {
	Response   tuple.Tuple
	Map        board.PlainMap
	GameState  []action.EncodedStep
	Effects    tuple.Tuple
	HasEffects bool
}

func (r SimReply) MarshalJSON() ([]byte, error) {
	var gs any
	if len(r.GameState) > 0 {
		gs = r.GameState
	}
	slots := []any{tuple.List(r.Response), r.Map, gs}
	if r.HasEffects {
		effects := r.Effects
		if effects == nil {
			effects = tuple.Tuple{}
		}
		slots = append(slots, effects)
	}
	return json.Marshal(slots)
}

func (r *SimReply) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("%w: expected at least 2 slots, got %d", ErrMalformedReply, len(raw))
	}
	out := SimReply{}
	if err := json.Unmarshal(raw[0], &out.Response); err != nil {
		return fmt.Errorf("%w: response: %v", ErrMalformedReply, err)
	}
	if len(out.Response) == 0 {
		return fmt.Errorf("%w: missing response", ErrMalformedReply)
	}
	if err := json.Unmarshal(raw[1], &out.Map); err != nil {
		return fmt.Errorf("%w: map: %v", ErrMalformedReply, err)
	}
	if len(raw) > 2 {
		if err := json.Unmarshal(raw[2], &out.GameState); err != nil {
			return fmt.Errorf("%w: game state: %v", ErrMalformedReply, err)
		}
	}
	if len(raw) > 3 {
		if err := json.Unmarshal(raw[3], &out.Effects); err != nil {
			return fmt.Errorf("%w: effects: %v", ErrMalformedReply, err)
		}
		out.HasEffects = true
	}
	*r = out
	return nil
}
