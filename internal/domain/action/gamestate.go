package action

import (
	"encoding/json"
	"fmt"

	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

// Step brackets one response with the snapshots before and after it.
type Step struct {
	Response Response
	Previous board.MapData
	Current  board.MapData
}

// GameState is every response a single submission produced after the
// directly submitted one, in the order they happened.
type GameState []Step

// Validate checks that each step starts where the previous one ended.
func (gs GameState) Validate() error {
	for i := 1; i < len(gs); i++ {
		if !gs[i-1].Current.Equal(gs[i].Previous) {
			return fmt.Errorf("%w: step %d does not start from step %d", ErrBrokenChain, i, i-1)
		}
	}
	return nil
}

// Last returns the final step, falling back to the given response and map
// when the state is empty.
func (gs GameState) Last(fallback Response, fallbackMap board.MapData) (Response, board.MapData) {
	if len(gs) == 0 {
		return fallback, fallbackMap
	}
	last := gs[len(gs)-1]
	return last.Response, last.Current
}

// EndsGame reports whether a GameOver was produced anywhere in a submission;
// end-of-game effects may follow it.
func EndsGame(primary Response, gs GameState) bool {
	if primary != nil && primary.ResponseType() == TypeGameOver {
		return true
	}
	for _, step := range gs {
		if step.Response.ResponseType() == TypeGameOver {
			return true
		}
	}
	return false
}

// EncodedStep is the wire form [encodedResponse, plainMap]. The previous map
// is implied by the chain.
type EncodedStep struct {
	Response tuple.Tuple
	Map      board.PlainMap
}

func (s EncodedStep) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Response, s.Map})
}

func (s *EncodedStep) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return &tuple.MalformedError{Field: "gameState.step", Value: len(raw)}
	}
	if err := json.Unmarshal(raw[0], &s.Response); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &s.Map)
}

func EncodeGameState(gs GameState) ([]EncodedStep, error) {
	out := make([]EncodedStep, 0, len(gs))
	for _, s := range gs {
		enc, err := EncodeResponse(s.Response)
		if err != nil {
			return nil, err
		}
		out = append(out, EncodedStep{Response: enc, Map: s.Current.ToPlain()})
	}
	return out, nil
}

// DecodeGameState rebuilds the steps, chaining each previous map from the
// step before and the first one from initial.
func DecodeGameState(initial board.MapData, enc []EncodedStep) (GameState, error) {
	out := make(GameState, 0, len(enc))
	previous := initial
	for i, s := range enc {
		resp, err := DecodeResponse(s.Response)
		if err != nil {
			return nil, fmt.Errorf("game state step %d: %w", i, err)
		}
		current, err := board.FromPlain(s.Map)
		if err != nil {
			return nil, fmt.Errorf("game state step %d: %w", i, err)
		}
		out = append(out, Step{Response: resp, Previous: previous, Current: current})
		previous = current
	}
	return out, nil
}
