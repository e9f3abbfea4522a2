// Package simulator runs the rules engine behind the ports.Simulator
// boundary. Requests and replies cross it as JSON so an out-of-process
// worker can be swapped in without touching callers.
package simulator

import (
	"fmt"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

// Handle runs one request against engine. The acting player is the current
// player of the request map.
func Handle(engine rules.Engine, req ports.SimRequest) (ports.SimReply, error) {
	m, err := board.FromPlain(req.Map)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("decode map: %w", err)
	}
	effects, err := action.DecodeEffects(req.Effects)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("decode effects: %w", err)
	}
	a, err := action.DecodeAction(req.Action)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("decode action: %w", err)
	}

	res, err := engine.Execute(m, effects, a, m.CurrentPlayerID(), req.Mutator)
	if err != nil {
		return ports.SimReply{}, err
	}

	resp, err := action.EncodeResponse(res.Response)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("encode response: %w", err)
	}
	gs, err := action.EncodeGameState(res.GameState)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("encode game state: %w", err)
	}
	reply := ports.SimReply{Response: resp, Map: res.Map.ToPlain(), GameState: gs}
	if res.EffectsChanged {
		enc, err := action.EncodeEffects(res.Effects)
		if err != nil {
			return ports.SimReply{}, fmt.Errorf("encode effects: %w", err)
		}
		reply.Effects = enc
		reply.HasEffects = true
	}
	return reply, nil
}
