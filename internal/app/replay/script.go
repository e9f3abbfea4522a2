package replay

import (
	"context"
	"fmt"

	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// ExecuteGameActions runs actions one after another on a throwaway session
// and collects what the player to move saw for each of them. A script that
// does not begin with Start runs against an already started game.
func ExecuteGameActions(ctx context.Context, sim ports.Simulator, m board.MapData, effects action.Effects, actions []action.Action) (Script, error) {
	game := gameaction.ClientGame{ID: "script", State: m, Effects: effects}
	if len(actions) > 0 {
		if _, ok := actions[0].(action.StartAction); !ok {
			game.LastAction = action.StartAction{}
		}
	}
	session := gameaction.NewSession(game, sim, gameaction.Deps{})

	var steps []Step
	for i, a := range actions {
		res := session.Submit(ctx, gameaction.Request{Action: a})
		if !res.OK() {
			return Script{Steps: steps, Final: session.Game()}, fmt.Errorf("action %d: %w", i, res.Err)
		}
		for _, item := range res.Self.Payload.Items() {
			steps = append(steps, Step{Viewer: res.Self.Viewer, Item: item})
		}
	}
	return Script{Steps: steps, Final: session.Game()}, nil
}
