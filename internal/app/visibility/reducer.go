package visibility

import (
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// ComputeVisibleActions reduces a cascade to the steps the observer can
// see, each rewritten to its visible form. Steps are bracketed by the same
// full maps as the input; the chain starts from initial. Steps that show
// nothing are dropped.
func ComputeVisibleActions(initial board.MapData, vision board.Vision, gs action.GameState) action.GameState {
	out := make(action.GameState, 0, len(gs))
	previous := initial
	for _, step := range gs {
		if resp, ok := visibleResponse(step.Response, previous, step.Current, vision); ok {
			out = append(out, action.Step{Response: resp, Previous: previous, Current: step.Current})
		}
		previous = step.Current
	}
	return out
}

func visibleResponse(resp action.Response, prev, cur board.MapData, vision board.Vision) (action.Response, bool) {
	if v, ok := resp.(action.EndTurnResponse); ok {
		return ComputeVisibleEndTurn(v, cur, vision), true
	}
	if !prev.Config().Fog {
		return resp, true
	}

	switch v := resp.(type) {
	case action.MoveResponse:
		fromVisible := vision.IsVisible(prev, v.From)
		toVisible := vision.IsVisible(cur, v.To)
		switch {
		case fromVisible && toVisible:
			return v, true
		case fromVisible:
			return action.HiddenTargetMoveResponse{From: v.From}, true
		case toVisible:
			u, _ := cur.UnitAt(v.To)
			return action.HiddenSourceMoveResponse{To: v.To, Unit: u}, true
		}
		return nil, false
	case action.AttackUnitResponse:
		fromVisible := vision.IsVisible(prev, v.From)
		toVisible := vision.IsVisible(prev, v.To)
		switch {
		case fromVisible && toVisible:
			return v, true
		case fromVisible:
			return action.HiddenTargetAttackUnitResponse{From: v.From, HasCounterAttack: v.HasCounterAttack, UnitA: v.UnitA, ChargeA: v.ChargeA}, true
		case toVisible:
			return action.HiddenSourceAttackUnitResponse{To: v.To, UnitB: v.UnitB, ChargeB: v.ChargeB}, true
		}
		return nil, false
	case action.AttackBuildingResponse:
		fromVisible := vision.IsVisible(prev, v.From)
		toVisible := vision.IsVisible(prev, v.To)
		switch {
		case fromVisible && toVisible:
			return v, true
		case fromVisible:
			return action.HiddenTargetAttackBuildingResponse{From: v.From, UnitA: v.UnitA, ChargeA: v.ChargeA}, true
		case toVisible:
			return action.HiddenSourceAttackBuildingResponse{To: v.To, Building: v.Building, ChargeB: v.ChargeB}, true
		}
		return nil, false
	case action.CreateUnitResponse:
		return v, vision.IsVisible(cur, v.To)
	case action.CaptureResponse:
		return v, vision.IsVisible(prev, v.From)
	case action.ActivatePowerResponse:
		var units []board.UnitEntry
		for _, e := range v.Units {
			if vision.IsVisible(cur, e.Pos) {
				units = append(units, e)
			}
		}
		v.Units = units
		return v, true
	default:
		return resp, true
	}
}

// ComputeVisibleEndTurn redacts what an end of turn reveals about players
// outside the observer's team: their funds and supplied positions out of
// vision. Without fog the response is unchanged.
func ComputeVisibleEndTurn(resp action.EndTurnResponse, m board.MapData, vision board.Vision) action.EndTurnResponse {
	if !m.Config().Fog {
		return resp
	}
	team := m.TeamOf(vision.Viewer())
	if vision.IsSpectator() || m.TeamOf(resp.Current.Player) != team {
		resp.Current.Funds = 0
	}
	if vision.IsSpectator() || m.TeamOf(resp.Next.Player) != team {
		resp.Next.Funds = 0
	}
	var supply []board.Vector
	for _, pos := range resp.Supply {
		if vision.IsVisible(m, pos) {
			supply = append(supply, pos)
		}
	}
	resp.Supply = supply
	return resp
}
