package visibility

import (
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// DropLabels strips hidden labels from every entity a response carries.
func DropLabels(resp action.Response, labels board.LabelSet) action.Response {
	if len(labels) == 0 {
		return resp
	}
	switch v := resp.(type) {
	case action.CreateUnitResponse:
		v.Unit = v.Unit.DropLabel(labels)
		return v
	case action.CaptureResponse:
		v.Building = v.Building.DropLabel(labels)
		return v
	case action.HiddenSourceMoveResponse:
		v.Unit = v.Unit.DropLabel(labels)
		return v
	case action.ActivatePowerResponse:
		if len(v.Units) == 0 {
			return v
		}
		units := make([]board.UnitEntry, len(v.Units))
		for i, e := range v.Units {
			units[i] = board.UnitEntry{Pos: e.Pos, Unit: e.Unit.DropLabel(labels)}
		}
		v.Units = units
		return v
	default:
		return resp
	}
}

// HiddenLabelsOf returns the labels of m's hidden objectives.
func HiddenLabelsOf(m board.MapData) board.LabelSet {
	return board.HiddenLabels(m.Config().Objectives)
}

// VisiblePrimary is the submitter's own primary response: hidden labels
// dropped and an end of turn reduced to what the submitter may know.
func VisiblePrimary(resp action.Response, initial board.MapData, vision board.Vision, labels board.LabelSet) action.Response {
	visible := DropLabels(resp, labels)
	if et, ok := visible.(action.EndTurnResponse); ok {
		return ComputeVisibleEndTurn(et, initial, vision)
	}
	return visible
}
