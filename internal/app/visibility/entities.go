// Package visibility derives what one observer may learn from a response:
// the entities that came into view and the observer's version of every
// step in a cascade.
package visibility

import (
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// Delta lists entities disclosed to an observer by one step, in scan order.
type Delta struct {
	Buildings []board.BuildingEntry
	Units     []board.UnitEntry
}

func (d Delta) Empty() bool {
	return len(d.Buildings) == 0 && len(d.Units) == 0
}

// VisibleEntities scans the positions visible in cur. A position is
// disclosed when it was not visible in prev or when its occupant changed.
// Labels in labels are dropped from disclosed entities. The second result
// is false when the map has no fog, in which case nothing is ever disclosed.
func VisibleEntities(prev, cur board.MapData, vision board.Vision, labels board.LabelSet) (Delta, bool) {
	if !prev.Config().Fog {
		return Delta{}, false
	}
	var out Delta
	for _, pos := range cur.Positions() {
		if !vision.IsVisible(cur, pos) {
			continue
		}
		wasVisible := vision.IsVisible(prev, pos)

		if u, ok := cur.UnitAt(pos); ok {
			before, had := prev.UnitAt(pos)
			if !wasVisible || !had || !before.SameOccupant(u) {
				out.Units = append(out.Units, board.UnitEntry{Pos: pos, Unit: u.DropLabel(labels)})
			}
		}
		if b, ok := cur.BuildingAt(pos); ok {
			before, had := prev.BuildingAt(pos)
			if !wasVisible || !had || !before.SameOccupant(b) {
				out.Buildings = append(out.Buildings, board.BuildingEntry{Pos: pos, Building: b.DropLabel(labels)})
			}
		}
	}
	return out, true
}

// RemoveActionedEntities drops the positions resp acts on; the observer
// rebuilds those by applying resp. A Move leaves the destination building
// in place since moving never changes a building.
func RemoveActionedEntities(d Delta, resp action.Response) Delta {
	if resp == nil {
		return d
	}
	from, to := action.Positions(resp)
	_, isMove := resp.(action.MoveResponse)

	drop := func(pos board.Vector) bool {
		return (from != nil && pos == *from) || (to != nil && pos == *to)
	}

	var out Delta
	for _, e := range d.Units {
		if !drop(e.Pos) {
			out.Units = append(out.Units, e)
		}
	}
	for _, e := range d.Buildings {
		if isMove || !drop(e.Pos) {
			out.Buildings = append(out.Buildings, e)
		}
	}
	return out
}
