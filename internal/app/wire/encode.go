// Package wire packs responses for observers:
//
//	[item | null, item[]?, timeout?]
//	item = [response, buildings?, units?]
//
// Trailing absent slots are omitted.
package wire

import (
	"fmt"

	"skirmish/internal/app/visibility"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

// EncodeItem encodes resp together with the entities it brought into the
// observer's view between prev and cur.
func EncodeItem(resp action.Response, vision board.Vision, prev, cur board.MapData, labels board.LabelSet) (tuple.Tuple, error) {
	enc, err := action.EncodeResponse(visibility.DropLabels(resp, labels))
	if err != nil {
		return nil, err
	}
	delta, ok := visibility.VisibleEntities(prev, cur, vision, labels)
	if !ok {
		return tuple.Tuple{enc}, nil
	}
	delta = visibility.RemoveActionedEntities(delta, resp)
	buildings := tuple.List(board.EncodeBuildings(delta.Buildings))
	units := tuple.List(board.EncodeUnits(delta.Units))
	switch {
	case units != nil:
		return tuple.Tuple{enc, buildings, units}, nil
	case buildings != nil:
		return tuple.Tuple{enc, buildings}, nil
	default:
		return tuple.Tuple{enc}, nil
	}
}

// EncodeGameActionResponse builds the observer payload for one submission.
// Slot 0 is resp against clientMap → initialMap. Slot 1 is present when gs
// is non-empty and holds every step the observer can see, each against its
// own map pair. Slot 2 is present when timeout is.
func EncodeGameActionResponse(
	clientMap, initialMap board.MapData,
	vision board.Vision,
	gs action.GameState,
	timeout Timeout,
	resp action.Response,
	labels board.LabelSet,
) (tuple.Tuple, error) {
	out := tuple.Tuple{nil}
	if resp != nil {
		item, err := EncodeItem(resp, vision, clientMap, initialMap, labels)
		if err != nil {
			return nil, fmt.Errorf("encode primary: %w", err)
		}
		out[0] = item
	}

	if len(gs) > 0 {
		visible := visibility.ComputeVisibleActions(initialMap, vision, gs)
		items := make(tuple.Tuple, 0, len(visible))
		for i, step := range visible {
			item, err := EncodeItem(step.Response, vision, step.Previous, step.Current, labels)
			if err != nil {
				return nil, fmt.Errorf("encode step %d: %w", i, err)
			}
			items = append(items, item)
		}
		out = append(out, items)
	}

	if timeout.Present() {
		if len(out) == 1 {
			out = append(out, nil)
		}
		out = append(out, timeout.value())
	}
	return out, nil
}

// EncodeForObserver encodes a whole submission for someone who did not
// submit it: the primary response goes through the same reduction as the
// rest of the cascade, so slot 0 is always null.
func EncodeForObserver(previous board.MapData, vision board.Vision, primary action.Step, gs action.GameState, timeout Timeout, labels board.LabelSet) (tuple.Tuple, error) {
	steps := make(action.GameState, 0, len(gs)+1)
	steps = append(steps, primary)
	steps = append(steps, gs...)
	return EncodeGameActionResponse(previous, previous, vision, steps, timeout, nil, labels)
}
