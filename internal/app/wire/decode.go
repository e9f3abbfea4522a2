package wire

import (
	"fmt"
	"time"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
	"skirmish/internal/domain/tuple"
)

// Item is one decoded response plus the entities disclosed with it.
type Item struct {
	Response  action.Response
	Buildings []board.BuildingEntry
	Units     []board.UnitEntry
}

type GameActionResponse struct {
	// Self is nil when slot 0 was null.
	Self    *Item
	Others  []Item
	Timeout Timeout
}

// Items lists Self followed by Others.
func (g GameActionResponse) Items() []Item {
	out := make([]Item, 0, len(g.Others)+1)
	if g.Self != nil {
		out = append(out, *g.Self)
	}
	return append(out, g.Others...)
}

func DecodeItem(t tuple.Tuple) (Item, error) {
	r := tuple.NewReader(t)
	enc := r.List("item.response")
	rawBuildings := r.List("item.buildings")
	rawUnits := r.List("item.units")
	if err := r.Err(); err != nil {
		return Item{}, err
	}
	if enc == nil {
		return Item{}, &tuple.MalformedError{Field: "item.response", Value: nil}
	}
	resp, err := action.DecodeResponse(enc)
	if err != nil {
		return Item{}, err
	}
	buildings, err := board.DecodeBuildings(rawBuildings)
	if err != nil {
		return Item{}, err
	}
	units, err := board.DecodeUnits(rawUnits)
	if err != nil {
		return Item{}, err
	}
	return Item{Response: resp, Buildings: buildings, Units: units}, nil
}

// DecodeGameActionResponse accepts the short forms the encoder emits: a
// missing slot reads as absent.
func DecodeGameActionResponse(t tuple.Tuple) (GameActionResponse, error) {
	if len(t) == 0 {
		return GameActionResponse{}, &tuple.MalformedError{Field: "response", Value: "<empty>"}
	}
	var out GameActionResponse
	if t[0] != nil {
		raw, ok := tuple.AsList(t[0])
		if !ok {
			return GameActionResponse{}, &tuple.MalformedError{Field: "self", Value: t[0]}
		}
		item, err := DecodeItem(raw)
		if err != nil {
			return GameActionResponse{}, fmt.Errorf("decode self: %w", err)
		}
		out.Self = &item
	}
	if len(t) > 1 && t[1] != nil {
		list, ok := tuple.AsList(t[1])
		if !ok {
			return GameActionResponse{}, &tuple.MalformedError{Field: "others", Value: t[1]}
		}
		out.Others = make([]Item, 0, len(list))
		for i, raw := range list {
			it, ok := tuple.AsList(raw)
			if !ok {
				return GameActionResponse{}, &tuple.MalformedError{Field: "others.item", Value: raw}
			}
			item, err := DecodeItem(it)
			if err != nil {
				return GameActionResponse{}, fmt.Errorf("decode item %d: %w", i, err)
			}
			out.Others = append(out.Others, item)
		}
	}
	if len(t) > 2 {
		out.Timeout = NullTimeout
		if t[2] != nil {
			ms, ok := tuple.Int(t[2])
			if !ok {
				return GameActionResponse{}, &tuple.MalformedError{Field: "timeout", Value: t[2]}
			}
			out.Timeout = TimeoutAt(time.UnixMilli(int64(ms)))
		}
	}
	return out, nil
}

// ApplyItem applies one item to an observer's local map and re-applies the
// observer's fog.
func ApplyItem(m board.MapData, vision board.Vision, item Item) (board.MapData, error) {
	next, err := rules.Apply(m, item.Response)
	if err != nil {
		return m, fmt.Errorf("apply %s: %w", item.Response.ResponseType(), err)
	}
	for _, e := range item.Buildings {
		next = next.WithBuilding(e.Pos, e.Building)
	}
	for _, e := range item.Units {
		next = next.WithUnit(e.Pos, e.Unit)
	}
	return vision.Apply(next), nil
}

// ApplyToLocal replays every item of a decoded payload in order.
func ApplyToLocal(m board.MapData, vision board.Vision, g GameActionResponse) (board.MapData, error) {
	var err error
	for _, item := range g.Items() {
		if m, err = ApplyItem(m, vision, item); err != nil {
			return m, err
		}
	}
	return m, nil
}
