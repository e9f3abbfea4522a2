package wire_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

func TestSchema_ValidatesEncodedPayloads(t *testing.T) {
	p := filepath.Join("..", "..", "..", "schemas", "game_action_response.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	validate := func(name string, v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		if err := s.Validate(doc); err != nil {
			t.Fatalf("%s: validate %s: %v", name, b, err)
		}
	}

	tank, _ := board.LookupUnit(board.UnitSmallTank)
	infantry, _ := board.LookupUnit(board.UnitInfantry)
	factory, _ := board.LookupBuilding(board.BuildingFactory)
	prev := board.New(board.Size{Width: 8, Height: 3}, board.Config{Fog: true}, []board.Player{
		{ID: 1, Team: 1, UserID: "User-1"},
		{ID: 2, Team: 2, UserID: "User-2"},
	}).
		WithUnit(board.Vec(1, 1), tank.Create(1)).
		WithBuilding(board.Vec(4, 1), factory.Create(2)).
		WithUnit(board.Vec(6, 1), infantry.Create(2))
	move := action.MoveResponse{From: board.Vec(1, 1), To: board.Vec(4, 1), Fuel: 37}
	cur, err := rules.Apply(prev, move)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	vision := board.NewVision(cur, 1)

	primary, err := wire.EncodeGameActionResponse(prev, cur, vision, nil, wire.NullTimeout, move, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	validate("primary", primary)

	observer, err := wire.EncodeForObserver(prev, board.NewVision(prev, 2),
		action.Step{Response: move, Previous: prev, Current: cur}, nil, wire.OmitTimeout, nil)
	if err != nil {
		t.Fatalf("encode observer: %v", err)
	}
	validate("observer", observer)

	var bad any
	_ = json.Unmarshal([]byte(`[[[42]]]`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("unknown discriminant should not validate")
	}
}
