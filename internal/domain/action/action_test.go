package action

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

var equateEmpty = cmpopts.EquateEmpty()

func ptr[T any](v T) *T {
	return &v
}

func allResponses() []Response {
	tank, _ := board.LookupUnit(board.UnitSmallTank)
	hq, _ := board.LookupBuilding(board.BuildingHQ)
	unit := tank.Create(1)
	unit.Label = 3
	dry := &DryUnit{Health: 60, Ammo: board.Ammo{{Weapon: 1, Count: 6}}}

	return []Response{
		StartResponse{},
		BeginGameResponse{},
		MoveResponse{From: board.Vec(1, 1), To: board.Vec(3, 2), Fuel: 37},
		AttackUnitResponse{From: board.Vec(1, 2), To: board.Vec(1, 1), HasCounterAttack: true, PlayerA: 2, PlayerB: 1, UnitA: dry, UnitB: &DryUnit{Health: 76}, ChargeA: 120, ChargeB: 240},
		AttackUnitResponse{From: board.Vec(1, 2), To: board.Vec(1, 1), PlayerA: 2, PlayerB: 1, UnitA: dry},
		AttackBuildingResponse{From: board.Vec(2, 2), To: board.Vec(2, 3), PlayerA: 1, PlayerB: 2, UnitA: dry, Building: &DryBuilding{Health: 40}, ChargeA: 10, ChargeB: 20},
		AttackBuildingResponse{From: board.Vec(2, 2), To: board.Vec(2, 3), PlayerA: 1, PlayerB: 2},
		EndTurnResponse{Current: EndTurnPlayer{Player: 1, Funds: 500}, Next: EndTurnPlayer{Player: 2, Funds: 700}, Round: 2, RotatePlayers: true, Supply: []board.Vector{board.Vec(1, 1), board.Vec(2, 1)}, Miss: true},
		EndTurnResponse{Current: EndTurnPlayer{Player: 2, Funds: 0}, Next: EndTurnPlayer{Player: 1, Funds: 100}, Round: 1},
		ActivatePowerResponse{Skill: board.SkillAttackIncreaseMajorDefenseDecreaseMajor},
		ActivatePowerResponse{Skill: board.SkillShield, Units: []board.UnitEntry{{Pos: board.Vec(4, 4), Unit: unit}}, Free: true},
		BuySkillResponse{From: board.Vec(5, 5), Skill: board.SkillShield, Player: 1},
		ActivateCrystalResponse{Crystal: board.CrystalPower, Player: ptr(board.PlayerID(1))},
		ActivateCrystalResponse{Crystal: board.CrystalMemory, Biome: ptr(board.BiomeSwamp), HQ: ptr(board.Vec(2, 2))},
		CreateUnitResponse{From: board.Vec(1, 1), To: board.Vec(1, 2), Unit: tank.Create(2), Free: true},
		CaptureResponse{From: board.Vec(3, 3), Building: hq.Create(1), Player: 2},
		GameOverResponse{Winner: 1},
		HiddenSourceMoveResponse{To: board.Vec(2, 2), Unit: unit},
		HiddenTargetMoveResponse{From: board.Vec(2, 2)},
		HiddenSourceAttackUnitResponse{To: board.Vec(1, 1), UnitB: dry, ChargeB: 5},
		HiddenSourceAttackUnitResponse{To: board.Vec(1, 1)},
		HiddenTargetAttackUnitResponse{From: board.Vec(1, 2), HasCounterAttack: true, UnitA: dry, ChargeA: 7},
		HiddenSourceAttackBuildingResponse{To: board.Vec(3, 1), Building: &DryBuilding{Health: 10}, ChargeB: 1},
		HiddenTargetAttackBuildingResponse{From: board.Vec(3, 2), UnitA: dry, ChargeA: 2},
	}
}

func TestResponseCodec_RoundTripEveryVariant(t *testing.T) {
	seen := map[ResponseType]bool{}
	for _, resp := range allResponses() {
		seen[resp.ResponseType()] = true
		t.Run(resp.ResponseType().String(), func(t *testing.T) {
			enc, err := EncodeResponse(resp)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := DecodeResponse(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(resp, got, equateEmpty); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
	for d := TypeStart; d <= TypeHiddenTargetAttackBuilding; d++ {
		if !seen[d] {
			t.Fatalf("variant %s not covered", d)
		}
	}
}

func TestResponseCodec_RoundTripThroughJSON(t *testing.T) {
	for _, resp := range allResponses() {
		enc, err := EncodeResponse(resp)
		if err != nil {
			t.Fatalf("encode %s: %v", resp.ResponseType(), err)
		}
		b, err := json.Marshal(enc)
		if err != nil {
			t.Fatalf("marshal %s: %v", resp.ResponseType(), err)
		}
		var raw tuple.Tuple
		if err := json.Unmarshal(b, &raw); err != nil {
			t.Fatalf("unmarshal %s: %v", resp.ResponseType(), err)
		}
		got, err := DecodeResponse(raw)
		if err != nil {
			t.Fatalf("decode %s from %s: %v", resp.ResponseType(), b, err)
		}
		if diff := cmp.Diff(resp, got, equateEmpty); diff != "" {
			t.Fatalf("json round trip mismatch for %s (-want +got):\n%s", b, diff)
		}
	}
}

func TestEncodeResponse_UsesCompactForm(t *testing.T) {
	enc, err := EncodeResponse(MoveResponse{From: board.Vec(1, 1), To: board.Vec(2, 1), Fuel: 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ := json.Marshal(enc)
	if string(b) != `[2,[1,1],[2,1],3]` {
		t.Fatalf("wire mismatch: got=%s", b)
	}

	enc, err = EncodeResponse(ActivatePowerResponse{Skill: board.SkillAttackIncreaseMajorDefenseDecreaseMajor})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ = json.Marshal(enc)
	if string(b) != `[6,3,null,0]` {
		t.Fatalf("wire mismatch: got=%s", b)
	}
}

func TestDecodeResponse_UnknownVariant(t *testing.T) {
	_, err := DecodeResponse(tuple.Tuple{99, []any{1, 1}})
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	var uv *UnknownVariantError
	if !errors.As(err, &uv) || uv.Discriminant != 99 {
		t.Fatalf("expected discriminant 99, got %+v", uv)
	}
}

func TestDecodeResponse_RejectsOutOfRangeFields(t *testing.T) {
	cases := []struct {
		name string
		in   tuple.Tuple
	}{
		{name: "crystal", in: tuple.Tuple{int(TypeActivateCrystal), 9, nil, nil, nil}},
		{name: "biome", in: tuple.Tuple{int(TypeActivateCrystal), 4, nil, 17, nil}},
		{name: "skill", in: tuple.Tuple{int(TypeActivatePower), 4242, nil, 0}},
		{name: "buy skill", in: tuple.Tuple{int(TypeBuySkill), []any{1, 1}, 0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeResponse(tc.in)
			if !errors.Is(err, ErrInvalidField) {
				t.Fatalf("expected ErrInvalidField, got %v", err)
			}
		})
	}
}

func TestEncodeResponse_RejectsOutOfRangeFields(t *testing.T) {
	if _, err := EncodeResponse(ActivateCrystalResponse{Crystal: 12}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for crystal, got %v", err)
	}
	if _, err := EncodeResponse(ActivatePowerResponse{Skill: 999}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for skill, got %v", err)
	}
}

func TestDecodeResponse_MalformedTuple(t *testing.T) {
	_, err := DecodeResponse(tuple.Tuple{int(TypeMove), []any{1, 1}})
	if !errors.Is(err, tuple.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := DecodeResponse(nil); !errors.Is(err, tuple.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for empty tuple, got %v", err)
	}
}

func TestActionCodec_RoundTrip(t *testing.T) {
	actions := []Action{
		StartAction{},
		MoveAction{From: board.Vec(1, 1), To: board.Vec(1, 3)},
		AttackUnitAction{From: board.Vec(1, 2), To: board.Vec(1, 1)},
		AttackBuildingAction{From: board.Vec(1, 2), To: board.Vec(2, 2)},
		EndTurnAction{},
		ActivatePowerAction{Skill: board.SkillShield},
		ActivatePowerAction{Skill: board.SkillShield, Target: ptr(board.Vec(3, 3))},
		BuySkillAction{From: board.Vec(2, 2), Skill: board.SkillSupplyAll},
		ActivateCrystalAction{Crystal: board.CrystalPower},
		ActivateCrystalAction{Crystal: board.CrystalMemory, Biome: ptr(board.BiomeSwamp)},
		CreateUnitAction{From: board.Vec(1, 1), To: board.Vec(1, 2), UnitID: board.UnitInfantry},
		CaptureAction{From: board.Vec(4, 4)},
	}
	for _, a := range actions {
		enc, err := EncodeAction(a)
		if err != nil {
			t.Fatalf("encode %s: %v", a.ActionType(), err)
		}
		b, _ := json.Marshal(enc)
		var raw tuple.Tuple
		if err := json.Unmarshal(b, &raw); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got, err := DecodeAction(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", b, err)
		}
		if diff := cmp.Diff(a, got); diff != "" {
			t.Fatalf("action round trip mismatch (-want +got):\n%s", diff)
		}
	}
	if _, err := DecodeAction(tuple.Tuple{42}); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestEffectsCodec_RoundTrip(t *testing.T) {
	effects := Effects{
		TriggerStart: {{Actions: []Action{ActivateCrystalAction{Crystal: board.CrystalMemory, Biome: ptr(board.BiomeSwamp)}}}},
		TriggerGameEnd: {
			{Actions: []Action{EndTurnAction{}}},
			{Actions: []Action{MoveAction{From: board.Vec(1, 1), To: board.Vec(2, 1)}}},
		},
	}
	enc, err := EncodeEffects(effects)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ := json.Marshal(enc)
	var raw tuple.Tuple
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := DecodeEffects(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(effects, got); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}

	without := effects.Without(TriggerStart)
	if _, ok := without[TriggerStart]; ok {
		t.Fatalf("expected start trigger removed")
	}
	if _, ok := effects[TriggerStart]; !ok {
		t.Fatalf("Without mutated the receiver")
	}
}

func TestGameState_ValidateAndDecode(t *testing.T) {
	m0 := board.New(board.Size{Width: 3, Height: 3}, board.Config{}, []board.Player{{ID: 1, Team: 1, UserID: "a"}, {ID: 2, Team: 2, UserID: "b"}})
	m1 := m0.WithCurrentPlayer(2)
	m2 := m1.WithCurrentPlayer(1).WithRound(2)

	gs := GameState{
		{Response: EndTurnResponse{Current: EndTurnPlayer{Player: 1}, Next: EndTurnPlayer{Player: 2}, Round: 1}, Previous: m0, Current: m1},
		{Response: EndTurnResponse{Current: EndTurnPlayer{Player: 2}, Next: EndTurnPlayer{Player: 1}, Round: 2, RotatePlayers: true}, Previous: m1, Current: m2},
	}
	if err := gs.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	broken := GameState{gs[0], {Response: gs[1].Response, Previous: m0, Current: m2}}
	if err := broken.Validate(); !errors.Is(err, ErrBrokenChain) {
		t.Fatalf("expected ErrBrokenChain, got %v", err)
	}

	enc, err := EncodeGameState(gs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := json.Marshal(enc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw []EncodedStep
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := DecodeGameState(m0, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("decoded chain invalid: %v", err)
	}
	if len(got) != 2 || !got[1].Current.Equal(m2) || !got[0].Previous.Equal(m0) {
		t.Fatalf("decoded chain mismatch: %+v", got)
	}

	resp, last := GameState(nil).Last(StartResponse{}, m0)
	if resp != (StartResponse{}) || !last.Equal(m0) {
		t.Fatalf("empty Last should fall back")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		in   Response
		want string
	}{
		{in: StartResponse{}, want: "Start"},
		{
			in:   ActivatePowerResponse{Skill: board.SkillAttackIncreaseMajorDefenseDecreaseMajor},
			want: "ActivatePower () { skill: 3, units: null, free: false }",
		},
		{
			in:   ActivateCrystalResponse{Crystal: board.CrystalPower, Player: ptr(board.PlayerID(1))},
			want: "ActivateCrystal { crystal: 0, player: 1, biome: null, hq: null }",
		},
		{
			in:   AttackUnitResponse{From: board.Vec(1, 2), To: board.Vec(1, 1), HasCounterAttack: true, PlayerA: 2, PlayerB: 1, UnitA: &DryUnit{Health: 76, Ammo: board.Ammo{{Weapon: 1, Count: 6}}}, UnitB: &DryUnit{Health: 60}},
			want: "AttackUnit (1,2 → 1,1) { hasCounterAttack: true, playerA: 2, playerB: 1, unitA: DryUnit { health: 76, ammo: [ [ 1, 6 ] ] }, unitB: DryUnit { health: 60, ammo: null }, chargeA: 0, chargeB: 0 }",
		},
	}
	for _, tc := range cases {
		if got := Describe(tc.in); got != tc.want {
			t.Fatalf("describe mismatch:\n got=%s\nwant=%s", got, tc.want)
		}
	}
}
