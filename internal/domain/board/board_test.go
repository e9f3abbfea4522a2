package board

import (
	"encoding/json"
	"testing"
)

func testMap(fog bool) MapData {
	m := New(Size{Width: 8, Height: 8}, Config{Fog: fog}, []Player{
		{ID: 1, Team: 1, Funds: 500, UserID: "User-1"},
		{ID: 2, Team: 2, Funds: 500, UserID: "User-2"},
	})
	tank, _ := LookupUnit(UnitSmallTank)
	return m.
		WithUnit(Vec(1, 1), tank.Create(1)).
		WithUnit(Vec(8, 8), tank.Create(2))
}

func TestMapData_WithUnitDoesNotMutateReceiver(t *testing.T) {
	m := testMap(false)
	tank, _ := LookupUnit(UnitSmallTank)
	next := m.WithUnit(Vec(2, 2), tank.Create(1))

	if _, ok := m.UnitAt(Vec(2, 2)); ok {
		t.Fatalf("receiver was mutated")
	}
	if _, ok := next.UnitAt(Vec(2, 2)); !ok {
		t.Fatalf("expected unit in new snapshot")
	}
	if m.Equal(next) {
		t.Fatalf("expected snapshots to differ")
	}
}

func TestMapData_PlainRoundTrip(t *testing.T) {
	m := testMap(true).
		WithBuilding(Vec(3, 3), Building{ID: BuildingHQ, Player: 1, Health: 100, Label: 2}).
		WithConfig(Config{Fog: true, Biome: BiomeSwamp, Objectives: []Objective{{Type: ObjectiveCaptureLabel, Hidden: true, Labels: []Label{2}}}})

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got MapData
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(m) {
		t.Fatalf("round trip mismatch:\n got=%s", b)
	}
}

func TestFromPlain_RejectsUnknownUnit(t *testing.T) {
	p := testMap(false).ToPlain()
	p.Units = append(p.Units, []any{2, 2, []any{99, 1, 100, nil, 0, 0, 0, 0, 0}})
	if _, err := FromPlain(p); err == nil {
		t.Fatalf("expected error for unknown unit id")
	}
}

func TestVision_NoFogSeesEverything(t *testing.T) {
	m := testMap(false)
	v := NewVision(m, 1)
	if !v.IsVisible(m, Vec(8, 8)) {
		t.Fatalf("expected far tile visible without fog")
	}
}

func TestVision_FogLimitsToSightRange(t *testing.T) {
	m := testMap(true)
	v := NewVision(m, 1)
	if !v.IsVisible(m, Vec(2, 2)) {
		t.Fatalf("expected tile within sight range visible")
	}
	if v.IsVisible(m, Vec(8, 8)) {
		t.Fatalf("expected enemy tile hidden under fog")
	}
	spectator := NewVision(m, Neutral)
	if spectator.IsVisible(m, Vec(1, 1)) {
		t.Fatalf("expected spectator to see nothing under fog")
	}
}

func TestVision_ApplyHidesUnitsOutsideVision(t *testing.T) {
	m := testMap(true).WithBuilding(Vec(7, 8), Building{ID: BuildingHouse, Player: 2, Health: 100})
	fogged := NewVision(m, 1).Apply(m)
	if _, ok := fogged.UnitAt(Vec(8, 8)); ok {
		t.Fatalf("expected hidden enemy unit removed")
	}
	if _, ok := fogged.UnitAt(Vec(1, 1)); !ok {
		t.Fatalf("expected own unit kept")
	}
	b, ok := fogged.BuildingAt(Vec(7, 8))
	if !ok || b.Player != Neutral {
		t.Fatalf("expected hidden building neutralized, got=%+v ok=%v", b, ok)
	}
}

func TestAttackDirection_Opposite(t *testing.T) {
	d := AttackDirection(Vec(1, 2), Vec(1, 1))
	if d[0] != DirectionUp || d[1] != DirectionDown {
		t.Fatalf("direction mismatch: got=%v want=[up down]", d)
	}
	r := AttackDirection(Vec(1, 1), Vec(1, 2))
	if r[0] != d[1] || r[1] != d[0] {
		t.Fatalf("reverse direction mismatch: got=%v", r)
	}
}

func TestHiddenLabels_IgnoresLabelsOfVisibleObjectives(t *testing.T) {
	got := HiddenLabels([]Objective{
		{Type: ObjectiveCaptureLabel, Hidden: true, Labels: []Label{3, 1}},
		{Type: ObjectiveDestroyLabel, Labels: []Label{1}},
	})
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("hidden labels mismatch: got=%v want=[3]", got)
	}
	if HiddenLabels(nil) != nil {
		t.Fatalf("expected nil for no objectives")
	}
}

func TestUnit_AttackWeaponSkipsEmptyAmmo(t *testing.T) {
	tank, _ := LookupUnit(UnitSmallTank)
	u := tank.Create(1)
	if _, ok := u.AttackWeapon(1); !ok {
		t.Fatalf("expected weapon with full ammo")
	}
	u = u.WithAmmo(u.Ammo.Set(1, 0))
	if _, ok := u.AttackWeapon(1); ok {
		t.Fatalf("expected no weapon with empty ammo")
	}
	inf, _ := LookupUnit(UnitInfantry)
	if _, ok := inf.Create(1).AttackWeapon(1); !ok {
		t.Fatalf("expected unlimited weapon to always fire")
	}
}
