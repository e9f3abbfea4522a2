package action

import (
	"fmt"
	"strings"

	"skirmish/internal/domain/board"
)

// Describe renders a response on one line for logs and snapshot tests.
func Describe(r Response) string {
	if r == nil {
		return "null"
	}
	name := r.ResponseType().String()
	switch v := r.(type) {
	case StartResponse, BeginGameResponse:
		return name
	case MoveResponse:
		return fmt.Sprintf("%s (%s → %s) { fuel: %d }", name, v.From, v.To, v.Fuel)
	case AttackUnitResponse:
		return fmt.Sprintf("%s (%s → %s) { hasCounterAttack: %t, playerA: %d, playerB: %d, unitA: %s, unitB: %s, chargeA: %d, chargeB: %d }",
			name, v.From, v.To, v.HasCounterAttack, v.PlayerA, v.PlayerB, describeDryUnit(v.UnitA), describeDryUnit(v.UnitB), v.ChargeA, v.ChargeB)
	case AttackBuildingResponse:
		return fmt.Sprintf("%s (%s → %s) { hasCounterAttack: %t, playerA: %d, playerB: %d, unitA: %s, building: %s, chargeA: %d, chargeB: %d }",
			name, v.From, v.To, v.HasCounterAttack, v.PlayerA, v.PlayerB, describeDryUnit(v.UnitA), describeDryBuilding(v.Building), v.ChargeA, v.ChargeB)
	case EndTurnResponse:
		return fmt.Sprintf("%s { current: { funds: %d, player: %d }, next: { funds: %d, player: %d }, round: %d, rotatePlayers: %t, supply: %s, miss: %t }",
			name, v.Current.Funds, v.Current.Player, v.Next.Funds, v.Next.Player, v.Round, v.RotatePlayers, describeVectors(v.Supply), v.Miss)
	case ActivatePowerResponse:
		units := "null"
		if len(v.Units) > 0 {
			parts := make([]string, 0, len(v.Units))
			for _, e := range v.Units {
				parts = append(parts, fmt.Sprintf("%s: Unit %d", e.Pos, e.Unit.ID))
			}
			units = "[ " + strings.Join(parts, ", ") + " ]"
		}
		return fmt.Sprintf("%s () { skill: %d, units: %s, free: %t }", name, v.Skill, units, v.Free)
	case BuySkillResponse:
		return fmt.Sprintf("%s (%s) { skill: %d, player: %d }", name, v.From, v.Skill, v.Player)
	case ActivateCrystalResponse:
		return fmt.Sprintf("%s { crystal: %d, player: %s, biome: %s, hq: %s }",
			name, v.Crystal, optPlayer(v.Player), optBiome(v.Biome), optVector(v.HQ))
	case CreateUnitResponse:
		return fmt.Sprintf("%s (%s → %s) { unit: Unit %d, player: %d, free: %t }", name, v.From, v.To, v.Unit.ID, v.Unit.Player, v.Free)
	case CaptureResponse:
		return fmt.Sprintf("%s (%s) { building: Building %d, player: %d }", name, v.From, v.Building.ID, v.Player)
	case GameOverResponse:
		return fmt.Sprintf("%s { winner: %d }", name, v.Winner)
	case HiddenSourceMoveResponse:
		return fmt.Sprintf("%s (→ %s) { unit: Unit %d, player: %d }", name, v.To, v.Unit.ID, v.Unit.Player)
	case HiddenTargetMoveResponse:
		return fmt.Sprintf("%s (%s →)", name, v.From)
	case HiddenSourceAttackUnitResponse:
		return fmt.Sprintf("%s (→ %s) { unitB: %s, chargeB: %d }", name, v.To, describeDryUnit(v.UnitB), v.ChargeB)
	case HiddenTargetAttackUnitResponse:
		return fmt.Sprintf("%s (%s →) { hasCounterAttack: %t, unitA: %s, chargeA: %d }", name, v.From, v.HasCounterAttack, describeDryUnit(v.UnitA), v.ChargeA)
	case HiddenSourceAttackBuildingResponse:
		return fmt.Sprintf("%s (→ %s) { building: %s, chargeB: %d }", name, v.To, describeDryBuilding(v.Building), v.ChargeB)
	case HiddenTargetAttackBuildingResponse:
		return fmt.Sprintf("%s (%s →) { unitA: %s, chargeA: %d }", name, v.From, describeDryUnit(v.UnitA), v.ChargeA)
	default:
		return name
	}
}

func describeDryUnit(u *DryUnit) string {
	if u == nil {
		return "null"
	}
	ammo := make([]string, 0, len(u.Ammo))
	for _, s := range u.Ammo {
		ammo = append(ammo, fmt.Sprintf("[ %d, %d ]", s.Weapon, s.Count))
	}
	if len(ammo) == 0 {
		return fmt.Sprintf("DryUnit { health: %d, ammo: null }", u.Health)
	}
	return fmt.Sprintf("DryUnit { health: %d, ammo: [ %s ] }", u.Health, strings.Join(ammo, ", "))
}

func describeDryBuilding(b *DryBuilding) string {
	if b == nil {
		return "null"
	}
	return fmt.Sprintf("DryBuilding { health: %d }", b.Health)
}

func describeVectors(vs []board.Vector) string {
	if len(vs) == 0 {
		return "null"
	}
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func optPlayer(p *board.PlayerID) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprint(int(*p))
}

func optBiome(b *board.Biome) string {
	if b == nil {
		return "null"
	}
	return fmt.Sprint(int(*b))
}

func optVector(v *board.Vector) string {
	if v == nil {
		return "null"
	}
	return v.String()
}
