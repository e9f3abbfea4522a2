package rules

import (
	"errors"
	"fmt"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

var ErrInconsistent = errors.New("response does not fit map")

// Apply returns the map after resp. It is pure and the only state
// transition of the game: current = Apply(previous, resp).
func Apply(m board.MapData, resp action.Response) (board.MapData, error) {
	if resp == nil {
		return m, fmt.Errorf("%w: nil response", ErrInconsistent)
	}
	switch v := resp.(type) {
	case action.StartResponse, action.BeginGameResponse, action.GameOverResponse:
		return m, nil
	case action.MoveResponse:
		u, ok := m.UnitAt(v.From)
		if !ok {
			return m, missing("unit", v.From)
		}
		u.Fuel = v.Fuel
		u.Moved = true
		return m.WithoutUnit(v.From).WithUnit(v.To, u), nil
	case action.AttackUnitResponse:
		out, err := applyAttacker(m, v.From, v.UnitA, v.HasCounterAttack)
		if err != nil {
			return m, err
		}
		out, err = applyDefender(out, v.To, v.UnitB)
		if err != nil {
			return m, err
		}
		return applyCharges(out, v.PlayerA, v.ChargeA, v.PlayerB, v.ChargeB), nil
	case action.AttackBuildingResponse:
		out, err := applyAttacker(m, v.From, v.UnitA, v.HasCounterAttack)
		if err != nil {
			return m, err
		}
		out, err = applyBuildingDamage(out, v.To, v.Building)
		if err != nil {
			return m, err
		}
		return applyCharges(out, v.PlayerA, v.ChargeA, v.PlayerB, v.ChargeB), nil
	case action.EndTurnResponse:
		return applyEndTurn(m, v)
	case action.ActivatePowerResponse:
		return applyPower(m, v)
	case action.BuySkillResponse:
		p, ok := m.Player(v.Player)
		if !ok {
			return m, fmt.Errorf("%w: %w %d", ErrInconsistent, board.ErrUnknownPlayer, v.Player)
		}
		info, _ := board.LookupSkill(v.Skill)
		p = p.WithSkill(v.Skill)
		p.Funds -= info.Price
		return m.WithPlayer(p), nil
	case action.ActivateCrystalResponse:
		out := m
		if v.Biome != nil {
			c := out.Config()
			c.Biome = *v.Biome
			out = out.WithConfig(c)
		}
		if v.HQ != nil && v.Player != nil {
			hq, _ := board.LookupBuilding(board.BuildingHQ)
			out = out.WithBuilding(*v.HQ, hq.Create(*v.Player))
		}
		return out, nil
	case action.CreateUnitResponse:
		out := m.WithUnit(v.To, v.Unit)
		if !v.Free {
			p, ok := out.Player(v.Unit.Player)
			if !ok {
				return m, fmt.Errorf("%w: %w %d", ErrInconsistent, board.ErrUnknownPlayer, v.Unit.Player)
			}
			p.Funds -= v.Unit.Info().Cost
			out = out.WithPlayer(p)
		}
		return out, nil
	case action.CaptureResponse:
		u, ok := m.UnitAt(v.From)
		if !ok {
			return m, missing("unit", v.From)
		}
		return m.WithBuilding(v.From, v.Building).WithUnit(v.From, u.Complete()), nil
	case action.HiddenSourceMoveResponse:
		return m.WithUnit(v.To, v.Unit), nil
	case action.HiddenTargetMoveResponse:
		if _, ok := m.UnitAt(v.From); !ok {
			return m, missing("unit", v.From)
		}
		return m.WithoutUnit(v.From), nil
	case action.HiddenSourceAttackUnitResponse:
		u, _ := m.UnitAt(v.To)
		out, err := applyDefender(m, v.To, v.UnitB)
		if err != nil {
			return m, err
		}
		return setCharge(out, u.Player, v.ChargeB), nil
	case action.HiddenTargetAttackUnitResponse:
		u, _ := m.UnitAt(v.From)
		out, err := applyAttacker(m, v.From, v.UnitA, v.HasCounterAttack)
		if err != nil {
			return m, err
		}
		return setCharge(out, u.Player, v.ChargeA), nil
	case action.HiddenSourceAttackBuildingResponse:
		b, _ := m.BuildingAt(v.To)
		out, err := applyBuildingDamage(m, v.To, v.Building)
		if err != nil {
			return m, err
		}
		return setCharge(out, b.Player, v.ChargeB), nil
	case action.HiddenTargetAttackBuildingResponse:
		u, _ := m.UnitAt(v.From)
		out, err := applyAttacker(m, v.From, v.UnitA, false)
		if err != nil {
			return m, err
		}
		return setCharge(out, u.Player, v.ChargeA), nil
	default:
		return m, &action.UnknownVariantError{Op: "apply response", Discriminant: resp.ResponseType()}
	}
}

// ApplyAll folds responses over m in order.
func ApplyAll(m board.MapData, resps ...action.Response) (board.MapData, error) {
	var err error
	for _, r := range resps {
		if m, err = Apply(m, r); err != nil {
			return m, err
		}
	}
	return m, nil
}

func missing(kind string, at board.Vector) error {
	return fmt.Errorf("%w: no %s at %s", ErrInconsistent, kind, at)
}

func applyAttacker(m board.MapData, from board.Vector, dry *action.DryUnit, hit bool) (board.MapData, error) {
	u, ok := m.UnitAt(from)
	if !ok {
		return m, missing("attacker", from)
	}
	if dry == nil {
		return m.WithoutUnit(from), nil
	}
	u.Health = dry.Health
	u.Ammo = dry.Ammo
	if hit {
		u.Shield = false
	}
	return m.WithUnit(from, u.Complete()), nil
}

func applyDefender(m board.MapData, to board.Vector, dry *action.DryUnit) (board.MapData, error) {
	u, ok := m.UnitAt(to)
	if !ok {
		return m, missing("defender", to)
	}
	if dry == nil {
		return m.WithoutUnit(to), nil
	}
	u.Health = dry.Health
	u.Ammo = dry.Ammo
	u.Shield = false
	return m.WithUnit(to, u), nil
}

func applyBuildingDamage(m board.MapData, to board.Vector, dry *action.DryBuilding) (board.MapData, error) {
	b, ok := m.BuildingAt(to)
	if !ok {
		return m, missing("building", to)
	}
	if dry == nil {
		return m.WithoutBuilding(to), nil
	}
	b.Health = dry.Health
	return m.WithBuilding(to, b), nil
}

func applyCharges(m board.MapData, a board.PlayerID, chargeA int, b board.PlayerID, chargeB int) board.MapData {
	return setCharge(setCharge(m, a, chargeA), b, chargeB)
}

func setCharge(m board.MapData, id board.PlayerID, charge int) board.MapData {
	p, ok := m.Player(id)
	if !ok {
		return m
	}
	p.Charge = charge
	return m.WithPlayer(p)
}

func applyEndTurn(m board.MapData, v action.EndTurnResponse) (board.MapData, error) {
	current, ok := m.Player(v.Current.Player)
	if !ok {
		return m, fmt.Errorf("%w: %w %d", ErrInconsistent, board.ErrUnknownPlayer, v.Current.Player)
	}
	next, ok := m.Player(v.Next.Player)
	if !ok {
		return m, fmt.Errorf("%w: %w %d", ErrInconsistent, board.ErrUnknownPlayer, v.Next.Player)
	}
	current.Funds = v.Current.Funds
	out := m.WithPlayer(current)
	next, _ = out.Player(next.ID)
	next.Funds = v.Next.Funds
	out = out.WithPlayer(next.WithoutActiveSkills())

	supply := map[board.Vector]bool{}
	for _, pos := range v.Supply {
		supply[pos] = true
	}
	out = out.MapUnits(func(pos board.Vector, u board.Unit) board.Unit {
		if u.Player != next.ID {
			return u
		}
		u = u.Recover()
		if supply[pos] {
			u = u.Refill()
		}
		return u
	})
	return out.WithCurrentPlayer(next.ID).WithRound(v.Round), nil
}

func applyPower(m board.MapData, v action.ActivatePowerResponse) (board.MapData, error) {
	p := m.CurrentPlayer()
	if p.ID == board.Neutral {
		return m, fmt.Errorf("%w: no current player", ErrInconsistent)
	}
	info, ok := board.LookupSkill(v.Skill)
	if !ok {
		return m, &action.InvalidFieldError{Field: "skill", Value: int(v.Skill)}
	}
	p = p.WithActiveSkill(v.Skill)
	if !v.Free {
		p.Charge -= info.Cost()
	}
	out := m.WithPlayer(p)
	if info.Shield {
		out = out.MapUnits(func(_ board.Vector, u board.Unit) board.Unit {
			if u.Player == p.ID {
				u.Shield = true
			}
			return u
		})
	}
	if info.Supply {
		out = out.MapUnits(func(_ board.Vector, u board.Unit) board.Unit {
			if u.Player == p.ID {
				return u.Refill()
			}
			return u
		})
	}
	for _, e := range v.Units {
		out = out.WithUnit(e.Pos, e.Unit)
	}
	return out, nil
}
