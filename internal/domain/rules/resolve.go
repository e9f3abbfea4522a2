package rules

import (
	"errors"
	"fmt"
	"sort"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

var ErrIllegalAction = errors.New("illegal action")

type IllegalActionError struct {
	Action action.ActionType
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrIllegalAction.Error(), e.Action, e.Reason)
}

func (e *IllegalActionError) Unwrap() error {
	return ErrIllegalAction
}

func illegal(a action.Action, format string, args ...any) error {
	return &IllegalActionError{Action: a.ActionType(), Reason: fmt.Sprintf(format, args...)}
}

// Engine is the reference simulator. It resolves actions into responses
// and expands the follow-up cascade a single submission produces.
type Engine struct {
	Tuning Tuning
}

func NewEngine(t Tuning) Engine {
	return Engine{Tuning: t.Normalize()}
}

// Resolve checks one action against m and computes its response. actor is
// the submitting player, or board.Neutral for game effects, which act on
// behalf of the current player.
func (e Engine) Resolve(m board.MapData, a action.Action, actor board.PlayerID) (action.Response, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil action", ErrIllegalAction)
	}
	if _, isStart := a.(action.StartAction); !isStart && actor != board.Neutral && actor != m.CurrentPlayerID() {
		return nil, illegal(a, "player %d is not the current player", actor)
	}
	player := actor
	if player == board.Neutral {
		player = m.CurrentPlayerID()
	}

	switch v := a.(type) {
	case action.StartAction:
		return action.StartResponse{}, nil
	case action.EndTurnAction:
		return e.resolveEndTurn(m, player), nil
	case action.MoveAction:
		return e.resolveMove(m, v, player)
	case action.AttackUnitAction:
		return e.resolveAttackUnit(m, v, player)
	case action.AttackBuildingAction:
		return e.resolveAttackBuilding(m, v, player)
	case action.ActivatePowerAction:
		p, _ := m.Player(player)
		info, ok := board.LookupSkill(v.Skill)
		if !ok || !p.HasSkill(v.Skill) {
			return nil, illegal(a, "skill %d not owned", v.Skill)
		}
		if p.HasActiveSkill(v.Skill) {
			return nil, illegal(a, "skill %d already active", v.Skill)
		}
		if p.Charge < info.Cost() {
			return nil, illegal(a, "charge %d below cost %d", p.Charge, info.Cost())
		}
		return action.ActivatePowerResponse{Skill: v.Skill}, nil
	case action.BuySkillAction:
		p, _ := m.Player(player)
		b, ok := m.BuildingAt(v.From)
		if !ok || b.Player != player || !b.Info().Purchasing {
			return nil, illegal(a, "no shop at %s", v.From)
		}
		info, ok := board.LookupSkill(v.Skill)
		if !ok || p.HasSkill(v.Skill) {
			return nil, illegal(a, "skill %d not for sale", v.Skill)
		}
		if p.Funds < info.Price {
			return nil, illegal(a, "funds %d below price %d", p.Funds, info.Price)
		}
		return action.BuySkillResponse{From: v.From, Skill: v.Skill, Player: player}, nil
	case action.ActivateCrystalAction:
		if !v.Crystal.Valid() {
			return nil, &action.InvalidFieldError{Field: "crystal", Value: int(v.Crystal)}
		}
		resp := action.ActivateCrystalResponse{Crystal: v.Crystal, Biome: v.Biome, HQ: v.HQ}
		if actor != board.Neutral {
			id := actor
			resp.Player = &id
		}
		return resp, nil
	case action.CreateUnitAction:
		return e.resolveCreateUnit(m, v, player)
	case action.CaptureAction:
		u, ok := m.UnitAt(v.From)
		if !ok || u.Player != player || u.Completed || !u.Info().Capture {
			return nil, illegal(a, "no capturing unit at %s", v.From)
		}
		b, ok := m.BuildingAt(v.From)
		if !ok || m.TeamOf(b.Player) == m.TeamOf(player) {
			return nil, illegal(a, "nothing to capture at %s", v.From)
		}
		b.Player = player
		return action.CaptureResponse{From: v.From, Building: b, Player: player}, nil
	default:
		return nil, &action.UnknownVariantError{Op: "resolve action", Discriminant: a.ActionType()}
	}
}

func (e Engine) resolveMove(m board.MapData, a action.MoveAction, player board.PlayerID) (action.Response, error) {
	u, ok := m.UnitAt(a.From)
	if !ok || u.Player != player {
		return nil, illegal(a, "no own unit at %s", a.From)
	}
	if u.Moved || u.Completed {
		return nil, illegal(a, "unit at %s already moved", a.From)
	}
	if !m.Contains(a.To) {
		return nil, illegal(a, "%s is off the map", a.To)
	}
	if _, occupied := m.UnitAt(a.To); occupied {
		return nil, illegal(a, "%s is occupied", a.To)
	}
	dist := a.From.Distance(a.To)
	if dist == 0 || dist > u.Info().Radius || dist > u.Fuel {
		return nil, illegal(a, "%s is out of reach", a.To)
	}
	return action.MoveResponse{From: a.From, To: a.To, Fuel: u.Fuel - dist}, nil
}

func (e Engine) resolveAttackUnit(m board.MapData, a action.AttackUnitAction, player board.PlayerID) (action.Response, error) {
	attacker, ok := m.UnitAt(a.From)
	if !ok || attacker.Player != player {
		return nil, illegal(a, "no own unit at %s", a.From)
	}
	if attacker.Completed {
		return nil, illegal(a, "unit at %s already acted", a.From)
	}
	defender, ok := m.UnitAt(a.To)
	if !ok || !m.IsOpponent(player, defender.Player) {
		return nil, illegal(a, "no enemy unit at %s", a.To)
	}
	dist := a.From.Distance(a.To)
	weapon, ok := attacker.AttackWeapon(dist)
	if !ok {
		return nil, illegal(a, "unit at %s cannot reach %s", a.From, a.To)
	}

	attacker = fire(attacker, weapon)
	dealt := e.damage(m, attacker, weapon, defender)
	defenderAfter := hit(defender, dealt)

	counter := false
	attackerAfter := attacker
	taken := 0
	if defenderAfter.Health > 0 && dist == 1 && e.Tuning.CounterAttacks() {
		if w, ok := defenderAfter.AttackWeapon(dist); ok {
			counter = true
			defenderAfter = fire(defenderAfter, w)
			taken = e.damage(m, defenderAfter, w, attacker)
			attackerAfter = hit(attacker, taken)
		}
	}

	resp := action.AttackUnitResponse{
		From:             a.From,
		To:               a.To,
		HasCounterAttack: counter,
		PlayerA:          attacker.Player,
		PlayerB:          defender.Player,
		ChargeA:          e.charge(m, attacker.Player, taken),
		ChargeB:          e.charge(m, defender.Player, defender.Health-defenderAfter.Health),
	}
	if attackerAfter.Health > 0 {
		resp.UnitA = action.Dry(attackerAfter)
	}
	if defenderAfter.Health > 0 {
		resp.UnitB = action.Dry(defenderAfter)
	}
	return resp, nil
}

func (e Engine) resolveAttackBuilding(m board.MapData, a action.AttackBuildingAction, player board.PlayerID) (action.Response, error) {
	attacker, ok := m.UnitAt(a.From)
	if !ok || attacker.Player != player {
		return nil, illegal(a, "no own unit at %s", a.From)
	}
	if attacker.Completed {
		return nil, illegal(a, "unit at %s already acted", a.From)
	}
	b, ok := m.BuildingAt(a.To)
	if !ok || !m.IsOpponent(player, b.Player) {
		return nil, illegal(a, "no enemy building at %s", a.To)
	}
	if _, occupied := m.UnitAt(a.To); occupied {
		return nil, illegal(a, "building at %s is covered", a.To)
	}
	weapon, ok := attacker.AttackWeapon(a.From.Distance(a.To))
	if !ok {
		return nil, illegal(a, "unit at %s cannot reach %s", a.From, a.To)
	}
	attacker = fire(attacker, weapon)
	dealt := weapon.Damage * attacker.Health / board.MaxHealth
	dealt = dealt * (100 - b.Info().Defense) / 100
	health := b.Health - dealt

	resp := action.AttackBuildingResponse{
		From:    a.From,
		To:      a.To,
		PlayerA: attacker.Player,
		PlayerB: b.Player,
		UnitA:   action.Dry(attacker),
		ChargeA: e.charge(m, attacker.Player, 0),
		ChargeB: e.charge(m, b.Player, min(dealt, b.Health)),
	}
	if health > 0 {
		resp.Building = &action.DryBuilding{Health: health}
	}
	return resp, nil
}

func (e Engine) resolveEndTurn(m board.MapData, player board.PlayerID) action.Response {
	current, _ := m.Player(player)
	next, wrapped := m.NextPlayer(player)
	round := m.Round()
	if wrapped {
		round++
	}

	income := 0
	for _, entry := range m.Buildings() {
		if entry.Building.Player == next.ID && entry.Building.Info().Income {
			income += e.Tuning.IncomePerBuilding
		}
	}

	var supply []board.Vector
	for _, entry := range m.UnitsOf(next.ID) {
		b, ok := m.BuildingAt(entry.Pos)
		if ok && b.Player == next.ID && entry.Unit.NeedsSupply() {
			supply = append(supply, entry.Pos)
		}
	}
	sort.Slice(supply, func(i, j int) bool { return supply[i].Less(supply[j]) })

	return action.EndTurnResponse{
		Current:       action.EndTurnPlayer{Player: current.ID, Funds: current.Funds},
		Next:          action.EndTurnPlayer{Player: next.ID, Funds: next.Funds + income},
		Round:         round,
		RotatePlayers: wrapped,
		Supply:        supply,
	}
}

func (e Engine) resolveCreateUnit(m board.MapData, a action.CreateUnitAction, player board.PlayerID) (action.Response, error) {
	b, ok := m.BuildingAt(a.From)
	if !ok || b.Player != player || !b.Info().CanCreate {
		return nil, illegal(a, "no factory at %s", a.From)
	}
	info, ok := board.LookupUnit(a.UnitID)
	if !ok {
		return nil, illegal(a, "unknown unit %d", a.UnitID)
	}
	if a.From.Distance(a.To) > 1 || !m.Contains(a.To) {
		return nil, illegal(a, "%s is not next to %s", a.To, a.From)
	}
	if _, occupied := m.UnitAt(a.To); occupied {
		return nil, illegal(a, "%s is occupied", a.To)
	}
	p, _ := m.Player(player)
	if p.Funds < info.Cost {
		return nil, illegal(a, "funds %d below cost %d", p.Funds, info.Cost)
	}
	return action.CreateUnitResponse{From: a.From, To: a.To, Unit: info.Create(player).Complete()}, nil
}

// damage is weapon damage scaled by the attacker's health, then by the
// attacker's active attack skills and the defender's active defense skills.
// A shield absorbs the whole hit.
func (e Engine) damage(m board.MapData, attacker board.Unit, w board.WeaponInfo, defender board.Unit) int {
	if defender.Shield {
		return 0
	}
	attack, _ := skillModifiers(m, attacker.Player)
	_, defense := skillModifiers(m, defender.Player)
	dmg := w.Damage * attacker.Health / board.MaxHealth
	dmg = dmg * (100 + attack) / 100
	dmg = dmg * (100 - defense) / 100
	return max(dmg, 0)
}

func skillModifiers(m board.MapData, id board.PlayerID) (attack, defense int) {
	p, ok := m.Player(id)
	if !ok {
		return 0, 0
	}
	for _, s := range p.ActiveSkills {
		info, _ := board.LookupSkill(s)
		attack += info.Attack
		defense += info.Defense
	}
	return attack, defense
}

// charge is the player's charge after its units lost the given health.
func (e Engine) charge(m board.MapData, id board.PlayerID, lost int) int {
	p, _ := m.Player(id)
	return min(p.Charge+lost*e.Tuning.ChargePerDamage, board.MaxCharges*board.Charge)
}

func fire(u board.Unit, w board.WeaponInfo) board.Unit {
	if !w.Limited() {
		return u
	}
	n, _ := u.Ammo.Get(w.ID)
	return u.WithAmmo(u.Ammo.Set(w.ID, n-1))
}

func hit(u board.Unit, dmg int) board.Unit {
	u.Health = max(u.Health-dmg, 0)
	u.Shield = false
	return u
}
