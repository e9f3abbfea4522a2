package action

import (
	"fmt"

	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

// ActionType is the wire discriminant of a client Action.
type ActionType uint8

const (
	ActionStart ActionType = iota
	ActionMove
	ActionAttackUnit
	ActionAttackBuilding
	ActionEndTurn
	ActionActivatePower
	ActionBuySkill
	ActionActivateCrystal
	ActionCreateUnit
	ActionCapture
)

var actionTypeNames = [...]string{
	ActionStart:           "Start",
	ActionMove:            "Move",
	ActionAttackUnit:      "AttackUnit",
	ActionAttackBuilding:  "AttackBuilding",
	ActionEndTurn:         "EndTurn",
	ActionActivatePower:   "ActivatePower",
	ActionBuySkill:        "BuySkill",
	ActionActivateCrystal: "ActivateCrystal",
	ActionCreateUnit:      "CreateUnit",
	ActionCapture:         "Capture",
}

func (t ActionType) String() string {
	if int(t) < len(actionTypeNames) {
		return actionTypeNames[t]
	}
	return "Unknown"
}

// Action is a request to change the game, as submitted by a player or run by
// a game effect.
type Action interface {
	ActionType() ActionType
}

type StartAction struct{}

type MoveAction struct {
	From board.Vector
	To   board.Vector
}

type AttackUnitAction struct {
	From board.Vector
	To   board.Vector
}

type AttackBuildingAction struct {
	From board.Vector
	To   board.Vector
}

type EndTurnAction struct{}

type ActivatePowerAction struct {
	Skill  board.Skill
	Target *board.Vector
}

type BuySkillAction struct {
	From  board.Vector
	Skill board.Skill
}

type ActivateCrystalAction struct {
	Crystal board.Crystal
	Biome   *board.Biome
	HQ      *board.Vector
}

type CreateUnitAction struct {
	From   board.Vector
	To     board.Vector
	UnitID int
}

type CaptureAction struct {
	From board.Vector
}

func (StartAction) ActionType() ActionType           { return ActionStart }
func (MoveAction) ActionType() ActionType            { return ActionMove }
func (AttackUnitAction) ActionType() ActionType      { return ActionAttackUnit }
func (AttackBuildingAction) ActionType() ActionType  { return ActionAttackBuilding }
func (EndTurnAction) ActionType() ActionType         { return ActionEndTurn }
func (ActivatePowerAction) ActionType() ActionType   { return ActionActivatePower }
func (BuySkillAction) ActionType() ActionType        { return ActionBuySkill }
func (ActivateCrystalAction) ActionType() ActionType { return ActionActivateCrystal }
func (CreateUnitAction) ActionType() ActionType      { return ActionCreateUnit }
func (CaptureAction) ActionType() ActionType         { return ActionCapture }

func EncodeAction(a Action) (tuple.Tuple, error) {
	if a == nil {
		return nil, fmt.Errorf("encode action: nil action")
	}
	t := int(a.ActionType())
	switch v := a.(type) {
	case StartAction, EndTurnAction:
		return tuple.Tuple{t}, nil
	case MoveAction:
		return tuple.Tuple{t, vec(v.From), vec(v.To)}, nil
	case AttackUnitAction:
		return tuple.Tuple{t, vec(v.From), vec(v.To)}, nil
	case AttackBuildingAction:
		return tuple.Tuple{t, vec(v.From), vec(v.To)}, nil
	case ActivatePowerAction:
		if err := checkSkill(v.Skill); err != nil {
			return nil, err
		}
		return tuple.Tuple{t, int(v.Skill), optVec(v.Target)}, nil
	case BuySkillAction:
		if err := checkSkill(v.Skill); err != nil {
			return nil, err
		}
		return tuple.Tuple{t, vec(v.From), int(v.Skill)}, nil
	case ActivateCrystalAction:
		if !v.Crystal.Valid() {
			return nil, &InvalidFieldError{Field: "crystal", Value: int(v.Crystal)}
		}
		var biome any
		if v.Biome != nil {
			if !v.Biome.Valid() {
				return nil, &InvalidFieldError{Field: "biome", Value: int(*v.Biome)}
			}
			biome = int(*v.Biome)
		}
		return tuple.Tuple{t, int(v.Crystal), biome, optVec(v.HQ)}, nil
	case CreateUnitAction:
		return tuple.Tuple{t, vec(v.From), vec(v.To), v.UnitID}, nil
	case CaptureAction:
		return tuple.Tuple{t, vec(v.From)}, nil
	default:
		return nil, &UnknownVariantError{Op: "encode action", Discriminant: fmt.Sprintf("%T", a)}
	}
}

func DecodeAction(t tuple.Tuple) (Action, error) {
	if len(t) == 0 {
		return nil, &tuple.MalformedError{Field: "type", Value: "<missing>"}
	}
	d, ok := tuple.Int(t[0])
	if !ok {
		return nil, &tuple.MalformedError{Field: "type", Value: t[0]}
	}
	r := tuple.NewReader(t[1:])
	var out Action
	switch ActionType(d) {
	case ActionStart:
		out = StartAction{}
	case ActionEndTurn:
		out = EndTurnAction{}
	case ActionMove:
		out = MoveAction{From: readVec(r, "from"), To: readVec(r, "to")}
	case ActionAttackUnit:
		out = AttackUnitAction{From: readVec(r, "from"), To: readVec(r, "to")}
	case ActionAttackBuilding:
		out = AttackBuildingAction{From: readVec(r, "from"), To: readVec(r, "to")}
	case ActionActivatePower:
		out = ActivatePowerAction{Skill: readSkill(r, "skill"), Target: readOptVec(r, "target")}
	case ActionBuySkill:
		out = BuySkillAction{From: readVec(r, "from"), Skill: readSkill(r, "skill")}
	case ActionActivateCrystal:
		crystal := board.Crystal(r.Int("crystal"))
		if r.Err() == nil && !crystal.Valid() {
			r.Fail(&InvalidFieldError{Field: "crystal", Value: int(crystal)})
		}
		out = ActivateCrystalAction{Crystal: crystal, Biome: readOptBiome(r, "biome"), HQ: readOptVec(r, "hq")}
	case ActionCreateUnit:
		out = CreateUnitAction{From: readVec(r, "from"), To: readVec(r, "to"), UnitID: r.Int("unitId")}
	case ActionCapture:
		out = CaptureAction{From: readVec(r, "from")}
	default:
		return nil, &UnknownVariantError{Op: "decode action", Discriminant: d}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s action: %w", ActionType(d), err)
	}
	return out, nil
}
