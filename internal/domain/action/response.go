package action

import "skirmish/internal/domain/board"

// ResponseType is the wire discriminant of a Response. The numeric order is
// part of the wire format: append new variants, never reorder.
type ResponseType uint8

const (
	TypeStart ResponseType = iota
	TypeBeginGame
	TypeMove
	TypeAttackUnit
	TypeAttackBuilding
	TypeEndTurn
	TypeActivatePower
	TypeBuySkill
	TypeActivateCrystal
	TypeCreateUnit
	TypeCapture
	TypeGameOver
	TypeHiddenSourceMove
	TypeHiddenTargetMove
	TypeHiddenSourceAttackUnit
	TypeHiddenTargetAttackUnit
	TypeHiddenSourceAttackBuilding
	TypeHiddenTargetAttackBuilding
)

var responseTypeNames = [...]string{
	TypeStart:                      "Start",
	TypeBeginGame:                  "BeginGame",
	TypeMove:                       "Move",
	TypeAttackUnit:                 "AttackUnit",
	TypeAttackBuilding:             "AttackBuilding",
	TypeEndTurn:                    "EndTurn",
	TypeActivatePower:              "ActivatePower",
	TypeBuySkill:                   "BuySkill",
	TypeActivateCrystal:            "ActivateCrystal",
	TypeCreateUnit:                 "CreateUnit",
	TypeCapture:                    "Capture",
	TypeGameOver:                   "GameOver",
	TypeHiddenSourceMove:           "HiddenSourceMove",
	TypeHiddenTargetMove:           "HiddenTargetMove",
	TypeHiddenSourceAttackUnit:     "HiddenSourceAttackUnit",
	TypeHiddenTargetAttackUnit:     "HiddenTargetAttackUnit",
	TypeHiddenSourceAttackBuilding: "HiddenSourceAttackBuilding",
	TypeHiddenTargetAttackBuilding: "HiddenTargetAttackBuilding",
}

func (t ResponseType) String() string {
	if int(t) < len(responseTypeNames) {
		return responseTypeNames[t]
	}
	return "Unknown"
}

// Response is the authoritative outcome of one action. The set of variants
// is closed; every implementation lives in this file.
type Response interface {
	ResponseType() ResponseType
	isResponse()
}

// DryUnit is the part of a unit an attack can change.
type DryUnit struct {
	Health int
	Ammo   board.Ammo
}

type DryBuilding struct {
	Health int
}

func Dry(u board.Unit) *DryUnit {
	return &DryUnit{Health: u.Health, Ammo: u.Ammo}
}

type StartResponse struct{}

type BeginGameResponse struct{}

type MoveResponse struct {
	From board.Vector
	To   board.Vector
	Fuel int
}

type AttackUnitResponse struct {
	From             board.Vector
	To               board.Vector
	HasCounterAttack bool
	PlayerA          board.PlayerID
	PlayerB          board.PlayerID
	// UnitA and UnitB are nil when the unit was destroyed.
	UnitA   *DryUnit
	UnitB   *DryUnit
	ChargeA int
	ChargeB int
}

type AttackBuildingResponse struct {
	From             board.Vector
	To               board.Vector
	HasCounterAttack bool
	PlayerA          board.PlayerID
	PlayerB          board.PlayerID
	UnitA            *DryUnit
	Building         *DryBuilding
	ChargeA          int
	ChargeB          int
}

type EndTurnPlayer struct {
	Player board.PlayerID
	Funds  int
}

type EndTurnResponse struct {
	Current       EndTurnPlayer
	Next          EndTurnPlayer
	Round         int
	RotatePlayers bool
	Supply        []board.Vector
	Miss          bool
}

type ActivatePowerResponse struct {
	Skill board.Skill
	Units []board.UnitEntry
	Free  bool
}

type BuySkillResponse struct {
	From   board.Vector
	Skill  board.Skill
	Player board.PlayerID
}

type ActivateCrystalResponse struct {
	Crystal board.Crystal
	// Player is nil when the crystal is activated by a game effect.
	Player *board.PlayerID
	Biome  *board.Biome
	HQ     *board.Vector
}

type CreateUnitResponse struct {
	From board.Vector
	To   board.Vector
	Unit board.Unit
	Free bool
}

type CaptureResponse struct {
	From     board.Vector
	Building board.Building
	Player   board.PlayerID
}

type GameOverResponse struct {
	Winner board.PlayerID
}

// HiddenSourceMoveResponse is a move that starts in fog and ends in vision.
type HiddenSourceMoveResponse struct {
	To   board.Vector
	Unit board.Unit
}

// HiddenTargetMoveResponse is a move that leaves vision into fog.
type HiddenTargetMoveResponse struct {
	From board.Vector
}

type HiddenSourceAttackUnitResponse struct {
	To      board.Vector
	UnitB   *DryUnit
	ChargeB int
}

type HiddenTargetAttackUnitResponse struct {
	From             board.Vector
	HasCounterAttack bool
	UnitA            *DryUnit
	ChargeA          int
}

type HiddenSourceAttackBuildingResponse struct {
	To       board.Vector
	Building *DryBuilding
	ChargeB  int
}

type HiddenTargetAttackBuildingResponse struct {
	From    board.Vector
	UnitA   *DryUnit
	ChargeA int
}

func (StartResponse) ResponseType() ResponseType           { return TypeStart }
func (BeginGameResponse) ResponseType() ResponseType       { return TypeBeginGame }
func (MoveResponse) ResponseType() ResponseType            { return TypeMove }
func (AttackUnitResponse) ResponseType() ResponseType      { return TypeAttackUnit }
func (AttackBuildingResponse) ResponseType() ResponseType  { return TypeAttackBuilding }
func (EndTurnResponse) ResponseType() ResponseType         { return TypeEndTurn }
func (ActivatePowerResponse) ResponseType() ResponseType   { return TypeActivatePower }
func (BuySkillResponse) ResponseType() ResponseType        { return TypeBuySkill }
func (ActivateCrystalResponse) ResponseType() ResponseType { return TypeActivateCrystal }
func (CreateUnitResponse) ResponseType() ResponseType      { return TypeCreateUnit }
func (CaptureResponse) ResponseType() ResponseType         { return TypeCapture }
func (GameOverResponse) ResponseType() ResponseType        { return TypeGameOver }
func (HiddenSourceMoveResponse) ResponseType() ResponseType {
	return TypeHiddenSourceMove
}
func (HiddenTargetMoveResponse) ResponseType() ResponseType {
	return TypeHiddenTargetMove
}
func (HiddenSourceAttackUnitResponse) ResponseType() ResponseType {
	return TypeHiddenSourceAttackUnit
}
func (HiddenTargetAttackUnitResponse) ResponseType() ResponseType {
	return TypeHiddenTargetAttackUnit
}
func (HiddenSourceAttackBuildingResponse) ResponseType() ResponseType {
	return TypeHiddenSourceAttackBuilding
}
func (HiddenTargetAttackBuildingResponse) ResponseType() ResponseType {
	return TypeHiddenTargetAttackBuilding
}

func (StartResponse) isResponse()                      {}
func (BeginGameResponse) isResponse()                  {}
func (MoveResponse) isResponse()                       {}
func (AttackUnitResponse) isResponse()                 {}
func (AttackBuildingResponse) isResponse()             {}
func (EndTurnResponse) isResponse()                    {}
func (ActivatePowerResponse) isResponse()              {}
func (BuySkillResponse) isResponse()                   {}
func (ActivateCrystalResponse) isResponse()            {}
func (CreateUnitResponse) isResponse()                 {}
func (CaptureResponse) isResponse()                    {}
func (GameOverResponse) isResponse()                   {}
func (HiddenSourceMoveResponse) isResponse()           {}
func (HiddenTargetMoveResponse) isResponse()           {}
func (HiddenSourceAttackUnitResponse) isResponse()     {}
func (HiddenTargetAttackUnitResponse) isResponse()     {}
func (HiddenSourceAttackBuildingResponse) isResponse() {}
func (HiddenTargetAttackBuildingResponse) isResponse() {}

// Positions returns the from/to positions a response acts on. Either may be
// nil when the variant has no such position.
func Positions(r Response) (from, to *board.Vector) {
	switch v := r.(type) {
	case MoveResponse:
		return &v.From, &v.To
	case AttackUnitResponse:
		return &v.From, &v.To
	case AttackBuildingResponse:
		return &v.From, &v.To
	case BuySkillResponse:
		return &v.From, nil
	case CreateUnitResponse:
		return &v.From, &v.To
	case CaptureResponse:
		return &v.From, nil
	case HiddenSourceMoveResponse:
		return nil, &v.To
	case HiddenTargetMoveResponse:
		return &v.From, nil
	case HiddenSourceAttackUnitResponse:
		return nil, &v.To
	case HiddenTargetAttackUnitResponse:
		return &v.From, nil
	case HiddenSourceAttackBuildingResponse:
		return nil, &v.To
	case HiddenTargetAttackBuildingResponse:
		return &v.From, nil
	default:
		return nil, nil
	}
}

// IsAttack reports whether r is a fully visible attack.
func IsAttack(r Response) bool {
	switch r.(type) {
	case AttackUnitResponse, AttackBuildingResponse:
		return true
	default:
		return false
	}
}
