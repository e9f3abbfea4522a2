package action

import (
	"errors"
	"fmt"

	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

var errNilResponse = errors.New("encode response: nil response")

// EncodeResponse packs a response into its compact tuple form. The first
// slot is always the discriminant.
func EncodeResponse(r Response) (tuple.Tuple, error) {
	if r == nil {
		return nil, errNilResponse
	}
	if err := validateResponse(r); err != nil {
		return nil, err
	}
	t := int(r.ResponseType())
	switch v := r.(type) {
	case StartResponse, BeginGameResponse:
		return tuple.Tuple{t}, nil
	case MoveResponse:
		return tuple.Tuple{t, vec(v.From), vec(v.To), v.Fuel}, nil
	case AttackUnitResponse:
		return tuple.Tuple{t, vec(v.From), vec(v.To), tuple.Bool(v.HasCounterAttack), int(v.PlayerA), int(v.PlayerB),
			dryUnit(v.UnitA), dryUnit(v.UnitB), v.ChargeA, v.ChargeB}, nil
	case AttackBuildingResponse:
		return tuple.Tuple{t, vec(v.From), vec(v.To), tuple.Bool(v.HasCounterAttack), int(v.PlayerA), int(v.PlayerB),
			dryUnit(v.UnitA), dryBuilding(v.Building), v.ChargeA, v.ChargeB}, nil
	case EndTurnResponse:
		return tuple.Tuple{t,
			tuple.Tuple{int(v.Current.Player), v.Current.Funds},
			tuple.Tuple{int(v.Next.Player), v.Next.Funds},
			v.Round, tuple.Bool(v.RotatePlayers), vectors(v.Supply), tuple.Bool(v.Miss)}, nil
	case ActivatePowerResponse:
		return tuple.Tuple{t, int(v.Skill), tuple.List(board.EncodeUnits(v.Units)), tuple.Bool(v.Free)}, nil
	case BuySkillResponse:
		return tuple.Tuple{t, vec(v.From), int(v.Skill), int(v.Player)}, nil
	case ActivateCrystalResponse:
		var player, biome any
		if v.Player != nil {
			player = int(*v.Player)
		}
		if v.Biome != nil {
			biome = int(*v.Biome)
		}
		return tuple.Tuple{t, int(v.Crystal), player, biome, optVec(v.HQ)}, nil
	case CreateUnitResponse:
		return tuple.Tuple{t, vec(v.From), vec(v.To), board.EncodeUnit(v.Unit), tuple.Bool(v.Free)}, nil
	case CaptureResponse:
		return tuple.Tuple{t, vec(v.From), board.EncodeBuilding(v.Building), int(v.Player)}, nil
	case GameOverResponse:
		return tuple.Tuple{t, int(v.Winner)}, nil
	case HiddenSourceMoveResponse:
		return tuple.Tuple{t, vec(v.To), board.EncodeUnit(v.Unit)}, nil
	case HiddenTargetMoveResponse:
		return tuple.Tuple{t, vec(v.From)}, nil
	case HiddenSourceAttackUnitResponse:
		return tuple.Tuple{t, vec(v.To), dryUnit(v.UnitB), v.ChargeB}, nil
	case HiddenTargetAttackUnitResponse:
		return tuple.Tuple{t, vec(v.From), tuple.Bool(v.HasCounterAttack), dryUnit(v.UnitA), v.ChargeA}, nil
	case HiddenSourceAttackBuildingResponse:
		return tuple.Tuple{t, vec(v.To), dryBuilding(v.Building), v.ChargeB}, nil
	case HiddenTargetAttackBuildingResponse:
		return tuple.Tuple{t, vec(v.From), dryUnit(v.UnitA), v.ChargeA}, nil
	default:
		return nil, &UnknownVariantError{Op: "encode response", Discriminant: fmt.Sprintf("%T", r)}
	}
}

// DecodeResponse is the inverse of EncodeResponse. A discriminant outside the
// known range fails with *UnknownVariantError.
func DecodeResponse(t tuple.Tuple) (Response, error) {
	if len(t) == 0 {
		return nil, &tuple.MalformedError{Field: "type", Value: "<missing>"}
	}
	d, ok := tuple.Int(t[0])
	if !ok {
		return nil, &tuple.MalformedError{Field: "type", Value: t[0]}
	}
	r := tuple.NewReader(t[1:])
	var out Response
	switch ResponseType(d) {
	case TypeStart:
		out = StartResponse{}
	case TypeBeginGame:
		out = BeginGameResponse{}
	case TypeMove:
		out = MoveResponse{From: readVec(r, "from"), To: readVec(r, "to"), Fuel: r.Int("fuel")}
	case TypeAttackUnit:
		out = AttackUnitResponse{
			From:             readVec(r, "from"),
			To:               readVec(r, "to"),
			HasCounterAttack: r.Bool("hasCounterAttack"),
			PlayerA:          board.PlayerID(r.Int("playerA")),
			PlayerB:          board.PlayerID(r.Int("playerB")),
			UnitA:            readDryUnit(r, "unitA"),
			UnitB:            readDryUnit(r, "unitB"),
			ChargeA:          r.Int("chargeA"),
			ChargeB:          r.Int("chargeB"),
		}
	case TypeAttackBuilding:
		out = AttackBuildingResponse{
			From:             readVec(r, "from"),
			To:               readVec(r, "to"),
			HasCounterAttack: r.Bool("hasCounterAttack"),
			PlayerA:          board.PlayerID(r.Int("playerA")),
			PlayerB:          board.PlayerID(r.Int("playerB")),
			UnitA:            readDryUnit(r, "unitA"),
			Building:         readDryBuilding(r, "building"),
			ChargeA:          r.Int("chargeA"),
			ChargeB:          r.Int("chargeB"),
		}
	case TypeEndTurn:
		out = EndTurnResponse{
			Current:       readEndTurnPlayer(r, "current"),
			Next:          readEndTurnPlayer(r, "next"),
			Round:         r.Int("round"),
			RotatePlayers: r.Bool("rotatePlayers"),
			Supply:        readVectors(r, "supply"),
			Miss:          r.Bool("miss"),
		}
	case TypeActivatePower:
		skill := readSkill(r, "skill")
		units, err := board.DecodeUnits(r.List("units"))
		if err != nil {
			r.Fail(err)
		}
		out = ActivatePowerResponse{Skill: skill, Units: units, Free: r.Bool("free")}
	case TypeBuySkill:
		out = BuySkillResponse{From: readVec(r, "from"), Skill: readSkill(r, "skill"), Player: board.PlayerID(r.Int("player"))}
	case TypeActivateCrystal:
		crystal := board.Crystal(r.Int("crystal"))
		if r.Err() == nil && !crystal.Valid() {
			r.Fail(&InvalidFieldError{Field: "crystal", Value: int(crystal)})
		}
		v := ActivateCrystalResponse{Crystal: crystal}
		if p := r.OptInt("player"); p != nil {
			id := board.PlayerID(*p)
			v.Player = &id
		}
		v.Biome = readOptBiome(r, "biome")
		v.HQ = readOptVec(r, "hq")
		out = v
	case TypeCreateUnit:
		out = CreateUnitResponse{From: readVec(r, "from"), To: readVec(r, "to"), Unit: readUnit(r, "unit"), Free: r.Bool("free")}
	case TypeCapture:
		out = CaptureResponse{From: readVec(r, "from"), Building: readBuilding(r, "building"), Player: board.PlayerID(r.Int("player"))}
	case TypeGameOver:
		out = GameOverResponse{Winner: board.PlayerID(r.Int("winner"))}
	case TypeHiddenSourceMove:
		out = HiddenSourceMoveResponse{To: readVec(r, "to"), Unit: readUnit(r, "unit")}
	case TypeHiddenTargetMove:
		out = HiddenTargetMoveResponse{From: readVec(r, "from")}
	case TypeHiddenSourceAttackUnit:
		out = HiddenSourceAttackUnitResponse{To: readVec(r, "to"), UnitB: readDryUnit(r, "unitB"), ChargeB: r.Int("chargeB")}
	case TypeHiddenTargetAttackUnit:
		out = HiddenTargetAttackUnitResponse{
			From:             readVec(r, "from"),
			HasCounterAttack: r.Bool("hasCounterAttack"),
			UnitA:            readDryUnit(r, "unitA"),
			ChargeA:          r.Int("chargeA"),
		}
	case TypeHiddenSourceAttackBuilding:
		out = HiddenSourceAttackBuildingResponse{To: readVec(r, "to"), Building: readDryBuilding(r, "building"), ChargeB: r.Int("chargeB")}
	case TypeHiddenTargetAttackBuilding:
		out = HiddenTargetAttackBuildingResponse{From: readVec(r, "from"), UnitA: readDryUnit(r, "unitA"), ChargeA: r.Int("chargeA")}
	default:
		return nil, &UnknownVariantError{Op: "decode response", Discriminant: d}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ResponseType(d), err)
	}
	return out, nil
}

func validateResponse(r Response) error {
	switch v := r.(type) {
	case ActivatePowerResponse:
		return checkSkill(v.Skill)
	case BuySkillResponse:
		return checkSkill(v.Skill)
	case ActivateCrystalResponse:
		if !v.Crystal.Valid() {
			return &InvalidFieldError{Field: "crystal", Value: int(v.Crystal)}
		}
		if v.Biome != nil && !v.Biome.Valid() {
			return &InvalidFieldError{Field: "biome", Value: int(*v.Biome)}
		}
	}
	return nil
}

func checkSkill(s board.Skill) error {
	if !s.Valid() {
		return &InvalidFieldError{Field: "skill", Value: int(s)}
	}
	return nil
}

func vec(v board.Vector) tuple.Tuple {
	return board.EncodeVector(v)
}

func optVec(v *board.Vector) any {
	if v == nil {
		return nil
	}
	return board.EncodeVector(*v)
}

func vectors(vs []board.Vector) any {
	if len(vs) == 0 {
		return nil
	}
	out := make(tuple.Tuple, 0, len(vs))
	for _, v := range vs {
		out = append(out, board.EncodeVector(v))
	}
	return out
}

func dryUnit(u *DryUnit) any {
	if u == nil {
		return nil
	}
	return tuple.Tuple{u.Health, tuple.List(board.EncodeAmmo(u.Ammo))}
}

func dryBuilding(b *DryBuilding) any {
	if b == nil {
		return nil
	}
	return tuple.Tuple{b.Health}
}

func readVec(r *tuple.Reader, field string) board.Vector {
	l := r.List(field)
	if l == nil {
		r.Fail(&tuple.MalformedError{Field: field, Value: nil})
		return board.Vector{}
	}
	v, err := board.DecodeVector(l)
	if err != nil {
		r.Fail(err)
	}
	return v
}

func readOptVec(r *tuple.Reader, field string) *board.Vector {
	l := r.List(field)
	if l == nil {
		return nil
	}
	v, err := board.DecodeVector(l)
	if err != nil {
		r.Fail(err)
		return nil
	}
	return &v
}

func readVectors(r *tuple.Reader, field string) []board.Vector {
	l := r.List(field)
	if l == nil {
		return nil
	}
	out := make([]board.Vector, 0, len(l))
	for _, raw := range l {
		item, ok := tuple.AsList(raw)
		if !ok {
			r.Fail(&tuple.MalformedError{Field: field, Value: raw})
			return nil
		}
		v, err := board.DecodeVector(item)
		if err != nil {
			r.Fail(err)
			return nil
		}
		out = append(out, v)
	}
	return out
}

func readDryUnit(r *tuple.Reader, field string) *DryUnit {
	l := r.List(field)
	if l == nil {
		return nil
	}
	sr := tuple.NewReader(l)
	u := &DryUnit{Health: sr.Int(field + ".health")}
	u.Ammo = board.DecodeAmmo(sr, field+".ammo")
	if err := sr.Err(); err != nil {
		r.Fail(err)
		return nil
	}
	return u
}

func readDryBuilding(r *tuple.Reader, field string) *DryBuilding {
	l := r.List(field)
	if l == nil {
		return nil
	}
	sr := tuple.NewReader(l)
	b := &DryBuilding{Health: sr.Int(field + ".health")}
	if err := sr.Err(); err != nil {
		r.Fail(err)
		return nil
	}
	return b
}

func readEndTurnPlayer(r *tuple.Reader, field string) EndTurnPlayer {
	l := r.List(field)
	sr := tuple.NewReader(l)
	p := EndTurnPlayer{Player: board.PlayerID(sr.Int(field + ".player")), Funds: sr.Int(field + ".funds")}
	if err := sr.Err(); err != nil {
		r.Fail(err)
	}
	return p
}

func readSkill(r *tuple.Reader, field string) board.Skill {
	s := board.Skill(r.Int(field))
	if r.Err() == nil && !s.Valid() {
		r.Fail(&InvalidFieldError{Field: field, Value: int(s)})
	}
	return s
}

func readOptBiome(r *tuple.Reader, field string) *board.Biome {
	n := r.OptInt(field)
	if n == nil {
		return nil
	}
	b := board.Biome(*n)
	if !b.Valid() {
		r.Fail(&InvalidFieldError{Field: field, Value: *n})
		return nil
	}
	return &b
}

func readUnit(r *tuple.Reader, field string) board.Unit {
	l := r.List(field)
	if l == nil {
		r.Fail(&tuple.MalformedError{Field: field, Value: nil})
		return board.Unit{}
	}
	u, err := board.DecodeUnit(l)
	if err != nil {
		r.Fail(err)
	}
	return u
}

func readBuilding(r *tuple.Reader, field string) board.Building {
	l := r.List(field)
	if l == nil {
		r.Fail(&tuple.MalformedError{Field: field, Value: nil})
		return board.Building{}
	}
	b, err := board.DecodeBuilding(l)
	if err != nil {
		r.Fail(err)
	}
	return b
}
