package rules

import (
	"errors"
	"sort"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

var ErrUnknownMutator = errors.New("unknown response mutator")

// Mutator rewrites a resolved response before it is applied. The rewritten
// response must still apply cleanly to m.
type Mutator func(e Engine, m board.MapData, a action.Action, actor board.PlayerID, resp action.Response) (action.Response, error)

const (
	MutatorSurviveAttack   = "SurviveAttack"
	MutatorNoCounterAttack = "NoCounterAttack"
)

var mutators = map[string]Mutator{
	MutatorSurviveAttack:   surviveAttack,
	MutatorNoCounterAttack: noCounterAttack,
}

func LookupMutator(name string) (Mutator, bool) {
	m, ok := mutators[name]
	return m, ok
}

func MutatorNames() []string {
	out := make([]string, 0, len(mutators))
	for name := range mutators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// surviveAttack leaves a destroyed defender standing with one health point.
func surviveAttack(_ Engine, m board.MapData, _ action.Action, _ board.PlayerID, resp action.Response) (action.Response, error) {
	v, ok := resp.(action.AttackUnitResponse)
	if !ok || v.UnitB != nil {
		return resp, nil
	}
	defender, ok := m.UnitAt(v.To)
	if !ok {
		return resp, nil
	}
	v.UnitB = &action.DryUnit{Health: 1, Ammo: defender.Ammo}
	return v, nil
}

// noCounterAttack resolves the action again with counter-attacks disabled.
func noCounterAttack(e Engine, m board.MapData, a action.Action, actor board.PlayerID, resp action.Response) (action.Response, error) {
	v, ok := resp.(action.AttackUnitResponse)
	if !ok || !v.HasCounterAttack {
		return resp, nil
	}
	return Engine{Tuning: e.Tuning.WithoutCounterAttacks()}.Resolve(m, a, actor)
}
