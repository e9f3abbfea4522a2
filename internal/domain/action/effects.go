package action

import (
	"fmt"
	"maps"
	"slices"

	"skirmish/internal/domain/tuple"
)

type Trigger uint8

const (
	TriggerStart Trigger = iota
	TriggerGameEnd
)

func (t Trigger) Valid() bool {
	return t <= TriggerGameEnd
}

// Effect is a scripted list of actions the game runs on a trigger. Effect
// actions have no acting player.
type Effect struct {
	Actions []Action
}

type Effects map[Trigger][]Effect

// Without returns a copy with the trigger removed. Effects fire once.
func (e Effects) Without(t Trigger) Effects {
	if _, ok := e[t]; !ok {
		return e
	}
	out := maps.Clone(e)
	delete(out, t)
	return out
}

// EncodeEffects produces [[trigger, [[action, ...], ...]], ...] ordered by
// trigger, or nil when there are no effects.
func EncodeEffects(e Effects) (tuple.Tuple, error) {
	if len(e) == 0 {
		return nil, nil
	}
	triggers := slices.Sorted(maps.Keys(e))
	out := make(tuple.Tuple, 0, len(triggers))
	for _, t := range triggers {
		effects := make(tuple.Tuple, 0, len(e[t]))
		for _, effect := range e[t] {
			actions := make(tuple.Tuple, 0, len(effect.Actions))
			for _, a := range effect.Actions {
				enc, err := EncodeAction(a)
				if err != nil {
					return nil, fmt.Errorf("encode effects: %w", err)
				}
				actions = append(actions, enc)
			}
			effects = append(effects, actions)
		}
		out = append(out, tuple.Tuple{int(t), effects})
	}
	return out, nil
}

func DecodeEffects(t tuple.Tuple) (Effects, error) {
	if len(t) == 0 {
		return nil, nil
	}
	out := Effects{}
	for _, raw := range t {
		entry, ok := tuple.AsList(raw)
		if !ok {
			return nil, &tuple.MalformedError{Field: "effects", Value: raw}
		}
		r := tuple.NewReader(entry)
		trigger := Trigger(r.Int("effects.trigger"))
		list := r.List("effects.list")
		if err := r.Err(); err != nil {
			return nil, err
		}
		if !trigger.Valid() {
			return nil, &UnknownVariantError{Op: "decode effects", Discriminant: int(trigger)}
		}
		for _, rawEffect := range list {
			actions, ok := tuple.AsList(rawEffect)
			if !ok {
				return nil, &tuple.MalformedError{Field: "effects.effect", Value: rawEffect}
			}
			effect := Effect{}
			for _, rawAction := range actions {
				at, ok := tuple.AsList(rawAction)
				if !ok {
					return nil, &tuple.MalformedError{Field: "effects.action", Value: rawAction}
				}
				a, err := DecodeAction(at)
				if err != nil {
					return nil, err
				}
				effect.Actions = append(effect.Actions, a)
			}
			out[trigger] = append(out[trigger], effect)
		}
	}
	return out, nil
}
