package rules

import (
	"fmt"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
)

// Result is everything one submission produced. Map is the state right
// after Response; GameState holds the cascade that followed it, so the
// final state is GameState's last map, or Map when the cascade is empty.
type Result struct {
	Response  action.Response
	Map       board.MapData
	GameState action.GameState
	// Effects is nil when the submission did not consume any effect.
	Effects        action.Effects
	EffectsChanged bool
}

func (r Result) Final() board.MapData {
	_, m := r.GameState.Last(r.Response, r.Map)
	return m
}

// Execute resolves a, optionally rewrites the response with the named
// mutator, applies it and expands the follow-up cascade.
func (e Engine) Execute(m board.MapData, effects action.Effects, a action.Action, actor board.PlayerID, mutator string) (Result, error) {
	resp, err := e.Resolve(m, a, actor)
	if err != nil {
		return Result{}, err
	}
	if mutator != "" {
		mut, ok := LookupMutator(mutator)
		if !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownMutator, mutator)
		}
		if resp, err = mut(e, m, a, actor, resp); err != nil {
			return Result{}, err
		}
	}
	initial, err := Apply(m, resp)
	if err != nil {
		return Result{}, err
	}

	c := &cascade{engine: e, effects: effects, current: initial}
	if err := c.follow(resp); err != nil {
		return Result{}, err
	}
	out := Result{Response: resp, Map: initial, GameState: c.steps}
	if c.effectsChanged {
		out.Effects = c.effects
		out.EffectsChanged = true
	}
	return out, nil
}

type cascade struct {
	engine         Engine
	effects        action.Effects
	effectsChanged bool
	current        board.MapData
	steps          action.GameState
	aiTurns        int
	over           bool
}

func (c *cascade) push(resp action.Response) error {
	next, err := Apply(c.current, resp)
	if err != nil {
		return err
	}
	c.steps = append(c.steps, action.Step{Response: resp, Previous: c.current, Current: next})
	c.current = next
	return nil
}

func (c *cascade) pushAndFollow(resp action.Response) error {
	if err := c.push(resp); err != nil {
		return err
	}
	return c.follow(resp)
}

// follow appends whatever resp triggers.
func (c *cascade) follow(resp action.Response) error {
	switch v := resp.(type) {
	case action.StartResponse:
		if err := c.runEffects(action.TriggerStart); err != nil {
			return err
		}
		return c.push(action.BeginGameResponse{})
	case action.ActivateCrystalResponse:
		if v.Crystal != board.CrystalPower || v.Player == nil {
			return nil
		}
		p, ok := c.current.Player(*v.Player)
		if !ok || len(p.Skills) == 0 {
			return nil
		}
		return c.push(action.ActivatePowerResponse{Skill: p.Skills[0], Free: true})
	case action.AttackUnitResponse:
		return c.checkGameOver(v.PlayerA, v.PlayerB)
	case action.EndTurnResponse:
		next := c.current.CurrentPlayer()
		if c.over || !next.IsBot() || c.aiTurns >= c.engine.Tuning.MaxAITurns {
			return nil
		}
		c.aiTurns++
		r, err := c.engine.Resolve(c.current, action.EndTurnAction{}, next.ID)
		if err != nil {
			return err
		}
		return c.pushAndFollow(r)
	}
	return nil
}

func (c *cascade) runEffects(t action.Trigger) error {
	list, ok := c.effects[t]
	if !ok {
		return nil
	}
	c.effects = c.effects.Without(t)
	c.effectsChanged = true
	for _, effect := range list {
		for _, a := range effect.Actions {
			r, err := c.engine.Resolve(c.current, a, board.Neutral)
			if err != nil {
				return fmt.Errorf("effect %s: %w", a.ActionType(), err)
			}
			if err := c.pushAndFollow(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkGameOver ends the game when an attack wiped out a team.
func (c *cascade) checkGameOver(a, b board.PlayerID) error {
	if c.over {
		return nil
	}
	var winner board.PlayerID
	switch {
	case !c.current.TeamHasUnits(c.current.TeamOf(b)):
		winner = a
	case !c.current.TeamHasUnits(c.current.TeamOf(a)):
		winner = b
	default:
		return nil
	}
	c.over = true
	if err := c.push(action.GameOverResponse{Winner: winner}); err != nil {
		return err
	}
	return c.runEffects(action.TriggerGameEnd)
}
