// Package counterattack plays back an attack that the defender answers. The
// primary strike is shown right away; the counter strike waits for the
// strike animation and for the authoritative response of the submission.
package counterattack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

var (
	ErrCancelled = errors.New("counter attack cancelled")
	ErrBusy      = errors.New("attack already in progress")
)

type State int

const (
	Idle State = iota
	Resolving
	AwaitingCounter
	Replaying
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case AwaitingCounter:
		return "awaiting_counter"
	case Replaying:
		return "replaying"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Strike is one attack animation. Directions[0] is the way the attacker
// faces, Directions[1] the way the hit travels.
type Strike struct {
	From       board.Vector
	To         board.Vector
	Directions [2]board.Direction
	Player     board.PlayerID
	Weapon     board.WeaponInfo
	HasWeapon  bool
	Damage     int
}

// Animator renders the machine's steps. Calls happen one at a time, from
// PlayAttack or from the scheduler's goroutine.
type Animator interface {
	Strike(s Strike)
	Destroy(at board.Vector, dir board.Direction)
	Update(m board.MapData)
}

// Remote resolves to the authoritative primary response of a submission
// that is already in flight.
type Remote func(ctx context.Context) (action.Response, error)

// FromPending adapts a queued submission.
func FromPending(p *gameaction.Pending) Remote {
	return func(ctx context.Context) (action.Response, error) {
		res, err := p.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if !res.OK() {
			return nil, res.Err
		}
		return res.Self.Response, nil
	}
}

type AttackInput struct {
	// Map is the viewer's map before the attack.
	Map      board.MapData
	Vision   board.Vision
	Response action.AttackUnitResponse
	Remote   Remote
}

// BuildingAttackInput is AttackInput for an attack on a building.
type BuildingAttackInput struct {
	Map      board.MapData
	Vision   board.Vision
	Response action.AttackBuildingResponse
	Remote   Remote
}

type ClientState struct {
	Map      board.MapData
	Response action.Response
}

// Machine plays a single attack at a time.
type Machine struct {
	Animator  Animator
	Scheduler ports.Scheduler
	Duration  time.Duration

	mu    sync.Mutex
	state State
	// gen counts attacks so a timer that outlives Cancel cannot resume a
	// later attack.
	gen    uint64
	stop   func() bool
	done   chan struct{}
	result ClientState
	err    error
}

func NewMachine(animator Animator, scheduler ports.Scheduler, duration time.Duration) *Machine {
	return &Machine{Animator: animator, Scheduler: scheduler, Duration: duration}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PlayAttack animates the primary strike. Without a counter it settles the
// attack before returning. With a counter it returns the optimistic state
// and leaves the rest to a continuation; Wait reports the final state.
func (m *Machine) PlayAttack(ctx context.Context, in AttackInput) (ClientState, error) {
	gen, err := m.begin()
	if err != nil {
		return ClientState{}, err
	}

	resp := in.Response
	from, to := resp.From, resp.To
	attacker, ok := in.Map.UnitAt(from)
	if !ok {
		err := fmt.Errorf("play attack: no attacker at %s", from)
		m.settle(ClientState{Map: in.Map, Response: resp}, err)
		return ClientState{Map: in.Map, Response: resp}, err
	}
	defender, hadDefender := in.Map.UnitAt(to)
	if !hadDefender {
		err := fmt.Errorf("play attack: no defender at %s", to)
		m.settle(ClientState{Map: in.Map, Response: resp}, err)
		return ClientState{Map: in.Map, Response: resp}, err
	}
	next, err := applyAttack(in.Map, in.Vision, resp)
	if err != nil {
		m.settle(ClientState{Map: in.Map, Response: resp}, err)
		return ClientState{Map: in.Map, Response: resp}, err
	}

	directions := board.AttackDirection(from, to)
	after, survived := next.UnitAt(to)
	replaced := survived && after.ID != defender.ID
	remaining := 0
	if survived && !replaced {
		remaining = after.Health
	}
	weapon, hasWeapon := attacker.AttackWeapon(from.Distance(to))
	m.Animator.Strike(Strike{
		From:       from,
		To:         to,
		Directions: directions,
		Player:     attacker.Player,
		Weapon:     weapon,
		HasWeapon:  hasWeapon,
		Damage:     defender.Health - remaining,
	})

	if resp.HasCounterAttack && survived {
		optimistic := after
		if optimistic.Player != defender.Player {
			optimistic = optimistic.WithPlayer(defender.Player).Recover()
		}
		optimistic = optimistic.WithAmmo(defender.Ammo)
		shown := in.Map.WithUnit(to, optimistic)
		m.Animator.Update(shown)

		c := Continuation{
			Previous: in.Map,
			Shown:    shown,
			Next:     next,
			Vision:   in.Vision,
			Response: resp,
			Attacker: attacker,
			Defender: defender,
			After:    after,
			Remote:   in.Remote,
		}
		runCtx := context.WithoutCancel(ctx)
		m.mu.Lock()
		m.state = AwaitingCounter
		m.result = ClientState{Map: shown, Response: resp}
		m.mu.Unlock()
		stop := m.Scheduler.Schedule(m.Duration, func() { m.resume(runCtx, c, gen) })
		m.mu.Lock()
		if m.gen == gen && m.state == AwaitingCounter {
			m.stop = stop
		} else {
			// Cancelled before the timer was stored.
			stop()
		}
		m.mu.Unlock()
		return ClientState{Map: shown, Response: resp}, nil
	}

	if !survived || replaced {
		m.Animator.Destroy(to, directions[1])
	}
	final, err := complete(ctx, in.Remote, in.Map, in.Vision, ClientState{Map: next, Response: resp})
	m.Animator.Update(final.Map)
	m.settle(final, err)
	return final, err
}

// PlayBuildingAttack animates an attack on a building. Buildings never
// answer, so the attack settles before it returns.
func (m *Machine) PlayBuildingAttack(ctx context.Context, in BuildingAttackInput) (ClientState, error) {
	if _, err := m.begin(); err != nil {
		return ClientState{}, err
	}

	resp := in.Response
	from, to := resp.From, resp.To
	failed := ClientState{Map: in.Map, Response: resp}
	attacker, ok := in.Map.UnitAt(from)
	if !ok {
		err := fmt.Errorf("play building attack: no attacker at %s", from)
		m.settle(failed, err)
		return failed, err
	}
	building, ok := in.Map.BuildingAt(to)
	if !ok {
		err := fmt.Errorf("play building attack: no building at %s", to)
		m.settle(failed, err)
		return failed, err
	}
	next, err := applyAttack(in.Map, in.Vision, resp)
	if err != nil {
		m.settle(failed, err)
		return failed, err
	}

	directions := board.AttackDirection(from, to)
	remaining := 0
	if resp.Building != nil {
		remaining = resp.Building.Health
	}
	weapon, hasWeapon := attacker.AttackWeapon(from.Distance(to))
	m.Animator.Strike(Strike{
		From:       from,
		To:         to,
		Directions: directions,
		Player:     attacker.Player,
		Weapon:     weapon,
		HasWeapon:  hasWeapon,
		Damage:     building.Health - remaining,
	})
	if resp.Building == nil {
		m.Animator.Destroy(to, directions[1])
	}
	final, err := complete(ctx, in.Remote, in.Map, in.Vision, ClientState{Map: next, Response: resp})
	m.Animator.Update(final.Map)
	m.settle(final, err)
	return final, err
}

func (m *Machine) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle && m.state != Done {
		return 0, ErrBusy
	}
	m.gen++
	m.state = Resolving
	m.done = make(chan struct{})
	m.stop = nil
	m.result = ClientState{}
	m.err = nil
	return m.gen, nil
}

// Cancel stops the counter before its timer fires. It reports false once
// the continuation has started or when there is nothing to cancel.
func (m *Machine) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != AwaitingCounter {
		return false
	}
	if m.stop != nil {
		m.stop()
	}
	m.state = Done
	m.err = ErrCancelled
	close(m.done)
	return true
}

// Wait blocks until the current attack settles or ctx ends.
func (m *Machine) Wait(ctx context.Context) (ClientState, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return ClientState{}, nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ClientState{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.err
}

func (m *Machine) resume(ctx context.Context, c Continuation, gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.state != AwaitingCounter {
		m.mu.Unlock()
		return
	}
	m.state = Replaying
	m.mu.Unlock()

	final, err := c.Run(ctx, m.Animator)
	m.settle(final, err)
}

func (m *Machine) settle(cs ClientState, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Done {
		return
	}
	m.state = Done
	m.result = cs
	m.err = err
	close(m.done)
}

// Continuation holds everything the counter strike needs, captured when the
// primary strike was shown.
type Continuation struct {
	Previous board.MapData
	Shown    board.MapData
	Next     board.MapData
	Vision   board.Vision
	Response action.AttackUnitResponse
	// Attacker and Defender are the units before the primary strike.
	Attacker board.Unit
	Defender board.Unit
	// After is the defender once the local response was applied.
	After  board.Unit
	Remote Remote
}

// Run animates the counter strike against the authoritative response. The
// counter fires with the defender's weapons as they were when it was hit.
func (c Continuation) Run(ctx context.Context, animator Animator) (ClientState, error) {
	resp := c.Response
	next := c.Next
	if c.Remote != nil {
		remote, err := c.Remote(ctx)
		if err != nil {
			animator.Update(c.Shown)
			return ClientState{Map: c.Shown, Response: resp}, err
		}
		if r, ok := remote.(action.AttackUnitResponse); ok {
			m, err := applyAttack(c.Previous, c.Vision, r)
			if err != nil {
				animator.Update(c.Shown)
				return ClientState{Map: c.Shown, Response: resp}, err
			}
			resp, next = r, m
		}
	}

	from, to := resp.From, resp.To
	directions := board.AttackDirection(to, from)
	remaining := 0
	if resp.UnitA != nil {
		remaining = resp.UnitA.Health
	}
	weapon, hasWeapon := c.Defender.AttackWeapon(to.Distance(from))
	animator.Strike(Strike{
		From:       to,
		To:         from,
		Directions: directions,
		Player:     c.Defender.Player,
		Weapon:     weapon,
		HasWeapon:  hasWeapon,
		Damage:     c.Attacker.Health - remaining,
	})
	if _, ok := next.UnitAt(from); !ok {
		animator.Destroy(from, directions[1])
	}
	animator.Update(next)
	return ClientState{Map: next, Response: resp}, nil
}

// complete waits for the authoritative response of an attack without a
// counter and rebuilds the map from it. A remote response of another kind
// leaves the local state alone.
func complete(ctx context.Context, remote Remote, previous board.MapData, vision board.Vision, local ClientState) (ClientState, error) {
	if remote == nil {
		return local, nil
	}
	r, err := remote(ctx)
	if err != nil {
		return local, err
	}
	if r == nil || r.ResponseType() != local.Response.ResponseType() {
		return local, nil
	}
	m, err := applyAttack(previous, vision, r)
	if err != nil {
		return local, err
	}
	return ClientState{Map: m, Response: r}, nil
}

func applyAttack(m board.MapData, vision board.Vision, resp action.Response) (board.MapData, error) {
	next, err := rules.Apply(m, resp)
	if err != nil {
		return m, fmt.Errorf("apply attack: %w", err)
	}
	return vision.Apply(next), nil
}
