// Command replay prints what one viewer saw of an archived game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"skirmish/internal/adapter/clock"
	"skirmish/internal/adapter/replaylog"
	"skirmish/internal/app/counterattack"
	"skirmish/internal/app/ports"
	"skirmish/internal/app/replay"
	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("replay", flag.ContinueOnError)
	var (
		dir       = fset.String("archive", "./data/replays", "directory holding <game>.jsonl.zst archives")
		gameID    = fset.String("game", "", "game to print; empty lists archived games")
		viewer    = fset.Int("viewer", 0, "player whose view to print; 0 is a spectator")
		animate   = fset.Bool("animate", false, "play attacks that are answered by a counter attack")
		animation = fset.Duration("animation", time.Duration(rules.DefaultAnimationMS)*time.Millisecond, "strike animation duration")
	)
	fset.SetOutput(out)
	if err := fset.Parse(args); err != nil {
		return err
	}

	if *gameID == "" {
		ids, err := replaylog.ListGames(*dir)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	entries, err := replaylog.ReadFile(replaylog.PathFor(*dir, *gameID))
	if err != nil {
		return err
	}
	p := printer{
		out:    out,
		viewer: board.PlayerID(*viewer),
	}
	if *animate {
		p.machine = counterattack.NewMachine(textAnimator{out: out}, clock.TimerScheduler{}, *animation)
	}
	for _, e := range entries {
		if err := p.entry(ctx, e); err != nil {
			return fmt.Errorf("seq %d: %w", e.Seq, err)
		}
	}
	fmt.Fprintf(out, "replay ok: game=%s entries=%d viewer=%d\n", *gameID, len(entries), *viewer)
	return nil
}

type printer struct {
	out     io.Writer
	viewer  board.PlayerID
	machine *counterattack.Machine
}

func (p printer) entry(ctx context.Context, e ports.ReplayEntry) error {
	previous, err := board.FromPlain(e.Req.Map)
	if err != nil {
		return err
	}
	rec := ports.ActionLogRecord{
		GameID:    e.GameID,
		Seq:       e.Seq,
		Actor:     previous.CurrentPlayerID(),
		Previous:  previous,
		Reply:     e.Reply,
		AppliedAt: e.At,
	}
	enc, err := replay.EncodeRecord(rec, p.viewer, 0)
	if err != nil {
		return err
	}
	payload, err := wire.DecodeGameActionResponse(enc)
	if err != nil {
		return err
	}

	vision := board.NewVision(previous, p.viewer)
	local := vision.Apply(previous)
	for _, item := range payload.Items() {
		fmt.Fprintf(p.out, "seq=%d actor=%d %s\n", e.Seq, rec.Actor, action.Describe(item.Response))
		if local, err = p.apply(ctx, local, vision, item); err != nil {
			return err
		}
	}
	return nil
}

func (p printer) apply(ctx context.Context, local board.MapData, vision board.Vision, item wire.Item) (board.MapData, error) {
	if p.machine == nil {
		return wire.ApplyItem(local, vision, item)
	}
	var err error
	switch attack := item.Response.(type) {
	case action.AttackUnitResponse:
		if !attack.HasCounterAttack {
			return wire.ApplyItem(local, vision, item)
		}
		_, err = p.machine.PlayAttack(ctx, counterattack.AttackInput{Map: local, Vision: vision, Response: attack})
	case action.AttackBuildingResponse:
		_, err = p.machine.PlayBuildingAttack(ctx, counterattack.BuildingAttackInput{Map: local, Vision: vision, Response: attack})
	default:
		return wire.ApplyItem(local, vision, item)
	}
	if err != nil {
		// Attacks out of the viewer's sight cannot be animated.
		return wire.ApplyItem(local, vision, item)
	}
	state, err := p.machine.Wait(ctx)
	if err != nil && !errors.Is(err, counterattack.ErrCancelled) {
		return local, err
	}
	return state.Map, nil
}

type textAnimator struct {
	out io.Writer
}

func (a textAnimator) Strike(s counterattack.Strike) {
	weapon := "-"
	if s.HasWeapon {
		weapon = s.Weapon.Name
	}
	fmt.Fprintf(a.out, "  strike %s -> %s player=%d weapon=%s damage=%d\n", s.From, s.To, s.Player, weapon, s.Damage)
}

func (a textAnimator) Destroy(at board.Vector, dir board.Direction) {
	fmt.Fprintf(a.out, "  destroyed %s facing %s\n", at, dir)
}

func (textAnimator) Update(board.MapData) {}
