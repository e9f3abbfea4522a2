package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"skirmish/internal/adapter/replaylog"
	"skirmish/internal/adapter/simulator"
	"skirmish/internal/app/gameaction"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

func archiveDuel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	w := replaylog.NewWriter(dir)
	reg := simulator.NewEngineRegistry(rules.NewEngine(rules.DefaultTuning()))
	t.Cleanup(reg.Close)

	tank, _ := board.LookupUnit(board.UnitSmallTank)
	m := board.New(board.Size{Width: 4, Height: 3}, board.Config{}, []board.Player{
		{ID: 1, Team: 1, UserID: "User-1"},
		{ID: 2, Team: 2, UserID: "User-2"},
	}).
		WithUnit(board.Vec(1, 1), tank.Create(1)).
		WithUnit(board.Vec(2, 1), tank.Create(2))

	s := gameaction.NewSession(gameaction.ClientGame{ID: "duel", State: m},
		simulator.NewClient(reg, t.Name()), gameaction.Deps{Archive: w})
	ctx := context.Background()
	for _, a := range []action.Action{
		action.StartAction{},
		action.AttackUnitAction{From: board.Vec(1, 1), To: board.Vec(2, 1)},
	} {
		if res := s.Submit(ctx, gameaction.Request{Action: a}); !res.OK() {
			t.Fatalf("submit %T: %v", a, res.Err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return dir
}

func TestRun_ListsGames(t *testing.T) {
	dir := archiveDuel(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-archive", dir}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := strings.TrimSpace(out.String()), "duel"; got != want {
		t.Fatalf("list mismatch: got=%q want=%q", got, want)
	}
}

func TestRun_PrintsViewerActions(t *testing.T) {
	dir := archiveDuel(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-archive", dir, "-game", "duel", "-viewer", "1"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "seq=2 actor=1 AttackUnit") {
		t.Fatalf("missing attack line:\n%s", text)
	}
	if !strings.Contains(text, "replay ok: game=duel entries=2 viewer=1") {
		t.Fatalf("missing summary:\n%s", text)
	}
	if strings.Contains(text, "strike") {
		t.Fatalf("strikes printed without -animate:\n%s", text)
	}
}

func TestRun_AnimatesCounterAttack(t *testing.T) {
	dir := archiveDuel(t)
	var out bytes.Buffer
	args := []string{"-archive", dir, "-game", "duel", "-viewer", "1", "-animate", "-animation", "1ms"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"player=1 weapon=Cannon damage=40", "player=2 weapon=Cannon damage=24"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q:\n%s", want, text)
		}
	}
}

func TestRun_MissingGame(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-archive", t.TempDir(), "-game", "nope"}, &out); err == nil {
		t.Fatalf("expected error for missing archive")
	}
}
