package memory

import (
	"context"
	"errors"
	"testing"

	"skirmish/internal/adapter/simulator"
	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

func duelMap() board.MapData {
	tank, _ := board.LookupUnit(board.UnitSmallTank)
	return board.New(board.Size{Width: 6, Height: 4}, board.Config{}, []board.Player{
		{ID: 1, Team: 1, UserID: "User-1"},
		{ID: 2, Team: 2, UserID: "User-2"},
	}).WithUnit(board.Vec(1, 1), tank.Create(1)).WithUnit(board.Vec(5, 3), tank.Create(2))
}

func TestGameRepo_SaveWithVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo(NewStore())
	if _, err := repo.Get(ctx, "game-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rec := ports.GameRecord{GameID: "game-1", Map: duelMap()}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, rec); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate create, got %v", err)
	}
	rec.Version = 1
	if err := repo.SaveWithVersion(ctx, rec, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveWithVersion(ctx, rec, 0); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}
	got, err := repo.Get(ctx, "game-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 1 || !got.Map.Equal(rec.Map) {
		t.Fatalf("record mismatch: got=%+v", got)
	}
}

func TestActionLogRepo_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewActionLogRepo(NewStore())
	for seq := int64(1); seq <= 3; seq++ {
		if err := repo.Append(ctx, ports.ActionLogRecord{GameID: "game-1", Seq: seq}); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}
	if err := repo.Append(ctx, ports.ActionLogRecord{GameID: "game-1", Seq: 2}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate seq, got %v", err)
	}
	all, _ := repo.ListByGameID(ctx, "game-1", 0)
	if len(all) != 3 || all[0].Seq != 1 || all[2].Seq != 3 {
		t.Fatalf("list mismatch: got=%+v", all)
	}
	limited, _ := repo.ListByGameID(ctx, "game-1", 2)
	if len(limited) != 2 {
		t.Fatalf("limit mismatch: got=%d want=2", len(limited))
	}
	none, _ := repo.ListByGameID(ctx, "game-2", 0)
	if len(none) != 0 {
		t.Fatalf("unexpected records for another game: %d", len(none))
	}
}

func TestTxManager_ReposJoinTransaction(t *testing.T) {
	store := NewStore()
	tx := NewTxManager(store)
	games := NewGameRepo(store)
	log := NewActionLogRepo(store)
	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := games.Create(ctx, ports.GameRecord{GameID: "game-1"}); err != nil {
			return err
		}
		return tx.RunInTx(ctx, func(ctx context.Context) error {
			return log.Append(ctx, ports.ActionLogRecord{GameID: "game-1", Seq: 1})
		})
	})
	if err != nil {
		t.Fatalf("run in tx: %v", err)
	}
	if _, err := games.Get(context.Background(), "game-1"); err != nil {
		t.Fatalf("get after tx: %v", err)
	}
}

func TestStore_BacksGameSessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	reg := simulator.NewEngineRegistry(rules.NewEngine(rules.DefaultTuning()))
	t.Cleanup(reg.Close)
	deps := gameaction.Deps{
		TxManager: NewTxManager(store),
		Games:     NewGameRepo(store),
		Log:       NewActionLogRepo(store),
	}
	newSim := func(gameID string) ports.Simulator { return simulator.NewClient(reg, gameID) }

	manager := gameaction.NewManager(deps, newSim)
	session, err := manager.Create(ctx, duelMap(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, a := range []action.Action{action.StartAction{}, action.EndTurnAction{}} {
		if res := session.Submit(ctx, gameaction.Request{Action: a}); !res.OK() {
			t.Fatalf("submit %s: %v", a.ActionType(), res.Err)
		}
	}

	records, _ := deps.Log.ListByGameID(ctx, session.ID(), 0)
	if len(records) != 2 {
		t.Fatalf("log length mismatch: got=%d want=2", len(records))
	}

	// A fresh manager over the same store picks up where the first stopped.
	restored, err := gameaction.NewManager(deps, newSim).Get(ctx, session.ID())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	game := restored.Game()
	if game.Version != 2 || game.State.CurrentPlayerID() != 2 {
		t.Fatalf("restored game mismatch: version=%d current=%d", game.Version, game.State.CurrentPlayerID())
	}
	if _, ok := game.LastAction.(action.EndTurnAction); !ok {
		t.Fatalf("last action mismatch: got=%T", game.LastAction)
	}
	if res := restored.Submit(ctx, gameaction.Request{Action: action.EndTurnAction{}}); !res.OK() {
		t.Fatalf("submit after restore: %v", res.Err)
	}
}
