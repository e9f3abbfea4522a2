package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"skirmish/internal/adapter/metrics/inmemory"
	"skirmish/internal/adapter/repo/memory"
	staticschemas "skirmish/internal/adapter/schemas/static"
	"skirmish/internal/adapter/simulator"
	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/observe"
	"skirmish/internal/app/ports"
	"skirmish/internal/app/replay"
	"skirmish/internal/app/schemas"
	"skirmish/internal/app/wire"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

func duelMap() board.MapData {
	tank, _ := board.LookupUnit(board.UnitSmallTank)
	return board.New(board.Size{Width: 6, Height: 4}, board.Config{Fog: true}, []board.Player{
		{ID: 1, Team: 1, Funds: 100, UserID: "User-1"},
		{ID: 2, Team: 2, Funds: 100, UserID: "User-2"},
	}).
		WithUnit(board.Vec(1, 1), tank.Create(1)).
		WithUnit(board.Vec(6, 4), tank.Create(2))
}

func newTestHandler(t *testing.T) Handler {
	t.Helper()
	reg := simulator.NewEngineRegistry(rules.NewEngine(rules.DefaultTuning()))
	t.Cleanup(reg.Close)
	store := memory.NewStore()
	games := memory.NewGameRepo(store)
	log := memory.NewActionLogRepo(store)
	manager := gameaction.NewManager(gameaction.Deps{
		TxManager: memory.NewTxManager(store),
		Games:     games,
		Log:       log,
		Metrics:   inmemory.NewRecorder(),
	}, func(gameID string) ports.Simulator {
		return simulator.NewClient(reg, gameID)
	})
	return Handler{
		Games:     manager,
		ObserveUC: observe.UseCase{Games: games},
		ReplayUC:  replay.UseCase{Log: log},
		KPI:       manager.Deps.Metrics.(*inmemory.Recorder),
	}
}

func createStartedGame(t *testing.T, h Handler) string {
	t.Helper()
	m, err := json.Marshal(duelMap())
	if err != nil {
		t.Fatalf("marshal map: %v", err)
	}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(fmt.Sprintf(`{"map":%s,"start":true}`, m)))

	h.createGame(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusCreated; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body createGameResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.GameID == "" || body.Start == nil || body.Start.Seq != 1 {
		t.Fatalf("create response mismatch: %s", ctx.Response.Body())
	}
	return body.GameID
}

func actionBody(t *testing.T, a action.Action) []byte {
	t.Helper()
	enc, err := action.EncodeAction(a)
	if err != nil {
		t.Fatalf("encode action: %v", err)
	}
	b, err := json.Marshal(actionRequest{Action: enc})
	if err != nil {
		t.Fatalf("marshal action: %v", err)
	}
	return b
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body map[string]map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	code, _ := body["error"]["code"].(string)
	return code
}

func TestCreateGame_MissingMap(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{}`))

	h.createGame(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestCreateGame_InvalidJSON(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"map":`))

	h.createGame(context.Background(), ctx)

	if got, want := errorCode(t, ctx), "invalid_json"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestSubmitAction_CurrentPlayer(t *testing.T) {
	h := newTestHandler(t)
	gameID := createStartedGame(t, h)

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: gameID}}
	ctx.Request.Header.Set(playerIDHeader, "1")
	ctx.Request.SetBody(actionBody(t, action.EndTurnAction{}))

	h.submitAction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body actionResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.GameID != gameID || body.Seq != 2 || body.Viewer != 1 || body.Ended {
		t.Fatalf("action response mismatch: %s", ctx.Response.Body())
	}
	if len(body.Response) == 0 {
		t.Fatalf("expected an encoded response")
	}
}

func TestSubmitAction_NotCurrentPlayer(t *testing.T) {
	h := newTestHandler(t)
	gameID := createStartedGame(t, h)

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: gameID}}
	ctx.Request.Header.Set(playerIDHeader, "2")
	ctx.Request.SetBody(actionBody(t, action.EndTurnAction{}))

	h.submitAction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["code"], "invalid_state"; got != want {
		t.Fatalf("error code mismatch: got=%v want=%v", got, want)
	}
	details, _ := body["error"]["details"].(map[string]any)
	if details["action"] != action.ActionEndTurn.String() {
		t.Fatalf("details mismatch: got=%v", details)
	}
}

func TestSubmitAction_IllegalAction(t *testing.T) {
	h := newTestHandler(t)
	gameID := createStartedGame(t, h)

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: gameID}}
	ctx.Request.Header.Set(playerIDHeader, "1")
	ctx.Request.SetBody(actionBody(t, action.AttackUnitAction{From: board.Vec(1, 1), To: board.Vec(6, 4)}))

	h.submitAction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusUnprocessableEntity; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
}

func TestSubmitAction_RequiresPlayerHeader(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "game-1"}}
	ctx.Request.SetBody(actionBody(t, action.EndTurnAction{}))

	h.submitAction(context.Background(), ctx)

	if got, want := errorCode(t, ctx), "missing_player_id"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestSubmitAction_UnknownVariant(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "game-1"}}
	ctx.Request.Header.Set(playerIDHeader, "1")
	ctx.Request.SetBody([]byte(`{"action":[250]}`))

	h.submitAction(context.Background(), ctx)

	if got, want := errorCode(t, ctx), "invalid_action"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestSubmitAction_UnknownGame(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "missing"}}
	ctx.Request.Header.Set(playerIDHeader, "1")
	ctx.Request.SetBody(actionBody(t, action.EndTurnAction{}))

	h.submitAction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestState_FoggedForViewer(t *testing.T) {
	h := newTestHandler(t)
	gameID := createStartedGame(t, h)

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: gameID}}
	ctx.Request.Header.Set(playerIDHeader, "1")

	h.state(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body observe.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.GameID != gameID || body.Viewer != 1 || !body.Fog || body.CurrentPlayer != 1 {
		t.Fatalf("state mismatch: %s", ctx.Response.Body())
	}
	for _, u := range body.Units {
		if u.Player == 2 {
			t.Fatalf("enemy unit at %v leaked through fog", u.Pos)
		}
	}
}

func TestState_InvalidPlayerHeader(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "game-1"}}
	ctx.Request.Header.Set(playerIDHeader, "abc")

	h.state(context.Background(), ctx)

	if got, want := errorCode(t, ctx), "invalid_player_id"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestReplay_ListsLoggedSubmissions(t *testing.T) {
	h := newTestHandler(t)
	gameID := createStartedGame(t, h)

	submit := &app.RequestContext{}
	submit.Params = param.Params{{Key: "id", Value: gameID}}
	submit.Request.Header.Set(playerIDHeader, "1")
	submit.Request.SetBody(actionBody(t, action.EndTurnAction{}))
	h.submitAction(context.Background(), submit)
	if got := submit.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("submit failed: %s", submit.Response.Body())
	}

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: gameID}}
	ctx.Request.Header.Set(playerIDHeader, "2")

	h.replay(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body replay.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Entries) != 2 || body.Entries[0].Seq != 1 || body.Entries[1].Actor != 1 {
		t.Fatalf("replay mismatch: %s", ctx.Response.Body())
	}
}

func TestReplay_InvalidLimit(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "game-1"}}
	ctx.Request.SetRequestURI("/api/games/game-1/replay?limit=x")

	h.replay(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestKPI_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestKPI_CountsSubmissions(t *testing.T) {
	h := newTestHandler(t)
	createStartedGame(t, h)

	ctx := &app.RequestContext{}
	h.kpi(context.Background(), ctx)

	var body inmemory.Snapshot
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.ActionSuccess != 1 || body.ByResponseType[action.TypeStart.String()] != 1 {
		t.Fatalf("kpi mismatch: %s", ctx.Response.Body())
	}
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{gameaction.ErrGameNotFound, consts.StatusNotFound, "not_found"},
		{ports.ErrNotFound, consts.StatusNotFound, "not_found"},
		{fmt.Errorf("wrap: %w", gameaction.ErrInvalidState), consts.StatusConflict, "invalid_state"},
		{rules.ErrIllegalAction, consts.StatusUnprocessableEntity, "illegal_action"},
		{action.ErrUnknownVariant, consts.StatusBadRequest, "invalid_action"},
		{replay.ErrInvalidRequest, consts.StatusBadRequest, "bad_request"},
		{ports.ErrSimulatorUnavailable, consts.StatusBadGateway, "simulator_error"},
		{ports.ErrConflict, consts.StatusConflict, "conflict"},
		{errors.New("boom"), consts.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		writeError(ctx, tc.err)
		if got := ctx.Response.StatusCode(); got != tc.status {
			t.Fatalf("status mismatch for %v: got=%d want=%d", tc.err, got, tc.status)
		}
		if got := errorCode(t, ctx); got != tc.code {
			t.Fatalf("error code mismatch for %v: got=%q want=%q", tc.err, got, tc.code)
		}
	}
}

func TestSchemaFile_ServesAndBlocksTraversal(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "demo.schema.json"), []byte(`{"type":"array"}`), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	h := Handler{SchemasUC: schemas.UseCase{Provider: staticschemas.Provider{Root: root}}}

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/demo.schema.json"}}
	h.schemaFile(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := string(ctx.Response.Body()), `{"type":"array"}`; got != want {
		t.Fatalf("body mismatch: got=%q want=%q", got, want)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/../outside.schema.json"}}
	h.schemaFile(context.Background(), ctx)
	if got, want := errorCode(t, ctx), "invalid_filepath"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/missing.schema.json"}}
	h.schemaFile(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestSchemasIndex_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.schemasIndex(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestSubmitAction_IgnoresClientMutator(t *testing.T) {
	h := newTestHandler(t)
	tank, _ := board.LookupUnit(board.UnitSmallTank)
	adjacent := board.New(board.Size{Width: 6, Height: 4}, board.Config{}, []board.Player{
		{ID: 1, Team: 1, Funds: 100, UserID: "User-1"},
		{ID: 2, Team: 2, Funds: 100, UserID: "User-2"},
	}).
		WithUnit(board.Vec(1, 1), tank.Create(1)).
		WithUnit(board.Vec(1, 2), tank.Create(2))
	session, err := h.Games.Create(context.Background(), adjacent, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res := session.Submit(context.Background(), gameaction.Request{Action: action.StartAction{}}); !res.OK() {
		t.Fatalf("start: %v", res.Err)
	}

	enc, err := action.EncodeAction(action.AttackUnitAction{From: board.Vec(1, 1), To: board.Vec(1, 2)})
	if err != nil {
		t.Fatalf("encode action: %v", err)
	}
	b, err := json.Marshal(map[string]any{"action": enc, "mutator": rules.MutatorNoCounterAttack})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: session.ID()}}
	ctx.Request.Header.Set(playerIDHeader, "1")
	ctx.Request.SetBody(b)

	h.submitAction(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body actionResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	payload, err := wire.DecodeGameActionResponse(body.Response)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	attack, ok := payload.Self.Response.(action.AttackUnitResponse)
	if !ok {
		t.Fatalf("primary mismatch: got=%T", payload.Self.Response)
	}
	if !attack.HasCounterAttack || attack.UnitA == nil || attack.UnitA.Health == 100 {
		t.Fatalf("client mutator was applied: %+v", attack)
	}
}
