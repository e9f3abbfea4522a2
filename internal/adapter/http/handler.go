package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"strconv"
	"strings"

	staticschemas "skirmish/internal/adapter/schemas/static"
	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/observe"
	"skirmish/internal/app/ports"
	"skirmish/internal/app/replay"
	"skirmish/internal/app/schemas"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
	"skirmish/internal/domain/tuple"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const playerIDHeader = "X-Player-ID"

type Handler struct {
	Games     *gameaction.Manager
	ObserveUC observe.UseCase
	ReplayUC  replay.UseCase
	SchemasUC schemas.UseCase
	KPI       kpiSnapshotProvider
	// CORSOrigins is a comma separated allow list; empty allows any origin.
	CORSOrigins string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(newCORSPolicy(h.CORSOrigins).middleware())

	games := s.Group("/api/games")
	games.POST("", h.createGame)
	games.POST("/:id/actions", h.submitAction)
	games.GET("/:id/state", h.state)
	games.GET("/:id/replay", h.replay)

	s.GET("/schemas/index.json", h.schemasIndex)
	s.GET("/schemas/*filepath", h.schemaFile)
	s.GET("/ops/kpi", h.kpi)
}

type createGameRequest struct {
	Map     *board.MapData `json:"map"`
	Effects tuple.Tuple    `json:"effects,omitempty"`
	// Start submits the Start action right away on behalf of the first
	// player.
	Start bool `json:"start,omitempty"`
}

type createGameResponse struct {
	GameID string          `json:"game_id"`
	Start  *actionResponse `json:"start,omitempty"`
}

// actionRequest carries only the action; the response mutator is server
// configuration and any client supplied field is ignored.
type actionRequest struct {
	Action tuple.Tuple `json:"action"`
}

type actionResponse struct {
	GameID string         `json:"game_id"`
	Seq    int64          `json:"seq"`
	Viewer board.PlayerID `json:"viewer"`
	Ended  bool           `json:"ended"`
	// Response is the encoded game action response for Viewer.
	Response tuple.Tuple `json:"response"`
}

func newActionResponse(out *gameaction.Outcome) *actionResponse {
	return &actionResponse{
		GameID:   out.GameID,
		Seq:      out.Seq,
		Viewer:   out.Viewer,
		Ended:    out.Ended,
		Response: out.Encoded,
	}
}

func (h Handler) createGame(c context.Context, ctx *app.RequestContext) {
	var body createGameRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Map == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "map is required")
		return
	}
	var effects action.Effects
	if len(body.Effects) > 0 {
		decoded, err := action.DecodeEffects(body.Effects)
		if err != nil {
			writeError(ctx, err)
			return
		}
		effects = decoded
	}

	session, err := h.Games.Create(c, *body.Map, effects)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp := createGameResponse{GameID: session.ID()}
	if body.Start {
		res := session.Submit(context.WithoutCancel(c), gameaction.Request{Action: action.StartAction{}})
		if !res.OK() {
			writeActionError(ctx, res.Err)
			return
		}
		resp.Start = newActionResponse(res.Self)
	}
	hlog.CtxInfof(c, "http: created game=%s players=%d started=%v", resp.GameID, len(body.Map.Players()), body.Start)
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) submitAction(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayerID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body actionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if len(body.Action) == 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "action is required")
		return
	}
	a, err := action.DecodeAction(body.Action)
	if err != nil {
		writeError(ctx, err)
		return
	}

	session, err := h.Games.Get(c, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	// The queue settles every submission; a client that goes away must not
	// leave a half-committed game behind.
	res := session.Submit(context.WithoutCancel(c), gameaction.Request{
		Actor:  playerID,
		Action: a,
	})
	if !res.OK() {
		writeActionError(ctx, res.Err)
		return
	}
	ctx.JSON(consts.StatusOK, newActionResponse(res.Self))
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	viewer, err := optionalPlayerID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.ObserveUC.Execute(c, observe.Request{GameID: ctx.Param("id"), Viewer: viewer})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	viewer, err := optionalPlayerID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	limit := 0
	if raw := string(ctx.Query("limit")); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		GameID: ctx.Param("id"),
		Viewer: viewer,
		Limit:  limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) schemasIndex(c context.Context, ctx *app.RequestContext) {
	if h.SchemasUC.Provider == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "schema provider not configured")
		return
	}
	b, err := h.SchemasUC.Index(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, "application/json", b)
}

func (h Handler) schemaFile(c context.Context, ctx *app.RequestContext) {
	if h.SchemasUC.Provider == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "schema provider not configured")
		return
	}
	path := strings.TrimPrefix(ctx.Param("filepath"), "/")
	if path == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", "invalid filepath")
		return
	}
	b, err := h.SchemasUC.File(c, path)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, "application/schema+json", b)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingPlayerIDHeader = errors.New("missing x-player-id header")
var ErrInvalidPlayerIDHeader = errors.New("invalid x-player-id header")

func requirePlayerID(ctx *app.RequestContext) (board.PlayerID, error) {
	id, err := optionalPlayerID(ctx)
	if err != nil {
		return board.Neutral, err
	}
	if id == board.Neutral {
		return board.Neutral, ErrMissingPlayerIDHeader
	}
	return id, nil
}

// optionalPlayerID reads the viewer; a missing header is a spectator.
func optionalPlayerID(ctx *app.RequestContext) (board.PlayerID, error) {
	raw := strings.TrimSpace(string(ctx.GetHeader(playerIDHeader)))
	if raw == "" {
		return board.Neutral, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return board.Neutral, ErrInvalidPlayerIDHeader
	}
	return board.PlayerID(id), nil
}

func writeError(ctx *app.RequestContext, err error) {
	status, code, message := classifyError(err)
	writeErrorBody(ctx, status, code, message)
}

func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrMissingPlayerIDHeader):
		return consts.StatusBadRequest, "missing_player_id", err.Error()
	case errors.Is(err, ErrInvalidPlayerIDHeader):
		return consts.StatusBadRequest, "invalid_player_id", err.Error()
	case errors.Is(err, gameaction.ErrGameNotFound),
		errors.Is(err, ports.ErrNotFound):
		return consts.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, gameaction.ErrInvalidState):
		return consts.StatusConflict, "invalid_state", err.Error()
	case errors.Is(err, rules.ErrIllegalAction):
		return consts.StatusUnprocessableEntity, "illegal_action", err.Error()
	case errors.Is(err, action.ErrUnknownVariant),
		errors.Is(err, action.ErrInvalidField),
		errors.Is(err, tuple.ErrMalformed):
		return consts.StatusBadRequest, "invalid_action", err.Error()
	case errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		return consts.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, staticschemas.ErrInvalidSchemaPath):
		return consts.StatusBadRequest, "invalid_filepath", err.Error()
	case errors.Is(err, fs.ErrNotExist):
		return consts.StatusNotFound, "not_found", "not found"
	case errors.Is(err, gameaction.ErrProtocolViolation),
		errors.Is(err, ports.ErrSimulatorUnavailable):
		return consts.StatusBadGateway, "simulator_error", err.Error()
	case errors.Is(err, ports.ErrConflict):
		return consts.StatusConflict, "conflict", err.Error()
	default:
		return consts.StatusInternalServerError, "internal_error", "internal error"
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeActionError adds the rejected action and the map it met to the
// error body of a failed submission.
func writeActionError(ctx *app.RequestContext, err error) {
	var execErr *gameaction.ActionExecutionError
	if !errors.As(err, &execErr) || execErr == nil {
		writeError(ctx, err)
		return
	}
	status, code, message := classifyError(err)
	details := map[string]any{
		"round":          execErr.Map.Round(),
		"current_player": execErr.Map.CurrentPlayerID(),
	}
	if execErr.Action != nil {
		details["action"] = execErr.Action.ActionType().String()
	}
	ctx.JSON(status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
