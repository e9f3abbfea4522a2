package observe

import (
	"context"
	"errors"
	"strings"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/board"
)

var ErrInvalidRequest = errors.New("invalid observe request")

// UseCase returns a committed game as one viewer may see it.
type UseCase struct {
	Games ports.GameRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.GameID) == "" {
		return Response{}, ErrInvalidRequest
	}
	rec, err := u.Games.Get(ctx, req.GameID)
	if err != nil {
		return Response{}, err
	}
	vision := board.NewVision(rec.Map, req.Viewer)
	fogged := vision.Apply(rec.Map)
	resp := Response{
		GameID:        rec.GameID,
		Viewer:        req.Viewer,
		Version:       rec.Version,
		Ended:         rec.Ended,
		Round:         fogged.Round(),
		CurrentPlayer: fogged.CurrentPlayerID(),
		Fog:           fogged.Config().Fog,
		View: View{
			Width:  fogged.Size().Width,
			Height: fogged.Size().Height,
		},
		Players:   projectPlayers(fogged, vision),
		Units:     projectUnits(fogged),
		Buildings: projectBuildings(fogged),
		Map:       fogged,
	}
	if resp.Fog {
		resp.View.Visible = vision.VisiblePositions(rec.Map)
	}
	return resp, nil
}

// projectPlayers hides the funds of other teams under fog.
func projectPlayers(m board.MapData, vision board.Vision) []ObservedPlayer {
	team := m.TeamOf(vision.Viewer())
	out := make([]ObservedPlayer, 0, len(m.Players()))
	for _, p := range m.Players() {
		op := ObservedPlayer{ID: p.ID, Team: p.Team, Bot: p.IsBot()}
		if !m.Config().Fog || (!vision.IsSpectator() && p.Team == team) {
			funds := p.Funds
			op.Funds = &funds
		}
		out = append(out, op)
	}
	return out
}

func projectUnits(m board.MapData) []ObservedUnit {
	entries := m.Units()
	out := make([]ObservedUnit, 0, len(entries))
	for _, e := range entries {
		out = append(out, ObservedUnit{
			Pos:    e.Pos,
			Type:   e.Unit.Info().Name,
			Player: e.Unit.Player,
			Health: e.Unit.Health,
			Moved:  e.Unit.Moved,
		})
	}
	return out
}

func projectBuildings(m board.MapData) []ObservedBuilding {
	entries := m.Buildings()
	out := make([]ObservedBuilding, 0, len(entries))
	for _, e := range entries {
		out = append(out, ObservedBuilding{
			Pos:    e.Pos,
			Type:   e.Building.Info().Name,
			Player: e.Building.Player,
			Health: e.Building.Health,
		})
	}
	return out
}
