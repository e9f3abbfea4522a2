package ports

import (
	"context"
	"time"

	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

// GameRecord is the committed state of one game.
type GameRecord struct {
	GameID  string
	Map     board.MapData
	Effects action.Effects
	// LastAction is the most recent accepted action, nil before Start.
	LastAction tuple.Tuple
	Ended      bool
	Version    int64
	UpdatedAt  time.Time
}

func (r GameRecord) Started() bool {
	return len(r.LastAction) > 0
}

// ActionLogRecord is one accepted submission: the action, the map it was
// applied to and the simulator's full reply.
type ActionLogRecord struct {
	GameID    string
	Seq       int64
	Actor     board.PlayerID
	Action    tuple.Tuple
	Previous  board.MapData
	Reply     SimReply
	AppliedAt time.Time
}

type GameRepository interface {
	Create(ctx context.Context, game GameRecord) error
	Get(ctx context.Context, gameID string) (GameRecord, error)
	SaveWithVersion(ctx context.Context, game GameRecord, expectedVersion int64) error
}

type ActionLogRepository interface {
	Append(ctx context.Context, record ActionLogRecord) error
	ListByGameID(ctx context.Context, gameID string, limit int) ([]ActionLogRecord, error)
}
