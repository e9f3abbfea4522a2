package ports

import (
	"context"
	"time"

	"skirmish/internal/domain/board"
)

// ObserverHub fans encoded responses out to everyone watching a game.
type ObserverHub interface {
	Viewers(gameID string) []board.PlayerID
	Publish(ctx context.Context, gameID string, viewer board.PlayerID, payload []byte) error
}

// ErrorSink receives failures that are not returned to a caller as errors.
type ErrorSink interface {
	Capture(ctx context.Context, err error)
}

// Scheduler runs fn once after d. cancel reports whether it stopped fn
// before it started.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

type ReplayEntry struct {
	GameID string     `json:"gameId"`
	Seq    int64      `json:"seq"`
	Req    SimRequest `json:"request"`
	Reply  SimReply   `json:"reply"`
	At     time.Time  `json:"at"`
}

type ReplayArchive interface {
	Append(ctx context.Context, entry ReplayEntry) error
}
