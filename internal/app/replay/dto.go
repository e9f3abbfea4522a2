package replay

import (
	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/wire"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

type Request struct {
	GameID string
	Viewer board.PlayerID
	Limit  int
}

// Entry is one logged submission as the viewer receives it.
type Entry struct {
	Seq     int64                   `json:"seq"`
	Actor   board.PlayerID          `json:"actor"`
	Encoded tuple.Tuple             `json:"encoded"`
	Payload wire.GameActionResponse `json:"-"`
}

type Response struct {
	GameID  string         `json:"game_id"`
	Viewer  board.PlayerID `json:"viewer"`
	Entries []Entry        `json:"entries"`
}

// Step is one visible action of a scripted run, in the order the player who
// moved received it.
type Step struct {
	Viewer board.PlayerID
	Item   wire.Item
}

type Script struct {
	Steps []Step
	Final gameaction.ClientGame
}
