package observe

import "skirmish/internal/domain/board"

type Request struct {
	GameID string
	Viewer board.PlayerID
}

type Response struct {
	GameID        string             `json:"game_id"`
	Viewer        board.PlayerID     `json:"viewer"`
	Version       int64              `json:"version"`
	Ended         bool               `json:"ended"`
	Round         int                `json:"round"`
	CurrentPlayer board.PlayerID     `json:"current_player"`
	Fog           bool               `json:"fog"`
	View          View               `json:"view"`
	Players       []ObservedPlayer   `json:"players"`
	Units         []ObservedUnit     `json:"units"`
	Buildings     []ObservedBuilding `json:"buildings"`
	// Map is the fogged snapshot in its plain encoding.
	Map board.MapData `json:"map"`
}

type View struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Visible []board.Vector `json:"visible,omitempty"`
}

type ObservedPlayer struct {
	ID    board.PlayerID `json:"id"`
	Team  int            `json:"team"`
	Funds *int           `json:"funds"`
	Bot   bool           `json:"bot"`
}

type ObservedUnit struct {
	Pos    board.Vector   `json:"pos"`
	Type   string         `json:"type"`
	Player board.PlayerID `json:"player"`
	Health int            `json:"health"`
	Moved  bool           `json:"moved"`
}

type ObservedBuilding struct {
	Pos    board.Vector   `json:"pos"`
	Type   string         `json:"type"`
	Player board.PlayerID `json:"player"`
	Health int            `json:"health"`
}
