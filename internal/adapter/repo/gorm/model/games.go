package model

import "time"

const TableNameGame = "games"

// Game mapped from table <games>
type Game struct {
	GameID     string    `gorm:"column:game_id;primaryKey" json:"game_id"`
	Map        []byte    `gorm:"column:map;type:jsonb;not null" json:"map"`
	Effects    []byte    `gorm:"column:effects;type:jsonb;not null" json:"effects"`
	LastAction []byte    `gorm:"column:last_action;type:jsonb" json:"last_action"`
	Ended      bool      `gorm:"column:ended;not null" json:"ended"`
	Version    int64     `gorm:"column:version;not null" json:"version"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName Game's table name
func (*Game) TableName() string {
	return TableNameGame
}
