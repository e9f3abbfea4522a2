package model

import "time"

const TableNameActionLog = "action_log"

// ActionLog mapped from table <action_log>
type ActionLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	GameID    string    `gorm:"column:game_id;not null" json:"game_id"`
	Seq       int64     `gorm:"column:seq;not null" json:"seq"`
	Actor     int32     `gorm:"column:actor;not null" json:"actor"`
	Action    []byte    `gorm:"column:action;type:jsonb;not null" json:"action"`
	Previous  []byte    `gorm:"column:previous;type:jsonb;not null" json:"previous"`
	Reply     []byte    `gorm:"column:reply;type:jsonb;not null" json:"reply"`
	AppliedAt time.Time `gorm:"column:applied_at;not null" json:"applied_at"`
}

// TableName ActionLog's table name
func (*ActionLog) TableName() string {
	return TableNameActionLog
}
