package gormrepo

import (
	"context"
	"errors"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"

	"gorm.io/gorm"
)

type GameRepo struct {
	db *gorm.DB
}

func NewGameRepo(db *gorm.DB) GameRepo {
	return GameRepo{db: db}
}

func (r GameRepo) Create(ctx context.Context, game ports.GameRecord) error {
	m, err := model.FromGameRecord(game)
	if err != nil {
		return err
	}
	if err := dbFrom(ctx, r.db).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r GameRepo) Get(ctx context.Context, gameID string) (ports.GameRecord, error) {
	var m model.Game
	if err := dbFrom(ctx, r.db).Where("game_id = ?", gameID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GameRecord{}, ports.ErrNotFound
		}
		return ports.GameRecord{}, err
	}
	return m.Record()
}

func (r GameRepo) SaveWithVersion(ctx context.Context, game ports.GameRecord, expectedVersion int64) error {
	m, err := model.FromGameRecord(game)
	if err != nil {
		return err
	}
	db := dbFrom(ctx, r.db)
	if expectedVersion == 0 {
		var count int64
		if err := db.Model(&model.Game{}).Where("game_id = ?", game.GameID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return db.Create(&m).Error
		}
	}

	updates := map[string]any{
		"map":         m.Map,
		"effects":     m.Effects,
		"last_action": m.LastAction,
		"ended":       m.Ended,
		"version":     m.Version,
		"updated_at":  m.UpdatedAt,
	}
	res := db.Model(&model.Game{}).
		Where("game_id = ? AND version = ?", game.GameID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
