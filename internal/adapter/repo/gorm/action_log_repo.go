package gormrepo

import (
	"context"
	"errors"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActionLogRepo struct {
	db *gorm.DB
}

func NewActionLogRepo(db *gorm.DB) ActionLogRepo {
	return ActionLogRepo{db: db}
}

func (r ActionLogRepo) Append(ctx context.Context, record ports.ActionLogRecord) error {
	row, err := model.FromActionLogRecord(record)
	if err != nil {
		return err
	}
	if err := dbFrom(ctx, r.db).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

// ListByGameID returns the oldest records first; limit <= 0 means all.
func (r ActionLogRepo) ListByGameID(ctx context.Context, gameID string, limit int) ([]ports.ActionLogRecord, error) {
	rows := []model.ActionLog{}
	query := dbFrom(ctx, r.db).
		Where(&model.ActionLog{GameID: gameID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "seq"}}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.ActionLogRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
