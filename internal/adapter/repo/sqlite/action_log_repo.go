package sqliterepo

import (
	"context"
	"database/sql"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"
)

type ActionLogRepo struct {
	db *sql.DB
}

func NewActionLogRepo(db *sql.DB) ActionLogRepo {
	return ActionLogRepo{db: db}
}

func (r ActionLogRepo) Append(ctx context.Context, record ports.ActionLogRecord) error {
	row, err := model.FromActionLogRecord(record)
	if err != nil {
		return err
	}
	_, err = dbFrom(ctx, r.db).ExecContext(ctx,
		`INSERT INTO action_log(game_id, seq, actor, action, previous, reply, applied_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.GameID, row.Seq, row.Actor, string(row.Action), string(row.Previous), string(row.Reply), formatTime(row.AppliedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

// ListByGameID returns the oldest records first; limit <= 0 means all.
func (r ActionLogRepo) ListByGameID(ctx context.Context, gameID string, limit int) ([]ports.ActionLogRecord, error) {
	query := `SELECT id, game_id, seq, actor, action, previous, reply, applied_at FROM action_log WHERE game_id = ? ORDER BY seq`
	args := []any{gameID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := dbFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ports.ActionLogRecord{}
	for rows.Next() {
		var (
			row     model.ActionLog
			applied string
		)
		if err := rows.Scan(&row.ID, &row.GameID, &row.Seq, &row.Actor, &row.Action, &row.Previous, &row.Reply, &applied); err != nil {
			return nil, err
		}
		if row.AppliedAt, err = parseTime(applied); err != nil {
			return nil, err
		}
		rec, err := row.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
