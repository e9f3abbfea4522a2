package sqliterepo

import (
	"context"
	"database/sql"
	"errors"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"
)

type GameRepo struct {
	db *sql.DB
}

func NewGameRepo(db *sql.DB) GameRepo {
	return GameRepo{db: db}
}

func (r GameRepo) Create(ctx context.Context, game ports.GameRecord) error {
	m, err := model.FromGameRecord(game)
	if err != nil {
		return err
	}
	if err := insertGame(ctx, dbFrom(ctx, r.db), m); err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r GameRepo) Get(ctx context.Context, gameID string) (ports.GameRecord, error) {
	var (
		m        model.Game
		lastText sql.NullString
		ended    bool
		updated  string
	)
	row := dbFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT game_id, map, effects, last_action, ended, version, updated_at FROM games WHERE game_id = ?`, gameID)
	if err := row.Scan(&m.GameID, &m.Map, &m.Effects, &lastText, &ended, &m.Version, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.GameRecord{}, ports.ErrNotFound
		}
		return ports.GameRecord{}, err
	}
	if lastText.Valid {
		m.LastAction = []byte(lastText.String)
	}
	m.Ended = ended
	t, err := parseTime(updated)
	if err != nil {
		return ports.GameRecord{}, err
	}
	m.UpdatedAt = t
	return m.Record()
}

func (r GameRepo) SaveWithVersion(ctx context.Context, game ports.GameRecord, expectedVersion int64) error {
	m, err := model.FromGameRecord(game)
	if err != nil {
		return err
	}
	q := dbFrom(ctx, r.db)
	if expectedVersion == 0 {
		var count int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE game_id = ?`, game.GameID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return insertGame(ctx, q, m)
		}
	}
	res, err := q.ExecContext(ctx,
		`UPDATE games SET map = ?, effects = ?, last_action = ?, ended = ?, version = ?, updated_at = ?
		 WHERE game_id = ? AND version = ?`,
		string(m.Map), string(m.Effects), nullable(m.LastAction), m.Ended, m.Version, formatTime(m.UpdatedAt),
		game.GameID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrConflict
	}
	return nil
}

func insertGame(ctx context.Context, q querier, m model.Game) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO games(game_id, map, effects, last_action, ended, version, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.GameID, string(m.Map), string(m.Effects), nullable(m.LastAction), m.Ended, m.Version, formatTime(m.UpdatedAt))
	return err
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
