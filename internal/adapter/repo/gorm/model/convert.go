package model

import (
	"encoding/json"
	"fmt"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/tuple"
)

func FromGameRecord(rec ports.GameRecord) (Game, error) {
	m, err := json.Marshal(rec.Map)
	if err != nil {
		return Game{}, fmt.Errorf("marshal map: %w", err)
	}
	enc, err := action.EncodeEffects(rec.Effects)
	if err != nil {
		return Game{}, err
	}
	effects, err := json.Marshal(tuple.List(enc))
	if err != nil {
		return Game{}, fmt.Errorf("marshal effects: %w", err)
	}
	g := Game{
		GameID:    rec.GameID,
		Map:       m,
		Effects:   effects,
		Ended:     rec.Ended,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Started() {
		if g.LastAction, err = json.Marshal(rec.LastAction); err != nil {
			return Game{}, fmt.Errorf("marshal last action: %w", err)
		}
	}
	return g, nil
}

func (g Game) Record() (ports.GameRecord, error) {
	rec := ports.GameRecord{
		GameID:    g.GameID,
		Ended:     g.Ended,
		Version:   g.Version,
		UpdatedAt: g.UpdatedAt,
	}
	if err := json.Unmarshal(g.Map, &rec.Map); err != nil {
		return ports.GameRecord{}, fmt.Errorf("unmarshal map of %s: %w", g.GameID, err)
	}
	var effects tuple.Tuple
	if err := json.Unmarshal(g.Effects, &effects); err != nil {
		return ports.GameRecord{}, fmt.Errorf("unmarshal effects of %s: %w", g.GameID, err)
	}
	decoded, err := action.DecodeEffects(effects)
	if err != nil {
		return ports.GameRecord{}, fmt.Errorf("decode effects of %s: %w", g.GameID, err)
	}
	rec.Effects = decoded
	if len(g.LastAction) > 0 {
		if err := json.Unmarshal(g.LastAction, &rec.LastAction); err != nil {
			return ports.GameRecord{}, fmt.Errorf("unmarshal last action of %s: %w", g.GameID, err)
		}
	}
	return rec, nil
}

func FromActionLogRecord(rec ports.ActionLogRecord) (ActionLog, error) {
	a, err := json.Marshal(rec.Action)
	if err != nil {
		return ActionLog{}, fmt.Errorf("marshal action: %w", err)
	}
	prev, err := json.Marshal(rec.Previous)
	if err != nil {
		return ActionLog{}, fmt.Errorf("marshal previous map: %w", err)
	}
	reply, err := json.Marshal(rec.Reply)
	if err != nil {
		return ActionLog{}, fmt.Errorf("marshal reply: %w", err)
	}
	return ActionLog{
		GameID:    rec.GameID,
		Seq:       rec.Seq,
		Actor:     int32(rec.Actor),
		Action:    a,
		Previous:  prev,
		Reply:     reply,
		AppliedAt: rec.AppliedAt,
	}, nil
}

func (l ActionLog) Record() (ports.ActionLogRecord, error) {
	rec := ports.ActionLogRecord{
		GameID:    l.GameID,
		Seq:       l.Seq,
		Actor:     board.PlayerID(l.Actor),
		AppliedAt: l.AppliedAt,
	}
	if err := json.Unmarshal(l.Action, &rec.Action); err != nil {
		return ports.ActionLogRecord{}, fmt.Errorf("unmarshal action %s/%d: %w", l.GameID, l.Seq, err)
	}
	if err := json.Unmarshal(l.Previous, &rec.Previous); err != nil {
		return ports.ActionLogRecord{}, fmt.Errorf("unmarshal previous map %s/%d: %w", l.GameID, l.Seq, err)
	}
	if err := json.Unmarshal(l.Reply, &rec.Reply); err != nil {
		return ports.ActionLogRecord{}, fmt.Errorf("unmarshal reply %s/%d: %w", l.GameID, l.Seq, err)
	}
	return rec, nil
}
