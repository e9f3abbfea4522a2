package gameaction

import (
	"context"
	"sync"
	"testing"

	"skirmish/internal/adapter/simulator"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/action"
	"skirmish/internal/domain/board"
	"skirmish/internal/domain/rules"
)

func duelMap(fog bool) board.MapData {
	tank, _ := board.LookupUnit(board.UnitSmallTank)
	return board.New(board.Size{Width: 6, Height: 4}, board.Config{Fog: fog}, []board.Player{
		{ID: 1, Team: 1, Funds: 100, UserID: "User-1"},
		{ID: 2, Team: 2, Funds: 100, UserID: "User-2"},
	}).
		WithUnit(board.Vec(1, 1), tank.Create(1)).
		WithUnit(board.Vec(1, 2), tank.Create(2))
}

// engineSim runs the reference rules in process, one endpoint per test.
func engineSim(t *testing.T) ports.Simulator {
	t.Helper()
	reg := simulator.NewEngineRegistry(rules.NewEngine(rules.DefaultTuning()))
	t.Cleanup(reg.Close)
	return simulator.NewClient(reg, t.Name())
}

func startedSession(t *testing.T, m board.MapData, deps Deps) *Session {
	t.Helper()
	s := NewSession(ClientGame{ID: "game-1", State: m}, engineSim(t), deps)
	if res := s.Submit(context.Background(), Request{Action: action.StartAction{}}); !res.OK() {
		t.Fatalf("start: %v", res.Err)
	}
	return s
}

type simFunc func(ctx context.Context, req ports.SimRequest) (ports.SimReply, error)

func (f simFunc) Simulate(ctx context.Context, req ports.SimRequest) (ports.SimReply, error) {
	return f(ctx, req)
}

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubGameRepo struct {
	mu       sync.Mutex
	byID     map[string]ports.GameRecord
	conflict bool
}

func newStubGameRepo() *stubGameRepo {
	return &stubGameRepo{byID: map[string]ports.GameRecord{}}
}

func (r *stubGameRepo) Create(_ context.Context, game ports.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[game.GameID]; ok {
		return ports.ErrConflict
	}
	r.byID[game.GameID] = game
	return nil
}

func (r *stubGameRepo) Get(_ context.Context, gameID string) (ports.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[gameID]
	if !ok {
		return ports.GameRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (r *stubGameRepo) SaveWithVersion(_ context.Context, game ports.GameRecord, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[game.GameID]
	if r.conflict || !ok || current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.byID[game.GameID] = game
	return nil
}

type stubActionLog struct {
	mu      sync.Mutex
	records []ports.ActionLogRecord
}

func (l *stubActionLog) Append(_ context.Context, record ports.ActionLogRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *stubActionLog) ListByGameID(_ context.Context, gameID string, limit int) ([]ports.ActionLogRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []ports.ActionLogRecord
	for _, r := range l.records {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type stubArchive struct {
	entries []ports.ReplayEntry
}

func (a *stubArchive) Append(_ context.Context, entry ports.ReplayEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

type published struct {
	viewer  board.PlayerID
	payload []byte
}

type stubHub struct {
	viewers []board.PlayerID
	sent    []published
}

func (h *stubHub) Viewers(string) []board.PlayerID {
	return h.viewers
}

func (h *stubHub) Publish(_ context.Context, _ string, viewer board.PlayerID, payload []byte) error {
	h.sent = append(h.sent, published{viewer: viewer, payload: payload})
	return nil
}

type stubSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *stubSink) Capture(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

type stubActionMetrics struct {
	successCalls  int
	conflictCalls int
	failureCalls  int
	lastType      action.ResponseType
}

func (m *stubActionMetrics) RecordSuccess(t action.ResponseType) {
	m.successCalls++
	m.lastType = t
}

func (m *stubActionMetrics) RecordConflict() {
	m.conflictCalls++
}

func (m *stubActionMetrics) RecordFailure() {
	m.failureCalls++
}
