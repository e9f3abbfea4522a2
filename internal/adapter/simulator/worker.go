package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/rules"
)

// Endpoint is one request/reply channel to a simulator.
type Endpoint interface {
	Post(ctx context.Context, req []byte) ([]byte, error)
	Close()
}

type workerCall struct {
	req  []byte
	resp chan workerResult
}

type workerResult struct {
	body []byte
	err  error
}

// Worker owns a goroutine that serves one request at a time from its inbox.
type Worker struct {
	engine rules.Engine
	inbox  chan workerCall
	stop   chan struct{}
	once   sync.Once
}

func NewWorker(engine rules.Engine) *Worker {
	w := &Worker{
		engine: engine,
		inbox:  make(chan workerCall),
		stop:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	for {
		select {
		case <-w.stop:
			return
		case call := <-w.inbox:
			call.resp <- w.serve(call.req)
		}
	}
}

func (w *Worker) serve(body []byte) (out workerResult) {
	defer func() {
		if r := recover(); r != nil {
			out = workerResult{err: fmt.Errorf("%w: worker panic: %v", ports.ErrSimulatorUnavailable, r)}
		}
	}()
	var req ports.SimRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return workerResult{err: fmt.Errorf("decode request: %w", err)}
	}
	reply, err := Handle(w.engine, req)
	if err != nil {
		return workerResult{err: err}
	}
	b, err := json.Marshal(reply)
	if err != nil {
		return workerResult{err: fmt.Errorf("encode reply: %w", err)}
	}
	return workerResult{body: b}
}

// Post sends req and waits for its reply.
func (w *Worker) Post(ctx context.Context, req []byte) ([]byte, error) {
	select {
	case <-w.stop:
		return nil, fmt.Errorf("%w: worker closed", ports.ErrSimulatorUnavailable)
	default:
	}
	resp := make(chan workerResult, 1)
	select {
	case w.inbox <- workerCall{req: req, resp: resp}:
	case <-w.stop:
		return nil, fmt.Errorf("%w: worker closed", ports.ErrSimulatorUnavailable)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.body, r.err
	case <-w.stop:
		return nil, fmt.Errorf("%w: worker closed", ports.ErrSimulatorUnavailable)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Worker) Close() {
	w.once.Do(func() { close(w.stop) })
}
