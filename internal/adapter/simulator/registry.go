package simulator

import (
	"errors"
	"sync"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/rules"
)

// Registry hands out one endpoint per owner key. An endpoint that fails with
// ErrSimulatorUnavailable is dropped on Release and recreated by the next
// Acquire for the same key.
type Registry struct {
	mu        sync.Mutex
	newFn     func() Endpoint
	endpoints map[string]Endpoint
}

func NewRegistry(newFn func() Endpoint) *Registry {
	return &Registry{newFn: newFn, endpoints: make(map[string]Endpoint)}
}

// NewEngineRegistry backs every endpoint with an in-process worker.
func NewEngineRegistry(engine rules.Engine) *Registry {
	return NewRegistry(func() Endpoint { return NewWorker(engine) })
}

func (r *Registry) Acquire(key string) Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ep, ok := r.endpoints[key]; ok {
		return ep
	}
	ep := r.newFn()
	r.endpoints[key] = ep
	return ep
}

func (r *Registry) Release(key string, ep Endpoint, err error) {
	if err == nil || !errors.Is(err, ports.ErrSimulatorUnavailable) {
		return
	}
	r.mu.Lock()
	if cur, ok := r.endpoints[key]; ok && cur == ep {
		delete(r.endpoints, key)
	}
	r.mu.Unlock()
	ep.Close()
}

// Forget closes and drops the endpoint for key, if any.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	ep, ok := r.endpoints[key]
	delete(r.endpoints, key)
	r.mu.Unlock()
	if ok {
		ep.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

func (r *Registry) Close() {
	r.mu.Lock()
	eps := r.endpoints
	r.endpoints = make(map[string]Endpoint)
	r.mu.Unlock()
	for _, ep := range eps {
		ep.Close()
	}
}
