package simulator

import (
	"context"
	"encoding/json"
	"fmt"

	"skirmish/internal/app/ports"
)

// Client implements ports.Simulator over a registry endpoint owned by key.
type Client struct {
	Registry *Registry
	Key      string
}

func NewClient(registry *Registry, key string) Client {
	return Client{Registry: registry, Key: key}
}

func (c Client) Simulate(ctx context.Context, req ports.SimRequest) (ports.SimReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("encode simulator request: %w", err)
	}
	ep := c.Registry.Acquire(c.Key)
	out, err := ep.Post(ctx, body)
	c.Registry.Release(c.Key, ep, err)
	if err != nil {
		return ports.SimReply{}, fmt.Errorf("simulate: %w", err)
	}
	var reply ports.SimReply
	if err := json.Unmarshal(out, &reply); err != nil {
		return ports.SimReply{}, err
	}
	return reply, nil
}
