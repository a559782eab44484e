package net

import (
	"context"
	"sync"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Registry tracks every live Connection so the orchestrator can shut
// them all down on server stop. Its mutex is never held while
// performing I/O, per the connections-lock domain of the concurrency
// model.
type Registry struct {
	mu          sync.Mutex
	connections map[string]*Connection
	logger      logger.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
		logger:      logger.Get().Named("registry"),
	}
}

// Insert adds a Connection to the registry.
func (r *Registry) Insert(c *Connection) {
	r.mu.Lock()
	r.connections[c.ID] = c
	count := len(r.connections)
	r.mu.Unlock()

	metrics.RecordConnectionAccepted()
	metrics.UpdateConnectionsActive(count)
}

// Remove removes a Connection from the registry. It does not shut the
// connection down; callers remove first, then shut down, per invariant
// 3 (a Connection is removed from the registry before its socket is
// destroyed).
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.connections, id)
	count := len(r.connections)
	r.mu.Unlock()

	metrics.UpdateConnectionsActive(count)
}

// Len returns the number of tracked connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connections)
}

// ShutdownAll shuts down and clears every tracked connection.
func (r *Registry) ShutdownAll(ctx context.Context) {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		conns = append(conns, c)
	}
	r.connections = make(map[string]*Connection)
	r.mu.Unlock()

	for _, c := range conns {
		if err := c.Shutdown(); err != nil {
			r.logger.Warn(ctx, "error shutting down connection", logger.String("id", c.ID), logger.Error(err))
		}
	}
	metrics.UpdateConnectionsActive(0)
}
