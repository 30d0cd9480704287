package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Socket is the registry's view of a live connection. The delivery
// scan needs the handshake Authorization header to re-authenticate a
// connection, and a non-blocking way to push an event to it.
type Socket interface {
	ID() uuid.UUID
	Authorization() string
	Send(event string, payload any) bool
}

// Registry tracks every live socket in the process, keyed by a
// server-assigned connection id. Entries vanish on restart; clients
// are expected to reconnect.
type Registry struct {
	mu      sync.RWMutex
	sockets map[uuid.UUID]Socket
}

func NewRegistry() *Registry {
	return &Registry{
		sockets: make(map[uuid.UUID]Socket),
	}
}

// Register adds or overwrites the entry for the socket's connection id.
func (r *Registry) Register(s Socket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sockets[s.ID()] = s
}

// Unregister removes the entry if present; no-op otherwise.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sockets, id)
}

// Snapshot returns the sockets registered at call time. Iterating the
// result is safe while connects and disconnects keep happening.
func (r *Registry) Snapshot() []Socket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Socket, 0, len(r.sockets))
	for _, s := range r.sockets {
		snapshot = append(snapshot, s)
	}

	return snapshot
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sockets)
}
