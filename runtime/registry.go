// Package runtime holds the live state of the messaging core: the
// connection registry, the typing tracker, and the broadcaster. It
// contains no transport or storage logic.
package runtime

import (
	"sync"
	"time"

	"chat-relay/domain/event"
)

// Conn is one open duplex connection bound to an identity. Implemented
// by the websocket layer.
type Conn interface {
	UserID() string

	// Deliver hands an event to the connection, best effort. It must
	// never block the caller; a connection that cannot keep up drops
	// the event.
	Deliver(e event.DomainEvent)

	// LastSeen is the last-liveness timestamp, refreshed on any inbound
	// signal.
	LastSeen() time.Time

	// Terminate forcibly closes the transport. Cleanup runs on the
	// connection's own goroutine, so Terminate never blocks.
	Terminate()
}

type connSet map[Conn]struct{}

// Registry maps an identity to its set of live connections. An identity
// is online iff its set is non-empty; the entry is removed, never left
// empty, when the last connection goes. All mutation funnels through
// these methods.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]connSet
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]connSet)}
}

// Register adds a connection to its identity's set and reports whether
// the identity just came online.
func (r *Registry) Register(conn Conn) (cameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := conn.UserID()
	set, ok := r.sessions[userID]
	if !ok {
		set = make(connSet)
		r.sessions[userID] = set
	}
	set[conn] = struct{}{}
	return !ok
}

// Unregister removes a connection and reports whether the identity just
// went offline. Removing a connection twice is a no-op, so close and
// error firing concurrently stay idempotent at the registry level.
func (r *Registry) Unregister(conn Conn) (wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := conn.UserID()
	set, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if _, member := set[conn]; !member {
		return false
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.sessions, userID)
		return true
	}
	return false
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}

func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}

// Connections returns a snapshot of one identity's open connections.
func (r *Registry) Connections(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.sessions[userID]))
	for conn := range r.sessions[userID] {
		conns = append(conns, conn)
	}
	return conns
}

// Snapshot returns every open connection, for the liveness sweep.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []Conn
	for _, set := range r.sessions {
		for conn := range set {
			conns = append(conns, conn)
		}
	}
	return conns
}

func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		users = append(users, userID)
	}
	return users
}
