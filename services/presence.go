package services

import (
	"sort"
	"sync"
)

// Conn is a live realtime connection handle as seen by the presence registry
// and push callers.
type Conn interface {
	// ID uniquely identifies the connection for its lifetime.
	ID() string
	// Send queues an event for delivery. It never blocks and reports whether
	// the event was accepted.
	Send(event string, payload any) bool
	Close() error
}

// PresenceRegistry maps user ids to their current connection. At most one
// connection is tracked per user; the most recent registration wins.
type PresenceRegistry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		conns: make(map[string]Conn),
	}
}

// Register inserts or overwrites the entry for userID. A replaced connection
// is left open.
func (pr *PresenceRegistry) Register(userID string, conn Conn) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.conns[userID] = conn
}

// Unregister removes the entry for userID if present.
func (pr *PresenceRegistry) Unregister(userID string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.conns, userID)
}

// Release removes the entry for userID only while it still points at conn.
// It reports whether an entry was removed.
func (pr *PresenceRegistry) Release(userID string, conn Conn) bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	current, ok := pr.conns[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(pr.conns, userID)
	return true
}

// Lookup returns the connection registered for userID.
func (pr *PresenceRegistry) Lookup(userID string) (Conn, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	conn, ok := pr.conns[userID]
	return conn, ok
}

// ListActiveUserIDs returns the registered user ids in sorted order.
func (pr *PresenceRegistry) ListActiveUserIDs() []string {
	pr.mu.RLock()
	ids := make([]string, 0, len(pr.conns))
	for id := range pr.conns {
		ids = append(ids, id)
	}
	pr.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of registered users.
func (pr *PresenceRegistry) Len() int {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return len(pr.conns)
}
