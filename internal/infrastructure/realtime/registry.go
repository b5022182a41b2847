package realtime

import (
	"sync"

	"bazaarlink/pkg/logger"
)

// Registry is the authoritative in-memory mapping from authenticated users to
// their live connections, with a reverse index for O(1) lookup both ways. It
// is a cache of reachability only: membership and message existence always
// come from the persistence layer.
//
// Constructed once per process and passed to the components that need it; the
// owner calls Shutdown on exit.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Connection
	byConn map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*Connection),
		byConn: make(map[string]*Connection),
	}
}

// Register makes conn reachable for dispatch and notification fan-out.
// Idempotent by connection id; a connection past OPEN is refused.
func (r *Registry) Register(conn *Connection) {
	if conn.State() != StateOpen {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn.ID]; ok {
		return
	}

	r.byConn[conn.ID] = conn
	set := r.byUser[conn.UserID]
	if set == nil {
		set = make(map[string]*Connection)
		r.byUser[conn.UserID] = set
	}
	set[conn.ID] = conn

	logger.Info("Connection registered: user=%s connection=%s (%d active)", conn.UserID, conn.ID, len(set))
}

// Unregister removes the connection and finishes its close transition. This is
// the single unregistration path: socket close, read error and heartbeat
// timeout all land here. Idempotent.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	conn, ok := r.byConn[connectionID]
	if !ok {
		r.mu.Unlock()
		return
	}

	delete(r.byConn, connectionID)
	set := r.byUser[conn.UserID]
	delete(set, connectionID)
	offline := len(set) == 0
	if offline {
		delete(r.byUser, conn.UserID)
	}
	r.mu.Unlock()

	conn.close()

	if offline {
		logger.Info("Connection unregistered: user=%s connection=%s (user offline)", conn.UserID, connectionID)
	} else {
		logger.Info("Connection unregistered: user=%s connection=%s", conn.UserID, connectionID)
	}
}

// ConnectionsFor returns a point-in-time snapshot of the user's open
// connections, empty when the user is offline.
func (r *Registry) ConnectionsFor(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}

	conns := make([]*Connection, 0, len(set))
	for _, conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// Shutdown closes every live connection and empties both indexes.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.byConn))
	for _, conn := range r.byConn {
		conns = append(conns, conn)
	}
	r.byUser = make(map[string]map[string]*Connection)
	r.byConn = make(map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.close()
	}

	logger.Info("Registry shutdown: closed %d connections", len(conns))
}
