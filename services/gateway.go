package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

// ErrGatewayClosed is returned when a connection arrives after shutdown.
var ErrGatewayClosed = errors.New("realtime gateway closed")

// ErrMalformedUserID rejects a handshake whose userId is neither anonymous
// nor a valid user id.
var ErrMalformedUserID = errors.New("malformed userId")

const (
	mirrorTimeout = 2 * time.Second
	mirrorBacklog = 256
)

// ConnState is the lifecycle stage of a realtime connection.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ConnState(%d)", int32(s))
	}
}

// Connection is the gateway's record of one live connection.
type Connection struct {
	Conn   Conn
	UserID string // empty for anonymous connections
	state  atomic.Int32
}

func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// Anonymous reports whether the connection is not bound to a user.
func (c *Connection) Anonymous() bool {
	return c.UserID == ""
}

// ParseUserID normalizes the handshake userId parameter. The empty string,
// "undefined" and "null" mean anonymous and yield "".
func ParseUserID(raw string) (string, error) {
	switch raw {
	case "", "undefined", "null":
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedUserID, raw)
	}
	return id.String(), nil
}

type lifecycleEvent struct {
	conn *Connection
	done chan struct{}
}

// Gateway owns the realtime connection set. Connect and disconnect are
// processed one at a time by Run; each one mutates the presence registry and
// broadcasts a full online-users snapshot to every connection.
type Gateway struct {
	registry *PresenceRegistry
	mirror   PresenceMirror
	logger   *utils.Logger

	connect    chan lifecycleEvent
	disconnect chan lifecycleEvent
	stopped    chan struct{}

	refreshInterval time.Duration
	mirrorTimeout   time.Duration
	mirrorOps       chan mirrorOp
	refreshPending  atomic.Bool

	// owned by Run
	conns map[string]*Connection
}

// mirrorOp is one write to the presence mirror, run off the event loop.
type mirrorOp func(ctx context.Context, mirror PresenceMirror) error

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithPresenceMirror publishes presence changes to a shared store and
// refreshes local entries every interval. Mirror writes never block the
// event loop; when the backlog is full they are dropped and the next refresh
// repairs the shared view.
func WithPresenceMirror(mirror PresenceMirror, interval time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.mirror = mirror
		g.refreshInterval = interval
		g.mirrorOps = make(chan mirrorOp, mirrorBacklog)
	}
}

func NewGateway(registry *PresenceRegistry, logger *utils.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		registry:   registry,
		logger:     logger.With("component", "Gateway"),
		connect:    make(chan lifecycleEvent),
		disconnect: make(chan lifecycleEvent),
		stopped:    make(chan struct{}),
		conns:      make(map[string]*Connection),

		mirrorTimeout: mirrorTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry exposes the presence registry for read-only callers.
func (g *Gateway) Registry() *PresenceRegistry {
	return g.registry
}

// Run processes lifecycle events until ctx is cancelled, then closes every
// connection. Shutdown waits for at most one mirror timeout.
func (g *Gateway) Run(ctx context.Context) {
	var refresh <-chan time.Time
	if g.mirror != nil && g.refreshInterval > 0 {
		ticker := time.NewTicker(g.refreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	stopMirror := func() {}
	if g.mirror != nil {
		mirrorCtx, cancel := context.WithCancel(context.Background())
		mirrorDone := make(chan struct{})
		go g.runMirror(mirrorCtx, mirrorDone)
		stopMirror = func() {
			cancel()
			<-mirrorDone
		}
	}

	g.logger.Info("Realtime gateway started")
	for {
		select {
		case ev := <-g.connect:
			g.handleConnect(ev.conn)
			close(ev.done)
		case ev := <-g.disconnect:
			g.handleDisconnect(ev.conn)
			close(ev.done)
		case <-refresh:
			g.refreshMirror()
		case <-ctx.Done():
			offline := g.shutdown()
			stopMirror()
			g.markOfflineNow(offline)
			g.logger.Info("Realtime gateway stopped")
			return
		}
	}
}

// Accept moves conn from Connecting to Connected. It returns once the
// connection is registered and the snapshot has been broadcast.
func (g *Gateway) Accept(conn Conn, userID string) (*Connection, error) {
	c := &Connection{Conn: conn, UserID: userID}
	c.state.Store(int32(StateConnecting))

	ev := lifecycleEvent{conn: c, done: make(chan struct{})}
	select {
	case g.connect <- ev:
	case <-g.stopped:
		return nil, ErrGatewayClosed
	}
	<-ev.done
	return c, nil
}

// Close moves c to Disconnected. Calling it more than once is a no-op.
func (g *Gateway) Close(c *Connection) {
	if c.State() == StateDisconnected {
		return
	}
	ev := lifecycleEvent{conn: c, done: make(chan struct{})}
	select {
	case g.disconnect <- ev:
		<-ev.done
	case <-g.stopped:
	}
}

// PushToUser delivers an event to the user's current connection. It returns
// false when the user is offline or the connection refuses the event. Delivery
// is never retried.
func (g *Gateway) PushToUser(userID, event string, payload any) bool {
	conn, ok := g.registry.Lookup(userID)
	if !ok {
		return false
	}
	if !conn.Send(event, payload) {
		g.logger.Warn("Push dropped", "user_id", userID, "event", event)
		return false
	}
	return true
}

// OnlineUserIDs returns the ids of users connected to this instance.
func (g *Gateway) OnlineUserIDs() []string {
	return g.registry.ListActiveUserIDs()
}

func (g *Gateway) handleConnect(c *Connection) {
	g.conns[c.Conn.ID()] = c
	c.state.Store(int32(StateConnected))

	if !c.Anonymous() {
		g.registry.Register(c.UserID, c.Conn)
		userID := c.UserID
		g.enqueueMirror(func(ctx context.Context, m PresenceMirror) error { return m.MarkOnline(ctx, userID) })
	}

	g.logger.Info("User connected", "conn_id", c.Conn.ID(), "user_id", c.UserID, "online", g.registry.Len())
	g.broadcastSnapshot()
}

func (g *Gateway) handleDisconnect(c *Connection) {
	if _, ok := g.conns[c.Conn.ID()]; !ok {
		return
	}
	delete(g.conns, c.Conn.ID())
	c.state.Store(int32(StateDisconnected))

	if !c.Anonymous() && g.registry.Release(c.UserID, c.Conn) {
		userID := c.UserID
		g.enqueueMirror(func(ctx context.Context, m PresenceMirror) error { return m.MarkOffline(ctx, userID) })
	}

	g.logger.Info("User disconnected", "conn_id", c.Conn.ID(), "user_id", c.UserID, "online", g.registry.Len())
	g.broadcastSnapshot()
}

func (g *Gateway) broadcastSnapshot() {
	snapshot := g.registry.ListActiveUserIDs()
	for _, c := range g.conns {
		if !c.Conn.Send(models.EventGetOnlineUsers, snapshot) {
			g.logger.Warn("Snapshot dropped", "conn_id", c.Conn.ID())
		}
	}
}

// refreshMirror queues a refresh unless one is already waiting.
func (g *Gateway) refreshMirror() {
	if !g.refreshPending.CompareAndSwap(false, true) {
		return
	}
	ok := g.enqueueMirror(func(ctx context.Context, m PresenceMirror) error {
		g.refreshPending.Store(false)
		return m.Refresh(ctx, g.registry.ListActiveUserIDs())
	})
	if !ok {
		g.refreshPending.Store(false)
	}
}

func (g *Gateway) enqueueMirror(op mirrorOp) bool {
	if g.mirror == nil {
		return false
	}
	select {
	case g.mirrorOps <- op:
		return true
	default:
		g.logger.Warn("Presence mirror backlog full, dropping update")
		return false
	}
}

// runMirror applies queued mirror writes in order until ctx is cancelled.
// Cancelling also aborts the write in flight.
func (g *Gateway) runMirror(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case op := <-g.mirrorOps:
			opCtx, cancel := context.WithTimeout(ctx, g.mirrorTimeout)
			err := op(opCtx, g.mirror)
			cancel()
			if err != nil && ctx.Err() == nil {
				g.logger.Error("Presence mirror update failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// markOfflineNow clears userIDs from the mirror in one batch bounded by a
// single mirror timeout.
func (g *Gateway) markOfflineNow(userIDs []string) {
	if g.mirror == nil || len(userIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.mirrorTimeout)
	defer cancel()
	if err := g.mirror.MarkOffline(ctx, userIDs...); err != nil {
		g.logger.Error("Presence mirror update failed", "error", err, "users", len(userIDs))
	}
}

// shutdown closes every connection and returns the users it released.
func (g *Gateway) shutdown() []string {
	close(g.stopped)
	var released []string
	for id, c := range g.conns {
		c.state.Store(int32(StateDisconnected))
		if !c.Anonymous() && g.registry.Release(c.UserID, c.Conn) {
			released = append(released, c.UserID)
		}
		if err := c.Conn.Close(); err != nil {
			g.logger.Warn("Error closing connection", "conn_id", id, "error", err)
		}
		delete(g.conns, id)
	}
	return released
}
