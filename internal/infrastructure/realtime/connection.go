package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bazaarlink/pkg/logger"
)

// ConnState models the lifecycle of one physical socket:
// OPEN -> CLOSING -> CLOSED, transitioned exactly once.
type ConnState int

const (
	StateOpen ConnState = iota
	StateClosing
	StateClosed
)

// DeliveryStatus is the per-connection outcome of one push attempt.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered" // handed to the connection writer
	DeliverySkipped   DeliveryStatus = "skipped"   // connection no longer OPEN
	DeliveryFailed    DeliveryStatus = "failed"    // writer queue full
)

type DeliveryOutcome struct {
	ConnectionID string
	UserID       string
	Status       DeliveryStatus
	Err          error
}

var ErrSendQueueFull = errors.New("send queue full")

// Connection is one live, authenticated, bidirectional endpoint for a single
// user's device or tab. A user may own any number of them concurrently.
type Connection struct {
	ID     string
	UserID string

	ws   *websocket.Conn // nil for connections without a real socket (tests)
	send chan []byte
	done chan struct{}

	mu    sync.Mutex
	state ConnState
}

func NewConnection(userID string, ws *websocket.Conn, sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Connection{
		ID:     uuid.New().String(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		state:  StateOpen,
	}
}

func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Push hands payload to the connection writer. Pushing to a connection that is
// not OPEN, or pushing a nil payload (a failed envelope marshal), is a skip,
// not an error; a full writer queue is a failure. Neither
// tears the connection down here - cleanup happens on the next detected close
// event, which avoids duplicate-invalidation races.
func (c *Connection) Push(payload []byte) DeliveryOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateOpen || payload == nil {
		return DeliveryOutcome{ConnectionID: c.ID, UserID: c.UserID, Status: DeliverySkipped}
	}

	select {
	case c.send <- payload:
		return DeliveryOutcome{ConnectionID: c.ID, UserID: c.UserID, Status: DeliveryDelivered}
	default:
		return DeliveryOutcome{ConnectionID: c.ID, UserID: c.UserID, Status: DeliveryFailed, Err: ErrSendQueueFull}
	}
}

// TryRecv pops one queued outbound payload without blocking. Empty queue
// returns false.
func (c *Connection) TryRecv() ([]byte, bool) {
	select {
	case payload := <-c.send:
		return payload, true
	default:
		return nil, false
	}
}

// close runs the OPEN -> CLOSING -> CLOSED transition. Safe to call more than
// once; only the first call has effect. The registry is the single caller, so
// unregistration stays the one transition side-effect point.
func (c *Connection) close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosing
	close(c.done)
	c.state = StateClosed
	c.mu.Unlock()

	if c.ws != nil {
		c.ws.Close()
	}
}

// ReadPump consumes frames from the socket until it dies, handing each inbound
// payload to handle. Clean close, error and heartbeat timeout all end the loop
// the same way: through the registry's unregistration path. Never assume a
// clean close.
func (c *Connection) ReadPump(registry *Registry, idleTimeout time.Duration, handle func(*Connection, []byte)) {
	defer registry.Unregister(c.ID)

	if c.ws == nil {
		return
	}

	c.ws.SetReadDeadline(time.Now().Add(idleTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Connection %s (user %s) read error: %v", c.ID, c.UserID, err)
			}
			return
		}
		handle(c, payload)
	}
}

// WritePump drains the send queue onto the socket and keeps the heartbeat
// alive. A write failure closes the raw socket so the read side detects the
// broken connection and unregisters it.
func (c *Connection) WritePump(heartbeat, writeTimeout time.Duration) {
	if c.ws == nil {
		return
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case payload := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("Connection %s (user %s) write error: %v", c.ID, c.UserID, err)
				c.ws.Close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.ws.Close()
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
