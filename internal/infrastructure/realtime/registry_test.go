package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	conn := NewConnection("u1", nil, 4)

	registry.Register(conn)

	assert.True(t, registry.Online("u1"))
	conns := registry.ConnectionsFor("u1")
	require.Len(t, conns, 1)
	assert.Equal(t, conn.ID, conns[0].ID)
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := NewConnection("u1", nil, 4)

	registry.Register(conn)
	registry.Register(conn)

	assert.Len(t, registry.ConnectionsFor("u1"), 1)
}

func TestRegistryMultipleConnectionsPerUser(t *testing.T) {
	registry := NewRegistry()
	first := NewConnection("u1", nil, 4)
	second := NewConnection("u1", nil, 4)

	registry.Register(first)
	registry.Register(second)

	assert.Len(t, registry.ConnectionsFor("u1"), 2)

	// Dropping one device keeps the user online through the other.
	registry.Unregister(first.ID)
	assert.True(t, registry.Online("u1"))
	assert.Len(t, registry.ConnectionsFor("u1"), 1)

	registry.Unregister(second.ID)
	assert.False(t, registry.Online("u1"))
	assert.Empty(t, registry.ConnectionsFor("u1"))
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := NewConnection("u1", nil, 4)
	registry.Register(conn)

	registry.Unregister(conn.ID)
	registry.Unregister(conn.ID)

	assert.False(t, registry.Online("u1"))
	assert.Equal(t, StateClosed, conn.State())
}

func TestRegistryRefusesClosedConnection(t *testing.T) {
	registry := NewRegistry()
	conn := NewConnection("u1", nil, 4)
	registry.Register(conn)
	registry.Unregister(conn.ID)

	// Re-registering a closed connection must not resurrect it.
	registry.Register(conn)

	assert.False(t, registry.Online("u1"))
}

func TestPushAfterCloseIsSkipped(t *testing.T) {
	registry := NewRegistry()
	conn := NewConnection("u1", nil, 4)
	registry.Register(conn)
	registry.Unregister(conn.ID)

	outcome := conn.Push([]byte("late"))

	assert.Equal(t, DeliverySkipped, outcome.Status)
	_, ok := conn.TryRecv()
	assert.False(t, ok)
}

func TestPushNilPayloadIsSkipped(t *testing.T) {
	conn := NewConnection("u1", nil, 4)

	outcome := conn.Push(nil)

	assert.Equal(t, DeliverySkipped, outcome.Status)
	_, ok := conn.TryRecv()
	assert.False(t, ok, "a nil payload must never reach the writer queue")
}

func TestPushFullQueueFails(t *testing.T) {
	conn := NewConnection("u1", nil, 1)

	first := conn.Push([]byte("one"))
	second := conn.Push([]byte("two"))

	assert.Equal(t, DeliveryDelivered, first.Status)
	assert.Equal(t, DeliveryFailed, second.Status)
	assert.ErrorIs(t, second.Err, ErrSendQueueFull)

	payload, ok := conn.TryRecv()
	require.True(t, ok)
	assert.Equal(t, []byte("one"), payload)
}

func TestRegistryShutdownClosesEverything(t *testing.T) {
	registry := NewRegistry()
	first := NewConnection("u1", nil, 4)
	second := NewConnection("u2", nil, 4)
	registry.Register(first)
	registry.Register(second)

	registry.Shutdown()

	assert.False(t, registry.Online("u1"))
	assert.False(t, registry.Online("u2"))
	assert.Equal(t, StateClosed, first.State())
	assert.Equal(t, StateClosed, second.State())
}
