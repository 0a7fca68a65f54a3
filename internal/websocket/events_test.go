package websocket

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainOne pulls the next broadcast frame off the hub's channel.
func drainOne(t *testing.T, hub *Hub) Message {
	t.Helper()

	select {
	case raw := <-hub.broadcast:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message broadcast")
		return Message{}
	}
}

func TestEventBroadcaster_SyncLifecycle(t *testing.T) {
	hub := NewHub()
	b := NewEventBroadcaster(hub)

	b.BroadcastSyncStarted("properties")
	msg := drainOne(t, hub)
	assert.Equal(t, TypeSyncStarted, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	b.BroadcastSyncCompleted("properties", "success", 3, 2, 1)
	msg = drainOne(t, hub)
	assert.Equal(t, TypeSyncCompleted, msg.Type)

	payload, err := json.Marshal(msg.Payload)
	require.NoError(t, err)
	var completed SyncCompletedPayload
	require.NoError(t, json.Unmarshal(payload, &completed))
	assert.Equal(t, "properties", completed.SyncType)
	assert.Equal(t, 3, completed.Created)
	assert.Equal(t, 2, completed.Updated)
	assert.Equal(t, 1, completed.RecordErrors)

	b.BroadcastSyncFailed("reservations", errors.New("upstream down"))
	msg = drainOne(t, hub)
	assert.Equal(t, TypeSyncFailed, msg.Type)
}

func TestEventBroadcaster_ImportCompleted(t *testing.T) {
	hub := NewHub()
	b := NewEventBroadcaster(hub)

	b.BroadcastImportCompleted(9, 1)
	msg := drainOne(t, hub)
	assert.Equal(t, TypeImportCompleted, msg.Type)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub)
	hub.Register(client)

	// Registration is async; wait for the hub to pick it up.
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"type":"notification"}`))

	select {
	case frame := <-client.Send():
		assert.JSONEq(t, `{"type":"notification"}`, string(frame))
	case <-time.After(time.Second):
		t.Fatal("client never received the broadcast")
	}

	hub.Unregister(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
