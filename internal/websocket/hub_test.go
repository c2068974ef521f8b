package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"councellorx-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func attach(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) > 0 }, time.Second, time.Millisecond)
	return c
}

func TestHub_NotifyReachesOnlyTheUser(t *testing.T) {
	hub := startHub(t)
	alice, bob := uuid.New(), uuid.New()
	a := attach(t, hub, alice)
	b := attach(t, hub, bob)

	sessionID := uuid.New()
	hub.Notify(alice, "session.updated", map[string]interface{}{"id": sessionID.String()})

	select {
	case frame := <-a.Send:
		var msg struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(frame, &msg))
		assert.Equal(t, "session.updated", msg.Type)
		assert.Equal(t, sessionID.String(), msg.Data["id"])
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}

	select {
	case <-b.Send:
		t.Fatal("frame leaked to another user")
	default:
	}
}

func TestHub_EveryConnectionOfAUser(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	first := attach(t, hub, user)
	second := &Client{Hub: hub, UserID: user, Send: make(chan []byte, 4)}
	hub.register <- second
	require.Eventually(t, func() bool { return hub.ConnectionCount(user) == 2 }, time.Second, time.Millisecond)

	hub.Notify(user, "message.appended", nil)

	assert.Len(t, first.Send, 1)
	assert.Len(t, second.Send, 1)
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := attach(t, hub, user)

	hub.unregister <- c
	require.Eventually(t, func() bool { return hub.ConnectionCount(user) == 0 }, time.Second, time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)

	// A second unregister of the same client is ignored.
	hub.unregister <- c
	hub.Notify(user, "session.deleted", nil)
}
