package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRoutesToRegisteredUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	client := &Client{hub: hub, userID: userID, send: make(chan []byte, sendBuffer)}
	hub.add(client)

	hub.SendToUser(userID, Event{Type: "notification", Payload: map[string]string{"message": "hi"}})

	select {
	case data := <-client.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "notification", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubIgnoresOfflineUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Must not block or panic when nobody is connected.
	hub.SendToUser(uuid.New(), Event{Type: "notification"})
}

func TestHubFanOutToMultipleConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	a := &Client{hub: hub, userID: userID, send: make(chan []byte, sendBuffer)}
	b := &Client{hub: hub, userID: userID, send: make(chan []byte, sendBuffer)}
	hub.add(a)
	hub.add(b)

	hub.SendToUser(userID, Event{Type: "notification"})

	for _, c := range []*Client{a, b} {
		select {
		case <-c.send:
		case <-time.After(time.Second):
			t.Fatal("connection did not receive event")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	client := &Client{hub: hub, userID: userID, send: make(chan []byte, sendBuffer)}
	hub.add(client)
	hub.remove(client)

	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubRegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	client := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, sendBuffer)}
	finished := make(chan struct{})
	go func() {
		hub.add(client)
		hub.remove(client)
		hub.SendToUser(client.userID, Event{Type: "notification"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("hub operations blocked after Stop")
	}
}

func TestUserIDFromToken(t *testing.T) {
	_, err := userIDFromToken("", "secret")
	assert.Error(t, err)

	_, err = userIDFromToken("not-a-jwt", "secret")
	assert.Error(t, err)
}
