package chats

import (
	"encoding/json"
	"testing"
	"time"

	"goldennile/models"
)

func TestHubPushConversation(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "chat1",
	}
	hub.register <- client

	msgs := []models.Message{{MsgID: "m1", ChatID: "chat1", UserID: "u1", Text: "hello"}}
	hub.PushConversation("chat1", msgs)

	select {
	case got := <-client.Send:
		var payload conversationPayload
		if err := json.Unmarshal(got, &payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if payload.Action != "conversation" || payload.ChatID != "chat1" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		if len(payload.Messages) != 1 || payload.Messages[0].MsgID != "m1" {
			t.Fatalf("unexpected messages %+v", payload.Messages)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for push")
	}

	hub.Unregister(client)
}

func TestHubWatchersTracksRoomMembership(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 1), Room: "chat1"}
	b := &Client{Send: make(chan []byte, 1), Room: "chat1"}
	hub.register <- a
	hub.register <- b

	waitFor(t, func() bool { return hub.Watchers("chat1") == 2 })

	if remaining := hub.Unregister(a); remaining != 1 {
		t.Fatalf("remaining after first unregister = %d, want 1", remaining)
	}
	if remaining := hub.Unregister(b); remaining != 0 {
		t.Fatalf("remaining after last unregister = %d, want 0", remaining)
	}
	if got := hub.Watchers("chat1"); got != 0 {
		t.Fatalf("Watchers = %d after room emptied", got)
	}

	// Re-unregistering a departed client must not double-close its
	// channel or resurrect the room.
	if remaining := hub.Unregister(a); remaining != 0 {
		t.Fatalf("remaining after duplicate unregister = %d, want 0", remaining)
	}
}

func TestHubUnregisterAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{Send: make(chan []byte, 1), Room: "chat1"}
	hub.register <- c

	hub.Stop()
	waitFor(t, func() bool { return hub.Watchers("chat1") == 0 })

	// The run loop is gone; detaching must still return instead of
	// blocking the reader goroutine forever.
	done := make(chan int, 1)
	go func() { done <- hub.Unregister(c) }()
	select {
	case remaining := <-done:
		if remaining != 0 {
			t.Fatalf("remaining = %d, want 0", remaining)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Unregister blocked after Stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never held")
}
