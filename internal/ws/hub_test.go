package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub) *Client {
	return &Client{hub: h, send: make(chan []byte, 8)}
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if h.ClientCount() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := newTestClient(hub)
	c2 := newTestClient(hub)
	hub.register <- c1
	hub.register <- c2
	waitForClients(t, hub, 2)

	hub.Notify("order.created", map[string]string{"order_number": "ORD123456789ABC"})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			var event Event
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			if event.Type != "order.created" {
				t.Errorf("event type = %q, want order.created", event.Type)
			}
			var payload map[string]string
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if payload["order_number"] != "ORD123456789ABC" {
				t.Errorf("payload = %v", payload)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub)
	hub.register <- c
	waitForClients(t, hub, 1)

	hub.unregister <- c
	waitForClients(t, hub, 0)

	// The send channel is closed on unregister.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte)} // unbuffered, never read
	hub.register <- c
	waitForClients(t, hub, 1)

	hub.Notify("table.updated", map[string]int64{"id": 1})
	waitForClients(t, hub, 0)
}
