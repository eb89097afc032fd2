package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, channel string) *Client {
	return &Client{
		hub:     hub,
		channel: channel,
		send:    make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, ChannelOrders)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[ChannelOrders] == nil {
		t.Fatal("channel room not created")
	}
	if !hub.rooms[ChannelOrders][client] {
		t.Fatal("client not registered in channel room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, ChannelTables)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[ChannelTables] != nil {
		t.Fatal("channel room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ordersClient := mockClient(hub, ChannelOrders)
	tablesClient := mockClient(hub, ChannelTables)

	hub.register <- ordersClient
	hub.register <- tablesClient
	time.Sleep(10 * time.Millisecond)

	// Broadcast to the orders channel only
	testPayload := json.RawMessage(`{"order_id":"test-123"}`)
	hub.Broadcast(ChannelOrders, Event{Type: "order_created", Payload: testPayload})

	select {
	case msg := <-ordersClient.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order_created" {
			t.Errorf("expected type 'order_created', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("orders client did not receive message")
	}

	// The tables client must not see the orders event
	select {
	case <-tablesClient.send:
		t.Fatal("tables client should not have received an orders event")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, ChannelIngredients)
	client2 := mockClient(hub, ChannelIngredients)
	client3 := mockClient(hub, ChannelIngredients)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(ChannelIngredients, Event{
		Type:    "stock_changed",
		Payload: json.RawMessage(`{"ingredient":"flour"}`),
	})

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "stock_changed" {
				t.Errorf("client%d: expected type 'stock_changed', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestPublishMarshalsPayload(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, ChannelOrders)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Publish(ChannelOrders, "order_finalized", map[string]any{"order_id": "abc"})

	select {
	case msg := <-client.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order_finalized" {
			t.Errorf("expected type 'order_finalized', got '%s'", received.Type)
		}
		var payload map[string]string
		if err := json.Unmarshal(received.Payload, &payload); err != nil {
			t.Fatalf("failed to unmarshal payload: %v", err)
		}
		if payload["order_id"] != "abc" {
			t.Errorf("payload order_id = %q, expected abc", payload["order_id"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive published event")
	}
}

func TestValidChannel(t *testing.T) {
	for _, name := range []string{ChannelOrders, ChannelTables, ChannelIngredients} {
		if !validChannel(name) {
			t.Errorf("channel %q rejected", name)
		}
	}
	if validChannel("payments") {
		t.Error("unknown channel accepted")
	}
}
