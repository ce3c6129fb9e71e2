package broadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEnqueueDropsOldestOnFull(t *testing.T) {
	inbox := make(chan Event, 2)
	enqueue(inbox, Event{Kind: RobotUpdate, Payload: 1})
	enqueue(inbox, Event{Kind: RobotUpdate, Payload: 2})
	enqueue(inbox, Event{Kind: RobotUpdate, Payload: 3}) // should drop payload 1

	first := <-inbox
	second := <-inbox
	if first.Payload != 2 || second.Payload != 3 {
		t.Fatalf("got payloads %v, %v; want 2, 3 (oldest dropped)", first.Payload, second.Payload)
	}
}

func TestHubPublishReachesConnectedSubscriber(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWebsocket(w, r, nil)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", hub.SubscriberCount())
	}

	hub.Publish(Event{Kind: RobotUpdate, Payload: map[string]string{"id": "r1"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got wireEventType
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Kind != RobotUpdate {
		t.Fatalf("Kind = %v, want RobotUpdate", got.Kind)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWebsocket(w, r, nil)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0 after disconnect", hub.SubscriberCount())
	}
}
