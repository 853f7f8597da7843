package statusfeed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"auditflow/internal/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing feed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return ev
}

// TestHubReplaysHistoryToNewClients verifies a late joiner receives events
// published before it connected.
func TestHubReplaysHistoryToNewClients(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Start(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	bus.Publish(events.Progress("crawler", 40, "Crawling"))
	bus.Publish(events.Completed("crawler", map[string]any{"status": "completed"}))

	conn := dial(t, srv)

	first := readEvent(t, conn)
	if first.Sender != "crawler" || first.Type != events.TypeProgress {
		t.Errorf("unexpected first replayed event %+v", first)
	}
	second := readEvent(t, conn)
	if second.Type != events.TypeCompleted {
		t.Errorf("unexpected second replayed event %+v", second)
	}
}

// TestHubBroadcastsLiveEvents verifies connected clients receive events
// published after they joined.
func TestHubBroadcastsLiveEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Start(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)

	// Registration happens during the HTTP handler; give it a beat before
	// publishing so the broadcast includes this client.
	deadline := time.Now().Add(2 * time.Second)
	var got events.Event
	for {
		bus.Publish(events.Failed("seo", "boom"))
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.ReadJSON(&got); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never received a live event")
		}
	}

	if got.Sender != "seo" || got.Type != events.TypeFailed {
		t.Errorf("unexpected event %+v", got)
	}
	if got.Payload["error"] != "boom" {
		t.Errorf("unexpected payload %v", got.Payload)
	}
}
