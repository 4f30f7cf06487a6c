package ws

import (
	"testing"

	"go.uber.org/zap"

	"pvcommunity/internal/models"
)

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())

	hub.BroadcastTotals(&models.CommunityGesamtwerte{AnzahlAnlagen: 3})
	if hub.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", hub.ClientCount())
	}
	if hub.last == nil {
		t.Fatal("snapshot for late joiners missing")
	}
}

func TestLateJoinerGetsSnapshot(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.BroadcastTotals(&models.CommunityGesamtwerte{AnzahlAnlagen: 7})

	c := &client{send: make(chan []byte, 4), logger: zap.NewNop()}
	hub.add(c)

	select {
	case msg := <-c.send:
		if len(msg) == 0 {
			t.Fatal("empty snapshot frame")
		}
	default:
		t.Fatal("new client did not receive the snapshot")
	}

	hub.remove(c)
	if hub.ClientCount() != 0 {
		t.Fatalf("client count = %d after remove, want 0", hub.ClientCount())
	}
}

// A disconnecting client leaves the hub before its channel closes, so a
// broadcast arriving in between must neither panic nor reach the client.
func TestRemovedClientGetsNoBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := &client{send: make(chan []byte, 4), logger: zap.NewNop()}
	hub.add(c)
	hub.BroadcastTotals(&models.CommunityGesamtwerte{AnzahlAnlagen: 1})
	<-c.send

	hub.remove(c)
	close(c.send)
	hub.BroadcastTotals(&models.CommunityGesamtwerte{AnzahlAnlagen: 2})

	if _, ok := <-c.send; ok {
		t.Fatal("client received a frame after leaving the hub")
	}
}
