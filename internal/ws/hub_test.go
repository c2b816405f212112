package ws

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_PublishRoutesByEmail(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	hana := newClient(hub, nil, "Hana@Example.com ")
	rafi := newClient(hub, nil, "rafi@example.com")
	hub.Register(hana)
	hub.Register(rafi)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	NewNotifier(hub).ModuleUnlocked("hana@example.com", 1, 2, "modul CSS sudah terbuka!")

	select {
	case b := <-hana.send:
		var ev ModuleUnlockedEvent
		if err := json.Unmarshal(b, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != EventModuleUnlocked || ev.TitleID != 1 || ev.NextTitleID != 2 || ev.Email != "hana@example.com" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("hana did not receive the event")
	}

	select {
	case b := <-rafi.send:
		t.Fatalf("rafi should not receive hana's event: %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	c := newClient(hub, nil, "a@example.com")
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Unregister(c)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := newClient(hub, nil, "a@example.com")
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	<-done
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed on shutdown")
	}
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	late := make([]*Client, 300)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := range late {
			late[i] = newClient(hub, nil, "a@example.com")
			hub.Register(late[i])
			hub.Unregister(late[i])
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("register/unregister blocked on a stopped hub")
	}
	for i, c := range late {
		if _, ok := <-c.send; ok {
			t.Fatalf("late client %d should have a closed send channel", i)
		}
	}
}

func TestNotifier_NilSafe(t *testing.T) {
	var n *Notifier
	n.ModuleUnlocked("a@example.com", 1, 2, "x")
	NewNotifier(nil).ModuleUnlocked("a@example.com", 1, 2, "x")

	var h *Hub
	h.Publish("a@example.com", nil)
	if h.ClientCount() != 0 {
		t.Fatalf("nil hub has no clients")
	}
}
