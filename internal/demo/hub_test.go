package demo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func recvView(t *testing.T, ch chan []byte) View {
	t.Helper()
	select {
	case payload, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed")
		}
		var v View
		if err := json.Unmarshal(payload, &v); err != nil {
			t.Fatalf("bad view payload: %v", err)
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return View{}
	}
}

func expectQuiet(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case payload := <-ch:
		t.Fatalf("unexpected broadcast: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSendsSnapshotOnJoin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub("greeter", prometheus.NewRegistry())
	go h.Run(ctx)

	c := &client{send: make(chan []byte, sendBufferSize)}
	h.register <- c

	v := recvView(t, c.send)
	if v.Count != 0 || v.Label != "greeter" {
		t.Errorf("unexpected initial view: %+v", v)
	}
}

func TestHubBroadcastsCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub("counter", prometheus.NewRegistry())
	go h.Run(ctx)

	c := &client{send: make(chan []byte, sendBufferSize)}
	h.register <- c
	_ = recvView(t, c.send) // initial snapshot

	h.Submit(Command{Op: "increment"})
	if v := recvView(t, c.send); v.Count != 1 || v.Writes != 1 {
		t.Errorf("expected count 1 after increment, got %+v", v)
	}

	h.Submit(Command{Op: "decrement"})
	if v := recvView(t, c.send); v.Count != 0 || v.Writes != 2 {
		t.Errorf("expected count 0 after decrement, got %+v", v)
	}

	h.Submit(Command{Op: "label", Label: "renamed"})
	if v := recvView(t, c.send); v.Label != "renamed" {
		t.Errorf("expected relabeled view, got %+v", v)
	}
}

func TestHubVisitorChurnStaysQuiet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub("counter", prometheus.NewRegistry())
	go h.Run(ctx)

	first := &client{send: make(chan []byte, sendBufferSize)}
	h.register <- first
	_ = recvView(t, first.send)

	// A second client joining writes the visitor count, which is a
	// fresh snapshot but an unchanged view: nothing should fan out.
	second := &client{send: make(chan []byte, sendBufferSize)}
	h.register <- second
	_ = recvView(t, second.send)
	expectQuiet(t, first.send)

	h.unregister <- second
	expectQuiet(t, first.send)

	// The store still tracked the churn even though no broadcast
	// happened.
	h.Submit(Command{Op: "increment"})
	if v := recvView(t, first.send); v.Count != 1 {
		t.Errorf("expected count 1, got %+v", v)
	}
	if got := h.acc.Get().Visitors; got != 1 {
		t.Errorf("expected 1 visitor, got %d", got)
	}
}

func TestHubIgnoresUnknownCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub("counter", prometheus.NewRegistry())
	go h.Run(ctx)

	c := &client{send: make(chan []byte, sendBufferSize)}
	h.register <- c
	_ = recvView(t, c.send)

	h.Submit(Command{Op: "reset"})
	expectQuiet(t, c.send)
}
