package demo

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstate/pkg/bind"
	"github.com/vango-dev/vstate/pkg/driver"
)

const tracerName = "vstate-demo"

// Command is a client request to mutate the shared state.
type Command struct {
	Op    string `json:"op"`    // "increment", "decrement", "label"
	Label string `json:"label,omitempty"`
}

// client is one connected WebSocket consumer. The hub only ever
// touches its send channel.
type client struct {
	send chan []byte
}

// Hub owns the demo store. Every store read and write happens on the
// Run goroutine; connection pumps talk to it through channels.
type Hub struct {
	acc     *bind.Accessor[*State]
	drv     *driver.Sync[View]
	binding *bind.Binding[*State, View]

	commands   chan Command
	register   chan *client
	unregister chan *client

	clients map[*client]struct{}
	dirty   bool

	metrics *metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHub wires the store, its broadcast binding, and the hub channels.
func NewHub(label string, reg prometheus.Registerer) *Hub {
	h := &Hub{
		acc:        NewAccessor(label),
		commands:   make(chan Command, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]struct{}),
		metrics:    newMetrics(reg),
		logger:     slog.Default().With("component", "hub"),
		tracer:     otel.Tracer(tracerName),
	}

	// The driver's invalidate callback fires synchronously inside Set,
	// on the hub goroutine; it only flags the change, the loop decides
	// when to fan out.
	h.drv = driver.NewSync[View](func() {
		h.dirty = true
	})
	h.binding = bind.Bind(h.acc, bind.Driver[View](h.drv), SelectView, bind.WithEquality(ViewEqual))
	return h
}

// Run processes commands and connection churn until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.drv.Close()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down", "clients", len(h.clients))
			for c := range h.clients {
				close(c.send)
			}
			return

		case cmd := <-h.commands:
			h.apply(ctx, cmd)

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.clients.Inc()
			AddVisitor(h.acc, 1)
			// Joining client gets the current view immediately.
			if payload, err := json.Marshal(h.binding.Read()); err == nil {
				c.send <- payload
			}
			h.flush()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			close(c.send)
			h.metrics.clients.Dec()
			AddVisitor(h.acc, -1)
			h.flush()
		}
	}
}

// Submit queues a command for the hub. It drops the command when the
// hub is saturated rather than blocking a connection pump.
func (h *Hub) Submit(cmd Command) bool {
	select {
	case h.commands <- cmd:
		return true
	default:
		return false
	}
}

// apply runs one command against the store, then broadcasts if the
// view changed.
func (h *Hub) apply(ctx context.Context, cmd Command) {
	_, span := h.tracer.Start(ctx, "hub.command",
		trace.WithAttributes(attribute.String("op", cmd.Op)))
	defer span.End()

	switch cmd.Op {
	case "increment":
		Increment(h.acc, 1)
	case "decrement":
		Increment(h.acc, -1)
	case "label":
		SetLabel(h.acc, cmd.Label)
	default:
		h.logger.Warn("unknown command", "op", cmd.Op)
		span.SetAttributes(attribute.Bool("unknown", true))
		return
	}

	h.metrics.commandsTotal.WithLabelValues(cmd.Op).Inc()
	h.flush()
}

// flush fans the current view out to every client when a store write
// invalidated the binding. Visitor-only writes change the snapshot but
// not the view, so the binding's equality function keeps them quiet.
func (h *Hub) flush() {
	if !h.dirty {
		return
	}
	h.dirty = false

	view := h.binding.Read()
	payload, err := json.Marshal(view)
	if err != nil {
		h.logger.Error("view marshal failed", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.metrics.droppedTotal.Inc()
		}
	}
	h.metrics.broadcastsTotal.Inc()
}
