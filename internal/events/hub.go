// Package events fans invoice notifications out to the owning user's
// websocket connections.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

const (
	TypeInvoiceStatusChanged = "invoice.status_changed"

	sendBuffer    = 16
	publishBuffer = 256
)

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

type StatusChanged struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rule      string    `json:"rule"`
}

// Subscription receives encoded events for one user until it is unsubscribed
// or the hub stops, after which C is closed.
type Subscription struct {
	UserID uuid.UUID
	C      <-chan []byte
	send   chan []byte
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

type Hub struct {
	subs       map[uuid.UUID]map[*Subscription]struct{}
	register   chan *Subscription
	unregister chan *Subscription
	publish    chan message
	done       chan struct{}
	now        func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subs:       make(map[uuid.UUID]map[*Subscription]struct{}),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		publish:    make(chan message, publishBuffer),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run dispatches until ctx is cancelled, then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.subs {
				for s := range set {
					close(s.send)
				}
			}
			h.subs = nil
			return

		case s := <-h.register:
			set, ok := h.subs[s.UserID]
			if !ok {
				set = make(map[*Subscription]struct{})
				h.subs[s.UserID] = set
			}
			set[s] = struct{}{}

		case s := <-h.unregister:
			h.drop(s)

		case m := <-h.publish:
			for s := range h.subs[m.userID] {
				select {
				case s.send <- m.payload:
				default:
					slog.Warn("dropping slow event subscriber", "user_id", s.UserID)
					h.drop(s)
				}
			}
		}
	}
}

func (h *Hub) drop(s *Subscription) {
	set, ok := h.subs[s.UserID]
	if !ok {
		return
	}

	if _, ok := set[s]; !ok {
		return
	}

	delete(set, s)
	close(s.send)

	if len(set) == 0 {
		delete(h.subs, s.UserID)
	}
}

// Subscribe returns nil once the hub has stopped.
func (h *Hub) Subscribe(userID uuid.UUID) *Subscription {
	send := make(chan []byte, sendBuffer)
	s := &Subscription{UserID: userID, C: send, send: send}

	select {
	case h.register <- s:
		return s
	case <-h.done:
		return nil
	}
}

func (h *Hub) Unsubscribe(s *Subscription) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish queues an event for the user's subscribers. It never blocks; events
// are dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(userID uuid.UUID, typ string, data any) {
	payload, err := json.Marshal(Event{Type: typ, At: h.now().UTC(), Data: data})
	if err != nil {
		slog.Error("encoding event", "type", typ, "error", err)
		return
	}

	select {
	case <-h.done:
	case h.publish <- message{userID: userID, payload: payload}:
	default:
		slog.Warn("event queue full, dropping event", "type", typ, "user_id", userID)
	}
}

func (h *Hub) InvoiceStatusChanged(_ context.Context, change payment.StatusChange) {
	h.Publish(change.UserID, TypeInvoiceStatusChanged, StatusChanged{
		InvoiceID: change.InvoiceID,
		Number:    change.Number,
		From:      string(change.From),
		To:        string(change.To),
		Rule:      change.Rule,
	})
}
