package events

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/events"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
)

type Handler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from the given origins; an empty list only
// allows same-origin requests.
func NewHandler(hub *events.Hub, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	h := &Handler{hub: hub}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if len(allowed) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin] || allowed["*"]
		}
	}

	return h
}

// Stream upgrades an authenticated request and forwards the caller's events.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	u := guard.User(r)

	sub := h.hub.Subscribe(u.ID)
	if sub == nil {
		respond.Error(w, r, apperr.ErrUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		slog.Debug("websocket upgrade failed", "error", err)

		return
	}

	h.hub.Serve(conn, sub)
}
