package realtime

import (
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/platform/auth"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Conn abstracts a WebSocket connection for testability.
// *gorillawebsocket.Conn satisfies it directly.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WSHandler serves the WebSocket fallback push stream for clients that
// prefer a socket over SSE. It feeds from the same Registry, so delivery
// semantics are identical.
type WSHandler struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewWSHandler creates a WSHandler bound to the given registry.
func NewWSHandler(registry *Registry, logger zerolog.Logger) *WSHandler {
	return &WSHandler{registry: registry, logger: logger}
}

// HandleConnect handles GET /notifications/ws. The request must already be
// authenticated via the token query parameter.
func (h *WSHandler) HandleConnect(c echo.Context) error {
	recipient := auth.UserID(c)
	if recipient == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := NewSubscriber(recipient)
	h.registry.Register(sub)

	go h.writePump(sub, ws)
	go h.readPump(sub, ws)

	return nil
}

// readPump drains inbound frames until the socket errors, then unregisters.
// Clients have nothing to say on this stream; reading only detects closes.
func (h *WSHandler) readPump(sub *Subscriber, conn Conn) {
	defer func() {
		h.registry.Unregister(sub)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes events from the subscriber channel to the socket. A write
// failure is an implicit disconnect.
func (h *WSHandler) writePump(sub *Subscriber, conn Conn) {
	defer conn.Close()

	for message := range sub.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			h.registry.Unregister(sub)
			return
		}
	}
}
