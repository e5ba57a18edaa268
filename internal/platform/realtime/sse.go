package realtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/platform/auth"
)

// heartbeatInterval keeps intermediaries from timing out idle streams.
const heartbeatInterval = 30 * time.Second

// SSEHandler serves the Server-Sent Events push stream.
type SSEHandler struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewSSEHandler creates an SSEHandler bound to the given registry.
func NewSSEHandler(registry *Registry, logger zerolog.Logger) *SSEHandler {
	return &SSEHandler{registry: registry, logger: logger}
}

// HandleStream handles GET /notifications/stream. The request must already
// be authenticated (token query parameter, verified once at connect). The
// stream stays open until the client disconnects or the request context is
// cancelled; either way the subscriber is unregistered so no channels leak.
func (h *SSEHandler) HandleStream(c echo.Context) error {
	recipient := auth.UserID(c)
	if recipient == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	sub := NewSubscriber(recipient)
	h.registry.Register(sub)
	defer h.registry.Unregister(sub)

	h.logger.Debug().
		Str("subscriber", sub.ID).
		Str("recipient", recipient.String()).
		Msg("sse: stream opened")

	if _, err := fmt.Fprintf(res, ": connected %s\n\n", sub.ID); err != nil {
		return nil
	}
	res.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Send:
			if !ok {
				// Dropped by the registry (stalled buffer).
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: notification\ndata: %s\n\n", msg); err != nil {
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
