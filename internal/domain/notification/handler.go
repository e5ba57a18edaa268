package notification

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ohs/ohs/internal/platform/auth"
	"github.com/ohs/ohs/internal/platform/realtime"
	"github.com/ohs/ohs/pkg/pagination"
)

type Handler struct {
	svc *Service
	sse *realtime.SSEHandler
	ws  *realtime.WSHandler
}

func NewHandler(svc *Service, sse *realtime.SSEHandler, ws *realtime.WSHandler) *Handler {
	return &Handler{svc: svc, sse: sse, ws: ws}
}

// RegisterRoutes mounts the notification endpoints. api carries bearer auth;
// stream carries query-token auth because EventSource and browser WebSocket
// clients cannot set headers.
func (h *Handler) RegisterRoutes(api *echo.Group, stream *echo.Group) {
	api.GET("/notifications", h.List)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.PUT("/notifications/:id/read", h.MarkRead)
	api.PUT("/notifications/read-all", h.MarkAllRead)
	api.DELETE("/notifications/:id", h.Delete)

	send := api.Group("", auth.RequireRole("admin", "case_manager"))
	send.POST("/notifications", h.Create)
	send.POST("/notifications/batch", h.CreateBatch)

	stream.GET("/notifications/stream", h.sse.HandleStream)
	stream.GET("/notifications/ws", h.ws.HandleConnect)
}

func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	case errors.Is(err, ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, "notification belongs to another user")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) List(c echo.Context) error {
	userID := auth.UserID(c)
	pg := pagination.FromContext(c)
	unreadOnly := c.QueryParam("unread_only") == "true"

	result, err := h.svc.List(c.Request().Context(), userID, unreadOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": result.Notifications,
		"unread_count":  result.UnreadCount,
		"pagination":    pagination.NewMeta(result.Total, pg.Limit, pg.Offset),
	})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	count, err := h.svc.UnreadCount(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	count, err := h.svc.MarkAllRead(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"marked_read": count})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), auth.UserID(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Create(c echo.Context) error {
	var n Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if sender := auth.UserID(c); sender != uuid.Nil {
		n.SenderID = &sender
	}
	created, err := h.svc.Create(c.Request().Context(), &n)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) CreateBatch(c echo.Context) error {
	var req struct {
		Notifications []*Notification `json:"notifications"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Notifications) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "notifications required")
	}
	sender := auth.UserID(c)
	for _, n := range req.Notifications {
		if sender != uuid.Nil {
			n.SenderID = &sender
		}
	}
	return c.JSON(http.StatusOK, h.svc.CreateBatch(c.Request().Context(), req.Notifications))
}
