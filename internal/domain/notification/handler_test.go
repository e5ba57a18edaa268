package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ohs/ohs/internal/platform/realtime"
)

func identify(userID uuid.UUID, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", userID)
			c.Set("user_role", role)
			return next(c)
		}
	}
}

func setupHandler(t *testing.T, userID uuid.UUID, role string) (*echo.Echo, *Service) {
	t.Helper()
	registry := realtime.NewRegistry(zerolog.Nop())
	svc := NewService(newMemRepo(), registry, zerolog.Nop())
	h := NewHandler(svc,
		realtime.NewSSEHandler(registry, zerolog.Nop()),
		realtime.NewWSHandler(registry, zerolog.Nop()))

	e := echo.New()
	api := e.Group("/api/v1", identify(userID, role))
	stream := e.Group("/api/v1", identify(userID, role))
	h.RegisterRoutes(api, stream)
	return e, svc
}

func TestListHandler(t *testing.T) {
	userID := uuid.New()
	e, svc := setupHandler(t, userID, "worker")

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), note(userID)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), note(uuid.New())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Notifications []*Notification `json:"notifications"`
		UnreadCount   int             `json:"unread_count"`
		Pagination    struct {
			Total   int  `json:"total"`
			HasMore bool `json:"has_more"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notifications) != 2 {
		t.Errorf("page size = %d, want 2", len(body.Notifications))
	}
	if body.UnreadCount != 3 || body.Pagination.Total != 3 {
		t.Errorf("unread/total = %d/%d, want 3/3", body.UnreadCount, body.Pagination.Total)
	}
	if !body.Pagination.HasMore {
		t.Error("expected has_more")
	}
	var raw struct {
		Pagination map[string]json.RawMessage `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The rows live at the top level; the pagination object is meta only.
	if _, ok := raw.Pagination["data"]; ok {
		t.Error("pagination object carries a data field")
	}
	for _, n := range body.Notifications {
		if n.RecipientID != userID {
			t.Error("listed a foreign notification")
		}
	}
}

func TestMarkReadHandler(t *testing.T) {
	userID := uuid.New()
	e, svc := setupHandler(t, userID, "worker")

	created, err := svc.Create(context.Background(), note(userID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	foreign, err := svc.Create(context.Background(), note(uuid.New()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/"+created.ID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/notifications/"+foreign.ID.String()+"/read", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/notifications/"+uuid.New().String()+"/read", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

func TestCreateHandler_RoleGate(t *testing.T) {
	worker := uuid.New()
	e, _ := setupHandler(t, worker, "worker")

	payload := `{"recipient_id":"` + uuid.New().String() + `","type":"system","title":"maintenance","message":"tonight"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("worker create status = %d, want 403", rec.Code)
	}

	manager := uuid.New()
	e, _ = setupHandler(t, manager, "case_manager")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("manager create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.SenderID == nil || *created.SenderID != manager {
		t.Error("sender not stamped from the authenticated user")
	}
}

func TestCreateBatchHandler(t *testing.T) {
	admin := uuid.New()
	e, _ := setupHandler(t, admin, "admin")

	payload := `{"notifications":[
		{"recipient_id":"` + uuid.New().String() + `","type":"shift_assigned","title":"shift","message":"monday"},
		{"recipient_id":"` + uuid.New().String() + `","type":"bogus","title":"shift","message":"monday"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/batch", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Succeeded) != 1 || result.FailedCount != 1 {
		t.Errorf("batch = %d/%d, want 1 succeeded 1 failed", len(result.Succeeded), result.FailedCount)
	}
}

func TestMarkAllReadHandler(t *testing.T) {
	userID := uuid.New()
	e, svc := setupHandler(t, userID, "worker")

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), note(userID)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/read-all", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["marked_read"] != 2 {
		t.Errorf("marked_read = %d, want 2", body["marked_read"])
	}
}
