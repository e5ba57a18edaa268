package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(""))
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestFromContext_SkipAlias(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=10&skip=30"))
	if p.Limit != 10 || p.Offset != 30 {
		t.Errorf("expected limit=10 offset=30, got %+v", p)
	}
}

func TestFromContext_OffsetFallback(t *testing.T) {
	p := FromContext(ctxWithQuery("offset=15"))
	if p.Offset != 15 {
		t.Errorf("expected offset 15, got %d", p.Offset)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=9999"))
	if p.Limit != MaxLimit {
		t.Errorf("expected clamp to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(50, 20, 20)
	if m.Total != 50 || m.Limit != 20 || m.Offset != 20 {
		t.Errorf("unexpected meta: %+v", m)
	}
	if !m.HasMore {
		t.Error("expected has_more true")
	}
	if NewMeta(50, 20, 40).HasMore {
		t.Error("expected has_more false on last page")
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected has_more true")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("expected has_more false on last page")
	}
}
