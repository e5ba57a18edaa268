package intake

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ohs/ohs/internal/domain/incident"
	"github.com/ohs/ohs/internal/platform/auth"
	"github.com/ohs/ohs/internal/platform/blobstore"
	"github.com/ohs/ohs/pkg/pagination"
)

type Handler struct {
	svc    *Service
	photos blobstore.PhotoStore
}

func NewHandler(svc *Service, photos blobstore.PhotoStore) *Handler {
	return &Handler{svc: svc, photos: photos}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/incidents", h.Report)
	api.GET("/incidents", h.ListIncidents)
	api.GET("/incidents/:id", h.GetIncident)
	api.GET("/photos/:id", h.GetPhoto)
}

// Report accepts an incident report, as JSON or as a multipart form with
// photos[] attachments. It answers 201 whether or not a case could be
// auto-created; the case id is present only when assignment succeeded.
func (h *Handler) Report(c echo.Context) error {
	var req ReportRequest
	var err error
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		req, err = h.bindMultipart(c)
	} else {
		err = c.Bind(&req)
	}
	if err != nil {
		return err
	}
	req.ReporterID = auth.UserID(c)
	if req.WorkerID == uuid.Nil && auth.Role(c) == "worker" {
		// Workers reporting their own injury may omit worker_id.
		req.WorkerID = req.ReporterID
	}

	result, err := h.svc.Report(c.Request().Context(), &req)
	if err != nil {
		var verr *incident.ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) bindMultipart(c echo.Context) (ReportRequest, error) {
	var req ReportRequest

	if v := c.FormValue("worker_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid worker_id")
		}
		req.WorkerID = id
	}
	if v := c.FormValue("employer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid employer_id")
		}
		req.EmployerID = &id
	}
	req.IncidentType = incident.Type(c.FormValue("incident_type"))
	req.Severity = incident.Severity(c.FormValue("severity"))
	req.Description = c.FormValue("description")
	if v := c.FormValue("incident_date"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			ts, err = time.Parse("2006-01-02", v)
		}
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "invalid incident_date")
		}
		req.IncidentDate = ts
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	for _, file := range form.File["photos[]"] {
		src, err := file.Open()
		if err != nil {
			return req, echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded photo")
		}
		meta, err := h.photos.Save(c.Request().Context(), file.Filename, file.Header.Get("Content-Type"), src)
		src.Close()
		if err != nil {
			return req, photoError(err)
		}
		req.PhotoURLs = append(req.PhotoURLs, meta.URL)
	}
	return req, nil
}

func photoError(err error) error {
	switch {
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, blobstore.ErrInvalidContentType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, blobstore.ErrMissingFileName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) GetIncident(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	in, err := h.svc.GetIncident(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "incident not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) ListIncidents(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListIncidents(c.Request().Context(), auth.UserID(c), auth.Role(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPhoto(c echo.Context) error {
	meta, data, err := h.photos.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, blobstore.ErrPhotoNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "photo not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, meta.ContentType, data)
}
