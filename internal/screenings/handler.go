package screenings

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"screening-backend/internal/scheduling"
	"screening-backend/internal/shared/server/middleware"
	"screening-backend/internal/shared/server/respond"
	"screening-backend/internal/shared/util"
)

const (
	defaultMaxUploadBytes = 32 << 20 // 32MB per analyze request
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes <= 0 uses the default limit.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches screening routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/screenings", h.analyze)
	rg.GET("/screenings/current", h.current)
	rg.POST("/screenings/current/confirm", h.confirm)
	rg.GET("/screenings/current/export", h.export)
	rg.DELETE("/screenings/current", h.reset)
}

func (h *Handler) analyze(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}

	jobDescription := strings.TrimSpace(strings.Join(form.Value["job_description"], "\n"))
	if jobDescription == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job_description is required", nil)
		return
	}

	files := form.File["resumes"]
	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		name, err := util.SanitizeFileName(fh.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", gin.H{"filename": fh.Filename})
			return
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", gin.H{"filename": name})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", gin.H{"filename": name})
			return
		}
		uploads = append(uploads, Upload{FileName: name, Data: data})
	}
	c.Set("documentCount", len(uploads))

	snap, err := h.Svc.Analyze(c.Request.Context(), sessionID, jobDescription, uploads)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrRankingFailed):
			respond.Error(c, http.StatusBadGateway, "embedding_failed", "failed to embed job description", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze documents", nil)
		}
		return
	}

	respond.OK(c, toResponse(snap))
}

func (h *Handler) current(c *gin.Context) {
	snap, err := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.OK(c, emptyResponse())
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch screening", nil)
		}
		return
	}
	respond.OK(c, toResponse(snap))
}

func (h *Handler) confirm(c *gin.Context) {
	var req confirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	results, err := h.Svc.ConfirmAndSchedule(c.Request.Context(), middleware.SessionIDFromContext(c), req.SelectedCandidates)
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrCalendarUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "calendar_unavailable", "calendar is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to schedule interviews", nil)
		}
		return
	}
	respond.OK(c, toConfirmResponse(results))
}

func (h *Handler) export(c *gin.Context) {
	snap, err := h.Svc.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no ranked candidates to export", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch screening", nil)
		}
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, snap); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render workbook", nil)
		return
	}
	respond.Attachment(c, "ranked_candidates.xlsx", xlsxContentType, buf.Bytes())
}

func (h *Handler) reset(c *gin.Context) {
	if err := h.Svc.Reset(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset screening", nil)
		}
		return
	}
	respond.NoContent(c)
}
