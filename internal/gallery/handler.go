package gallery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lumapix/photogallery/internal/errx"
	"github.com/lumapix/photogallery/internal/httpx"
)

// Cache policy for served images: objects are content-addressed by photo id
// and never change in place, so clients may cache them for a year.
const imageCacheControl = "public, max-age=31536000"

// ClickRequest represents the JSON request body for recording a click.
type ClickRequest struct {
	PhotoID string `json:"photoId"`
}

// ClickResponse represents the JSON response of the click endpoint.
type ClickResponse struct {
	Success bool   `json:"success"`
	Clicks  int64  `json:"clicks,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler provides HTTP handlers for the gallery service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// ListPhotos handles GET /api/photos. Unparseable or missing page/perPage
// values fall back to defaults rather than erroring; the listing endpoint
// never fails on pagination input.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"method", r.Method,
		"path", r.URL.Path,
	)

	q := r.URL.Query()
	req := ListPhotosRequest{
		Category: q.Get("category"),
		Page:     intQueryParam(q.Get("page")),
		PerPage:  intQueryParam(q.Get("perPage")),
	}

	page, err := h.service.ListPhotos(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list photos",
			"error", err.Error(),
			"error_kind", errx.KindOf(err),
			"operation", errx.OpOf(err),
			"category", req.Category,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to load photos at this time")
		return
	}

	logger.InfoContext(ctx, "photos listed",
		"category", req.Category,
		"page", page.Page,
		"returned", len(page.Photos),
		"total_count", page.TotalCount,
	)

	httpx.WriteJSON(w, http.StatusOK, page)
}

// RecordClick handles POST /api/click. The method is checked here rather
// than in the route pattern so that a non-POST request still gets a JSON
// error body instead of the mux's plain-text 405.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"method", r.Method,
		"path", r.URL.Path,
	)

	if r.Method != http.MethodPost {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, ClickResponse{
			Success: false,
			Error:   "method not allowed",
		})
		return
	}

	req, err := httpx.DecodeJSON[ClickRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode click request", "error", err.Error())
		httpx.WriteJSON(w, http.StatusBadRequest, ClickResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if req.PhotoID == "" {
		logger.WarnContext(ctx, "click request missing photoId")
		httpx.WriteJSON(w, http.StatusBadRequest, ClickResponse{
			Success: false,
			Error:   "photoId is required",
		})
		return
	}

	clicks, err := h.service.RecordClick(ctx, req.PhotoID)
	if err != nil {
		h.handleClickError(ctx, w, err, req.PhotoID)
		return
	}

	logger.InfoContext(ctx, "click recorded",
		"photo_id", req.PhotoID,
		"clicks", clicks,
	)

	httpx.WriteJSON(w, http.StatusOK, ClickResponse{
		Success: true,
		Clicks:  clicks,
	})
}

// GetImage handles GET /api/image/{kind}/{filename}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind := r.PathValue("kind")
	filename := r.PathValue("filename")

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"kind", kind,
		"filename", filename,
	)

	obj, err := h.service.FetchImage(ctx, kind, filename)
	if err != nil {
		h.handleImageError(ctx, w, err, kind, filename)
		return
	}
	defer func() {
		_ = obj.Body.Close()
	}()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", imageCacheControl)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}

	if _, err := io.Copy(w, obj.Body); err != nil {
		// Headers are gone already; nothing to send, just log.
		logger.WarnContext(ctx, "image stream interrupted", "error", err.Error())
	}
}

// handleClickError handles errors from the RecordClick service method.
func (h *Handler) handleClickError(ctx context.Context, w http.ResponseWriter, err error, photoID string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"photo_id", photoID,
	}

	switch kind {
	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid click request", logAttrs...)
		httpx.WriteJSON(w, http.StatusBadRequest, ClickResponse{
			Success: false,
			Error:   err.Error(),
		})

	case errx.NotFound:
		h.logger.WarnContext(ctx, "click for unknown photo", logAttrs...)
		httpx.WriteJSON(w, http.StatusNotFound, ClickResponse{
			Success: false,
			Error:   "photo not found",
		})

	default:
		h.logger.ErrorContext(ctx, "failed to record click", logAttrs...)
		httpx.WriteJSON(w, http.StatusInternalServerError, ClickResponse{
			Success: false,
			Error:   "Unable to record click at this time",
		})
	}
}

// handleImageError handles errors from the FetchImage service method.
func (h *Handler) handleImageError(ctx context.Context, w http.ResponseWriter, err error, kind, filename string) {
	errKind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", errKind,
		"operation", errx.OpOf(err),
		"kind", kind,
		"filename", filename,
	}

	switch errKind {
	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid image path", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())

	case errx.NotFound:
		h.logger.WarnContext(ctx, "image not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found", "image not found")

	default:
		h.logger.ErrorContext(ctx, "failed to fetch image", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to serve this image at this time")
	}
}

// intQueryParam parses a positive integer query parameter, returning 0 for
// anything unparseable so the service applies its defaults.
func intQueryParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
