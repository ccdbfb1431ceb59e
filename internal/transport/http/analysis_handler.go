package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"gridsight/internal/decoder"
	apierrors "gridsight/internal/errors"
	"gridsight/internal/services"
)

// AnalysisHandler handles spreadsheet upload and retrieval requests
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, maxUploadBytes int64, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateAnalysis)
	r.Get("/", h.ListAnalyses)
	r.Get("/{id}", h.GetAnalysis)

	return r
}

// CreateAnalysis handles POST /api/analyses. It expects a multipart form
// with a "file" field holding an .xlsx or .csv upload.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.renderError(w, r, apierrors.ErrFileTooLarge)
			return
		}
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	if !allowedExtension(header.Filename) {
		h.renderError(w, r, apierrors.ErrUnsupportedFile)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	stored, err := h.service.AnalyzeUpload(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analysis failed",
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, decoder.ErrUnsupportedFormat):
			h.renderError(w, r, apierrors.ErrUnsupportedFile)
		case apierrors.IsTerminal(err):
			h.renderError(w, r, apierrors.AnalysisFailedError(err))
		default:
			h.renderError(w, r, apierrors.ErrInternalServer)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

// GetAnalysis handles GET /api/analyses/{id}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisNotFound) {
			h.renderError(w, r, apierrors.ErrAnalysisNotFound)
			return
		}
		h.renderError(w, r, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, stored)
}

// ListAnalyses handles GET /api/analyses
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	summaries := h.service.List(r.Context())

	render.JSON(w, r, map[string]any{
		"analyses": summaries,
		"count":    len(summaries),
	})
}

func (h *AnalysisHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if err := render.Render(w, r, apierrors.NewErrorResponse(apiErr)); err != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

func allowedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".csv":
		return true
	default:
		return false
	}
}
