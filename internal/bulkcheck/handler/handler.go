// Package handler exposes the bulk-check pipeline over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/service"
	"eligibility/internal/platform/middleware"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/httputil"
	"eligibility/pkg/requestcontext"
)

const (
	uploadField       = "fileUpload"
	multipartHeadroom = 64 << 10
)

// Service is the bulk-check orchestrator.
type Service interface {
	Upload(ctx context.Context, upload service.Upload) (*service.UploadResult, error)
	Status(ctx context.Context, jobID string) (*service.StatusResult, error)
	Results(ctx context.Context, jobID string) ([]models.ExportRow, error)
	Export(ctx context.Context, jobID string) (*service.ExportFile, error)
	History(ctx context.Context, page, pageSize int) (models.Page[models.BulkCheckSummary], error)
	Delete(ctx context.Context, jobID string) service.DeleteResult
	Template() service.Template
}

// ReadinessCheck is one backing dependency probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	service        Service
	logger         *slog.Logger
	jwtValidator   middleware.JWTValidator
	maxUploadBytes int64
	readiness      []ReadinessCheck
}

// New creates a bulk-check Handler. maxUploadBytes bounds the request body;
// the service applies the exact size rule.
func New(svc Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, maxUploadBytes int64, readiness ...ReadinessCheck) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxUploadBytes
	}
	return &Handler{
		service:        svc,
		logger:         logger,
		jwtValidator:   jwtValidator,
		maxUploadBytes: maxUploadBytes,
		readiness:      readiness,
	}
}

// Register mounts the routes. Only the probes are public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/bulk-check", h.handleUpload)
		r.Get("/bulk-check/template", h.handleTemplate)
		r.Get("/bulk-check/status", h.handleStatus)
		r.Get("/bulk-check/history", h.handleHistory)
		r.Get("/bulk-check/{id}/status", h.handleStatus)
		r.Get("/bulk-check/{id}/results", h.handleResults)
		r.Get("/bulk-check/{id}/download", h.handleDownload)
		r.Delete("/bulk-check/{id}", h.handleDelete)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	failed := []string{}
	for _, rc := range h.readiness {
		if err := rc.Check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "dependency", rc.Name, "error", err)
			failed = append(failed, rc.Name)
		}
	}
	if len(failed) > 0 {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	limit := h.maxUploadBytes + multipartHeadroom
	if r.ContentLength > limit {
		httputil.WriteError(w, service.FileTooLarge(h.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	upload := service.Upload{}

	file, header, err := r.FormFile(uploadField)
	switch {
	case err == nil:
		defer file.Close()
		upload = service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case isTooLarge(err):
		httputil.WriteError(w, service.FileTooLarge(h.maxUploadBytes))
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.logger.WarnContext(ctx, "invalid upload request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, service.MessageNoFile))
		return
	}

	result, err := h.service.Upload(ctx, upload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if result.Outcome == service.UploadDataIssue {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, toDataIssueResponse(result))
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, uploadSubmittedResponse{
		Filename:        result.Filename,
		NumberOfRecords: result.NumberOfRecords,
		BulkCheckID:     result.BulkCheckID,
		StatusURL:       result.StatusURL,
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		BulkCheckID: result.BulkCheckID,
		State:       string(result.State),
		Complete:    result.Complete,
		Completed:   result.Completed,
		Total:       result.Total,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	pageSize := queryInt(r, "page_size")

	result, err := h.service.History(r.Context(), page, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(result))
}

// queryInt returns 0 for absent or malformed values; the service applies defaults.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	rows, err := h.service.Results(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResultsResponse(jobID, rows))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	result := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTemplate(w http.ResponseWriter, _ *http.Request) {
	tpl := h.service.Template()
	httputil.WriteJSON(w, http.StatusOK, templateResponse{
		DocumentTemplatePath: tpl.DocumentTemplatePath,
		Header:               tpl.Header,
		FieldDescriptions:    tpl.FieldDescriptions,
	})
}

// writeError renders not_found with a hint to the history listing.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, notFoundResponse{
			Error:            string(dErrors.CodeNotFound),
			ErrorDescription: dErrors.MessageOf(err),
			Redirect:         HistoryRedirect,
		})
		return
	}
	httputil.WriteError(w, err)
}
