package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mdxmend/internal/mendservice"
	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/sse"
)

const defaultRunLimit = 20

// Handler holds API route handlers.
type Handler struct {
	svc    *mendservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *mendservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// docName extracts the {name} URL parameter, undoing percent-encoding.
func docName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListFindings handles GET /api/findings.
//
//	@Summary		Validate every document in the directory
//	@Tags			findings
//	@Produce		json
//	@Success		200	{object}	FindingsResponse
//	@Security		BearerAuth
//	@Router			/findings [get]
func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.Check(r.Context())
	if err != nil {
		slog.Error("check failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, newFindingsResponse(findings))
}

// DocumentFindings handles GET /api/findings/{name}.
//
//	@Summary		Validate one document
//	@Tags			findings
//	@Produce		json
//	@Param			name	path		string	true	"Document file name"
//	@Success		200		{object}	FindingsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/findings/{name} [get]
func (h *Handler) DocumentFindings(w http.ResponseWriter, r *http.Request) {
	name := docName(r)
	findings, err := h.svc.CheckDocument(r.Context(), name)
	if err != nil {
		writeServiceError(w, "check document", err)
		return
	}
	writeJSON(w, http.StatusOK, newFindingsResponse(findings))
}

// Repair handles POST /api/repair. The body is optional.
//
//	@Summary		Run the title and syntax passes over the directory
//	@Tags			repair
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RepairRequest	false	"Repair options"
//	@Success		200		{object}	models.Run
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/repair [post]
func (h *Handler) Repair(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	findings, err := h.svc.Check(r.Context())
	if err != nil {
		slog.Error("check failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	run, err := h.svc.Repair(r.Context(), mendservice.RepairOptions{
		DryRun:     req.DryRun,
		SkipTitles: req.SkipTitles,
		SkipSyntax: req.SkipSyntax,
		Findings:   len(findings),
	})
	if err != nil {
		slog.Error("repair failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.broker != nil {
		h.broker.PublishRun(*run)
	}
	writeJSON(w, http.StatusOK, run)
}

// FixText handles POST /api/fix.
//
//	@Summary		Repair a snippet of text without touching the directory
//	@Tags			repair
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FixRequest	true	"Text to repair"
//	@Success		200		{object}	FixResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/fix [post]
func (h *Handler) FixText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	fixed := mendservice.FixText(req.Content)
	writeJSON(w, http.StatusOK, FixResponse{Content: fixed, Changed: fixed != req.Content})
}

// ListRuns handles GET /api/runs.
//
//	@Summary		List recorded repair runs, newest first
//	@Tags			ledger
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of runs"
//	@Success		200		{object}	RunListResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs, err := h.svc.Runs(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{id}.
//
//	@Summary		Get one run with its per-document outcomes
//	@Tags			ledger
//	@Produce		json
//	@Param			id	path		int	true	"Run ID"
//	@Success		200	{object}	models.Run
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DocumentHistory handles GET /api/documents/{name}/history.
//
//	@Summary		List recorded outcomes for one document
//	@Tags			ledger
//	@Produce		json
//	@Param			name	path		string	true	"Document file name"
//	@Param			limit	query		int		false	"Maximum number of outcomes"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/documents/{name}/history [get]
func (h *Handler) DocumentHistory(w http.ResponseWriter, r *http.Request) {
	name := docName(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultRunLimit
	}
	outcomes, err := h.svc.DocumentHistory(r.Context(), name, limit)
	if err != nil {
		writeServiceError(w, "document history", err)
		return
	}
	if outcomes == nil {
		outcomes = []models.Outcome{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Document: name, Outcomes: outcomes})
}
