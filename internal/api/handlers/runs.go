package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/financeiro-pro/reconcile-backend/internal/api/dto"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{Base: NewBase(repo)}
}

// List handles GET /api/runs - returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns one run with full payload.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err == sql.ErrNoRows {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunDetailResponse(run))
}

func toRunResponse(run *storage.ReconRun) dto.RunResponse {
	return dto.RunResponse{
		ID:                    run.ID,
		StartedAt:             run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:            run.FinishedAt.UTC().Format(time.RFC3339),
		StatementFile:         run.StatementFile,
		BennerFile:            run.BennerFile,
		DryRun:                run.DryRun,
		LineCount:             run.LineCount,
		DocumentCount:         run.DocumentCount,
		MatchedCount:          run.MatchedCount,
		ResidualLineCount:     run.ResidualLineCount,
		ResidualDocumentCount: run.ResidualDocumentCount,
		SkippedCount:          len(run.Skipped),
		DiagnosticCount:       len(run.Diagnostics),
	}
}

func toRunDetailResponse(run *storage.ReconRun) dto.RunDetailResponse {
	detail := dto.RunDetailResponse{
		RunResponse: toRunResponse(run),
		Records:     make([]dto.MatchRecordResponse, 0, len(run.Records)),
		Skipped:     make([]dto.SkippedDocumentResponse, 0, len(run.Skipped)),
		Diagnostics: make([]dto.DiagnosticResponse, 0, len(run.Diagnostics)),
	}
	for _, rec := range run.Records {
		detail.Records = append(detail.Records, dto.MatchRecordResponse{
			StatementFingerprint: rec.StatementFingerprint,
			DocumentID:           rec.DocumentID,
			Score:                rec.Score,
			ValueDelta:           rec.ValueDelta.StringFixed(2),
		})
	}
	for _, skip := range run.Skipped {
		detail.Skipped = append(detail.Skipped, dto.SkippedDocumentResponse{
			DocumentID: skip.DocumentID,
			Reason:     skip.Reason,
		})
	}
	for _, diag := range run.Diagnostics {
		detail.Diagnostics = append(detail.Diagnostics, dto.DiagnosticResponse{
			Row:     diag.Row,
			Field:   diag.Field,
			Value:   diag.Value,
			Problem: diag.Problem,
		})
	}
	return detail
}
