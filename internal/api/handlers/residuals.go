package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financeiro-pro/reconcile-backend/internal/api/dto"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

// ResidualsHandler reports the leftover pools of a past run.
type ResidualsHandler struct {
	*Base
}

// NewResidualsHandler creates a new residuals handler.
func NewResidualsHandler(repo storage.Repository) *ResidualsHandler {
	return &ResidualsHandler{Base: NewBase(repo)}
}

// Get handles GET /api/residuals/{runID} - returns the unmatched
// statement fingerprints and hydrated residual documents of one run.
func (h *ResidualsHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(runID)
	if err == sql.ErrNoRows {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ResidualsResponse{
		RunID:            run.ID,
		LineFingerprints: run.ResidualLines,
		Documents:        make([]dto.DocumentResponse, 0, len(run.ResidualDocuments)),
		LineCount:        run.ResidualLineCount,
		DocumentCount:    run.ResidualDocumentCount,
	}
	if response.LineFingerprints == nil {
		response.LineFingerprints = []string{}
	}

	// Documents may have been reconciled or re-imported since the run;
	// the store holds their current state.
	for _, id := range run.ResidualDocuments {
		doc, err := h.repo.GetDocument(id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
			return
		}
		response.Documents = append(response.Documents, toDocumentResponse(doc))
	}

	h.WriteJSON(w, http.StatusOK, response)
}
