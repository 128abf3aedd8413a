package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financeiro-pro/reconcile-backend/internal/api/dto"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

// StatsHandler handles aggregate statistics requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{Base: NewBase(repo)}
}

// Get handles GET /api/stats - counts and totals over the document
// store plus the most recent run.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	docs, err := h.repo.ListDocuments("")
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	var reconciledCount, pendingCount int
	var reconciledTotal, pendingTotal decimal.Decimal
	for _, doc := range docs {
		switch doc.Status {
		case benner.StatusReconciled:
			reconciledCount++
			reconciledTotal = reconciledTotal.Add(doc.Amount)
		case benner.StatusPending:
			pendingCount++
			pendingTotal = pendingTotal.Add(doc.Amount)
		}
	}

	response := dto.StatsResponse{
		TotalDocuments:  len(docs),
		ReconciledCount: reconciledCount,
		PendingCount:    pendingCount,
		ReconciledTotal: normalize.FormatAmount(reconciledTotal),
		PendingTotal:    normalize.FormatAmount(pendingTotal),
	}

	runs, err := h.repo.ListRuns(0)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	response.RunCount = len(runs)
	if len(runs) > 0 {
		last := runs[0]
		response.LastRunID = last.ID
		response.LastRunAt = last.FinishedAt.UTC().Format(time.RFC3339)
		response.LastRunDry = last.DryRun
	}

	h.WriteJSON(w, http.StatusOK, response)
}
