package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financeiro-pro/reconcile-backend/internal/api/dto"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

// DocumentsHandler handles Benner document store requests.
type DocumentsHandler struct {
	*Base
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(repo storage.Repository) *DocumentsHandler {
	return &DocumentsHandler{Base: NewBase(repo)}
}

// List handles GET /api/documents - returns stored documents, optionally
// filtered by ?status=pendente|conciliado.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	var status benner.Status
	switch r.URL.Query().Get("status") {
	case "":
		status = ""
	case "pendente":
		status = benner.StatusPending
	case "conciliado":
		status = benner.StatusReconciled
	default:
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("status must be pendente or conciliado"))
		return
	}

	docs, err := h.repo.ListDocuments(status)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.DocumentListResponse{
		Documents: make([]dto.DocumentResponse, 0, len(docs)),
		Count:     len(docs),
	}
	for _, doc := range docs {
		response.Documents = append(response.Documents, toDocumentResponse(doc))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/documents/{id} - returns one stored document.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("document ID is required"))
		return
	}

	doc, err := h.repo.GetDocument(id)
	if err == sql.ErrNoRows {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("document"))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func toDocumentResponse(doc *benner.Document) dto.DocumentResponse {
	out := dto.DocumentResponse{
		ID:      doc.ID,
		Name:    doc.Name,
		TaxID:   doc.TaxID,
		DocType: doc.DocType,
		Amount:  doc.Amount.StringFixed(2),
		Status:  string(doc.Status),
	}
	if !doc.DueDate.IsZero() {
		out.DueDate = doc.DueDate.Format("2006-01-02")
	}
	if doc.SettlementDate != nil {
		out.SettlementDate = doc.SettlementDate.Format("2006-01-02")
	}
	return out
}
