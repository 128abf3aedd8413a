package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at"`
	StatementFile string `json:"statement_file"`
	BennerFile    string `json:"benner_file"`
	DryRun        bool   `json:"dry_run"`

	LineCount             int `json:"line_count"`
	DocumentCount         int `json:"document_count"`
	MatchedCount          int `json:"matched_count"`
	ResidualLineCount     int `json:"residual_line_count"`
	ResidualDocumentCount int `json:"residual_document_count"`
	SkippedCount          int `json:"skipped_count"`
	DiagnosticCount       int `json:"diagnostic_count"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// MatchRecordResponse is one accepted line/document pairing.
type MatchRecordResponse struct {
	StatementFingerprint string `json:"statement_fingerprint"`
	DocumentID           string `json:"document_id"`
	Score                int    `json:"score"`
	ValueDelta           string `json:"value_delta"`
}

// SkippedDocumentResponse reports a document the engine skipped.
type SkippedDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// DiagnosticResponse is one data-quality problem found during ingestion.
type DiagnosticResponse struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Problem string `json:"problem"`
}

// RunDetailResponse is a single run with its full payload.
type RunDetailResponse struct {
	RunResponse

	Records     []MatchRecordResponse     `json:"records"`
	Skipped     []SkippedDocumentResponse `json:"skipped"`
	Diagnostics []DiagnosticResponse      `json:"diagnostics"`
}

// DocumentResponse represents a Benner document in API responses.
type DocumentResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TaxID          string `json:"tax_id,omitempty"`
	DocType        string `json:"doc_type,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	SettlementDate string `json:"settlement_date,omitempty"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
}

// DocumentListResponse is returned when listing documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

// ResidualsResponse reports the leftover pools of one run.
type ResidualsResponse struct {
	RunID string `json:"run_id"`

	LineFingerprints []string           `json:"line_fingerprints"`
	Documents        []DocumentResponse `json:"documents"`

	LineCount     int `json:"line_count"`
	DocumentCount int `json:"document_count"`
}

// StatsResponse is the aggregate view over the document store and run
// history. Money totals carry the display format.
type StatsResponse struct {
	TotalDocuments  int    `json:"total_documents"`
	ReconciledCount int    `json:"reconciled_count"`
	PendingCount    int    `json:"pending_count"`
	ReconciledTotal string `json:"reconciled_total"`
	PendingTotal    string `json:"pending_total"`

	// RunCount counts recent runs, capped by the storage page size.
	RunCount   int    `json:"run_count"`
	LastRunID  string `json:"last_run_id,omitempty"`
	LastRunAt  string `json:"last_run_at,omitempty"`
	LastRunDry bool   `json:"last_run_dry,omitempty"`
}
