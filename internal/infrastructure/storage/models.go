package storage

import (
	"time"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/ingest"
)

// MatchState is the persisted reconciliation state of one statement
// line, keyed by fingerprint. Matched implies MatchedAt is set.
type MatchState struct {
	Matched   bool
	MatchedAt time.Time
}

// ReconRun is the persisted record of one reconciliation run.
type ReconRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	StatementFile string `json:"statement_file"`
	BennerFile    string `json:"benner_file"`
	DryRun        bool   `json:"dry_run"`

	LineCount             int `json:"line_count"`
	DocumentCount         int `json:"document_count"`
	MatchedCount          int `json:"matched_count"`
	ResidualLineCount     int `json:"residual_line_count"`
	ResidualDocumentCount int `json:"residual_document_count"`

	Records           []matcher.Record          `json:"records,omitempty"`
	Skipped           []matcher.SkippedDocument `json:"skipped,omitempty"`
	Diagnostics       []ingest.Diagnostic       `json:"diagnostics,omitempty"`
	ResidualLines     []string                  `json:"residual_lines,omitempty"`
	ResidualDocuments []string                  `json:"residual_documents,omitempty"`
}
