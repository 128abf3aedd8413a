package recon

import (
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
	"github.com/financeiro-pro/reconcile-backend/internal/ingest"
)

// Options control one reconciliation run.
type Options struct {
	StatementPath string
	BennerPath    string

	// DryRun evaluates matches without persisting anything.
	DryRun bool

	// MonthScope limits the statement pool to one month ("03/2025").
	// Empty means no filter.
	MonthScope string
	// BankScope limits the statement pool to one bank label.
	BankScope string

	// Progress, when set, receives fractional progress through the
	// document pool.
	Progress matcher.Progress
}

// Summary is the in-memory result of a run, alongside the persisted
// run record.
type Summary struct {
	RunID string

	Lines     []*statement.Line
	Documents []*benner.Document

	Records []matcher.Record
	Skipped []matcher.SkippedDocument

	ResidualLines     []*statement.Line
	ResidualDocuments []*benner.Document

	Diagnostics []ingest.Diagnostic
}

// MatchedCount returns the number of accepted pairings.
func (s *Summary) MatchedCount() int {
	return len(s.Records)
}
