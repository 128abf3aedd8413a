package storage

import (
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// Repository is the persistence interface for reconciliation state.
// Implementations: Storage (SQLite), MockRepository (in-memory, tests).
type Repository interface {
	// Match state, keyed by statement-line fingerprint.
	LoadMatchState() (map[string]MatchState, error)
	SaveMatchState(lines []*statement.Line) error

	// Benner document store.
	GetDocument(id string) (*benner.Document, error)
	UpsertDocuments(docs []*benner.Document, policy benner.DowngradePolicy) error
	ListDocuments(status benner.Status) ([]*benner.Document, error)

	// Run history.
	SaveRun(run *ReconRun) error
	GetRun(id string) (*ReconRun, error)
	ListRuns(limit int) ([]*ReconRun, error)

	Close() error
}

// MergeMatchState attaches persisted state to freshly ingested lines by
// fingerprint lookup. Lines with no persisted entry keep their
// ingestion-time default (unmatched). This is what makes previously
// confirmed matches survive re-import.
func MergeMatchState(lines []*statement.Line, state map[string]MatchState) {
	for _, l := range lines {
		if st, ok := state[l.Fingerprint]; ok && st.Matched {
			l.SetMatched(st.MatchedAt)
		}
	}
}
