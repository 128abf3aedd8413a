package recon

import (
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// Residuals computes the leftover pools after a matching pass: the
// statement lines and documents not consumed by any match record. Pure
// set difference by identity; no business logic.
func Residuals(lines []*statement.Line, docs []*benner.Document, result matcher.Result) ([]*statement.Line, []*benner.Document) {
	var residualLines []*statement.Line
	for _, l := range lines {
		if !result.ConsumedLines[l.Fingerprint] {
			residualLines = append(residualLines, l)
		}
	}

	var residualDocs []*benner.Document
	for _, d := range docs {
		if !result.ConsumedDocs[d.ID] {
			residualDocs = append(residualDocs, d)
		}
	}
	return residualLines, residualDocs
}
