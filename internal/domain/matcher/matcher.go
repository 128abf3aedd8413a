// Package matcher pairs settled Benner documents with the bank-statement
// lines representing their real-world settlement.
//
// The engine is greedy: documents are visited in input order, each takes
// the best available statement line and never gives it back. This is a
// deliberate simplicity trade-off over optimal bipartite assignment; with
// the batch sizes involved (thousands of rows) first-accepted-wins has
// been good enough in practice.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultConfig())
//	result := engine.Run(lines, documents, nil)
//	for _, rec := range result.Records {
//		// rec.StatementFingerprint paired with rec.DocumentID
//	}
package matcher

import (
	"time"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// Engine matches pending documents against unmatched statement lines.
type Engine struct {
	config Config
	now    func() time.Time
}

// NewEngine creates an engine with the given config.
func NewEngine(config Config) *Engine {
	return &Engine{
		config: config,
		now:    time.Now,
	}
}

// Run executes one matching pass. Lines accepted as matches are marked
// matched in place; their documents flip to Reconciled. Each line and
// each document is consumed at most once. Data-quality problems never
// abort the run; the worst case is an all-residual result.
func (e *Engine) Run(lines []*statement.Line, docs []*benner.Document, progress Progress) Result {
	result := Result{
		ConsumedLines: make(map[string]bool),
		ConsumedDocs:  make(map[string]bool),
	}

	for i, doc := range docs {
		e.matchDocument(doc, lines, &result)
		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	return result
}

func (e *Engine) matchDocument(doc *benner.Document, lines []*statement.Line, result *Result) {
	if doc.Status != benner.StatusPending || result.ConsumedDocs[doc.ID] {
		return
	}
	if doc.ID == "" {
		result.Skipped = append(result.Skipped, SkippedDocument{Reason: "missing document id"})
		return
	}
	if doc.Amount.IsZero() {
		result.Skipped = append(result.Skipped, SkippedDocument{
			DocumentID: doc.ID,
			Reason:     "zero or unparseable amount",
		})
		return
	}

	candidates := e.valueCandidates(doc, lines, result.ConsumedLines)
	if len(candidates) == 0 {
		return
	}

	var chosen *statement.Line
	score := ScoreUniqueValue

	if len(candidates) == 1 && e.config.SingleCandidate == AcceptUnconditionally {
		// A unique value match is strong evidence on its own.
		chosen = candidates[0]
	} else {
		best, bestScore := e.bestBySimilarity(doc, candidates)
		if bestScore < e.config.SimilarityThreshold {
			// Below the rigor floor: leave the document and every
			// candidate unconsumed.
			return
		}
		chosen, score = best, bestScore
	}

	now := e.now()
	chosen.SetMatched(now)
	doc.Reconcile(now)

	result.Records = append(result.Records, Record{
		StatementFingerprint: chosen.Fingerprint,
		DocumentID:           doc.ID,
		Score:                score,
		ValueDelta:           chosen.Amount.Abs().Sub(doc.Amount).Abs(),
	})
	result.ConsumedLines[chosen.Fingerprint] = true
	result.ConsumedDocs[doc.ID] = true
}

// valueCandidates filters the pool to unconsumed, unmatched lines whose
// magnitude is within the tolerance of the document value. The line sign
// encodes debit/credit direction while document values are unsigned, so
// comparison is on magnitude only. The boundary is inclusive.
func (e *Engine) valueCandidates(doc *benner.Document, lines []*statement.Line, consumed map[string]bool) []*statement.Line {
	var out []*statement.Line
	target := doc.Amount.Abs()
	for _, l := range lines {
		if l.Matched || consumed[l.Fingerprint] {
			continue
		}
		if l.Amount.Abs().Sub(target).Abs().LessThanOrEqual(e.config.ValueTolerance) {
			out = append(out, l)
		}
	}
	return out
}

// bestBySimilarity scores every candidate against the document's cleaned
// counterparty text and returns the maximum. Ties break toward the
// earlier line in pool order, which keeps re-runs deterministic.
func (e *Engine) bestBySimilarity(doc *benner.Document, candidates []*statement.Line) (*statement.Line, int) {
	best := candidates[0]
	bestScore := TokenSetRatio(doc.CleanedDescription, best.CleanedDescription)
	for _, c := range candidates[1:] {
		if s := TokenSetRatio(doc.CleanedDescription, c.CleanedDescription); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}
