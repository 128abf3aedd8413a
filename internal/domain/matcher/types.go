package matcher

import (
	"github.com/shopspring/decimal"
)

// SingleCandidatePolicy decides whether a unique value match bypasses the
// similarity threshold.
type SingleCandidatePolicy string

const (
	// AcceptUnconditionally treats a unique value match as strong
	// evidence on its own; no text score is computed.
	AcceptUnconditionally SingleCandidatePolicy = "accept"
	// RequireThreshold demands the configured similarity floor even for
	// a single candidate.
	RequireThreshold SingleCandidatePolicy = "require_threshold"
)

// ScoreUniqueValue is the sentinel score recorded when a match was
// accepted as the only value candidate and no similarity score was
// computed. Real scores are 0-100.
const ScoreUniqueValue = -1

// Config holds matching engine configuration. Both knobs are business
// policy: the tolerance absorbs settlement rounding and fee slippage, the
// threshold is the text-match rigor.
type Config struct {
	// ValueTolerance is the maximum absolute difference between a
	// statement line magnitude and a document value. Inclusive.
	ValueTolerance decimal.Decimal
	// SimilarityThreshold is the minimum token-set score (0-100)
	// accepted when several value candidates compete.
	SimilarityThreshold int
	// SingleCandidate picks the policy for a candidate set of one.
	SingleCandidate SingleCandidatePolicy
}

// DefaultConfig returns the defaults observed in production use.
func DefaultConfig() Config {
	return Config{
		ValueTolerance:      decimal.New(10, -2), // 0.10
		SimilarityThreshold: 70,
		SingleCandidate:     AcceptUnconditionally,
	}
}

// Record is one accepted pairing between a statement line and a document.
type Record struct {
	StatementFingerprint string          `json:"statement_fingerprint"`
	DocumentID           string          `json:"document_id"`
	Score                int             `json:"score"`
	ValueDelta           decimal.Decimal `json:"value_delta"`
}

// SkippedDocument reports a document the engine could not evaluate.
type SkippedDocument struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// Result is the outcome of one matching run.
type Result struct {
	Records       []Record
	ConsumedLines map[string]bool // statement fingerprints
	ConsumedDocs  map[string]bool // document ids
	Skipped       []SkippedDocument
}

// Progress reports fractional progress through the document pool.
type Progress func(done, total int)
