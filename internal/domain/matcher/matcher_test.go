package matcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

var testTime = time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)

func newTestEngine(cfg Config) *Engine {
	e := NewEngine(cfg)
	e.now = func() time.Time { return testTime }
	return e
}

func testLine(fp string, amount string, desc string) *statement.Line {
	return &statement.Line{
		Date:               time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:             decimal.RequireFromString(amount),
		RawDescription:     desc,
		CleanedDescription: normalize.CleanText(desc),
		Bank:               statement.DefaultBank,
		Fingerprint:        fp,
	}
}

func testDoc(id string, amount string, name string) *benner.Document {
	return &benner.Document{
		ID:                 id,
		Name:               name,
		Amount:             decimal.RequireFromString(amount),
		Status:             benner.StatusPending,
		CleanedDescription: normalize.CleanText(name),
	}
}

func TestEngine_SingleCandidateAcceptedRegardlessOfText(t *testing.T) {
	// Document 483.71, one line at |483.75| (delta 0.04 <= 0.10) whose
	// description shares no tokens with the counterparty name.
	engine := newTestEngine(DefaultConfig())
	lines := []*statement.Line{testLine("fp1", "-483.75", "PIX QWERTY ZZZ")}
	docs := []*benner.Document{testDoc("D1", "483.71", "ACME COMERCIO LTDA")}

	result := engine.Run(lines, docs, nil)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "fp1", rec.StatementFingerprint)
	assert.Equal(t, "D1", rec.DocumentID)
	assert.Equal(t, ScoreUniqueValue, rec.Score)
	assert.True(t, rec.ValueDelta.Equal(decimal.RequireFromString("0.04")))

	assert.True(t, lines[0].Matched)
	require.NotNil(t, lines[0].MatchedAt)
	assert.True(t, lines[0].MatchedAt.Equal(testTime))
	assert.Equal(t, benner.StatusReconciled, docs[0].Status)
}

func TestEngine_SingleCandidateRequireThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SingleCandidate = RequireThreshold
	engine := newTestEngine(cfg)

	lines := []*statement.Line{testLine("fp1", "-483.75", "PIX QWERTY ZZZ")}
	docs := []*benner.Document{testDoc("D1", "483.71", "ACME COMERCIO LTDA")}

	result := engine.Run(lines, docs, nil)

	assert.Empty(t, result.Records, "dissimilar single candidate must be rejected under require_threshold")
	assert.False(t, lines[0].Matched)
	assert.Equal(t, benner.StatusPending, docs[0].Status)
}

func TestEngine_MultiCandidatePrefersNameMatch(t *testing.T) {
	// Two value candidates; the name-sharing one wins even though it is
	// not the closer value.
	engine := newTestEngine(DefaultConfig())
	lines := []*statement.Line{
		testLine("fp-noise", "-999.95", "TED SUPERMERCADO QUALQUER"),
		testLine("fp-name", "-1000.05", "PIX JOAO DA SILVA LTDA"),
	}
	docs := []*benner.Document{testDoc("D1", "1000.00", "JOAO SILVA")}

	result := engine.Run(lines, docs, nil)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "fp-name", result.Records[0].StatementFingerprint)
	assert.GreaterOrEqual(t, result.Records[0].Score, DefaultConfig().SimilarityThreshold)
	assert.True(t, result.Records[0].ValueDelta.Equal(decimal.RequireFromString("0.05")))
}

func TestEngine_ThresholdRejection(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	lines := []*statement.Line{
		testLine("fp1", "-1000.00", "AAAA BBBB"),
		testLine("fp2", "-1000.00", "CCCC DDDD"),
	}
	docs := []*benner.Document{testDoc("D1", "1000.00", "JOAO SILVA")}

	result := engine.Run(lines, docs, nil)

	assert.Empty(t, result.Records)
	assert.False(t, lines[0].Matched)
	assert.False(t, lines[1].Matched)
	assert.Equal(t, benner.StatusPending, docs[0].Status, "document stays in residual")
}

func TestEngine_ToleranceBoundary(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	// Exactly epsilon away: accepted.
	lines := []*statement.Line{testLine("fp1", "-100.10", "PIX ALGO")}
	docs := []*benner.Document{testDoc("D1", "100.00", "ALGO")}
	result := engine.Run(lines, docs, nil)
	require.Len(t, result.Records, 1, "boundary is inclusive")

	// One smallest currency unit beyond: rejected.
	lines = []*statement.Line{testLine("fp2", "-100.11", "PIX ALGO")}
	docs = []*benner.Document{testDoc("D2", "100.00", "ALGO")}
	result = engine.Run(lines, docs, nil)
	assert.Empty(t, result.Records)
}

func TestEngine_AtMostOneConsumption(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	lines := []*statement.Line{testLine("fp1", "-50.00", "PIX JOAO SILVA")}
	docs := []*benner.Document{
		testDoc("D1", "50.00", "JOAO SILVA"),
		testDoc("D2", "50.00", "JOAO SILVA"),
	}

	result := engine.Run(lines, docs, nil)

	require.Len(t, result.Records, 1, "one line cannot settle two documents")
	assert.Equal(t, "D1", result.Records[0].DocumentID, "first-accepted-wins in input order")
	assert.Equal(t, benner.StatusPending, docs[1].Status)

	seenLines := map[string]int{}
	seenDocs := map[string]int{}
	for _, rec := range result.Records {
		seenLines[rec.StatementFingerprint]++
		seenDocs[rec.DocumentID]++
	}
	for fp, n := range seenLines {
		assert.Equal(t, 1, n, "fingerprint %s consumed more than once", fp)
	}
	for id, n := range seenDocs {
		assert.Equal(t, 1, n, "document %s consumed more than once", id)
	}
}

func TestEngine_SkipsNonPendingAndBrokenDocuments(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	settled := testDoc("D1", "50.00", "JOAO SILVA")
	settled.Status = benner.StatusReconciled
	zero := testDoc("D2", "0", "MARIA")
	noID := testDoc("", "50.00", "PEDRO")

	lines := []*statement.Line{testLine("fp1", "-50.00", "PIX JOAO SILVA")}
	result := engine.Run(lines, []*benner.Document{settled, zero, noID}, nil)

	assert.Empty(t, result.Records)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "D2", result.Skipped[0].DocumentID)
	assert.Equal(t, "zero or unparseable amount", result.Skipped[0].Reason)
	assert.Equal(t, "missing document id", result.Skipped[1].Reason)
	assert.False(t, lines[0].Matched, "already-reconciled documents do not consume lines")
}

func TestEngine_SkipsAlreadyMatchedLines(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	matched := testLine("fp1", "-50.00", "PIX JOAO SILVA")
	matched.SetMatched(testTime)
	free := testLine("fp2", "-50.03", "PIX JOAO SILVA")

	docs := []*benner.Document{testDoc("D1", "50.00", "JOAO SILVA")}
	result := engine.Run([]*statement.Line{matched, free}, docs, nil)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "fp2", result.Records[0].StatementFingerprint)
}

func TestEngine_ZeroAmountLinesEffectivelyExcluded(t *testing.T) {
	// Lines whose amount degraded to zero only value-match zero-value
	// documents, which the engine skips anyway.
	engine := newTestEngine(DefaultConfig())
	lines := []*statement.Line{testLine("fp1", "0", "LINHA ILEGIVEL")}
	docs := []*benner.Document{testDoc("D1", "250.00", "ACME")}

	result := engine.Run(lines, docs, nil)

	assert.Empty(t, result.Records)
	assert.False(t, lines[0].Matched)
}

func TestEngine_Progress(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	docs := make([]*benner.Document, 5)
	for i := range docs {
		docs[i] = testDoc(fmt.Sprintf("D%d", i), "10.00", "ACME")
	}

	var calls []int
	engine.Run(nil, docs, func(done, total int) {
		assert.Equal(t, 5, total)
		calls = append(calls, done)
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
}
