package recon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const statementCSV = `DATA,HISTORICO,VALOR,BANCO
10/03/2025,PIX ENVIO JOAO DA SILVA,"-483,75",ITAU
12/03/2025,TED ACME COMERCIO LTDA,"-1.200,00",ITAU
15/03/2025,TARIFA PACOTE SERVICOS,"-39,90",ITAU
`

const bennerCSV = `NUMERO,NOME,DATA DE VENCIMENTO,DATA BAIXA,VALOR TOTAL
1001,JOAO DA SILVA,10/03/2025,,"483,71"
1002,ACME COMERCIO LTDA,12/03/2025,,"1.200,00"
1003,FORNECEDOR SEM MOVIMENTO,20/03/2025,,"777,77"
`

func newTestOrchestrator(repo storage.Repository) *Orchestrator {
	return NewOrchestrator(repo, matcher.DefaultConfig(), benner.DowngradePreserve, nil)
}

func TestOrchestrator_Run(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", statementCSV)
	bennerPath := writeFile(t, dir, "benner.csv", bennerCSV)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	summary, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath})
	require.NoError(t, err)

	require.Len(t, summary.Records, 2)
	matchedDocs := map[string]bool{}
	for _, rec := range summary.Records {
		matchedDocs[rec.DocumentID] = true
	}
	assert.True(t, matchedDocs["1001"])
	assert.True(t, matchedDocs["1002"])

	// Residual completeness: matched + residual == pool, no overlap.
	assert.Len(t, summary.ResidualLines, 1)
	assert.Len(t, summary.ResidualDocuments, 1)
	assert.Equal(t, "1003", summary.ResidualDocuments[0].ID)

	// Persisted state reflects the two accepted lines.
	state, err := repo.LoadMatchState()
	require.NoError(t, err)
	assert.Len(t, state, 2)

	// Both documents flipped to Reconciled in the store.
	doc, err := repo.GetDocument("1001")
	require.NoError(t, err)
	assert.Equal(t, benner.StatusReconciled, doc.Status)
	require.NotNil(t, doc.SettlementDate)

	// Run record saved.
	run, err := repo.GetRun(summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.MatchedCount)
	assert.Equal(t, 3, run.LineCount)
	assert.Equal(t, 3, run.DocumentCount)
}

func TestOrchestrator_IdempotentRerun(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", statementCSV)
	bennerPath := writeFile(t, dir, "benner.csv", bennerCSV)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	first, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath})
	require.NoError(t, err)
	require.Len(t, first.Records, 2)

	firstState, err := repo.LoadMatchState()
	require.NoError(t, err)

	// Re-importing the same files: previously confirmed matches are
	// attached from persisted state, nothing is re-matched.
	second, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath})
	require.NoError(t, err)
	assert.Empty(t, second.Records)

	matched := 0
	for _, l := range second.Lines {
		if l.Matched {
			matched++
			require.NotNil(t, l.MatchedAt)
			assert.True(t, l.MatchedAt.Equal(firstState[l.Fingerprint].MatchedAt),
				"matched_at must survive re-import unchanged")
		}
	}
	assert.Equal(t, 2, matched)
}

func TestOrchestrator_DryRunPersistsNothing(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", statementCSV)
	bennerPath := writeFile(t, dir, "benner.csv", bennerCSV)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	summary, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath, DryRun: true})
	require.NoError(t, err)
	require.Len(t, summary.Records, 2, "dry run still evaluates matches")

	state, err := repo.LoadMatchState()
	require.NoError(t, err)
	assert.Empty(t, state)
	assert.Empty(t, repo.Documents)

	run, err := repo.GetRun(summary.RunID)
	require.NoError(t, err)
	assert.True(t, run.DryRun, "the run record itself is kept, flagged dry")
}

func TestOrchestrator_MonthScope(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", `DATA,HISTORICO,VALOR
10/02/2025,PIX JOAO DA SILVA,"-483,75"
10/03/2025,PIX JOAO DA SILVA,"-483,75"
`)
	bennerPath := writeFile(t, dir, "benner.csv", `NUMERO,NOME,VALOR
1001,JOAO DA SILVA,"483,71"
`)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	summary, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath, MonthScope: "03/2025"})
	require.NoError(t, err)

	require.Len(t, summary.Records, 1)
	require.Len(t, summary.Lines, 2)
	for _, l := range summary.Lines {
		if l.Fingerprint == summary.Records[0].StatementFingerprint {
			assert.Equal(t, "03/2025", l.Date.Format("01/2006"), "february line is out of scope")
		}
	}
}

func TestOrchestrator_RejectsUnrecognizableStatement(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", "COLUNA1,COLUNA2\nfoo,bar\n")
	bennerPath := writeFile(t, dir, "benner.csv", bennerCSV)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	_, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized columns")
}

func TestOrchestrator_DiagnosticsCollected(t *testing.T) {
	dir := t.TempDir()
	stmtPath := writeFile(t, dir, "extrato.csv", `DATA,HISTORICO,VALOR
10/03/2025,PIX JOAO,ilegivel
`)
	bennerPath := writeFile(t, dir, "benner.csv", bennerCSV)

	repo := storage.NewMockRepository()
	o := newTestOrchestrator(repo)

	summary, err := o.Run(Options{StatementPath: stmtPath, BennerPath: bennerPath})
	require.NoError(t, err, "bad cells never abort the batch")
	require.NotEmpty(t, summary.Diagnostics)
	assert.Equal(t, "amount", summary.Diagnostics[0].Field)
}
