package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/financeiro-pro/reconcile-backend/internal/application/recon"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

func testSummary() *recon.Summary {
	matchedLine := &statement.Line{
		Date:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("-483.75"),
		RawDescription: "PIX ENVIO JOAO DA SILVA",
		Bank:           "ITAU",
		Fingerprint:    "fp-1",
	}
	residualLine := &statement.Line{
		Date:           time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("-39.90"),
		RawDescription: "TARIFA PACOTE SERVICOS",
		Bank:           "ITAU",
		Fingerprint:    "fp-2",
	}
	matchedDoc := &benner.Document{
		ID:     "1001",
		Name:   "JOAO DA SILVA",
		Amount: decimal.RequireFromString("483.71"),
	}
	residualDoc := &benner.Document{
		ID:      "1003",
		Name:    "FORNECEDOR SEM MOVIMENTO",
		TaxID:   "12.345.678/0001-00",
		DocType: "NF",
		DueDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("777.77"),
	}
	return &recon.Summary{
		RunID:     "run-1",
		Lines:     []*statement.Line{matchedLine, residualLine},
		Documents: []*benner.Document{matchedDoc, residualDoc},
		Records: []matcher.Record{{
			StatementFingerprint: "fp-1",
			DocumentID:           "1001",
			Score:                matcher.ScoreUniqueValue,
			ValueDelta:           decimal.RequireFromString("0.04"),
		}},
		ResidualLines:     []*statement.Line{residualLine},
		ResidualDocuments: []*benner.Document{residualDoc},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite_CSV(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "relatorio.csv")

	require.NoError(t, Write(base, testSummary()))

	matched := readCSV(t, filepath.Join(dir, "relatorio_conciliados.csv"))
	require.Len(t, matched, 2)
	assert.Equal(t, matchedHeader, matched[0])
	assert.Equal(t, []string{
		"10/03/2025", "PIX ENVIO JOAO DA SILVA", "ITAU", "-R$ 483,75",
		"1001", "JOAO DA SILVA", "R$ 483,71", "valor unico", "R$ 0,04",
	}, matched[1])

	lines := readCSV(t, filepath.Join(dir, "relatorio_residual_extrato.csv"))
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"15/03/2025", "TARIFA PACOTE SERVICOS", "ITAU", "-R$ 39,90"}, lines[1])

	docs := readCSV(t, filepath.Join(dir, "relatorio_residual_benner.csv"))
	require.Len(t, docs, 2)
	assert.Equal(t, []string{
		"1003", "FORNECEDOR SEM MOVIMENTO", "12.345.678/0001-00", "NF",
		"20/03/2025", "R$ 777,77",
	}, docs[1])
}

func TestWrite_XLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relatorio.xlsx")

	require.NoError(t, Write(path, testSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Conciliados", "Residual Extrato", "Residual Benner", "Resumo"},
		f.GetSheetList())

	rows, err := f.GetRows("Conciliados")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1001", rows[1][4])
	assert.Equal(t, "valor unico", rows[1][7])

	resumo, err := f.GetRows("Resumo")
	require.NoError(t, err)
	require.Len(t, resumo, 7)
	assert.Equal(t, []string{"Linhas conciliadas", "1"}, resumo[1])
	assert.Equal(t, []string{"Valor conciliado", "R$ 483,75"}, resumo[2])
	assert.Equal(t, []string{"Valor residual Benner", "R$ 777,77"}, resumo[6])
}

func TestWrite_UnsupportedExtension(t *testing.T) {
	err := Write("saida.pdf", testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestMatchedRows_SkipsDanglingReferences(t *testing.T) {
	s := testSummary()
	s.Records = append(s.Records, matcher.Record{
		StatementFingerprint: "missing", DocumentID: "missing",
	})
	assert.Len(t, MatchedRows(s), 1)
}
