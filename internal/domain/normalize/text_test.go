package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"strips rail tokens", "PIX ENVIO JOAO DA SILVA", "JOAO DA SILVA"},
		{"strips punctuation", "PGTO *JOAO-SILVA LTDA.", "JOAO SILVA LTDA"},
		{"uppercases", "ted para maria", "PARA MARIA"},
		{"folds accents then strips noise", "TRANSFERÊNCIA CRÉDITO JOSÉ", "JOSE"},
		{"collapses whitespace", "  PAGAMENTO   ACME    SA ", "ACME SA"},
		{"keeps digits", "DOC 123 FORNECEDOR 45", "123 FORNECEDOR 45"},
		{"all noise", "PIX TED DOC", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.raw))
		})
	}
}
