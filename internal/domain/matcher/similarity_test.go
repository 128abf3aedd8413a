package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  int
		max  int
	}{
		{"identical", "JOAO SILVA", "JOAO SILVA", 100, 100},
		{"reordered tokens", "SILVA JOAO", "JOAO SILVA", 100, 100},
		{"shared tokens dominate", "JOAO SILVA", "JOAO DA SILVA LTDA", 100, 100},
		{"partial overlap", "ACME COMERCIO", "ACME SERVICOS", 40, 80},
		{"no overlap", "JOAO SILVA", "SUPERMERCADO QUALQUER", 0, 40},
		{"empty left", "", "JOAO SILVA", 0, 0},
		{"empty right", "JOAO SILVA", "", 0, 0},
		{"both empty", "", "", 0, 0},
		{"duplicate tokens collapse", "JOAO JOAO SILVA", "JOAO SILVA", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
			// symmetric
			assert.Equal(t, got, TokenSetRatio(tt.b, tt.a))
		})
	}
}

func TestTokenSetRatio_Range(t *testing.T) {
	for _, pair := range [][2]string{
		{"A", "B"},
		{"ABC DEF", "DEF ABC GHI"},
		{"1234 FORNECEDOR", "FORNECEDOR 1234 PAGSEGURO"},
	} {
		got := TokenSetRatio(pair[0], pair[1])
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}
