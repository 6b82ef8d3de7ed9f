package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
)

func TestEffect_SignoPorTipo(t *testing.T) {
	ten := decimal.NewFromInt(10)

	cases := []struct {
		name     string
		movType  string
		qty      decimal.Decimal
		expected decimal.Decimal
	}{
		{"receipt suma", entity.MovementTypeRECEIPT, ten, ten},
		{"return suma", entity.MovementTypeRETURN, ten, ten},
		{"transfer-in suma", entity.MovementTypeTRANSFERIN, ten, ten},
		{"issue resta", entity.MovementTypeISSUE, ten, ten.Neg()},
		{"transfer-out resta", entity.MovementTypeTRANSFEROUT, ten, ten.Neg()},
		{"ajuste positivo conserva signo", entity.MovementTypeADJUSTMENT, ten, ten},
		{"ajuste negativo conserva signo", entity.MovementTypeADJUSTMENT, ten.Neg(), ten.Neg()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effect, err := ledger.Effect(tc.movType, tc.qty)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(effect), "efecto esperado %s, obtenido %s", tc.expected, effect)
		})
	}
}

func TestEffect_EntradasInvalidas(t *testing.T) {
	ten := decimal.NewFromInt(10)

	cases := []struct {
		name    string
		movType string
		qty     decimal.Decimal
	}{
		{"tipo desconocido", "SHRINKAGE", ten},
		{"receipt con cero", entity.MovementTypeRECEIPT, decimal.Zero},
		{"receipt negativo", entity.MovementTypeRECEIPT, ten.Neg()},
		{"issue con cero", entity.MovementTypeISSUE, decimal.Zero},
		{"issue negativo (la magnitud debe venir positiva)", entity.MovementTypeISSUE, ten.Neg()},
		{"ajuste con cero", entity.MovementTypeADJUSTMENT, decimal.Zero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Effect(tc.movType, tc.qty)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBalanceKey_OrdenTotal(t *testing.T) {
	a := ledger.BalanceKey{ItemID: "item-1", LocationID: "loc-1", BatchID: ""}
	b := ledger.BalanceKey{ItemID: "item-1", LocationID: "loc-2", BatchID: ""}
	c := ledger.BalanceKey{ItemID: "item-2", LocationID: "loc-1", BatchID: ""}
	d := ledger.BalanceKey{ItemID: "item-1", LocationID: "loc-1", BatchID: "b1"}

	assert.True(t, a.Less(b), "desempata por ubicación")
	assert.True(t, b.Less(c), "el artículo manda sobre la ubicación")
	assert.True(t, a.Less(d), "desempata por lote")
	assert.False(t, b.Less(a), "el orden es antisimétrico")
	assert.False(t, a.Less(a), "una clave no es menor que sí misma")
}
