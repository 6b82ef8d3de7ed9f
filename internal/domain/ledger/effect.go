package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Effect calcula el efecto con signo de un movimiento sobre el saldo
// (servicio de dominio, sin estado).
//
// RECEIPT, RETURN y TRANSFER_IN suman; ISSUE y TRANSFER_OUT restan; para
// esos tipos quantity es una magnitud y debe ser > 0. ADJUSTMENT trae su
// propio signo y solo debe ser distinto de cero.
func Effect(movementType string, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch movementType {
	case entity.MovementTypeRECEIPT, entity.MovementTypeRETURN, entity.MovementTypeTRANSFERIN:
		if !quantity.GreaterThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return quantity, nil
	case entity.MovementTypeISSUE, entity.MovementTypeTRANSFEROUT:
		if !quantity.GreaterThan(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return quantity.Neg(), nil
	case entity.MovementTypeADJUSTMENT:
		if quantity.IsZero() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return quantity, nil
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}
}
