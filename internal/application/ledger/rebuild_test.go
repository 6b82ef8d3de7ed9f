package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Reconstrucción de la proyección desde el ledger
// ──────────────────────────────────────────────────────────────────────────────

// runHistory genera un historial variado: recepciones, despachos, ajustes y un
// traslado, sobre varias claves.
func runHistory(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	f.receive(t, f.facilityID, 200)
	f.receive(t, f.storeID, 50)

	steps := []ledger.MovementInputDTO{
		{ItemID: f.itemID, LocationID: f.facilityID, Type: entity.MovementTypeISSUE, Quantity: decimal.NewFromInt(30), Actor: "tester"},
		{ItemID: f.itemID, LocationID: f.storeID, Type: entity.MovementTypeRETURN, Quantity: decimal.NewFromInt(5), Actor: "tester"},
		{ItemID: f.itemID, LocationID: f.facilityID, Type: entity.MovementTypeADJUSTMENT, Quantity: decimal.NewFromInt(-7), Actor: "tester"},
		{ItemID: f.itemID, LocationID: f.storeID, BatchID: f.batchID, Type: entity.MovementTypeRECEIPT, Quantity: decimal.NewFromInt(25), Actor: "tester"},
	}
	for _, in := range steps {
		_, err := f.record.RecordMovement(ctx, in)
		require.NoError(t, err)
	}
	_, err := f.transfer.Transfer(ctx, ledger.TransferInputDTO{
		ItemID:         f.itemID,
		FromLocationID: f.facilityID,
		ToLocationID:   f.storeID,
		Quantity:       decimal.NewFromInt(60),
		Actor:          "tester",
	})
	require.NoError(t, err)
}

// allBalances devuelve los saldos actuales indexados por clave.
func allBalances(t *testing.T, f *fixture) map[domledger.BalanceKey]decimal.Decimal {
	t.Helper()
	list, err := f.query.ListBalances(context.Background(), repository.BalanceFilter{}, 1000, 0)
	require.NoError(t, err)
	out := make(map[domledger.BalanceKey]decimal.Decimal, len(list))
	for _, b := range list {
		out[domledger.BalanceKey{ItemID: b.ItemID, LocationID: b.LocationID, BatchID: b.BatchID}] = b.Quantity
	}
	return out
}

// Equivalencia de replay: reconstruir la proyección desde el historial da
// exactamente los mismos saldos que mantuvo la aplicación incremental.
func TestRebuild_EquivalenciaConProyeccionIncremental(t *testing.T) {
	f := newFixture(t)
	runHistory(t, f)

	before := allBalances(t, f)
	require.NotEmpty(t, before)

	require.NoError(t, f.rebuild.Rebuild(context.Background(), "", ""))

	after := allBalances(t, f)
	require.Len(t, after, len(before))
	for key, qty := range before {
		got, ok := after[key]
		require.True(t, ok, "la clave debe sobrevivir la reconstrucción")
		assert.True(t, got.Equal(qty), "replay del ledger = proyección incremental para %v", key)
	}
}

// La reconstrucción es idempotente: correrla dos veces seguidas no cambia nada.
func TestRebuild_Idempotente(t *testing.T) {
	f := newFixture(t)
	runHistory(t, f)
	ctx := context.Background()

	require.NoError(t, f.rebuild.Rebuild(ctx, "", ""))
	first := allBalances(t, f)
	require.NoError(t, f.rebuild.Rebuild(ctx, "", ""))
	second := allBalances(t, f)

	require.Len(t, second, len(first))
	for key, qty := range first {
		assert.True(t, second[key].Equal(qty), "la segunda pasada no debe cambiar %v", key)
	}
}

// Una proyección corrompida a mano vuelve a los valores correctos tras la
// reconstrucción (reparación).
func TestRebuild_ReparaProyeccionCorrupta(t *testing.T) {
	f := newFixture(t)
	runHistory(t, f)
	ctx := context.Background()

	good := allBalances(t, f)

	// Corromper un saldo directamente en la proyección.
	balanceRepo := memory.NewStockBalanceRepository(f.store)
	key := domledger.BalanceKey{ItemID: f.itemID, LocationID: f.storeID, BatchID: ""}
	require.NoError(t, balanceRepo.Upsert(ctx, &entity.StockBalance{
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		BatchID:    key.BatchID,
		Quantity:   decimal.NewFromInt(9999),
	}))

	corrupted, err := f.query.GetBalance(ctx, key.ItemID, key.LocationID, key.BatchID)
	require.NoError(t, err)
	require.True(t, corrupted.Equal(decimal.NewFromInt(9999)))

	require.NoError(t, f.rebuild.Rebuild(ctx, "", ""))

	repaired := allBalances(t, f)
	for k, qty := range good {
		assert.True(t, repaired[k].Equal(qty), "la reconstrucción repara %v desde el historial", k)
	}
}

// El alcance acotado solo recalcula las claves que coinciden con el filtro.
func TestRebuild_AlcanceAcotado(t *testing.T) {
	f := newFixture(t)
	runHistory(t, f)
	ctx := context.Background()

	good := allBalances(t, f)

	// Corromper un saldo de cada ubicación.
	balanceRepo := memory.NewStockBalanceRepository(f.store)
	for _, locationID := range []string{f.facilityID, f.storeID} {
		require.NoError(t, balanceRepo.Upsert(ctx, &entity.StockBalance{
			ItemID:     f.itemID,
			LocationID: locationID,
			Quantity:   decimal.NewFromInt(1234),
		}))
	}

	// Reconstruir solo la bodega: la tienda sigue corrupta.
	require.NoError(t, f.rebuild.Rebuild(ctx, "", f.facilityID))

	facilityQty, err := f.query.GetBalance(ctx, f.itemID, f.facilityID, "")
	require.NoError(t, err)
	assert.True(t, facilityQty.Equal(good[domledger.BalanceKey{ItemID: f.itemID, LocationID: f.facilityID}]),
		"la clave dentro del alcance queda reparada")

	storeQty, err := f.query.GetBalance(ctx, f.itemID, f.storeID, "")
	require.NoError(t, err)
	assert.True(t, storeQty.Equal(decimal.NewFromInt(1234)),
		"la clave fuera del alcance no se toca")
}
