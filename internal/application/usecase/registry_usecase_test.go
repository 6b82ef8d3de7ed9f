package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type registryFixture struct {
	store      *memory.Store
	itemUC     *usecase.ItemUseCase
	locationUC *usecase.LocationUseCase
	batchUC    *usecase.BatchUseCase
	record     *appledger.RecordMovementUseCase
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	store := memory.NewStore()
	itemRepo := memory.NewItemRepository(store)
	locationRepo := memory.NewLocationRepository(store)
	batchRepo := memory.NewBatchRepository(store)
	movementRepo := memory.NewStockMovementRepository(store)
	txRunner := memory.NewTxRunner(store)
	return &registryFixture{
		store:      store,
		itemUC:     usecase.NewItemUseCase(itemRepo, movementRepo),
		locationUC: usecase.NewLocationUseCase(locationRepo, movementRepo),
		batchUC:    usecase.NewBatchUseCase(batchRepo, itemRepo, movementRepo),
		record:     appledger.NewRecordMovementUseCase(txRunner, itemRepo, locationRepo, batchRepo),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Artículos
// ──────────────────────────────────────────────────────────────────────────────

func TestItemUseCase_CicloCompleto(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	created, err := f.itemUC.Create(ctx, dto.CreateItemRequest{
		Name: "Harina de trigo", Unit: "kg", Category: "harinas",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := f.itemUC.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harina de trigo", got.Name)

	newName := "Harina de trigo integral"
	updated, err := f.itemUC.Update(ctx, created.ID, dto.UpdateItemRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "kg", updated.Unit, "los campos no enviados no cambian")

	list, err := f.itemUC.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, f.itemUC.Delete(ctx, created.ID))
	_, err = f.itemUC.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemUseCase_CrearInvalido(t *testing.T) {
	f := newRegistryFixture(t)

	_, err := f.itemUC.Create(context.Background(), dto.CreateItemRequest{Name: "", Unit: "kg"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.itemUC.Create(context.Background(), dto.CreateItemRequest{Name: "Sal", Unit: ""})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un artículo referenciado por el ledger no se puede borrar: la auditoría
// manda.
func TestItemUseCase_BorradoRechazadoConHistorial(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	item, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Azúcar", Unit: "kg"})
	require.NoError(t, err)
	location, err := f.locationUC.Create(ctx, dto.CreateLocationRequest{
		Name: "Tienda Norte", Type: entity.LocationTypeStore,
	})
	require.NoError(t, err)

	_, err = f.record.RecordMovement(ctx, appledger.MovementInputDTO{
		ItemID:     item.ID,
		LocationID: location.ID,
		Type:       entity.MovementTypeRECEIPT,
		Quantity:   decimal.NewFromInt(10),
		Actor:      "tester",
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.itemUC.Delete(ctx, item.ID), domain.ErrConflict,
		"el artículo con historial no se borra")
	require.ErrorIs(t, f.locationUC.Delete(ctx, location.ID), domain.ErrConflict,
		"la ubicación con historial tampoco")

	// Siguen consultables.
	_, err = f.itemUC.GetByID(ctx, item.ID)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestLocationUseCase_TipoInvalido(t *testing.T) {
	f := newRegistryFixture(t)

	_, err := f.locationUC.Create(context.Background(), dto.CreateLocationRequest{
		Name: "Depósito", Type: "WAREHOUSE",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "solo STORE, FACILITY y HUB son tipos válidos")

	created, err := f.locationUC.Create(context.Background(), dto.CreateLocationRequest{
		Name: "Depósito", Type: entity.LocationTypeHub,
	})
	require.NoError(t, err)

	bad := "DEPOT"
	_, err = f.locationUC.Update(context.Background(), created.ID, dto.UpdateLocationRequest{Type: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocationUseCase_CoordenadasOpcionales(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	lat, lon := 4.60971, -74.08175
	created, err := f.locationUC.Create(ctx, dto.CreateLocationRequest{
		Name: "Tienda Centro", Type: entity.LocationTypeStore, Latitude: &lat, Longitude: &lon,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Latitude)
	assert.InDelta(t, lat, *created.Latitude, 1e-9)

	plain, err := f.locationUC.Create(ctx, dto.CreateLocationRequest{
		Name: "Bodega Sur", Type: entity.LocationTypeFacility,
	})
	require.NoError(t, err)
	assert.Nil(t, plain.Latitude, "las coordenadas son opcionales")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchUseCase_NumeroUnicoPorArticulo(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	item, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Café molido", Unit: "kg"})
	require.NoError(t, err)
	other, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Café en grano", Unit: "kg"})
	require.NoError(t, err)

	_, err = f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-100", InitialQty: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// Mismo número en el mismo artículo: duplicado.
	_, err = f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-100", InitialQty: decimal.NewFromInt(30),
	})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	// Mismo número en otro artículo: permitido.
	_, err = f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: other.ID, BatchNumber: "L-100", InitialQty: decimal.NewFromInt(30),
	})
	require.NoError(t, err, "la unicidad del número es por artículo")
}

func TestBatchUseCase_Validaciones(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	item, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Leche UHT", Unit: "unidad"})
	require.NoError(t, err)

	_, err = f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-1", InitialQty: decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "la cantidad inicial debe ser positiva")

	_, err = f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: "no-existe", BatchNumber: "L-1", InitialQty: decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, domain.ErrNotFound, "el lote exige un artículo existente")
}

// El vencimiento es el único atributo editable de un lote: se asigna, se
// corrige y se elimina con null; identidad y cantidad inicial no cambian.
func TestBatchUseCase_ActualizaVencimiento(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	item, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Yogur natural", Unit: "unidad"})
	require.NoError(t, err)
	batch, err := f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-30", InitialQty: decimal.NewFromInt(24),
	})
	require.NoError(t, err)
	require.Nil(t, batch.ExpiryDate)

	expiry := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)
	updated, err := f.batchUC.Update(ctx, batch.ID, dto.UpdateBatchRequest{ExpiryDate: &expiry})
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiryDate)
	assert.True(t, expiry.Equal(*updated.ExpiryDate))
	assert.Equal(t, "L-30", updated.BatchNumber, "la identidad del lote no cambia")
	assert.True(t, updated.InitialQty.Equal(decimal.NewFromInt(24)), "la cantidad inicial tampoco")

	// null elimina el vencimiento.
	cleared, err := f.batchUC.Update(ctx, batch.ID, dto.UpdateBatchRequest{ExpiryDate: nil})
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpiryDate)

	_, err = f.batchUC.Update(ctx, "no-existe", dto.UpdateBatchRequest{ExpiryDate: &expiry})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchUseCase_BorradoRechazadoConHistorial(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	item, err := f.itemUC.Create(ctx, dto.CreateItemRequest{Name: "Atún en lata", Unit: "unidad"})
	require.NoError(t, err)
	location, err := f.locationUC.Create(ctx, dto.CreateLocationRequest{
		Name: "Bodega Central", Type: entity.LocationTypeFacility,
	})
	require.NoError(t, err)
	batch, err := f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-7", InitialQty: decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	_, err = f.record.RecordMovement(ctx, appledger.MovementInputDTO{
		ItemID:     item.ID,
		LocationID: location.ID,
		BatchID:    batch.ID,
		Type:       entity.MovementTypeRECEIPT,
		Quantity:   decimal.NewFromInt(40),
		Actor:      "tester",
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.batchUC.Delete(ctx, batch.ID), domain.ErrConflict)

	// Sin historial sí se puede borrar.
	loose, err := f.batchUC.Create(ctx, dto.CreateBatchRequest{
		ItemID: item.ID, BatchNumber: "L-8", InitialQty: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NoError(t, f.batchUC.Delete(ctx, loose.ID))

	list, err := f.batchUC.ListByItem(ctx, item.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1, "solo el lote con historial sigue registrado")
}
