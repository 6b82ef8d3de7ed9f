package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// BatchUseCase casos de uso para lotes. La identidad (artículo, número) y la
// cantidad inicial quedan fijas en la creación; solo el vencimiento se edita.
type BatchUseCase struct {
	repo         repository.BatchRepository
	itemRepo     repository.ItemRepository
	movementRepo repository.StockMovementRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	repo repository.BatchRepository,
	itemRepo repository.ItemRepository,
	movementRepo repository.StockMovementRepository,
) *BatchUseCase {
	return &BatchUseCase{repo: repo, itemRepo: itemRepo, movementRepo: movementRepo}
}

// Create registra un lote nuevo. El número de lote es único por artículo
// (ErrDuplicate si se repite) y la cantidad inicial debe ser > 0.
func (uc *BatchUseCase) Create(ctx context.Context, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if in.ItemID == "" || in.BatchNumber == "" || !in.InitialQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	batch := &entity.Batch{
		ID:          uuid.New().String(),
		ItemID:      in.ItemID,
		BatchNumber: in.BatchNumber,
		ExpiryDate:  in.ExpiryDate,
		InitialQty:  in.InitialQty,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// GetByID obtiene un lote por ID.
func (uc *BatchUseCase) GetByID(ctx context.Context, id string) (*dto.BatchResponse, error) {
	batch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return toBatchResponse(batch), nil
}

// Update actualiza la fecha de vencimiento de un lote. expiry_date en null
// la elimina; ningún otro atributo cambia.
func (uc *BatchUseCase) Update(ctx context.Context, id string, in dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	batch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	batch.ExpiryDate = in.ExpiryDate
	if err := uc.repo.Update(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// ListByItem lista lotes de un artículo con paginación.
func (uc *BatchUseCase) ListByItem(ctx context.Context, itemID string, limit, offset int) (*dto.BatchListResponse, error) {
	list, err := uc.repo.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBatchResponse(b))
	}
	return &dto.BatchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un lote. Rechazado con ErrConflict mientras algún movimiento
// del ledger lo referencie.
func (uc *BatchUseCase) Delete(ctx context.Context, id string) error {
	batch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}
	referenced, err := uc.movementRepo.ExistsByBatch(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, id)
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:          b.ID,
		ItemID:      b.ItemID,
		BatchNumber: b.BatchNumber,
		ExpiryDate:  b.ExpiryDate,
		InitialQty:  b.InitialQty,
		CreatedAt:   b.CreatedAt,
	}
}
