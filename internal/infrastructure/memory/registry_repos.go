package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.BatchRepository    = (*BatchRepo)(nil)
)

// ItemRepo registro de artículos sobre el store en memoria.
type ItemRepo struct {
	s *Store
}

// NewItemRepository construye el adaptador.
func NewItemRepository(s *Store) *ItemRepo {
	return &ItemRepo{s: s}
}

// Create persiste un artículo nuevo.
func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID] = *item
	return nil
}

// GetByID obtiene un artículo por ID (nil si no existe).
func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if it, ok := r.s.items[id]; ok {
		copied := it
		return &copied, nil
	}
	return nil, nil
}

// Update actualiza un artículo existente.
func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID] = *item
	return nil
}

// List lista artículos ordenados por nombre con paginación.
func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		all = append(all, it)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageItems(all, limit, offset), nil
}

// Delete elimina un artículo por ID.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

// LocationRepo registro de ubicaciones sobre el store en memoria.
type LocationRepo struct {
	s *Store
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(s *Store) *LocationRepo {
	return &LocationRepo{s: s}
}

// Create persiste una ubicación nueva.
func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locations[location.ID] = *location
	return nil
}

// GetByID obtiene una ubicación por ID (nil si no existe).
func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.locations[id]; ok {
		copied := l
		return &copied, nil
	}
	return nil, nil
}

// Update actualiza una ubicación existente.
func (r *LocationRepo) Update(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locations[location.ID] = *location
	return nil
}

// List lista ubicaciones ordenadas por nombre con paginación.
func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	list := make([]*entity.Location, 0, len(all))
	for i := range all {
		l := all[i]
		list = append(list, &l)
	}
	return list, nil
}

// Delete elimina una ubicación por ID.
func (r *LocationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.locations, id)
	return nil
}

// BatchRepo registro de lotes sobre el store en memoria.
type BatchRepo struct {
	s *Store
}

// NewBatchRepository construye el adaptador.
func NewBatchRepository(s *Store) *BatchRepo {
	return &BatchRepo{s: s}
}

// Create persiste un lote nuevo. (item, número) repetido -> ErrDuplicate.
func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := batch.ItemID + "\x00" + batch.BatchNumber
	if _, exists := r.s.batchKeys[key]; exists {
		return domain.ErrDuplicate
	}
	r.s.batchKeys[key] = batch.ID
	r.s.batches[batch.ID] = *batch
	return nil
}

// GetByID obtiene un lote por ID (nil si no existe).
func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.batches[id]; ok {
		copied := b
		return &copied, nil
	}
	return nil, nil
}

// Update actualiza un lote existente. El número no cambia, así que el índice
// (artículo, número) queda intacto.
func (r *BatchRepo) Update(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.batches[batch.ID] = *batch
	return nil
}

// ListByItem lista lotes de un artículo ordenados por número de lote.
func (r *BatchRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []entity.Batch
	for _, b := range r.s.batches {
		if b.ItemID == itemID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BatchNumber < all[j].BatchNumber })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	list := make([]*entity.Batch, 0, len(all))
	for i := range all {
		b := all[i]
		list = append(list, &b)
	}
	return list, nil
}

// Delete elimina un lote por ID.
func (r *BatchRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.batches[id]; ok {
		delete(r.s.batchKeys, b.ItemID+"\x00"+b.BatchNumber)
		delete(r.s.batches, id)
	}
	return nil
}

func pageItems(all []entity.Item, limit, offset int) []*entity.Item {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	list := make([]*entity.Item, 0, len(all))
	for i := range all {
		it := all[i]
		list = append(list, &it)
	}
	return list
}
