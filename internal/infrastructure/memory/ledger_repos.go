package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.StockBalanceRepository  = (*StockBalanceRepo)(nil)
	_ repository.StockTransferRepository = (*StockTransferRepo)(nil)
)

// StockMovementRepo ledger append-only sobre el store en memoria.
type StockMovementRepo struct {
	s *Store
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

// Create agrega un movimiento asignando la secuencia de inserción.
func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMovementSkip > 0 {
		r.s.failMovementSkip--
	} else if r.s.failMovementCreates > 0 {
		r.s.failMovementCreates--
		return fmt.Errorf("create stock movement: %w", domain.ErrPersistence)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.seq++
	m.Seq = r.s.seq
	r.s.movements = append(r.s.movements, *m)
	return nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.movements {
		if r.s.movements[i].ID == id {
			m := r.s.movements[i]
			return &m, nil
		}
	}
	return nil, nil
}

// List lista movimientos filtrados en orden por fecha ascendente, desempate
// por secuencia.
func (r *StockMovementRepo) List(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []entity.StockMovement
	for _, m := range r.s.movements {
		if matchesFilter(m, filter) {
			matched = append(matched, m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.Before(matched[j].OccurredAt)
		}
		return matched[i].Seq < matched[j].Seq
	})
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	list := make([]*entity.StockMovement, 0, len(matched))
	for i := range matched {
		m := matched[i]
		list = append(list, &m)
	}
	return list, nil
}

// ExistsByItem indica si algún movimiento referencia el artículo.
func (r *StockMovementRepo) ExistsByItem(_ context.Context, itemID string) (bool, error) {
	return r.exists(func(m entity.StockMovement) bool { return m.ItemID == itemID })
}

// ExistsByLocation indica si algún movimiento referencia la ubicación.
func (r *StockMovementRepo) ExistsByLocation(_ context.Context, locationID string) (bool, error) {
	return r.exists(func(m entity.StockMovement) bool { return m.LocationID == locationID })
}

// ExistsByBatch indica si algún movimiento referencia el lote.
func (r *StockMovementRepo) ExistsByBatch(_ context.Context, batchID string) (bool, error) {
	return r.exists(func(m entity.StockMovement) bool { return m.BatchID == batchID })
}

func (r *StockMovementRepo) exists(match func(entity.StockMovement) bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if match(m) {
			return true, nil
		}
	}
	return false, nil
}

func matchesFilter(m entity.StockMovement, f repository.MovementFilter) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && m.LocationID != f.LocationID {
		return false
	}
	if f.BatchID != "" && m.BatchID != f.BatchID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.From != nil && m.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.OccurredAt.After(*f.To) {
		return false
	}
	return true
}

// StockBalanceRepo proyección de saldos sobre el store en memoria.
type StockBalanceRepo struct {
	s *Store
}

// NewStockBalanceRepository construye el adaptador.
func NewStockBalanceRepository(s *Store) *StockBalanceRepo {
	return &StockBalanceRepo{s: s}
}

// Get obtiene el saldo de la clave. Clave ausente = fila en cero.
func (r *StockBalanceRepo) Get(_ context.Context, key ledger.BalanceKey) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.getLocked(key), nil
}

// GetForUpdate igual que Get: el TxRunner en memoria serializa las unidades
// de trabajo, así que no hay fila que bloquear.
func (r *StockBalanceRepo) GetForUpdate(_ context.Context, key ledger.BalanceKey) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.getLocked(key), nil
}

func (r *StockBalanceRepo) getLocked(key ledger.BalanceKey) *entity.StockBalance {
	if b, ok := r.s.balances[key]; ok {
		copied := b
		return &copied
	}
	return &entity.StockBalance{
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		BatchID:    key.BatchID,
		Quantity:   decimal.Zero,
	}
}

// Upsert inserta o actualiza el saldo de la clave.
func (r *StockBalanceRepo) Upsert(_ context.Context, balance *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := ledger.BalanceKey{ItemID: balance.ItemID, LocationID: balance.LocationID, BatchID: balance.BatchID}
	r.s.balances[key] = *balance
	return nil
}

// List lista saldos filtrados, ordenados por clave, paginado.
func (r *StockBalanceRepo) List(_ context.Context, filter repository.BalanceFilter, limit, offset int) ([]*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []entity.StockBalance
	for key, b := range r.s.balances {
		if filter.ItemID != "" && key.ItemID != filter.ItemID {
			continue
		}
		if filter.LocationID != "" && key.LocationID != filter.LocationID {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		a := ledger.BalanceKey{ItemID: matched[i].ItemID, LocationID: matched[i].LocationID, BatchID: matched[i].BatchID}
		b := ledger.BalanceKey{ItemID: matched[j].ItemID, LocationID: matched[j].LocationID, BatchID: matched[j].BatchID}
		return a.Less(b)
	})
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	list := make([]*entity.StockBalance, 0, len(matched))
	for i := range matched {
		b := matched[i]
		list = append(list, &b)
	}
	return list, nil
}

// RebuildFromMovements recalcula los saldos del alcance como suma de los
// movimientos que tocan cada clave. Idempotente.
func (r *StockBalanceRepo) RebuildFromMovements(_ context.Context, itemID, locationID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	sums := map[ledger.BalanceKey]decimal.Decimal{}
	for _, m := range r.s.movements {
		if itemID != "" && m.ItemID != itemID {
			continue
		}
		if locationID != "" && m.LocationID != locationID {
			continue
		}
		key := ledger.BalanceKey{ItemID: m.ItemID, LocationID: m.LocationID, BatchID: m.BatchID}
		sums[key] = sums[key].Add(m.Quantity)
	}
	for key, qty := range sums {
		r.s.balances[key] = entity.StockBalance{
			ItemID:     key.ItemID,
			LocationID: key.LocationID,
			BatchID:    key.BatchID,
			Quantity:   qty,
			UpdatedAt:  now,
		}
	}
	return nil
}

// StockTransferRepo cabeceras de traslado sobre el store en memoria.
type StockTransferRepo struct {
	s *Store
}

// NewStockTransferRepository construye el adaptador.
func NewStockTransferRepository(s *Store) *StockTransferRepo {
	return &StockTransferRepo{s: s}
}

// Create persiste la cabecera. Idempotency key repetida -> ErrDuplicate.
func (r *StockTransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.IdempotencyKey != "" {
		if _, exists := r.s.transfersByIdem[t.IdempotencyKey]; exists {
			return domain.ErrDuplicate
		}
		r.s.transfersByIdem[t.IdempotencyKey] = t.ID
	}
	r.s.transfers[t.ID] = *t
	return nil
}

// GetByID obtiene una cabecera por ID (nil si no existe).
func (r *StockTransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.transfers[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, nil
}

// GetByIdempotencyKey obtiene una cabecera por idempotency key (nil si no existe).
func (r *StockTransferRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.StockTransfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.transfersByIdem[key]
	if !ok {
		return nil, nil
	}
	if t, ok := r.s.transfers[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, nil
}
