package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para artículos.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un artículo nuevo.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, name, unit, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Unit, item.Category, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return persistenceErr("insert item", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID (nil si no existe).
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	query := `
		SELECT id, name, unit, category, created_at, updated_at
		FROM items WHERE id = $1`
	var it entity.Item
	err := r.q.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Unit, &it.Category, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceErr("get item", err)
	}
	return &it, nil
}

// Update actualiza un artículo existente.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, unit = $3, category = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Unit, item.Category, item.UpdatedAt,
	)
	if err != nil {
		return persistenceErr("update item", err)
	}
	return nil
}

// List lista artículos con paginación.
func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT id, name, unit, category, created_at, updated_at
		FROM items ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, persistenceErr("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.Category, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, persistenceErr("scan item", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Delete elimina un artículo por ID. La integridad referencial con el ledger
// la valida el caso de uso antes de llamar aquí.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return persistenceErr("delete item", err)
	}
	return nil
}
