package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joyelle/jewel-custody/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item domain.CatalogItem) error {
	const stmt = `
INSERT INTO catalog_items (id, name, type, total_quantity)
VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, stmt, item.ID, item.Name, item.Type, item.TotalQuantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		return wrapStorageErr("create catalog item", err)
	}
	return nil
}

func (r *CatalogRepository) GetItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	const query = `SELECT id, name, type, total_quantity FROM catalog_items WHERE id = $1`
	var item domain.CatalogItem
	err := r.pool.QueryRow(ctx, query, id).Scan(&item.ID, &item.Name, &item.Type, &item.TotalQuantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CatalogItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.CatalogItem{}, domain.ErrItemNotFound
		}
		return domain.CatalogItem{}, wrapStorageErr("get catalog item", err)
	}
	return item, nil
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	const query = `
SELECT id, name, type, total_quantity
FROM catalog_items
ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapStorageErr("list catalog items", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Type, &item.TotalQuantity); err != nil {
			return nil, wrapStorageErr("scan catalog item", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, wrapStorageErr("iterate catalog items", rows.Err())
	}
	return items, nil
}
