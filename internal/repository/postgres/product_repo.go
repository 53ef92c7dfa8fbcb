package postgres

import (
	"context"
	"errors"

	"soukly-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := q(ctx, r.db).QueryRow(ctx, `
		SELECT id, supplier_id, name, selling_price, supplier_cost, active
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SupplierID, &p.Name, &p.SellingPrice, &p.SupplierCost, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
