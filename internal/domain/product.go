package domain

import "context"

// Product is the minimal read-only view the engine needs: checkout must know
// the owning supplier and freeze the declared supplier cost into the order.
// Catalog CRUD lives elsewhere.
type Product struct {
	ID           string `json:"id"`
	SupplierID   string `json:"supplierId"`
	Name         string `json:"name"`
	SellingPrice int64  `json:"sellingPrice"`
	SupplierCost int64  `json:"supplierCost"`
	Active       bool   `json:"active"`
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}
