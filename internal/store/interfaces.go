package store

import (
	"context"
	"errors"

	"catalog-admin/internal/domain"

	"github.com/shopspring/decimal"
)

// Predefined errors for store operations
var (
	ErrProductNotFound = errors.New("store: product not found")
)

// ProductPatch holds the fields of a partial update. Nil fields are left unchanged.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
}

// Apply returns p with the patch's non-nil fields applied.
func (pp ProductPatch) Apply(p domain.Product) domain.Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	return p
}

// ProductStorer defines the storage operations for products.
type ProductStorer interface {
	ListProducts(ctx context.Context) ([]domain.Product, error) // Insertion order
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
