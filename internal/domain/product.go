package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The catalog API exchanges prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
// The json tags correspond to the fields exchanged with the catalog API.
type Product struct {
	ID          string          `json:"id" validate:"required"` // Opaque identifier assigned by the backend
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"` // Empty when the backend sends null or omits it
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category"`
}

// ProductDraft is a product payload without a server-assigned identifier,
// sent on create and update.
type ProductDraft struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
}

// Draft returns the editable fields of p.
func (p Product) Draft() ProductDraft {
	return ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
	}
}

// WithID builds the full product the backend would return for d.
func (d ProductDraft) WithID(id string) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    d.Category,
	}
}
