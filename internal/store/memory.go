package store

import (
	"context"
	"sync"

	"catalog-admin/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore implements ProductStorer in process memory. Products are kept in
// insertion order and vanish when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Product
	newID func() string
}

// NewMemoryStore creates an empty MemoryStore that assigns UUIDs.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]domain.Product),
		newID: uuid.NewString,
	}
}

// SampleProducts are the drafts SeedSampleProducts inserts.
func SampleProducts() []domain.ProductDraft {
	return []domain.ProductDraft{
		{
			Name:        "Laptop Dell XPS 13",
			Description: "Laptop ultradelgada de alto rendimiento",
			Price:       decimal.RequireFromString("1299.99"),
			Stock:       15,
			Category:    "Electronics",
		},
		{
			Name:        "Mouse Logitech MX Master 3",
			Description: "Mouse ergonomico inalambrico",
			Price:       decimal.RequireFromString("99.99"),
			Stock:       50,
			Category:    "Accessories",
		},
		{
			Name:        "Teclado Mecanico Keychron K2",
			Description: "Teclado mecanico compacto RGB",
			Price:       decimal.RequireFromString("89.99"),
			Stock:       30,
			Category:    "Accessories",
		},
	}
}

// SeedSampleProducts inserts the sample catalog and returns how many products were added.
func (s *MemoryStore) SeedSampleProducts(ctx context.Context) (int, error) {
	drafts := SampleProducts()
	for _, d := range drafts {
		if _, err := s.CreateProduct(ctx, d); err != nil {
			return 0, err
		}
	}
	return len(drafts), nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.byID[id])
	}
	return products, nil
}

func (s *MemoryStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := draft.WithID(s.newID())
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return &p, nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	updated := patch.Apply(current)
	s.byID[id] = updated
	return &updated, nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
