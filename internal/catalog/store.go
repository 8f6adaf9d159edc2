package catalog

import (
	"sort"

	"catalog-admin/internal/domain"
)

// Store holds the full product collection and the filtered view derived from
// it. Every mutator recomputes the view and clamps the cursor before it
// returns, so readers never see a view that disagrees with the criteria.
//
// Store is not safe for concurrent use; its owner serialises access.
type Store struct {
	all      []domain.Product
	visible  []domain.Product
	criteria Criteria
	cursor   Cursor

	generation uint64
}

// NewStore creates an empty store with the given page size.
func NewStore(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	s := &Store{cursor: Cursor{Page: 1, PageSize: pageSize}}
	s.recompute()
	return s
}

// ReplaceAll swaps in a new collection. The page position is kept (clamped).
func (s *Store) ReplaceAll(products []domain.Product) {
	s.all = append([]domain.Product(nil), products...)
	s.recompute()
}

// Insert appends p to the collection.
func (s *Store) Insert(p domain.Product) {
	s.all = append(s.all, p)
	s.recompute()
}

// Replace swaps the product with the given id for p, keeping its position.
// When no product has that id the store is left unchanged and Replace
// returns false; callers get no error for a stale id.
func (s *Store) Replace(id string, p domain.Product) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.all[i] = p
	s.recompute()
	return true
}

// Remove drops the product with the given id. It reports whether one was removed.
func (s *Store) Remove(id string) bool {
	kept := make([]domain.Product, 0, len(s.all))
	for _, p := range s.all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(s.all)
	s.all = kept
	s.recompute()
	return removed
}

// SetCriteria installs new filter criteria and resets the page to 1.
func (s *Store) SetCriteria(c Criteria) {
	s.criteria = c
	s.cursor.Page = 1
	s.recompute()
}

// ChangePage moves to page. Pages outside [1, TotalPages] are rejected and
// leave the cursor untouched.
func (s *Store) ChangePage(page int) error {
	if page < 1 || page > TotalPages(len(s.visible), s.cursor.PageSize) {
		return ErrPageOutOfRange
	}
	s.cursor.Page = page
	return nil
}

// Find returns the product with the given id.
func (s *Store) Find(id string) (domain.Product, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.all[i], true
	}
	return domain.Product{}, false
}

// All returns a copy of the full collection in server order.
func (s *Store) All() []domain.Product {
	return append([]domain.Product(nil), s.all...)
}

// Visible returns a copy of the filtered collection.
func (s *Store) Visible() []domain.Product {
	return append([]domain.Product(nil), s.visible...)
}

func (s *Store) Criteria() Criteria { return s.criteria }

func (s *Store) Cursor() Cursor { return s.cursor }

// Window returns the current page of the visible products.
func (s *Store) Window() Window {
	return Paginate(s.visible, s.cursor)
}

// Categories returns the distinct category labels of the collection, sorted.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{}, len(s.all))
	out := make([]string, 0)
	for _, p := range s.all {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// BeginFetch starts a list fetch and returns its token. Starting another fetch
// supersedes every earlier token.
func (s *Store) BeginFetch() uint64 {
	s.generation++
	return s.generation
}

// CommitFetch installs the result of the fetch identified by token. Results of
// superseded fetches are dropped and CommitFetch returns false.
func (s *Store) CommitFetch(token uint64, products []domain.Product) bool {
	if token != s.generation {
		return false
	}
	s.ReplaceAll(products)
	return true
}

// IsCurrent reports whether token belongs to the most recent fetch.
func (s *Store) IsCurrent(token uint64) bool {
	return token == s.generation
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.all {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) recompute() {
	s.visible = Apply(s.all, s.criteria)
	s.cursor = s.cursor.Clamp(len(s.visible))
}
