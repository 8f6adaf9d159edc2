package catalog

import (
	"errors"

	"catalog-admin/internal/domain"
)

// DefaultPageSize matches the number of rows the dashboard shows per page.
const DefaultPageSize = 10

// ErrPageOutOfRange is returned when a page change falls outside [1, TotalPages].
var ErrPageOutOfRange = errors.New("catalog: page out of range")

// Cursor is the pagination position.
type Cursor struct {
	Page     int
	PageSize int
}

// Window is one page of a product list.
type Window struct {
	Items      []domain.Product
	Page       int
	Start      int // 1-based, inclusive; 0 when Total is 0
	End        int // 1-based, inclusive; never above Total
	Total      int
	TotalPages int
}

// TotalPages returns max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp returns c with Page limited to the valid range for count items.
func (c Cursor) Clamp(count int) Cursor {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if last := TotalPages(count, c.PageSize); c.Page > last {
		c.Page = last
	}
	return c
}

// Paginate cuts the page selected by cursor out of items.
func Paginate(items []domain.Product, cursor Cursor) Window {
	cursor = cursor.Clamp(len(items))
	total := len(items)

	offset := (cursor.Page - 1) * cursor.PageSize
	end := offset + cursor.PageSize
	if end > total {
		end = total
	}

	w := Window{
		Items:      items[offset:end:end],
		Page:       cursor.Page,
		Total:      total,
		TotalPages: TotalPages(total, cursor.PageSize),
	}
	if total > 0 {
		w.Start = offset + 1
		w.End = end
	}
	return w
}
