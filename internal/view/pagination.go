package view

// Pagination is the page-control strip under the product list.
type Pagination struct {
	Prev  PageLink
	Next  PageLink
	Items []PageItem
}

// PageLink is a previous/next button.
type PageLink struct {
	Page     int
	Disabled bool
}

// PageItem is either a page number or an ellipsis standing for hidden pages.
type PageItem struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// Paginate builds the controls for page current of total. It shows the first
// and last pages and current±1, and puts an ellipsis wherever shown numbers
// are two or more apart. A single page gets no controls.
func Paginate(current, total int) *Pagination {
	if total <= 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	p := &Pagination{
		Prev: PageLink{Page: current - 1, Disabled: current == 1},
		Next: PageLink{Page: current + 1, Disabled: current == total},
	}

	last := 0
	for n := 1; n <= total; n++ {
		if n != 1 && n != total && (n < current-1 || n > current+1) {
			continue
		}
		if last != 0 && n-last >= 2 {
			p.Items = append(p.Items, PageItem{Ellipsis: true})
		}
		p.Items = append(p.Items, PageItem{Number: n, Current: n == current})
		last = n
	}
	return p
}
