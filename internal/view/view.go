// Package view projects dashboard state into a render tree. Render is a pure
// function: it reads the values it is handed and never touches live state.
package view

import (
	"fmt"

	"catalog-admin/internal/catalog"
	"catalog-admin/internal/domain"

	"github.com/shopspring/decimal"
)

// Theme is the console colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a stored preference to a Theme, defaulting to light.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// NotificationKind selects how a notification is styled.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
	KindInfo    NotificationKind = "info"
)

// Notification is a transient message shown once.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// FormValues are the raw inputs of the product form.
type FormValues struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Category    string
}

// ValuesOf pre-fills the form from p.
func ValuesOf(p domain.Product) FormValues {
	return FormValues{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       fmt.Sprint(p.Stock),
		Category:    p.Category,
	}
}

// Form is an open edit session. ProductID is empty in create mode.
type Form struct {
	ProductID  string
	Values     FormValues
	Errors     map[string]string
	Submitting bool
}

// State is everything Render needs.
type State struct {
	Products      []domain.Product // full collection, server order
	Window        catalog.Window
	Criteria      catalog.Criteria
	Categories    []string
	Form          *Form
	Confirm       *domain.Product
	Detail        *domain.Product
	Notifications []Notification
	Theme         Theme
}

// Page is the render tree of the dashboard.
type Page struct {
	Theme           Theme
	Summary         Summary
	Rows            []Row
	RangeLabel      string
	Pagination      *Pagination // nil when everything fits on one page
	Search          string
	Category        string
	CategoryOptions []Option
	Modal           *Modal
	Confirm         *Confirm
	Detail          *Detail
	Notifications   []Notification
}

// Summary holds the three dashboard tiles.
type Summary struct {
	TotalProducts int
	Categories    int
	AvgStock      string
}

// Row is one product as listed in the table and the card grid.
type Row struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       string
	Stock       int
}

// Option is an entry of the category selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Modal is the create/edit form dialog.
type Modal struct {
	Title      string
	ProductID  string
	Values     FormValues
	Errors     map[string]string
	Submitting bool
	Categories []string
}

// Confirm asks before a product is deleted.
type Confirm struct {
	ProductID string
	Name      string
	Message   string
}

// Detail shows a single product.
type Detail struct {
	ID          string
	Name        string
	Price       string
	Stock       int
	Category    string
	Description string
}

// Render projects s into a Page.
func Render(s State) Page {
	page := Page{
		Theme:           s.Theme,
		Summary:         Summarize(s.Products),
		Rows:            make([]Row, 0, len(s.Window.Items)),
		RangeLabel:      RangeLabel(s.Window),
		Pagination:      Paginate(s.Window.Page, s.Window.TotalPages),
		Search:          s.Criteria.SearchText,
		Category:        s.Criteria.Category,
		CategoryOptions: categoryOptions(s.Categories, s.Criteria.Category),
		Notifications:   append([]Notification(nil), s.Notifications...),
	}
	if page.Theme == "" {
		page.Theme = ThemeLight
	}

	for _, p := range s.Window.Items {
		page.Rows = append(page.Rows, rowOf(p))
	}

	if s.Form != nil {
		page.Modal = modalOf(*s.Form, s.Categories)
	}
	if s.Confirm != nil {
		page.Confirm = &Confirm{
			ProductID: s.Confirm.ID,
			Name:      s.Confirm.Name,
			Message:   "Are you sure you want to delete this product?",
		}
	}
	if s.Detail != nil {
		page.Detail = detailOf(*s.Detail)
	}
	return page
}

// Summarize computes the summary tiles over the whole collection.
func Summarize(products []domain.Product) Summary {
	sum := Summary{TotalProducts: len(products), AvgStock: "0"}

	labels := make(map[string]struct{}, len(products))
	total := int64(0)
	for _, p := range products {
		labels[p.Category] = struct{}{}
		total += int64(p.Stock)
	}
	sum.Categories = len(labels)

	if len(products) > 0 {
		avg := decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(len(products))))
		sum.AvgStock = avg.StringFixed(1)
	}
	return sum
}

// RangeLabel returns the "Showing a-b of n products" caption.
func RangeLabel(w catalog.Window) string {
	return fmt.Sprintf("Showing %d-%d of %d products", w.Start, w.End, w.Total)
}

// FormatPrice renders a price as dollars with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func rowOf(p domain.Product) Row {
	desc := p.Description
	if desc == "" {
		desc = "No description"
	}
	return Row{
		ID:          p.ID,
		Name:        p.Name,
		Description: desc,
		Category:    p.Category,
		Price:       FormatPrice(p.Price),
		Stock:       p.Stock,
	}
}

func detailOf(p domain.Product) *Detail {
	desc := p.Description
	if desc == "" {
		desc = "N/A"
	}
	return &Detail{
		ID:          p.ID,
		Name:        p.Name,
		Price:       FormatPrice(p.Price),
		Stock:       p.Stock,
		Category:    p.Category,
		Description: desc,
	}
}

func modalOf(f Form, categories []string) *Modal {
	m := &Modal{
		Title:      "New Product",
		ProductID:  f.ProductID,
		Values:     f.Values,
		Errors:     make(map[string]string, len(f.Errors)),
		Submitting: f.Submitting,
		Categories: append([]string(nil), categories...),
	}
	if f.ProductID != "" {
		m.Title = "Edit Product"
	}
	for k, v := range f.Errors {
		m.Errors[k] = v
	}
	return m
}

func categoryOptions(categories []string, selected string) []Option {
	opts := make([]Option, 0, len(categories)+1)
	opts = append(opts, Option{Value: "", Label: "All Categories", Selected: selected == ""})
	for _, c := range categories {
		opts = append(opts, Option{Value: c, Label: c, Selected: c == selected})
	}
	return opts
}
