package view

import (
	"fmt"
	"testing"

	"catalog-admin/internal/catalog"
	"catalog-admin/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Product{
			ID:       fmt.Sprint(i),
			Name:     fmt.Sprintf("Product %d", i),
			Price:    decimal.NewFromInt(int64(i)),
			Stock:    i,
			Category: []string{"Tools", "Electronics", "Accessories"}[i%3],
		})
	}
	return out
}

// pageLabels flattens controls into "1 … 4 [5] 6 … 10" style tokens.
func pageLabels(p *Pagination) []string {
	var out []string
	for _, it := range p.Items {
		switch {
		case it.Ellipsis:
			out = append(out, "...")
		case it.Current:
			out = append(out, fmt.Sprintf("[%d]", it.Number))
		default:
			out = append(out, fmt.Sprint(it.Number))
		}
	}
	return out
}

func TestPaginate(t *testing.T) {
	testCases := []struct {
		name    string
		current int
		total   int
		want    []string
	}{
		{"Two pages", 1, 2, []string{"[1]", "2"}},
		{"Middle of ten", 5, 10, []string{"1", "...", "4", "[5]", "6", "...", "10"}},
		{"Near start", 3, 10, []string{"1", "2", "[3]", "4", "...", "10"}},
		{"Single hidden page still elided", 4, 10, []string{"1", "...", "3", "[4]", "5", "...", "10"}},
		{"Last page", 10, 10, []string{"1", "...", "9", "[10]"}},
		{"Three pages no gap", 2, 3, []string{"1", "[2]", "3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Paginate(tc.current, tc.total)
			require.NotNil(t, p)
			assert.Equal(t, tc.want, pageLabels(p))
		})
	}
}

func TestPaginate_SinglePageHasNoControls(t *testing.T) {
	assert.Nil(t, Paginate(1, 1))
	assert.Nil(t, Paginate(1, 0))
}

func TestPaginate_PrevNextDisabledAtEdges(t *testing.T) {
	first := Paginate(1, 3)
	assert.True(t, first.Prev.Disabled)
	assert.False(t, first.Next.Disabled)
	assert.Equal(t, 2, first.Next.Page)

	last := Paginate(3, 3)
	assert.False(t, last.Prev.Disabled)
	assert.True(t, last.Next.Disabled)
	assert.Equal(t, 2, last.Prev.Page)
}

func TestSummarize(t *testing.T) {
	t.Run("Empty collection", func(t *testing.T) {
		s := Summarize(nil)
		assert.Equal(t, Summary{TotalProducts: 0, Categories: 0, AvgStock: "0"}, s)
	})

	t.Run("Mean stock rounded to one decimal", func(t *testing.T) {
		products := []domain.Product{
			{ID: "1", Category: "A", Stock: 1},
			{ID: "2", Category: "B", Stock: 2},
			{ID: "3", Category: "A", Stock: 2},
		}
		s := Summarize(products)
		assert.Equal(t, 3, s.TotalProducts)
		assert.Equal(t, 2, s.Categories)
		assert.Equal(t, "1.7", s.AvgStock)
	})
}

// Scenario A: twelve products, ten per page.
func TestRender_SecondPageOfTwelve(t *testing.T) {
	products := numbered(12)
	window := catalog.Paginate(products, catalog.Cursor{Page: 2, PageSize: 10})

	page := Render(State{Products: products, Window: window})

	require.Len(t, page.Rows, 2)
	assert.Equal(t, "11", page.Rows[0].ID)
	assert.Equal(t, "12", page.Rows[1].ID)
	assert.Equal(t, "Showing 11-12 of 12 products", page.RangeLabel)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, []string{"1", "[2]"}, pageLabels(page.Pagination))
}

func TestRender_RowsAndDefaults(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "Laptop", Price: decimal.RequireFromString("1299.9"), Stock: 15, Category: "Electronics"},
	}
	window := catalog.Paginate(products, catalog.Cursor{Page: 1, PageSize: 10})

	page := Render(State{Products: products, Window: window, Categories: []string{"Electronics"}})

	assert.Equal(t, ThemeLight, page.Theme)
	assert.Nil(t, page.Pagination)
	assert.Equal(t, Row{ID: "a", Name: "Laptop", Description: "No description", Category: "Electronics", Price: "$1299.90", Stock: 15}, page.Rows[0])
	assert.Equal(t, "Showing 1-1 of 1 products", page.RangeLabel)
	assert.Nil(t, page.Modal)
	assert.Nil(t, page.Confirm)
	assert.Nil(t, page.Detail)
}

func TestRender_EmptyCatalog(t *testing.T) {
	page := Render(State{Window: catalog.Paginate(nil, catalog.Cursor{Page: 1, PageSize: 10})})

	assert.Empty(t, page.Rows)
	assert.Equal(t, "Showing 0-0 of 0 products", page.RangeLabel)
	assert.Equal(t, "0", page.Summary.AvgStock)
}

func TestRender_CategoryOptionsMarkSelection(t *testing.T) {
	page := Render(State{
		Criteria:   catalog.Criteria{SearchText: "mouse", Category: "Accessories"},
		Categories: []string{"Accessories", "Electronics"},
	})

	assert.Equal(t, "mouse", page.Search)
	assert.Equal(t, []Option{
		{Value: "", Label: "All Categories"},
		{Value: "Accessories", Label: "Accessories", Selected: true},
		{Value: "Electronics", Label: "Electronics"},
	}, page.CategoryOptions)
}

func TestRender_ModalTitles(t *testing.T) {
	create := Render(State{Form: &Form{}})
	require.NotNil(t, create.Modal)
	assert.Equal(t, "New Product", create.Modal.Title)

	edit := Render(State{Form: &Form{ProductID: "p-1", Errors: map[string]string{"price": "Price must be a number"}}})
	require.NotNil(t, edit.Modal)
	assert.Equal(t, "Edit Product", edit.Modal.Title)
	assert.Equal(t, "Price must be a number", edit.Modal.Errors["price"])
}

func TestRender_DoesNotAliasInput(t *testing.T) {
	errs := map[string]string{"name": "Name is required"}
	notes := []Notification{{Kind: KindInfo, Message: "hello"}}
	s := State{Form: &Form{Errors: errs}, Notifications: notes}

	page := Render(s)
	page.Modal.Errors["name"] = "changed"
	page.Notifications[0].Message = "changed"

	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "hello", notes[0].Message)
}

func TestRender_ConfirmAndDetail(t *testing.T) {
	p := domain.Product{ID: "p-1", Name: "Mouse", Price: decimal.NewFromInt(10), Stock: 3, Category: "Accessories"}

	page := Render(State{Confirm: &p, Detail: &p})

	require.NotNil(t, page.Confirm)
	assert.Equal(t, "p-1", page.Confirm.ProductID)
	assert.Equal(t, "Are you sure you want to delete this product?", page.Confirm.Message)
	require.NotNil(t, page.Detail)
	assert.Equal(t, "N/A", page.Detail.Description)
	assert.Equal(t, "$10.00", page.Detail.Price)
}

func TestValuesOf(t *testing.T) {
	p := domain.Product{ID: "x", Name: "Mouse", Description: "d", Price: decimal.RequireFromString("99.99"), Stock: 50, Category: "Accessories"}
	assert.Equal(t, FormValues{Name: "Mouse", Description: "d", Price: "99.99", Stock: "50", Category: "Accessories"}, ValuesOf(p))
}

func TestTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ParseTheme("dark"))
	assert.Equal(t, ThemeLight, ParseTheme(""))
	assert.Equal(t, ThemeLight, ParseTheme("purple"))
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
}
