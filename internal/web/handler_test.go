package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"catalog-admin/internal/dashboard"
	"catalog-admin/internal/domain"
	"catalog-admin/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory catalog backend.
type fakeAPI struct {
	mu       sync.Mutex
	products []domain.Product
	nextID   int
	deletes  []string

	// beforeCall runs at the start of every write call, before the outcome is decided.
	beforeCall func()
}

// begin mimics an HTTP round-trip: a cancelled context fails the call.
func (f *fakeAPI) begin(ctx context.Context) error {
	if f.beforeCall != nil {
		f.beforeCall()
	}
	return ctx.Err()
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	if err := f.begin(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := draft.WithID(fmt.Sprintf("new-%d", f.nextID))
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i] = draft.WithID(id)
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %s not found", id)
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id string) error {
	if err := f.begin(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return nil
}

func sampleProducts(n int) []domain.Product {
	names := []string{"Widget Pro", "Gadget", "Mouse", "Keyboard"}
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Product{
			ID:       fmt.Sprintf("p-%d", i+1),
			Name:     fmt.Sprintf("%s %d", names[i%len(names)], i+1),
			Price:    decimal.NewFromInt(int64(i + 1)),
			Stock:    i + 1,
			Category: "Tools",
		})
	}
	return out
}

// setupTestRouter returns a console router over a loaded controller.
func setupTestRouter(t *testing.T, products []domain.Product) (http.Handler, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{products: products}
	ctrl := dashboard.NewController(api, dashboard.Options{PageSize: 10})
	require.NoError(t, ctrl.Refresh(context.Background()))
	ctrl.Page(view.ThemeLight)

	handler, err := NewHandler(ctrl, nil, 0)
	require.NoError(t, err)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, api
}

func do(router http.Handler, method, target string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIndex_RendersCatalog(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(3))

	rec := do(router, http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "Widget Pro 1")
	assert.Contains(t, body, "$3.00")
	assert.Contains(t, body, "Showing 1-3 of 3 products")
	assert.Contains(t, body, "No description")
	assert.Contains(t, body, "delay:300ms")
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestIndex_NotModifiedWhenETagMatches(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(3))

	first := do(router, http.MethodGet, "/", nil, nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := do(router, http.MethodGet, "/", nil, map[string]string{"If-None-Match": etag})

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestSearch_HTMXReturnsPartial(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(4))

	rec := do(router, http.MethodGet, "/products/search?q=wid", nil, map[string]string{"HX-Request": "true"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `id="products"`)
	assert.Contains(t, body, "Widget Pro 1")
	assert.NotContains(t, body, "Gadget 2")
	assert.Contains(t, body, "Showing 1-1 of 1 products")
}

func TestSearch_WithoutHTMXRendersFullPage(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(4))

	rec := do(router, http.MethodGet, "/products/search?q=&category=Tools", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), `<option value="Tools" selected>`)
}

func TestChangePage(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(12))
	hx := map[string]string{"HX-Request": "true"}

	rec := do(router, http.MethodGet, "/products/page/2", nil, hx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing 11-12 of 12 products")

	rec = do(router, http.MethodGet, "/products/page/3", nil, hx)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodGet, "/products/page/abc", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestCreateProductFlow(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(2))

	rec := do(router, http.MethodGet, "/products/new", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New Product")
	assert.Contains(t, rec.Body.String(), `id="product-form"`)

	form := url.Values{
		"name":        {"Monitor"},
		"description": {"27 inch"},
		"price":       {"199.90"},
		"stock":       {"4"},
		"category":    {"Electronics"},
	}
	rec = do(router, http.MethodPost, "/products/form", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(router, http.MethodGet, "/", nil, nil)
	body := rec.Body.String()
	assert.Contains(t, body, "Monitor")
	assert.Contains(t, body, "Product created successfully")
	assert.NotContains(t, body, `id="product-form"`)
	assert.Len(t, api.products, 3)
}

func TestSubmitInvalidFormKeepsModal(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(1))
	do(router, http.MethodGet, "/products/new", nil, nil)

	form := url.Values{"name": {""}, "price": {"x"}, "stock": {"1"}, "category": {"Tools"}}
	rec := do(router, http.MethodPost, "/products/form", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "Price must be a number")
	assert.Len(t, api.products, 1)
}

func TestEditProductFlow(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(2))

	rec := do(router, http.MethodGet, "/products/p-2/edit", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edit Product")
	assert.Contains(t, rec.Body.String(), `value="Gadget 2"`)

	form := url.Values{"name": {"Gadget X"}, "price": {"5"}, "stock": {"9"}, "category": {"Tools"}}
	rec = do(router, http.MethodPost, "/products/form", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.Contains(t, body, "Gadget X")
	assert.Contains(t, body, "Product updated successfully")
	assert.Equal(t, "Gadget X", api.products[1].Name)
}

func TestCancelClosesForm(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(1))
	do(router, http.MethodGet, "/products/p-1/edit", nil, nil)

	rec := do(router, http.MethodPost, "/products/form/cancel", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.NotContains(t, do(router, http.MethodGet, "/", nil, nil).Body.String(), `id="product-form"`)
}

func TestDeleteDeclinedIssuesNoCall(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(2))

	rec := do(router, http.MethodGet, "/products/p-1/delete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this product?")

	rec = do(router, http.MethodPost, "/products/p-1/delete", url.Values{"confirm": {"no"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Empty(t, api.deletes)
	assert.NotContains(t, do(router, http.MethodGet, "/", nil, nil).Body.String(), `id="confirm-dialog"`)
}

func TestDeleteConfirmed(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(2))
	do(router, http.MethodGet, "/products/p-1/delete", nil, nil)

	rec := do(router, http.MethodPost, "/products/p-1/delete", url.Values{"confirm": {"yes"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, []string{"p-1"}, api.deletes)
	body := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.NotContains(t, body, "Widget Pro 1")
	assert.Contains(t, body, "Product deleted successfully")
}

func TestShowDetail(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(1))

	rec := do(router, http.MethodGet, "/products/p-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="product-detail"`)
	assert.Contains(t, rec.Body.String(), "Description: N/A")

	rec = do(router, http.MethodPost, "/products/detail/close", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, do(router, http.MethodGet, "/", nil, nil).Body.String(), `id="product-detail"`)
}

func TestUnknownProductIsNotFound(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(1))

	rec := do(router, http.MethodGet, "/products/missing/edit", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found")
}

func TestToggleTheme(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(1))

	rec := do(router, http.MethodPost, "/theme", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "dark", cookies[0].Value)

	rec = do(router, http.MethodGet, "/", nil, map[string]string{"Cookie": "theme=dark"})
	assert.Contains(t, rec.Body.String(), `<html lang="en" class="dark">`)

	rec = do(router, http.MethodPost, "/theme", url.Values{}, map[string]string{"Cookie": "theme=dark"})
	assert.Equal(t, "light", rec.Result().Cookies()[0].Value)
}

func TestRefreshRedirects(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(1))
	api.products = append(api.products, domain.Product{ID: "late", Name: "Late Arrival", Price: decimal.NewFromInt(1), Stock: 1, Category: "Tools"})

	rec := do(router, http.MethodPost, "/products/refresh", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.Contains(t, body, "Late Arrival")
	assert.Contains(t, body, "Products loaded successfully")
}

func requestWithContext(ctx context.Context, method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSubmitCompletesWhenBrowserGoesAway(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(1))
	do(router, http.MethodGet, "/products/new", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api.beforeCall = cancel
	form := url.Values{"name": {"Desk Lamp"}, "price": {"12.50"}, "stock": {"3"}, "category": {"Tools"}}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithContext(ctx, http.MethodPost, "/products/form", form))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Error(t, ctx.Err())

	page := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.Contains(t, page, "Product created successfully")
	assert.Contains(t, page, "Desk Lamp")
	assert.NotContains(t, page, `id="product-form"`)
	assert.Len(t, api.products, 2)
}

func TestDeleteCompletesWhenBrowserGoesAway(t *testing.T) {
	router, api := setupTestRouter(t, sampleProducts(2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api.beforeCall = cancel

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithContext(ctx, http.MethodPost, "/products/p-1/delete", url.Values{"confirm": {"yes"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	page := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.Contains(t, page, "Product deleted successfully")
	assert.NotContains(t, page, "Widget Pro 1")
	assert.Equal(t, []string{"p-1"}, api.deletes)
}

func TestSearch_HTMXCarriesPendingNotifications(t *testing.T) {
	router, _ := setupTestRouter(t, sampleProducts(4))
	hx := map[string]string{"HX-Request": "true"}

	quiet := do(router, http.MethodGet, "/products/search?q=wid", nil, hx)
	assert.NotContains(t, quiet.Body.String(), "hx-swap-oob")

	do(router, http.MethodPost, "/products/refresh", nil, nil)
	rec := do(router, http.MethodGet, "/products/search?q=gad", nil, hx)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="toast-container" hx-swap-oob="true"`)
	assert.Contains(t, body, "Products loaded successfully")

	page := do(router, http.MethodGet, "/", nil, nil).Body.String()
	assert.NotContains(t, page, "Products loaded successfully")
}
