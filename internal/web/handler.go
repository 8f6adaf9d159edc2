// Package web serves the admin console: chi routes turn browser requests into
// dashboard events and the resulting render tree is written as HTML.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"catalog-admin/internal/catalog"
	"catalog-admin/internal/dashboard"
	"catalog-admin/internal/view"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const themeCookie = "theme"

// DefaultSearchDelay is the quiet period before a search request is sent.
const DefaultSearchDelay = 300 * time.Millisecond

// Dashboard is the controller the console drives.
type Dashboard interface {
	Refresh(ctx context.Context) error
	SetCriteria(c catalog.Criteria)
	ChangePage(page int) bool
	OpenNew() error
	OpenEdit(id string) error
	Cancel() error
	Submit(ctx context.Context, values view.FormValues) error
	RequestDelete(id string) error
	DeclineDelete()
	ConfirmDelete(ctx context.Context) error
	ShowDetail(id string) error
	CloseDetail()
	Notify(kind view.NotificationKind, message string)
	Page(theme view.Theme) view.Page
}

// Handler holds the console's dependencies.
type Handler struct {
	dash        Dashboard
	tmpl        *template.Template
	logger      *log.Logger
	searchDelay time.Duration
}

type pageData struct {
	Page          view.Page
	SearchDelayMS int64
}

// NewHandler parses the embedded templates and returns a console handler.
func NewHandler(dash Dashboard, logger *log.Logger, searchDelay time.Duration) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if searchDelay <= 0 {
		searchDelay = DefaultSearchDelay
	}
	return &Handler{dash: dash, tmpl: tmpl, logger: logger, searchDelay: searchDelay}, nil
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"toastColor": func(kind view.NotificationKind) string {
			switch kind {
			case view.KindSuccess:
				return "bg-green-500"
			case view.KindError:
				return "bg-red-500"
			default:
				return "bg-blue-500"
			}
		},
	}
	return template.New("_root").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
}

// RegisterRoutes sets up the console routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/theme", h.toggleTheme)
	r.Route("/products", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Post("/refresh", h.refresh)
		r.Get("/page/{page}", h.changePage)
		r.Get("/new", h.openNew)
		r.Post("/form", h.submitForm)
		r.Post("/form/cancel", h.cancelForm)
		r.Post("/detail/close", h.closeDetail)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.showDetail)
			r.Get("/edit", h.openEdit)
			r.Get("/delete", h.requestDelete)
			r.Post("/delete", h.confirmDelete)
		})
	})
	h.logger.Println("INFO: Console routes registered.")
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.dash.SetCriteria(catalog.Criteria{SearchText: q.Get("q"), Category: q.Get("category")})
	h.renderList(w, r)
}

func (h *Handler) changePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || !h.dash.ChangePage(page) {
		if isHTMX(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		redirectHome(w, r)
		return
	}
	h.renderList(w, r)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.Refresh(detach(r)); err != nil {
		h.logger.Printf("WARN: Refresh failed: %v", err)
	}
	redirectHome(w, r)
}

func (h *Handler) openNew(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.OpenNew(); err != nil {
		h.logger.Printf("WARN: Cannot open form: %v", err)
	}
	h.renderPage(w, r, http.StatusOK)
}

func (h *Handler) openEdit(w http.ResponseWriter, r *http.Request) {
	h.withProduct(w, r, h.dash.OpenEdit)
}

func (h *Handler) showDetail(w http.ResponseWriter, r *http.Request) {
	h.withProduct(w, r, h.dash.ShowDetail)
}

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	h.withProduct(w, r, h.dash.RequestDelete)
}

// withProduct applies a product-scoped event and renders the page, or a 404
// page when the product is not in the catalog.
func (h *Handler) withProduct(w http.ResponseWriter, r *http.Request, event func(id string) error) {
	id := chi.URLParam(r, "productId")
	err := event(id)
	switch {
	case errors.Is(err, dashboard.ErrUnknownProduct):
		h.dash.Notify(view.KindError, "Product not found")
		h.renderPage(w, r, http.StatusNotFound)
		return
	case err != nil:
		h.logger.Printf("WARN: Event for product %s rejected: %v", id, err)
	}
	h.renderPage(w, r, http.StatusOK)
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	values := view.FormValues{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Price:       r.PostForm.Get("price"),
		Stock:       r.PostForm.Get("stock"),
		Category:    r.PostForm.Get("category"),
	}
	err := h.dash.Submit(detach(r), values)
	switch {
	case err == nil, errors.Is(err, dashboard.ErrInvalidForm):
	case errors.Is(err, dashboard.ErrSubmitInProgress), errors.Is(err, dashboard.ErrNotEditing):
		h.logger.Printf("WARN: Submit ignored: %v", err)
	default:
		h.logger.Printf("WARN: Submit failed: %v", err)
	}
	redirectHome(w, r)
}

func (h *Handler) cancelForm(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.Cancel(); err != nil {
		h.logger.Printf("WARN: Cancel ignored: %v", err)
	}
	redirectHome(w, r)
}

func (h *Handler) closeDetail(w http.ResponseWriter, r *http.Request) {
	h.dash.CloseDetail()
	redirectHome(w, r)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		h.dash.DeclineDelete()
		redirectHome(w, r)
		return
	}

	id := chi.URLParam(r, "productId")
	if err := h.dash.RequestDelete(id); err != nil {
		h.dash.Notify(view.KindError, "Product not found")
		redirectHome(w, r)
		return
	}
	if err := h.dash.ConfirmDelete(detach(r)); err != nil {
		h.logger.Printf("WARN: Delete of %s failed: %v", id, err)
	}
	redirectHome(w, r)
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeOf(r).Toggle()
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(next),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	redirectHome(w, r)
}

// renderList writes only the product list for htmx requests and the whole
// page otherwise. Notifications drained by a partial ride along as an
// out-of-band swap of the toast container.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		h.render(w, r, http.StatusOK, "products-partial", h.dash.Page(themeOf(r)))
		return
	}
	h.renderPage(w, r, http.StatusOK)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int) {
	h.render(w, r, status, "base", pageData{
		Page:          h.dash.Page(themeOf(r)),
		SearchDelayMS: h.searchDelay.Milliseconds(),
	})
}

// render executes the named template into a buffer so the response can carry
// an ETag, and answers 304 when the client already has the same bytes.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Printf("ERROR: Template %s failed: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	etag := fmt.Sprintf(`W/"%x"`, xxhash.Sum64(buf.Bytes()))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "HX-Request, Cookie")
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// detach returns the request context without its cancellation. A catalog call,
// once issued, runs to completion even if the browser goes away; the client
// timeout still bounds it.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func themeOf(r *http.Request) view.Theme {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return view.ThemeLight
	}
	return view.ParseTheme(c.Value)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
