// Package dashboard holds the interaction workflow of the admin console: it
// owns the catalog state, turns user events into API calls and store
// mutations, and reports every outcome as a notification.
package dashboard

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"catalog-admin/internal/catalog"
	"catalog-admin/internal/catalogclient"
	"catalog-admin/internal/domain"
	"catalog-admin/internal/view"

	"github.com/go-playground/validator/v10"
)

// DefaultNotificationTTL is how long an undisplayed notification is kept.
const DefaultNotificationTTL = 5 * time.Second

var (
	ErrUnknownProduct   = errors.New("dashboard: unknown product")
	ErrSubmitInProgress = errors.New("dashboard: submit already in progress")
	ErrNotEditing       = errors.New("dashboard: no form is open")
	ErrInvalidForm      = errors.New("dashboard: form has invalid fields")
	ErrNoPendingDelete  = errors.New("dashboard: no delete awaiting confirmation")
)

// Mode is the state of the edit workflow.
type Mode int

const (
	Browsing Mode = iota
	Editing
	Submitting
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "browsing"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// ProductAPI is the catalog backend as seen by the controller.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// StatusObserver is told whether the last list call reached the catalog API.
type StatusObserver interface {
	CatalogReachable(ok bool)
}

// Options configures a Controller.
type Options struct {
	PageSize        int
	NotificationTTL time.Duration
	Logger          *log.Logger
	Observer        StatusObserver
	Now             func() time.Time
}

type session struct {
	productID string
	values    view.FormValues
	errors    map[string]string
}

type notification struct {
	view.Notification
	at time.Time
}

// Controller is the single owner of the dashboard state. Every operation
// runs under its mutex except the API round-trips themselves, so the console
// keeps answering while a call is outstanding.
type Controller struct {
	mu sync.Mutex

	api      ProductAPI
	store    *catalog.Store
	validate *validator.Validate
	observer StatusObserver
	logger   *log.Logger
	ttl      time.Duration
	now      func() time.Time

	mode    Mode
	session *session
	confirm *domain.Product
	detail  *domain.Product
	notes   []notification
}

// NewController creates a controller with an empty catalog.
func NewController(api ProductAPI, opts Options) *Controller {
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = DefaultNotificationTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		api:      api,
		store:    catalog.NewStore(opts.PageSize),
		validate: newFormValidator(),
		observer: opts.Observer,
		logger:   opts.Logger,
		ttl:      opts.NotificationTTL,
		now:      opts.Now,
	}
}

// Mode returns the current workflow state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Products returns the full collection in server order.
func (c *Controller) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// Refresh reloads the catalog. A failed load keeps the current collection;
// a load overtaken by a newer one is dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.store.BeginFetch()
	c.mu.Unlock()

	products, err := c.api.ListProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.observer != nil {
		c.observer.CatalogReachable(err == nil)
	}
	if !c.store.IsCurrent(token) {
		c.logger.Printf("INFO: Discarding superseded product list (fetch %d)", token)
		return nil
	}
	if err != nil {
		c.logger.Printf("ERROR: Failed to load products: %v", err)
		c.notify(view.KindError, "Failed to load products")
		return err
	}

	c.store.CommitFetch(token, products)
	c.dropStaleSelections()
	c.notify(view.KindSuccess, "Products loaded successfully")
	return nil
}

// Search sets the free-text filter and goes back to page 1.
func (c *Controller) Search(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crit := c.store.Criteria()
	crit.SearchText = text
	c.store.SetCriteria(crit)
}

// FilterCategory sets the category filter and goes back to page 1.
func (c *Controller) FilterCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crit := c.store.Criteria()
	crit.Category = category
	c.store.SetCriteria(crit)
}

// SetCriteria replaces both filters at once and goes back to page 1.
func (c *Controller) SetCriteria(crit catalog.Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.SetCriteria(crit)
}

// ChangePage moves to page and reports whether it was within range.
func (c *Controller) ChangePage(page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ChangePage(page) == nil
}

// OpenNew opens an empty form in create mode.
func (c *Controller) OpenNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Submitting {
		return ErrSubmitInProgress
	}
	c.mode = Editing
	c.session = &session{}
	c.detail = nil
	c.confirm = nil
	return nil
}

// OpenEdit opens the form pre-filled with product id.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Submitting {
		return ErrSubmitInProgress
	}
	p, ok := c.store.Find(id)
	if !ok {
		return ErrUnknownProduct
	}
	c.mode = Editing
	c.session = &session{productID: id, values: view.ValuesOf(p)}
	c.detail = nil
	c.confirm = nil
	return nil
}

// Cancel closes whatever overlay is open, discarding unsaved form input.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Submitting {
		return ErrSubmitInProgress
	}
	c.mode = Browsing
	c.session = nil
	c.detail = nil
	c.confirm = nil
	return nil
}

// Submit sends the open form. Input that does not parse stays in the form
// with field errors and no request is made. On success the form closes and
// the store is updated; on failure the form stays open with its input.
func (c *Controller) Submit(ctx context.Context, values view.FormValues) error {
	c.mu.Lock()
	switch c.mode {
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitInProgress
	case Browsing:
		c.mu.Unlock()
		return ErrNotEditing
	}

	c.session.values = values
	draft, fieldErrs := parseForm(c.validate, values)
	if len(fieldErrs) > 0 {
		c.session.errors = fieldErrs
		c.mu.Unlock()
		return ErrInvalidForm
	}
	c.session.errors = nil
	c.mode = Submitting
	id := c.session.productID
	c.mu.Unlock()

	var (
		product *domain.Product
		err     error
	)
	if id == "" {
		product, err = c.api.CreateProduct(ctx, draft)
	} else {
		product, err = c.api.UpdateProduct(ctx, id, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.mode = Editing
		fallback := "Failed to create product"
		if id != "" {
			fallback = "Failed to update product"
		}
		c.logger.Printf("ERROR: %s: %v", fallback, err)
		c.notify(view.KindError, catalogclient.UserMessage(err, fallback))
		return err
	}

	if id == "" {
		c.store.Insert(*product)
		c.notify(view.KindSuccess, "Product created successfully")
	} else {
		if !c.store.Replace(id, *product) {
			c.logger.Printf("INFO: Updated product %s is no longer in the local catalog", id)
		}
		c.notify(view.KindSuccess, "Product updated successfully")
	}
	c.mode = Browsing
	c.session = nil
	return nil
}

// RequestDelete asks for confirmation before deleting product id.
func (c *Controller) RequestDelete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.store.Find(id)
	if !ok {
		return ErrUnknownProduct
	}
	c.confirm = &p
	return nil
}

// DeclineDelete drops the pending delete without calling the API.
func (c *Controller) DeclineDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirm = nil
}

// ConfirmDelete deletes the product awaiting confirmation.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.confirm == nil {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := c.confirm.ID
	c.confirm = nil
	c.mu.Unlock()

	err := c.api.DeleteProduct(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Printf("ERROR: Failed to delete product %s: %v", id, err)
		c.notify(view.KindError, "Failed to delete product")
		return err
	}
	c.store.Remove(id)
	if c.detail != nil && c.detail.ID == id {
		c.detail = nil
	}
	c.notify(view.KindSuccess, "Product deleted successfully")
	return nil
}

// ShowDetail opens the read-only view of product id.
func (c *Controller) ShowDetail(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.store.Find(id)
	if !ok {
		return ErrUnknownProduct
	}
	c.detail = &p
	return nil
}

// CloseDetail closes the product view.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// Notify queues a notification for the next page.
func (c *Controller) Notify(kind view.NotificationKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify(kind, message)
}

// Page renders the current state. Pending notifications are handed out once
// and then dropped.
func (c *Controller) Page(theme view.Theme) view.Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := view.State{
		Products:      c.store.All(),
		Window:        c.store.Window(),
		Criteria:      c.store.Criteria(),
		Categories:    c.store.Categories(),
		Notifications: c.drainNotifications(),
		Theme:         theme,
	}
	if c.session != nil {
		state.Form = &view.Form{
			ProductID:  c.session.productID,
			Values:     c.session.values,
			Errors:     c.session.errors,
			Submitting: c.mode == Submitting,
		}
	}
	if c.confirm != nil {
		p := *c.confirm
		state.Confirm = &p
	}
	if c.detail != nil {
		p := *c.detail
		state.Detail = &p
	}
	return view.Render(state)
}

func (c *Controller) notify(kind view.NotificationKind, message string) {
	c.notes = append(c.notes, notification{
		Notification: view.Notification{Kind: kind, Message: message},
		at:           c.now(),
	})
}

func (c *Controller) drainNotifications() []view.Notification {
	now := c.now()
	out := make([]view.Notification, 0, len(c.notes))
	for _, n := range c.notes {
		if now.Sub(n.at) < c.ttl {
			out = append(out, n.Notification)
		}
	}
	c.notes = nil
	return out
}

// dropStaleSelections closes the detail and confirm overlays when their
// product disappeared in a reload.
func (c *Controller) dropStaleSelections() {
	if c.detail != nil {
		if p, ok := c.store.Find(c.detail.ID); ok {
			c.detail = &p
		} else {
			c.detail = nil
		}
	}
	if c.confirm != nil {
		if _, ok := c.store.Find(c.confirm.ID); !ok {
			c.confirm = nil
		}
	}
}
