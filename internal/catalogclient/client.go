// Package catalogclient is a typed client for the catalog REST API.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/observability"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is read looking for a message.
const maxErrorBody = 64 << 10

// Client calls the catalog API. Failed calls are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	obs        *observability.Instruments
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	tp         trace.TracerProvider
	mp         metric.MeterProvider
	logger     *log.Logger
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithTracerProvider sets the tracer provider used for call spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) { o.tp = tp }
}

// WithMeterProvider sets the meter provider used for call metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *clientOptions) { o.mp = mp }
}

// WithLogger sets the logger. By default the client logs to io.Discard.
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New creates a client for the API rooted at baseURL (e.g. "http://localhost:7071/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalogclient: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("catalogclient: base URL %q must be http or https", baseURL)
	}

	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
		validate:   domain.NewValidator(),
		obs:        observability.New(o.tp, o.mp),
		logger:     o.logger,
	}, nil
}

type listResponse struct {
	Products *[]domain.Product `json:"products"`
}

type errorBody struct {
	Error string `json:"error"`
}

// ListProducts fetches the whole catalog in server order.
func (c *Client) ListProducts(ctx context.Context) (products []domain.Product, err error) {
	const op = "list"
	ctx, call := c.obs.Start(ctx, op)
	defer func() { call.End(ctx, err) }()

	resp, err := c.do(ctx, op, http.MethodGet, c.productsURL(""), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	call.SetStatusCode(resp.StatusCode)

	if !isSuccess(resp.StatusCode) {
		return nil, readHTTPError(op, resp)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if body.Products == nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: missing products array", ErrMalformedResponse)}
	}

	seen := make(map[string]struct{}, len(*body.Products))
	for i, p := range *body.Products {
		if err := c.validate.Struct(p); err != nil {
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: product %d: %v", ErrMalformedResponse, i, err)}
		}
		if _, dup := seen[p.ID]; dup {
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: duplicate product id %q", ErrMalformedResponse, p.ID)}
		}
		seen[p.ID] = struct{}{}
	}

	c.logger.Printf("INFO: Listed %d products", len(*body.Products))
	return *body.Products, nil
}

// CreateProduct submits draft and returns the product the server created.
func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft) (product *domain.Product, err error) {
	const op = "create"
	ctx, call := c.obs.Start(ctx, op)
	defer func() { call.End(ctx, err) }()

	return c.sendDraft(ctx, call, op, http.MethodPost, c.productsURL(""), draft)
}

// UpdateProduct replaces the fields of product id with draft.
func (c *Client) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (product *domain.Product, err error) {
	const op = "update"
	ctx, call := c.obs.Start(ctx, op, attribute.String(observability.AttrProductID, id))
	defer func() { call.End(ctx, err) }()

	return c.sendDraft(ctx, call, op, http.MethodPut, c.productsURL(id), draft)
}

// DeleteProduct removes product id. The response body is ignored.
func (c *Client) DeleteProduct(ctx context.Context, id string) (err error) {
	const op = "delete"
	ctx, call := c.obs.Start(ctx, op, attribute.String(observability.AttrProductID, id))
	defer func() { call.End(ctx, err) }()

	resp, err := c.do(ctx, op, http.MethodDelete, c.productsURL(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	call.SetStatusCode(resp.StatusCode)

	if !isSuccess(resp.StatusCode) {
		return readHTTPError(op, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) sendDraft(ctx context.Context, call *observability.Call, op, method, target string, draft domain.ProductDraft) (*domain.Product, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("catalogclient: %s: encode draft: %w", op, err)
	}

	resp, err := c.do(ctx, op, method, target, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	call.SetStatusCode(resp.StatusCode)

	if !isSuccess(resp.StatusCode) {
		return nil, &ValidationError{HTTPError: readHTTPError(op, resp)}
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if err := c.validate.Struct(product); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	c.logger.Printf("INFO: %s succeeded for product %s", op, product.ID)
	return &product, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("WARN: %s %s failed: %v", method, target, err)
		return nil, &NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

func (c *Client) productsURL(id string) string {
	if id == "" {
		return c.baseURL + "/products"
	}
	return c.baseURL + "/products/" + url.PathEscape(id)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// readHTTPError builds an HTTPError, taking the message from an `error`
// field in the body when one can be decoded.
func readHTTPError(op string, resp *http.Response) *HTTPError {
	httpErr := &HTTPError{Op: op, StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return httpErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		httpErr.Message = body.Error
	}
	return httpErr
}
